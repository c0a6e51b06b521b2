package rebalance

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidLabel is returned when a class label never occurs in the target column.
	ErrInvalidLabel = errors.New("invalid label")
	// ErrEmptyMajority is returned when oversampling would produce zero rows.
	ErrEmptyMajority = errors.New("majority partition is empty")
	// ErrEmptyMinority is returned when undersampling would produce zero rows.
	ErrEmptyMinority = errors.New("minority partition is empty")
	// ErrInsufficientRows is returned when a draw without replacement asks for
	// more rows than the partition holds.
	ErrInsufficientRows = errors.New("insufficient rows")
	// ErrTooFewClasses is returned when the target has fewer than two classes.
	ErrTooFewClasses = errors.New("target needs at least two classes")
)

// InvalidLabelError names the label that was not found.
type InvalidLabelError struct {
	Target string
	Label  string
}

func (e *InvalidLabelError) Error() string {
	return fmt.Sprintf("label %q does not occur in target column %q", e.Label, e.Target)
}

func (e *InvalidLabelError) Is(target error) bool { return target == ErrInvalidLabel }

// InsufficientRowsError reports a draw larger than its source partition.
type InsufficientRowsError struct {
	Label string
	Want  int
	Have  int
}

func (e *InsufficientRowsError) Error() string {
	return fmt.Sprintf("cannot draw %d rows without replacement from %d rows labelled %q", e.Want, e.Have, e.Label)
}

func (e *InsufficientRowsError) Is(target error) bool { return target == ErrInsufficientRows }
