package dataset

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownAttribute is returned when a column name is not part of the dataset.
	ErrUnknownAttribute = errors.New("unknown attribute")
	// ErrKindMismatch is returned when a column is read as the wrong kind.
	ErrKindMismatch = errors.New("column kind mismatch")
	// ErrSchema is returned when columns cannot form a dataset.
	ErrSchema = errors.New("invalid dataset schema")
)

// UnknownAttributeError names the missing column and what was available.
type UnknownAttributeError struct {
	Name      string
	Available []string
}

func (e *UnknownAttributeError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown attribute %q (dataset has no columns)", e.Name)
	}
	return fmt.Sprintf("unknown attribute %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

func (e *UnknownAttributeError) Is(target error) bool { return target == ErrUnknownAttribute }

// KindMismatchError indicates a typed read of a column holding another kind.
type KindMismatchError struct {
	Column string
	Want   Kind
	Have   Kind
}

func (e *KindMismatchError) Error() string {
	return fmt.Sprintf("column %q is %s, not %s", e.Column, e.Have, e.Want)
}

func (e *KindMismatchError) Is(target error) bool { return target == ErrKindMismatch }

// SchemaError describes why a set of columns is not a valid dataset.
type SchemaError struct {
	Reason string
}

func (e *SchemaError) Error() string { return "invalid dataset schema: " + e.Reason }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }
