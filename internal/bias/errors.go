package bias

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDegenerateTable is returned when a chi-square test is undefined for a table.
	ErrDegenerateTable = errors.New("degenerate contingency table")
	// ErrInvalidAlpha is returned for significance levels outside (0, 1).
	ErrInvalidAlpha = errors.New("significance level must be in (0, 1)")
)

// DegenerateTableError explains why a contingency table cannot be tested.
type DegenerateTableError struct {
	Attribute string
	Target    string
	Rows      int // distinct attribute values observed
	Cols      int // distinct target values observed
	Reason    string
}

func (e *DegenerateTableError) Error() string {
	return fmt.Sprintf("cannot test %q against %q (%dx%d table): %s", e.Attribute, e.Target, e.Rows, e.Cols, e.Reason)
}

func (e *DegenerateTableError) Is(target error) bool { return target == ErrDegenerateTable }

// BatchError collects per-attribute failures of a partial DetectBias run.
type BatchError struct {
	Errs map[string]error
}

func (e *BatchError) Error() string {
	keys := make([]string, 0, len(e.Errs))
	for k := range e.Errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, e.Errs[k])
	}
	return fmt.Sprintf("%d attribute(s) failed: %s", len(keys), strings.Join(parts, "; "))
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *BatchError) Unwrap() []error {
	keys := make([]string, 0, len(e.Errs))
	for k := range e.Errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]error, len(keys))
	for i, k := range keys {
		out[i] = e.Errs[k]
	}
	return out
}
