// Package rebalance evens out class frequencies of a target column by
// resampling rows.
//
// Sampling is driven by an explicit seed. Identical input and seed always
// produce identical output; DefaultSeed reproduces the historical behavior.
package rebalance

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

// DefaultSeed is the seed used by DefaultOptions.
const DefaultSeed int64 = 42

// Options controls resampling.
type Options struct {
	Seed int64
}

// DefaultOptions returns Options with DefaultSeed.
func DefaultOptions() Options {
	return Options{Seed: DefaultSeed}
}

// Strategy selects how Rebalance evens out the classes.
type Strategy string

const (
	Oversample  Strategy = "oversample"
	Undersample Strategy = "undersample"
)

// ParseStrategy accepts "oversample" or "undersample" (case-insensitive).
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case Oversample:
		return Oversample, nil
	case Undersample:
		return Undersample, nil
	default:
		return "", fmt.Errorf("unknown strategy %q (use oversample|undersample)", s)
	}
}

// partition splits row indices by whether the target equals label.
// Rows with a missing target never match.
func partition(ds *dataset.Dataset, target, label string) (match, rest []int, err error) {
	col, err := ds.Column(target)
	if err != nil {
		return nil, nil, err
	}
	key := col.NormalizeKey(label)
	for i := 0; i < col.Len(); i++ {
		if k, ok := col.Key(i); ok && k == key {
			match = append(match, i)
		} else {
			rest = append(rest, i)
		}
	}
	if len(match) == 0 {
		return nil, nil, &InvalidLabelError{Target: target, Label: label}
	}
	return match, rest, nil
}

// OversampleMinority draws, with replacement, as many minority rows as there
// are majority rows. The result holds the majority rows in input order
// followed by the drawn minority rows.
func OversampleMinority(ds *dataset.Dataset, target, minorityLabel string, opt Options) (*dataset.Dataset, error) {
	minority, majority, err := partition(ds, target, minorityLabel)
	if err != nil {
		return nil, err
	}
	if len(majority) == 0 {
		return nil, fmt.Errorf("oversample %q: %w", minorityLabel, ErrEmptyMajority)
	}
	rng := rand.New(rand.NewSource(opt.Seed))
	rows := make([]int, 0, 2*len(majority))
	rows = append(rows, majority...)
	for i := 0; i < len(majority); i++ {
		rows = append(rows, minority[rng.Intn(len(minority))])
	}
	return ds.Take(rows), nil
}

// UndersampleMajority draws, without replacement, as many majority rows as
// there are minority rows. The result holds the drawn majority rows
// followed by the minority rows in input order.
func UndersampleMajority(ds *dataset.Dataset, target, majorityLabel string, opt Options) (*dataset.Dataset, error) {
	majority, minority, err := partition(ds, target, majorityLabel)
	if err != nil {
		return nil, err
	}
	if len(minority) == 0 {
		return nil, fmt.Errorf("undersample %q: %w", majorityLabel, ErrEmptyMinority)
	}
	if len(minority) > len(majority) {
		return nil, &InsufficientRowsError{Label: majorityLabel, Want: len(minority), Have: len(majority)}
	}
	rng := rand.New(rand.NewSource(opt.Seed))
	perm := rng.Perm(len(majority))
	rows := make([]int, 0, 2*len(minority))
	for _, p := range perm[:len(minority)] {
		rows = append(rows, majority[p])
	}
	rows = append(rows, minority...)
	return ds.Take(rows), nil
}

// Rebalance picks the majority and minority labels from the class counts
// and applies the strategy to them.
func Rebalance(ds *dataset.Dataset, target string, strategy Strategy, opt Options) (*dataset.Dataset, error) {
	counts, err := ClassCounts(ds, target)
	if err != nil {
		return nil, err
	}
	if len(counts) < 2 {
		return nil, fmt.Errorf("rebalance %q: %w (found %d)", target, ErrTooFewClasses, len(counts))
	}
	switch strategy {
	case Oversample:
		label, _ := counts.Minority()
		return OversampleMinority(ds, target, label, opt)
	case Undersample:
		label, _ := counts.Majority()
		return UndersampleMajority(ds, target, label, opt)
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
}
