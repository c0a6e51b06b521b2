package rebalance

import (
	"sort"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

// Counts maps each target label to the number of rows bearing it.
type Counts map[string]int

// ClassCounts counts the labels of the target column. Missing cells are skipped.
func ClassCounts(ds *dataset.Dataset, target string) (Counts, error) {
	col, err := ds.Column(target)
	if err != nil {
		return nil, err
	}
	counts := make(Counts)
	for i := 0; i < col.Len(); i++ {
		if k, ok := col.Key(i); ok {
			counts[k]++
		}
	}
	return counts, nil
}

// Labels returns the labels in lexical order.
func (c Counts) Labels() []string {
	out := make([]string, 0, len(c))
	for k := range c {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Majority returns the most frequent label. Ties go to the lexically smallest label.
func (c Counts) Majority() (string, bool) {
	return c.pick(func(n, best int) bool { return n > best })
}

// Minority returns the least frequent label. Ties go to the lexically smallest label.
func (c Counts) Minority() (string, bool) {
	return c.pick(func(n, best int) bool { return n < best })
}

// ImbalanceRatio is the majority count over the minority count; 0 without labels.
func (c Counts) ImbalanceRatio() float64 {
	maj, ok := c.Majority()
	if !ok {
		return 0
	}
	mn, _ := c.Minority()
	return float64(c[maj]) / float64(c[mn])
}

func (c Counts) pick(better func(n, best int) bool) (string, bool) {
	var label string
	found := false
	for _, k := range c.Labels() {
		if !found || better(c[k], c[label]) {
			label = k
			found = true
		}
	}
	return label, found
}
