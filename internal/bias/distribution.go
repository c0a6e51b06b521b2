// Package bias measures association between sensitive attributes and a
// target label.
//
// Each attribute is tested on its own with a Pearson chi-square test of
// independence. There is no multiple-comparison correction across
// attributes: testing k attributes at alpha raises the chance of at least
// one false "biased" flag above alpha.
package bias

import (
	"sort"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

// Distribution maps each observed value of an attribute to its relative frequency.
type Distribution map[string]float64

// ComputeDistribution returns value_count / counted_rows for every distinct
// value of attribute. Missing cells are not counted. A dataset without
// values yields an empty distribution.
func ComputeDistribution(ds *dataset.Dataset, attribute string) (Distribution, error) {
	col, err := ds.Column(attribute)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	total := 0
	for i := 0; i < col.Len(); i++ {
		k, ok := col.Key(i)
		if !ok {
			continue
		}
		counts[k]++
		total++
	}
	dist := make(Distribution, len(counts))
	for k, n := range counts {
		dist[k] = float64(n) / float64(total)
	}
	return dist, nil
}

// ValueShare is one entry of a Distribution.
type ValueShare struct {
	Value string  `json:"value" yaml:"value"`
	Share float64 `json:"share" yaml:"share"`
}

// Sorted lists the entries by descending share, ties by value.
func (d Distribution) Sorted() []ValueShare {
	out := make([]ValueShare, 0, len(d))
	for k, v := range d {
		out = append(out, ValueShare{Value: k, Share: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Share == out[j].Share {
			return out[i].Value < out[j].Value
		}
		return out[i].Share > out[j].Share
	})
	return out
}
