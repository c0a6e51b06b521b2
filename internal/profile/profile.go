// Package profile summarizes a loaded dataset column by column.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/montanaflynn/stats"
)

// Options controls profiling.
type Options struct {
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues limits the categorical values listed per column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). Counts |z| > OutlierThreshold.
	Outliers         bool
	OutlierThreshold float64
	// Target, when set, adds a class balance section for that column.
	Target string
}

// DefaultOptions returns reasonable defaults for dataset profiling.
func DefaultOptions() Options {
	return Options{
		SampleRows:       5,
		TopValues:        8,
		Outliers:         true,
		OutlierThreshold: 3.5,
	}
}

// Report is a markdown-friendly profile of a dataset.
type Report struct {
	Name     string
	Rows     int
	Cols     []ColumnSummary
	Header   []string
	Samples  [][]string
	Balance  *ClassBalance
	Warnings []string
}

// ColumnSummary captures the kind and statistics of one column.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|categorical
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min    float64
	Max    float64
	Mean   float64
	Std    float64
	Median float64
	// Outliers (robust Z via MAD)
	OutliersCount    int
	OutliersMaxAbsZ  float64
	OutlierThreshold float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// ClassBalance describes the label frequencies of a target column.
type ClassBalance struct {
	Target   string
	Counts   []CategoryCount
	Majority string
	Minority string
	Ratio    float64
}

// Profile computes a Report for ds.
func Profile(name string, ds *dataset.Dataset, opt Options) (*Report, error) {
	rep := &Report{Name: name, Rows: ds.Len(), Header: ds.Header()}
	topN := opt.TopValues
	if topN <= 0 {
		topN = 8
	}
	for _, colName := range ds.Names() {
		col, err := ds.Column(colName)
		if err != nil {
			return nil, err
		}
		s := ColumnSummary{Name: colName, Kind: col.Kind().String()}
		counts := map[string]int{}
		var nums []float64
		for i := 0; i < col.Len(); i++ {
			k, ok := col.Key(i)
			if !ok {
				s.Missing++
				continue
			}
			s.NonNull++
			counts[k]++
			if v, ok := col.Float(i); ok {
				nums = append(nums, v)
			}
		}
		s.Unique = len(counts)
		if col.Kind() == dataset.Numeric && len(nums) > 0 {
			if err := numericStats(&s, nums, opt); err != nil {
				return nil, fmt.Errorf("column %q: %w", colName, err)
			}
		} else {
			s.TopValues = topValues(counts, topN)
		}
		rep.Cols = append(rep.Cols, s)
	}

	sampleRows := opt.SampleRows
	if sampleRows < 0 {
		sampleRows = 0
	}
	for i := 0; i < ds.Len() && i < sampleRows; i++ {
		rep.Samples = append(rep.Samples, ds.Record(i))
	}

	if opt.Target != "" {
		counts, err := rebalance.ClassCounts(ds, opt.Target)
		if err != nil {
			return nil, err
		}
		bal := &ClassBalance{Target: opt.Target}
		bal.Counts = topValues(counts, len(counts))
		bal.Majority, _ = counts.Majority()
		bal.Minority, _ = counts.Minority()
		bal.Ratio = counts.ImbalanceRatio()
		if len(counts) < 2 {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("target %q has %d class(es); rebalancing needs at least 2", opt.Target, len(counts)))
		}
		rep.Balance = bal
	}
	return rep, nil
}

func numericStats(s *ColumnSummary, nums []float64, opt Options) error {
	var err error
	if s.Min, err = stats.Min(nums); err != nil {
		return err
	}
	if s.Max, err = stats.Max(nums); err != nil {
		return err
	}
	if s.Mean, err = stats.Mean(nums); err != nil {
		return err
	}
	if s.Median, err = stats.Median(nums); err != nil {
		return err
	}
	if len(nums) > 1 {
		if s.Std, err = stats.StandardDeviationSample(nums); err != nil {
			return err
		}
	}
	if !opt.Outliers || len(nums) < 8 {
		return nil
	}
	thr := opt.OutlierThreshold
	if thr <= 0 {
		thr = 3.5
	}
	mad, err := stats.MedianAbsoluteDeviation(nums)
	if err != nil {
		return err
	}
	s.OutlierThreshold = thr
	if mad == 0 {
		return nil
	}
	for _, v := range nums {
		az := math.Abs(0.6745 * (v - s.Median) / mad)
		if az > thr {
			s.OutliersCount++
		}
		if az > s.OutliersMaxAbsZ {
			s.OutliersMaxAbsZ = az
		}
	}
	return nil
}

func topValues(counts map[string]int, n int) []CategoryCount {
	tops := make([]CategoryCount, 0, len(counts))
	for k, v := range counts {
		tops = append(tops, CategoryCount{Value: k, Count: v})
	}
	sort.Slice(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// Markdown renders a compact profile suitable for terminals or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(r.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case "numeric":
			if c.NonNull > 0 {
				b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g, median %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Median, c.Std))
			}
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case "categorical":
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if r.Balance != nil {
		bal := r.Balance
		b.WriteString("\n[CLASS BALANCE]\n")
		b.WriteString(fmt.Sprintf("Target: %s\n", bal.Target))
		for _, kv := range bal.Counts {
			b.WriteString(fmt.Sprintf("- %s: %d\n", safeVal(kv.Value), kv.Count))
		}
		if len(bal.Counts) >= 2 {
			b.WriteString(fmt.Sprintf("Majority: %s, minority: %s, imbalance ratio %.2f\n", bal.Majority, bal.Minority, bal.Ratio))
		}
	}
	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		b.WriteString("| ")
		for i, h := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(safeName(h))
		}
		b.WriteString(" |\n| ")
		for i := range r.Header {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString("---")
		}
		b.WriteString(" |\n")
		for _, row := range r.Samples {
			b.WriteString("| ")
			for i := range r.Header {
				if i > 0 {
					b.WriteString(" | ")
				}
				val := ""
				if i < len(row) {
					val = row[i]
				}
				if len(val) > 80 {
					val = val[:77] + "..."
				}
				b.WriteString(safeVal(val))
			}
			b.WriteString(" |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
