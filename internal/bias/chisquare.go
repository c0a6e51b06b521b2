package bias

import (
	"math"
	"sort"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Contingency is a cross-tabulation of two categorical columns. Rows are the
// sorted distinct values of the attribute, Cols those of the target.
type Contingency struct {
	Rows   []string
	Cols   []string
	Counts [][]int
	Total  int
}

// BuildContingency cross-tabulates attribute against target. Rows where
// either cell is missing are skipped.
func BuildContingency(ds *dataset.Dataset, attribute, target string) (*Contingency, error) {
	a, err := ds.Column(attribute)
	if err != nil {
		return nil, err
	}
	t, err := ds.Column(target)
	if err != nil {
		return nil, err
	}
	type pair struct{ a, t string }
	cells := make(map[pair]int)
	rowSet := make(map[string]struct{})
	colSet := make(map[string]struct{})
	total := 0
	for i := 0; i < ds.Len(); i++ {
		ak, ok := a.Key(i)
		if !ok {
			continue
		}
		tk, ok := t.Key(i)
		if !ok {
			continue
		}
		cells[pair{ak, tk}]++
		rowSet[ak] = struct{}{}
		colSet[tk] = struct{}{}
		total++
	}
	ct := &Contingency{Rows: sortedKeys(rowSet), Cols: sortedKeys(colSet), Total: total}
	ct.Counts = make([][]int, len(ct.Rows))
	for i, rk := range ct.Rows {
		ct.Counts[i] = make([]int, len(ct.Cols))
		for j, ck := range ct.Cols {
			ct.Counts[i][j] = cells[pair{rk, ck}]
		}
	}
	return ct, nil
}

// Independence is the outcome of a chi-square test of independence.
type Independence struct {
	Statistic        float64
	PValue           float64
	DegreesOfFreedom int
	Observations     int
}

type testConfig struct {
	yates bool
}

// TestOption adjusts TestIndependence.
type TestOption func(*testConfig)

// WithYatesCorrection applies Yates' continuity correction to 2x2 tables
// (one degree of freedom). Larger tables are unaffected.
func WithYatesCorrection() TestOption {
	return func(c *testConfig) { c.yates = true }
}

// TestIndependence runs a Pearson chi-square test of independence between
// attribute and target. Tables with fewer than two distinct values on
// either side, or with a zero expected count, are rejected as degenerate.
func TestIndependence(ds *dataset.Dataset, attribute, target string, opts ...TestOption) (Independence, error) {
	var cfg testConfig
	for _, o := range opts {
		o(&cfg)
	}
	ct, err := BuildContingency(ds, attribute, target)
	if err != nil {
		return Independence{}, err
	}
	return ct.test(attribute, target, cfg)
}

func (ct *Contingency) test(attribute, target string, cfg testConfig) (Independence, error) {
	r, c := len(ct.Rows), len(ct.Cols)
	degenerate := func(reason string) (Independence, error) {
		return Independence{}, &DegenerateTableError{Attribute: attribute, Target: target, Rows: r, Cols: c, Reason: reason}
	}
	if r < 2 {
		return degenerate("attribute has fewer than 2 distinct values")
	}
	if c < 2 {
		return degenerate("target has fewer than 2 distinct values")
	}

	rowTotals := make([]float64, r)
	colTotals := make([]float64, c)
	for i := range ct.Counts {
		for j, n := range ct.Counts[i] {
			rowTotals[i] += float64(n)
			colTotals[j] += float64(n)
		}
	}
	df := (r - 1) * (c - 1)
	n := float64(ct.Total)
	obs := make([]float64, 0, r*c)
	exp := make([]float64, 0, r*c)
	for i := range ct.Counts {
		for j, count := range ct.Counts[i] {
			e := rowTotals[i] * colTotals[j] / n
			if e <= 0 {
				return degenerate("zero expected count")
			}
			o := float64(count)
			if cfg.yates && df == 1 {
				// Move each observation up to 0.5 towards its expectation.
				diff := e - o
				o += math.Copysign(math.Min(0.5, math.Abs(diff)), diff)
			}
			obs = append(obs, o)
			exp = append(exp, e)
		}
	}

	chi2 := stat.ChiSquare(obs, exp)
	if math.IsNaN(chi2) || math.IsInf(chi2, 0) {
		return degenerate("statistic is not finite")
	}
	p := distuv.ChiSquared{K: float64(df)}.Survival(chi2)
	if math.IsNaN(p) {
		return degenerate("p-value is not finite")
	}
	p = math.Max(0, math.Min(1, p))
	return Independence{Statistic: chi2, PValue: p, DegreesOfFreedom: df, Observations: ct.Total}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
