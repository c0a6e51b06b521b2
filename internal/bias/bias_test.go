package bias

import (
	"errors"
	"math"
	"math/rand"
	"strconv"
	"testing"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDataset(t *testing.T, cols ...*dataset.Column) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(cols...)
	require.NoError(t, err)
	return ds
}

// tableDataset expands a contingency table into one row per observation.
func tableDataset(t *testing.T, rows, cols []string, counts [][]int) *dataset.Dataset {
	t.Helper()
	var a, b []string
	for i, r := range rows {
		for j, c := range cols {
			for k := 0; k < counts[i][j]; k++ {
				a = append(a, r)
				b = append(b, c)
			}
		}
	}
	return mustDataset(t, dataset.CategoricalColumn("attr", a), dataset.CategoricalColumn("target", b))
}

// perfectDataset has attr A always with target 1 and attr B always with 0.
func perfectDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	attr := make([]string, 0, 100)
	target := make([]float64, 0, 100)
	for i := 0; i < 50; i++ {
		attr = append(attr, "A")
		target = append(target, 1)
	}
	for i := 0; i < 50; i++ {
		attr = append(attr, "B")
		target = append(target, 0)
	}
	return mustDataset(t,
		dataset.CategoricalColumn("group", attr),
		dataset.CategoricalColumn("region", append(append([]string{}, attr[50:]...), attr[:50]...)),
		dataset.NumericColumn("target", target),
	)
}

func TestComputeDistributionSumsToOne(t *testing.T) {
	ds := mustDataset(t,
		dataset.CategoricalColumn("race", []string{"a", "b", "c", "a", "a", "b", "", "c", "c"}),
		dataset.NumericColumn("score", []float64{1, 2, 2, 3, 3, 3, 4, 4, 4}),
	)
	for _, attr := range []string{"race", "score"} {
		dist, err := ComputeDistribution(ds, attr)
		require.NoError(t, err)
		var sum float64
		for _, v := range dist {
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-9, attr)
	}

	dist, err := ComputeDistribution(ds, "race")
	require.NoError(t, err)
	assert.Len(t, dist, 3)
	assert.InDelta(t, 3.0/8.0, dist["a"], 1e-12)

	score, err := ComputeDistribution(ds, "score")
	require.NoError(t, err)
	assert.InDelta(t, 3.0/9.0, score["3"], 1e-12)
	sorted := score.Sorted()
	assert.Equal(t, "3", sorted[0].Value)
	assert.Equal(t, "4", sorted[1].Value)
}

func TestComputeDistributionEmptyDataset(t *testing.T) {
	ds := mustDataset(t, dataset.CategoricalColumn("race", nil))
	dist, err := ComputeDistribution(ds, "race")
	require.NoError(t, err)
	assert.Empty(t, dist)
}

func TestComputeDistributionUnknownAttribute(t *testing.T) {
	ds := mustDataset(t, dataset.CategoricalColumn("race", []string{"a"}))
	_, err := ComputeDistribution(ds, "nonexistent")
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
}

func TestIndependenceKnownTable(t *testing.T) {
	ds := tableDataset(t, []string{"x", "y"}, []string{"0", "1"}, [][]int{{10, 20}, {30, 40}})
	res, err := TestIndependence(ds, "attr", "target")
	require.NoError(t, err)
	assert.InDelta(t, 0.7936507936507936, res.Statistic, 1e-9)
	assert.InDelta(t, 0.37299848361348714, res.PValue, 1e-6)
	assert.Equal(t, 1, res.DegreesOfFreedom)
	assert.Equal(t, 100, res.Observations)

	yates, err := TestIndependence(ds, "attr", "target", WithYatesCorrection())
	require.NoError(t, err)
	assert.InDelta(t, 0.4464285714285714, yates.Statistic, 1e-9)
	assert.InDelta(t, 0.5040358664525048, yates.PValue, 1e-6)
}

func TestIndependenceThreeByTwo(t *testing.T) {
	ds := tableDataset(t, []string{"a", "b", "c"}, []string{"no", "yes"}, [][]int{{10, 5}, {5, 10}, {8, 8}})
	res, err := TestIndependence(ds, "attr", "target", WithYatesCorrection())
	require.NoError(t, err)
	// Yates only applies to one degree of freedom.
	assert.Equal(t, 2, res.DegreesOfFreedom)
	assert.InDelta(t, 3.3333333333333335, res.Statistic, 1e-9)
	assert.InDelta(t, 0.18887560283756183, res.PValue, 1e-6)
}

func TestIndependenceSymmetric(t *testing.T) {
	ds := tableDataset(t, []string{"a", "b", "c"}, []string{"no", "yes"}, [][]int{{12, 3}, {4, 9}, {7, 7}})
	ab, err := TestIndependence(ds, "attr", "target")
	require.NoError(t, err)
	ba, err := TestIndependence(ds, "target", "attr")
	require.NoError(t, err)
	assert.InDelta(t, ab.Statistic, ba.Statistic, 1e-9)
	assert.InDelta(t, ab.PValue, ba.PValue, 1e-9)
	assert.Equal(t, ab.DegreesOfFreedom, ba.DegreesOfFreedom)
}

func TestIndependenceUnknownAttribute(t *testing.T) {
	ds := perfectDataset(t)
	_, err := TestIndependence(ds, "nope", "target")
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
	_, err = TestIndependence(ds, "group", "nope")
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
}

func TestIndependenceDegenerate(t *testing.T) {
	ds := mustDataset(t,
		dataset.CategoricalColumn("constant", []string{"a", "a", "a", "a"}),
		dataset.CategoricalColumn("target", []string{"0", "1", "0", "1"}),
		dataset.CategoricalColumn("single", []string{"1", "1", "1", "1"}),
	)
	_, err := TestIndependence(ds, "constant", "target")
	require.ErrorIs(t, err, ErrDegenerateTable)
	var dt *DegenerateTableError
	require.True(t, errors.As(err, &dt))
	assert.Equal(t, "constant", dt.Attribute)
	assert.Equal(t, 1, dt.Rows)

	_, err = TestIndependence(ds, "target", "single")
	require.ErrorIs(t, err, ErrDegenerateTable)

	empty := mustDataset(t, dataset.CategoricalColumn("a", nil), dataset.CategoricalColumn("b", nil))
	_, err = TestIndependence(empty, "a", "b")
	require.ErrorIs(t, err, ErrDegenerateTable)
}

func TestIndependentBinaryAttributes(t *testing.T) {
	// 25 rows per combination, shuffled with a fixed seed.
	rng := rand.New(rand.NewSource(7))
	var a, b []string
	for i := 0; i < 100; i++ {
		a = append(a, strconv.Itoa(i%2))
		b = append(b, strconv.Itoa((i/2)%2))
	}
	rng.Shuffle(len(a), func(i, j int) {
		a[i], a[j] = a[j], a[i]
		b[i], b[j] = b[j], b[i]
	})
	ds := mustDataset(t, dataset.CategoricalColumn("a", a), dataset.CategoricalColumn("b", b))
	res, err := TestIndependence(ds, "a", "b")
	require.NoError(t, err)
	assert.Greater(t, res.PValue, 0.05)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
}

func TestRandomIndependentAttributesMostlyPass(t *testing.T) {
	passed := 0
	const trials = 20
	for seed := int64(1); seed <= trials; seed++ {
		rng := rand.New(rand.NewSource(seed))
		a := make([]string, 100)
		b := make([]string, 100)
		for i := range a {
			a[i] = strconv.Itoa(rng.Intn(2))
			b[i] = strconv.Itoa(rng.Intn(2))
		}
		ds := mustDataset(t, dataset.CategoricalColumn("a", a), dataset.CategoricalColumn("b", b))
		res, err := TestIndependence(ds, "a", "b")
		require.NoError(t, err)
		require.False(t, math.IsNaN(res.PValue))
		if res.PValue > 0.05 {
			passed++
		}
	}
	assert.GreaterOrEqual(t, passed, 15)
}

func TestDetectBiasPerfectAssociation(t *testing.T) {
	ds := perfectDataset(t)
	reports, err := DetectBias(ds, []string{"group"}, "target", DefaultOptions())
	require.NoError(t, err)
	rep := reports["group"]
	assert.Less(t, rep.PValue, 1e-6)
	assert.True(t, rep.Biased)
	assert.InDelta(t, 100, rep.Statistic, 1e-9)
	assert.Equal(t, DefaultAlpha, rep.Alpha)
	assert.InDelta(t, 0.5, rep.Distribution["A"], 1e-12)
	assert.Equal(t, "target", rep.Target)
}

func TestDetectBiasThreshold(t *testing.T) {
	ds := tableDataset(t, []string{"x", "y"}, []string{"0", "1"}, [][]int{{10, 20}, {30, 40}})
	reports, err := DetectBias(ds, []string{"attr"}, "target", Options{Alpha: 0.5})
	require.NoError(t, err)
	assert.True(t, reports["attr"].Biased)

	reports, err = DetectBias(ds, []string{"attr", "attr"}, "target", Options{})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
	assert.False(t, reports["attr"].Biased)

	_, err = DetectBias(ds, []string{"attr"}, "target", Options{Alpha: 1.5})
	require.ErrorIs(t, err, ErrInvalidAlpha)
}

func TestDetectBiasStrictAbortsBatch(t *testing.T) {
	ds := perfectDataset(t)
	constant := make([]string, ds.Len())
	for i := range constant {
		constant[i] = "same"
	}
	cols := []*dataset.Column{dataset.CategoricalColumn("constant", constant)}
	for _, name := range ds.Names() {
		c, err := ds.Column(name)
		require.NoError(t, err)
		cols = append(cols, c)
	}
	full := mustDataset(t, cols...)

	reports, err := DetectBias(full, []string{"group", "constant"}, "target", DefaultOptions())
	require.ErrorIs(t, err, ErrDegenerateTable)
	assert.Nil(t, reports)

	reports, err = DetectBias(full, []string{"group", "missing"}, "target", DefaultOptions())
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
	assert.Nil(t, reports)

	_, err = DetectBias(full, []string{"group"}, "missing", DefaultOptions())
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
}

func TestDetectBiasPartialMode(t *testing.T) {
	ds := perfectDataset(t)
	opt := DefaultOptions()
	opt.Partial = true
	reports, err := DetectBias(ds, []string{"group", "region", "missing"}, "target", opt)
	require.Error(t, err)
	var be *BatchError
	require.True(t, errors.As(err, &be))
	assert.Len(t, be.Errs, 1)
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
	assert.Len(t, reports, 2)
	assert.True(t, reports["region"].Biased)
	assert.Contains(t, err.Error(), "missing")
}

func TestContingencySkipsMissingCells(t *testing.T) {
	ds := mustDataset(t,
		dataset.CategoricalColumn("attr", []string{"a", "b", "", "a", "b", "a"}),
		dataset.NumericColumn("target", []float64{1, 0, 1, math.NaN(), 1, 0}),
	)
	ct, err := BuildContingency(ds, "attr", "target")
	require.NoError(t, err)
	assert.Equal(t, 4, ct.Total)
	assert.Equal(t, []string{"a", "b"}, ct.Rows)
	assert.Equal(t, []string{"0", "1"}, ct.Cols)
	assert.Equal(t, [][]int{{1, 1}, {1, 1}}, ct.Counts)

	res, err := TestIndependence(ds, "attr", "target")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Observations)
	assert.InDelta(t, 0, res.Statistic, 1e-12)
}
