package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/fairloom-cli/internal/bias"
	"github.com/KaramelBytes/fairloom-cli/internal/dataio"
	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/KaramelBytes/fairloom-cli/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skewed has 80 rows labelled 0 and 20 labelled 1; gender predicts the label.
func skewed(t *testing.T) *dataset.Dataset {
	t.Helper()
	gender := make([]string, 100)
	target := make([]string, 100)
	for i := range gender {
		if i < 80 {
			gender[i], target[i] = "M", "0"
		} else {
			gender[i], target[i] = "F", "1"
		}
	}
	ds, err := dataset.New(
		dataset.CategoricalColumn("gender", gender),
		dataset.CategoricalColumn("target", target),
	)
	require.NoError(t, err)
	return ds
}

func TestNewSessionHasIDAndNoData(t *testing.T) {
	a := New(nil)
	b := New(testutil.NewLogger(t))
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, NoData, a.State())
	assert.Equal(t, "no-data", a.State().String())
}

func TestIllegalTransitions(t *testing.T) {
	s := New(testutil.NewLogger(t))

	_, err := s.Detect([]string{"gender"}, "target", bias.DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidTransition)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "detect", te.Op)
	assert.Equal(t, NoData, te.From)

	_, err = s.Mitigate(rebalance.Oversample, rebalance.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	require.NoError(t, s.Load("mem", skewed(t)))
	_, err = s.Mitigate(rebalance.Oversample, rebalance.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, s.Export(filepath.Join(t.TempDir(), "out.csv")), ErrInvalidTransition)
	assert.Equal(t, Loaded, s.State())
}

func TestFullWorkflow(t *testing.T) {
	s := New(testutil.NewLogger(t))
	require.NoError(t, s.Load("mem", skewed(t)))

	reports, err := s.Detect([]string{"gender"}, "target", bias.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Detected, s.State())
	assert.True(t, reports["gender"].Biased)
	assert.True(t, s.AnyBiased())
	assert.Equal(t, "target", s.Target())

	out, err := s.Mitigate(rebalance.Undersample, rebalance.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Mitigated, s.State())
	assert.Equal(t, 40, out.Len())
	assert.Same(t, out, s.Dataset())
	assert.Equal(t, 100, s.Original().Len())

	// A second mitigation needs a fresh detection.
	_, err = s.Mitigate(rebalance.Oversample, rebalance.DefaultOptions())
	assert.ErrorIs(t, err, ErrInvalidTransition)

	path := filepath.Join(t.TempDir(), "balanced.csv")
	require.NoError(t, s.Export(path))
	back, err := dataio.Load(path, dataio.Options{})
	require.NoError(t, err)
	assert.Equal(t, 40, back.Len())

	_, err = s.Detect([]string{"gender"}, "target", bias.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Detected, s.State())
	assert.Same(t, s.Original(), s.Dataset())
}

func TestFailedDetectKeepsState(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Load("mem", skewed(t)))
	_, err := s.Detect([]string{"age"}, "target", bias.DefaultOptions())
	require.ErrorIs(t, err, dataset.ErrUnknownAttribute)
	assert.Equal(t, Loaded, s.State())
	assert.Nil(t, s.Reports())
}

func TestPartialDetectAdvances(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Load("mem", skewed(t)))
	opt := bias.DefaultOptions()
	opt.Partial = true
	reports, err := s.Detect([]string{"gender", "age"}, "target", opt)
	var be *bias.BatchError
	require.ErrorAs(t, err, &be)
	assert.Contains(t, be.Errs, "age")
	assert.Len(t, reports, 1)
	assert.Equal(t, Detected, s.State())
}

func TestSingleClassTargetStaysLoaded(t *testing.T) {
	ds, err := dataset.New(
		dataset.CategoricalColumn("gender", []string{"M", "F", "M"}),
		dataset.CategoricalColumn("target", []string{"1", "1", "1"}),
	)
	require.NoError(t, err)
	s := New(nil)
	require.NoError(t, s.Load("mem", ds))
	_, err = s.Detect([]string{"gender"}, "target", bias.DefaultOptions())
	// A single class cannot be tested.
	require.ErrorIs(t, err, bias.ErrDegenerateTable)
	assert.Equal(t, Loaded, s.State())
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "d.csv")
	require.NoError(t, os.WriteFile(p, []byte("gender,target\nM,0\nF,1\n"), 0o644))
	s := New(nil)
	require.NoError(t, s.LoadFile(p, dataio.Options{}))
	assert.Equal(t, Loaded, s.State())
	assert.Equal(t, p, s.Source())
	assert.Error(t, s.LoadFile(filepath.Join(t.TempDir(), "missing.csv"), dataio.Options{}))
	assert.Equal(t, Loaded, s.State())
}
