package bias

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

// DefaultAlpha is the significance level used when Options.Alpha is zero.
const DefaultAlpha = 0.05

// Options controls DetectBias.
type Options struct {
	// Alpha is the significance level each attribute is tested at. Zero means DefaultAlpha.
	Alpha float64
	// Partial keeps the reports of attributes that could be tested and
	// returns the failures as a *BatchError. By default any failure aborts the run.
	Partial bool
	// Yates applies the continuity correction to 2x2 tables.
	Yates bool
}

// DefaultOptions returns strict detection at DefaultAlpha.
func DefaultOptions() Options {
	return Options{Alpha: DefaultAlpha}
}

// Report is the association analysis of one attribute against the target.
type Report struct {
	Attribute        string       `json:"attribute" yaml:"attribute"`
	Target           string       `json:"target" yaml:"target"`
	Distribution     Distribution `json:"distribution" yaml:"distribution"`
	Statistic        float64      `json:"chi2_statistic" yaml:"chi2_statistic"`
	PValue           float64      `json:"p_value" yaml:"p_value"`
	DegreesOfFreedom int          `json:"degrees_of_freedom" yaml:"degrees_of_freedom"`
	Observations     int          `json:"observations" yaml:"observations"`
	Alpha            float64      `json:"alpha" yaml:"alpha"`
	Biased           bool         `json:"biased" yaml:"biased"`
}

// Analyze builds the report of a single attribute.
func Analyze(ds *dataset.Dataset, attribute, target string, opt Options) (Report, error) {
	alpha, err := resolveAlpha(opt.Alpha)
	if err != nil {
		return Report{}, err
	}
	dist, err := ComputeDistribution(ds, attribute)
	if err != nil {
		return Report{}, err
	}
	var topts []TestOption
	if opt.Yates {
		topts = append(topts, WithYatesCorrection())
	}
	res, err := TestIndependence(ds, attribute, target, topts...)
	if err != nil {
		return Report{}, err
	}
	return Report{
		Attribute:        attribute,
		Target:           target,
		Distribution:     dist,
		Statistic:        res.Statistic,
		PValue:           res.PValue,
		DegreesOfFreedom: res.DegreesOfFreedom,
		Observations:     res.Observations,
		Alpha:            alpha,
		Biased:           res.PValue < alpha,
	}, nil
}

// DetectBias analyzes every sensitive attribute against target, each on its
// own at the same significance level. In strict mode the first failure is
// returned and no reports are. In partial mode the successful reports are
// returned together with a *BatchError listing the failures.
func DetectBias(ds *dataset.Dataset, sensitive []string, target string, opt Options) (map[string]Report, error) {
	if _, err := resolveAlpha(opt.Alpha); err != nil {
		return nil, err
	}
	if _, err := ds.Column(target); err != nil {
		return nil, err
	}
	reports := make(map[string]Report, len(sensitive))
	failed := make(map[string]error)
	for _, attr := range sensitive {
		if _, done := reports[attr]; done {
			continue
		}
		if _, done := failed[attr]; done {
			continue
		}
		rep, err := Analyze(ds, attr, target, opt)
		if err != nil {
			if !opt.Partial {
				return nil, fmt.Errorf("attribute %q: %w", attr, err)
			}
			failed[attr] = err
			continue
		}
		reports[attr] = rep
	}
	if len(failed) > 0 {
		return reports, &BatchError{Errs: failed}
	}
	return reports, nil
}

func resolveAlpha(alpha float64) (float64, error) {
	if alpha == 0 {
		return DefaultAlpha, nil
	}
	if math.IsNaN(alpha) || alpha <= 0 || alpha >= 1 {
		return 0, fmt.Errorf("%w: got %g", ErrInvalidAlpha, alpha)
	}
	return alpha, nil
}
