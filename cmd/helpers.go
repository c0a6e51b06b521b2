package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/KaramelBytes/fairloom-cli/internal/bias"
	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/KaramelBytes/fairloom-cli/internal/report"
	"github.com/KaramelBytes/fairloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

// biasFlags are shared by detect and audit.
type biasFlags struct {
	sensitive []string
	target    string
	alpha     float64
	partial   bool
	yates     bool
	format    string
}

func (b *biasFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&b.sensitive, "sensitive", "s", nil, "comma-separated sensitive attribute columns (repeatable)")
	cmd.Flags().StringVarP(&b.target, "target", "t", "", "target label column")
	cmd.Flags().Float64Var(&b.alpha, "alpha", 0.05, "significance level for each attribute test")
	cmd.Flags().BoolVar(&b.partial, "partial", false, "report attributes that could be tested and list the failures")
	cmd.Flags().BoolVar(&b.yates, "yates", false, "apply Yates continuity correction to 2x2 tables")
	cmd.Flags().StringVar(&b.format, "format", "markdown", "report format: markdown|json|yaml|table")
}

// Columns used when neither flags nor configuration name any.
var defaultSensitive = []string{"gender", "race", "ethnicity"}

const defaultTarget = "target"

// resolve merges the flags over the configuration. Empty columns are
// filled later by withDefaults once the dataset is loaded.
func (b *biasFlags) resolve(cmd *cobra.Command) ([]string, string, bias.Options, report.Format, error) {
	c := currentConfig()
	f := cmd.Flags()
	sensitive := c.SensitiveAttributes
	if f.Changed("sensitive") {
		sensitive = b.sensitive
	}
	target := c.Target
	if f.Changed("target") {
		target = b.target
	}
	opt := bias.Options{Alpha: c.SignificanceLevel, Partial: c.Partial, Yates: c.YatesCorrection}
	if f.Changed("alpha") {
		opt.Alpha = b.alpha
	}
	if f.Changed("partial") {
		opt.Partial = b.partial
	}
	if f.Changed("yates") {
		opt.Yates = b.yates
	}
	formatName := c.OutputFormat
	if f.Changed("format") {
		formatName = b.format
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return nil, "", opt, "", err
	}
	return sensitive, target, opt, format, nil
}

// withDefaults falls back to the default sensitive columns present in ds
// and to a column named target.
func withDefaults(ds *dataset.Dataset, sensitive []string, target string) ([]string, string, error) {
	if len(sensitive) == 0 {
		for _, name := range defaultSensitive {
			if ds.Has(name) {
				sensitive = append(sensitive, name)
			}
		}
		if len(sensitive) == 0 {
			return nil, "", fmt.Errorf("no sensitive attributes: pass --sensitive, set sensitive_attributes, or include one of %v", defaultSensitive)
		}
	}
	target, err := defaultTargetFor(ds, target)
	if err != nil {
		return nil, "", err
	}
	return sensitive, target, nil
}

func defaultTargetFor(ds *dataset.Dataset, target string) (string, error) {
	if target != "" {
		return target, nil
	}
	if ds.Has(defaultTarget) {
		return defaultTarget, nil
	}
	return "", errors.New("no target column: pass --target, set target, or include a target column")
}

// rebalanceFlags are shared by mitigate and audit.
type rebalanceFlags struct {
	strategy string
	seed     int64
}

func (r *rebalanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.strategy, "strategy", "oversample", "rebalancing strategy: oversample|undersample")
	cmd.Flags().Int64Var(&r.seed, "seed", rebalance.DefaultSeed, "random seed for resampling")
}

func (r *rebalanceFlags) resolve(cmd *cobra.Command) (rebalance.Strategy, rebalance.Options, error) {
	c := currentConfig()
	f := cmd.Flags()
	name := c.Strategy
	if f.Changed("strategy") {
		name = r.strategy
	}
	strategy, err := rebalance.ParseStrategy(name)
	if err != nil {
		return "", rebalance.Options{}, err
	}
	opt := rebalance.Options{Seed: c.Seed}
	if f.Changed("seed") {
		opt.Seed = r.seed
	}
	return strategy, opt, nil
}

// renderReports renders to a buffer first so a failed render writes nothing.
func renderReports(w io.Writer, reports map[string]bias.Report, format report.Format) error {
	var buf bytes.Buffer
	if err := report.Render(&buf, reports, format); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// statusWriter is where progress lines go. Machine-readable reports printed
// to stdout keep stdout to themselves.
func statusWriter(cmd *cobra.Command, reportPath string, format report.Format) io.Writer {
	if reportPath == "" && (format == report.JSON || format == report.YAML) {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

// emitReports writes the reports to path, or to the command output when path is empty.
func emitReports(cmd *cobra.Command, path string, reports map[string]bias.Report, format report.Format) error {
	if path == "" {
		return renderReports(cmd.OutOrStdout(), reports, format)
	}
	var buf bytes.Buffer
	if err := renderReports(&buf, reports, format); err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", path)
	return nil
}

// warnPartial prints the attributes a partial run could not test.
// Any other error is returned unchanged.
func warnPartial(cmd *cobra.Command, err error) error {
	if err == nil {
		return nil
	}
	var be *bias.BatchError
	if !errors.As(err, &be) {
		return err
	}
	for _, name := range sortedKeys(be.Errs) {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: skipped %s: %v\n", name, be.Errs[name])
	}
	return nil
}

func printCounts(w io.Writer, title string, counts rebalance.Counts) {
	fmt.Fprintf(w, "%s:", title)
	for _, label := range counts.Labels() {
		fmt.Fprintf(w, " %s=%d", label, counts[label])
	}
	fmt.Fprintln(w)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
