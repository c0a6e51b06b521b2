package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	cfgpkg "github.com/KaramelBytes/fairloom-cli/internal/config"
	"github.com/KaramelBytes/fairloom-cli/internal/dataio"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Input flags (override config if set)
	flagDelimiter  string
	flagSheetName  string
	flagSheetIndex int
	flagMaxRows    int
	flagDecimal    string
	flagThousands  string
	flagCategories []string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "fairloom",
	Short: "FairLoom CLI: detect and mitigate label bias in tabular datasets",
	Long: `FairLoom tests whether sensitive attributes of a CSV/XLSX dataset are associated
with a target label (chi-square test of independence) and rebalances the target
classes by seeded over- or undersampling.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.fairloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default from extension)")
	rootCmd.PersistentFlags().StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to read")
	rootCmd.PersistentFlags().IntVar(&flagSheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	rootCmd.PersistentFlags().IntVar(&flagMaxRows, "max-rows", 0, "maximum rows to read (0 = unlimited)")
	rootCmd.PersistentFlags().StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	rootCmd.PersistentFlags().StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	rootCmd.PersistentFlags().StringSliceVar(&flagCategories, "categorical", nil, "columns to keep categorical even if numeric (repeatable)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = defaultConfig()
	}
	cfg = c
}

func defaultConfig() *cfgpkg.Global {
	return &cfgpkg.Global{
		SignificanceLevel: 0.05,
		Seed:              42,
		Strategy:          "oversample",
		OutputFormat:      "markdown",
	}
}

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = defaultConfig()
	}
	return cfg
}

// newLogger writes structured logs to stderr; --debug lowers the level.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadOptions merges the global input flags over the configuration.
func loadOptions() (dataio.Options, error) {
	c := currentConfig()
	f := rootCmd.PersistentFlags()
	opt := dataio.Options{
		MaxRows:    c.MaxRows,
		SheetName:  flagSheetName,
		SheetIndex: flagSheetIndex,
	}
	if f.Changed("max-rows") {
		opt.MaxRows = flagMaxRows
	}
	if opt.MaxRows < 0 {
		return opt, fmt.Errorf("invalid --max-rows: %d", opt.MaxRows)
	}
	delim := c.Delimiter
	if f.Changed("delimiter") {
		delim = flagDelimiter
	}
	r, err := dataio.ParseDelimiter(delim)
	if err != nil {
		return opt, err
	}
	opt.Delimiter = r

	switch strings.ToLower(strings.TrimSpace(flagDecimal)) {
	case ",", "comma":
		opt.Infer.DecimalSeparator = ','
	case ".", "dot":
		opt.Infer.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", flagDecimal)
	}
	switch strings.ToLower(strings.TrimSpace(flagThousands)) {
	case ",":
		opt.Infer.ThousandsSeparator = ','
	case ".":
		opt.Infer.ThousandsSeparator = '.'
	case "space", " ":
		opt.Infer.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", flagThousands)
	}
	opt.Infer.Categorical = flagCategories
	return opt, nil
}
