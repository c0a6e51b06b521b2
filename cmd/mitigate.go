package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fairloom-cli/internal/dataio"
	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/spf13/cobra"
)

var (
	mitFlags  rebalanceFlags
	mitTarget string
	mitLabel  string
	mitOutput string
)

var mitigateCmd = &cobra.Command{
	Use:   "mitigate <file>",
	Short: "Rebalance the target classes by seeded over- or undersampling",
	Long: `Oversampling draws minority rows with replacement until they match the majority.
Undersampling keeps a random subset of majority rows the size of the minority.
Without --label the minority (oversample) or majority (undersample) label is
taken from the class counts.`,
	Example: `  fairloom mitigate applicants.csv -t hired -o balanced.csv
  fairloom mitigate applicants.csv -t hired --strategy undersample --label 0 --seed 7 -o balanced.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := currentConfig().Target
		if cmd.Flags().Changed("target") {
			target = mitTarget
		}
		if mitOutput == "" {
			return errors.New("--output is required")
		}
		strategy, opt, err := mitFlags.resolve(cmd)
		if err != nil {
			return err
		}
		lopt, err := loadOptions()
		if err != nil {
			return err
		}
		ds, err := dataio.Load(args[0], lopt)
		if err != nil {
			return err
		}
		if target, err = defaultTargetFor(ds, target); err != nil {
			return err
		}
		before, err := rebalance.ClassCounts(ds, target)
		if err != nil {
			return err
		}

		var out *dataset.Dataset
		switch {
		case mitLabel == "":
			out, err = rebalance.Rebalance(ds, target, strategy, opt)
		case strategy == rebalance.Oversample:
			out, err = rebalance.OversampleMinority(ds, target, mitLabel, opt)
		default:
			out, err = rebalance.UndersampleMajority(ds, target, mitLabel, opt)
		}
		if err != nil {
			return err
		}
		after, err := rebalance.ClassCounts(out, target)
		if err != nil {
			return err
		}
		if err := dataio.ExportCSV(mitOutput, out); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		printCounts(w, "Before", before)
		printCounts(w, "After", after)
		fmt.Fprintf(w, "✓ Wrote %d rows (%s, seed %d) to %s\n", out.Len(), strategy, opt.Seed, mitOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mitigateCmd)
	mitFlags.register(mitigateCmd)
	mitigateCmd.Flags().StringVarP(&mitTarget, "target", "t", "", "target label column")
	mitigateCmd.Flags().StringVar(&mitLabel, "label", "", "label to resample (minority for oversample, majority for undersample)")
	mitigateCmd.Flags().StringVarP(&mitOutput, "output", "o", "", "path to write the rebalanced CSV")
}
