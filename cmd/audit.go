package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fairloom-cli/internal/rebalance"
	"github.com/KaramelBytes/fairloom-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	audBias      biasFlags
	audRebalance rebalanceFlags
	audOutput    string
	audReport    string
	audForce     bool
)

var auditCmd = &cobra.Command{
	Use:   "audit <file>",
	Short: "Detect bias and, when found, write a rebalanced copy of the dataset",
	Long: `Loads the dataset, tests every sensitive attribute against the target and prints
the report. When at least one attribute is flagged (or --force is set) the target
classes are rebalanced and the result is written to --output.`,
	Example: `  fairloom audit applicants.csv -s gender,race -t hired -o balanced.csv
  fairloom audit applicants.csv -s gender -t hired --strategy undersample --force -o balanced.csv`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sensitive, target, bopt, format, err := audBias.resolve(cmd)
		if err != nil {
			return err
		}
		strategy, ropt, err := audRebalance.resolve(cmd)
		if err != nil {
			return err
		}
		if audOutput == "" {
			return errors.New("--output is required")
		}
		lopt, err := loadOptions()
		if err != nil {
			return err
		}

		s := session.New(newLogger(cmd.ErrOrStderr()))
		if err := s.LoadFile(args[0], lopt); err != nil {
			return err
		}
		sensitive, target, err = withDefaults(s.Dataset(), sensitive, target)
		if err != nil {
			return err
		}
		reports, err := s.Detect(sensitive, target, bopt)
		if err := warnPartial(cmd, err); err != nil {
			return err
		}
		if err := emitReports(cmd, audReport, reports, format); err != nil {
			return err
		}

		w := statusWriter(cmd, audReport, format)
		if !s.AnyBiased() && !audForce {
			fmt.Fprintln(w, "✓ No attribute flagged; dataset left unchanged (use --force to rebalance anyway)")
			return nil
		}
		before, err := rebalance.ClassCounts(s.Original(), target)
		if err != nil {
			return err
		}
		out, err := s.Mitigate(strategy, ropt)
		if err != nil {
			return err
		}
		after, err := rebalance.ClassCounts(out, target)
		if err != nil {
			return err
		}
		if err := s.Export(audOutput); err != nil {
			return err
		}
		printCounts(w, "Before", before)
		printCounts(w, "After", after)
		fmt.Fprintf(w, "✓ Wrote %d rows (%s, seed %d) to %s\n", out.Len(), strategy, ropt.Seed, audOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(auditCmd)
	audBias.register(auditCmd)
	audRebalance.register(auditCmd)
	auditCmd.Flags().StringVarP(&audOutput, "output", "o", "", "path to write the rebalanced CSV")
	auditCmd.Flags().StringVar(&audReport, "report", "", "optional path to write the bias report (default stdout)")
	auditCmd.Flags().BoolVar(&audForce, "force", false, "rebalance even when no attribute is flagged")
}
