package cmd

import (
	"github.com/KaramelBytes/fairloom-cli/internal/session"
	"github.com/spf13/cobra"
)

var (
	detFlags  biasFlags
	detOutput string
)

var detectCmd = &cobra.Command{
	Use:   "detect <file>",
	Short: "Test sensitive attributes for association with the target label",
	Long: `Runs a chi-square test of independence between each sensitive attribute and the
target column. An attribute is flagged as biased when its p-value is below alpha.
Each attribute is tested on its own; no multiple-comparison correction is applied.`,
	Example: `  fairloom detect applicants.csv -s gender,race -t hired
  fairloom detect applicants.xlsx --sheet-name Data -s gender -t hired --format table`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sensitive, target, opt, format, err := detFlags.resolve(cmd)
		if err != nil {
			return err
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
		reports, err := s.Detect(sensitive, target, opt)
		if err := warnPartial(cmd, err); err != nil {
			return err
		}
		return emitReports(cmd, detOutput, reports, format)
	},
}

func init() {
	rootCmd.AddCommand(detectCmd)
	detFlags.register(detectCmd)
	detectCmd.Flags().StringVarP(&detOutput, "output", "o", "", "optional path to write the report")
}
