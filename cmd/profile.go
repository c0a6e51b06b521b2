package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/fairloom-cli/internal/dataio"
	"github.com/KaramelBytes/fairloom-cli/internal/profile"
	"github.com/KaramelBytes/fairloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	profTarget     string
	profOutput     string
	profSampleRows int
	profTopValues  int
	profOutliers   bool
	profOutlierThr float64
)

var profileCmd = &cobra.Command{
	Use:   "profile <file>",
	Short: "Summarize columns and class balance of a dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		lopt, err := loadOptions()
		if err != nil {
			return err
		}
		ds, err := dataio.Load(path, lopt)
		if err != nil {
			return err
		}
		opt := profile.DefaultOptions()
		if profSampleRows >= 0 {
			opt.SampleRows = profSampleRows
		}
		if profTopValues > 0 {
			opt.TopValues = profTopValues
		}
		opt.Outliers = profOutliers
		if profOutlierThr > 0 {
			opt.OutlierThreshold = profOutlierThr
		}
		opt.Target = profTarget
		if opt.Target == "" {
			opt.Target = currentConfig().Target
		}
		rep, err := profile.Profile(filepath.Base(path), ds, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if profOutput != "" {
			if err := utils.SafeWriteFile(profOutput, []byte(md)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote profile to %s\n", profOutput)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profTarget, "target", "t", "", "target column for the class balance section")
	profileCmd.Flags().StringVarP(&profOutput, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profTopValues, "top-values", 8, "categorical values listed per column")
	profileCmd.Flags().BoolVar(&profOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	profileCmd.Flags().Float64Var(&profOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
}
