package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/fairloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set FairLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "significance_level: %g\n", c.SignificanceLevel)
		fmt.Fprintf(w, "seed: %d\n", c.Seed)
		fmt.Fprintf(w, "strategy: %s\n", c.Strategy)
		fmt.Fprintf(w, "sensitive_attributes: %s\n", strings.Join(c.SensitiveAttributes, ","))
		if c.Target != "" {
			fmt.Fprintf(w, "target: %s\n", c.Target)
		}
		fmt.Fprintf(w, "partial: %t\n", c.Partial)
		fmt.Fprintf(w, "yates_correction: %t\n", c.YatesCorrection)
		fmt.Fprintf(w, "output_format: %s\n", c.OutputFormat)
		if c.MaxRows > 0 {
			fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
		}
		if c.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Keys: " + strings.Join(cfgpkg.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := currentConfig()
		if err := c.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Set %s\n", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
