package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/fairloom-cli/internal/utils"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	SignificanceLevel   float64  `mapstructure:"significance_level" yaml:"significance_level"`
	Seed                int64    `mapstructure:"seed" yaml:"seed"`
	Strategy            string   `mapstructure:"strategy" yaml:"strategy"`
	SensitiveAttributes []string `mapstructure:"sensitive_attributes" yaml:"sensitive_attributes"`
	Target              string   `mapstructure:"target" yaml:"target"`
	Partial             bool     `mapstructure:"partial" yaml:"partial"`
	YatesCorrection     bool     `mapstructure:"yates_correction" yaml:"yates_correction"`
	OutputFormat        string   `mapstructure:"output_format" yaml:"output_format"`

	// Input handling
	MaxRows   int    `mapstructure:"max_rows" yaml:"max_rows"`
	Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
}

// Keys lists the settable configuration keys in sorted order.
func Keys() []string {
	keys := []string{
		"significance_level", "seed", "strategy", "sensitive_attributes", "target",
		"partial", "yates_correction", "output_format", "max_rows", "delimiter",
	}
	sort.Strings(keys)
	return keys
}

// Dir returns ~/.fairloom.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".fairloom"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.fairloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path, err := utils.ExpandHome(cfgFile)
	if err != nil {
		return err
	}
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("FAIRLOOM")
	v.AutomaticEnv()

	v.SetDefault("significance_level", 0.05)
	v.SetDefault("seed", 42)
	v.SetDefault("strategy", "oversample")
	v.SetDefault("sensitive_attributes", []string{})
	v.SetDefault("target", "")
	v.SetDefault("partial", false)
	v.SetDefault("yates_correction", false)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("max_rows", 0)
	v.SetDefault("delimiter", "")

	if cfgFile != "" {
		path, err := utils.ExpandHome(cfgFile)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	// FAIRLOOM_SENSITIVE_ATTRIBUTES arrives as one comma separated string.
	if len(c.SensitiveAttributes) == 1 && strings.Contains(c.SensitiveAttributes[0], ",") {
		c.SensitiveAttributes = SplitList(c.SensitiveAttributes[0])
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	if c.SignificanceLevel <= 0 || c.SignificanceLevel >= 1 {
		return fmt.Errorf("invalid significance_level: %g (must be in (0,1))", c.SignificanceLevel)
	}
	switch c.Strategy {
	case "oversample", "undersample":
	default:
		return fmt.Errorf("invalid strategy: %s (use oversample or undersample)", c.Strategy)
	}
	switch c.OutputFormat {
	case "markdown", "md", "json", "yaml", "table":
	default:
		return fmt.Errorf("invalid output_format: %s (use markdown, json, yaml, or table)", c.OutputFormat)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("invalid max_rows: %d", c.MaxRows)
	}
	return nil
}

// Set parses val for key and assigns it. c is left unchanged on error.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "significance_level":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return fmt.Errorf("invalid significance_level: %w", err)
		}
		next.SignificanceLevel = f
	case "seed":
		n, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid seed: %w", err)
		}
		next.Seed = n
	case "strategy":
		next.Strategy = strings.ToLower(val)
	case "sensitive_attributes":
		next.SensitiveAttributes = SplitList(val)
	case "target":
		next.Target = val
	case "partial":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid partial: %w", err)
		}
		next.Partial = b
	case "yates_correction":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid yates_correction: %w", err)
		}
		next.YatesCorrection = b
	case "output_format":
		next.OutputFormat = strings.ToLower(val)
	case "max_rows":
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid max_rows: %w", err)
		}
		next.MaxRows = n
	case "delimiter":
		next.Delimiter = val
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys(), ", "))
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// SplitList splits a comma separated list, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
