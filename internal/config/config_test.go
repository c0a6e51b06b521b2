package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SignificanceLevel != 0.05 || c.Seed != 42 || c.Strategy != "oversample" || c.OutputFormat != "markdown" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Partial || c.YatesCorrection {
		t.Fatalf("strict, uncorrected detection expected by default")
	}
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	c := &Global{
		SignificanceLevel:   0.01,
		Seed:                7,
		Strategy:            "undersample",
		SensitiveAttributes: []string{"gender", "race"},
		Target:              "hired",
		OutputFormat:        "json",
	}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.SignificanceLevel != 0.01 || got.Seed != 7 || got.Strategy != "undersample" || got.Target != "hired" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.SensitiveAttributes) != 2 || got.SensitiveAttributes[1] != "race" {
		t.Fatalf("sensitive attributes = %v", got.SensitiveAttributes)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := Save(&Global{SignificanceLevel: 0.05, Seed: 1, Strategy: "oversample", OutputFormat: "markdown"}, ""); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, ".fairloom", "config.yaml")); err != nil {
		t.Fatalf("default config path not written: %v", err)
	}
	t.Setenv("FAIRLOOM_SEED", "99")
	t.Setenv("FAIRLOOM_SENSITIVE_ATTRIBUTES", "gender,race")
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Seed != 99 {
		t.Fatalf("seed = %d, want env override 99", c.Seed)
	}
	if len(c.SensitiveAttributes) != 2 || c.SensitiveAttributes[0] != "gender" {
		t.Fatalf("sensitive attributes = %v", c.SensitiveAttributes)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FAIRLOOM_SIGNIFICANCE_LEVEL", "1.5")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected invalid significance_level error")
	}
}

func TestSet(t *testing.T) {
	c := &Global{SignificanceLevel: 0.05, Strategy: "oversample", OutputFormat: "markdown"}
	cases := map[string]string{
		"significance_level":   "0.1",
		"seed":                 "123",
		"strategy":             "Undersample",
		"sensitive_attributes": "gender, race,",
		"partial":              "true",
		"output_format":        "table",
		"max_rows":             "500",
	}
	for k, v := range cases {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("set %s=%s: %v", k, v, err)
		}
	}
	if c.SignificanceLevel != 0.1 || c.Seed != 123 || c.Strategy != "undersample" || !c.Partial || c.MaxRows != 500 {
		t.Fatalf("unexpected config: %+v", c)
	}
	if len(c.SensitiveAttributes) != 2 || c.SensitiveAttributes[1] != "race" {
		t.Fatalf("sensitive attributes = %v", c.SensitiveAttributes)
	}
	for _, bad := range [][2]string{{"seed", "x"}, {"strategy", "smote"}, {"significance_level", "0"}, {"api_key", "k"}} {
		if err := c.Set(bad[0], bad[1]); err == nil {
			t.Fatalf("expected error for %s=%s", bad[0], bad[1])
		}
	}
}
