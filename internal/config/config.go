// Package config loads carboncalc settings: the survey taxonomy and prompt
// table, the annualization rule table, reference data locations, report
// options and logging. Defaults are embedded; a YAML overlay and a few
// environment variables may override them.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Environment variables that override configuration values.
const (
	EnvLogLevel   = "CARBONCALC_LOG_LEVEL"
	EnvChartPath  = "CARBONCALC_CHART_PATH"
	EnvBaselineKg = "CARBONCALC_BASELINE_KG"
)

// Config is the root configuration document.
type Config struct {
	Reference   ReferenceConfig   `yaml:"reference"`
	Survey      SurveyConfig      `yaml:"survey"`
	Calculation CalculationConfig `yaml:"calculation"`
	Report      ReportConfig      `yaml:"report"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// ReferenceConfig locates the emission-factor sources and the merged output.
type ReferenceConfig struct {
	SamplePath      string   `yaml:"sample_path"`
	SampleDelimiter string   `yaml:"sample_delimiter"`
	SampleEncoding  string   `yaml:"sample_encoding"`
	FullPath        string   `yaml:"full_path"`
	FullDelimiter   string   `yaml:"full_delimiter"`
	FullEncoding    string   `yaml:"full_encoding"`
	CombinedPath    string   `yaml:"combined_path"`
	Inclusions      []string `yaml:"inclusions"`
}

// CategoryConfig is one top-level category and its ordered subcategories.
type CategoryConfig struct {
	Name          string   `yaml:"name"`
	Subcategories []string `yaml:"subcategories"`
}

// SurveyConfig drives the interactive collector.
type SurveyConfig struct {
	Categories []CategoryConfig `yaml:"categories"`
	// Prompts maps a subcategory label to its prompt template.
	Prompts       map[string]string `yaml:"prompts"`
	DefaultPrompt string            `yaml:"default_prompt"`
}

// CalculationConfig holds the annualization rule table.
type CalculationConfig struct {
	// Rules maps a subcategory label to a rule tag (annual, monthly, weekly_meals, device_count).
	Rules           map[string]string `yaml:"rules"`
	ServingWeightKg float64           `yaml:"serving_weight_kg"`
}

// ReportConfig controls the text report and the chart.
type ReportConfig struct {
	BaselineKg float64 `yaml:"baseline_kg"`
	ChartPath  string  `yaml:"chart_path"`
	ChartDPI   int     `yaml:"chart_dpi"`
	OpenChart  bool    `yaml:"open_chart"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// New returns the built-in default configuration.
func New() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		// The embedded document is part of the binary; failing here is a build defect.
		panic(fmt.Sprintf("config: invalid embedded defaults: %v", err))
	}
	return cfg
}

// Load returns the defaults, overlaid with the YAML file at path when path is
// not empty, then with environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, lookupEnv func(string) (string, bool)) (*Config, error) {
	cfg := New()
	if path != "" {
		if err := ShallowMergeYAML(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(lookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%w (each top-level section in %s replaces the built-in one, "+
				"so restate every field of an overridden section)", err, path)
		}
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv applies environment overrides using lookupEnv.
func (c *Config) ApplyEnv(lookupEnv func(string) (string, bool)) error {
	if v, ok := lookupEnv(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := lookupEnv(EnvChartPath); ok && v != "" {
		c.Report.ChartPath = v
	}
	if v, ok := lookupEnv(EnvBaselineKg); ok && v != "" {
		kg, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not a number", ErrInvalidConfig, EnvBaselineKg, v)
		}
		c.Report.BaselineKg = kg
	}
	return nil
}

// Delimiter converts a one-character delimiter setting to a rune.
func Delimiter(s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: delimiter %q must be a single character", ErrInvalidConfig, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return 0, fmt.Errorf("%w: delimiter %q is not usable", ErrInvalidConfig, s)
	}
	return r, nil
}

// Taxonomy returns the ordered category → subcategories list.
func (c *Config) Taxonomy() []CategoryConfig {
	return c.Survey.Categories
}
