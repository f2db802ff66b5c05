package config

import (
	"fmt"
	"strings"

	"github.com/rshade/carboncalc/internal/emissions"
	"github.com/rshade/carboncalc/internal/reference"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrInvalidConfig wraps every validation failure.
const ErrInvalidConfig = constError("invalid configuration")

// Chart resolution limits.
const (
	MinChartDPI = 36
	MaxChartDPI = 1200
)

// Validate checks the configuration for values the rest of the program
// cannot work with.
func (c *Config) Validate() error {
	if err := c.Reference.validate(); err != nil {
		return err
	}
	if err := c.Survey.validate(); err != nil {
		return err
	}
	if _, err := emissions.NewRuleTable(c.Calculation.Rules); err != nil {
		return fmt.Errorf("%w: calculation.rules: %w", ErrInvalidConfig, err)
	}
	if c.Calculation.ServingWeightKg <= 0 {
		return fmt.Errorf("%w: calculation.serving_weight_kg must be > 0, got %g",
			ErrInvalidConfig, c.Calculation.ServingWeightKg)
	}
	if c.Report.BaselineKg < 0 {
		return fmt.Errorf("%w: report.baseline_kg must be >= 0, got %g", ErrInvalidConfig, c.Report.BaselineKg)
	}
	if strings.TrimSpace(c.Report.ChartPath) == "" {
		return fmt.Errorf("%w: report.chart_path is required", ErrInvalidConfig)
	}
	if c.Report.ChartDPI < MinChartDPI || c.Report.ChartDPI > MaxChartDPI {
		return fmt.Errorf("%w: report.chart_dpi must be between %d and %d, got %d",
			ErrInvalidConfig, MinChartDPI, MaxChartDPI, c.Report.ChartDPI)
	}
	return nil
}

func (r ReferenceConfig) validate() error {
	for name, d := range map[string]string{
		"reference.sample_delimiter": r.SampleDelimiter,
		"reference.full_delimiter":   r.FullDelimiter,
	} {
		if _, err := Delimiter(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	for name, enc := range map[string]string{
		"reference.sample_encoding": r.SampleEncoding,
		"reference.full_encoding":   r.FullEncoding,
	} {
		if err := reference.CheckEncoding(enc); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, name, err)
		}
	}
	if r.SamplePath == "" || r.FullPath == "" || r.CombinedPath == "" {
		return fmt.Errorf("%w: reference sample_path, full_path and combined_path are required", ErrInvalidConfig)
	}
	return nil
}

func (s SurveyConfig) validate() error {
	if len(s.Categories) == 0 {
		return fmt.Errorf("%w: survey.categories is empty", ErrInvalidConfig)
	}
	seenCat := make(map[string]bool, len(s.Categories))
	seenSub := make(map[string]string)
	for _, cat := range s.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("%w: survey category with empty name", ErrInvalidConfig)
		}
		if seenCat[cat.Name] {
			return fmt.Errorf("%w: duplicate survey category %q", ErrInvalidConfig, cat.Name)
		}
		seenCat[cat.Name] = true
		if len(cat.Subcategories) == 0 {
			return fmt.Errorf("%w: survey category %q has no subcategories", ErrInvalidConfig, cat.Name)
		}
		for _, sub := range cat.Subcategories {
			if strings.TrimSpace(sub) == "" {
				return fmt.Errorf("%w: empty subcategory in %q", ErrInvalidConfig, cat.Name)
			}
			if prev, dup := seenSub[sub]; dup {
				return fmt.Errorf("%w: subcategory %q appears in both %q and %q",
					ErrInvalidConfig, sub, prev, cat.Name)
			}
			seenSub[sub] = cat.Name
		}
	}
	return nil
}
