package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carboncalc/internal/config"
	"github.com/rshade/carboncalc/internal/emissions"
	"github.com/rshade/carboncalc/internal/reference"
	"github.com/rshade/carboncalc/internal/report"
	"github.com/rshade/carboncalc/internal/survey"
)

// runFlags are the flags of the default command.
type runFlags struct {
	referenceFlags

	// reuse loads the saved combined table instead of merging.
	reuse  bool
	chart  string
	noOpen bool
}

func addRunFlags(cmd *cobra.Command, f *runFlags) {
	addReferenceFlags(cmd, &f.referenceFlags)
	cmd.Flags().BoolVar(&f.reuse, "reference", false, "reuse the saved combined reference table instead of merging")
	cmd.Flags().StringVar(&f.chart, "chart", "", "where the bar chart PNG is saved (default from config)")
	cmd.Flags().BoolVar(&f.noOpen, "no-open", false, "do not open the chart after saving it")
}

// taxonomy converts the configured categories for the collector.
func taxonomy(cfg *config.Config) []survey.Category {
	cats := cfg.Taxonomy()
	out := make([]survey.Category, 0, len(cats))
	for _, c := range cats {
		out = append(out, survey.Category{Name: c.Name, Subcategories: c.Subcategories})
	}
	return out
}

// loadReference merges the sources, or reloads the saved table when reuse is set.
func (a *app) loadReference(cmd *cobra.Command, f runFlags) (*reference.Table, error) {
	rc := f.apply(a.cfg.Reference)
	if f.reuse {
		return reference.LoadCombined(cmd.Context(), rc.CombinedPath)
	}
	table, err := mergeAndSave(cmd.Context(), rc)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().Str("path", rc.CombinedPath).Int("rows", table.Len()).Msg("combined reference saved")
	return table, nil
}

// run executes the full pipeline: reference table, questionnaire, calculation,
// text report and chart.
func (a *app) run(cmd *cobra.Command, f runFlags) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	rules, err := emissions.NewRuleTable(a.cfg.Calculation.Rules)
	if err != nil {
		return err
	}

	table, err := a.loadReference(cmd, f)
	if err != nil {
		return err
	}

	prompter := survey.NewPrompter(a.cfg.Survey.Prompts, a.cfg.Survey.DefaultPrompt)
	consumption, err := survey.NewCollector(cmd.InOrStdin(), out, prompter).Collect(ctx, taxonomy(a.cfg))
	if err != nil {
		return fmt.Errorf("collecting consumption: %w", err)
	}

	calc := emissions.NewCalculator(rules, emissions.Params{ServingWeightKg: a.cfg.Calculation.ServingWeightKg})
	result := calc.Calculate(ctx, consumption, table)
	a.logger.Info().Float64("total_kg", result.Total()).Msg("emissions calculated")

	interactive := a.deps.IsTerminal(out)
	if err := report.RenderText(out, result, report.Options{
		BaselineKg:    a.cfg.Report.BaselineKg,
		Styled:        interactive,
		Equivalencies: true,
	}); err != nil {
		return err
	}

	chartPath := a.cfg.Report.ChartPath
	if f.chart != "" {
		chartPath = f.chart
	}
	if err := report.SaveChart(chartPath, result.Subtotals(), report.ChartOptions{DPI: a.cfg.Report.ChartDPI}); err != nil {
		return err
	}
	a.logger.Info().Str("path", chartPath).Msg("chart saved")

	if f.noOpen || !a.cfg.Report.OpenChart || !interactive {
		return nil
	}
	if err := a.deps.Open(ctx, chartPath); err != nil {
		a.logger.Warn().Err(err).Str("path", chartPath).Msg("could not open chart")
	}
	return nil
}
