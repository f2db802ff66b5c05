package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/carboncalc/internal/config"
	"github.com/rshade/carboncalc/internal/reference"
)

// MergedMessage is printed after the combined table has been saved.
const MergedMessage = "Données combinées et sauvegardées dans %s\n"

// referenceFlags override the reference file locations from config.
type referenceFlags struct {
	sample   string
	full     string
	combined string
}

func addReferenceFlags(cmd *cobra.Command, f *referenceFlags) {
	cmd.Flags().StringVar(&f.sample, "sample", "", "curated Base Carbone sample (default from config)")
	cmd.Flags().StringVar(&f.full, "full", "", "full Base Carbone export (default from config)")
	cmd.Flags().StringVar(&f.combined, "combined", "", "where the combined reference table is saved (default from config)")
}

// apply returns a copy of rc with the non-empty flag values applied.
func (f referenceFlags) apply(rc config.ReferenceConfig) config.ReferenceConfig {
	if f.sample != "" {
		rc.SamplePath = f.sample
	}
	if f.full != "" {
		rc.FullPath = f.full
	}
	if f.combined != "" {
		rc.CombinedPath = f.combined
	}
	return rc
}

// referenceOptions converts reference settings into loader options.
func referenceOptions(rc config.ReferenceConfig) (reference.Options, error) {
	sampleDelim, err := config.Delimiter(rc.SampleDelimiter)
	if err != nil {
		return reference.Options{}, err
	}
	fullDelim, err := config.Delimiter(rc.FullDelimiter)
	if err != nil {
		return reference.Options{}, err
	}
	return reference.Options{
		SamplePath:      rc.SamplePath,
		SampleDelimiter: sampleDelim,
		SampleEncoding:  rc.SampleEncoding,
		FullPath:        rc.FullPath,
		FullDelimiter:   fullDelim,
		FullEncoding:    rc.FullEncoding,
		Inclusions:      rc.Inclusions,
	}, nil
}

// mergeAndSave builds the combined table from both sources and persists it.
func mergeAndSave(ctx context.Context, rc config.ReferenceConfig) (*reference.Table, error) {
	opts, err := referenceOptions(rc)
	if err != nil {
		return nil, err
	}
	table, err := reference.Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := reference.Save(table, rc.CombinedPath); err != nil {
		return nil, fmt.Errorf("saving combined reference: %w", err)
	}
	return table, nil
}

func newMergeCmd(a *app) *cobra.Command {
	var flags referenceFlags

	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Build and save the combined reference table",
		Long: "Merge the curated sample with the allow-listed rows of the full dataset, " +
			"drop duplicates and save the result without running the questionnaire.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc := flags.apply(a.cfg.Reference)
			table, err := mergeAndSave(cmd.Context(), rc)
			if err != nil {
				return err
			}
			a.logger.Info().Str("path", rc.CombinedPath).Int("rows", table.Len()).Msg("combined reference saved")
			fmt.Fprintf(cmd.OutOrStdout(), MergedMessage, rc.CombinedPath)
			return nil
		},
	}
	addReferenceFlags(cmd, &flags)

	return cmd
}
