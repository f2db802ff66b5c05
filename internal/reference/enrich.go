package reference

import (
	"context"
	"fmt"

	"github.com/rshade/carboncalc/internal/logging"
)

// Options locate the two sources that Build merges.
type Options struct {
	SamplePath      string
	SampleDelimiter rune
	SampleEncoding  string
	FullPath        string
	FullDelimiter   rune
	FullEncoding    string
	// Inclusions is the allow-list of item names taken from the full source.
	Inclusions []string
}

// Build loads both sources and returns the unified table. Any unreadable or
// malformed source fails the build.
func Build(ctx context.Context, opts Options) (*Table, error) {
	log := logging.FromContext(ctx).With().Str("component", "reference").Logger()

	sample, err := LoadSource(opts.SamplePath, opts.SampleDelimiter, opts.SampleEncoding)
	if err != nil {
		return nil, fmt.Errorf("loading curated sample: %w", err)
	}
	log.Debug().Str("path", opts.SamplePath).Int("records", len(sample.Records)).Msg("curated sample loaded")

	full, err := LoadSource(opts.FullPath, opts.FullDelimiter, opts.FullEncoding)
	if err != nil {
		return nil, fmt.Errorf("loading full dataset: %w", err)
	}
	log.Debug().Str("path", opts.FullPath).Int("records", len(full.Records)).Msg("full dataset loaded")

	return Enrich(ctx, sample, full, opts.Inclusions)
}

// Enrich concatenates the curated sample with the rows of full whose item
// name is in inclusions, both projected onto Columns, and drops rows whose
// (element identifier, item name) pair was already seen. Curated rows come
// first, so they win over upstream rows with the same key.
func Enrich(ctx context.Context, sample, full *Source, inclusions []string) (*Table, error) {
	log := logging.FromContext(ctx).With().Str("component", "reference").Logger()

	for _, src := range []*Source{sample, full} {
		if missing := src.MissingColumns(Columns); len(missing) > 0 {
			// Usually a delimiter mismatch: the whole header ends up in one column.
			log.Warn().
				Str("path", src.Path).
				Strs("missing_columns", missing).
				Msg("reference source lacks expected columns; their values will be missing")
		}
	}

	allowed := make(map[string]bool, len(inclusions))
	for _, name := range inclusions {
		allowed[name] = true
	}

	sampleRows, err := project(sample, nil)
	if err != nil {
		return nil, err
	}
	fullRows, err := project(full, allowed)
	if err != nil {
		return nil, err
	}

	seen := make(map[Key]bool, len(sampleRows)+len(fullRows))
	merged := make([]Row, 0, len(sampleRows)+len(fullRows))
	dropped := 0
	for _, r := range append(sampleRows, fullRows...) {
		k := r.Key()
		if seen[k] {
			dropped++
			continue
		}
		seen[k] = true
		merged = append(merged, r)
	}

	log.Info().
		Int("curated_rows", len(sampleRows)).
		Int("upstream_rows", len(fullRows)).
		Int("duplicates_dropped", dropped).
		Int("rows", len(merged)).
		Msg("reference table merged")

	return NewTable(merged), nil
}

// project maps the records of src onto Row. When allowed is not nil only
// records whose item name is in allowed are kept.
func project(src *Source, allowed map[string]bool) ([]Row, error) {
	rows := make([]Row, 0, len(src.Records))
	for i, rec := range src.Records {
		name, _ := rec.Get(ColName)
		if allowed != nil && !allowed[name] {
			continue
		}
		row, err := recordToRow(rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d column %q: %w", src.Path, src.line(i), ColFactor, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func recordToRow(rec Record) (Row, error) {
	factorCell, _ := rec.Get(ColFactor)
	factor, err := ParseFactor(factorCell)
	if err != nil {
		return Row{}, err
	}
	id, _ := rec.Get(ColElementID)
	name, _ := rec.Get(ColName)
	unit, _ := rec.Get(ColUnit)
	attr, _ := rec.Get(ColAttribute)
	return Row{
		ElementID: id,
		Name:      name,
		Unit:      unit,
		Factor:    factor,
		Attribute: attr,
	}, nil
}
