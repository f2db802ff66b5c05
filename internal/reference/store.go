package reference

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rshade/carboncalc/internal/logging"
)

// CombinedDelimiter separates fields of the persisted unified table.
const CombinedDelimiter = ';'

// Save writes t to path as a semicolon-delimited file with a header of
// Columns and no index column.
func Save(t *Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating combined reference file: %w", err)
	}
	if err = Write(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// Write encodes t in the combined file format.
func Write(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	cw.Comma = CombinedDelimiter

	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, r := range t.rows {
		rec := []string{r.ElementID, r.Name, r.Unit, FormatFactor(r.Factor), r.Attribute}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadCombined reads a table previously written by Save, skipping the merge.
func LoadCombined(ctx context.Context, path string) (*Table, error) {
	src, err := LoadSource(path, CombinedDelimiter, EncodingUTF8)
	if err != nil {
		return nil, fmt.Errorf("loading combined reference: %w", err)
	}
	if missing := src.MissingColumns(Columns); len(missing) > 0 {
		logging.FromContext(ctx).Warn().
			Str("component", "reference").
			Str("path", path).
			Strs("missing_columns", missing).
			Msg("combined reference lacks expected columns")
	}
	rows, err := project(src, nil)
	if err != nil {
		return nil, err
	}
	return NewTable(rows), nil
}
