// Package reference builds the unified emission-factor table from a curated
// Base Carbone sample and the fuller upstream export, persists it, and
// answers lookups by item name.
package reference

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Base Carbone column names kept in the unified table, in output order.
const (
	ColElementID = "Identifiant de l'élément"
	ColName      = "Nom base français"
	ColUnit      = "Unité français"
	ColFactor    = "Total poste non décomposé"
	ColAttribute = "Nom attribut français"
)

// Columns is the projection applied to every source, in output order.
//
//nolint:gochecknoglobals // Fixed schema of the unified table.
var Columns = []string{ColElementID, ColName, ColUnit, ColFactor, ColAttribute}

// Factor is an emission factor in kg CO2 per unit. Valid is false when the
// source cell was missing.
type Factor struct {
	Value float64
	Valid bool
}

// Row is one line of the unified table. Empty strings mean missing cells.
type Row struct {
	ElementID string
	Name      string
	Unit      string
	Factor    Factor
	Attribute string
}

// Key identifies a row for deduplication. Missing values compare equal.
type Key struct {
	ElementID string
	Name      string
}

// Key returns the deduplication key of r.
func (r Row) Key() Key {
	return Key{ElementID: r.ElementID, Name: r.Name}
}

// Table is the read-only unified reference table.
type Table struct {
	rows   []Row
	byName map[string]int
}

// NewTable builds a table over rows without deduplicating them.
func NewTable(rows []Row) *Table {
	t := &Table{
		rows:   make([]Row, len(rows)),
		byName: make(map[string]int, len(rows)),
	}
	copy(t.rows, rows)
	for i, r := range t.rows {
		if r.Name == "" {
			continue
		}
		if _, seen := t.byName[r.Name]; !seen {
			t.byName[r.Name] = i
		}
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns a copy of the rows in table order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Lookup returns the first row whose Name equals name exactly.
func (t *Table) Lookup(name string) (Row, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// ParseFactor parses a factor cell. Both "0.227" and "0,227" are accepted,
// as are spaces used as thousands separators.
func ParseFactor(s string) (Factor, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Factor{}, nil
	}
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", ",", ".").Replace(s)
	v, err := strconv.ParseFloat(clean, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Factor{}, fmt.Errorf("%w: %q", ErrMalformedFactor, s)
	}
	return Factor{Value: v, Valid: true}, nil
}

// FormatFactor renders a factor cell for persistence; missing factors are empty.
func FormatFactor(f Factor) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}
