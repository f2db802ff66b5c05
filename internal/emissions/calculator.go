// Package emissions turns consumption answers into annual kg CO2 figures
// using the unified reference table, and aggregates them for reporting.
package emissions

import (
	"context"

	"github.com/rshade/carboncalc/internal/logging"
	"github.com/rshade/carboncalc/internal/reference"
	"github.com/rshade/carboncalc/internal/survey"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// ErrUnknownRule indicates a rule tag with no registered implementation.
const ErrUnknownRule = constError("unknown annualization rule")

// FactorSource resolves an item name to its reference row.
type FactorSource interface {
	Lookup(name string) (reference.Row, bool)
}

// Entry is the computed emissions of one subcategory.
type Entry struct {
	Category    string
	Subcategory string
	// KgCO2 is zero when no reference row matched.
	KgCO2 float64

	Rule           Rule
	AnnualQuantity float64
	Factor         float64
	Unit           string
	Matched        bool
}

// Calculator applies annualization rules and emission factors.
type Calculator struct {
	rules  RuleTable
	params Params
}

// NewCalculator returns a Calculator. A non-positive serving weight falls
// back to DefaultServingWeightKg.
func NewCalculator(rules RuleTable, params Params) *Calculator {
	if params.ServingWeightKg <= 0 {
		params.ServingWeightKg = DefaultServingWeightKg
	}
	return &Calculator{rules: rules, params: params}
}

// Calculate returns one Entry per consumption entry, in the same order.
// It has no side effects beyond logging.
func (c *Calculator) Calculate(ctx context.Context, consumption survey.Consumption, factors FactorSource) Result {
	log := logging.FromContext(ctx).With().Str("component", "emissions").Logger()

	entries := make([]Entry, 0, len(consumption.Entries))
	for _, in := range consumption.Entries {
		rule := c.rules.RuleFor(in.Subcategory)
		out := Entry{
			Category:       in.Category,
			Subcategory:    in.Subcategory,
			Rule:           rule,
			AnnualQuantity: Annualize(rule, in.Quantity, c.params),
		}

		row, ok := factors.Lookup(in.Subcategory)
		switch {
		case !ok:
			log.Debug().Str("subcategory", in.Subcategory).Msg("no reference row, emissions set to zero")
		case !row.Factor.Valid:
			log.Warn().
				Str("subcategory", in.Subcategory).
				Str("element_id", row.ElementID).
				Msg("reference row has no factor, emissions set to zero")
		default:
			out.Matched = true
			out.Factor = row.Factor.Value
			out.Unit = row.Unit
			out.KgCO2 = out.AnnualQuantity * row.Factor.Value
		}
		entries = append(entries, out)
	}
	return Result{Entries: entries}
}
