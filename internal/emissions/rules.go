package emissions

import (
	"fmt"
	"sort"
)

// Rule is an annualization rule tag.
type Rule string

// Annualization rules. A subcategory with no rule is treated as RuleAnnual.
const (
	// RuleAnnual leaves the quantity unchanged (yearly distances).
	RuleAnnual Rule = "annual"
	// RuleMonthly multiplies a per-month quantity by MonthsPerYear.
	RuleMonthly Rule = "monthly"
	// RuleWeeklyMeals converts meals per week to kg per year.
	RuleWeeklyMeals Rule = "weekly_meals"
	// RuleDeviceCount leaves a count of owned devices unchanged.
	RuleDeviceCount Rule = "device_count"
)

// Calendar constants used by the rules.
const (
	MonthsPerYear = 12
	WeeksPerYear  = 52

	// DefaultServingWeightKg is the average mass of one meal.
	DefaultServingWeightKg = 0.2
)

// Params carries the tunable constants of the rules.
type Params struct {
	ServingWeightKg float64
}

// annualizer converts a raw quantity into an annual quantity.
type annualizer func(quantity float64, p Params) float64

//nolint:gochecknoglobals // Fixed registry of rule implementations.
var annualizers = map[Rule]annualizer{
	RuleAnnual:      func(q float64, _ Params) float64 { return q },
	RuleMonthly:     func(q float64, _ Params) float64 { return q * MonthsPerYear },
	RuleWeeklyMeals: func(q float64, p Params) float64 { return q * WeeksPerYear * p.ServingWeightKg },
	// Factors for devices are per device owned, not per use.
	RuleDeviceCount: func(q float64, _ Params) float64 { return q },
}

// KnownRules lists the registered rule tags in sorted order.
func KnownRules() []Rule {
	out := make([]Rule, 0, len(annualizers))
	for r := range annualizers {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// RuleTable maps subcategory labels to rule tags.
type RuleTable map[string]Rule

// NewRuleTable converts a configured subcategory → tag mapping, rejecting
// unknown tags.
func NewRuleTable(raw map[string]string) (RuleTable, error) {
	t := make(RuleTable, len(raw))
	for sub, tag := range raw {
		r := Rule(tag)
		if _, ok := annualizers[r]; !ok {
			return nil, fmt.Errorf("%w %q for subcategory %q (known: %v)", ErrUnknownRule, tag, sub, KnownRules())
		}
		t[sub] = r
	}
	return t, nil
}

// RuleFor returns the rule of subcategory, defaulting to RuleAnnual.
func (t RuleTable) RuleFor(subcategory string) Rule {
	if r, ok := t[subcategory]; ok {
		return r
	}
	return RuleAnnual
}

// Annualize applies rule r to quantity.
func Annualize(r Rule, quantity float64, p Params) float64 {
	fn, ok := annualizers[r]
	if !ok {
		fn = annualizers[RuleAnnual]
	}
	return fn(quantity, p)
}
