package emissions

// Result is the full set of computed emissions in taxonomy order.
type Result struct {
	Entries []Entry
}

// CategoryTotal is the subtotal of one category with its entries.
type CategoryTotal struct {
	Category string
	KgCO2    float64
	Entries  []Entry
}

// Subtotals groups entries by category in first-appearance order.
func (r Result) Subtotals() []CategoryTotal {
	var out []CategoryTotal
	index := make(map[string]int)
	for _, e := range r.Entries {
		i, ok := index[e.Category]
		if !ok {
			i = len(out)
			index[e.Category] = i
			out = append(out, CategoryTotal{Category: e.Category})
		}
		out[i].KgCO2 += e.KgCO2
		out[i].Entries = append(out[i].Entries, e)
	}
	return out
}

// Total returns the grand total as the sum of the category subtotals.
func (r Result) Total() float64 {
	total := 0.0
	for _, c := range r.Subtotals() {
		total += c.KgCO2
	}
	return total
}

// Lookup returns the entry of subcategory.
func (r Result) Lookup(subcategory string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Subcategory == subcategory {
			return e, true
		}
	}
	return Entry{}, false
}

// DefaultBaselineKg is the reference annual footprint used for the verdict.
const DefaultBaselineKg = 10000.0

// Verdict compares a total against the baseline.
type Verdict int

const (
	// VerdictBelow means total <= baseline (the boundary counts as below).
	VerdictBelow Verdict = iota
	// VerdictAbove means total > baseline.
	VerdictAbove
)

// Evaluate returns the verdict of total against baselineKg.
func Evaluate(total, baselineKg float64) Verdict {
	if total <= baselineKg {
		return VerdictBelow
	}
	return VerdictAbove
}

// String returns a human-readable representation of the Verdict.
func (v Verdict) String() string {
	if v == VerdictBelow {
		return "below"
	}
	return "above"
}
