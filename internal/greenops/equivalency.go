package greenops

import (
	"fmt"
	"math"
)

// Calculate computes equivalencies for kg CO2e.
//
// It returns an empty output (IsEmpty = true) and no error when kg is below
// MinEquivalencyThresholdKg, ErrNegativeValue for negative input, and
// ErrCalculationOverflow for NaN, infinite or overflowing values.
//
// On success DisplayText reads
// "Équivalent à ~{km} km en voiture ou ~{phones} recharges de smartphone".
func Calculate(kg float64) (EquivalencyOutput, error) {
	if math.IsInf(kg, 0) || math.IsNaN(kg) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	km := kg / KmDrivenFactor
	phones := kg / SmartphoneChargeFactor
	trees := kg / TreeSeedlingFactor

	if math.IsInf(km, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	kmFormatted := FormatLarge(km)
	phonesFormatted := FormatLarge(phones)

	results := []EquivalencyResult{
		{
			Type:           EquivalencyKmDriven,
			Value:          km,
			FormattedValue: kmFormatted,
			Label:          "km en voiture",
		},
		{
			Type:           EquivalencySmartphonesCharged,
			Value:          phones,
			FormattedValue: phonesFormatted,
			Label:          "recharges de smartphone",
		},
		{
			Type:           EquivalencyTreeSeedlings,
			Value:          trees,
			FormattedValue: FormatLarge(trees),
			Label:          "arbres plantés pendant 10 ans",
		},
	}

	return EquivalencyOutput{
		InputKg: kg,
		Results: results,
		DisplayText: fmt.Sprintf("Équivalent à ~%s km en voiture ou ~%s recharges de smartphone",
			kmFormatted, phonesFormatted),
	}, nil
}
