package motorvehicle

import "github.com/shopspring/decimal"

// DepreciationMethod selects the depreciation formula
type DepreciationMethod string

const (
	DepreciationDiminishingValue DepreciationMethod = "diminishing_value"
	DepreciationPrimeCost        DepreciationMethod = "prime_cost"
)

// String returns the string representation of DepreciationMethod
func (m DepreciationMethod) String() string {
	return string(m)
}

// Rates carries the ATO rates and limits the calculator applies. Values are
// year-dependent and loaded from configuration; DefaultRates holds 2024-25.
type Rates struct {
	CentsPerKMRate       decimal.Decimal            `json:"cents_per_km_rate" mapstructure:"cents_per_km_rate"`
	CentsPerKMMax        decimal.Decimal            `json:"cents_per_km_max" mapstructure:"cents_per_km_max"`
	GSTDivisor           decimal.Decimal            `json:"gst_divisor" mapstructure:"gst_divisor"`
	CarDepreciationLimit decimal.Decimal            `json:"car_depreciation_limit" mapstructure:"car_depreciation_limit"`
	EffectiveLifeYears   decimal.Decimal            `json:"effective_life_years" mapstructure:"effective_life_years"`
	DiminishingValueRate decimal.Decimal            `json:"diminishing_value_rate" mapstructure:"diminishing_value_rate"`
	PrimeCostRate        decimal.Decimal            `json:"prime_cost_rate" mapstructure:"prime_cost_rate"`
	FuelBenchmarks       FuelBenchmarks             `json:"fuel_benchmarks" mapstructure:"fuel_benchmarks"`
	DefaultFuelPrices    map[string]decimal.Decimal `json:"default_fuel_prices" mapstructure:"default_fuel_prices"`
}

// FuelBenchmarks holds ATO fuel consumption benchmarks in L/100km by
// engine size band.
type FuelBenchmarks struct {
	Small     decimal.Decimal `json:"small" mapstructure:"small"`           // up to 1.6L
	Medium    decimal.Decimal `json:"medium" mapstructure:"medium"`         // 1.6L to 2.5L
	Large     decimal.Decimal `json:"large" mapstructure:"large"`           // 2.5L to 3.5L
	VeryLarge decimal.Decimal `json:"very_large" mapstructure:"very_large"` // over 3.5L
}

// ForEngineSize picks the benchmark band for an engine size in litres.
// A nil size falls back to the medium band.
func (b FuelBenchmarks) ForEngineSize(litres *decimal.Decimal) decimal.Decimal {
	if litres == nil {
		return b.Medium
	}
	switch {
	case litres.LessThanOrEqual(decimal.NewFromFloat(1.6)):
		return b.Small
	case litres.LessThanOrEqual(decimal.NewFromFloat(2.5)):
		return b.Medium
	case litres.LessThanOrEqual(decimal.NewFromFloat(3.5)):
		return b.Large
	default:
		return b.VeryLarge
	}
}

// DefaultRates returns the 2024-25 rates
func DefaultRates() Rates {
	return Rates{
		CentsPerKMRate:       decimal.NewFromFloat(0.85),
		CentsPerKMMax:        decimal.NewFromInt(5000),
		GSTDivisor:           decimal.NewFromInt(11),
		CarDepreciationLimit: decimal.NewFromInt(68108),
		EffectiveLifeYears:   decimal.NewFromInt(8),
		DiminishingValueRate: decimal.NewFromFloat(0.25),
		PrimeCostRate:        decimal.NewFromFloat(0.125),
		FuelBenchmarks: FuelBenchmarks{
			Small:     decimal.NewFromFloat(7.0),
			Medium:    decimal.NewFromFloat(9.0),
			Large:     decimal.NewFromFloat(11.0),
			VeryLarge: decimal.NewFromFloat(13.0),
		},
		DefaultFuelPrices: map[string]decimal.Decimal{
			"petrol":   decimal.NewFromFloat(1.80),
			"diesel":   decimal.NewFromFloat(1.90),
			"lpg":      decimal.NewFromFloat(1.00),
			"electric": decimal.NewFromFloat(0.30),
		},
	}
}

// DefaultFuelPrice returns the benchmark price per litre for a fuel type,
// petrol when the type is unknown.
func (r Rates) DefaultFuelPrice(fuelType string) decimal.Decimal {
	if p, ok := r.DefaultFuelPrices[fuelType]; ok {
		return p
	}
	return r.DefaultFuelPrices["petrol"]
}
