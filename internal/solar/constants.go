// Package solar is the pure financial model: area in, generation, cost, and
// environmental metrics out. It holds no mutable state, so concurrent
// requests with different parameters can never contaminate each other.
//
// Sources: capacity factors from the NREL 2023 Annual Technology Baseline
// (commercial rooftop PV, ~14% system losses included); install cost from
// SEIA/Wood Mackenzie U.S. Solar Market Insight 2025; grid CO2 intensity
// from EPA eGRID 2022.
package solar

// Panel and financial defaults.
const (
	// InstallCostPerWatt is the commercial rooftop cost in $/W (2025).
	InstallCostPerWatt = 1.40

	// ITCRate is the federal Investment Tax Credit for commercial solar.
	ITCRate = 0.30

	// AnnualDegradation is the panel output loss per year.
	AnnualDegradation = 0.005

	// SystemLifetimeYears is the modeled system lifetime.
	SystemLifetimeYears = 25

	// DefaultDiscountRate for NPV calculations.
	DefaultDiscountRate = 0.06

	// OMCostPerKWYear is O&M cost in $/kW/year.
	OMCostPerKWYear = 15.0

	// DefaultCapacityFactor is the US mean, used for unlisted states.
	DefaultCapacityFactor = 0.158

	// GridCO2KgPerKWh is the national mean grid intensity, used for
	// unlisted states.
	GridCO2KgPerKWh = 0.386

	// AvgHomeKWhYear is average US home consumption (EIA 2022).
	AvgHomeKWhYear = 10500

	hoursPerYear = 8760
)

// capacityFactors holds AC capacity factors for commercial rooftop PV by
// state, keyed by full state name.
var capacityFactors = map[string]float64{
	// Sunny Southwest
	"Arizona":    0.198,
	"Nevada":     0.191,
	"New Mexico": 0.198,

	"California": 0.185,

	// Texas and South
	"Texas":     0.175,
	"Florida":   0.171,
	"Louisiana": 0.168,
	"Hawaii":    0.180,

	// Mountain West
	"Colorado": 0.171,
	"Utah":     0.175,

	// Southeast
	"Georgia":        0.168,
	"North Carolina": 0.163,
	"South Carolina": 0.168,
	"Tennessee":      0.161,
	"Alabama":        0.168,

	// Mid-Atlantic
	"Virginia":     0.161,
	"Maryland":     0.158,
	"New Jersey":   0.158,
	"Pennsylvania": 0.153,
	"Delaware":     0.158,

	// Northeast
	"New York":      0.153,
	"Massachusetts": 0.153,
	"Connecticut":   0.153,
	"Rhode Island":  0.153,

	// Midwest
	"Illinois":  0.153,
	"Michigan":  0.146,
	"Minnesota": 0.153,
	"Ohio":      0.146,
	"Indiana":   0.153,
	"Wisconsin": 0.146,

	// Pacific Northwest
	"Washington": 0.140,
	"Oregon":     0.146,
}

// stateCO2Rates holds grid CO2 intensity in kg/kWh by state (eGRID 2022).
var stateCO2Rates = map[string]float64{
	"Arizona":        0.397,
	"California":     0.211,
	"Colorado":       0.525,
	"Florida":        0.379,
	"Georgia":        0.404,
	"Hawaii":         0.531,
	"Illinois":       0.301,
	"Maryland":       0.297,
	"Massachusetts":  0.270,
	"Michigan":       0.428,
	"Minnesota":      0.351,
	"Nevada":         0.307,
	"New Jersey":     0.217,
	"New York":       0.190,
	"North Carolina": 0.343,
	"Ohio":           0.489,
	"Pennsylvania":   0.336,
	"Tennessee":      0.302,
	"Texas":          0.380,
	"Virginia":       0.298,
	"Washington":     0.076,
}

// CapacityFactor returns the state capacity factor, or the US mean for
// states without a listing.
func CapacityFactor(state string) float64 {
	if cf, ok := capacityFactors[state]; ok {
		return cf
	}
	return DefaultCapacityFactor
}

// CO2Rate returns the state grid CO2 intensity in kg/kWh, or the national
// mean for states without a listing.
func CO2Rate(state string) float64 {
	if rate, ok := stateCO2Rates[state]; ok {
		return rate
	}
	return GridCO2KgPerKWh
}

// CapacityFactors returns a copy of the full per-state table.
func CapacityFactors() map[string]float64 {
	out := make(map[string]float64, len(capacityFactors))
	for k, v := range capacityFactors {
		out[k] = v
	}
	return out
}
