package solar

import (
	"math"

	"github.com/sells-group/solar-scout/internal/model"
)

// Params are the caller-supplied knobs for an estimate.
type Params struct {
	UsableFraction   float64 // fraction of roof usable for panels, 0-1
	PanelDensityWM2  float64 // panel power density in W/m2
	ElectricityPrice float64 // $/kWh
	IncludeITC       bool    // apply the 30% federal ITC
	DiscountRate     float64 // for NPV; zero means DefaultDiscountRate
}

// DefaultParams mirrors the API defaults.
func DefaultParams() Params {
	return Params{
		UsableFraction:   0.65,
		PanelDensityWM2:  200,
		ElectricityPrice: 0.12,
		IncludeITC:       true,
		DiscountRate:     DefaultDiscountRate,
	}
}

// Estimate holds generation, financial, and environmental metrics for one
// roof area.
type Estimate struct {
	UsableAreaM2   float64 `json:"usable_area_m2"`
	CapacityKW     float64 `json:"capacity_kw"`
	CapacityMW     float64 `json:"capacity_mw"`
	AnnualKWh      float64 `json:"annual_kwh"`
	AnnualMWh      float64 `json:"annual_mwh"`
	CapacityFactor float64 `json:"capacity_factor"`

	AnnualRevenue      float64 `json:"annual_revenue"`
	GrossInstallCost   float64 `json:"gross_install_cost"`
	ITCSavings         float64 `json:"itc_savings"`
	InstallCost        float64 `json:"install_cost"`
	AnnualOM           float64 `json:"annual_om"`
	SimplePaybackYears float64 `json:"simple_payback_years"`
	PaybackYears       float64 `json:"payback_years"`
	NPV25Yr            float64 `json:"npv_25yr"`
	LifetimeMWh        float64 `json:"lifetime_mwh"`
	CostPerWatt        float64 `json:"cost_per_watt"`
	ITCRate            float64 `json:"itc_rate"`
	DiscountRate       float64 `json:"discount_rate"`
	DegradationRate    float64 `json:"degradation_rate"`

	// YearlyGenerationMWh is the degradation-adjusted 25-year series.
	YearlyGenerationMWh []float64 `json:"yearly_generation_mwh"`

	CO2AvoidedTons         float64 `json:"co2_avoided_tons"`
	CO2AvoidedLifetimeTons float64 `json:"co2_avoided_lifetime_tons"`
	HomesPowered           float64 `json:"homes_powered"`
	CO2RateKgKWh           float64 `json:"co2_rate_kg_kwh"`
}

// Totals is an Estimate over the summed area of a building list.
type Totals struct {
	Estimate
	BuildingCount   int     `json:"building_count"`
	TotalRoofAreaM2 float64 `json:"total_roof_area_m2"`
}

// Compute produces the full estimate for a roof area in the given state.
// It is a pure function: the same inputs always yield the same outputs and
// nothing shared is touched.
func Compute(areaM2 float64, state string, p Params) Estimate {
	cf := CapacityFactor(state)
	co2Rate := CO2Rate(state)
	discount := p.DiscountRate
	if discount == 0 {
		discount = DefaultDiscountRate
	}

	usable := areaM2 * p.UsableFraction
	capacityKW := usable * p.PanelDensityWM2 / 1000 // DC nameplate
	annualKWhYr1 := capacityKW * hoursPerYear * cf  // year-1 AC output

	grossCost := capacityKW * 1000 * InstallCostPerWatt
	var itcSavings float64
	if p.IncludeITC {
		itcSavings = grossCost * ITCRate
	}
	netCost := grossCost - itcSavings
	annualOM := capacityKW * OMCostPerKWYear

	annualRevenueYr1 := annualKWhYr1 * p.ElectricityPrice
	netAnnualYr1 := annualRevenueYr1 - annualOM

	simplePayback := 999.0
	if netAnnualYr1 > 0 {
		simplePayback = netCost / netAnnualYr1
	}

	// 25-year discounted cash flow with degradation.
	npv := -netCost
	cumulativeKWh := 0.0
	cumulativeCashflow := -netCost
	paybackYear := 0
	yearly := make([]float64, 0, SystemLifetimeYears)

	for year := 1; year <= SystemLifetimeYears; year++ {
		degradation := math.Pow(1-AnnualDegradation, float64(year-1))
		yearKWh := annualKWhYr1 * degradation
		yearCashflow := yearKWh*p.ElectricityPrice - annualOM
		npv += yearCashflow / math.Pow(1+discount, float64(year))
		cumulativeKWh += yearKWh
		cumulativeCashflow += yearCashflow

		if paybackYear == 0 && cumulativeCashflow >= 0 {
			paybackYear = year
		}

		yearly = append(yearly, round(yearKWh/1000, 1))
	}

	payback := float64(paybackYear)
	if paybackYear == 0 {
		payback = round(simplePayback, 1)
	}

	itcRate := 0.0
	if p.IncludeITC {
		itcRate = ITCRate
	}

	return Estimate{
		UsableAreaM2:   round(usable, 1),
		CapacityKW:     round(capacityKW, 1),
		CapacityMW:     round(capacityKW/1000, 3),
		AnnualKWh:      round(annualKWhYr1, 0),
		AnnualMWh:      round(annualKWhYr1/1000, 1),
		CapacityFactor: cf,

		AnnualRevenue:      round(annualRevenueYr1, 0),
		GrossInstallCost:   round(grossCost, 0),
		ITCSavings:         round(itcSavings, 0),
		InstallCost:        round(netCost, 0),
		AnnualOM:           round(annualOM, 0),
		SimplePaybackYears: round(simplePayback, 1),
		PaybackYears:       payback,
		NPV25Yr:            round(npv, 0),
		LifetimeMWh:        round(cumulativeKWh/1000, 0),
		CostPerWatt:        InstallCostPerWatt,
		ITCRate:            itcRate,
		DiscountRate:       discount,
		DegradationRate:    AnnualDegradation,

		YearlyGenerationMWh: yearly,

		CO2AvoidedTons:         round(annualKWhYr1*co2Rate/1000, 1),
		CO2AvoidedLifetimeTons: round(cumulativeKWh*co2Rate/1000, 0),
		HomesPowered:           round(annualKWhYr1/AvgHomeKWhYear, 0),
		CO2RateKgKWh:           co2Rate,
	}
}

// TotalsFor aggregates a building list into one estimate over the summed
// roof area.
func TotalsFor(buildings []model.BuildingRecord, state string, p Params) Totals {
	var totalArea float64
	for _, b := range buildings {
		totalArea += b.AreaM2
	}
	return Totals{
		Estimate:        Compute(totalArea, state, p),
		BuildingCount:   len(buildings),
		TotalRoofAreaM2: round(totalArea, 0),
	}
}

func round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
