// Package quote sizes and costs a solar system and caches the results.
package quote

import (
	"github.com/shopspring/decimal"

	"github.com/bher20/solarquote/internal/numeric"
)

// Business assumptions. The payback and ROI fallbacks are fixed marketing
// figures, not derived from tariff or generation data.
const (
	PanelWatts           = 550
	SunHoursPerDay       = 5
	DefaultPaybackPeriod = "~4–5"
	DefaultROIPercentage = 520
)

var (
	installationRate   = decimal.RequireFromString("0.15")
	investmentRate     = decimal.RequireFromString("1.15")
	monthlySavingsRate = decimal.RequireFromString("0.02")
	annualSavingsRate  = decimal.RequireFromString("0.24")
	co2TonsPerKWYear   = decimal.RequireFromString("1.2")
	treesPerKW         = decimal.NewFromInt(30)
	co2TonsPerKW25     = decimal.NewFromInt(30)
	savings25Multiple  = decimal.NewFromInt(6)
)

// Estimate derives a quote from in. It is a total function: missing or
// invalid numbers fall back to their documented defaults, negative values
// are treated as zero and every amount is capped at numeric.Max, so the
// result always encodes as JSON.
func Estimate(in Input) Result {
	var loadKW float64
	if in.Load != nil {
		loadKW = numeric.Clamp(in.Load.TotalKW)
	}

	size := in.SystemSizeKW.Or(loadKW)
	if in.Load == nil {
		loadKW = size
	}
	daily := in.DailyEnergyKWh.Or(loadKW * SunHoursPerDay)

	panels := in.PanelQuantity.Or(in.PanelsRequired.Or(0))

	systemCost := in.TotalCost.Or(in.EstimatedCost.Or(0))
	cost := decimal.NewFromFloat(systemCost)
	sizeD := decimal.NewFromFloat(size)

	payback := in.PaybackPeriod
	if payback == "" {
		payback = DefaultPaybackPeriod
	}

	return Result{
		Customer:             in.Customer,
		DailyEnergyKWh:       daily,
		SystemSizeKW:         size,
		PanelQuantity:        panels,
		PanelWatts:           PanelWatts,
		TotalPanelCapacityKW: float64(numeric.MulSat(panels, PanelWatts)) / 1000,
		InverterSizeKW:       in.InverterSizeKW.Or(0),
		BatteryCapacityKWh:   in.BatteryCapacityKWh.Or(0),
		Cost: CostBreakdown{
			SystemCost:         systemCost,
			InstallationCharge: roundTo(cost.Mul(installationRate), 0),
			TotalInvestment:    roundTo(cost.Mul(investmentRate), 0),
		},
		Environment: Environment{
			AnnualCO2ReductionTons:  roundTo(sizeD.Mul(co2TonsPerKWYear), 1),
			CO2Reduction25YearsTons: roundTo(sizeD.Mul(co2TonsPerKW25), 0),
			TreesEquivalent:         roundTo(sizeD.Mul(treesPerKW), 0),
		},
		ROI: ROI{
			MonthlySavings:      roundTo(cost.Mul(monthlySavingsRate), 0),
			AnnualSavings:       roundTo(cost.Mul(annualSavingsRate), 0),
			PaybackPeriodYears:  payback,
			TotalSavings25Years: in.TotalSavings25Years.Or(cost.Mul(savings25Multiple).InexactFloat64()),
			ROIPercentage:       in.ROIPercentage.Or(DefaultROIPercentage),
		},
	}
}

// roundTo rounds half away from zero, which is half-up for the non-negative
// amounts handled here.
func roundTo(d decimal.Decimal, places int32) float64 {
	return d.Round(places).InexactFloat64()
}
