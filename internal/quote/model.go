package quote

import (
	"github.com/bher20/solarquote/internal/load"
	"github.com/bher20/solarquote/internal/numeric"
)

// Customer identifies the site and the person asking for a quote. All fields
// are optional.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
}

// Input is an estimate request. Every numeric field is optional; a set field
// overrides what Estimate would otherwise derive or default.
type Input struct {
	Customer Customer `json:"customer"`

	// Load is the aggregated connected load, when the caller ran the load
	// calculator. Either Load or SystemSizeKW is normally supplied.
	Load *load.Summary `json:"load,omitempty"`

	SystemSizeKW        numeric.Float `json:"systemSizeKW"`
	DailyEnergyKWh      numeric.Float `json:"dailyEnergyKWh"`
	PanelQuantity       numeric.Int   `json:"panelQuantity"`
	PanelsRequired      numeric.Int   `json:"panelsRequired"`
	InverterSizeKW      numeric.Float `json:"inverterSizeKW"`
	BatteryCapacityKWh  numeric.Float `json:"batteryCapacityKWh"`
	TotalCost           numeric.Float `json:"totalCost"`
	EstimatedCost       numeric.Float `json:"estimatedCost"`
	PaybackPeriod       string        `json:"paybackPeriod,omitempty"`
	TotalSavings25Years numeric.Float `json:"totalSavings25Years"`
	ROIPercentage       numeric.Float `json:"roiPercentage"`
}

// CostBreakdown is the investment split. Charges are whole currency units.
type CostBreakdown struct {
	SystemCost         float64 `json:"systemCost"`
	InstallationCharge float64 `json:"installationCharge"`
	TotalInvestment    float64 `json:"totalInvestment"`
}

// Environment is the estimated environmental impact of the system.
type Environment struct {
	AnnualCO2ReductionTons  float64 `json:"annualCO2ReductionTons"`
	CO2Reduction25YearsTons float64 `json:"co2Reduction25Years"`
	TreesEquivalent         float64 `json:"treesEquivalent"`
}

// ROI holds the savings projection.
type ROI struct {
	MonthlySavings      float64 `json:"monthlySavings"`
	AnnualSavings       float64 `json:"annualSavings"`
	PaybackPeriodYears  string  `json:"paybackPeriodYears"`
	TotalSavings25Years float64 `json:"totalSavings25Years"`
	ROIPercentage       float64 `json:"roiPercentage"`
}

// Result is a fully populated quote. Renderers may rely on every field being
// set and must treat the value as read-only.
type Result struct {
	Customer Customer `json:"customer"`

	DailyEnergyKWh       float64 `json:"dailyEnergyKWh"`
	SystemSizeKW         float64 `json:"systemSizeKW"`
	PanelQuantity        int     `json:"panelQuantity"`
	PanelWatts           int     `json:"panelWatts"`
	TotalPanelCapacityKW float64 `json:"totalPanelCapacityKW"`
	InverterSizeKW       float64 `json:"inverterSizeKW"`
	BatteryCapacityKWh   float64 `json:"batteryCapacityKWh"`

	Cost        CostBreakdown `json:"cost"`
	Environment Environment   `json:"environment"`
	ROI         ROI           `json:"roi"`
}
