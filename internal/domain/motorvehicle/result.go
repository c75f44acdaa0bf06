package motorvehicle

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/workpaper"
)

// ExpenseBreakdown sums one expense category across the period
type ExpenseBreakdown struct {
	Category         workpaper.TransactionCategory `json:"category"`
	GrossAmount      decimal.Decimal               `json:"gross_amount"`
	GSTAmount        decimal.Decimal               `json:"gst_amount"`
	NetAmount        decimal.Decimal               `json:"net_amount"`
	TransactionCount int                           `json:"transaction_count"`
	BusinessAmount   decimal.Decimal               `json:"business_amount"`
	BusinessGST      decimal.Decimal               `json:"business_gst"`
}

// FuelEstimateResult is the estimated-fuel working shown to staff
type FuelEstimateResult struct {
	FuelType          string          `json:"fuel_type"`
	ConsumptionRate   decimal.Decimal `json:"consumption_rate"`
	FuelPricePerLitre decimal.Decimal `json:"fuel_price_per_litre"`
	BusinessKM        decimal.Decimal `json:"business_km"`
	EstimatedLitres   decimal.Decimal `json:"estimated_litres"`
	EstimatedCost     decimal.Decimal `json:"estimated_cost"`
	EstimatedGST      decimal.Decimal `json:"estimated_gst"`
}

// Result is the full motor vehicle calculation output. Warnings surface
// judgment calls for staff; Errors mark genuinely invalid configuration
// and clear IsValid.
type Result struct {
	Method                     workpaper.CalculationMethod `json:"method"`
	KMData                     KMSummary                   `json:"km_data"`
	Logbook                    *LogbookPeriod              `json:"logbook,omitempty"`
	BusinessPercentage         decimal.Decimal             `json:"business_percentage"`
	ExpenseBreakdown           []ExpenseBreakdown          `json:"expense_breakdown"`
	TotalExpenses              decimal.Decimal             `json:"total_expenses"`
	Depreciation               *DepreciationResult         `json:"depreciation,omitempty"`
	DeductionBeforeBusinessPct decimal.Decimal             `json:"deduction_before_business_pct"`
	Deduction                  decimal.Decimal             `json:"deduction"`
	GSTClaimable               decimal.Decimal             `json:"gst_claimable"`
	FuelEstimate               *FuelEstimateResult         `json:"fuel_estimate,omitempty"`
	Balancing                  *BalancingAdjustment        `json:"balancing_adjustment,omitempty"`
	Warnings                   []string                    `json:"warnings"`
	Errors                     []string                    `json:"errors"`
	IsValid                    bool                        `json:"is_valid"`
	CalculatedAt               time.Time                   `json:"calculated_at"`
}

func newResult(method workpaper.CalculationMethod) *Result {
	return &Result{
		Method:       method,
		Warnings:     []string{},
		Errors:       []string{},
		IsValid:      true,
		CalculatedAt: time.Now().UTC(),
	}
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

// ToOutputSummary flattens the result into the module output map that job
// totals and freeze snapshots read.
func (r *Result) ToOutputSummary() workpaper.OutputSummary {
	out := workpaper.OutputSummary{
		"method":              r.Method.String(),
		"deduction":           r.Deduction.StringFixed(2),
		"gst_credit":          r.GSTClaimable.StringFixed(2),
		"business_percentage": r.BusinessPercentage.StringFixed(2),
		"total_expenses":      r.TotalExpenses.StringFixed(2),
		"is_valid":            r.IsValid,
		"warnings":            r.Warnings,
		"errors":              r.Errors,
		"calculated_at":       r.CalculatedAt.Format(time.RFC3339),
	}
	if r.Depreciation != nil {
		out["depreciation"] = r.Depreciation.Amount.StringFixed(2)
		out["closing_adjustable_value"] = r.Depreciation.ClosingAdjustableValue.StringFixed(2)
	}
	if r.Balancing != nil {
		out["balancing_adjustment"] = r.Balancing.Amount.StringFixed(2)
		out["balancing_is_gain"] = r.Balancing.IsGain
	}
	return out
}
