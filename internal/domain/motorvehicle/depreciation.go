package motorvehicle

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/workpaper"
)

// DepreciationResult is the depreciation outcome for one period. The
// closing adjustable value becomes the next period's opening value; the
// caller persists that, the calculator never writes state.
type DepreciationResult struct {
	Method                 DepreciationMethod `json:"method"`
	EffectiveLifeYears     decimal.Decimal    `json:"effective_life_years"`
	CostBase               decimal.Decimal    `json:"cost_base"`
	OpeningAdjustableValue decimal.Decimal    `json:"opening_adjustable_value"`
	DaysHeld               int                `json:"days_held"`
	DaysInYear             int                `json:"days_in_year"`
	Amount                 decimal.Decimal    `json:"amount"`
	ClosingAdjustableValue decimal.Decimal    `json:"closing_adjustable_value"`
}

// BalancingAdjustment is recognized in the period containing the sale. A
// gain (termination value above closing adjustable value) is assessable
// income; a loss is an additional deduction.
type BalancingAdjustment struct {
	TerminationValue decimal.Decimal `json:"termination_value"`
	AdjustableValue  decimal.Decimal `json:"adjustable_value"`
	Amount           decimal.Decimal `json:"amount"`
	IsGain           bool            `json:"is_gain"`
}

type depreciationInput struct {
	purchase     workpaper.AssetPurchase
	sale         *workpaper.AssetSale
	method       DepreciationMethod
	openingValue *decimal.Decimal
	periodStart  time.Time
	periodEnd    time.Time
	rates        Rates
}

// computeDepreciation applies the car limit, pro-rates by days held inside
// the period and depreciates by the selected formula.
func computeDepreciation(in depreciationInput) (DepreciationResult, string) {
	warning := ""

	costBase := in.purchase.CostBase()
	if costBase.GreaterThan(in.rates.CarDepreciationLimit) {
		warning = "Vehicle cost " + costBase.StringFixed(2) +
			" exceeds the car limit " + in.rates.CarDepreciationLimit.StringFixed(2) +
			", depreciation limited to the car limit"
		costBase = in.rates.CarDepreciationLimit
	}

	opening := costBase
	if in.openingValue != nil && in.openingValue.IsPositive() {
		opening = *in.openingValue
	}

	held := heldWindow(in)
	daysHeld := inclusiveDays(held.start, held.end)
	daysInYear := inclusiveDays(in.periodStart, in.periodEnd)

	var annual decimal.Decimal
	if in.method == DepreciationPrimeCost {
		annual = costBase.Mul(in.rates.PrimeCostRate)
	} else {
		annual = opening.Mul(in.rates.DiminishingValueRate)
	}

	amount := annual.Mul(decimal.NewFromInt(int64(daysHeld))).
		Div(decimal.NewFromInt(int64(daysInYear))).Round(2)

	closing := opening.Sub(amount)
	if closing.IsNegative() {
		closing = decimal.Zero
	}

	return DepreciationResult{
		Method:                 in.method,
		EffectiveLifeYears:     in.rates.EffectiveLifeYears,
		CostBase:               costBase,
		OpeningAdjustableValue: opening,
		DaysHeld:               daysHeld,
		DaysInYear:             daysInYear,
		Amount:                 amount,
		ClosingAdjustableValue: closing,
	}, warning
}

type dateWindow struct {
	start, end time.Time
}

// heldWindow clamps purchase and sale dates to the period boundaries
func heldWindow(in depreciationInput) dateWindow {
	start := in.periodStart
	if in.purchase.Date != nil && in.purchase.Date.After(start) {
		start = *in.purchase.Date
	}
	end := in.periodEnd
	if in.sale != nil && in.sale.Date != nil && in.sale.Date.Before(end) {
		end = *in.sale.Date
	}
	return dateWindow{start: start, end: end}
}

func inclusiveDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}

// computeBalancingAdjustment compares sale proceeds (ex GST when GST was
// charged) with the closing adjustable value.
func computeBalancingAdjustment(sale workpaper.AssetSale, closing decimal.Decimal) BalancingAdjustment {
	termination := sale.Price
	if sale.GST != nil {
		termination = termination.Sub(*sale.GST)
	}

	adj := BalancingAdjustment{
		TerminationValue: termination,
		AdjustableValue:  closing,
	}
	if termination.GreaterThan(closing) {
		adj.Amount = termination.Sub(closing)
		adj.IsGain = true
	} else {
		adj.Amount = closing.Sub(termination)
	}
	return adj
}
