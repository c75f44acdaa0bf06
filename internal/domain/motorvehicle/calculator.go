package motorvehicle

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/workpaper"
)

var oneHundred = decimal.NewFromInt(100)

// Calculator computes motor vehicle deductions. It is pure: it reads its
// inputs, returns a Result and writes nothing.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a calculator with the given rates
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Rates returns the rates the calculator was configured with
func (c *Calculator) Rates() Rates {
	return c.rates
}

// Calculate runs the method selected by config over the effective
// transactions for the period. Field overrides on the module take
// precedence over config values, mirroring the transaction rule. Missing
// optional inputs degrade to zero contribution with a warning; only an
// unknown method is an error.
func (c *Calculator) Calculate(cfg workpaper.ModuleConfig, txs []workpaper.EffectiveTransaction,
	fieldOverrides []*workpaper.OverrideRecord, periodStart, periodEnd time.Time) *Result {

	method := c.resolveMethod(cfg, fieldOverrides)
	result := newResult(method)

	if note := c.kmSummaryFromConfig(cfg).ReconcileNote(); note != "" {
		result.addWarning(note)
	}

	overridePct := fieldOverrideDecimal(fieldOverrides, "business_pct")

	switch method {
	case workpaper.MethodCentsPerKM:
		c.calculateCentsPerKM(cfg, result)
	case workpaper.MethodLogbook:
		c.calculateLogbook(cfg, txs, overridePct, result)
	case workpaper.MethodActualExpenses:
		c.calculateActualExpenses(cfg, txs, overridePct, result)
	case workpaper.MethodEstimatedFuel:
		c.calculateEstimatedFuel(cfg, result)
	default:
		result.addError(fmt.Sprintf("Unknown method: %s", method))
		return result
	}

	if method == workpaper.MethodLogbook || method == workpaper.MethodActualExpenses {
		c.applyDepreciation(cfg, periodStart, periodEnd, result)
		// the disposal is recognized only in the period containing the sale
		if cfg.Sale != nil && cfg.Sale.Date != nil &&
			!cfg.Sale.Date.Before(periodStart) && !cfg.Sale.Date.After(periodEnd) {
			c.applyBalancingAdjustment(cfg, result)
		}
	}

	c.finalValidation(method, result)
	return result
}

// resolveMethod applies the override-over-config precedence for the
// method selection, defaulting to cents per km.
func (c *Calculator) resolveMethod(cfg workpaper.ModuleConfig, fieldOverrides []*workpaper.OverrideRecord) workpaper.CalculationMethod {
	if v := fieldOverrideValue(fieldOverrides, "method"); v != "" {
		return workpaper.CalculationMethod(v)
	}
	if cfg.Method != nil && *cfg.Method != "" {
		return workpaper.CalculationMethod(*cfg.Method)
	}
	return workpaper.MethodCentsPerKM
}

func (c *Calculator) kmSummaryFromConfig(cfg workpaper.ModuleConfig) KMSummary {
	return NewKMSummary(decOrZero(cfg.TotalKM), decOrZero(cfg.BusinessKM), decOrZero(cfg.PrivateKM))
}

func (c *Calculator) calculateCentsPerKM(cfg workpaper.ModuleConfig, result *Result) {
	businessKM := decOrZero(cfg.BusinessKM)
	if !businessKM.IsPositive() {
		result.addWarning("Business kilometres not provided")
	}

	cappedKM := businessKM
	if businessKM.GreaterThan(c.rates.CentsPerKMMax) {
		result.addWarning(fmt.Sprintf("Business km (%s) exceeds the %s km cap, claim computed on the cap",
			businessKM, c.rates.CentsPerKMMax))
		cappedKM = c.rates.CentsPerKMMax
	}

	deduction := cappedKM.Mul(c.rates.CentsPerKMRate).Round(2)

	result.KMData = c.kmSummaryFromConfig(cfg)
	result.BusinessPercentage = oneHundred
	result.DeductionBeforeBusinessPct = deduction
	result.Deduction = deduction
	// the set rate already absorbs all running costs, no GST credit arises
	result.GSTClaimable = decimal.Zero
}

func (c *Calculator) calculateLogbook(cfg workpaper.ModuleConfig, txs []workpaper.EffectiveTransaction,
	overridePct *decimal.Decimal, result *Result) {

	if cfg.LogbookStart != nil && cfg.LogbookEnd != nil {
		period := NewLogbookPeriod(*cfg.LogbookStart, *cfg.LogbookEnd)
		result.Logbook = &period
		if !period.Valid {
			result.addWarning(period.ValidationNote)
		}
	}

	km := c.kmSummaryFromConfig(cfg)

	pct := decimal.Zero
	switch {
	case overridePct != nil:
		pct = *overridePct
	case cfg.LogbookPct != nil:
		pct = *cfg.LogbookPct
	case km.BusinessPercentage.IsPositive():
		pct = km.BusinessPercentage
	}
	if !pct.IsPositive() {
		result.addWarning("Logbook percentage is 0 or not set")
	}

	c.processTransactions(txs, pct, result)

	km.LogbookPercentage = &pct
	result.KMData = km
	result.BusinessPercentage = pct
}

func (c *Calculator) calculateActualExpenses(cfg workpaper.ModuleConfig, txs []workpaper.EffectiveTransaction,
	overridePct *decimal.Decimal, result *Result) {

	pct := oneHundred
	if overridePct != nil {
		pct = *overridePct
	}

	c.processTransactions(txs, pct, result)

	result.KMData = c.kmSummaryFromConfig(cfg)
	result.BusinessPercentage = pct
}

func (c *Calculator) calculateEstimatedFuel(cfg workpaper.ModuleConfig, result *Result) {
	var in workpaper.FuelEstimateInput
	if cfg.FuelEstimate != nil {
		in = *cfg.FuelEstimate
	}

	fuelType := in.FuelType
	if fuelType == "" {
		fuelType = "petrol"
	}

	rate := decOrZero(in.ConsumptionRate)
	if !rate.IsPositive() {
		rate = c.rates.FuelBenchmarks.ForEngineSize(in.EngineSizeLitres)
	}

	price := decOrZero(in.FuelPricePerLitre)
	if !price.IsPositive() {
		price = c.rates.DefaultFuelPrice(fuelType)
	}

	businessKM := decOrZero(in.BusinessKM)
	if !businessKM.IsPositive() {
		businessKM = decOrZero(cfg.BusinessKM)
	}

	litres := businessKM.Div(oneHundred).Mul(rate)
	cost := litres.Mul(price).Round(2)
	gst := cost.Div(c.rates.GSTDivisor).Round(2)

	result.FuelEstimate = &FuelEstimateResult{
		FuelType:          fuelType,
		ConsumptionRate:   rate,
		FuelPricePerLitre: price,
		BusinessKM:        businessKM,
		EstimatedLitres:   litres.Round(2),
		EstimatedCost:     cost,
		EstimatedGST:      gst,
	}
	result.KMData = NewKMSummary(decOrZero(cfg.TotalKM), businessKM, decOrZero(cfg.PrivateKM))
	// the estimate is already business-only
	result.BusinessPercentage = oneHundred
	result.DeductionBeforeBusinessPct = cost
	result.Deduction = cost
	result.GSTClaimable = gst
	result.TotalExpenses = cost
	result.ExpenseBreakdown = []ExpenseBreakdown{{
		Category:       workpaper.CategoryVehicleFuel,
		GrossAmount:    cost,
		GSTAmount:      gst,
		NetAmount:      cost.Sub(gst),
		BusinessAmount: cost,
		BusinessGST:    gst,
	}}
	result.addWarning("Using estimated fuel costs, retain documentation of km records")
}

// gstClaimable reports whether a GST credit arises for an expense
// category. Interest and depreciation carry no GST.
func gstClaimable(category workpaper.TransactionCategory) bool {
	return category != workpaper.CategoryVehicleInterest &&
		category != workpaper.CategoryVehicleDepreciation
}

// processTransactions groups the vehicle expense transactions by category
// and applies both the module business percentage and each transaction's
// own business percentage.
func (c *Calculator) processTransactions(txs []workpaper.EffectiveTransaction, businessPct decimal.Decimal, result *Result) {
	byCategory := make(map[workpaper.TransactionCategory]*ExpenseBreakdown)

	modulePct := businessPct.Div(oneHundred)
	for _, tx := range txs {
		if tx.Excluded || !tx.Category.IsVehicle() {
			continue
		}

		b, ok := byCategory[tx.Category]
		if !ok {
			b = &ExpenseBreakdown{Category: tx.Category}
			byCategory[tx.Category] = b
		}

		amount := tx.Amount.Amount()
		gst := tx.GSTAmount.Amount()
		effectivePct := modulePct.Mul(tx.BusinessPct.Div(oneHundred))

		b.GrossAmount = b.GrossAmount.Add(amount)
		b.GSTAmount = b.GSTAmount.Add(gst)
		b.NetAmount = b.NetAmount.Add(amount.Sub(gst))
		b.TransactionCount++
		b.BusinessAmount = b.BusinessAmount.Add(amount.Mul(effectivePct))
		if gstClaimable(tx.Category) {
			b.BusinessGST = b.BusinessGST.Add(gst.Mul(effectivePct))
		}
	}

	breakdown := make([]ExpenseBreakdown, 0, len(byCategory))
	for _, b := range byCategory {
		breakdown = append(breakdown, *b)
	}
	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Category < breakdown[j].Category
	})

	totalBusiness := decimal.Zero
	totalBusinessGST := decimal.Zero
	totalGross := decimal.Zero
	for _, b := range breakdown {
		totalBusiness = totalBusiness.Add(b.BusinessAmount)
		totalBusinessGST = totalBusinessGST.Add(b.BusinessGST)
		totalGross = totalGross.Add(b.GrossAmount)
	}

	result.ExpenseBreakdown = breakdown
	result.TotalExpenses = totalGross.Round(2)
	result.DeductionBeforeBusinessPct = totalGross.Round(2)
	result.Deduction = totalBusiness.Round(2)
	result.GSTClaimable = totalBusinessGST.Round(2)
}

func (c *Calculator) applyDepreciation(cfg workpaper.ModuleConfig, periodStart, periodEnd time.Time, result *Result) {
	if cfg.Purchase == nil {
		return
	}

	method := DepreciationDiminishingValue
	if cfg.DepreciationMethod != nil && *cfg.DepreciationMethod != "" {
		method = DepreciationMethod(*cfg.DepreciationMethod)
	}

	rates := c.rates
	if cfg.EffectiveLifeYears != nil && cfg.EffectiveLifeYears.IsPositive() {
		// DV rate is 200% of prime cost, both follow the asset's life
		rates.EffectiveLifeYears = *cfg.EffectiveLifeYears
		rates.DiminishingValueRate = decimal.NewFromInt(2).Div(rates.EffectiveLifeYears)
		rates.PrimeCostRate = decimal.NewFromInt(1).Div(rates.EffectiveLifeYears)
	}

	dep, warning := computeDepreciation(depreciationInput{
		purchase:     *cfg.Purchase,
		sale:         cfg.Sale,
		method:       method,
		openingValue: cfg.OpeningAdjustableValue,
		periodStart:  periodStart,
		periodEnd:    periodEnd,
		rates:        rates,
	})
	if warning != "" {
		result.addWarning(warning)
	}
	if dep.DaysHeld == 0 {
		result.addWarning("Vehicle was not held during this period, no depreciation claimed")
		return
	}

	result.Depreciation = &dep

	businessDep := dep.Amount.Mul(result.BusinessPercentage.Div(oneHundred)).Round(2)
	result.ExpenseBreakdown = append(result.ExpenseBreakdown, ExpenseBreakdown{
		Category:       workpaper.CategoryVehicleDepreciation,
		GrossAmount:    dep.Amount,
		NetAmount:      dep.Amount,
		BusinessAmount: businessDep,
	})
	result.Deduction = result.Deduction.Add(businessDep)
}

func (c *Calculator) applyBalancingAdjustment(cfg workpaper.ModuleConfig, result *Result) {
	if result.Depreciation == nil {
		return
	}

	adj := computeBalancingAdjustment(*cfg.Sale, result.Depreciation.ClosingAdjustableValue)

	businessAmount := adj.Amount.Mul(result.BusinessPercentage.Div(oneHundred)).Round(2)
	adj.Amount = businessAmount
	result.Balancing = &adj

	if adj.IsGain {
		result.addWarning(fmt.Sprintf("Balancing adjustment: %s gain on sale, assessable income",
			businessAmount.StringFixed(2)))
	} else {
		result.Deduction = result.Deduction.Add(businessAmount)
		result.addWarning(fmt.Sprintf("Balancing adjustment: %s loss on sale, additional deduction",
			businessAmount.StringFixed(2)))
	}
}

func (c *Calculator) finalValidation(method workpaper.CalculationMethod, result *Result) {
	if result.Deduction.IsNegative() {
		result.addError("Deduction cannot be negative")
	}
	if result.GSTClaimable.IsNegative() {
		result.addError("GST claimable cannot be negative")
	}
	if result.BusinessPercentage.GreaterThan(oneHundred) {
		result.addError("Business percentage cannot exceed 100%")
	}
	if len(result.ExpenseBreakdown) == 0 &&
		method != workpaper.MethodCentsPerKM && method != workpaper.MethodEstimatedFuel {
		result.addWarning("No vehicle expenses found")
	}
}

func decOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

func fieldOverrideValue(overrides []*workpaper.OverrideRecord, key string) string {
	for _, o := range overrides {
		if o.FieldKey == key {
			return o.Value
		}
	}
	return ""
}

func fieldOverrideDecimal(overrides []*workpaper.OverrideRecord, key string) *decimal.Decimal {
	v := fieldOverrideValue(overrides, key)
	if v == "" {
		return nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil
	}
	return &d
}
