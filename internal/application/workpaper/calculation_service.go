package workpaper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/motorvehicle"
	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// CalculationService builds effective transactions and runs module
// calculation engines. Engines are pure; this service does the fetching
// before and the persisting after.
type CalculationService struct {
	jobRepo           workpaper.JobRepository
	moduleRepo        workpaper.ModuleRepository
	transactionRepo   workpaper.TransactionRepository
	overrideRepo      workpaper.OverrideRepository
	fieldOverrideRepo workpaper.FieldOverrideRepository
	calculator        *motorvehicle.Calculator
}

// NewCalculationService creates a new CalculationService
func NewCalculationService(
	jobRepo workpaper.JobRepository,
	moduleRepo workpaper.ModuleRepository,
	transactionRepo workpaper.TransactionRepository,
	overrideRepo workpaper.OverrideRepository,
	fieldOverrideRepo workpaper.FieldOverrideRepository,
	calculator *motorvehicle.Calculator,
) *CalculationService {
	return &CalculationService{
		jobRepo:           jobRepo,
		moduleRepo:        moduleRepo,
		transactionRepo:   transactionRepo,
		overrideRepo:      overrideRepo,
		fieldOverrideRepo: fieldOverrideRepo,
		calculator:        calculator,
	}
}

// moduleCategories maps a module type to the transaction categories that
// feed its calculation.
var moduleCategories = map[workpaper.ModuleType][]workpaper.TransactionCategory{
	workpaper.ModuleTypeMotorVehicle: {
		workpaper.CategoryVehicleFuel, workpaper.CategoryVehicleRegistration,
		workpaper.CategoryVehicleInsurance, workpaper.CategoryVehicleRepairs,
		workpaper.CategoryVehicleLease, workpaper.CategoryVehicleInterest,
		workpaper.CategoryVehicleOther,
	},
	workpaper.ModuleTypeFDCIncome:    {workpaper.CategoryIncome},
	workpaper.ModuleTypeInternet:     {workpaper.CategoryInternet},
	workpaper.ModuleTypeMobile:       {workpaper.CategoryMobile},
	workpaper.ModuleTypeHomeOffice:   {workpaper.CategoryHomeOffice},
	workpaper.ModuleTypeFoodGST:      {workpaper.CategoryFood},
	workpaper.ModuleTypeDepreciation: {workpaper.CategoryEquipment},
}

// CalculationResponse is the outcome of a module calculation
type CalculationResponse struct {
	ModuleID         uuid.UUID               `json:"module_id"`
	ModuleType       string                  `json:"module_type"`
	OutputSummary    workpaper.OutputSummary `json:"output_summary"`
	MotorVehicle     *motorvehicle.Result    `json:"motor_vehicle,omitempty"`
	TransactionCount int                     `json:"transaction_count"`
	CalculatedAt     time.Time               `json:"calculated_at"`
}

// JobSummaryResponse aggregates module outputs into job totals
type JobSummaryResponse struct {
	JobID          uuid.UUID          `json:"job_id"`
	Year           string             `json:"year"`
	Status         string             `json:"status"`
	TotalDeduction decimal.Decimal    `json:"total_deduction"`
	TotalGSTCredit decimal.Decimal    `json:"total_gst_credit"`
	TotalNetIncome decimal.Decimal    `json:"total_net_income"`
	Modules        []JobSummaryModule `json:"modules"`
}

// JobSummaryModule is one module's contribution to the job totals
type JobSummaryModule struct {
	ModuleID  uuid.UUID       `json:"module_id"`
	Type      string          `json:"module_type"`
	Label     string          `json:"label"`
	Status    string          `json:"status"`
	Deduction decimal.Decimal `json:"deduction"`
	GSTCredit decimal.Decimal `json:"gst_credit"`
	NetIncome decimal.Decimal `json:"net_income"`
}

// EffectiveTransactionsForModule resolves the effective view of every
// transaction feeding a module within the job's tax year.
func (s *CalculationService) EffectiveTransactionsForModule(ctx context.Context, module *workpaper.ModuleInstance,
	job *workpaper.WorkpaperJob) ([]workpaper.EffectiveTransaction, error) {

	start, end, err := workpaper.ParseTaxYear(job.Year)
	if err != nil {
		return nil, err
	}

	categories, ok := moduleCategories[module.Type]
	if !ok {
		return nil, nil
	}

	txs, err := s.transactionRepo.FindByClientAndCategories(ctx, job.ClientID, start, end, categories)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrideRepo.FindByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}

	return workpaper.ResolveEffectiveBatch(txs, overrides, job.ID), nil
}

// EffectiveTransactionsForJob resolves the effective view of all the
// client's transactions inside the job's tax year.
func (s *CalculationService) EffectiveTransactionsForJob(ctx context.Context, jobID uuid.UUID) ([]workpaper.EffectiveTransaction, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	start, end, err := workpaper.ParseTaxYear(job.Year)
	if err != nil {
		return nil, err
	}
	txs, err := s.transactionRepo.FindByClientAndPeriod(ctx, job.ClientID, start, end)
	if err != nil {
		return nil, err
	}
	overrides, err := s.overrideRepo.FindByJob(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	return workpaper.ResolveEffectiveBatch(txs, overrides, job.ID), nil
}

// CalculateModule runs the module's engine over its effective transactions
// and persists the output summary on the module. Frozen modules reject the
// write; the frozen output belongs to the snapshot.
func (s *CalculationService) CalculateModule(ctx context.Context, moduleID uuid.UUID) (*CalculationResponse, error) {
	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module.IsFrozen() {
		return nil, shared.NewInvalidStateError("Module", module.ID, module.Status.String())
	}
	job, err := s.jobRepo.FindByID(ctx, module.JobID)
	if err != nil {
		return nil, err
	}

	effective, err := s.EffectiveTransactionsForModule(ctx, module, job)
	if err != nil {
		return nil, err
	}
	fieldOverrides, err := s.fieldOverrideRepo.FindByModule(ctx, module.ID)
	if err != nil {
		return nil, err
	}

	resp := &CalculationResponse{
		ModuleID:         module.ID,
		ModuleType:       module.Type.String(),
		TransactionCount: len(effective),
		CalculatedAt:     time.Now().UTC(),
	}

	switch module.Type {
	case workpaper.ModuleTypeMotorVehicle:
		start, end, err := workpaper.ParseTaxYear(job.Year)
		if err != nil {
			return nil, err
		}
		result := s.calculator.Calculate(module.Config, effective, fieldOverrides, start, end)
		resp.MotorVehicle = result
		resp.OutputSummary = result.ToOutputSummary()
	case workpaper.ModuleTypeSummary:
		return nil, shared.NewDomainError("VALIDATION_FAILED",
			"The summary module is derived from job totals, not calculated directly")
	default:
		resp.OutputSummary = s.genericOutput(module, effective)
	}

	if err := module.RecordOutput(resp.OutputSummary); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.SaveWithLock(ctx, module, module.GetVersion()); err != nil {
		return nil, err
	}
	return resp, nil
}

// genericOutput is the calculation for the simple percentage modules:
// the configured business-use percentage applied over the effective,
// business-apportioned transactions.
func (s *CalculationService) genericOutput(module *workpaper.ModuleInstance, effective []workpaper.EffectiveTransaction) workpaper.OutputSummary {
	pct := decimal.NewFromInt(100)
	if module.Config.BusinessUsePct != nil {
		pct = *module.Config.BusinessUsePct
	}

	total := decimal.Zero
	gst := decimal.Zero
	for _, e := range workpaper.FilterIncluded(effective) {
		total = total.Add(e.BusinessAmount().Amount())
		gst = gst.Add(e.BusinessGST().Amount())
	}

	scaled := total.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)
	scaledGST := gst.Mul(pct).Div(decimal.NewFromInt(100)).Round(2)

	out := workpaper.OutputSummary{
		"business_use_pct": pct.StringFixed(2),
		"calculated_at":    time.Now().UTC().Format(time.RFC3339),
	}
	if module.Type == workpaper.ModuleTypeFDCIncome {
		out["net_income"] = scaled.StringFixed(2)
		out["gst_collected"] = scaledGST.StringFixed(2)
	} else {
		out["deduction"] = scaled.StringFixed(2)
		out["gst_credit"] = scaledGST.StringFixed(2)
	}
	return out
}

// JobSummary totals the stored module outputs. NA modules are skipped; a
// module that has never been calculated contributes zero.
func (s *CalculationService) JobSummary(ctx context.Context, jobID uuid.UUID) (*JobSummaryResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &JobSummaryResponse{
		JobID:   job.ID,
		Year:    job.Year,
		Status:  job.Status.String(),
		Modules: make([]JobSummaryModule, 0, len(modules)),
	}
	for _, m := range modules {
		if m.Status == workpaper.JobStatusNA || m.Type == workpaper.ModuleTypeSummary {
			continue
		}
		entry := JobSummaryModule{
			ModuleID:  m.ID,
			Type:      m.Type.String(),
			Label:     m.Label,
			Status:    m.Status.String(),
			Deduction: m.OutputSummary.Deduction(),
			GSTCredit: m.OutputSummary.GSTCredit(),
			NetIncome: m.OutputSummary.NetIncome(),
		}
		resp.TotalDeduction = resp.TotalDeduction.Add(entry.Deduction)
		resp.TotalGSTCredit = resp.TotalGSTCredit.Add(entry.GSTCredit)
		resp.TotalNetIncome = resp.TotalNetIncome.Add(entry.NetIncome)
		resp.Modules = append(resp.Modules, entry)
	}
	return resp, nil
}

// ATORates exposes the rates the calculator applies, for staff reference
func (s *CalculationService) ATORates() map[string]any {
	rates := s.calculator.Rates()
	return map[string]any{
		"cents_per_km_rate":      rates.CentsPerKMRate,
		"cents_per_km_max":       rates.CentsPerKMMax,
		"car_depreciation_limit": rates.CarDepreciationLimit,
		"diminishing_value_rate": rates.DiminishingValueRate,
		"prime_cost_rate":        rates.PrimeCostRate,
		"effective_life_years":   rates.EffectiveLifeYears,
		"fuel_benchmarks":        rates.FuelBenchmarks,
		"default_fuel_prices":    rates.DefaultFuelPrices,
	}
}
