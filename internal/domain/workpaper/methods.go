package workpaper

// CalculationMethod names how a module computes its deduction
type CalculationMethod string

const (
	MethodCentsPerKM     CalculationMethod = "cents_per_km"
	MethodLogbook        CalculationMethod = "logbook"
	MethodActualExpenses CalculationMethod = "actual_expenses"
	MethodEstimatedFuel  CalculationMethod = "estimated_fuel"
	MethodFixedRate      CalculationMethod = "fixed_rate"
	MethodActual         CalculationMethod = "actual"
	MethodDiary          CalculationMethod = "diary"
	MethodEstimate       CalculationMethod = "estimate"
)

// String returns the string representation of CalculationMethod
func (m CalculationMethod) String() string {
	return string(m)
}

// MethodOption describes one calculation method offered by a module type
type MethodOption struct {
	Method          CalculationMethod `json:"method"`
	Name            string            `json:"name"`
	Description     string            `json:"description"`
	IsDefault       bool              `json:"is_default"`
	RequiresInputs  []string          `json:"requires_inputs"`
	ProducesOutputs []string          `json:"produces_outputs"`
}

// MethodCatalog lists the methods available per module type and which one
// applies when the config does not name one.
type MethodCatalog struct {
	ModuleType       ModuleType        `json:"module_type"`
	AvailableMethods []MethodOption    `json:"available_methods"`
	DefaultMethod    CalculationMethod `json:"default_method"`
}

// methodCatalogs is the static method catalog per module type
var methodCatalogs = map[ModuleType]MethodCatalog{
	ModuleTypeMotorVehicle: {
		ModuleType:    ModuleTypeMotorVehicle,
		DefaultMethod: MethodCentsPerKM,
		AvailableMethods: []MethodOption{
			{
				Method:          MethodCentsPerKM,
				Name:            "Cents per Kilometre",
				Description:     "Claim a fixed rate per business kilometre, capped at 5,000 km",
				IsDefault:       true,
				RequiresInputs:  []string{"business_km"},
				ProducesOutputs: []string{"deduction"},
			},
			{
				Method:          MethodLogbook,
				Name:            "Logbook Method",
				Description:     "Claim actual expenses scaled by the logbook business percentage",
				RequiresInputs:  []string{"logbook_pct", "total_expenses"},
				ProducesOutputs: []string{"deduction", "gst_credit", "depreciation"},
			},
			{
				Method:          MethodActualExpenses,
				Name:            "Actual Expenses",
				Description:     "Claim actual expenses at 100% business use",
				RequiresInputs:  []string{"total_expenses"},
				ProducesOutputs: []string{"deduction", "gst_credit", "depreciation"},
			},
			{
				Method:          MethodEstimatedFuel,
				Name:            "Estimated Fuel",
				Description:     "Estimate fuel cost from kilometres and consumption rate",
				RequiresInputs:  []string{"business_km", "fuel_estimate"},
				ProducesOutputs: []string{"deduction", "gst_credit"},
			},
		},
	},
	ModuleTypeHomeOffice: {
		ModuleType:    ModuleTypeHomeOffice,
		DefaultMethod: MethodFixedRate,
		AvailableMethods: []MethodOption{
			{
				Method:          MethodFixedRate,
				Name:            "Fixed Rate Method",
				Description:     "Claim a fixed rate per hour worked from home",
				IsDefault:       true,
				RequiresInputs:  []string{"hours_worked"},
				ProducesOutputs: []string{"deduction"},
			},
			{
				Method:          MethodActual,
				Name:            "Actual Expenses Method",
				Description:     "Claim actual running expenses by floor area",
				RequiresInputs:  []string{"floor_area_pct", "running_expenses"},
				ProducesOutputs: []string{"deduction", "gst_credit"},
			},
		},
	},
	ModuleTypeInternet: {
		ModuleType:    ModuleTypeInternet,
		DefaultMethod: MethodEstimate,
		AvailableMethods: []MethodOption{
			{
				Method:          MethodDiary,
				Name:            "Diary Method",
				Description:     "Based on a recorded usage diary",
				RequiresInputs:  []string{"diary_entries"},
				ProducesOutputs: []string{"business_pct", "deduction"},
			},
			{
				Method:          MethodEstimate,
				Name:            "Reasonable Estimate",
				Description:     "Based on a reasonable estimate of business use",
				IsDefault:       true,
				RequiresInputs:  []string{"estimated_pct"},
				ProducesOutputs: []string{"business_pct", "deduction"},
			},
		},
	},
	ModuleTypeMobile: {
		ModuleType:    ModuleTypeMobile,
		DefaultMethod: MethodEstimate,
		AvailableMethods: []MethodOption{
			{
				Method:          MethodEstimate,
				Name:            "Reasonable Estimate",
				Description:     "Based on a reasonable estimate of business use",
				IsDefault:       true,
				RequiresInputs:  []string{"estimated_pct"},
				ProducesOutputs: []string{"business_pct", "deduction"},
			},
			{
				Method:          MethodDiary,
				Name:            "Call Log Analysis",
				Description:     "Based on actual call log analysis",
				RequiresInputs:  []string{"call_log_data"},
				ProducesOutputs: []string{"business_pct", "deduction"},
			},
		},
	},
}

// MethodCatalogFor returns the method catalog for a module type. The
// second return is false when the type has no selectable methods.
func MethodCatalogFor(moduleType ModuleType) (MethodCatalog, bool) {
	c, ok := methodCatalogs[moduleType]
	return c, ok
}

// Allows reports whether the catalog offers the given method
func (c MethodCatalog) Allows(method CalculationMethod) bool {
	for _, opt := range c.AvailableMethods {
		if opt.Method == method {
			return true
		}
	}
	return false
}
