package workpaper

import (
	"fmt"
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionSource records where a transaction came from
type TransactionSource string

const (
	TransactionSourceMyFDC  TransactionSource = "myfdc"
	TransactionSourceManual TransactionSource = "manual"
	TransactionSourceImport TransactionSource = "import"
)

// IsValid checks if the source is a known TransactionSource
func (s TransactionSource) IsValid() bool {
	switch s {
	case TransactionSourceMyFDC, TransactionSourceManual, TransactionSourceImport:
		return true
	}
	return false
}

// String returns the string representation of TransactionSource
func (s TransactionSource) String() string {
	return string(s)
}

// TransactionCategory classifies a transaction for workpaper calculations
type TransactionCategory string

const (
	CategoryVehicleFuel         TransactionCategory = "vehicle_fuel"
	CategoryVehicleRegistration TransactionCategory = "vehicle_registration"
	CategoryVehicleInsurance    TransactionCategory = "vehicle_insurance"
	CategoryVehicleRepairs      TransactionCategory = "vehicle_repairs"
	CategoryVehicleLease        TransactionCategory = "vehicle_lease"
	CategoryVehicleInterest     TransactionCategory = "vehicle_interest"
	CategoryVehicleOther        TransactionCategory = "vehicle_other"
	CategoryVehicleDepreciation TransactionCategory = "vehicle_depreciation"
	CategoryIncome              TransactionCategory = "income"
	CategoryInternet            TransactionCategory = "internet"
	CategoryMobile              TransactionCategory = "mobile"
	CategoryHomeOffice          TransactionCategory = "home_office"
	CategoryFood                TransactionCategory = "food"
	CategoryInsurance           TransactionCategory = "insurance"
	CategoryEquipment           TransactionCategory = "equipment"
	CategoryOther               TransactionCategory = "other"
	CategoryExcluded            TransactionCategory = "excluded"
)

var validCategories = map[TransactionCategory]struct{}{
	CategoryVehicleFuel: {}, CategoryVehicleRegistration: {}, CategoryVehicleInsurance: {},
	CategoryVehicleRepairs: {}, CategoryVehicleLease: {}, CategoryVehicleInterest: {},
	CategoryVehicleOther: {}, CategoryVehicleDepreciation: {}, CategoryIncome: {}, CategoryInternet: {}, CategoryMobile: {},
	CategoryHomeOffice: {}, CategoryFood: {}, CategoryInsurance: {}, CategoryEquipment: {},
	CategoryOther: {}, CategoryExcluded: {},
}

// IsValid checks if the category is a known TransactionCategory
func (c TransactionCategory) IsValid() bool {
	_, ok := validCategories[c]
	return ok
}

// String returns the string representation of TransactionCategory
func (c TransactionCategory) String() string {
	return string(c)
}

// IsVehicle reports whether the category feeds the motor vehicle module
func (c TransactionCategory) IsVehicle() bool {
	switch c {
	case CategoryVehicleFuel, CategoryVehicleRegistration, CategoryVehicleInsurance,
		CategoryVehicleRepairs, CategoryVehicleLease, CategoryVehicleInterest,
		CategoryVehicleOther, CategoryVehicleDepreciation:
		return true
	}
	return false
}

// Transaction is a source financial record. Once ingested it is never
// edited in place; adjustments are expressed as TransactionOverride rows
// scoped to a job.
type Transaction struct {
	shared.BaseEntity
	ClientID    uuid.UUID           `json:"client_id"`
	Date        time.Time           `json:"date"`
	Description string              `json:"description"`
	Amount      valueobject.Money   `json:"amount"`
	GSTAmount   valueobject.Money   `json:"gst_amount"`
	Category    TransactionCategory `json:"category"`
	Source      TransactionSource   `json:"source"`
	ExternalRef string              `json:"external_ref,omitempty"`
}

// NewTransaction creates an immutable source transaction
func NewTransaction(clientID uuid.UUID, date time.Time, description string,
	amount, gst valueobject.Money, category TransactionCategory, source TransactionSource) (*Transaction, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Client ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Transaction date cannot be empty")
	}
	if !category.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown category: %s", category))
	}
	if !source.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown source: %s", source))
	}

	return &Transaction{
		BaseEntity:  shared.NewBaseEntity(),
		ClientID:    clientID,
		Date:        date,
		Description: description,
		Amount:      amount,
		GSTAmount:   gst,
		Category:    category,
		Source:      source,
	}, nil
}

// InYear reports whether the transaction date falls inside a tax year window
func (t *Transaction) InYear(start, end time.Time) bool {
	return !t.Date.Before(start) && !t.Date.After(end)
}

// DefaultBusinessPct is the business-use percentage applied when no
// override specifies one.
var DefaultBusinessPct = decimal.NewFromInt(100)
