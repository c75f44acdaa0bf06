package workpaper

import (
	"fmt"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionOverride is a job-scoped, non-destructive adjustment to a
// source transaction. Only non-nil fields take effect; the underlying
// transaction is never touched. One override exists per
// (transaction, job) pair and repeated upserts update it in place.
type TransactionOverride struct {
	shared.BaseEntity
	TransactionID      uuid.UUID            `json:"transaction_id"`
	JobID              uuid.UUID            `json:"job_id"`
	OverriddenCategory *TransactionCategory `json:"overridden_category,omitempty"`
	OverriddenAmount   *valueobject.Money   `json:"overridden_amount,omitempty"`
	OverriddenGST      *valueobject.Money   `json:"overridden_gst,omitempty"`
	BusinessPct        *decimal.Decimal     `json:"business_pct,omitempty"`
	Excluded           bool                 `json:"excluded"`
	Reason             string               `json:"reason"`
	ActorID            uuid.UUID            `json:"actor_id"`
	ActorEmail         string               `json:"actor_email"`
}

// OverridePatch carries the fields of an override upsert. Nil means
// "leave the original value in effect".
type OverridePatch struct {
	Category    *TransactionCategory
	Amount      *valueobject.Money
	GST         *valueobject.Money
	BusinessPct *decimal.Decimal
	Excluded    *bool
	Reason      string
}

// Validate checks patch fields that have domain constraints
func (p OverridePatch) Validate() error {
	if p.Reason == "" {
		return shared.NewDomainError("VALIDATION_FAILED", "Override reason cannot be empty")
	}
	if p.Category != nil && !p.Category.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown category: %s", *p.Category))
	}
	if p.BusinessPct != nil {
		if p.BusinessPct.IsNegative() || p.BusinessPct.GreaterThan(decimal.NewFromInt(100)) {
			return shared.NewDomainError("VALIDATION_FAILED", "Business percentage must be between 0 and 100")
		}
	}
	return nil
}

// NewTransactionOverride creates an override for a (transaction, job) pair
func NewTransactionOverride(transactionID, jobID uuid.UUID, patch OverridePatch, actor shared.Actor) (*TransactionOverride, error) {
	if transactionID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Transaction ID cannot be empty")
	}
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Job ID cannot be empty")
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	o := &TransactionOverride{
		BaseEntity:    shared.NewBaseEntity(),
		TransactionID: transactionID,
		JobID:         jobID,
		ActorID:       actor.ID,
		ActorEmail:    actor.Email,
	}
	o.apply(patch)
	return o, nil
}

// Apply updates an existing override with a new patch. The most recent
// upsert wins for every field it names.
func (o *TransactionOverride) Apply(patch OverridePatch, actor shared.Actor) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	o.apply(patch)
	o.ActorID = actor.ID
	o.ActorEmail = actor.Email
	o.Touch()
	return nil
}

func (o *TransactionOverride) apply(patch OverridePatch) {
	if patch.Category != nil {
		o.OverriddenCategory = patch.Category
	}
	if patch.Amount != nil {
		o.OverriddenAmount = patch.Amount
	}
	if patch.GST != nil {
		o.OverriddenGST = patch.GST
	}
	if patch.BusinessPct != nil {
		o.BusinessPct = patch.BusinessPct
	}
	if patch.Excluded != nil {
		o.Excluded = *patch.Excluded
	}
	o.Reason = patch.Reason
}

// OverrideRecord is a manual value pinned onto a module field, scoped to
// (module_instance_id, field_key). It shadows the computed value until
// cleared.
type OverrideRecord struct {
	shared.BaseEntity
	ModuleInstanceID uuid.UUID `json:"module_instance_id"`
	FieldKey         string    `json:"field_key"`
	Value            string    `json:"value"`
	Reason           string    `json:"reason"`
	ActorID          uuid.UUID `json:"actor_id"`
	ActorEmail       string    `json:"actor_email"`
}

// NewOverrideRecord creates a field-level override on a module
func NewOverrideRecord(moduleInstanceID uuid.UUID, fieldKey, value, reason string, actor shared.Actor) (*OverrideRecord, error) {
	if moduleInstanceID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Module instance ID cannot be empty")
	}
	if fieldKey == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Field key cannot be empty")
	}
	if reason == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Override reason cannot be empty")
	}
	return &OverrideRecord{
		BaseEntity:       shared.NewBaseEntity(),
		ModuleInstanceID: moduleInstanceID,
		FieldKey:         fieldKey,
		Value:            value,
		Reason:           reason,
		ActorID:          actor.ID,
		ActorEmail:       actor.Email,
	}, nil
}

// Update replaces the pinned value and reason
func (r *OverrideRecord) Update(value, reason string, actor shared.Actor) error {
	if reason == "" {
		return shared.NewDomainError("VALIDATION_FAILED", "Override reason cannot be empty")
	}
	r.Value = value
	r.Reason = reason
	r.ActorID = actor.ID
	r.ActorEmail = actor.Email
	r.Touch()
	return nil
}
