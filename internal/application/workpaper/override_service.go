package workpaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// OverrideService manages non-destructive transaction overrides and module
// field overrides. Source transactions are never edited; every correction
// is an override row scoped to a job or module.
type OverrideService struct {
	overrideRepo      workpaper.OverrideRepository
	fieldOverrideRepo workpaper.FieldOverrideRepository
	transactionRepo   workpaper.TransactionRepository
	jobRepo           workpaper.JobRepository
	moduleRepo        workpaper.ModuleRepository
	locks             shared.LockManager
	eventPublisher    shared.EventPublisher
}

// NewOverrideService creates a new OverrideService
func NewOverrideService(
	overrideRepo workpaper.OverrideRepository,
	fieldOverrideRepo workpaper.FieldOverrideRepository,
	transactionRepo workpaper.TransactionRepository,
	jobRepo workpaper.JobRepository,
	moduleRepo workpaper.ModuleRepository,
	locks shared.LockManager,
) *OverrideService {
	return &OverrideService{
		overrideRepo:      overrideRepo,
		fieldOverrideRepo: fieldOverrideRepo,
		transactionRepo:   transactionRepo,
		jobRepo:           jobRepo,
		moduleRepo:        moduleRepo,
		locks:             locks,
	}
}

// acquireLock takes the same per-resource lock a freeze takes, so a write
// racing a freeze loses deterministically: the freeze completes, this write
// fails, and a retry sees the frozen status.
func (s *OverrideService) acquireLock(ctx context.Context, key string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	ok, err := s.locks.Acquire(ctx, key, freezeLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("INVALID_STATE",
			"A freeze or reopen is in progress for this resource")
	}
	return func() { _ = s.locks.Release(ctx, key) }, nil
}

// SetEventPublisher sets the event publisher for audit events
func (s *OverrideService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// UpsertOverrideRequest represents a transaction override upsert. Absent
// fields leave the original transaction value in effect.
type UpsertOverrideRequest struct {
	Category    *string          `json:"category"`
	Amount      *decimal.Decimal `json:"amount"`
	GSTAmount   *decimal.Decimal `json:"gst_amount"`
	BusinessPct *decimal.Decimal `json:"business_pct"`
	Excluded    *bool            `json:"excluded"`
	Reason      string           `json:"reason" binding:"required"`
}

// OverrideResponse represents a transaction override in API responses
type OverrideResponse struct {
	ID            uuid.UUID        `json:"id"`
	TransactionID uuid.UUID        `json:"transaction_id"`
	JobID         uuid.UUID        `json:"job_id"`
	Category      *string          `json:"overridden_category,omitempty"`
	Amount        *decimal.Decimal `json:"overridden_amount,omitempty"`
	GSTAmount     *decimal.Decimal `json:"overridden_gst,omitempty"`
	BusinessPct   *decimal.Decimal `json:"business_pct,omitempty"`
	Excluded      bool             `json:"excluded"`
	Reason        string           `json:"reason"`
	ActorEmail    string           `json:"actor_email,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// FieldOverrideResponse represents a module field override in API responses
type FieldOverrideResponse struct {
	ID               uuid.UUID `json:"id"`
	ModuleInstanceID uuid.UUID `json:"module_instance_id"`
	FieldKey         string    `json:"field_key"`
	Value            string    `json:"value"`
	Reason           string    `json:"reason"`
	ActorEmail       string    `json:"actor_email,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ToOverrideResponse converts a domain override to its API representation
func ToOverrideResponse(o *workpaper.TransactionOverride) OverrideResponse {
	resp := OverrideResponse{
		ID:            o.ID,
		TransactionID: o.TransactionID,
		JobID:         o.JobID,
		BusinessPct:   o.BusinessPct,
		Excluded:      o.Excluded,
		Reason:        o.Reason,
		ActorEmail:    o.ActorEmail,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.OverriddenCategory != nil {
		c := o.OverriddenCategory.String()
		resp.Category = &c
	}
	if o.OverriddenAmount != nil {
		a := o.OverriddenAmount.Amount()
		resp.Amount = &a
	}
	if o.OverriddenGST != nil {
		g := o.OverriddenGST.Amount()
		resp.GSTAmount = &g
	}
	return resp
}

// ToFieldOverrideResponse converts a field override to its API representation
func ToFieldOverrideResponse(r *workpaper.OverrideRecord) FieldOverrideResponse {
	return FieldOverrideResponse{
		ID:               r.ID,
		ModuleInstanceID: r.ModuleInstanceID,
		FieldKey:         r.FieldKey,
		Value:            r.Value,
		Reason:           r.Reason,
		ActorEmail:       r.ActorEmail,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

func (s *OverrideService) toPatch(req UpsertOverrideRequest) workpaper.OverridePatch {
	patch := workpaper.OverridePatch{
		BusinessPct: req.BusinessPct,
		Excluded:    req.Excluded,
		Reason:      req.Reason,
	}
	if req.Category != nil {
		c := workpaper.TransactionCategory(*req.Category)
		patch.Category = &c
	}
	if req.Amount != nil {
		m := valueobject.NewMoneyAUD(*req.Amount)
		patch.Amount = &m
	}
	if req.GSTAmount != nil {
		m := valueobject.NewMoneyAUD(*req.GSTAmount)
		patch.GST = &m
	}
	return patch
}

// UpsertTransactionOverride creates or updates the override for a
// (transaction, job) pair. At most one override row exists per pair; a
// repeated upsert updates the existing row in place. Rejected when the job
// is frozen, before any row is written.
func (s *OverrideService) UpsertTransactionOverride(ctx context.Context, transactionID, jobID uuid.UUID,
	req UpsertOverrideRequest, actor shared.Actor) (*OverrideResponse, error) {

	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:job:%s", jobID))
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsFrozen() {
		return nil, shared.NewInvalidStateError("Job", job.ID, job.Status.String())
	}

	if _, err := s.transactionRepo.FindByID(ctx, transactionID); err != nil {
		return nil, err
	}

	patch := s.toPatch(req)

	existing, err := s.overrideRepo.FindByTransactionAndJob(ctx, transactionID, jobID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var override *workpaper.TransactionOverride
	created := existing == nil
	if created {
		override, err = workpaper.NewTransactionOverride(transactionID, jobID, patch, actor)
		if err != nil {
			return nil, err
		}
	} else {
		override = existing
		if err := override.Apply(patch, actor); err != nil {
			return nil, err
		}
	}

	if err := s.overrideRepo.Save(ctx, override); err != nil {
		return nil, err
	}

	s.publish(ctx, workpaper.NewOverrideUpsertedEvent(override, actor, created))

	resp := ToOverrideResponse(override)
	return &resp, nil
}

// DeleteTransactionOverride removes an override explicitly. The original
// transaction values take effect again.
func (s *OverrideService) DeleteTransactionOverride(ctx context.Context, transactionID, jobID uuid.UUID, actor shared.Actor) error {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:job:%s", jobID))
	if err != nil {
		return err
	}
	defer release()

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.IsFrozen() {
		return shared.NewInvalidStateError("Job", job.ID, job.Status.String())
	}

	override, err := s.overrideRepo.FindByTransactionAndJob(ctx, transactionID, jobID)
	if err != nil {
		return err
	}
	if err := s.overrideRepo.Delete(ctx, override.ID); err != nil {
		return err
	}

	s.publish(ctx, workpaper.NewOverrideDeletedEvent(override, actor))
	return nil
}

// ListJobOverrides lists every transaction override recorded for a job
func (s *OverrideService) ListJobOverrides(ctx context.Context, jobID uuid.UUID) ([]OverrideResponse, error) {
	overrides, err := s.overrideRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]OverrideResponse, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, ToOverrideResponse(o))
	}
	return out, nil
}

// UpsertFieldOverrideRequest pins a manual value onto a module field
type UpsertFieldOverrideRequest struct {
	FieldKey string `json:"field_key" binding:"required"`
	Value    string `json:"value" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// UpsertFieldOverride creates or updates the override for a
// (module, field_key) pair. Rejected when the module is frozen. A "method"
// override must name a method the module type's catalog offers.
func (s *OverrideService) UpsertFieldOverride(ctx context.Context, moduleID uuid.UUID,
	req UpsertFieldOverrideRequest, actor shared.Actor) (*FieldOverrideResponse, error) {

	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:module:%s", moduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if module.IsFrozen() {
		return nil, shared.NewInvalidStateError("Module", module.ID, module.Status.String())
	}

	if req.FieldKey == "method" {
		if catalog, ok := workpaper.MethodCatalogFor(module.Type); ok &&
			!catalog.Allows(workpaper.CalculationMethod(req.Value)) {
			return nil, shared.NewDomainError("VALIDATION_FAILED",
				fmt.Sprintf("Method %q is not available for module type %s", req.Value, module.Type))
		}
	}

	existing, err := s.fieldOverrideRepo.FindByModuleAndKey(ctx, moduleID, req.FieldKey)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	var record *workpaper.OverrideRecord
	if existing == nil {
		record, err = workpaper.NewOverrideRecord(moduleID, req.FieldKey, req.Value, req.Reason, actor)
		if err != nil {
			return nil, err
		}
	} else {
		record = existing
		if err := record.Update(req.Value, req.Reason, actor); err != nil {
			return nil, err
		}
	}

	if err := s.fieldOverrideRepo.Save(ctx, record); err != nil {
		return nil, err
	}

	resp := ToFieldOverrideResponse(record)
	return &resp, nil
}

// DeleteFieldOverride clears a pinned module field value
func (s *OverrideService) DeleteFieldOverride(ctx context.Context, moduleID uuid.UUID, fieldKey string) error {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:module:%s", moduleID))
	if err != nil {
		return err
	}
	defer release()

	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return err
	}
	if module.IsFrozen() {
		return shared.NewInvalidStateError("Module", module.ID, module.Status.String())
	}

	record, err := s.fieldOverrideRepo.FindByModuleAndKey(ctx, moduleID, fieldKey)
	if err != nil {
		return err
	}
	return s.fieldOverrideRepo.Delete(ctx, record.ID)
}

// ListFieldOverrides lists a module's field overrides
func (s *OverrideService) ListFieldOverrides(ctx context.Context, moduleID uuid.UUID) ([]FieldOverrideResponse, error) {
	records, err := s.fieldOverrideRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	out := make([]FieldOverrideResponse, 0, len(records))
	for _, r := range records {
		out = append(out, ToFieldOverrideResponse(r))
	}
	return out, nil
}

func (s *OverrideService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, event)
}
