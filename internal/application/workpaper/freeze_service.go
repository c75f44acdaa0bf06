package workpaper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// freezeLockTTL bounds how long a freeze holds its lock if the process dies
const freezeLockTTL = 30 * time.Second

// FreezeService assembles snapshots and flips freeze state. The snapshot is
// written before any status changes, in the same storage transaction, so a
// frozen module always has its snapshot and a failed freeze leaves nothing
// behind.
type FreezeService struct {
	jobRepo           workpaper.JobRepository
	moduleRepo        workpaper.ModuleRepository
	snapshotRepo      workpaper.SnapshotRepository
	fieldOverrideRepo workpaper.FieldOverrideRepository
	freezeUnit        workpaper.FreezeUnit
	calculations      *CalculationService
	locks             shared.LockManager
	eventPublisher    shared.EventPublisher
}

// NewFreezeService creates a new FreezeService
func NewFreezeService(
	jobRepo workpaper.JobRepository,
	moduleRepo workpaper.ModuleRepository,
	snapshotRepo workpaper.SnapshotRepository,
	fieldOverrideRepo workpaper.FieldOverrideRepository,
	freezeUnit workpaper.FreezeUnit,
	calculations *CalculationService,
	locks shared.LockManager,
) *FreezeService {
	return &FreezeService{
		jobRepo:           jobRepo,
		moduleRepo:        moduleRepo,
		snapshotRepo:      snapshotRepo,
		fieldOverrideRepo: fieldOverrideRepo,
		freezeUnit:        freezeUnit,
		calculations:      calculations,
		locks:             locks,
	}
}

// SetEventPublisher sets the event publisher for the service
func (s *FreezeService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// FreezeRequest carries the mandatory reason for a freeze
type FreezeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// FreezeJobRequest freezes a whole job under a typed snapshot
type FreezeJobRequest struct {
	Reason       string `json:"reason" binding:"required"`
	SnapshotType string `json:"snapshot_type" binding:"omitempty,oneof=itr bas summary"`
}

// ReopenRequest carries the mandatory reopen reason
type ReopenRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// SnapshotResponse is the API view of a freeze snapshot
type SnapshotResponse struct {
	ID               uuid.UUID                     `json:"id"`
	JobID            uuid.UUID                     `json:"job_id"`
	ModuleInstanceID *uuid.UUID                    `json:"module_instance_id,omitempty"`
	Type             string                        `json:"snapshot_type"`
	ModuleData       *workpaper.ModuleSnapshotData `json:"module_data,omitempty"`
	JobData          *workpaper.JobSnapshotData    `json:"job_data,omitempty"`
	FrozenByID       uuid.UUID                     `json:"frozen_by_id"`
	FrozenByEmail    string                        `json:"frozen_by_email,omitempty"`
	Reason           string                        `json:"reason,omitempty"`
	FrozenAt         time.Time                     `json:"frozen_at"`
}

// ToSnapshotResponse converts a FreezeSnapshot to SnapshotResponse
func ToSnapshotResponse(s *workpaper.FreezeSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ID:               s.ID,
		JobID:            s.JobID,
		ModuleInstanceID: s.ModuleInstanceID,
		Type:             s.Type.String(),
		ModuleData:       s.ModuleData,
		JobData:          s.JobData,
		FrozenByID:       s.FrozenByID,
		FrozenByEmail:    s.FrozenByEmail,
		Reason:           s.Reason,
		FrozenAt:         s.FrozenAt,
	}
}

func (s *FreezeService) acquireLock(ctx context.Context, key string) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	ok, err := s.locks.Acquire(ctx, key, freezeLockTTL)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT",
			"Another freeze or reopen is in progress for this resource")
	}
	return func() { _ = s.locks.Release(ctx, key) }, nil
}

// assembleModuleData captures one module's current state: config, field
// overrides, effective transactions and the stored output, verbatim.
func (s *FreezeService) assembleModuleData(ctx context.Context, module *workpaper.ModuleInstance,
	job *workpaper.WorkpaperJob) (workpaper.ModuleSnapshotData, error) {

	fieldOverrides, err := s.fieldOverrideRepo.FindByModule(ctx, module.ID)
	if err != nil {
		return workpaper.ModuleSnapshotData{}, err
	}
	effective, err := s.calculations.EffectiveTransactionsForModule(ctx, module, job)
	if err != nil {
		return workpaper.ModuleSnapshotData{}, err
	}
	return workpaper.ModuleSnapshotData{
		ModuleInstanceID: module.ID,
		ModuleType:       module.Type,
		Label:            module.Label,
		Config:           module.Config,
		FieldOverrides:   fieldOverrides,
		Transactions:     effective,
		OutputSummary:    module.OutputSummary,
	}, nil
}

// FreezeModule snapshots a single module and marks it frozen
func (s *FreezeService) FreezeModule(ctx context.Context, moduleID uuid.UUID, actor shared.Actor, req FreezeRequest) (*SnapshotResponse, error) {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:module:%s", moduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobRepo.FindByID(ctx, module.JobID)
	if err != nil {
		return nil, err
	}

	data, err := s.assembleModuleData(ctx, module, job)
	if err != nil {
		return nil, err
	}
	snapshot, err := workpaper.NewModuleSnapshot(job.ID, data, actor, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := module.Freeze(actor, snapshot.ID, req.Reason); err != nil {
		return nil, err
	}

	if err := s.freezeUnit.SaveFreeze(ctx, []*workpaper.FreezeSnapshot{snapshot}, nil,
		[]*workpaper.ModuleInstance{module}); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, module.GetDomainEvents())
	module.ClearDomainEvents()

	resp := ToSnapshotResponse(snapshot)
	return &resp, nil
}

// ReopenModule returns a frozen module to in_progress. Snapshots stay.
func (s *FreezeService) ReopenModule(ctx context.Context, moduleID uuid.UUID, actor shared.Actor, req ReopenRequest) (*ModuleResponse, error) {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:module:%s", moduleID))
	if err != nil {
		return nil, err
	}
	defer release()

	module, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := module.Reopen(actor, req.Reason); err != nil {
		return nil, err
	}
	if err := s.freezeUnit.SaveReopen(ctx, nil, []*workpaper.ModuleInstance{module}); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, module.GetDomainEvents())
	module.ClearDomainEvents()

	resp := ToModuleResponse(module)
	return &resp, nil
}

// FreezeJob snapshots every active module plus the job totals, then freezes
// the job and all modules that are not already frozen or marked NA.
func (s *FreezeService) FreezeJob(ctx context.Context, jobID uuid.UUID, actor shared.Actor, req FreezeJobRequest) (*SnapshotResponse, error) {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:job:%s", jobID))
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	snapshotType := workpaper.SnapshotType(req.SnapshotType)
	if req.SnapshotType == "" {
		snapshotType = workpaper.SnapshotTypeSummary
	}

	data := workpaper.JobSnapshotData{
		JobID:   job.ID,
		Year:    job.Year,
		Modules: make([]workpaper.ModuleSnapshotData, 0, len(modules)),
	}
	totalDeduction := decimal.Zero
	totalGST := decimal.Zero
	totalIncome := decimal.Zero
	toFreeze := make([]*workpaper.ModuleInstance, 0, len(modules))
	for _, m := range modules {
		if m.Status == workpaper.JobStatusNA {
			continue
		}
		md, err := s.assembleModuleData(ctx, m, job)
		if err != nil {
			return nil, err
		}
		data.Modules = append(data.Modules, md)
		totalDeduction = totalDeduction.Add(m.OutputSummary.Deduction())
		totalGST = totalGST.Add(m.OutputSummary.GSTCredit())
		totalIncome = totalIncome.Add(m.OutputSummary.NetIncome())
		if !m.IsFrozen() {
			toFreeze = append(toFreeze, m)
		}
	}
	data.Totals = workpaper.OutputSummary{
		"total_deduction":  totalDeduction.StringFixed(2),
		"total_gst_credit": totalGST.StringFixed(2),
		"total_net_income": totalIncome.StringFixed(2),
	}

	snapshot, err := workpaper.NewJobSnapshot(snapshotType, data, actor, req.Reason)
	if err != nil {
		return nil, err
	}
	if err := job.Freeze(actor, snapshot.ID, req.Reason); err != nil {
		return nil, err
	}
	for _, m := range toFreeze {
		if err := m.Freeze(actor, snapshot.ID, req.Reason); err != nil {
			return nil, err
		}
	}

	if err := s.freezeUnit.SaveFreeze(ctx, []*workpaper.FreezeSnapshot{snapshot}, job, toFreeze); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job.GetDomainEvents())
	job.ClearDomainEvents()
	for _, m := range toFreeze {
		s.publishEvents(ctx, m.GetDomainEvents())
		m.ClearDomainEvents()
	}

	resp := ToSnapshotResponse(snapshot)
	return &resp, nil
}

// ReopenJob returns a frozen job and its frozen modules to in_progress
func (s *FreezeService) ReopenJob(ctx context.Context, jobID uuid.UUID, actor shared.Actor, req ReopenRequest) (*JobResponse, error) {
	release, err := s.acquireLock(ctx, fmt.Sprintf("workpaper:freeze:job:%s", jobID))
	if err != nil {
		return nil, err
	}
	defer release()

	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	modules, err := s.moduleRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if err := job.Reopen(actor, req.Reason); err != nil {
		return nil, err
	}
	reopened := make([]*workpaper.ModuleInstance, 0, len(modules))
	for _, m := range modules {
		if !m.IsFrozen() {
			continue
		}
		if err := m.Reopen(actor, req.Reason); err != nil {
			return nil, err
		}
		reopened = append(reopened, m)
	}

	if err := s.freezeUnit.SaveReopen(ctx, job, reopened); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, job.GetDomainEvents())
	job.ClearDomainEvents()
	for _, m := range reopened {
		s.publishEvents(ctx, m.GetDomainEvents())
		m.ClearDomainEvents()
	}

	resp := ToJobResponse(job)
	return &resp, nil
}

// GetSnapshot retrieves a snapshot by ID
func (s *FreezeService) GetSnapshot(ctx context.Context, snapshotID uuid.UUID) (*SnapshotResponse, error) {
	snap, err := s.snapshotRepo.FindByID(ctx, snapshotID)
	if err != nil {
		return nil, err
	}
	resp := ToSnapshotResponse(snap)
	return &resp, nil
}

// ListModuleSnapshots lists a module's snapshots, newest first
func (s *FreezeService) ListModuleSnapshots(ctx context.Context, moduleID uuid.UUID) ([]SnapshotResponse, error) {
	snaps, err := s.snapshotRepo.FindByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	resps := make([]SnapshotResponse, len(snaps))
	for i, snap := range snaps {
		resps[i] = ToSnapshotResponse(snap)
	}
	return resps, nil
}

// ListJobSnapshots lists every snapshot taken under a job, newest first
func (s *FreezeService) ListJobSnapshots(ctx context.Context, jobID uuid.UUID) ([]SnapshotResponse, error) {
	snaps, err := s.snapshotRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resps := make([]SnapshotResponse, len(snaps))
	for i, snap := range snaps {
		resps[i] = ToSnapshotResponse(snap)
	}
	return resps, nil
}

// LatestModuleSnapshot returns the most recent snapshot for a module
func (s *FreezeService) LatestModuleSnapshot(ctx context.Context, moduleID uuid.UUID) (*SnapshotResponse, error) {
	snap, err := s.snapshotRepo.FindLatestByModule(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	resp := ToSnapshotResponse(snap)
	return &resp, nil
}

func (s *FreezeService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// audit trail must not block the freeze itself
	_ = s.eventPublisher.Publish(ctx, events...)
}
