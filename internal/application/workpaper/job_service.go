package workpaper

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// JobService provides application-level workpaper job and module operations
type JobService struct {
	jobRepo        workpaper.JobRepository
	moduleRepo     workpaper.ModuleRepository
	eventPublisher shared.EventPublisher
}

// NewJobService creates a new JobService
func NewJobService(jobRepo workpaper.JobRepository, moduleRepo workpaper.ModuleRepository) *JobService {
	return &JobService{
		jobRepo:    jobRepo,
		moduleRepo: moduleRepo,
	}
}

// SetEventPublisher sets the event publisher for audit events
func (s *JobService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// standardModules are created with a new job unless the caller opts out
var standardModules = []struct {
	Type  workpaper.ModuleType
	Label string
}{
	{workpaper.ModuleTypeFDCIncome, "FDC Income"},
	{workpaper.ModuleTypeMotorVehicle, "Vehicle 1"},
	{workpaper.ModuleTypeInternet, "Internet"},
	{workpaper.ModuleTypeMobile, "Mobile"},
	{workpaper.ModuleTypeHomeOffice, "Home Office"},
	{workpaper.ModuleTypeFoodGST, "Food & GST"},
	{workpaper.ModuleTypeDepreciation, "Depreciation"},
	{workpaper.ModuleTypeSummary, "Summary"},
}

// JobResponse represents a workpaper job in API responses
type JobResponse struct {
	ID        uuid.UUID  `json:"id"`
	ClientID  uuid.UUID  `json:"client_id"`
	Year      string     `json:"year"`
	Status    string     `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	FrozenAt  *time.Time `json:"frozen_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	Version   int        `json:"version"`
}

// ModuleResponse represents a module instance in API responses
type ModuleResponse struct {
	ID            uuid.UUID               `json:"id"`
	JobID         uuid.UUID               `json:"job_id"`
	Type          string                  `json:"module_type"`
	Label         string                  `json:"label"`
	Status        string                  `json:"status"`
	Config        workpaper.ModuleConfig  `json:"config"`
	OutputSummary workpaper.OutputSummary `json:"output_summary,omitempty"`
	FrozenAt      *time.Time              `json:"frozen_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	Version       int                     `json:"version"`
}

// CreateJobRequest represents a request to create a workpaper job
type CreateJobRequest struct {
	ClientID          uuid.UUID `json:"client_id" binding:"required"`
	Year              string    `json:"year" binding:"required,taxyear"`
	Notes             string    `json:"notes"`
	AutoCreateModules *bool     `json:"auto_create_modules"`
}

// CreateModuleRequest represents a request to add a module to a job
type CreateModuleRequest struct {
	Type   string                 `json:"module_type" binding:"required"`
	Label  string                 `json:"label" binding:"required"`
	Config workpaper.ModuleConfig `json:"config"`
}

// UpdateModuleConfigRequest carries a partial config to merge over the
// module's stored config
type UpdateModuleConfigRequest struct {
	Config workpaper.ModuleConfig `json:"config" binding:"required"`
}

// ToJobResponse converts a domain job to its API representation
func ToJobResponse(job *workpaper.WorkpaperJob) JobResponse {
	return JobResponse{
		ID:        job.ID,
		ClientID:  job.ClientID,
		Year:      job.Year,
		Status:    job.Status.String(),
		Notes:     job.Notes,
		FrozenAt:  job.FrozenAt,
		CreatedAt: job.CreatedAt,
		UpdatedAt: job.UpdatedAt,
		Version:   job.GetVersion(),
	}
}

// ToModuleResponse converts a domain module to its API representation
func ToModuleResponse(m *workpaper.ModuleInstance) ModuleResponse {
	return ModuleResponse{
		ID:            m.ID,
		JobID:         m.JobID,
		Type:          m.Type.String(),
		Label:         m.Label,
		Status:        m.Status.String(),
		Config:        m.Config,
		OutputSummary: m.OutputSummary,
		FrozenAt:      m.FrozenAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
		Version:       m.GetVersion(),
	}
}

// CreateJob opens a workpaper job for a client and tax year. One job exists
// per (client, year); a second create returns AlreadyExists.
func (s *JobService) CreateJob(ctx context.Context, req CreateJobRequest, actor shared.Actor) (*JobResponse, error) {
	existing, err := s.jobRepo.FindByClientAndYear(ctx, req.ClientID, req.Year)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS",
			"A workpaper job already exists for this client and year")
	}

	job, err := workpaper.NewWorkpaperJob(req.ClientID, req.Year, req.Notes, actor)
	if err != nil {
		return nil, err
	}
	if err := s.jobRepo.Save(ctx, job); err != nil {
		return nil, err
	}

	if req.AutoCreateModules == nil || *req.AutoCreateModules {
		for _, std := range standardModules {
			m, err := workpaper.NewModuleInstance(job.ID, std.Type, std.Label, workpaper.ModuleConfig{}, actor)
			if err != nil {
				return nil, err
			}
			if err := s.moduleRepo.Save(ctx, m); err != nil {
				return nil, err
			}
			s.publishEvents(ctx, m.GetDomainEvents())
			m.ClearDomainEvents()
		}
	}

	s.publishEvents(ctx, job.GetDomainEvents())
	job.ClearDomainEvents()

	resp := ToJobResponse(job)
	return &resp, nil
}

// GetJob retrieves a job by ID
func (s *JobService) GetJob(ctx context.Context, jobID uuid.UUID) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// ListJobsByClient lists all jobs for a client
func (s *JobService) ListJobsByClient(ctx context.Context, clientID uuid.UUID) ([]JobResponse, error) {
	jobs, err := s.jobRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToJobResponse(j))
	}
	return out, nil
}

// UpdateJobNotes replaces the job notes
func (s *JobService) UpdateJobNotes(ctx context.Context, jobID uuid.UUID, notes string) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.UpdateNotes(notes); err != nil {
		return nil, err
	}
	if err := s.jobRepo.SaveWithLock(ctx, job, job.GetVersion()); err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// SetJobStatus moves the job to an admin-selected status
func (s *JobService) SetJobStatus(ctx context.Context, jobID uuid.UUID, status string) (*JobResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := job.SetStatus(workpaper.JobStatus(status)); err != nil {
		return nil, err
	}
	if err := s.jobRepo.SaveWithLock(ctx, job, job.GetVersion()); err != nil {
		return nil, err
	}
	resp := ToJobResponse(job)
	return &resp, nil
}

// CreateModule adds a module instance to a job
func (s *JobService) CreateModule(ctx context.Context, jobID uuid.UUID, req CreateModuleRequest, actor shared.Actor) (*ModuleResponse, error) {
	job, err := s.jobRepo.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.IsFrozen() {
		return nil, shared.NewInvalidStateError("Job", job.ID, job.Status.String())
	}

	m, err := workpaper.NewModuleInstance(job.ID, workpaper.ModuleType(req.Type), req.Label, req.Config, actor)
	if err != nil {
		return nil, err
	}
	if err := s.moduleRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m.GetDomainEvents())
	m.ClearDomainEvents()

	resp := ToModuleResponse(m)
	return &resp, nil
}

// GetModule retrieves a module by ID
func (s *JobService) GetModule(ctx context.Context, moduleID uuid.UUID) (*ModuleResponse, error) {
	m, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	resp := ToModuleResponse(m)
	return &resp, nil
}

// ListModules lists a job's modules
func (s *JobService) ListModules(ctx context.Context, jobID uuid.UUID) ([]ModuleResponse, error) {
	modules, err := s.moduleRepo.FindByJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	out := make([]ModuleResponse, 0, len(modules))
	for _, m := range modules {
		out = append(out, ToModuleResponse(m))
	}
	return out, nil
}

// UpdateModuleConfig merges a partial config over the module's stored
// config. Keys absent from the patch persist.
func (s *JobService) UpdateModuleConfig(ctx context.Context, moduleID uuid.UUID, req UpdateModuleConfigRequest, actor shared.Actor) (*ModuleResponse, error) {
	m, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	job, err := s.jobRepo.FindByID(ctx, m.JobID)
	if err != nil {
		return nil, err
	}
	if job.IsFrozen() {
		return nil, shared.NewInvalidStateError("Job", job.ID, job.Status.String())
	}

	if err := m.MergeConfig(req.Config, actor); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.SaveWithLock(ctx, m, m.GetVersion()); err != nil {
		return nil, err
	}

	s.refreshJobStatus(ctx, job)
	s.publishEvents(ctx, m.GetDomainEvents())
	m.ClearDomainEvents()

	resp := ToModuleResponse(m)
	return &resp, nil
}

// SetModuleStatus moves a module to an admin-selected status and refreshes
// the job's derived status.
func (s *JobService) SetModuleStatus(ctx context.Context, moduleID uuid.UUID, status string) (*ModuleResponse, error) {
	m, err := s.moduleRepo.FindByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := m.SetStatus(workpaper.JobStatus(status)); err != nil {
		return nil, err
	}
	if err := s.moduleRepo.SaveWithLock(ctx, m, m.GetVersion()); err != nil {
		return nil, err
	}

	if job, err := s.jobRepo.FindByID(ctx, m.JobID); err == nil {
		s.refreshJobStatus(ctx, job)
	}

	resp := ToModuleResponse(m)
	return &resp, nil
}

// refreshJobStatus re-derives the job status from its modules. Failures are
// swallowed: a stale derived status corrects itself on the next write.
func (s *JobService) refreshJobStatus(ctx context.Context, job *workpaper.WorkpaperJob) {
	modules, err := s.moduleRepo.FindByJob(ctx, job.ID)
	if err != nil {
		return
	}
	flat := make([]workpaper.ModuleInstance, 0, len(modules))
	for _, m := range modules {
		flat = append(flat, *m)
	}
	before := job.Status
	job.ApplyDerivedStatus(flat)
	if job.Status != before {
		_ = s.jobRepo.SaveWithLock(ctx, job, job.GetVersion())
	}
}

func (s *JobService) publishEvents(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
}
