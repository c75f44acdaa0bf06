package workpaper

import (
	"fmt"
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SnapshotType identifies what a freeze snapshot captures
type SnapshotType string

const (
	SnapshotTypeModule  SnapshotType = "module"
	SnapshotTypeITR     SnapshotType = "itr"
	SnapshotTypeBAS     SnapshotType = "bas"
	SnapshotTypeSummary SnapshotType = "summary"
)

// IsValid checks if the type is a known SnapshotType
func (t SnapshotType) IsValid() bool {
	switch t {
	case SnapshotTypeModule, SnapshotTypeITR, SnapshotTypeBAS, SnapshotTypeSummary:
		return true
	}
	return false
}

// String returns the string representation of SnapshotType
func (t SnapshotType) String() string {
	return string(t)
}

// ModuleSnapshotData is the frozen bundle for one module: config,
// field-level overrides, the effective transactions that fed the last
// calculation, and that calculation's output, captured verbatim.
type ModuleSnapshotData struct {
	ModuleInstanceID uuid.UUID              `json:"module_instance_id"`
	ModuleType       ModuleType             `json:"module_type"`
	Label            string                 `json:"label"`
	Config           ModuleConfig           `json:"config"`
	FieldOverrides   []*OverrideRecord      `json:"field_overrides"`
	Transactions     []EffectiveTransaction `json:"transactions"`
	OutputSummary    OutputSummary          `json:"output_summary"`
}

// JobSnapshotData is the frozen bundle for a whole job: every module's
// bundle plus the job-level totals at freeze time.
type JobSnapshotData struct {
	JobID   uuid.UUID            `json:"job_id"`
	Year    string               `json:"year"`
	Modules []ModuleSnapshotData `json:"modules"`
	Totals  OutputSummary        `json:"totals"`
}

// FreezeSnapshot is an immutable record written at freeze time. Rows are
// never updated; reopening and re-freezing creates a new row.
type FreezeSnapshot struct {
	shared.BaseEntity
	JobID            uuid.UUID           `json:"job_id"`
	ModuleInstanceID *uuid.UUID          `json:"module_instance_id,omitempty"`
	Type             SnapshotType        `json:"snapshot_type"`
	ModuleData       *ModuleSnapshotData `json:"module_data,omitempty" gorm:"-"`
	JobData          *JobSnapshotData    `json:"job_data,omitempty" gorm:"-"`
	FrozenByID       uuid.UUID           `json:"frozen_by_id"`
	FrozenByEmail    string              `json:"frozen_by_email,omitempty"`
	Reason           string              `json:"reason,omitempty"`
	FrozenAt         time.Time           `json:"frozen_at"`
}

// NewModuleSnapshot captures one module's state at freeze time
func NewModuleSnapshot(jobID uuid.UUID, data ModuleSnapshotData, actor shared.Actor, reason string) (*FreezeSnapshot, error) {
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Job ID cannot be empty")
	}
	if data.ModuleInstanceID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Module instance ID cannot be empty")
	}
	moduleID := data.ModuleInstanceID
	return &FreezeSnapshot{
		BaseEntity:       shared.NewBaseEntity(),
		JobID:            jobID,
		ModuleInstanceID: &moduleID,
		Type:             SnapshotTypeModule,
		ModuleData:       &data,
		FrozenByID:       actor.ID,
		FrozenByEmail:    actor.Email,
		Reason:           reason,
		FrozenAt:         time.Now(),
	}, nil
}

// NewJobSnapshot captures a whole job's state at freeze time
func NewJobSnapshot(snapshotType SnapshotType, data JobSnapshotData, actor shared.Actor, reason string) (*FreezeSnapshot, error) {
	if !snapshotType.IsValid() || snapshotType == SnapshotTypeModule {
		return nil, shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Invalid job snapshot type: %s", snapshotType))
	}
	if data.JobID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Job ID cannot be empty")
	}
	return &FreezeSnapshot{
		BaseEntity:    shared.NewBaseEntity(),
		JobID:         data.JobID,
		Type:          snapshotType,
		JobData:       &data,
		FrozenByID:    actor.ID,
		FrozenByEmail: actor.Email,
		Reason:        reason,
		FrozenAt:      time.Now(),
	}, nil
}
