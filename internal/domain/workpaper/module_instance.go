package workpaper

import (
	"fmt"
	"time"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ModuleType identifies a workpaper calculation module
type ModuleType string

const (
	ModuleTypeMotorVehicle ModuleType = "motor_vehicle"
	ModuleTypeFDCIncome    ModuleType = "fdc_income"
	ModuleTypeInternet     ModuleType = "internet"
	ModuleTypeMobile       ModuleType = "mobile"
	ModuleTypeHomeOffice   ModuleType = "home_office"
	ModuleTypeFoodGST      ModuleType = "food_gst"
	ModuleTypeDepreciation ModuleType = "depreciation"
	ModuleTypeSummary      ModuleType = "summary"
)

// IsValid checks if the type is a known ModuleType
func (t ModuleType) IsValid() bool {
	switch t {
	case ModuleTypeMotorVehicle, ModuleTypeFDCIncome, ModuleTypeInternet,
		ModuleTypeMobile, ModuleTypeHomeOffice, ModuleTypeFoodGST,
		ModuleTypeDepreciation, ModuleTypeSummary:
		return true
	}
	return false
}

// String returns the string representation of ModuleType
func (t ModuleType) String() string {
	return string(t)
}

// OutputSummary is the last computed calculation output stored on a module.
// Its shape is module-specific; the well-known keys below are read when
// aggregating job totals.
type OutputSummary map[string]any

func (o OutputSummary) decimalKey(key string) decimal.Decimal {
	if o == nil {
		return decimal.Zero
	}
	switch v := o[key].(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err == nil {
			return d
		}
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	}
	return decimal.Zero
}

// Deduction returns the module's deduction contribution
func (o OutputSummary) Deduction() decimal.Decimal { return o.decimalKey("deduction") }

// GSTCredit returns the module's GST credit contribution
func (o OutputSummary) GSTCredit() decimal.Decimal { return o.decimalKey("gst_credit") }

// NetIncome returns the module's net income contribution
func (o OutputSummary) NetIncome() decimal.Decimal { return o.decimalKey("net_income") }

// ModuleInstance is one calculation module belonging to a WorkpaperJob,
// e.g. "Vehicle 1". Its config is merged, never wholesale-replaced, and all
// writes are rejected once the module is frozen.
type ModuleInstance struct {
	shared.BaseAggregateRoot
	JobID         uuid.UUID     `json:"job_id"`
	Type          ModuleType    `json:"module_type"`
	Label         string        `json:"label"`
	Status        JobStatus     `json:"status"`
	Config        ModuleConfig  `json:"config"`
	OutputSummary OutputSummary `json:"output_summary,omitempty"`
	FrozenAt      *time.Time    `json:"frozen_at,omitempty"`
}

// NewModuleInstance creates a module under a job
func NewModuleInstance(jobID uuid.UUID, moduleType ModuleType, label string, cfg ModuleConfig, actor shared.Actor) (*ModuleInstance, error) {
	if jobID == uuid.Nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Job ID cannot be empty")
	}
	if !moduleType.IsValid() {
		return nil, shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown module type: %s", moduleType))
	}
	if label == "" {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Module label cannot be empty")
	}

	m := &ModuleInstance{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		JobID:             jobID,
		Type:              moduleType,
		Label:             label,
		Status:            JobStatusNotStarted,
		Config:            cfg,
	}
	m.AddDomainEvent(NewModuleCreatedEvent(m, actor))
	return m, nil
}

// IsFrozen returns true if the module is frozen
func (m *ModuleInstance) IsFrozen() bool {
	return m.Status.IsFrozen()
}

// Rename changes the module label. Rejected while frozen.
func (m *ModuleInstance) Rename(label string) error {
	if m.IsFrozen() {
		return shared.NewInvalidStateError("Module", m.ID, m.Status.String())
	}
	if label == "" {
		return shared.NewDomainError("VALIDATION_FAILED", "Module label cannot be empty")
	}
	m.Label = label
	m.Touch()
	return nil
}

// SetStatus moves the module to an admin-selected workflow status
func (m *ModuleInstance) SetStatus(status JobStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("VALIDATION_FAILED", fmt.Sprintf("Unknown module status: %s", status))
	}
	if status == JobStatusFrozen {
		return shared.NewDomainError("INVALID_STATE", "Modules are frozen through the freeze operation, not a status update")
	}
	if m.IsFrozen() {
		return shared.NewInvalidStateError("Module", m.ID, m.Status.String())
	}
	m.Status = status
	m.Touch()
	return nil
}

// MergeConfig applies a partial config update over the stored config.
// Unspecified keys persist. Rejected while frozen.
func (m *ModuleInstance) MergeConfig(patch ModuleConfig, actor shared.Actor) error {
	if m.IsFrozen() {
		return shared.NewInvalidStateError("Module", m.ID, m.Status.String())
	}
	m.Config = m.Config.Merge(patch)
	if m.Status == JobStatusNotStarted {
		m.Status = JobStatusInProgress
	}
	m.Touch()
	m.AddDomainEvent(NewModuleConfigUpdatedEvent(m, actor))
	return nil
}

// RecordOutput stores a freshly computed output summary. Rejected while
// frozen; the frozen output belongs to the snapshot.
func (m *ModuleInstance) RecordOutput(output OutputSummary) error {
	if m.IsFrozen() {
		return shared.NewInvalidStateError("Module", m.ID, m.Status.String())
	}
	m.OutputSummary = output
	if m.Status == JobStatusNotStarted {
		m.Status = JobStatusInProgress
	}
	m.Touch()
	return nil
}

// Freeze marks the module frozen. The freeze service persists the snapshot
// in the same storage transaction, snapshot first.
func (m *ModuleInstance) Freeze(actor shared.Actor, snapshotID uuid.UUID, reason string) error {
	if !m.Status.CanFreeze() {
		return shared.NewInvalidStateError("Module", m.ID, m.Status.String())
	}
	now := time.Now()
	m.Status = JobStatusFrozen
	m.FrozenAt = &now
	m.UpdatedAt = now
	m.AddDomainEvent(NewModuleFrozenEvent(m, actor, snapshotID, reason))
	return nil
}

// Reopen returns a frozen module to in_progress. The prior snapshot stays
// untouched; a later freeze creates a new one.
func (m *ModuleInstance) Reopen(actor shared.Actor, reason string) error {
	if !m.IsFrozen() {
		return shared.NewDomainError("INVALID_STATE",
			fmt.Sprintf("Module %s is not frozen (status %q)", m.ID, m.Status))
	}
	if len(reason) < MinReopenReasonLen {
		return shared.NewDomainError("VALIDATION_FAILED",
			fmt.Sprintf("Reopen reason must be at least %d characters", MinReopenReasonLen))
	}
	now := time.Now()
	m.Status = JobStatusInProgress
	m.FrozenAt = nil
	m.UpdatedAt = now
	m.AddDomainEvent(NewModuleReopenedEvent(m, actor, reason))
	return nil
}
