package workpaper

import (
	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeJobCreated          = "workpaper.job.created"
	EventTypeJobFrozen           = "workpaper.job.frozen"
	EventTypeJobReopened         = "workpaper.job.reopened"
	EventTypeModuleCreated       = "workpaper.module.created"
	EventTypeModuleConfigUpdated = "workpaper.module.config_updated"
	EventTypeModuleFrozen        = "workpaper.module.frozen"
	EventTypeModuleReopened      = "workpaper.module.reopened"
	EventTypeOverrideUpserted    = "workpaper.override.upserted"
	EventTypeOverrideDeleted     = "workpaper.override.deleted"
	EventTypeQueryCreated        = "workpaper.query.created"
	EventTypeQueryStatusChanged  = "workpaper.query.status_changed"
	EventTypeTransactionIngested = "workpaper.transaction.ingested"
	EventTypeTransactionDeleted  = "workpaper.transaction.deleted"
)

const (
	aggregateTypeJob         = "WorkpaperJob"
	aggregateTypeModule      = "ModuleInstance"
	aggregateTypeOverride    = "TransactionOverride"
	aggregateTypeQuery       = "Query"
	aggregateTypeTransaction = "Transaction"
)

// JobCreatedEvent is emitted when a workpaper job is opened
type JobCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Year     string    `json:"year"`
}

// NewJobCreatedEvent creates a JobCreatedEvent
func NewJobCreatedEvent(job *WorkpaperJob, actor shared.Actor) *JobCreatedEvent {
	return &JobCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobCreated, aggregateTypeJob, job.ID, actor),
		ClientID:        job.ClientID,
		Year:            job.Year,
	}
}

// Details returns the audit payload
func (e *JobCreatedEvent) Details() map[string]any {
	return map[string]any{
		"client_id": e.ClientID.String(),
		"year":      e.Year,
	}
}

// JobFrozenEvent is emitted when a job is frozen
type JobFrozenEvent struct {
	shared.BaseDomainEvent
	SnapshotID uuid.UUID `json:"snapshot_id"`
	Reason     string    `json:"reason,omitempty"`
}

// NewJobFrozenEvent creates a JobFrozenEvent
func NewJobFrozenEvent(job *WorkpaperJob, actor shared.Actor, snapshotID uuid.UUID, reason string) *JobFrozenEvent {
	return &JobFrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobFrozen, aggregateTypeJob, job.ID, actor),
		SnapshotID:      snapshotID,
		Reason:          reason,
	}
}

// Details returns the audit payload
func (e *JobFrozenEvent) Details() map[string]any {
	return map[string]any{
		"snapshot_id": e.SnapshotID.String(),
		"reason":      e.Reason,
	}
}

// JobReopenedEvent is emitted when a frozen job is reopened
type JobReopenedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewJobReopenedEvent creates a JobReopenedEvent
func NewJobReopenedEvent(job *WorkpaperJob, actor shared.Actor, reason string) *JobReopenedEvent {
	return &JobReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeJobReopened, aggregateTypeJob, job.ID, actor),
		Reason:          reason,
	}
}

// Details returns the audit payload
func (e *JobReopenedEvent) Details() map[string]any {
	return map[string]any{"reason": e.Reason}
}

// ModuleCreatedEvent is emitted when a module is added to a job
type ModuleCreatedEvent struct {
	shared.BaseDomainEvent
	JobID      uuid.UUID  `json:"job_id"`
	ModuleType ModuleType `json:"module_type"`
	Label      string     `json:"label"`
}

// NewModuleCreatedEvent creates a ModuleCreatedEvent
func NewModuleCreatedEvent(m *ModuleInstance, actor shared.Actor) *ModuleCreatedEvent {
	return &ModuleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeModuleCreated, aggregateTypeModule, m.ID, actor),
		JobID:           m.JobID,
		ModuleType:      m.Type,
		Label:           m.Label,
	}
}

// Details returns the audit payload
func (e *ModuleCreatedEvent) Details() map[string]any {
	return map[string]any{
		"job_id":      e.JobID.String(),
		"module_type": e.ModuleType.String(),
		"label":       e.Label,
	}
}

// ModuleConfigUpdatedEvent is emitted when a module's config is merged
type ModuleConfigUpdatedEvent struct {
	shared.BaseDomainEvent
	JobID uuid.UUID `json:"job_id"`
}

// NewModuleConfigUpdatedEvent creates a ModuleConfigUpdatedEvent
func NewModuleConfigUpdatedEvent(m *ModuleInstance, actor shared.Actor) *ModuleConfigUpdatedEvent {
	return &ModuleConfigUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeModuleConfigUpdated, aggregateTypeModule, m.ID, actor),
		JobID:           m.JobID,
	}
}

// Details returns the audit payload
func (e *ModuleConfigUpdatedEvent) Details() map[string]any {
	return map[string]any{"job_id": e.JobID.String()}
}

// ModuleFrozenEvent is emitted when a module is frozen
type ModuleFrozenEvent struct {
	shared.BaseDomainEvent
	JobID      uuid.UUID `json:"job_id"`
	SnapshotID uuid.UUID `json:"snapshot_id"`
	Reason     string    `json:"reason,omitempty"`
}

// NewModuleFrozenEvent creates a ModuleFrozenEvent
func NewModuleFrozenEvent(m *ModuleInstance, actor shared.Actor, snapshotID uuid.UUID, reason string) *ModuleFrozenEvent {
	return &ModuleFrozenEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeModuleFrozen, aggregateTypeModule, m.ID, actor),
		JobID:           m.JobID,
		SnapshotID:      snapshotID,
		Reason:          reason,
	}
}

// Details returns the audit payload
func (e *ModuleFrozenEvent) Details() map[string]any {
	return map[string]any{
		"job_id":      e.JobID.String(),
		"snapshot_id": e.SnapshotID.String(),
		"reason":      e.Reason,
	}
}

// ModuleReopenedEvent is emitted when a frozen module is reopened
type ModuleReopenedEvent struct {
	shared.BaseDomainEvent
	JobID  uuid.UUID `json:"job_id"`
	Reason string    `json:"reason"`
}

// NewModuleReopenedEvent creates a ModuleReopenedEvent
func NewModuleReopenedEvent(m *ModuleInstance, actor shared.Actor, reason string) *ModuleReopenedEvent {
	return &ModuleReopenedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeModuleReopened, aggregateTypeModule, m.ID, actor),
		JobID:           m.JobID,
		Reason:          reason,
	}
}

// Details returns the audit payload
func (e *ModuleReopenedEvent) Details() map[string]any {
	return map[string]any{
		"job_id": e.JobID.String(),
		"reason": e.Reason,
	}
}

// OverrideUpsertedEvent is emitted when a transaction override is created
// or updated. Created distinguishes insert from update.
type OverrideUpsertedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	JobID         uuid.UUID `json:"job_id"`
	Reason        string    `json:"reason"`
	Created       bool      `json:"created"`
}

// NewOverrideUpsertedEvent creates an OverrideUpsertedEvent
func NewOverrideUpsertedEvent(o *TransactionOverride, actor shared.Actor, created bool) *OverrideUpsertedEvent {
	return &OverrideUpsertedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOverrideUpserted, aggregateTypeOverride, o.ID, actor),
		TransactionID:   o.TransactionID,
		JobID:           o.JobID,
		Reason:          o.Reason,
		Created:         created,
	}
}

// Details returns the audit payload
func (e *OverrideUpsertedEvent) Details() map[string]any {
	return map[string]any{
		"transaction_id": e.TransactionID.String(),
		"job_id":         e.JobID.String(),
		"reason":         e.Reason,
		"created":        e.Created,
	}
}

// OverrideDeletedEvent is emitted when an override is explicitly removed
type OverrideDeletedEvent struct {
	shared.BaseDomainEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	JobID         uuid.UUID `json:"job_id"`
}

// NewOverrideDeletedEvent creates an OverrideDeletedEvent
func NewOverrideDeletedEvent(o *TransactionOverride, actor shared.Actor) *OverrideDeletedEvent {
	return &OverrideDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOverrideDeleted, aggregateTypeOverride, o.ID, actor),
		TransactionID:   o.TransactionID,
		JobID:           o.JobID,
	}
}

// Details returns the audit payload
func (e *OverrideDeletedEvent) Details() map[string]any {
	return map[string]any{
		"transaction_id": e.TransactionID.String(),
		"job_id":         e.JobID.String(),
	}
}

// QueryCreatedEvent is emitted when a query is drafted
type QueryCreatedEvent struct {
	shared.BaseDomainEvent
	JobID uuid.UUID `json:"job_id"`
	Title string    `json:"title"`
	Query QueryType `json:"query_type"`
}

// NewQueryCreatedEvent creates a QueryCreatedEvent
func NewQueryCreatedEvent(q *Query, actor shared.Actor) *QueryCreatedEvent {
	return &QueryCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQueryCreated, aggregateTypeQuery, q.ID, actor),
		JobID:           q.JobID,
		Title:           q.Title,
		Query:           q.Type,
	}
}

// Details returns the audit payload
func (e *QueryCreatedEvent) Details() map[string]any {
	return map[string]any{
		"job_id":     e.JobID.String(),
		"title":      e.Title,
		"query_type": e.Query.String(),
	}
}

// QueryStatusChangedEvent is emitted on every query transition
type QueryStatusChangedEvent struct {
	shared.BaseDomainEvent
	JobID uuid.UUID   `json:"job_id"`
	From  QueryStatus `json:"from"`
	To    QueryStatus `json:"to"`
}

// NewQueryStatusChangedEvent creates a QueryStatusChangedEvent
func NewQueryStatusChangedEvent(q *Query, from QueryStatus, actor shared.Actor) *QueryStatusChangedEvent {
	return &QueryStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQueryStatusChanged, aggregateTypeQuery, q.ID, actor),
		JobID:           q.JobID,
		From:            from,
		To:              q.Status,
	}
}

// Details returns the audit payload
func (e *QueryStatusChangedEvent) Details() map[string]any {
	return map[string]any{
		"job_id": e.JobID.String(),
		"from":   e.From.String(),
		"to":     e.To.String(),
	}
}

// TransactionIngestedEvent is emitted when a source transaction is recorded
type TransactionIngestedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID           `json:"client_id"`
	Category TransactionCategory `json:"category"`
	Source   TransactionSource   `json:"source"`
}

// NewTransactionIngestedEvent creates a TransactionIngestedEvent
func NewTransactionIngestedEvent(t *Transaction, actor shared.Actor) *TransactionIngestedEvent {
	return &TransactionIngestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionIngested, aggregateTypeTransaction, t.ID, actor),
		ClientID:        t.ClientID,
		Category:        t.Category,
		Source:          t.Source,
	}
}

// Details returns the audit payload
func (e *TransactionIngestedEvent) Details() map[string]any {
	return map[string]any{
		"client_id": e.ClientID.String(),
		"category":  e.Category.String(),
		"source":    e.Source.String(),
	}
}

// TransactionDeletedEvent is emitted on administrative delete of a source
// transaction. Deletes are rare and always audit-logged.
type TransactionDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID    uuid.UUID `json:"client_id"`
	Description string    `json:"description"`
	Reason      string    `json:"reason"`
}

// NewTransactionDeletedEvent creates a TransactionDeletedEvent
func NewTransactionDeletedEvent(t *Transaction, actor shared.Actor, reason string) *TransactionDeletedEvent {
	return &TransactionDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeTransactionDeleted, aggregateTypeTransaction, t.ID, actor),
		ClientID:        t.ClientID,
		Description:     t.Description,
		Reason:          reason,
	}
}

// Details returns the audit payload
func (e *TransactionDeletedEvent) Details() map[string]any {
	return map[string]any{
		"client_id":   e.ClientID.String(),
		"description": e.Description,
		"reason":      e.Reason,
	}
}
