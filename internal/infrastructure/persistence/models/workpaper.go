package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// WorkpaperJobModel is the GORM model for workpaper jobs
type WorkpaperJobModel struct {
	AggregateModel
	ClientID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_jobs_client_year;index"`
	Year     string     `gorm:"size:7;not null;uniqueIndex:idx_jobs_client_year"`
	Status   string     `gorm:"size:32;not null;index"`
	Notes    string     `gorm:"type:text"`
	FrozenAt *time.Time `gorm:""`
}

// TableName returns the table name for WorkpaperJobModel
func (WorkpaperJobModel) TableName() string {
	return "workpaper_jobs"
}

// ToDomain converts WorkpaperJobModel to domain WorkpaperJob
func (m *WorkpaperJobModel) ToDomain() *workpaper.WorkpaperJob {
	return &workpaper.WorkpaperJob{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ClientID: m.ClientID,
		Year:     m.Year,
		Status:   workpaper.JobStatus(m.Status),
		Notes:    m.Notes,
		FrozenAt: m.FrozenAt,
	}
}

// WorkpaperJobModelFromDomain creates a WorkpaperJobModel from domain WorkpaperJob
func WorkpaperJobModelFromDomain(job *workpaper.WorkpaperJob) *WorkpaperJobModel {
	m := &WorkpaperJobModel{
		ClientID: job.ClientID,
		Year:     job.Year,
		Status:   job.Status.String(),
		Notes:    job.Notes,
		FrozenAt: job.FrozenAt,
	}
	m.FromDomainAggregateRoot(job.BaseAggregateRoot)
	return m
}

// ModuleInstanceModel is the GORM model for module instances
type ModuleInstanceModel struct {
	AggregateModel
	JobID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	ModuleType string     `gorm:"size:32;not null"`
	Label      string     `gorm:"size:255;not null"`
	Status     string     `gorm:"size:32;not null"`
	ConfigJSON string     `gorm:"column:config;type:jsonb;default:'{}'"`
	OutputJSON string     `gorm:"column:output_summary;type:jsonb;default:'{}'"`
	FrozenAt   *time.Time `gorm:""`
}

// TableName returns the table name for ModuleInstanceModel
func (ModuleInstanceModel) TableName() string {
	return "module_instances"
}

// ToDomain converts ModuleInstanceModel to domain ModuleInstance
func (m *ModuleInstanceModel) ToDomain() *workpaper.ModuleInstance {
	instance := &workpaper.ModuleInstance{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		JobID:    m.JobID,
		Type:     workpaper.ModuleType(m.ModuleType),
		Label:    m.Label,
		Status:   workpaper.JobStatus(m.Status),
		FrozenAt: m.FrozenAt,
	}
	if m.ConfigJSON != "" {
		_ = json.Unmarshal([]byte(m.ConfigJSON), &instance.Config)
	}
	if m.OutputJSON != "" && m.OutputJSON != "{}" {
		_ = json.Unmarshal([]byte(m.OutputJSON), &instance.OutputSummary)
	}
	return instance
}

// ModuleInstanceModelFromDomain creates a ModuleInstanceModel from domain ModuleInstance
func ModuleInstanceModelFromDomain(instance *workpaper.ModuleInstance) *ModuleInstanceModel {
	m := &ModuleInstanceModel{
		JobID:      instance.JobID,
		ModuleType: instance.Type.String(),
		Label:      instance.Label,
		Status:     instance.Status.String(),
		FrozenAt:   instance.FrozenAt,
	}
	if data, err := json.Marshal(instance.Config); err == nil {
		m.ConfigJSON = string(data)
	} else {
		m.ConfigJSON = "{}"
	}
	if instance.OutputSummary != nil {
		if data, err := json.Marshal(instance.OutputSummary); err == nil {
			m.OutputJSON = string(data)
		}
	}
	if m.OutputJSON == "" {
		m.OutputJSON = "{}"
	}
	m.FromDomainAggregateRoot(instance.BaseAggregateRoot)
	return m
}

// TransactionModel is the GORM model for source transactions. Rows are
// immutable once imported; corrections live in transaction_overrides.
type TransactionModel struct {
	BaseModel
	ClientID    uuid.UUID       `gorm:"type:uuid;not null;index:idx_transactions_client_date"`
	Date        time.Time       `gorm:"not null;index:idx_transactions_client_date"`
	Description string          `gorm:"size:512;not null"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	GSTAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Category    string          `gorm:"size:32;not null;index"`
	Source      string          `gorm:"size:16;not null"`
	ExternalRef string          `gorm:"size:255"`
}

// TableName returns the table name for TransactionModel
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts TransactionModel to domain Transaction
func (m *TransactionModel) ToDomain() *workpaper.Transaction {
	return &workpaper.Transaction{
		BaseEntity:  m.BaseModel.ToDomain(),
		ClientID:    m.ClientID,
		Date:        m.Date,
		Description: m.Description,
		Amount:      valueobject.NewMoneyAUD(m.Amount),
		GSTAmount:   valueobject.NewMoneyAUD(m.GSTAmount),
		Category:    workpaper.TransactionCategory(m.Category),
		Source:      workpaper.TransactionSource(m.Source),
		ExternalRef: m.ExternalRef,
	}
}

// TransactionModelFromDomain creates a TransactionModel from domain Transaction
func TransactionModelFromDomain(tx *workpaper.Transaction) *TransactionModel {
	m := &TransactionModel{
		ClientID:    tx.ClientID,
		Date:        tx.Date,
		Description: tx.Description,
		Amount:      tx.Amount.Amount(),
		GSTAmount:   tx.GSTAmount.Amount(),
		Category:    tx.Category.String(),
		Source:      string(tx.Source),
		ExternalRef: tx.ExternalRef,
	}
	m.FromDomainBaseEntity(tx.BaseEntity)
	return m
}

// TransactionOverrideModel is the GORM model for transaction overrides,
// unique per (transaction, job)
type TransactionOverrideModel struct {
	BaseModel
	TransactionID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_overrides_tx_job"`
	JobID              uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_overrides_tx_job;index"`
	OverriddenCategory *string          `gorm:"size:32"`
	OverriddenAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	OverriddenGST      *decimal.Decimal `gorm:"type:decimal(12,2)"`
	BusinessPct        *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Excluded           bool             `gorm:"not null;default:false"`
	Reason             string           `gorm:"type:text;not null"`
	ActorID            uuid.UUID        `gorm:"type:uuid;not null"`
	ActorEmail         string           `gorm:"size:255"`
}

// TableName returns the table name for TransactionOverrideModel
func (TransactionOverrideModel) TableName() string {
	return "transaction_overrides"
}

// ToDomain converts TransactionOverrideModel to domain TransactionOverride
func (m *TransactionOverrideModel) ToDomain() *workpaper.TransactionOverride {
	o := &workpaper.TransactionOverride{
		BaseEntity:    m.BaseModel.ToDomain(),
		TransactionID: m.TransactionID,
		JobID:         m.JobID,
		BusinessPct:   m.BusinessPct,
		Excluded:      m.Excluded,
		Reason:        m.Reason,
		ActorID:       m.ActorID,
		ActorEmail:    m.ActorEmail,
	}
	if m.OverriddenCategory != nil {
		c := workpaper.TransactionCategory(*m.OverriddenCategory)
		o.OverriddenCategory = &c
	}
	if m.OverriddenAmount != nil {
		money := valueobject.NewMoneyAUD(*m.OverriddenAmount)
		o.OverriddenAmount = &money
	}
	if m.OverriddenGST != nil {
		money := valueobject.NewMoneyAUD(*m.OverriddenGST)
		o.OverriddenGST = &money
	}
	return o
}

// TransactionOverrideModelFromDomain creates a TransactionOverrideModel from domain
func TransactionOverrideModelFromDomain(o *workpaper.TransactionOverride) *TransactionOverrideModel {
	m := &TransactionOverrideModel{
		TransactionID: o.TransactionID,
		JobID:         o.JobID,
		BusinessPct:   o.BusinessPct,
		Excluded:      o.Excluded,
		Reason:        o.Reason,
		ActorID:       o.ActorID,
		ActorEmail:    o.ActorEmail,
	}
	if o.OverriddenCategory != nil {
		c := o.OverriddenCategory.String()
		m.OverriddenCategory = &c
	}
	if o.OverriddenAmount != nil {
		a := o.OverriddenAmount.Amount()
		m.OverriddenAmount = &a
	}
	if o.OverriddenGST != nil {
		g := o.OverriddenGST.Amount()
		m.OverriddenGST = &g
	}
	m.FromDomainBaseEntity(o.BaseEntity)
	return m
}

// OverrideRecordModel is the GORM model for module field overrides,
// unique per (module_instance, field_key)
type OverrideRecordModel struct {
	BaseModel
	ModuleInstanceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_field_overrides_module_key;index"`
	FieldKey         string    `gorm:"size:64;not null;uniqueIndex:idx_field_overrides_module_key"`
	Value            string    `gorm:"type:text;not null"`
	Reason           string    `gorm:"type:text;not null"`
	ActorID          uuid.UUID `gorm:"type:uuid;not null"`
	ActorEmail       string    `gorm:"size:255"`
}

// TableName returns the table name for OverrideRecordModel
func (OverrideRecordModel) TableName() string {
	return "module_field_overrides"
}

// ToDomain converts OverrideRecordModel to domain OverrideRecord
func (m *OverrideRecordModel) ToDomain() *workpaper.OverrideRecord {
	return &workpaper.OverrideRecord{
		BaseEntity:       m.BaseModel.ToDomain(),
		ModuleInstanceID: m.ModuleInstanceID,
		FieldKey:         m.FieldKey,
		Value:            m.Value,
		Reason:           m.Reason,
		ActorID:          m.ActorID,
		ActorEmail:       m.ActorEmail,
	}
}

// OverrideRecordModelFromDomain creates an OverrideRecordModel from domain
func OverrideRecordModelFromDomain(r *workpaper.OverrideRecord) *OverrideRecordModel {
	m := &OverrideRecordModel{
		ModuleInstanceID: r.ModuleInstanceID,
		FieldKey:         r.FieldKey,
		Value:            r.Value,
		Reason:           r.Reason,
		ActorID:          r.ActorID,
		ActorEmail:       r.ActorEmail,
	}
	m.FromDomainBaseEntity(r.BaseEntity)
	return m
}

// QueryModel is the GORM model for client queries
type QueryModel struct {
	AggregateModel
	ClientID          uuid.UUID  `gorm:"type:uuid;not null;index"`
	JobID             uuid.UUID  `gorm:"type:uuid;not null;index"`
	ModuleInstanceID  *uuid.UUID `gorm:"type:uuid;index"`
	TransactionID     *uuid.UUID `gorm:"type:uuid"`
	Title             string     `gorm:"size:512;not null"`
	QueryType         string     `gorm:"size:32;not null"`
	RequestConfigJSON string     `gorm:"column:request_config;type:jsonb;default:'{}'"`
	Status            string     `gorm:"size:32;not null;index"`
	ResponseDataJSON  string     `gorm:"column:response_data;type:jsonb;default:'{}'"`
	CreatedByID       uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedByEmail    string     `gorm:"size:255"`
	SentAt            *time.Time `gorm:""`
	RespondedAt       *time.Time `gorm:""`
	ResolvedAt        *time.Time `gorm:""`
}

// TableName returns the table name for QueryModel
func (QueryModel) TableName() string {
	return "queries"
}

// ToDomain converts QueryModel to domain Query
func (m *QueryModel) ToDomain() *workpaper.Query {
	q := &workpaper.Query{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: m.BaseModel.ToDomain(),
			Version:    m.Version,
		},
		ClientID:         m.ClientID,
		JobID:            m.JobID,
		ModuleInstanceID: m.ModuleInstanceID,
		TransactionID:    m.TransactionID,
		Title:            m.Title,
		Type:             workpaper.QueryType(m.QueryType),
		Status:           workpaper.QueryStatus(m.Status),
		CreatedByID:      m.CreatedByID,
		CreatedByEmail:   m.CreatedByEmail,
		SentAt:           m.SentAt,
		RespondedAt:      m.RespondedAt,
		ResolvedAt:       m.ResolvedAt,
	}
	if m.RequestConfigJSON != "" && m.RequestConfigJSON != "{}" {
		_ = json.Unmarshal([]byte(m.RequestConfigJSON), &q.RequestConfig)
	}
	if m.ResponseDataJSON != "" && m.ResponseDataJSON != "{}" {
		_ = json.Unmarshal([]byte(m.ResponseDataJSON), &q.ResponseData)
	}
	return q
}

// QueryModelFromDomain creates a QueryModel from domain Query
func QueryModelFromDomain(q *workpaper.Query) *QueryModel {
	m := &QueryModel{
		ClientID:          q.ClientID,
		JobID:             q.JobID,
		ModuleInstanceID:  q.ModuleInstanceID,
		TransactionID:     q.TransactionID,
		Title:             q.Title,
		QueryType:         q.Type.String(),
		RequestConfigJSON: "{}",
		Status:            q.Status.String(),
		ResponseDataJSON:  "{}",
		CreatedByID:       q.CreatedByID,
		CreatedByEmail:    q.CreatedByEmail,
		SentAt:            q.SentAt,
		RespondedAt:       q.RespondedAt,
		ResolvedAt:        q.ResolvedAt,
	}
	if q.RequestConfig != nil {
		if data, err := json.Marshal(q.RequestConfig); err == nil {
			m.RequestConfigJSON = string(data)
		}
	}
	if q.ResponseData != nil {
		if data, err := json.Marshal(q.ResponseData); err == nil {
			m.ResponseDataJSON = string(data)
		}
	}
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	return m
}

// QueryMessageModel is the GORM model for query thread messages
type QueryMessageModel struct {
	BaseModel
	QueryID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderType  string    `gorm:"size:16;not null"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null"`
	SenderEmail string    `gorm:"size:255"`
	Text        string    `gorm:"type:text;not null"`
}

// TableName returns the table name for QueryMessageModel
func (QueryMessageModel) TableName() string {
	return "query_messages"
}

// ToDomain converts QueryMessageModel to domain QueryMessage
func (m *QueryMessageModel) ToDomain() *workpaper.QueryMessage {
	return &workpaper.QueryMessage{
		BaseEntity:  m.BaseModel.ToDomain(),
		QueryID:     m.QueryID,
		SenderType:  workpaper.SenderType(m.SenderType),
		SenderID:    m.SenderID,
		SenderEmail: m.SenderEmail,
		Text:        m.Text,
	}
}

// QueryMessageModelFromDomain creates a QueryMessageModel from domain
func QueryMessageModelFromDomain(msg *workpaper.QueryMessage) *QueryMessageModel {
	m := &QueryMessageModel{
		QueryID:     msg.QueryID,
		SenderType:  msg.SenderType.String(),
		SenderID:    msg.SenderID,
		SenderEmail: msg.SenderEmail,
		Text:        msg.Text,
	}
	m.FromDomainBaseEntity(msg.BaseEntity)
	return m
}

// TaskModel is the GORM model for derived client tasks, unique per
// (job, task_type)
type TaskModel struct {
	BaseModel
	ClientID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	JobID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_tasks_job_type"`
	TaskType    string     `gorm:"size:32;not null;uniqueIndex:idx_tasks_job_type"`
	Status      string     `gorm:"size:32;not null;index"`
	Title       string     `gorm:"size:255;not null"`
	OpenCount   int        `gorm:"not null;default:0"`
	CompletedAt *time.Time `gorm:""`
}

// TableName returns the table name for TaskModel
func (TaskModel) TableName() string {
	return "client_tasks"
}

// ToDomain converts TaskModel to domain Task
func (m *TaskModel) ToDomain() *workpaper.Task {
	return &workpaper.Task{
		BaseEntity:  m.BaseModel.ToDomain(),
		ClientID:    m.ClientID,
		JobID:       m.JobID,
		Type:        workpaper.TaskType(m.TaskType),
		Status:      workpaper.TaskStatus(m.Status),
		Title:       m.Title,
		OpenCount:   m.OpenCount,
		CompletedAt: m.CompletedAt,
	}
}

// TaskModelFromDomain creates a TaskModel from domain Task
func TaskModelFromDomain(t *workpaper.Task) *TaskModel {
	m := &TaskModel{
		ClientID:    t.ClientID,
		JobID:       t.JobID,
		TaskType:    t.Type.String(),
		Status:      t.Status.String(),
		Title:       t.Title,
		OpenCount:   t.OpenCount,
		CompletedAt: t.CompletedAt,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}

// FreezeSnapshotModel is the GORM model for freeze snapshots. Rows are
// insert-only; there is no update path.
type FreezeSnapshotModel struct {
	BaseModel
	JobID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	ModuleInstanceID *uuid.UUID `gorm:"type:uuid;index"`
	SnapshotType     string     `gorm:"size:16;not null"`
	ModuleDataJSON   string     `gorm:"column:module_data;type:jsonb"`
	JobDataJSON      string     `gorm:"column:job_data;type:jsonb"`
	FrozenByID       uuid.UUID  `gorm:"type:uuid;not null"`
	FrozenByEmail    string     `gorm:"size:255"`
	Reason           string     `gorm:"type:text"`
	FrozenAt         time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for FreezeSnapshotModel
func (FreezeSnapshotModel) TableName() string {
	return "freeze_snapshots"
}

// ToDomain converts FreezeSnapshotModel to domain FreezeSnapshot
func (m *FreezeSnapshotModel) ToDomain() *workpaper.FreezeSnapshot {
	s := &workpaper.FreezeSnapshot{
		BaseEntity:       m.BaseModel.ToDomain(),
		JobID:            m.JobID,
		ModuleInstanceID: m.ModuleInstanceID,
		Type:             workpaper.SnapshotType(m.SnapshotType),
		FrozenByID:       m.FrozenByID,
		FrozenByEmail:    m.FrozenByEmail,
		Reason:           m.Reason,
		FrozenAt:         m.FrozenAt,
	}
	if m.ModuleDataJSON != "" {
		var data workpaper.ModuleSnapshotData
		if err := json.Unmarshal([]byte(m.ModuleDataJSON), &data); err == nil {
			s.ModuleData = &data
		}
	}
	if m.JobDataJSON != "" {
		var data workpaper.JobSnapshotData
		if err := json.Unmarshal([]byte(m.JobDataJSON), &data); err == nil {
			s.JobData = &data
		}
	}
	return s
}

// FreezeSnapshotModelFromDomain creates a FreezeSnapshotModel from domain
func FreezeSnapshotModelFromDomain(s *workpaper.FreezeSnapshot) *FreezeSnapshotModel {
	m := &FreezeSnapshotModel{
		JobID:            s.JobID,
		ModuleInstanceID: s.ModuleInstanceID,
		SnapshotType:     s.Type.String(),
		FrozenByID:       s.FrozenByID,
		FrozenByEmail:    s.FrozenByEmail,
		Reason:           s.Reason,
		FrozenAt:         s.FrozenAt,
	}
	if s.ModuleData != nil {
		if data, err := json.Marshal(s.ModuleData); err == nil {
			m.ModuleDataJSON = string(data)
		}
	}
	if s.JobData != nil {
		if data, err := json.Marshal(s.JobData); err == nil {
			m.JobDataJSON = string(data)
		}
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
