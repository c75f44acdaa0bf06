package workpaper

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// JobRepository persists workpaper jobs
type JobRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*WorkpaperJob, error)
	FindByClientAndYear(ctx context.Context, clientID uuid.UUID, year string) (*WorkpaperJob, error)
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*WorkpaperJob, error)
	Save(ctx context.Context, job *WorkpaperJob) error
	SaveWithLock(ctx context.Context, job *WorkpaperJob, expectedVersion int) error
}

// ModuleRepository persists module instances
type ModuleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ModuleInstance, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*ModuleInstance, error)
	Save(ctx context.Context, module *ModuleInstance) error
	SaveWithLock(ctx context.Context, module *ModuleInstance, expectedVersion int) error
}

// TransactionRepository reads immutable source transactions. There is no
// update method; corrections happen through overrides.
type TransactionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	FindByClientAndPeriod(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]*Transaction, error)
	FindByClientAndCategories(ctx context.Context, clientID uuid.UUID, from, to time.Time, categories []TransactionCategory) ([]*Transaction, error)
	Save(ctx context.Context, tx *Transaction) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// OverrideRepository persists transaction overrides, unique per
// (transaction, job)
type OverrideRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*TransactionOverride, error)
	FindByTransactionAndJob(ctx context.Context, transactionID, jobID uuid.UUID) (*TransactionOverride, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*TransactionOverride, error)
	Save(ctx context.Context, override *TransactionOverride) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// FieldOverrideRepository persists module field overrides, unique per
// (module_instance, field_key)
type FieldOverrideRepository interface {
	FindByModuleAndKey(ctx context.Context, moduleInstanceID uuid.UUID, fieldKey string) (*OverrideRecord, error)
	FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*OverrideRecord, error)
	Save(ctx context.Context, record *OverrideRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// QueryRepository persists queries and their message threads
type QueryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Query, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*Query, error)
	FindByJobAndStatuses(ctx context.Context, jobID uuid.UUID, statuses []QueryStatus) ([]*Query, error)
	Save(ctx context.Context, query *Query) error
	SaveMessage(ctx context.Context, message *QueryMessage) error
	FindMessages(ctx context.Context, queryID uuid.UUID) ([]*QueryMessage, error)
}

// TaskRepository persists derived client tasks
type TaskRepository interface {
	FindByJobAndType(ctx context.Context, jobID uuid.UUID, taskType TaskType) (*Task, error)
	FindOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*Task, error)
	Save(ctx context.Context, task *Task) error
}

// FreezeUnit persists a freeze or reopen atomically. The snapshot rows are
// written before the status flips, and everything commits together or not
// at all. A nil job leaves the job row untouched.
type FreezeUnit interface {
	SaveFreeze(ctx context.Context, snapshots []*FreezeSnapshot, job *WorkpaperJob, modules []*ModuleInstance) error
	SaveReopen(ctx context.Context, job *WorkpaperJob, modules []*ModuleInstance) error
}

// SnapshotRepository persists freeze snapshots. Rows are insert-only.
type SnapshotRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FreezeSnapshot, error)
	FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*FreezeSnapshot, error)
	FindByJob(ctx context.Context, jobID uuid.UUID) ([]*FreezeSnapshot, error)
	FindLatestByModule(ctx context.Context, moduleInstanceID uuid.UUID) (*FreezeSnapshot, error)
	Save(ctx context.Context, snapshot *FreezeSnapshot) error
}
