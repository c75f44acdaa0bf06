package workpaper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// MockJobRepository is a mock implementation of JobRepository
type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.WorkpaperJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.WorkpaperJob), args.Error(1)
}

func (m *MockJobRepository) FindByClientAndYear(ctx context.Context, clientID uuid.UUID, year string) (*workpaper.WorkpaperJob, error) {
	args := m.Called(ctx, clientID, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.WorkpaperJob), args.Error(1)
}

func (m *MockJobRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*workpaper.WorkpaperJob, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.WorkpaperJob), args.Error(1)
}

func (m *MockJobRepository) Save(ctx context.Context, job *workpaper.WorkpaperJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockJobRepository) SaveWithLock(ctx context.Context, job *workpaper.WorkpaperJob, expectedVersion int) error {
	args := m.Called(ctx, job, expectedVersion)
	return args.Error(0)
}

// MockModuleRepository is a mock implementation of ModuleRepository
type MockModuleRepository struct {
	mock.Mock
}

func (m *MockModuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.ModuleInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.ModuleInstance), args.Error(1)
}

func (m *MockModuleRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.ModuleInstance, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.ModuleInstance), args.Error(1)
}

func (m *MockModuleRepository) Save(ctx context.Context, module *workpaper.ModuleInstance) error {
	args := m.Called(ctx, module)
	return args.Error(0)
}

func (m *MockModuleRepository) SaveWithLock(ctx context.Context, module *workpaper.ModuleInstance, expectedVersion int) error {
	args := m.Called(ctx, module, expectedVersion)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByClientAndPeriod(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]*workpaper.Transaction, error) {
	args := m.Called(ctx, clientID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) FindByClientAndCategories(ctx context.Context, clientID uuid.UUID, from, to time.Time, categories []workpaper.TransactionCategory) ([]*workpaper.Transaction, error) {
	args := m.Called(ctx, clientID, from, to, categories)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Save(ctx context.Context, tx *workpaper.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockOverrideRepository is a mock implementation of OverrideRepository
type MockOverrideRepository struct {
	mock.Mock
}

func (m *MockOverrideRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.TransactionOverride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.TransactionOverride), args.Error(1)
}

func (m *MockOverrideRepository) FindByTransactionAndJob(ctx context.Context, transactionID, jobID uuid.UUID) (*workpaper.TransactionOverride, error) {
	args := m.Called(ctx, transactionID, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.TransactionOverride), args.Error(1)
}

func (m *MockOverrideRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.TransactionOverride, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.TransactionOverride), args.Error(1)
}

func (m *MockOverrideRepository) Save(ctx context.Context, override *workpaper.TransactionOverride) error {
	args := m.Called(ctx, override)
	return args.Error(0)
}

func (m *MockOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockFieldOverrideRepository is a mock implementation of FieldOverrideRepository
type MockFieldOverrideRepository struct {
	mock.Mock
}

func (m *MockFieldOverrideRepository) FindByModuleAndKey(ctx context.Context, moduleInstanceID uuid.UUID, fieldKey string) (*workpaper.OverrideRecord, error) {
	args := m.Called(ctx, moduleInstanceID, fieldKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.OverrideRecord), args.Error(1)
}

func (m *MockFieldOverrideRepository) FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*workpaper.OverrideRecord, error) {
	args := m.Called(ctx, moduleInstanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.OverrideRecord), args.Error(1)
}

func (m *MockFieldOverrideRepository) Save(ctx context.Context, record *workpaper.OverrideRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockFieldOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockQueryRepository is a mock implementation of QueryRepository
type MockQueryRepository struct {
	mock.Mock
}

func (m *MockQueryRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.Query, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.Query), args.Error(1)
}

func (m *MockQueryRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.Query, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.Query), args.Error(1)
}

func (m *MockQueryRepository) FindByJobAndStatuses(ctx context.Context, jobID uuid.UUID, statuses []workpaper.QueryStatus) ([]*workpaper.Query, error) {
	args := m.Called(ctx, jobID, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.Query), args.Error(1)
}

func (m *MockQueryRepository) Save(ctx context.Context, query *workpaper.Query) error {
	args := m.Called(ctx, query)
	return args.Error(0)
}

func (m *MockQueryRepository) SaveMessage(ctx context.Context, message *workpaper.QueryMessage) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockQueryRepository) FindMessages(ctx context.Context, queryID uuid.UUID) ([]*workpaper.QueryMessage, error) {
	args := m.Called(ctx, queryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.QueryMessage), args.Error(1)
}

// MockTaskRepository is a mock implementation of TaskRepository
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByJobAndType(ctx context.Context, jobID uuid.UUID, taskType workpaper.TaskType) (*workpaper.Task, error) {
	args := m.Called(ctx, jobID, taskType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.Task), args.Error(1)
}

func (m *MockTaskRepository) FindOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*workpaper.Task, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.Task), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *workpaper.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

// MockSnapshotRepository is a mock implementation of SnapshotRepository
type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.FreezeSnapshot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.FreezeSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*workpaper.FreezeSnapshot, error) {
	args := m.Called(ctx, moduleInstanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.FreezeSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.FreezeSnapshot, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*workpaper.FreezeSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) FindLatestByModule(ctx context.Context, moduleInstanceID uuid.UUID) (*workpaper.FreezeSnapshot, error) {
	args := m.Called(ctx, moduleInstanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*workpaper.FreezeSnapshot), args.Error(1)
}

func (m *MockSnapshotRepository) Save(ctx context.Context, snapshot *workpaper.FreezeSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

// MockFreezeUnit is a mock implementation of FreezeUnit
type MockFreezeUnit struct {
	mock.Mock
}

func (m *MockFreezeUnit) SaveFreeze(ctx context.Context, snapshots []*workpaper.FreezeSnapshot, job *workpaper.WorkpaperJob, modules []*workpaper.ModuleInstance) error {
	args := m.Called(ctx, snapshots, job, modules)
	return args.Error(0)
}

func (m *MockFreezeUnit) SaveReopen(ctx context.Context, job *workpaper.WorkpaperJob, modules []*workpaper.ModuleInstance) error {
	args := m.Called(ctx, job, modules)
	return args.Error(0)
}

// MockLockManager is a mock implementation of LockManager
type MockLockManager struct {
	mock.Mock
}

func (m *MockLockManager) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockLockManager) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
