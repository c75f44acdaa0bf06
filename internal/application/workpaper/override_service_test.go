package workpaper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

func newOverrideService() (*OverrideService, *MockOverrideRepository, *MockFieldOverrideRepository, *MockTransactionRepository, *MockJobRepository, *MockModuleRepository) {
	overrideRepo := new(MockOverrideRepository)
	fieldRepo := new(MockFieldOverrideRepository)
	txRepo := new(MockTransactionRepository)
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	locks := new(MockLockManager)
	locks.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Maybe()
	locks.On("Release", mock.Anything, mock.Anything).Return(nil).Maybe()
	service := NewOverrideService(overrideRepo, fieldRepo, txRepo, jobRepo, moduleRepo, locks)
	return service, overrideRepo, fieldRepo, txRepo, jobRepo, moduleRepo
}

func fuelTransaction(t *testing.T, clientID uuid.UUID) *workpaper.Transaction {
	t.Helper()
	amount, err := valueobject.NewMoneyAUDFromString("110.00")
	require.NoError(t, err)
	gst, err := valueobject.NewMoneyAUDFromString("10.00")
	require.NoError(t, err)
	tx, err := workpaper.NewTransaction(clientID, time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		"BP Connect", amount, gst, workpaper.CategoryVehicleFuel, workpaper.TransactionSourceMyFDC)
	require.NoError(t, err)
	return tx
}

func TestUpsertTransactionOverride_CreatesRow(t *testing.T) {
	ctx := context.Background()
	service, overrideRepo, _, txRepo, jobRepo, _ := newOverrideService()

	job := testJob(t, uuid.New())
	tx := fuelTransaction(t, job.ClientID)
	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)
	txRepo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	overrideRepo.On("FindByTransactionAndJob", ctx, tx.ID, job.ID).Return(nil, shared.ErrNotFound)
	overrideRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.TransactionOverride")).Return(nil)

	pct := decimal.NewFromInt(80)
	resp, err := service.UpsertTransactionOverride(ctx, tx.ID, job.ID, UpsertOverrideRequest{
		BusinessPct: &pct,
		Reason:      "20% private use per logbook",
	}, testActor())

	require.NoError(t, err)
	assert.Equal(t, tx.ID, resp.TransactionID)
	assert.Equal(t, job.ID, resp.JobID)
	require.NotNil(t, resp.BusinessPct)
	assert.True(t, resp.BusinessPct.Equal(pct))
	assert.Equal(t, "20% private use per logbook", resp.Reason)
	overrideRepo.AssertNumberOfCalls(t, "Save", 1)
}

func TestUpsertTransactionOverride_SecondUpsertUpdatesInPlace(t *testing.T) {
	ctx := context.Background()
	service, overrideRepo, _, txRepo, jobRepo, _ := newOverrideService()

	job := testJob(t, uuid.New())
	tx := fuelTransaction(t, job.ClientID)
	pct := decimal.NewFromInt(80)
	existing, err := workpaper.NewTransactionOverride(tx.ID, job.ID,
		workpaper.OverridePatch{BusinessPct: &pct, Reason: "initial estimate"}, testActor())
	require.NoError(t, err)

	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)
	txRepo.On("FindByID", ctx, tx.ID).Return(tx, nil)
	overrideRepo.On("FindByTransactionAndJob", ctx, tx.ID, job.ID).Return(existing, nil)
	overrideRepo.On("Save", ctx, existing).Return(nil)

	newPct := decimal.NewFromInt(60)
	resp, err := service.UpsertTransactionOverride(ctx, tx.ID, job.ID, UpsertOverrideRequest{
		BusinessPct: &newPct,
		Reason:      "corrected after logbook review",
	}, testActor())

	require.NoError(t, err)
	assert.Equal(t, existing.ID, resp.ID)
	require.NotNil(t, resp.BusinessPct)
	assert.True(t, resp.BusinessPct.Equal(newPct))
	assert.Equal(t, "corrected after logbook review", resp.Reason)
}

func TestUpsertTransactionOverride_FrozenJobRejectedBeforeWrite(t *testing.T) {
	ctx := context.Background()
	service, overrideRepo, _, _, jobRepo, _ := newOverrideService()

	job := frozenJob(t, uuid.New())
	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)

	pct := decimal.NewFromInt(50)
	_, err := service.UpsertTransactionOverride(ctx, uuid.New(), job.ID, UpsertOverrideRequest{
		BusinessPct: &pct,
		Reason:      "late correction",
	}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	overrideRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestDeleteTransactionOverride_RestoresOriginalValues(t *testing.T) {
	ctx := context.Background()
	service, overrideRepo, _, _, jobRepo, _ := newOverrideService()

	job := testJob(t, uuid.New())
	tx := fuelTransaction(t, job.ClientID)
	excluded := true
	existing, err := workpaper.NewTransactionOverride(tx.ID, job.ID,
		workpaper.OverridePatch{Excluded: &excluded, Reason: "personal trip"}, testActor())
	require.NoError(t, err)

	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)
	overrideRepo.On("FindByTransactionAndJob", ctx, tx.ID, job.ID).Return(existing, nil)
	overrideRepo.On("Delete", ctx, existing.ID).Return(nil)

	err = service.DeleteTransactionOverride(ctx, tx.ID, job.ID, testActor())

	require.NoError(t, err)
	overrideRepo.AssertCalled(t, "Delete", ctx, existing.ID)
}

func TestUpsertFieldOverride_CreatesThenUpdates(t *testing.T) {
	ctx := context.Background()
	service, _, fieldRepo, _, _, moduleRepo := newOverrideService()

	module := testModule(t, uuid.New(), workpaper.ModuleTypeMotorVehicle)
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)
	fieldRepo.On("FindByModuleAndKey", ctx, module.ID, "business_pct").Return(nil, shared.ErrNotFound)
	fieldRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.OverrideRecord")).Return(nil)

	resp, err := service.UpsertFieldOverride(ctx, module.ID, UpsertFieldOverrideRequest{
		FieldKey: "business_pct",
		Value:    "72.5",
		Reason:   "client confirmed logbook percentage",
	}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "business_pct", resp.FieldKey)
	assert.Equal(t, "72.5", resp.Value)
}

func TestUpsertTransactionOverride_LockHeldByFreezeRejected(t *testing.T) {
	ctx := context.Background()
	overrideRepo := new(MockOverrideRepository)
	jobRepo := new(MockJobRepository)
	locks := new(MockLockManager)
	service := NewOverrideService(overrideRepo, new(MockFieldOverrideRepository),
		new(MockTransactionRepository), jobRepo, new(MockModuleRepository), locks)

	jobID := uuid.New()
	locks.On("Acquire", ctx, "workpaper:freeze:job:"+jobID.String(), freezeLockTTL).
		Return(false, nil)

	pct := decimal.NewFromInt(50)
	_, err := service.UpsertTransactionOverride(ctx, uuid.New(), jobID, UpsertOverrideRequest{
		BusinessPct: &pct,
		Reason:      "late correction",
	}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	jobRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	overrideRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	locks.AssertNotCalled(t, "Release", mock.Anything, mock.Anything)
}

func TestUpsertFieldOverride_LockHeldByFreezeRejected(t *testing.T) {
	ctx := context.Background()
	fieldRepo := new(MockFieldOverrideRepository)
	locks := new(MockLockManager)
	service := NewOverrideService(new(MockOverrideRepository), fieldRepo,
		new(MockTransactionRepository), new(MockJobRepository), new(MockModuleRepository), locks)

	moduleID := uuid.New()
	locks.On("Acquire", ctx, "workpaper:freeze:module:"+moduleID.String(), freezeLockTTL).
		Return(false, nil)

	_, err := service.UpsertFieldOverride(ctx, moduleID, UpsertFieldOverrideRequest{
		FieldKey: "business_pct",
		Value:    "90",
		Reason:   "tweak",
	}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	fieldRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpsertFieldOverride_MethodMustComeFromCatalog(t *testing.T) {
	ctx := context.Background()
	service, _, fieldRepo, _, _, moduleRepo := newOverrideService()

	module := testModule(t, uuid.New(), workpaper.ModuleTypeMotorVehicle)
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)

	_, err := service.UpsertFieldOverride(ctx, module.ID, UpsertFieldOverrideRequest{
		FieldKey: "method",
		Value:    "fixed_rate", // home office method, not a vehicle one
		Reason:   "wrong catalog",
	}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrValidationFailed))
	fieldRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpsertFieldOverride_CatalogMethodAccepted(t *testing.T) {
	ctx := context.Background()
	service, _, fieldRepo, _, _, moduleRepo := newOverrideService()

	module := testModule(t, uuid.New(), workpaper.ModuleTypeMotorVehicle)
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)
	fieldRepo.On("FindByModuleAndKey", ctx, module.ID, "method").Return(nil, shared.ErrNotFound)
	fieldRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.OverrideRecord")).Return(nil)

	resp, err := service.UpsertFieldOverride(ctx, module.ID, UpsertFieldOverrideRequest{
		FieldKey: "method",
		Value:    "logbook",
		Reason:   "client kept a valid logbook",
	}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "logbook", resp.Value)
}

func TestUpsertFieldOverride_FrozenModuleRejected(t *testing.T) {
	ctx := context.Background()
	service, _, fieldRepo, _, _, moduleRepo := newOverrideService()

	module := testModule(t, uuid.New(), workpaper.ModuleTypeMotorVehicle)
	require.NoError(t, module.Freeze(testActor(), uuid.New(), "final review done"))
	module.ClearDomainEvents()
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)

	_, err := service.UpsertFieldOverride(ctx, module.ID, UpsertFieldOverrideRequest{
		FieldKey: "business_pct",
		Value:    "90",
		Reason:   "tweak",
	}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	fieldRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
