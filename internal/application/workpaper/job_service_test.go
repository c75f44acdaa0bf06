package workpaper

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

func testActor() shared.Actor {
	return shared.Actor{ID: uuid.New(), Email: "admin@example.com", Role: "admin"}
}

func testJob(t *testing.T, clientID uuid.UUID) *workpaper.WorkpaperJob {
	t.Helper()
	job, err := workpaper.NewWorkpaperJob(clientID, "2024-25", "", testActor())
	require.NoError(t, err)
	job.ClearDomainEvents()
	return job
}

func testModule(t *testing.T, jobID uuid.UUID, moduleType workpaper.ModuleType) *workpaper.ModuleInstance {
	t.Helper()
	m, err := workpaper.NewModuleInstance(jobID, moduleType, "Vehicle 1", workpaper.ModuleConfig{}, testActor())
	require.NoError(t, err)
	m.ClearDomainEvents()
	return m
}

func frozenJob(t *testing.T, clientID uuid.UUID) *workpaper.WorkpaperJob {
	t.Helper()
	job := testJob(t, clientID)
	require.NoError(t, job.Freeze(testActor(), uuid.New(), "locked for lodgment"))
	job.ClearDomainEvents()
	return job
}

func TestCreateJob_AutoCreatesStandardModules(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	clientID := uuid.New()
	jobRepo.On("FindByClientAndYear", ctx, clientID, "2024-25").Return(nil, shared.ErrNotFound)
	jobRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.WorkpaperJob")).Return(nil)
	moduleRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.ModuleInstance")).Return(nil)

	resp, err := service.CreateJob(ctx, CreateJobRequest{ClientID: clientID, Year: "2024-25"}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "2024-25", resp.Year)
	assert.Equal(t, "not_started", resp.Status)
	moduleRepo.AssertNumberOfCalls(t, "Save", 8)
}

func TestCreateJob_DuplicateClientYearRejected(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	clientID := uuid.New()
	jobRepo.On("FindByClientAndYear", ctx, clientID, "2024-25").Return(testJob(t, clientID), nil)

	_, err := service.CreateJob(ctx, CreateJobRequest{ClientID: clientID, Year: "2024-25"}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrAlreadyExists))
	jobRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateJob_ModuleCreationOptOut(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	clientID := uuid.New()
	jobRepo.On("FindByClientAndYear", ctx, clientID, "2024-25").Return(nil, shared.ErrNotFound)
	jobRepo.On("Save", ctx, mock.AnythingOfType("*workpaper.WorkpaperJob")).Return(nil)

	auto := false
	_, err := service.CreateJob(ctx, CreateJobRequest{ClientID: clientID, Year: "2024-25", AutoCreateModules: &auto}, testActor())

	require.NoError(t, err)
	moduleRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdateModuleConfig_FrozenJobRejected(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	job := frozenJob(t, uuid.New())
	module := testModule(t, job.ID, workpaper.ModuleTypeMotorVehicle)
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)
	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)

	km := decimal.NewFromInt(5000)
	_, err := service.UpdateModuleConfig(ctx, module.ID,
		UpdateModuleConfigRequest{Config: workpaper.ModuleConfig{BusinessKM: &km}}, testActor())

	require.Error(t, err)
	assert.True(t, errors.Is(err, shared.ErrInvalidState))
	moduleRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateModuleConfig_MergesAndDerivesJobStatus(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	job := testJob(t, uuid.New())
	module := testModule(t, job.ID, workpaper.ModuleTypeMotorVehicle)
	moduleRepo.On("FindByID", ctx, module.ID).Return(module, nil)
	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)
	moduleRepo.On("SaveWithLock", ctx, module, mock.AnythingOfType("int")).Return(nil)
	moduleRepo.On("FindByJob", ctx, job.ID).Return([]*workpaper.ModuleInstance{module}, nil)
	jobRepo.On("SaveWithLock", ctx, job, mock.AnythingOfType("int")).Return(nil)

	km := decimal.NewFromInt(5000)
	resp, err := service.UpdateModuleConfig(ctx, module.ID,
		UpdateModuleConfigRequest{Config: workpaper.ModuleConfig{BusinessKM: &km}}, testActor())

	require.NoError(t, err)
	assert.Equal(t, "in_progress", resp.Status)
	require.NotNil(t, resp.Config.BusinessKM)
	assert.True(t, resp.Config.BusinessKM.Equal(km))
	// the first config write drags the derived job status along
	assert.Equal(t, workpaper.JobStatusInProgress, job.Status)
}

func TestSetJobStatus_FrozenIsNotAssignable(t *testing.T) {
	ctx := context.Background()
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	service := NewJobService(jobRepo, moduleRepo)

	job := testJob(t, uuid.New())
	jobRepo.On("FindByID", ctx, job.ID).Return(job, nil)

	_, err := service.SetJobStatus(ctx, job.ID, "frozen")

	require.Error(t, err)
	jobRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything, mock.Anything)
}
