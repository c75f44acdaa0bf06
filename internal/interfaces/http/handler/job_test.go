package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	workpaperapp "github.com/fdccore/backend/internal/application/workpaper"
	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/fdccore/backend/internal/interfaces/http/dto"
	"github.com/fdccore/backend/internal/interfaces/http/middleware"
)

// MockJobRepository implements workpaper.JobRepository for testing
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

// MockModuleRepository implements workpaper.ModuleRepository for testing
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

func newJobHandlerForTest() (*JobHandler, *MockJobRepository, *MockModuleRepository) {
	jobRepo := new(MockJobRepository)
	moduleRepo := new(MockModuleRepository)
	jobService := workpaperapp.NewJobService(jobRepo, moduleRepo)
	return &JobHandler{jobService: jobService}, jobRepo, moduleRepo
}

func testContext(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.JWTActorKey, shared.Actor{ID: uuid.New(), Email: "staff@practice.example", Role: "admin"})
	return w, c
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJobHandler_Create_Success(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()
	clientID := uuid.New()
	autoCreate := false

	jobRepo.On("FindByClientAndYear", mock.Anything, clientID, "2024-25").Return(nil, shared.ErrNotFound)
	jobRepo.On("Save", mock.Anything, mock.AnythingOfType("*workpaper.WorkpaperJob")).Return(nil)

	w, c := testContext(t, http.MethodPost, "/api/v1/jobs", workpaperapp.CreateJobRequest{
		ClientID:          clientID,
		Year:              "2024-25",
		AutoCreateModules: &autoCreate,
	})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]any)
	assert.Equal(t, clientID.String(), data["client_id"])
	assert.Equal(t, "2024-25", data["year"])
	jobRepo.AssertExpectations(t)
}

func TestJobHandler_Create_DuplicateYear(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()
	clientID := uuid.New()
	autoCreate := false

	existing, err := workpaper.NewWorkpaperJob(clientID, "2024-25", "", shared.SystemActor)
	require.NoError(t, err)
	jobRepo.On("FindByClientAndYear", mock.Anything, clientID, "2024-25").Return(existing, nil)

	w, c := testContext(t, http.MethodPost, "/api/v1/jobs", workpaperapp.CreateJobRequest{
		ClientID:          clientID,
		Year:              "2024-25",
		AutoCreateModules: &autoCreate,
	})

	h.Create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeAlreadyExists, resp.Error.Code)
	jobRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestJobHandler_Create_InvalidYearLabel(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()

	w, c := testContext(t, http.MethodPost, "/api/v1/jobs", map[string]any{
		"client_id": uuid.New().String(),
		"year":      "2024-26",
	})

	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	jobRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestJobHandler_GetByID_NotFound(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()
	jobID := uuid.New()

	jobRepo.On("FindByID", mock.Anything, jobID).Return(nil, shared.ErrNotFound)

	w, c := testContext(t, http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: jobID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
}

func TestJobHandler_GetByID_InvalidID(t *testing.T) {
	h, _, _ := newJobHandlerForTest()

	w, c := testContext(t, http.MethodGet, "/api/v1/jobs/not-a-uuid", nil)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestJobHandler_SetStatus_FrozenNotSettable(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()
	clientID := uuid.New()

	job, err := workpaper.NewWorkpaperJob(clientID, "2024-25", "", shared.SystemActor)
	require.NoError(t, err)
	jobRepo.On("FindByID", mock.Anything, job.ID).Return(job, nil)

	w, c := testContext(t, http.MethodPut, "/api/v1/jobs/"+job.ID.String()+"/status", SetJobStatusRequest{
		Status: "frozen",
	})
	c.Params = gin.Params{{Key: "id", Value: job.ID.String()}}

	h.SetStatus(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestJobHandler_ListByClient(t *testing.T) {
	h, jobRepo, _ := newJobHandlerForTest()
	clientID := uuid.New()

	job, err := workpaper.NewWorkpaperJob(clientID, "2024-25", "", shared.SystemActor)
	require.NoError(t, err)
	jobRepo.On("FindByClient", mock.Anything, clientID).Return([]*workpaper.WorkpaperJob{job}, nil)

	w, c := testContext(t, http.MethodGet, "/api/v1/clients/"+clientID.String()+"/jobs", nil)
	c.Params = gin.Params{{Key: "client_id", Value: clientID.String()}}

	h.ListByClient(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	jobs := resp.Data.([]any)
	assert.Len(t, jobs, 1)
}
