package workpaper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdccore/backend/internal/domain/shared"
)

func testJob(t *testing.T) *WorkpaperJob {
	t.Helper()
	job, err := NewWorkpaperJob(uuid.New(), "2024-25", "", shared.Actor{ID: uuid.New(), Email: "admin@example.com"})
	require.NoError(t, err)
	return job
}

func TestNewWorkpaperJob(t *testing.T) {
	job := testJob(t)
	assert.Equal(t, JobStatusNotStarted, job.Status)
	assert.Len(t, job.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeJobCreated, job.GetDomainEvents()[0].EventType())
}

func TestNewWorkpaperJob_BadYear(t *testing.T) {
	actor := shared.Actor{ID: uuid.New()}
	for _, year := range []string{"2024", "2024-26", "24-25", "2024/25", ""} {
		_, err := NewWorkpaperJob(uuid.New(), year, "", actor)
		assert.ErrorIs(t, err, shared.ErrValidationFailed, "year %q", year)
	}
}

func TestParseTaxYear(t *testing.T) {
	start, end, err := ParseTaxYear("2024-25")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC), end)
}

func TestParseTaxYear_CenturyRollover(t *testing.T) {
	start, end, err := ParseTaxYear("2099-00")
	require.NoError(t, err)
	assert.Equal(t, 2099, start.Year())
	assert.Equal(t, 2100, end.Year())
}

func TestJob_FreezeReopenRoundTrip(t *testing.T) {
	admin := shared.Actor{ID: uuid.New(), Email: "admin@example.com"}
	job := testJob(t)
	require.NoError(t, job.SetStatus(JobStatusInProgress))

	require.NoError(t, job.Freeze(admin, uuid.New(), "year finalized"))
	assert.Equal(t, JobStatusFrozen, job.Status)
	assert.NotNil(t, job.FrozenAt)

	// writes rejected while frozen
	assert.ErrorIs(t, job.UpdateNotes("x"), shared.ErrInvalidState)
	assert.ErrorIs(t, job.SetStatus(JobStatusInProgress), shared.ErrInvalidState)
	assert.ErrorIs(t, job.Freeze(admin, uuid.New(), ""), shared.ErrInvalidState)

	// reason too short
	assert.ErrorIs(t, job.Reopen(admin, "oops"), shared.ErrValidationFailed)
	assert.Equal(t, JobStatusFrozen, job.Status)

	require.NoError(t, job.Reopen(admin, "client found extra fuel receipts"))
	assert.Equal(t, JobStatusInProgress, job.Status)
	assert.Nil(t, job.FrozenAt)
}

func TestJob_ReopenRequiresFrozen(t *testing.T) {
	job := testJob(t)
	err := job.Reopen(shared.Actor{ID: uuid.New()}, "a perfectly valid reason")
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestJob_SetStatusCannotFreeze(t *testing.T) {
	job := testJob(t)
	err := job.SetStatus(JobStatusFrozen)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestDeriveJobStatus(t *testing.T) {
	mk := func(status JobStatus) ModuleInstance {
		return ModuleInstance{Status: status}
	}
	tests := []struct {
		name    string
		modules []ModuleInstance
		want    JobStatus
	}{
		{"no modules", nil, JobStatusNotStarted},
		{"all NA", []ModuleInstance{mk(JobStatusNA)}, JobStatusNotStarted},
		{"least complete wins", []ModuleInstance{mk(JobStatusCompleted), mk(JobStatusInProgress)}, JobStatusInProgress},
		{"NA ignored", []ModuleInstance{mk(JobStatusNA), mk(JobStatusReadyForReview)}, JobStatusReadyForReview},
		{"all completed", []ModuleInstance{mk(JobStatusCompleted), mk(JobStatusCompleted)}, JobStatusCompleted},
		{"not started drags down", []ModuleInstance{mk(JobStatusFrozen), mk(JobStatusNotStarted)}, JobStatusNotStarted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveJobStatus(tt.modules))
		})
	}
}

func TestJob_ApplyDerivedStatusSkipsFrozen(t *testing.T) {
	admin := shared.Actor{ID: uuid.New()}
	job := testJob(t)
	require.NoError(t, job.Freeze(admin, uuid.New(), ""))

	job.ApplyDerivedStatus([]ModuleInstance{{Status: JobStatusInProgress}})
	assert.Equal(t, JobStatusFrozen, job.Status)
}

func testModule(t *testing.T) *ModuleInstance {
	t.Helper()
	m, err := NewModuleInstance(uuid.New(), ModuleTypeMotorVehicle, "Vehicle 1",
		ModuleConfig{}, shared.Actor{ID: uuid.New()})
	require.NoError(t, err)
	return m
}

func TestModuleInstance_MergeConfig(t *testing.T) {
	m := testModule(t)
	actor := shared.Actor{ID: uuid.New()}

	method := string(MethodCentsPerKM)
	km := decimal.NewFromInt(4000)
	require.NoError(t, m.MergeConfig(ModuleConfig{Method: &method, BusinessKM: &km}, actor))
	assert.Equal(t, JobStatusInProgress, m.Status)

	// partial update keeps earlier keys
	total := decimal.NewFromInt(12000)
	require.NoError(t, m.MergeConfig(ModuleConfig{TotalKM: &total}, actor))
	require.NotNil(t, m.Config.Method)
	assert.Equal(t, string(MethodCentsPerKM), *m.Config.Method)
	require.NotNil(t, m.Config.BusinessKM)
	assert.True(t, m.Config.BusinessKM.Equal(km))
	require.NotNil(t, m.Config.TotalKM)
	assert.True(t, m.Config.TotalKM.Equal(total))
}

func TestModuleInstance_FrozenRejectsWrites(t *testing.T) {
	m := testModule(t)
	actor := shared.Actor{ID: uuid.New()}

	require.NoError(t, m.Freeze(actor, uuid.New(), "done"))
	assert.Equal(t, JobStatusFrozen, m.Status)

	assert.ErrorIs(t, m.MergeConfig(ModuleConfig{}, actor), shared.ErrInvalidState)
	assert.ErrorIs(t, m.RecordOutput(OutputSummary{}), shared.ErrInvalidState)
	assert.ErrorIs(t, m.Rename("Vehicle 2"), shared.ErrInvalidState)
	assert.ErrorIs(t, m.Freeze(actor, uuid.New(), ""), shared.ErrInvalidState)

	require.NoError(t, m.Reopen(actor, "needs a config correction"))
	assert.Equal(t, JobStatusInProgress, m.Status)
	require.NoError(t, m.MergeConfig(ModuleConfig{}, actor))
}

func TestOutputSummary_Accessors(t *testing.T) {
	o := OutputSummary{
		"deduction":  "1234.56",
		"gst_credit": 12.5,
		"net_income": decimal.NewFromInt(900),
	}
	assert.Equal(t, "1234.56", o.Deduction().StringFixed(2))
	assert.Equal(t, "12.50", o.GSTCredit().StringFixed(2))
	assert.Equal(t, "900.00", o.NetIncome().StringFixed(2))
	assert.True(t, OutputSummary(nil).Deduction().IsZero())
}
