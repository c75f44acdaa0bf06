package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockJobRepository creates a GormWorkpaperJobRepository with a mocked SQL connection
func newMockJobRepository(t *testing.T) (*GormWorkpaperJobRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormWorkpaperJobRepository(gormDB), mock, mockDB
}

func jobColumns() []string {
	return []string{"id", "created_at", "updated_at", "version", "client_id", "year", "status", "notes", "frozen_at"}
}

func TestNewGormWorkpaperJobRepository(t *testing.T) {
	t.Run("creates repository with valid DB", func(t *testing.T) {
		repo, _, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		assert.NotNil(t, repo)
		assert.NotNil(t, repo.db)
	})
}

func TestGormWorkpaperJobRepository_FindByID(t *testing.T) {
	t.Run("finds existing job", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()
		clientID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(jobColumns()).
			AddRow(jobID, now, now, 1, clientID, "2024-25", "not_started", "", nil)

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnRows(rows)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.NoError(t, err)
		assert.NotNil(t, job)
		assert.Equal(t, jobID, job.ID)
		assert.Equal(t, clientID, job.ClientID)
		assert.Equal(t, "2024-25", job.Year)
		assert.Equal(t, workpaper.JobStatusNotStarted, job.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing job", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(jobID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		job, err := repo.FindByID(context.Background(), jobID)

		assert.Error(t, err)
		assert.Nil(t, job)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWorkpaperJobRepository_FindByClientAndYear(t *testing.T) {
	t.Run("finds job for client and year", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		jobID := uuid.New()
		clientID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(jobColumns()).
			AddRow(jobID, now, now, 1, clientID, "2024-25", "in_progress", "carried forward", nil)

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE client_id = \$1 AND year = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(clientID, "2024-25", 1).
			WillReturnRows(rows)

		job, err := repo.FindByClientAndYear(context.Background(), clientID, "2024-25")

		assert.NoError(t, err)
		assert.NotNil(t, job)
		assert.Equal(t, workpaper.JobStatusInProgress, job.Status)
		assert.Equal(t, "carried forward", job.Notes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when no job exists for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE client_id = \$1 AND year = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(clientID, "2023-24", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		job, err := repo.FindByClientAndYear(context.Background(), clientID, "2023-24")

		assert.Error(t, err)
		assert.Nil(t, job)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWorkpaperJobRepository_FindByClient(t *testing.T) {
	t.Run("lists jobs newest year first", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(jobColumns()).
			AddRow(uuid.New(), now, now, 1, clientID, "2024-25", "not_started", "", nil).
			AddRow(uuid.New(), now, now, 3, clientID, "2023-24", "frozen", "", &now)

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE client_id = \$1 ORDER BY year DESC`).
			WithArgs(clientID).
			WillReturnRows(rows)

		jobs, err := repo.FindByClient(context.Background(), clientID)

		assert.NoError(t, err)
		require.Len(t, jobs, 2)
		assert.Equal(t, "2024-25", jobs[0].Year)
		assert.Equal(t, "2023-24", jobs[1].Year)
		assert.Equal(t, workpaper.JobStatusFrozen, jobs[1].Status)
		assert.NotNil(t, jobs[1].FrozenAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns empty slice for client with no jobs", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		clientID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "workpaper_jobs" WHERE client_id = \$1 ORDER BY year DESC`).
			WithArgs(clientID).
			WillReturnRows(sqlmock.NewRows(jobColumns()))

		jobs, err := repo.FindByClient(context.Background(), clientID)

		assert.NoError(t, err)
		assert.Empty(t, jobs)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormWorkpaperJobRepository_SaveWithLock(t *testing.T) {
	actor := shared.Actor{ID: uuid.New(), Email: "staff@practice.example", Role: "admin"}

	t.Run("bumps version when stored version matches", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		job, err := workpaper.NewWorkpaperJob(uuid.New(), "2024-25", "", actor)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "workpaper_jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.SaveWithLock(context.Background(), job, 1)

		assert.NoError(t, err)
		assert.Equal(t, 2, job.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns concurrency conflict when version is stale", func(t *testing.T) {
		repo, mock, mockDB := newMockJobRepository(t)
		defer mockDB.Close()

		job, err := workpaper.NewWorkpaperJob(uuid.New(), "2024-25", "", actor)
		require.NoError(t, err)

		mock.ExpectExec(`UPDATE "workpaper_jobs" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err = repo.SaveWithLock(context.Background(), job, 1)

		assert.Error(t, err)
		assert.Equal(t, shared.ErrConcurrencyConflict, err)
		assert.Equal(t, 1, job.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
