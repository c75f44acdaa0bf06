package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/fdccore/backend/internal/infrastructure/persistence/models"
)

// GormWorkpaperJobRepository implements JobRepository using GORM
type GormWorkpaperJobRepository struct {
	db *gorm.DB
}

// NewGormWorkpaperJobRepository creates a new GormWorkpaperJobRepository
func NewGormWorkpaperJobRepository(db *gorm.DB) *GormWorkpaperJobRepository {
	return &GormWorkpaperJobRepository{db: db}
}

// FindByID finds a workpaper job by its ID
func (r *GormWorkpaperJobRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.WorkpaperJob, error) {
	var model models.WorkpaperJobModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClientAndYear finds the job for a client and tax year
func (r *GormWorkpaperJobRepository) FindByClientAndYear(ctx context.Context, clientID uuid.UUID, year string) (*workpaper.WorkpaperJob, error) {
	var model models.WorkpaperJobModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND year = ?", clientID, year).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds all jobs for a client, newest year first
func (r *GormWorkpaperJobRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*workpaper.WorkpaperJob, error) {
	var jobModels []models.WorkpaperJobModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("year DESC").
		Find(&jobModels).Error; err != nil {
		return nil, err
	}
	jobs := make([]*workpaper.WorkpaperJob, len(jobModels))
	for i := range jobModels {
		jobs[i] = jobModels[i].ToDomain()
	}
	return jobs, nil
}

// Save inserts or updates a workpaper job
func (r *GormWorkpaperJobRepository) Save(ctx context.Context, job *workpaper.WorkpaperJob) error {
	model := models.WorkpaperJobModelFromDomain(job)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveWithLock updates a job only if the stored version matches
func (r *GormWorkpaperJobRepository) SaveWithLock(ctx context.Context, job *workpaper.WorkpaperJob, expectedVersion int) error {
	job.Version = expectedVersion + 1
	model := models.WorkpaperJobModelFromDomain(job)
	result := r.db.WithContext(ctx).
		Model(&models.WorkpaperJobModel{}).
		Where("id = ? AND version = ?", job.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		job.Version = expectedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}
