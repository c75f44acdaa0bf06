package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/fdccore/backend/internal/infrastructure/persistence/models"
)

// GormFreezeSnapshotRepository implements SnapshotRepository using GORM.
// Snapshot rows are insert-only.
type GormFreezeSnapshotRepository struct {
	db *gorm.DB
}

// NewGormFreezeSnapshotRepository creates a new GormFreezeSnapshotRepository
func NewGormFreezeSnapshotRepository(db *gorm.DB) *GormFreezeSnapshotRepository {
	return &GormFreezeSnapshotRepository{db: db}
}

// FindByID finds a snapshot by its ID
func (r *GormFreezeSnapshotRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.FreezeSnapshot, error) {
	var model models.FreezeSnapshotModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByModule finds a module's snapshots, newest first
func (r *GormFreezeSnapshotRepository) FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*workpaper.FreezeSnapshot, error) {
	var snapshotModels []models.FreezeSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("module_instance_id = ?", moduleInstanceID).
		Order("frozen_at DESC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	return toDomainSnapshots(snapshotModels), nil
}

// FindByJob finds every snapshot taken under a job, newest first
func (r *GormFreezeSnapshotRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.FreezeSnapshot, error) {
	var snapshotModels []models.FreezeSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("frozen_at DESC").
		Find(&snapshotModels).Error; err != nil {
		return nil, err
	}
	return toDomainSnapshots(snapshotModels), nil
}

// FindLatestByModule finds the most recent snapshot for a module
func (r *GormFreezeSnapshotRepository) FindLatestByModule(ctx context.Context, moduleInstanceID uuid.UUID) (*workpaper.FreezeSnapshot, error) {
	var model models.FreezeSnapshotModel
	if err := r.db.WithContext(ctx).
		Where("module_instance_id = ?", moduleInstanceID).
		Order("frozen_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save inserts a snapshot row
func (r *GormFreezeSnapshotRepository) Save(ctx context.Context, snapshot *workpaper.FreezeSnapshot) error {
	model := models.FreezeSnapshotModelFromDomain(snapshot)
	return r.db.WithContext(ctx).Create(model).Error
}

func toDomainSnapshots(snapshotModels []models.FreezeSnapshotModel) []*workpaper.FreezeSnapshot {
	snapshots := make([]*workpaper.FreezeSnapshot, len(snapshotModels))
	for i := range snapshotModels {
		snapshots[i] = snapshotModels[i].ToDomain()
	}
	return snapshots
}
