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

// GormTransactionOverrideRepository implements OverrideRepository using GORM
type GormTransactionOverrideRepository struct {
	db *gorm.DB
}

// NewGormTransactionOverrideRepository creates a new GormTransactionOverrideRepository
func NewGormTransactionOverrideRepository(db *gorm.DB) *GormTransactionOverrideRepository {
	return &GormTransactionOverrideRepository{db: db}
}

// FindByID finds an override by its ID
func (r *GormTransactionOverrideRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.TransactionOverride, error) {
	var model models.TransactionOverrideModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTransactionAndJob finds the single override for a (transaction, job) pair
func (r *GormTransactionOverrideRepository) FindByTransactionAndJob(ctx context.Context, transactionID, jobID uuid.UUID) (*workpaper.TransactionOverride, error) {
	var model models.TransactionOverrideModel
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ? AND job_id = ?", transactionID, jobID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByJob finds all overrides recorded for a job
func (r *GormTransactionOverrideRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.TransactionOverride, error) {
	var overrideModels []models.TransactionOverrideModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Find(&overrideModels).Error; err != nil {
		return nil, err
	}
	overrides := make([]*workpaper.TransactionOverride, len(overrideModels))
	for i := range overrideModels {
		overrides[i] = overrideModels[i].ToDomain()
	}
	return overrides, nil
}

// Save upserts the override row. The unique (transaction_id, job_id) index
// backs the one-override-per-pair rule even under concurrent upserts.
func (r *GormTransactionOverrideRepository) Save(ctx context.Context, override *workpaper.TransactionOverride) error {
	model := models.TransactionOverrideModelFromDomain(override)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_id"}, {Name: "job_id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes an override; the original transaction values apply again
func (r *GormTransactionOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionOverrideModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
