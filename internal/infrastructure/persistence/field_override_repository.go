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

// GormFieldOverrideRepository implements FieldOverrideRepository using GORM
type GormFieldOverrideRepository struct {
	db *gorm.DB
}

// NewGormFieldOverrideRepository creates a new GormFieldOverrideRepository
func NewGormFieldOverrideRepository(db *gorm.DB) *GormFieldOverrideRepository {
	return &GormFieldOverrideRepository{db: db}
}

// FindByModuleAndKey finds the single override for a (module, field_key) pair
func (r *GormFieldOverrideRepository) FindByModuleAndKey(ctx context.Context, moduleInstanceID uuid.UUID, fieldKey string) (*workpaper.OverrideRecord, error) {
	var model models.OverrideRecordModel
	if err := r.db.WithContext(ctx).
		Where("module_instance_id = ? AND field_key = ?", moduleInstanceID, fieldKey).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByModule finds all field overrides on a module
func (r *GormFieldOverrideRepository) FindByModule(ctx context.Context, moduleInstanceID uuid.UUID) ([]*workpaper.OverrideRecord, error) {
	var recordModels []models.OverrideRecordModel
	if err := r.db.WithContext(ctx).
		Where("module_instance_id = ?", moduleInstanceID).
		Order("field_key ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	records := make([]*workpaper.OverrideRecord, len(recordModels))
	for i := range recordModels {
		records[i] = recordModels[i].ToDomain()
	}
	return records, nil
}

// Save upserts the field override row under its unique
// (module_instance_id, field_key) index
func (r *GormFieldOverrideRepository) Save(ctx context.Context, record *workpaper.OverrideRecord) error {
	model := models.OverrideRecordModelFromDomain(record)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "module_instance_id"}, {Name: "field_key"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// Delete removes a field override
func (r *GormFieldOverrideRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.OverrideRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
