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

// GormModuleInstanceRepository implements ModuleRepository using GORM
type GormModuleInstanceRepository struct {
	db *gorm.DB
}

// NewGormModuleInstanceRepository creates a new GormModuleInstanceRepository
func NewGormModuleInstanceRepository(db *gorm.DB) *GormModuleInstanceRepository {
	return &GormModuleInstanceRepository{db: db}
}

// FindByID finds a module instance by its ID
func (r *GormModuleInstanceRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.ModuleInstance, error) {
	var model models.ModuleInstanceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByJob finds all module instances under a job in creation order
func (r *GormModuleInstanceRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.ModuleInstance, error) {
	var moduleModels []models.ModuleInstanceModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&moduleModels).Error; err != nil {
		return nil, err
	}
	modules := make([]*workpaper.ModuleInstance, len(moduleModels))
	for i := range moduleModels {
		modules[i] = moduleModels[i].ToDomain()
	}
	return modules, nil
}

// Save inserts or updates a module instance
func (r *GormModuleInstanceRepository) Save(ctx context.Context, module *workpaper.ModuleInstance) error {
	model := models.ModuleInstanceModelFromDomain(module)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveWithLock updates a module only if the stored version matches
func (r *GormModuleInstanceRepository) SaveWithLock(ctx context.Context, module *workpaper.ModuleInstance, expectedVersion int) error {
	module.Version = expectedVersion + 1
	model := models.ModuleInstanceModelFromDomain(module)
	result := r.db.WithContext(ctx).
		Model(&models.ModuleInstanceModel{}).
		Where("id = ? AND version = ?", module.ID, expectedVersion).
		Select("*").Omit("id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		module.Version = expectedVersion
		return shared.ErrConcurrencyConflict
	}
	return nil
}
