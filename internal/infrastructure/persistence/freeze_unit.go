package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/fdccore/backend/internal/infrastructure/persistence/models"
)

// GormFreezeUnit implements FreezeUnit using a single GORM transaction.
// Snapshot rows are inserted before any status update so a frozen module
// can never exist without its snapshot, and a failed freeze rolls back
// cleanly to the pre-freeze state.
type GormFreezeUnit struct {
	db *gorm.DB
}

// NewGormFreezeUnit creates a new GormFreezeUnit
func NewGormFreezeUnit(db *gorm.DB) *GormFreezeUnit {
	return &GormFreezeUnit{db: db}
}

// SaveFreeze persists snapshots and the frozen entities atomically
func (u *GormFreezeUnit) SaveFreeze(ctx context.Context, snapshots []*workpaper.FreezeSnapshot,
	job *workpaper.WorkpaperJob, modules []*workpaper.ModuleInstance) error {

	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, snapshot := range snapshots {
			if err := tx.Create(models.FreezeSnapshotModelFromDomain(snapshot)).Error; err != nil {
				return err
			}
		}
		for _, module := range modules {
			if err := saveModuleLocked(tx, module); err != nil {
				return err
			}
		}
		if job != nil {
			if err := saveJobLocked(tx, job); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveReopen persists the thawed entities atomically
func (u *GormFreezeUnit) SaveReopen(ctx context.Context, job *workpaper.WorkpaperJob, modules []*workpaper.ModuleInstance) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, module := range modules {
			if err := saveModuleLocked(tx, module); err != nil {
				return err
			}
		}
		if job != nil {
			if err := saveJobLocked(tx, job); err != nil {
				return err
			}
		}
		return nil
	})
}

func saveModuleLocked(tx *gorm.DB, module *workpaper.ModuleInstance) error {
	expectedVersion := module.GetVersion()
	module.Version = expectedVersion + 1
	model := models.ModuleInstanceModelFromDomain(module)
	result := tx.Model(&models.ModuleInstanceModel{}).
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

func saveJobLocked(tx *gorm.DB, job *workpaper.WorkpaperJob) error {
	expectedVersion := job.GetVersion()
	job.Version = expectedVersion + 1
	model := models.WorkpaperJobModelFromDomain(job)
	result := tx.Model(&models.WorkpaperJobModel{}).
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
