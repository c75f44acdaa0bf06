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

// GormTaskRepository implements TaskRepository using GORM
type GormTaskRepository struct {
	db *gorm.DB
}

// NewGormTaskRepository creates a new GormTaskRepository
func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// FindByJobAndType finds the single task of a type under a job
func (r *GormTaskRepository) FindByJobAndType(ctx context.Context, jobID uuid.UUID, taskType workpaper.TaskType) (*workpaper.Task, error) {
	var model models.TaskModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND task_type = ?", jobID, taskType.String()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindOpenByClient finds a client's tasks that still need attention
func (r *GormTaskRepository) FindOpenByClient(ctx context.Context, clientID uuid.UUID) ([]*workpaper.Task, error) {
	var taskModels []models.TaskModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND status <> ?", clientID, workpaper.TaskStatusCompleted.String()).
		Order("created_at ASC").
		Find(&taskModels).Error; err != nil {
		return nil, err
	}
	tasks := make([]*workpaper.Task, len(taskModels))
	for i := range taskModels {
		tasks[i] = taskModels[i].ToDomain()
	}
	return tasks, nil
}

// Save upserts a task under its unique (job_id, task_type) index
func (r *GormTaskRepository) Save(ctx context.Context, task *workpaper.Task) error {
	model := models.TaskModelFromDomain(task)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "job_id"}, {Name: "task_type"}},
			UpdateAll: true,
		}).
		Create(model).Error
}
