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

// GormQueryRepository implements QueryRepository using GORM
type GormQueryRepository struct {
	db *gorm.DB
}

// NewGormQueryRepository creates a new GormQueryRepository
func NewGormQueryRepository(db *gorm.DB) *GormQueryRepository {
	return &GormQueryRepository{db: db}
}

// FindByID finds a query by its ID
func (r *GormQueryRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.Query, error) {
	var model models.QueryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByJob finds all queries on a job, newest first
func (r *GormQueryRepository) FindByJob(ctx context.Context, jobID uuid.UUID) ([]*workpaper.Query, error) {
	var queryModels []models.QueryModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at DESC").
		Find(&queryModels).Error; err != nil {
		return nil, err
	}
	return toDomainQueries(queryModels), nil
}

// FindByJobAndStatuses narrows a job's queries to a status set
func (r *GormQueryRepository) FindByJobAndStatuses(ctx context.Context, jobID uuid.UUID, statuses []workpaper.QueryStatus) ([]*workpaper.Query, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = s.String()
	}
	var queryModels []models.QueryModel
	if err := r.db.WithContext(ctx).
		Where("job_id = ? AND status IN ?", jobID, names).
		Order("created_at DESC").
		Find(&queryModels).Error; err != nil {
		return nil, err
	}
	return toDomainQueries(queryModels), nil
}

// Save inserts or updates a query
func (r *GormQueryRepository) Save(ctx context.Context, query *workpaper.Query) error {
	model := models.QueryModelFromDomain(query)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(model).Error
}

// SaveMessage appends a message to a query's thread
func (r *GormQueryRepository) SaveMessage(ctx context.Context, message *workpaper.QueryMessage) error {
	model := models.QueryMessageModelFromDomain(message)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindMessages returns a query's thread in send order
func (r *GormQueryRepository) FindMessages(ctx context.Context, queryID uuid.UUID) ([]*workpaper.QueryMessage, error) {
	var messageModels []models.QueryMessageModel
	if err := r.db.WithContext(ctx).
		Where("query_id = ?", queryID).
		Order("created_at ASC").
		Find(&messageModels).Error; err != nil {
		return nil, err
	}
	messages := make([]*workpaper.QueryMessage, len(messageModels))
	for i := range messageModels {
		messages[i] = messageModels[i].ToDomain()
	}
	return messages, nil
}

func toDomainQueries(queryModels []models.QueryModel) []*workpaper.Query {
	queries := make([]*workpaper.Query, len(queryModels))
	for i := range queryModels {
		queries[i] = queryModels[i].ToDomain()
	}
	return queries
}
