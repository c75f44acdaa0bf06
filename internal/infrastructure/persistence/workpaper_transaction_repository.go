package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
	"github.com/fdccore/backend/internal/infrastructure/persistence/models"
)

// GormTransactionRepository implements TransactionRepository using GORM.
// There is no update path: source transactions never change after import.
type GormTransactionRepository struct {
	db *gorm.DB
}

// NewGormTransactionRepository creates a new GormTransactionRepository
func NewGormTransactionRepository(db *gorm.DB) *GormTransactionRepository {
	return &GormTransactionRepository{db: db}
}

// FindByID finds a transaction by its ID
func (r *GormTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*workpaper.Transaction, error) {
	var model models.TransactionModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClientAndPeriod finds a client's transactions inside a date range
func (r *GormTransactionRepository) FindByClientAndPeriod(ctx context.Context, clientID uuid.UUID, from, to time.Time) ([]*workpaper.Transaction, error) {
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND date >= ? AND date <= ?", clientID, from, to).
		Order("date ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// FindByClientAndCategories narrows a period query to a set of categories
func (r *GormTransactionRepository) FindByClientAndCategories(ctx context.Context, clientID uuid.UUID, from, to time.Time, categories []workpaper.TransactionCategory) ([]*workpaper.Transaction, error) {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = c.String()
	}
	var txModels []models.TransactionModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND date >= ? AND date <= ? AND category IN ?", clientID, from, to, names).
		Order("date ASC").
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransactions(txModels), nil
}

// Save inserts a transaction
func (r *GormTransactionRepository) Save(ctx context.Context, tx *workpaper.Transaction) error {
	model := models.TransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Create(model).Error
}

// Delete removes an imported transaction
func (r *GormTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TransactionModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainTransactions(txModels []models.TransactionModel) []*workpaper.Transaction {
	txs := make([]*workpaper.Transaction, len(txModels))
	for i := range txModels {
		txs[i] = txModels[i].ToDomain()
	}
	return txs
}
