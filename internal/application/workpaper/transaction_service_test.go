package workpaper

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

func newTransactionService() (*TransactionService, *MockTransactionRepository, *MockJobRepository) {
	transactionRepo := new(MockTransactionRepository)
	jobRepo := new(MockJobRepository)
	return NewTransactionService(transactionRepo, jobRepo), transactionRepo, jobRepo
}

func TestIngestTransaction(t *testing.T) {
	svc, transactionRepo, _ := newTransactionService()
	clientID := uuid.New()

	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*workpaper.Transaction")).Return(nil)

	resp, err := svc.IngestTransaction(context.Background(), IngestTransactionRequest{
		ClientID:    clientID,
		Date:        "2024-10-14",
		Description: "BP Fuel",
		Amount:      decimal.RequireFromString("110.00"),
		GSTAmount:   decimal.RequireFromString("10.00"),
		Category:    "vehicle_fuel",
		Source:      "myfdc",
	}, testActor())
	require.NoError(t, err)

	assert.Equal(t, clientID, resp.ClientID)
	assert.Equal(t, "vehicle_fuel", resp.Category)
	assert.Equal(t, "myfdc", resp.Source)
	assert.Equal(t, "110", resp.Amount.String())
	transactionRepo.AssertExpectations(t)
}

func TestIngestTransaction_DefaultsToManualSource(t *testing.T) {
	svc, transactionRepo, _ := newTransactionService()

	transactionRepo.On("Save", mock.Anything, mock.AnythingOfType("*workpaper.Transaction")).Return(nil)

	resp, err := svc.IngestTransaction(context.Background(), IngestTransactionRequest{
		ClientID: uuid.New(),
		Date:     "2025-01-03",
		Amount:   decimal.RequireFromString("42.00"),
		Category: "internet",
	}, testActor())
	require.NoError(t, err)

	assert.Equal(t, "manual", resp.Source)
}

func TestIngestTransaction_RejectsBadDate(t *testing.T) {
	svc, transactionRepo, _ := newTransactionService()

	_, err := svc.IngestTransaction(context.Background(), IngestTransactionRequest{
		ClientID: uuid.New(),
		Date:     "14/10/2024",
		Amount:   decimal.RequireFromString("10.00"),
		Category: "internet",
	}, testActor())

	assert.ErrorIs(t, err, shared.ErrValidationFailed)
	transactionRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestIngestTransaction_RejectsUnknownCategory(t *testing.T) {
	svc, _, _ := newTransactionService()

	_, err := svc.IngestTransaction(context.Background(), IngestTransactionRequest{
		ClientID: uuid.New(),
		Date:     "2024-10-14",
		Amount:   decimal.RequireFromString("10.00"),
		Category: "gadgets",
	}, testActor())

	assert.ErrorIs(t, err, shared.ErrValidationFailed)
}

func TestListClientTransactions(t *testing.T) {
	svc, transactionRepo, _ := newTransactionService()
	clientID := uuid.New()
	tx := fuelTransaction(t, clientID)

	transactionRepo.On("FindByClientAndPeriod", mock.Anything, clientID, mock.Anything, mock.Anything).
		Return([]*workpaper.Transaction{tx}, nil)

	responses, err := svc.ListClientTransactions(context.Background(), clientID, "2024-25")
	require.NoError(t, err)

	require.Len(t, responses, 1)
	assert.Equal(t, tx.ID, responses[0].ID)
}

func TestListClientTransactions_RejectsBadYear(t *testing.T) {
	svc, _, _ := newTransactionService()

	_, err := svc.ListClientTransactions(context.Background(), uuid.New(), "2024")
	assert.ErrorIs(t, err, shared.ErrValidationFailed)
}

func TestDeleteTransaction(t *testing.T) {
	svc, transactionRepo, jobRepo := newTransactionService()
	clientID := uuid.New()
	tx := fuelTransaction(t, clientID)

	transactionRepo.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
	jobRepo.On("FindByClient", mock.Anything, clientID).
		Return([]*workpaper.WorkpaperJob{testJob(t, clientID)}, nil)
	transactionRepo.On("Delete", mock.Anything, tx.ID).Return(nil)

	err := svc.DeleteTransaction(context.Background(), tx.ID, testActor(), DeleteTransactionRequest{
		Reason: "duplicate import",
	})
	require.NoError(t, err)
	transactionRepo.AssertExpectations(t)
}

func TestDeleteTransaction_BlockedByFrozenJob(t *testing.T) {
	svc, transactionRepo, jobRepo := newTransactionService()
	clientID := uuid.New()
	tx := fuelTransaction(t, clientID)

	transactionRepo.On("FindByID", mock.Anything, tx.ID).Return(tx, nil)
	jobRepo.On("FindByClient", mock.Anything, clientID).
		Return([]*workpaper.WorkpaperJob{frozenJob(t, clientID)}, nil)

	err := svc.DeleteTransaction(context.Background(), tx.ID, testActor(), DeleteTransactionRequest{
		Reason: "duplicate import",
	})

	assert.ErrorIs(t, err, shared.ErrInvalidState)
	transactionRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
