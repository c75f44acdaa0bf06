package workpaper

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/fdccore/backend/internal/domain/workpaper"
)

// TransactionService ingests and reads source transactions. Transactions
// are immutable once recorded; the only mutation is an administrative
// delete, which is audit-logged and blocked while a frozen job covers the
// transaction date.
type TransactionService struct {
	transactionRepo workpaper.TransactionRepository
	jobRepo         workpaper.JobRepository
	eventPublisher  shared.EventPublisher
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(
	transactionRepo workpaper.TransactionRepository,
	jobRepo workpaper.JobRepository,
) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		jobRepo:         jobRepo,
	}
}

// SetEventPublisher sets the event publisher for audit events
func (s *TransactionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// IngestTransactionRequest records a source transaction
type IngestTransactionRequest struct {
	ClientID    uuid.UUID       `json:"client_id" binding:"required"`
	Date        string          `json:"date" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	Category    string          `json:"category" binding:"required"`
	Source      string          `json:"source" binding:"omitempty,oneof=myfdc manual import"`
	ExternalRef string          `json:"external_ref"`
}

// DeleteTransactionRequest carries the justification for an administrative
// delete
type DeleteTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// TransactionResponse represents a source transaction in API responses
type TransactionResponse struct {
	ID          uuid.UUID       `json:"id"`
	ClientID    uuid.UUID       `json:"client_id"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	GSTAmount   decimal.Decimal `json:"gst_amount"`
	Category    string          `json:"category"`
	Source      string          `json:"source"`
	ExternalRef string          `json:"external_ref,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ToTransactionResponse converts a domain transaction to its API representation
func ToTransactionResponse(t *workpaper.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		ClientID:    t.ClientID,
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount.Amount(),
		GSTAmount:   t.GSTAmount.Amount(),
		Category:    t.Category.String(),
		Source:      t.Source.String(),
		ExternalRef: t.ExternalRef,
		CreatedAt:   t.CreatedAt,
	}
}

// IngestTransaction records an immutable source transaction
func (s *TransactionService) IngestTransaction(ctx context.Context, req IngestTransactionRequest, actor shared.Actor) (*TransactionResponse, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, shared.NewDomainError("VALIDATION_FAILED", "Date must be formatted as YYYY-MM-DD")
	}

	source := workpaper.TransactionSource(req.Source)
	if req.Source == "" {
		source = workpaper.TransactionSourceManual
	}

	tx, err := workpaper.NewTransaction(
		req.ClientID,
		date,
		req.Description,
		valueobject.NewMoneyAUD(req.Amount),
		valueobject.NewMoneyAUD(req.GSTAmount),
		workpaper.TransactionCategory(req.Category),
		source,
	)
	if err != nil {
		return nil, err
	}
	tx.ExternalRef = req.ExternalRef

	if err := s.transactionRepo.Save(ctx, tx); err != nil {
		return nil, err
	}

	s.publish(ctx, workpaper.NewTransactionIngestedEvent(tx, actor))

	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// GetTransaction fetches a single transaction
func (s *TransactionService) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// ListClientTransactions lists a client's transactions within a tax year
func (s *TransactionService) ListClientTransactions(ctx context.Context, clientID uuid.UUID, year string) ([]TransactionResponse, error) {
	start, end, err := workpaper.ParseTaxYear(year)
	if err != nil {
		return nil, err
	}

	transactions, err := s.transactionRepo.FindByClientAndPeriod(ctx, clientID, start, end)
	if err != nil {
		return nil, err
	}

	responses := make([]TransactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, ToTransactionResponse(tx))
	}
	return responses, nil
}

// DeleteTransaction removes a source transaction. The delete is refused
// while any frozen job's tax year covers the transaction date, since the
// frozen output was computed from it.
func (s *TransactionService) DeleteTransaction(ctx context.Context, transactionID uuid.UUID, actor shared.Actor, req DeleteTransactionRequest) error {
	tx, err := s.transactionRepo.FindByID(ctx, transactionID)
	if err != nil {
		return err
	}

	jobs, err := s.jobRepo.FindByClient(ctx, tx.ClientID)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		if !job.IsFrozen() {
			continue
		}
		start, end, err := workpaper.ParseTaxYear(job.Year)
		if err != nil {
			continue
		}
		if tx.InYear(start, end) {
			return shared.NewDomainError("INVALID_STATE",
				"Transaction falls inside frozen job "+job.Year+"; reopen the job before deleting")
		}
	}

	if err := s.transactionRepo.Delete(ctx, transactionID); err != nil {
		return err
	}

	s.publish(ctx, workpaper.NewTransactionDeletedEvent(tx, actor, req.Reason))
	return nil
}

func (s *TransactionService) publish(ctx context.Context, event shared.DomainEvent) {
	if s.eventPublisher == nil {
		return
	}
	// Audit failures must not fail the write itself
	_ = s.eventPublisher.Publish(ctx, event)
}
