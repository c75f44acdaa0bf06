package workpaper

import (
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EffectiveTransaction is the merged view of a transaction under a job:
// overridden fields where an override supplies them, original fields
// everywhere else. Calculation engines consume only this view.
type EffectiveTransaction struct {
	TransactionID uuid.UUID           `json:"transaction_id"`
	JobID         uuid.UUID           `json:"job_id"`
	Date          string              `json:"date"`
	Description   string              `json:"description"`
	Amount        valueobject.Money   `json:"amount"`
	GSTAmount     valueobject.Money   `json:"gst_amount"`
	Category      TransactionCategory `json:"category"`
	BusinessPct   decimal.Decimal     `json:"business_pct"`
	Excluded      bool                `json:"excluded"`
	Overridden    bool                `json:"overridden"`
	Source        TransactionSource   `json:"source"`
}

// BusinessAmount is the effective amount scaled by the business percentage
func (e EffectiveTransaction) BusinessAmount() valueobject.Money {
	return e.Amount.ApplyPercent(e.BusinessPct)
}

// BusinessGST is the effective GST scaled by the business percentage
func (e EffectiveTransaction) BusinessGST() valueobject.Money {
	return e.GSTAmount.ApplyPercent(e.BusinessPct)
}

// ResolveEffective merges a transaction with its override for a job.
// Field by field, a non-nil override value wins and the original applies
// otherwise. With no override the business percentage defaults to 100.
// A nil override yields the transaction unchanged.
func ResolveEffective(tx *Transaction, override *TransactionOverride, jobID uuid.UUID) EffectiveTransaction {
	e := EffectiveTransaction{
		TransactionID: tx.ID,
		JobID:         jobID,
		Date:          tx.Date.Format("2006-01-02"),
		Description:   tx.Description,
		Amount:        tx.Amount,
		GSTAmount:     tx.GSTAmount,
		Category:      tx.Category,
		BusinessPct:   DefaultBusinessPct,
		Source:        tx.Source,
	}
	if override == nil {
		return e
	}

	e.Overridden = true
	e.Excluded = override.Excluded
	if override.OverriddenCategory != nil {
		e.Category = *override.OverriddenCategory
	}
	if override.OverriddenAmount != nil {
		e.Amount = *override.OverriddenAmount
	}
	if override.OverriddenGST != nil {
		e.GSTAmount = *override.OverriddenGST
	}
	if override.BusinessPct != nil {
		e.BusinessPct = *override.BusinessPct
	}
	return e
}

// ResolveEffectiveBatch resolves a slice of transactions against the
// overrides recorded for one job. Overrides are matched by transaction ID;
// an override whose transaction is absent is ignored.
func ResolveEffectiveBatch(txs []*Transaction, overrides []*TransactionOverride, jobID uuid.UUID) []EffectiveTransaction {
	byTx := make(map[uuid.UUID]*TransactionOverride, len(overrides))
	for _, o := range overrides {
		byTx[o.TransactionID] = o
	}
	out := make([]EffectiveTransaction, 0, len(txs))
	for _, tx := range txs {
		out = append(out, ResolveEffective(tx, byTx[tx.ID], jobID))
	}
	return out
}

// FilterIncluded drops effective transactions marked excluded
func FilterIncluded(effective []EffectiveTransaction) []EffectiveTransaction {
	out := make([]EffectiveTransaction, 0, len(effective))
	for _, e := range effective {
		if !e.Excluded {
			out = append(out, e)
		}
	}
	return out
}
