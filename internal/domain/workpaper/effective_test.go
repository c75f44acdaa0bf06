package workpaper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdccore/backend/internal/domain/shared"
	"github.com/fdccore/backend/internal/domain/shared/valueobject"
)

func testTransaction(t *testing.T, amount string) *Transaction {
	t.Helper()
	amt, err := valueobject.NewMoneyAUDFromString(amount)
	require.NoError(t, err)
	gst, err := valueobject.NewMoneyAUDFromString("10.00")
	require.NoError(t, err)
	tx, err := NewTransaction(uuid.New(), time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC),
		"BP Fuel", amt, gst, CategoryVehicleFuel, TransactionSourceMyFDC)
	require.NoError(t, err)
	return tx
}

func TestResolveEffective_NoOverride(t *testing.T) {
	tx := testTransaction(t, "110.00")
	jobID := uuid.New()

	e := ResolveEffective(tx, nil, jobID)

	assert.Equal(t, tx.ID, e.TransactionID)
	assert.Equal(t, jobID, e.JobID)
	assert.Equal(t, CategoryVehicleFuel, e.Category)
	assert.True(t, e.Amount.Equals(tx.Amount))
	assert.True(t, e.BusinessPct.Equal(decimal.NewFromInt(100)))
	assert.False(t, e.Overridden)
	assert.False(t, e.Excluded)
}

func TestResolveEffective_PartialOverride(t *testing.T) {
	tx := testTransaction(t, "110.00")
	jobID := uuid.New()
	cat := CategoryVehicleRepairs
	pct := decimal.NewFromInt(80)

	override, err := NewTransactionOverride(tx.ID, jobID, OverridePatch{
		Category:    &cat,
		BusinessPct: &pct,
		Reason:      "Receipt shows repairs, vehicle used partly for private trips",
	}, shared.Actor{ID: uuid.New(), Email: "admin@example.com"})
	require.NoError(t, err)

	e := ResolveEffective(tx, override, jobID)

	assert.Equal(t, CategoryVehicleRepairs, e.Category)
	// amount not overridden, original applies
	assert.True(t, e.Amount.Equals(tx.Amount))
	assert.True(t, e.BusinessPct.Equal(pct))
	assert.True(t, e.Overridden)

	assert.Equal(t, "88", e.BusinessAmount().Amount().StringFixed(0))
}

func TestResolveEffective_AmountOverrideWins(t *testing.T) {
	tx := testTransaction(t, "110.00")
	jobID := uuid.New()
	newAmt, err := valueobject.NewMoneyAUDFromString("90.00")
	require.NoError(t, err)

	override, err := NewTransactionOverride(tx.ID, jobID, OverridePatch{
		Amount: &newAmt,
		Reason: "Personal items on same receipt removed",
	}, shared.Actor{ID: uuid.New()})
	require.NoError(t, err)

	e := ResolveEffective(tx, override, jobID)
	assert.Equal(t, "90", e.Amount.Amount().StringFixed(0))
}

func TestResolveEffective_Excluded(t *testing.T) {
	tx := testTransaction(t, "110.00")
	jobID := uuid.New()
	excluded := true

	override, err := NewTransactionOverride(tx.ID, jobID, OverridePatch{
		Excluded: &excluded,
		Reason:   "Duplicate of bank import",
	}, shared.Actor{ID: uuid.New()})
	require.NoError(t, err)

	e := ResolveEffective(tx, override, jobID)
	assert.True(t, e.Excluded)

	filtered := FilterIncluded([]EffectiveTransaction{e})
	assert.Empty(t, filtered)
}

func TestResolveEffectiveBatch(t *testing.T) {
	jobID := uuid.New()
	tx1 := testTransaction(t, "50.00")
	tx2 := testTransaction(t, "70.00")

	pct := decimal.NewFromInt(50)
	override, err := NewTransactionOverride(tx2.ID, jobID, OverridePatch{
		BusinessPct: &pct,
		Reason:      "Shared family vehicle",
	}, shared.Actor{ID: uuid.New()})
	require.NoError(t, err)

	out := ResolveEffectiveBatch([]*Transaction{tx1, tx2}, []*TransactionOverride{override}, jobID)
	require.Len(t, out, 2)
	assert.False(t, out[0].Overridden)
	assert.True(t, out[1].Overridden)
	assert.Equal(t, "35", out[1].BusinessAmount().Amount().StringFixed(0))
}

func TestOverridePatch_Validate(t *testing.T) {
	tests := []struct {
		name    string
		patch   OverridePatch
		wantErr bool
	}{
		{"missing reason", OverridePatch{}, true},
		{"valid minimal", OverridePatch{Reason: "typo in amount"}, false},
		{"pct over 100", OverridePatch{Reason: "r", BusinessPct: decPtr("120")}, true},
		{"pct negative", OverridePatch{Reason: "r", BusinessPct: decPtr("-1")}, true},
		{"pct zero", OverridePatch{Reason: "r", BusinessPct: decPtr("0")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.patch.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransactionOverride_ApplyUpdatesFields(t *testing.T) {
	tx := testTransaction(t, "110.00")
	jobID := uuid.New()
	actor := shared.Actor{ID: uuid.New(), Email: "one@example.com"}

	o, err := NewTransactionOverride(tx.ID, jobID, OverridePatch{Reason: "first pass"}, actor)
	require.NoError(t, err)

	pct := decimal.NewFromInt(60)
	second := shared.Actor{ID: uuid.New(), Email: "two@example.com"}
	require.NoError(t, o.Apply(OverridePatch{BusinessPct: &pct, Reason: "client confirmed 60%"}, second))

	assert.Equal(t, "client confirmed 60%", o.Reason)
	assert.Equal(t, second.Email, o.ActorEmail)
	require.NotNil(t, o.BusinessPct)
	assert.True(t, o.BusinessPct.Equal(pct))
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
