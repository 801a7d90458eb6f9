package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazipurse/eazipurse/internal/ledger"
)

func TestCreateSeedsAccountNumberFromPhone(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateInput{OwnerID: uuid.NewString(), Phone: "08131234567"})
	require.NoError(t, err)
	assert.Equal(t, "8131234567", w.AccountNumber)
	assert.True(t, w.Balance.IsZero())
}

func TestCreateRejectsMalformedOwner(t *testing.T) {
	svc := NewService(ledger.NewInMemory())

	_, err := svc.Create(context.Background(), CreateInput{OwnerID: "not-a-uuid", Phone: "08131234567"})
	require.Error(t, err)
}

func TestEnsureIsFindOrCreate(t *testing.T) {
	svc := NewService(ledger.NewInMemory())
	ctx := context.Background()
	ownerID := uuid.NewString()

	first, created, err := svc.Ensure(ctx, CreateInput{OwnerID: ownerID, Phone: "08131234567"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Ensure(ctx, CreateInput{OwnerID: ownerID, Phone: "08131234567"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.AccountNumber, second.AccountNumber)
}

func TestHistoryDefaultsAndCapsLimit(t *testing.T) {
	store := ledger.NewInMemory()
	svc := NewService(store)
	ctx := context.Background()

	w, err := svc.Create(ctx, CreateInput{OwnerID: uuid.NewString(), Phone: "08131234567"})
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, store.CreatePending(ctx, ledger.Transaction{
			Reference: ledger.NewReference(),
			Type:      ledger.TypeDeposit,
			Amount:    decimal.NewFromInt(1_000),
			SenderID:  w.OwnerID,
		}))
	}

	recent, err := svc.History(ctx, w.OwnerID, 0)
	require.NoError(t, err)
	assert.Len(t, recent, defaultHistoryLimit)

	capped, err := svc.History(ctx, w.OwnerID, 500)
	require.NoError(t, err)
	assert.Len(t, capped, 8)
}
