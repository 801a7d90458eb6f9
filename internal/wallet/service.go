package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/eazipurse/eazipurse/internal/ledger"
)

const (
	// defaultHistoryLimit matches the dashboard's recent-activity view.
	defaultHistoryLimit = 4
	maxHistoryLimit     = 50
)

// Service provisions wallets and answers balance and history queries. All
// state lives in the ledger store; the service never caches balances.
type Service struct {
	store ledger.Store
}

// NewService builds a wallet service on top of the ledger store.
func NewService(store ledger.Store) *Service {
	return &Service{store: store}
}

// CreateInput captures data required to provision a wallet.
type CreateInput struct {
	OwnerID string
	Phone   string
}

// Create provisions a wallet with a unique account number, seeded from the
// owner's phone when possible. The in-process existence check is only a fast
// path; the store's uniqueness constraint decides, and duplicate collisions
// retry with a widened suffix.
func (s *Service) Create(ctx context.Context, input CreateInput) (ledger.Wallet, error) {
	if _, err := uuid.Parse(input.OwnerID); err != nil {
		return ledger.Wallet{}, fmt.Errorf("invalid owner id: %w", err)
	}

	for attempt := 0; attempt < maxAllocationAttempts; attempt++ {
		number := candidateNumber(input.Phone, attempt)

		taken, err := s.store.AccountNumberExists(ctx, number)
		if err != nil {
			return ledger.Wallet{}, err
		}
		if taken {
			continue
		}

		w := ledger.Wallet{
			ID:            uuid.NewString(),
			OwnerID:       input.OwnerID,
			AccountNumber: number,
			Balance:       decimal.Zero,
			CreatedAt:     time.Now().UTC(),
		}
		err = s.store.CreateWallet(ctx, w)
		if errors.Is(err, ledger.ErrDuplicateAccountNumber) {
			continue
		}
		if err != nil {
			return ledger.Wallet{}, err
		}
		return w, nil
	}

	return ledger.Wallet{}, fmt.Errorf("could not allocate a unique account number after %d attempts", maxAllocationAttempts)
}

// Ensure is the find-or-create hook invoked synchronously after user
// registration. The created flag tells the caller whether a new wallet was
// provisioned.
func (s *Service) Ensure(ctx context.Context, input CreateInput) (ledger.Wallet, bool, error) {
	existing, err := s.store.WalletByOwner(ctx, input.OwnerID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ledger.ErrWalletNotFound) {
		return ledger.Wallet{}, false, err
	}
	created, err := s.Create(ctx, input)
	if err != nil {
		return ledger.Wallet{}, false, err
	}
	return created, true, nil
}

// ByOwner returns the wallet owned by the given user.
func (s *Service) ByOwner(ctx context.Context, ownerID string) (ledger.Wallet, error) {
	return s.store.WalletByOwner(ctx, ownerID)
}

// ByAccountNumber resolves a wallet by its account number.
func (s *Service) ByAccountNumber(ctx context.Context, accountNumber string) (ledger.Wallet, error) {
	return s.store.WalletByAccountNumber(ctx, accountNumber)
}

// History returns the user's most recent transaction legs.
func (s *Service) History(ctx context.Context, ownerID string, limit int) ([]ledger.Transaction, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return s.store.History(ctx, ownerID, limit)
}
