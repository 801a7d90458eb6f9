package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type inMemoryStore struct {
	mu           sync.RWMutex
	wallets      map[string]Wallet      // keyed by wallet ID
	byOwner      map[string]string      // owner ID -> wallet ID
	byAccount    map[string]string      // account number -> wallet ID
	transactions map[string]Transaction // keyed by reference
}

// NewInMemory creates a concurrency-safe in-memory store useful for unit
// tests and running without a database.
func NewInMemory() Store {
	return &inMemoryStore{
		wallets:      make(map[string]Wallet),
		byOwner:      make(map[string]string),
		byAccount:    make(map[string]string),
		transactions: make(map[string]Transaction),
	}
}

func (s *inMemoryStore) CreateWallet(_ context.Context, w Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byAccount[w.AccountNumber]; exists {
		return ErrDuplicateAccountNumber
	}
	if _, exists := s.byOwner[w.OwnerID]; exists {
		return ErrDuplicateAccountNumber
	}
	s.wallets[w.ID] = w
	s.byOwner[w.OwnerID] = w.ID
	s.byAccount[w.AccountNumber] = w.ID
	return nil
}

func (s *inMemoryStore) WalletByOwner(_ context.Context, ownerID string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byOwner[ownerID]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return s.wallets[id], nil
}

func (s *inMemoryStore) WalletByAccountNumber(_ context.Context, accountNumber string) (Wallet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byAccount[accountNumber]
	if !ok {
		return Wallet{}, ErrWalletNotFound
	}
	return s.wallets[id], nil
}

func (s *inMemoryStore) AccountNumberExists(_ context.Context, accountNumber string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, exists := s.byAccount[accountNumber]
	return exists, nil
}

func (s *inMemoryStore) Transfer(_ context.Context, posting TransferPosting) (TransferResult, error) {
	if posting.Amount.Sign() <= 0 {
		return TransferResult{}, ErrNonPositiveAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	senderID, ok := s.byOwner[posting.SenderID]
	if !ok {
		return TransferResult{}, ErrWalletNotFound
	}
	receiverID, ok := s.byAccount[posting.DestinationNumber]
	if !ok {
		return TransferResult{}, ErrWalletNotFound
	}
	if senderID == receiverID {
		return TransferResult{}, ErrSelfTransfer
	}

	sender := s.wallets[senderID]
	receiver := s.wallets[receiverID]

	if err := sender.Withdraw(posting.Amount); err != nil {
		return TransferResult{}, err
	}
	if err := receiver.Deposit(posting.Amount); err != nil {
		return TransferResult{}, err
	}

	for _, ref := range []string{posting.DebitReference, posting.CreditReference} {
		if _, exists := s.transactions[ref]; exists {
			return TransferResult{}, ErrDuplicateReference
		}
	}

	now := time.Now().UTC()
	s.transactions[posting.DebitReference] = Transaction{
		ID:         uuid.NewString(),
		Reference:  posting.DebitReference,
		Type:       TypeTransfer,
		Amount:     posting.Amount,
		SenderID:   sender.OwnerID,
		ReceiverID: receiver.OwnerID,
		Verified:   true,
		CreatedAt:  now,
	}
	s.transactions[posting.CreditReference] = Transaction{
		ID:         uuid.NewString(),
		Reference:  posting.CreditReference,
		Type:       TypeDeposit,
		Amount:     posting.Amount,
		ReceiverID: receiver.OwnerID,
		Verified:   true,
		CreatedAt:  now,
	}

	s.wallets[senderID] = sender
	s.wallets[receiverID] = receiver

	return TransferResult{
		DebitReference:  posting.DebitReference,
		CreditReference: posting.CreditReference,
		ReceiverID:      receiver.OwnerID,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiver.Balance,
	}, nil
}

func (s *inMemoryStore) CreatePending(_ context.Context, rec Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.transactions[rec.Reference]; exists {
		return ErrDuplicateReference
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	rec.Verified = false
	s.transactions[rec.Reference] = rec
	return nil
}

func (s *inMemoryStore) SettleFunding(_ context.Context, reference string, amount decimal.Decimal) (Settlement, error) {
	if amount.Sign() <= 0 {
		return Settlement{}, ErrNonPositiveAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending, ok := s.transactions[reference]
	if !ok || pending.Verified {
		return Settlement{}, ErrTransactionNotFound
	}

	walletID, ok := s.byOwner[pending.SenderID]
	if !ok {
		return Settlement{}, ErrWalletNotFound
	}
	wallet := s.wallets[walletID]
	if err := wallet.Deposit(amount); err != nil {
		return Settlement{}, err
	}

	pending.Verified = true
	s.transactions[reference] = pending
	s.wallets[walletID] = wallet

	return Settlement{Transaction: pending, NewBalance: wallet.Balance}, nil
}

func (s *inMemoryStore) History(_ context.Context, userID string, limit int) ([]Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []Transaction
	for _, rec := range s.transactions {
		if rec.SenderID == userID || rec.ReceiverID == userID {
			history = append(history, rec)
		}
	}
	sort.Slice(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt)
	})
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history, nil
}
