package ledger

import (
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType classifies the direction of a fund movement leg.
type TransactionType string

const (
	// TypeDeposit marks funds entering a wallet, either from the payment
	// gateway or as the credit leg of a transfer.
	TypeDeposit TransactionType = "deposit"
	// TypeTransfer marks the debit leg of a wallet-to-wallet transfer.
	TypeTransfer TransactionType = "transfer"
	// TypeWithdrawal marks funds leaving the platform.
	TypeWithdrawal TransactionType = "withdrawal"
)

// Wallet holds a user's stored value. Balance is kept in major currency
// units (naira) and is mutated only through Deposit and Withdraw so the
// non-negativity invariant is enforced in one place.
type Wallet struct {
	ID            string
	OwnerID       string
	AccountNumber string
	Balance       decimal.Decimal
	CreatedAt     time.Time
}

// Deposit credits the wallet. The amount must be strictly positive.
func (w *Wallet) Deposit(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	w.Balance = w.Balance.Add(amount)
	return nil
}

// Withdraw debits the wallet. The amount must be strictly positive and may
// not exceed the current balance; on ErrInsufficientFunds the balance is
// left untouched.
func (w *Wallet) Withdraw(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return ErrNonPositiveAmount
	}
	if amount.GreaterThan(w.Balance) {
		return ErrInsufficientFunds
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}

// Transaction is an immutable record of a single fund movement leg. A
// wallet-to-wallet transfer produces two rows: a transfer-typed debit leg
// and a deposit-typed credit leg, each with its own reference.
type Transaction struct {
	ID         string
	Reference  string
	Type       TransactionType
	Amount     decimal.Decimal
	SenderID   string // empty for pure credit legs
	ReceiverID string // empty for gateway-pending deposits
	Verified   bool
	CreatedAt  time.Time
}

// NewReference produces a globally unique transaction reference in the
// ref_<hex> format the payment gateway correlates on.
func NewReference() string {
	id := uuid.New()
	return "ref_" + hex.EncodeToString(id[:])
}
