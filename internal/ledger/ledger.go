package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrInsufficientFunds occurs when a wallet lacks available balance to
	// cover a requested debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNonPositiveAmount indicates a zero or negative amount reached a
	// balance mutation; callers are expected to validate earlier.
	ErrNonPositiveAmount = errors.New("amount must be positive")

	// ErrWalletNotFound indicates the referenced wallet does not exist.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrSelfTransfer indicates sender and destination resolve to the same
	// wallet.
	ErrSelfTransfer = errors.New("cannot transfer to your own wallet")

	// ErrDuplicateAccountNumber indicates the chosen account number is
	// already taken. Wallet creation retries internally; this is never
	// surfaced to users.
	ErrDuplicateAccountNumber = errors.New("account number already exists")

	// ErrDuplicateReference indicates the transaction reference already
	// exists.
	ErrDuplicateReference = errors.New("transaction reference already exists")

	// ErrTransactionNotFound indicates no unverified transaction matches
	// the supplied reference. Settlement filters on verified=false, so a
	// replayed gateway callback lands here instead of double-crediting.
	ErrTransactionNotFound = errors.New("transaction does not exist")
)

// TransferPosting describes a two-sided transfer to be executed as one
// atomic unit. References are generated by the orchestrator so each leg
// carries its own.
type TransferPosting struct {
	SenderID          string
	DestinationNumber string
	Amount            decimal.Decimal
	DebitReference    string
	CreditReference   string
}

// TransferResult captures the committed outcome of a transfer posting.
type TransferResult struct {
	DebitReference  string
	CreditReference string
	ReceiverID      string
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

// Settlement captures the outcome of settling a gateway-funded deposit.
type Settlement struct {
	Transaction Transaction
	NewBalance  decimal.Decimal
}

// Store is the single source of truth for wallets and transactions. Balance
// mutations and their transaction records happen inside one atomic unit with
// database-transaction isolation; no balance is cached outside the store.
type Store interface {
	// CreateWallet persists a new wallet. The unique constraint on
	// account_number is authoritative: concurrent signups racing to the
	// same number surface ErrDuplicateAccountNumber and the caller retries
	// with a fresh one.
	CreateWallet(ctx context.Context, w Wallet) error
	WalletByOwner(ctx context.Context, ownerID string) (Wallet, error)
	WalletByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error)
	// AccountNumberExists is a fast-path check for the account number
	// generator. It is advisory only; CreateWallet decides.
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	// Transfer debits the sender, credits the destination wallet and writes
	// both transaction legs in one atomic unit. Wallet rows are locked in
	// deterministic order so opposite-direction transfers cannot deadlock.
	Transfer(ctx context.Context, posting TransferPosting) (TransferResult, error)

	// CreatePending records an unverified gateway deposit awaiting
	// settlement.
	CreatePending(ctx context.Context, tx Transaction) error
	// SettleFunding credits the pending transaction's sender wallet and
	// marks the transaction verified, atomically. Only unverified rows
	// match, which makes settlement idempotent per reference.
	SettleFunding(ctx context.Context, reference string, amount decimal.Decimal) (Settlement, error)

	// History returns the user's most recent transaction legs, newest
	// first.
	History(ctx context.Context, userID string, limit int) ([]Transaction, error)
}
