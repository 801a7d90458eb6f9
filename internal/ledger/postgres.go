package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const (
	walletColumns = `id::text, owner_id::text, account_number, balance::text, created_at`
	txColumns     = `id::text, reference, type, amount::text, COALESCE(sender_id::text, ''), COALESCE(receiver_id::text, ''), verified, created_at`

	uniqueViolation = "23505"
)

// PostgresStore persists wallets and transactions in PostgreSQL. Balance
// mutations run inside database transactions with row-level locks.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// CreateWallet inserts a wallet record. The account_number unique constraint
// is the authority on identifier uniqueness.
func (s *PostgresStore) CreateWallet(ctx context.Context, w Wallet) error {
	_, err := s.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, account_number, balance, created_at)
        VALUES ($1, $2, $3, $4, $5)`,
		uuid.MustParse(w.ID), uuid.MustParse(w.OwnerID), w.AccountNumber, w.Balance.String(), w.CreatedAt.UTC())
	if isUniqueViolation(err, "wallets_account_number_key") {
		return ErrDuplicateAccountNumber
	}
	return err
}

// WalletByOwner fetches the wallet owned by the given user.
func (s *PostgresStore) WalletByOwner(ctx context.Context, ownerID string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1`, ownerID)
	return scanWallet(row)
}

// WalletByAccountNumber fetches a wallet by its account number.
func (s *PostgresStore) WalletByAccountNumber(ctx context.Context, accountNumber string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE account_number = $1`, accountNumber)
	return scanWallet(row)
}

// AccountNumberExists reports whether any wallet already uses the number.
func (s *PostgresStore) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM wallets WHERE account_number = $1)`, accountNumber).Scan(&exists)
	return exists, err
}

// Transfer executes a two-sided transfer as one database transaction. Both
// wallet rows are locked ordered by account number so two simultaneous
// opposite-direction transfers cannot circular-wait.
func (s *PostgresStore) Transfer(ctx context.Context, posting TransferPosting) (TransferResult, error) {
	if posting.Amount.Sign() <= 0 {
		return TransferResult{}, ErrNonPositiveAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return TransferResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	sender, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1`, posting.SenderID))
	if err != nil {
		return TransferResult{}, err
	}
	receiver, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE account_number = $1`, posting.DestinationNumber))
	if err != nil {
		return TransferResult{}, err
	}
	if sender.ID == receiver.ID {
		return TransferResult{}, ErrSelfTransfer
	}

	// Deterministic lock order; re-read balances under the locks.
	first, second := &sender, &receiver
	if second.AccountNumber < first.AccountNumber {
		first, second = second, first
	}
	for _, w := range []*Wallet{first, second} {
		locked, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, w.ID))
		if err != nil {
			return TransferResult{}, err
		}
		*w = locked
	}

	if err := sender.Withdraw(posting.Amount); err != nil {
		return TransferResult{}, err
	}
	if err := receiver.Deposit(posting.Amount); err != nil {
		return TransferResult{}, err
	}

	for _, w := range []*Wallet{&sender, &receiver} {
		if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1 WHERE id = $2`, w.Balance.String(), w.ID); err != nil {
			return TransferResult{}, err
		}
	}

	debit := Transaction{
		Reference:  posting.DebitReference,
		Type:       TypeTransfer,
		Amount:     posting.Amount,
		SenderID:   sender.OwnerID,
		ReceiverID: receiver.OwnerID,
		Verified:   true,
	}
	credit := Transaction{
		Reference:  posting.CreditReference,
		Type:       TypeDeposit,
		Amount:     posting.Amount,
		ReceiverID: receiver.OwnerID,
		Verified:   true,
	}
	for _, rec := range []Transaction{debit, credit} {
		if err := insertTransaction(ctx, tx, rec); err != nil {
			return TransferResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return TransferResult{}, err
	}

	return TransferResult{
		DebitReference:  posting.DebitReference,
		CreditReference: posting.CreditReference,
		ReceiverID:      receiver.OwnerID,
		SenderBalance:   sender.Balance,
		ReceiverBalance: receiver.Balance,
	}, nil
}

// CreatePending records an unverified gateway deposit.
func (s *PostgresStore) CreatePending(ctx context.Context, rec Transaction) error {
	rec.Verified = false
	err := insertTransaction(ctx, s.db, rec)
	if isUniqueViolation(err, "transactions_reference_key") {
		return ErrDuplicateReference
	}
	return err
}

// SettleFunding credits the sender wallet of the pending transaction matching
// the reference and flips verified to true, all in one database transaction.
// Already-settled references no longer match and report ErrTransactionNotFound.
func (s *PostgresStore) SettleFunding(ctx context.Context, reference string, amount decimal.Decimal) (Settlement, error) {
	if amount.Sign() <= 0 {
		return Settlement{}, ErrNonPositiveAmount
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Settlement{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	row := tx.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE reference = $1 AND verified = false FOR UPDATE`, reference)
	pending, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Settlement{}, ErrTransactionNotFound
		}
		return Settlement{}, err
	}

	wallet, err := scanWallet(tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1 FOR UPDATE`, pending.SenderID))
	if err != nil {
		return Settlement{}, err
	}
	if err := wallet.Deposit(amount); err != nil {
		return Settlement{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE wallets SET balance = $1 WHERE id = $2`, wallet.Balance.String(), wallet.ID); err != nil {
		return Settlement{}, err
	}
	if _, err := tx.Exec(ctx, `UPDATE transactions SET verified = true WHERE id = $1`, pending.ID); err != nil {
		return Settlement{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return Settlement{}, err
	}

	pending.Verified = true
	return Settlement{Transaction: pending, NewBalance: wallet.Balance}, nil
}

// History lists the user's transaction legs, newest first.
func (s *PostgresStore) History(ctx context.Context, userID string, limit int) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, `SELECT `+txColumns+` FROM transactions
        WHERE sender_id = $1 OR receiver_id = $1
        ORDER BY created_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []Transaction
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertTransaction(ctx context.Context, db execer, rec Transaction) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(ctx, `INSERT INTO transactions (id, reference, type, amount, sender_id, receiver_id, verified, created_at)
        VALUES ($1, $2, $3, $4, NULLIF($5, '')::uuid, NULLIF($6, '')::uuid, $7, $8)`,
		uuid.MustParse(rec.ID), rec.Reference, string(rec.Type), rec.Amount.String(), rec.SenderID, rec.ReceiverID, rec.Verified, rec.CreatedAt.UTC())
	return err
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var w Wallet
	var balance string
	if err := row.Scan(&w.ID, &w.OwnerID, &w.AccountNumber, &balance, &w.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrWalletNotFound
		}
		return Wallet{}, err
	}
	amount, err := decimal.NewFromString(balance)
	if err != nil {
		return Wallet{}, fmt.Errorf("parse balance: %w", err)
	}
	w.Balance = amount
	return w, nil
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var rec Transaction
	var kind, amount string
	if err := row.Scan(&rec.ID, &rec.Reference, &kind, &amount, &rec.SenderID, &rec.ReceiverID, &rec.Verified, &rec.CreatedAt); err != nil {
		return Transaction{}, err
	}
	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return Transaction{}, fmt.Errorf("parse amount: %w", err)
	}
	rec.Type = TransactionType(kind)
	rec.Amount = parsed
	return rec, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
