package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/ledger"
	"github.com/eazipurse/eazipurse/internal/notification"
)

// Service orchestrates wallet-to-wallet transfers. The balance mutation and
// both transaction legs are committed by the ledger store as one atomic
// unit; notifications go out only after the commit.
type Service struct {
	store    ledger.Store
	users    *identity.Service
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs a transfer orchestrator.
func NewService(store ledger.Store, users *identity.Service, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, users: users, notifier: notifier, logger: logger}
}

// TransferInput captures a transfer request from an authenticated actor.
type TransferInput struct {
	ActorID       string
	AccountNumber string
	Amount        decimal.Decimal
}

// TransferResult reports the committed outcome to the caller.
type TransferResult struct {
	Reference   string
	NewBalance  decimal.Decimal
	CompletedAt time.Time
}

// Transfer moves funds from the actor's wallet to the destination account
// number, producing a transfer-typed debit leg and a deposit-typed credit
// leg with independent references.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (TransferResult, error) {
	actor, err := s.users.RequireOperable(ctx, input.ActorID)
	if err != nil {
		return TransferResult{}, err
	}
	if input.Amount.Sign() <= 0 {
		return TransferResult{}, ledger.ErrNonPositiveAmount
	}

	posting := ledger.TransferPosting{
		SenderID:          actor.ID,
		DestinationNumber: input.AccountNumber,
		Amount:            input.Amount,
		DebitReference:    ledger.NewReference(),
		CreditReference:   ledger.NewReference(),
	}

	res, err := s.store.Transfer(ctx, posting)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds),
			errors.Is(err, ledger.ErrSelfTransfer),
			errors.Is(err, ledger.ErrWalletNotFound):
			return TransferResult{}, err
		default:
			s.logger.Error("transfer posting failed",
				"actor_id", actor.ID,
				"destination", input.AccountNumber,
				"amount", input.Amount.String(),
				"error", err,
			)
			return TransferResult{}, err
		}
	}

	s.notifyParties(ctx, actor, res, input.Amount)

	return TransferResult{
		Reference:   res.DebitReference,
		NewBalance:  res.SenderBalance,
		CompletedAt: time.Now().UTC(),
	}, nil
}

// notifyParties sends the post-commit transaction alerts. Failures are
// logged and swallowed: the transfer has already committed.
func (s *Service) notifyParties(ctx context.Context, actor identity.User, res ledger.TransferResult, amount decimal.Decimal) {
	if s.notifier == nil {
		return
	}

	receiver, err := s.users.Get(ctx, res.ReceiverID)
	if err != nil {
		s.logger.Warn("transfer alert skipped, receiver lookup failed", "receiver_id", res.ReceiverID, "error", err)
		return
	}

	debitBody := fmt.Sprintf("Reference id: %s\nYou transferred ₦%s to %s\n*** Thank you for using EaziPurse ***",
		res.DebitReference, amount.StringFixed(2), receiver.DisplayName())
	if err := s.notifier.Send(ctx, notification.Message{
		Kind:    notification.KindTransferDebit,
		To:      actor.Email,
		Subject: "EaziPurse Transaction Alert",
		Body:    debitBody,
	}); err != nil {
		s.logger.Warn("debit alert failed", "to", actor.Email, "error", err)
	}

	creditBody := fmt.Sprintf("Reference id: %s\nYou have received ₦%s from %s\n*** EaziPurse ***",
		res.CreditReference, amount.StringFixed(2), actor.DisplayName())
	if err := s.notifier.Send(ctx, notification.Message{
		Kind:    notification.KindTransferCredit,
		To:      receiver.Email,
		Subject: "EaziPurse Transaction Alert",
		Body:    creditBody,
	}); err != nil {
		s.logger.Warn("credit alert failed", "to", receiver.Email, "error", err)
	}
}
