package funding

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

var (
	// ErrGatewayInit indicates the gateway refused to open a checkout
	// session. No pending transaction is left behind in a payable state.
	ErrGatewayInit = errors.New("could not initialize payment")

	// ErrGatewayVerification indicates the gateway did not confirm the
	// charge as successful. The wallet is not credited.
	ErrGatewayVerification = errors.New("payment was not verified")
)

// minorUnitFactor converts naira to kobo for the gateway.
var minorUnitFactor = decimal.NewFromInt(100)

// Service drives wallet funding through the payment gateway. A funding run
// has two halves: Initiate records an unverified deposit and opens the
// checkout session, then Verify confirms the charge with the gateway and
// settles the pending deposit exactly once.
type Service struct {
	store       ledger.Store
	users       *identity.Service
	gateway     Gateway
	notifier    notification.Notifier
	logger      *slog.Logger
	callbackURL string
}

// NewService constructs a funding service. callbackURL is handed to the
// gateway so the checkout flow can redirect back after payment.
func NewService(store ledger.Store, users *identity.Service, gateway Gateway, notifier notification.Notifier, logger *slog.Logger, callbackURL string) *Service {
	return &Service{
		store:       store,
		users:       users,
		gateway:     gateway,
		notifier:    notifier,
		logger:      logger,
		callbackURL: callbackURL,
	}
}

// InitiateInput captures a funding request from an authenticated actor.
// Amount is in naira.
type InitiateInput struct {
	ActorID string
	Amount  decimal.Decimal
}

// InitiateResult carries the checkout session back to the caller.
type InitiateResult struct {
	Reference        string
	AuthorizationURL string
	AccessCode       string
}

// Initiate records an unverified deposit and opens a gateway checkout
// session for it.
func (s *Service) Initiate(ctx context.Context, input InitiateInput) (InitiateResult, error) {
	actor, err := s.users.RequireOperable(ctx, input.ActorID)
	if err != nil {
		return InitiateResult{}, err
	}
	if input.Amount.Sign() <= 0 {
		return InitiateResult{}, ledger.ErrNonPositiveAmount
	}

	reference := ledger.NewReference()
	pending := ledger.Transaction{
		Reference: reference,
		Type:      ledger.TypeDeposit,
		Amount:    input.Amount,
		SenderID:  actor.ID,
		Verified:  false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreatePending(ctx, pending); err != nil {
		return InitiateResult{}, err
	}

	session, err := s.gateway.Initialize(ctx, InitializeRequest{
		AmountMinor: input.Amount.Mul(minorUnitFactor).IntPart(),
		Reference:   reference,
		Email:       actor.Email,
		CallbackURL: s.callbackURL,
	})
	if err != nil {
		s.logger.Error("gateway initialization failed", "reference", reference, "actor_id", actor.ID, "error", err)
		return InitiateResult{}, fmt.Errorf("%w: %v", ErrGatewayInit, err)
	}

	return InitiateResult{
		Reference:        session.Reference,
		AuthorizationURL: session.AuthorizationURL,
		AccessCode:       session.AccessCode,
	}, nil
}

// VerifyResult reports a settled funding transaction.
type VerifyResult struct {
	Reference  string
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// Verify confirms the charge with the gateway and settles the matching
// pending deposit. Settlement matches unverified rows only, so replaying a
// reference that already settled returns ledger.ErrTransactionNotFound and
// never credits twice.
func (s *Service) Verify(ctx context.Context, reference string) (VerifyResult, error) {
	charge, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		s.logger.Error("gateway verification failed", "reference", reference, "error", err)
		return VerifyResult{}, fmt.Errorf("%w: %v", ErrGatewayVerification, err)
	}
	if !charge.Success {
		return VerifyResult{}, fmt.Errorf("%w: gateway status %q", ErrGatewayVerification, charge.GatewayStatus)
	}

	amount := decimal.NewFromInt(charge.AmountMinor).Div(minorUnitFactor)
	settlement, err := s.store.SettleFunding(ctx, reference, amount)
	if err != nil {
		return VerifyResult{}, err
	}

	s.notifySettled(ctx, settlement)

	return VerifyResult{
		Reference:  reference,
		Amount:     settlement.Transaction.Amount,
		NewBalance: settlement.NewBalance,
	}, nil
}

// notifySettled sends the post-settlement deposit alert. Failures are logged
// and swallowed.
func (s *Service) notifySettled(ctx context.Context, settlement ledger.Settlement) {
	if s.notifier == nil {
		return
	}
	owner, err := s.users.Get(ctx, settlement.Transaction.SenderID)
	if err != nil {
		s.logger.Warn("funding alert skipped, owner lookup failed", "owner_id", settlement.Transaction.SenderID, "error", err)
		return
	}

	body := fmt.Sprintf("Reference id: %s\nYour wallet has been funded with ₦%s\n*** Thank you for using EaziPurse ***",
		settlement.Transaction.Reference, settlement.Transaction.Amount.StringFixed(2))
	if err := s.notifier.Send(ctx, notification.Message{
		Kind:    notification.KindFundingSettled,
		To:      owner.Email,
		Subject: "EaziPurse Transaction Alert",
		Body:    body,
	}); err != nil {
		s.logger.Warn("funding alert failed", "to", owner.Email, "error", err)
	}
}
