package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/ledger"
	"github.com/eazipurse/eazipurse/internal/logging"
	"github.com/eazipurse/eazipurse/internal/notification"
	"github.com/eazipurse/eazipurse/internal/wallet"
)

type recordingNotifier struct {
	messages []notification.Message
	fail     bool
}

func (n *recordingNotifier) Send(_ context.Context, msg notification.Message) error {
	if n.fail {
		return errors.New("smtp unavailable")
	}
	n.messages = append(n.messages, msg)
	return nil
}

type fixture struct {
	store    ledger.Store
	repo     identity.Repository
	users    *identity.Service
	notifier *recordingNotifier
	service  *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := ledger.NewInMemory()
	repo := identity.NewMemoryRepository()
	users := identity.NewService(repo, wallet.NewService(store))
	notifier := &recordingNotifier{}
	return &fixture{
		store:    store,
		repo:     repo,
		users:    users,
		notifier: notifier,
		service:  NewService(store, users, notifier, logging.Discard()),
	}
}

func (f *fixture) register(t *testing.T, email, phone string, balance int64) (identity.User, ledger.Wallet) {
	t.Helper()
	user, w, err := f.users.Register(context.Background(), identity.RegisterInput{
		Email: email, Phone: phone, FirstName: "Test", Password: "correcthorse",
	})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	if balance > 0 {
		ledger.SeedBalance(f.store, user.ID, decimal.NewFromInt(balance))
	}
	return user, w
}

func TestTransferMovesExactAmount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sender, _ := f.register(t, "a@example.com", "08131111111", 5_000)
	receiver, receiverWallet := f.register(t, "b@example.com", "08132222222", 1_000)

	res, err := f.service.Transfer(ctx, TransferInput{
		ActorID:       sender.ID,
		AccountNumber: receiverWallet.AccountNumber,
		Amount:        decimal.NewFromInt(2_000),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if !res.NewBalance.Equal(decimal.NewFromInt(3_000)) {
		t.Fatalf("expected sender balance 3000, got %s", res.NewBalance)
	}
	after, _ := f.store.WalletByOwner(ctx, receiver.ID)
	if !after.Balance.Equal(decimal.NewFromInt(3_000)) {
		t.Fatalf("expected receiver balance 3000, got %s", after.Balance)
	}

	legs, err := f.store.History(ctx, receiver.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(legs) != 2 {
		t.Fatalf("expected two transaction legs, got %d", len(legs))
	}
	types := map[ledger.TransactionType]bool{}
	refs := map[string]bool{}
	for _, leg := range legs {
		types[leg.Type] = true
		refs[leg.Reference] = true
	}
	if !types[ledger.TypeTransfer] || !types[ledger.TypeDeposit] {
		t.Fatalf("unexpected leg types: %+v", legs)
	}
	if len(refs) != 2 {
		t.Fatal("legs must carry distinct references")
	}
}

func TestTransferNotifiesBothParties(t *testing.T) {
	f := newFixture(t)

	sender, _ := f.register(t, "a@example.com", "08131111111", 5_000)
	_, receiverWallet := f.register(t, "b@example.com", "08132222222", 0)

	_, err := f.service.Transfer(context.Background(), TransferInput{
		ActorID:       sender.ID,
		AccountNumber: receiverWallet.AccountNumber,
		Amount:        decimal.NewFromInt(2_000),
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if len(f.notifier.messages) != 2 {
		t.Fatalf("expected two notifications, got %d", len(f.notifier.messages))
	}
	byKind := map[string]notification.Message{}
	for _, msg := range f.notifier.messages {
		byKind[msg.Kind] = msg
	}
	if byKind[notification.KindTransferDebit].To != "a@example.com" {
		t.Fatalf("debit alert misaddressed: %+v", byKind[notification.KindTransferDebit])
	}
	if byKind[notification.KindTransferCredit].To != "b@example.com" {
		t.Fatalf("credit alert misaddressed: %+v", byKind[notification.KindTransferCredit])
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	f := newFixture(t)

	sender, _ := f.register(t, "a@example.com", "08131111111", 1_500)
	_, receiverWallet := f.register(t, "b@example.com", "08132222222", 0)

	_, err := f.service.Transfer(context.Background(), TransferInput{
		ActorID:       sender.ID,
		AccountNumber: receiverWallet.AccountNumber,
		Amount:        decimal.NewFromInt(2_000),
	})
	if !errors.Is(err, ledger.ErrInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}

	after, _ := f.store.WalletByOwner(context.Background(), sender.ID)
	if !after.Balance.Equal(decimal.NewFromInt(1_500)) {
		t.Fatalf("sender balance changed on failed transfer: %s", after.Balance)
	}
	if len(f.notifier.messages) != 0 {
		t.Fatal("no notifications expected on failure")
	}
}

func TestSelfTransferRejected(t *testing.T) {
	f := newFixture(t)

	sender, senderWallet := f.register(t, "a@example.com", "08131111111", 5_000)

	_, err := f.service.Transfer(context.Background(), TransferInput{
		ActorID:       sender.ID,
		AccountNumber: senderWallet.AccountNumber,
		Amount:        decimal.NewFromInt(1_000),
	})
	if !errors.Is(err, ledger.ErrSelfTransfer) {
		t.Fatalf("expected self transfer rejection, got %v", err)
	}

	if history, _ := f.store.History(context.Background(), sender.ID, 10); len(history) != 0 {
		t.Fatalf("expected zero transactions, got %d", len(history))
	}
}

func TestSuspendedActorCannotTransfer(t *testing.T) {
	f := newFixture(t)

	sender, _ := f.register(t, "a@example.com", "08131111111", 5_000)
	_, receiverWallet := f.register(t, "b@example.com", "08132222222", 0)

	identity.SetStatus(f.repo, sender.ID, identity.StatusSuspended)

	_, err := f.service.Transfer(context.Background(), TransferInput{
		ActorID:       sender.ID,
		AccountNumber: receiverWallet.AccountNumber,
		Amount:        decimal.NewFromInt(1_000),
	})
	if !errors.Is(err, identity.ErrNotOperable) {
		t.Fatalf("expected not operable, got %v", err)
	}
}

func TestNotifierFailureDoesNotAffectTransfer(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true

	sender, _ := f.register(t, "a@example.com", "08131111111", 5_000)
	receiver, receiverWallet := f.register(t, "b@example.com", "08132222222", 0)

	res, err := f.service.Transfer(context.Background(), TransferInput{
		ActorID:       sender.ID,
		AccountNumber: receiverWallet.AccountNumber,
		Amount:        decimal.NewFromInt(2_000),
	})
	if err != nil {
		t.Fatalf("transfer should survive notifier failure: %v", err)
	}
	if !res.NewBalance.Equal(decimal.NewFromInt(3_000)) {
		t.Fatalf("unexpected balance: %s", res.NewBalance)
	}

	after, _ := f.store.WalletByOwner(context.Background(), receiver.ID)
	if !after.Balance.Equal(decimal.NewFromInt(2_000)) {
		t.Fatalf("receiver not credited: %s", after.Balance)
	}
}
