package funding

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eazipurse/eazipurse/internal/identity"
	"github.com/eazipurse/eazipurse/internal/ledger"
	"github.com/eazipurse/eazipurse/internal/logging"
	"github.com/eazipurse/eazipurse/internal/notification"
	"github.com/eazipurse/eazipurse/internal/wallet"
)

type capturingNotifier struct {
	messages []notification.Message
}

func (n *capturingNotifier) Send(_ context.Context, msg notification.Message) error {
	n.messages = append(n.messages, msg)
	return nil
}

type fundingFixture struct {
	store    ledger.Store
	repo     identity.Repository
	users    *identity.Service
	gateway  *StaticGateway
	notifier *capturingNotifier
	service  *Service
}

func newFundingFixture(t *testing.T) *fundingFixture {
	t.Helper()
	store := ledger.NewInMemory()
	repo := identity.NewMemoryRepository()
	users := identity.NewService(repo, wallet.NewService(store))
	gateway := NewStaticGateway()
	notifier := &capturingNotifier{}
	return &fundingFixture{
		store:    store,
		repo:     repo,
		users:    users,
		gateway:  gateway,
		notifier: notifier,
		service:  NewService(store, users, gateway, notifier, logging.Discard(), "https://app.example/wallet/verify"),
	}
}

func (f *fundingFixture) registerUser(t *testing.T) identity.User {
	t.Helper()
	user, _, err := f.users.Register(context.Background(), identity.RegisterInput{
		Email: "funder@example.com", Phone: "08139999999", FirstName: "Funder", Password: "correcthorse",
	})
	require.NoError(t, err)
	return user
}

func TestInitiateRecordsPendingDeposit(t *testing.T) {
	f := newFundingFixture(t)
	ctx := context.Background()
	user := f.registerUser(t)

	res, err := f.service.Initiate(ctx, InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Reference)
	assert.Contains(t, res.AuthorizationURL, res.Reference)

	// The gateway is asked for the amount in kobo.
	minor, ok := f.gateway.AmountFor(res.Reference)
	require.True(t, ok)
	assert.Equal(t, int64(500_000), minor)

	history, err := f.store.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ledger.TypeDeposit, history[0].Type)
	assert.False(t, history[0].Verified)

	// Pending deposits do not move the balance.
	w, err := f.store.WalletByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())
}

func TestInitiateGatewayFailure(t *testing.T) {
	f := newFundingFixture(t)
	f.gateway.FailInit = true
	user := f.registerUser(t)

	_, err := f.service.Initiate(context.Background(), InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	assert.ErrorIs(t, err, ErrGatewayInit)
}

func TestInitiateSuspendedActor(t *testing.T) {
	f := newFundingFixture(t)
	user := f.registerUser(t)
	identity.SetStatus(f.repo, user.ID, identity.StatusSuspended)

	_, err := f.service.Initiate(context.Background(), InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	assert.ErrorIs(t, err, identity.ErrNotOperable)
}

func TestVerifySettlesExactlyOnce(t *testing.T) {
	f := newFundingFixture(t)
	ctx := context.Background()
	user := f.registerUser(t)

	initiated, err := f.service.Initiate(ctx, InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	require.NoError(t, err)

	res, err := f.service.Verify(ctx, initiated.Reference)
	require.NoError(t, err)
	assert.True(t, res.Amount.Equal(decimal.NewFromInt(5_000)))
	assert.True(t, res.NewBalance.Equal(decimal.NewFromInt(5_000)))

	history, err := f.store.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.True(t, history[0].Verified)

	// Replaying the gateway callback must not credit twice.
	_, err = f.service.Verify(ctx, initiated.Reference)
	assert.ErrorIs(t, err, ledger.ErrTransactionNotFound)

	w, err := f.store.WalletByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(5_000)))
}

func TestVerifyDeclinedChargeLeavesWalletUntouched(t *testing.T) {
	f := newFundingFixture(t)
	ctx := context.Background()
	user := f.registerUser(t)

	initiated, err := f.service.Initiate(ctx, InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	require.NoError(t, err)

	f.gateway.Declined = true
	_, err = f.service.Verify(ctx, initiated.Reference)
	assert.ErrorIs(t, err, ErrGatewayVerification)

	w, err := f.store.WalletByOwner(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, w.Balance.IsZero())

	history, err := f.store.History(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.False(t, history[0].Verified, "declined charge must stay pending")
}

func TestVerifyUnknownReference(t *testing.T) {
	f := newFundingFixture(t)
	f.registerUser(t)

	_, err := f.service.Verify(context.Background(), "ref_does_not_exist")
	assert.ErrorIs(t, err, ErrGatewayVerification)
}

func TestVerifyNotifiesOwner(t *testing.T) {
	f := newFundingFixture(t)
	ctx := context.Background()
	user := f.registerUser(t)

	initiated, err := f.service.Initiate(ctx, InitiateInput{ActorID: user.ID, Amount: decimal.NewFromInt(5_000)})
	require.NoError(t, err)

	_, err = f.service.Verify(ctx, initiated.Reference)
	require.NoError(t, err)

	require.Len(t, f.notifier.messages, 1)
	msg := f.notifier.messages[0]
	assert.Equal(t, notification.KindFundingSettled, msg.Kind)
	assert.Equal(t, user.Email, msg.To)
	assert.Contains(t, msg.Body, initiated.Reference)
}
