package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eazipurse/eazipurse/internal/ledger"
	"github.com/eazipurse/eazipurse/internal/wallet"
)

var (
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// login responses do not reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrNotOperable indicates the account status disallows financial
	// operations.
	ErrNotOperable = errors.New("your account is not active, please contact support")
)

const minPasswordLength = 8

// Service manages the user lifecycle. Wallet provisioning is a synchronous
// part of registration: a failure to create the wallet fails the whole
// registration instead of leaving a user without one.
type Service struct {
	repo    Repository
	wallets *wallet.Service
}

// NewService creates an identity service.
func NewService(repo Repository, wallets *wallet.Service) *Service {
	return &Service{repo: repo, wallets: wallets}
}

// RegisterInput captures signup data.
type RegisterInput struct {
	Email     string
	Phone     string
	FirstName string
	LastName  string
	Password  string
}

// Register creates a user with a hashed password and provisions their
// wallet.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, ledger.Wallet, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !strings.Contains(email, "@") {
		return User{}, ledger.Wallet{}, errors.New("a valid email is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return User{}, ledger.Wallet{}, errors.New("a phone number is required")
	}
	if len(input.Password) < minPasswordLength {
		return User{}, ledger.Wallet{}, fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, ledger.Wallet{}, err
	}

	user := User{
		ID:           uuid.NewString(),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		Status:       StatusActive,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, ledger.Wallet{}, err
	}

	w, _, err := s.wallets.Ensure(ctx, wallet.CreateInput{OwnerID: user.ID, Phone: user.Phone})
	if err != nil {
		return User{}, ledger.Wallet{}, fmt.Errorf("provision wallet: %w", err)
	}

	return user, w, nil
}

// Authenticate verifies the email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get loads a user by identifier regardless of account status.
func (s *Service) Get(ctx context.Context, userID string) (User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RequireOperable loads a user and enforces the account status gate that
// protects every financial operation.
func (s *Service) RequireOperable(ctx context.Context, userID string) (User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	if !user.CanOperate() {
		return User{}, ErrNotOperable
	}
	return user, nil
}
