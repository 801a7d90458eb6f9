package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/eazipurse/eazipurse/internal/config"
	"github.com/eazipurse/eazipurse/internal/identity"
)

// ErrInvalidToken covers every refresh token failure mode so responses do
// not reveal whether a token was malformed, expired or revoked.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the JWT payload for both access and refresh tokens.
type Claims struct {
	Status string `json:"status,omitempty"`
	jwt.RegisteredClaims
}

// Service issues and verifies JWT token pairs. Access and refresh tokens
// are signed with separate secrets so one cannot stand in for the other.
type Service struct {
	cfg   config.Config
	users *identity.Service
}

// NewService constructs an auth service.
func NewService(cfg config.Config, users *identity.Service) *Service {
	return &Service{cfg: cfg, users: users}
}

// TokenPair bundles the tokens returned on login.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Login issues a token pair for an already-authenticated user.
func (s *Service) Login(user identity.User) (TokenPair, error) {
	access, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(user, s.cfg.RefreshSecret, s.cfg.RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.cfg.AccessTokenTTL.Seconds()),
	}, nil
}

// Refresh verifies the refresh token, confirms the user still exists and
// issues a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, int64, error) {
	claims, err := s.Verify(refreshToken, s.cfg.RefreshSecret)
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	user, err := s.users.Get(ctx, claims.Subject)
	if err != nil {
		return "", 0, ErrInvalidToken
	}

	access, err := s.sign(user, s.cfg.JWTSecret, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return access, int64(s.cfg.AccessTokenTTL.Seconds()), nil
}

// Verify parses a token against the given secret and returns its claims.
func (s *Service) Verify(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess parses an access token.
func (s *Service) VerifyAccess(tokenString string) (*Claims, error) {
	return s.Verify(tokenString, s.cfg.JWTSecret)
}

func (s *Service) sign(user identity.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    s.cfg.AppName,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
