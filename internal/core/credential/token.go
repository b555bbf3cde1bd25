package credential

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/spacehub/coworking-api/internal/core/domain"
)

const (
	DefaultAccessTTL  = 24 * time.Hour
	DefaultRefreshTTL = 30 * 24 * time.Hour

	useAccess  = "access"
	useRefresh = "refresh"
)

var ErrMissingSecret = errors.New("credential: jwt signing secret is not configured")

// TokenOptions configures token lifetimes. Zero values select the defaults.
type TokenOptions struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// tokenClaims is the JWT body: the identity claims plus the token's intended use.
type tokenClaims struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Use    string `json:"token_use"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 access/refresh token pairs.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenIssuer fails when secret is empty; callers treat that as a fatal startup error.
func NewTokenIssuer(secret string, opts TokenOptions) (*TokenIssuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = DefaultAccessTTL
	}
	if opts.RefreshTTL <= 0 {
		opts.RefreshTTL = DefaultRefreshTTL
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  opts.AccessTTL,
		refreshTTL: opts.RefreshTTL,
		now:        time.Now,
	}, nil
}

// RefreshTTL is the lifetime of issued refresh tokens.
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }

// IssuePair signs an access and a refresh token from the same claim set.
func (i *TokenIssuer) IssuePair(c domain.Claims) (domain.TokenPair, error) {
	access, err := i.sign(c, useAccess, i.accessTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := i.sign(c, useRefresh, i.refreshTTL)
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Verify validates an access token and returns its claims.
func (i *TokenIssuer) Verify(token string) (domain.Claims, error) {
	return i.verify(token, useAccess)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *TokenIssuer) VerifyRefresh(token string) (domain.Claims, error) {
	return i.verify(token, useRefresh)
}

func (i *TokenIssuer) sign(c domain.Claims, use string, ttl time.Duration) (string, error) {
	now := i.now()
	claims := tokenClaims{
		UserID: c.UserID,
		Email:  c.Email,
		Role:   string(c.Role),
		Use:    use,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *TokenIssuer) verify(token, use string) (domain.Claims, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	// Every failure collapses into one error so callers cannot tell which check failed.
	if err != nil || !parsed.Valid || claims.Use != use || claims.UserID == 0 {
		return domain.Claims{}, domain.ErrInvalidToken
	}
	return domain.Claims{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   domain.Role(claims.Role),
	}, nil
}
