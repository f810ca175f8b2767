package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrTokenMissing is returned when a request carries no token.
	ErrTokenMissing = errors.New("token missing")
	// ErrTokenExpired is returned for a well-formed token past its expiry.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is returned for any other verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// DefaultTokenLifetime matches the "7d" default of JWT_EXPIRES_IN.
const DefaultTokenLifetime = 7 * 24 * time.Hour

// AuthUser is the identity asserted by a signed token.
type AuthUser struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u AuthUser) IsAdmin() bool { return u.Role == "admin" }

type claims struct {
	AuthUser
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 tokens.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer returns an issuer. A non-positive ttl uses
// DefaultTokenLifetime.
func NewTokenIssuer(secret []byte, ttl time.Duration) (*TokenIssuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenLifetime
	}
	return &TokenIssuer{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the token lifetime.
func (i *TokenIssuer) TTL() time.Duration { return i.ttl }

// CreateToken signs a token for u.
func (i *TokenIssuer) CreateToken(u AuthUser) (string, error) {
	if u.UserID == "" {
		return "", errors.New("user id is required")
	}
	now := i.now()
	c := claims{
		AuthUser: u,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// VerifyToken checks the signature and expiry of token and returns the
// identity it carries. Failures are ErrTokenMissing, ErrTokenExpired or
// ErrTokenInvalid.
func (i *TokenIssuer) VerifyToken(token string) (AuthUser, error) {
	if token == "" {
		return AuthUser{}, ErrTokenMissing
	}
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return AuthUser{}, ErrTokenExpired
		}
		return AuthUser{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if c.UserID == "" {
		return AuthUser{}, fmt.Errorf("%w: missing user id", ErrTokenInvalid)
	}
	return c.AuthUser, nil
}
