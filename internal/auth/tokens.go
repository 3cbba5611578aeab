package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"logistics-service/internal/domain"
)

const (
	accessToken  = "access"
	refreshToken = "refresh"
)

// ErrInvalidToken is an authentication failure caused by a bad, expired or
// wrong-type token.
var ErrInvalidToken = fmt.Errorf("%w: token is invalid or expired", domain.ErrUnauthenticated)

type claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is returned by a successful token request.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenIssuer signs and verifies HS256 access and refresh tokens.
type TokenIssuer struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenIssuer(secret string, accessTTL, refreshTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("new token issuer: empty secret")
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Pair issues a fresh access and refresh token for a user.
func (ti *TokenIssuer) Pair(userID int64) (TokenPair, error) {
	access, err := ti.sign(userID, accessToken, ti.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ti.sign(userID, refreshToken, ti.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a refresh token for a new access token.
func (ti *TokenIssuer) Refresh(token string) (string, error) {
	userID, err := ti.parse(token, refreshToken)
	if err != nil {
		return "", err
	}
	return ti.sign(userID, accessToken, ti.accessTTL)
}

// VerifyAccess returns the user id carried by a valid access token.
func (ti *TokenIssuer) VerifyAccess(token string) (int64, error) {
	return ti.parse(token, accessToken)
}

func (ti *TokenIssuer) sign(userID int64, kind string, ttl time.Duration) (string, error) {
	now := ti.now()
	c := claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(ti.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (ti *TokenIssuer) parse(token, kind string) (int64, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ti.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w (%v)", ErrInvalidToken, err)
	}
	if c.TokenType != kind {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
