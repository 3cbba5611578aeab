package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

const (
	minPasswordLength = 8
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

// Authenticator checks credentials and issues API tokens.
type Authenticator struct {
	Users  ports.UserRepository
	Tokens *TokenIssuer
}

func NewAuthenticator(users ports.UserRepository, tokens *TokenIssuer) *Authenticator {
	return &Authenticator{Users: users, Tokens: tokens}
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Login returns the user whose credentials match.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*domain.User, error) {
	u, err := a.Users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return u, nil
}

// Registration is the sign-up form.
type Registration struct {
	Username        string
	Email           string
	FirstName       string
	LastName        string
	Password        string
	PasswordConfirm string
	IsStaff         bool
}

// Register creates an account after checking the password pair.
func (a *Authenticator) Register(ctx context.Context, r Registration) (*domain.User, error) {
	fe := domain.FieldErrors{}
	if len(r.Password) < minPasswordLength {
		fe.Add("password", fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	} else if len(r.Password) > maxPasswordBytes {
		fe.Add("password", fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes))
	}
	if r.Password != r.PasswordConfirm {
		fe.Add("password_confirm", "the two password fields didn't match")
	}

	u := &domain.User{
		Username:  strings.TrimSpace(r.Username),
		Email:     strings.TrimSpace(r.Email),
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		IsStaff:   r.IsStaff,
	}
	if err := u.Validate(); err != nil {
		var userErrs domain.FieldErrors
		if errors.As(err, &userErrs) {
			for k, v := range userErrs {
				fe.Add(k, v)
			}
		}
	}
	if err := fe.Err(); err != nil {
		return nil, err
	}

	hash, err := HashPassword(r.Password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	u.PasswordHash = hash

	if err := a.Users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

// ObtainPair exchanges credentials for an access/refresh token pair.
func (a *Authenticator) ObtainPair(ctx context.Context, username, password string) (TokenPair, error) {
	u, err := a.Login(ctx, username, password)
	if err != nil {
		return TokenPair{}, err
	}
	return a.Tokens.Pair(u.UserID)
}

// UserForAccessToken resolves the account behind an access token.
func (a *Authenticator) UserForAccessToken(ctx context.Context, token string) (*domain.User, error) {
	id, err := a.Tokens.VerifyAccess(token)
	if err != nil {
		return nil, err
	}
	u, err := a.Users.GetByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, ErrInvalidToken
	}
	return u, err
}
