package ports

import (
	"context"
	"time"
)

// Session is the server-side state of an HTML login session.
type Session struct {
	ID        string   `json:"-"`
	UserID    int64    `json:"user_id,omitempty"`
	CSRFToken string   `json:"csrf_token"`
	Flashes   []string `json:"flashes,omitempty"`
}

// SessionStore keeps sessions with a sliding expiry.
type SessionStore interface {
	// Get returns domain.ErrNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
