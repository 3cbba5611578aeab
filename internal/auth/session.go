package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"logistics-service/internal/domain"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/ports"
)

const (
	SessionCookie = "sessionid"
	CSRFField     = "csrf_token"
	CSRFHeader    = "X-CSRFToken"
)

type sessionKey struct{}

// SessionFrom returns the session loaded for this request, if any.
func SessionFrom(ctx context.Context) *ports.Session {
	s, _ := ctx.Value(sessionKey{}).(*ports.Session)
	return s
}

// SessionManager ties cookie-based login sessions to a SessionStore.
type SessionManager struct {
	Store  ports.SessionStore
	Users  ports.UserRepository
	TTL    time.Duration
	Secure bool
}

// Middleware loads the session named by the cookie and, when it belongs to
// a user, attaches that user to the request context.
func (m *SessionManager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(SessionCookie)
		if err != nil || c.Value == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		sess, err := m.Store.Get(ctx, c.Value)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				obs.Logger(ctx).Sugar().Warnw("load session failed", "error", err)
			}
			next.ServeHTTP(w, r)
			return
		}
		ctx = context.WithValue(ctx, sessionKey{}, sess)

		if sess.UserID != 0 {
			u, err := m.Users.GetByID(ctx, sess.UserID)
			if err == nil {
				ctx = WithUser(ctx, u)
			} else if !errors.Is(err, domain.ErrNotFound) {
				obs.Logger(ctx).Sugar().Warnw("load session user failed", "error", err)
			}
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Ensure returns the request's session, creating and persisting a new
// anonymous one when there is none. The returned request carries it.
func (m *SessionManager) Ensure(w http.ResponseWriter, r *http.Request) (*ports.Session, *http.Request, error) {
	if s := SessionFrom(r.Context()); s != nil {
		return s, r, nil
	}
	s := newSession(0)
	if err := m.save(w, r, s); err != nil {
		return nil, r, err
	}
	return s, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)), nil
}

// Login replaces the current session with a fresh one owned by u. Pending
// flash messages are carried over.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, u *domain.User) (*http.Request, error) {
	s := newSession(u.UserID)
	if old := SessionFrom(r.Context()); old != nil {
		s.Flashes = old.Flashes
		if err := m.Store.Delete(r.Context(), old.ID); err != nil {
			return r, fmt.Errorf("login session: %w", err)
		}
	}
	if err := m.save(w, r, s); err != nil {
		return r, fmt.Errorf("login session: %w", err)
	}
	ctx := context.WithValue(r.Context(), sessionKey{}, s)
	return r.WithContext(WithUser(ctx, u)), nil
}

// Logout destroys the session and expires the cookie.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	if s := SessionFrom(r.Context()); s != nil {
		if err := m.Store.Delete(r.Context(), s.ID); err != nil {
			return fmt.Errorf("logout: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	return nil
}

// Flash queues a message for the next rendered page.
func (m *SessionManager) Flash(w http.ResponseWriter, r *http.Request, msg string) error {
	s, r, err := m.Ensure(w, r)
	if err != nil {
		return err
	}
	s.Flashes = append(s.Flashes, msg)
	return m.save(w, r, s)
}

// PopFlashes returns and clears queued messages.
func (m *SessionManager) PopFlashes(w http.ResponseWriter, r *http.Request) []string {
	s := SessionFrom(r.Context())
	if s == nil || len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	if err := m.save(w, r, s); err != nil {
		obs.Logger(r.Context()).Sugar().Warnw("clear flashes failed", "error", err)
	}
	return out
}

// CheckCSRF compares the submitted token with the session's.
func (m *SessionManager) CheckCSRF(r *http.Request) bool {
	s := SessionFrom(r.Context())
	if s == nil || s.CSRFToken == "" {
		return false
	}
	token := r.Header.Get(CSRFHeader)
	if token == "" {
		token = r.PostFormValue(CSRFField)
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRFToken)) == 1
}

func (m *SessionManager) save(w http.ResponseWriter, r *http.Request, s *ports.Session) error {
	if err := m.Store.Save(r.Context(), s, m.TTL); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(m.TTL.Seconds()),
		HttpOnly: true,
		Secure:   m.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func newSession(userID int64) *ports.Session {
	return &ports.Session{ID: uuid.NewString(), UserID: userID, CSRFToken: uuid.NewString()}
}
