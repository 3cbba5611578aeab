package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

type memSessions struct {
	mu   sync.Mutex
	rows map[string]ports.Session
}

func (m *memSessions) Get(_ context.Context, id string) (*ports.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.rows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Save(_ context.Context, s *ports.Session, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[s.ID] = *s
	return nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func newManager() (*SessionManager, *memUsers, *memSessions) {
	users := newMemUsers()
	store := &memSessions{rows: map[string]ports.Session{}}
	return &SessionManager{Store: store, Users: users, TTL: time.Hour}, users, store
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestSessionLoginRoundTrip(t *testing.T) {
	m, users, store := newManager()
	u := &domain.User{Username: "ops", Email: "ops@example.com"}
	require.NoError(t, users.Create(context.Background(), u))

	// anonymous session with a flash, then login rotates it
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, m.Flash(rec, req, "welcome"))
	anon := sessionCookie(t, rec)

	req = httptest.NewRequest(http.MethodPost, "/login/", nil)
	req.AddCookie(anon)
	loginRec := httptest.NewRecorder()
	var loggedIn *http.Request
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		loggedIn, err = m.Login(w, r, u)
		require.NoError(t, err)
	})).ServeHTTP(loginRec, req)

	assert.Equal(t, u, UserFrom(loggedIn.Context()))
	_, err := store.Get(context.Background(), anon.Value)
	assert.ErrorIs(t, err, domain.ErrNotFound, "old session destroyed")

	fresh := sessionCookie(t, loginRec)
	require.NotEqual(t, anon.Value, fresh.Value, "login rotates the session id")

	rec2 := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/profile/", nil)
	req.AddCookie(fresh)
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := UserFrom(r.Context())
		require.NotNil(t, got)
		assert.Equal(t, "ops", got.Username)
		assert.Equal(t, []string{"welcome"}, m.PopFlashes(w, r))
		assert.Empty(t, m.PopFlashes(w, r))
	})).ServeHTTP(rec2, req)
}

func TestSessionUnknownCookieIsAnonymous(t *testing.T) {
	m, _, _ := newManager()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "missing"})

	called := false
	m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Nil(t, UserFrom(r.Context()))
		assert.Nil(t, SessionFrom(r.Context()))
	})).ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestCheckCSRF(t *testing.T) {
	m, _, _ := newManager()
	rec := httptest.NewRecorder()
	s, req, err := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Same(t, s, SessionFrom(req.Context()))

	form := url.Values{CSRFField: {s.CSRFToken}}
	post := httptest.NewRequest(http.MethodPost, "/vehicle/new/", strings.NewReader(form.Encode()))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	post = post.WithContext(req.Context())
	assert.True(t, m.CheckCSRF(post))

	bad := httptest.NewRequest(http.MethodPost, "/vehicle/new/", nil)
	bad.Header.Set(CSRFHeader, "nope")
	bad = bad.WithContext(req.Context())
	assert.False(t, m.CheckCSRF(bad))

	noSession := httptest.NewRequest(http.MethodPost, "/vehicle/new/", nil)
	assert.False(t, m.CheckCSRF(noSession))
}

func TestLogoutExpiresCookie(t *testing.T) {
	m, _, store := newManager()
	rec := httptest.NewRecorder()
	s, req, err := m.Ensure(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	out := httptest.NewRecorder()
	require.NoError(t, m.Logout(out, req))
	assert.Equal(t, -1, sessionCookie(t, out).MaxAge)
	_, err = store.Get(context.Background(), s.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
