// ABOUTME: Session lifecycle manager driving startup validation, login, and logout
// ABOUTME: Owns the authenticated state and keeps the credential store consistent with it

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/markalston/fieldreport/internal/models"
)

// State is a session lifecycle state
type State int

const (
	Uninitialized State = iota
	Validating
	Authenticated
	Unauthenticated
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Validating:
		return "validating"
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrDisposed is returned by every operation after Dispose
var ErrDisposed = errors.New("session manager disposed")

// LoginError is a failed login attempt, carrying a user-facing title
type LoginError struct {
	Title string
	Err   error
}

func (e *LoginError) Error() string {
	return fmt.Sprintf("%s: %v", e.Title, e.Err)
}

func (e *LoginError) Unwrap() error {
	return e.Err
}

// Store persists credentials; satisfied by *credstore.Store
type Store interface {
	Snapshot() models.Credentials
	Replace(models.Credentials) error
	SetTokens(access, refresh string) error
	ClearTokens() error
	SetUser(*models.UserProfile) error
	ClearUser() error
	SetRememberMe(bool) error
	RememberMe() bool
}

// Backend is the subset of the API client the session needs
type Backend interface {
	Login(ctx context.Context, username, password string) (*models.TokenPair, error)
	FetchProfile(ctx context.Context) (*models.UserProfile, error)
	RefreshAccessToken(ctx context.Context) (*models.AccessToken, error)
}

// Session is a read-only view of the current session
type Session struct {
	AccessToken   string
	RefreshToken  string
	User          *models.UserProfile
	RememberMe    bool
	Authenticated bool
	Loading       bool
	State         State
}

// Manager owns the session. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	store    Store
	backend  Backend
	state    State
	user     *models.UserProfile
	loading  bool
	disposed bool
}

// New creates a manager in the Uninitialized state
func New(store Store, backend Backend) *Manager {
	return &Manager{store: store, backend: backend}
}

// Initialize runs startup validation. The cached token is re-validated by
// fetching the profile; a rejected token clears stored tokens, and the
// cached user too unless remember-me is on. Only the first call does work;
// later calls return the current state.
func (m *Manager) Initialize(ctx context.Context) (State, error) {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return Uninitialized, ErrDisposed
	}
	if m.state != Uninitialized {
		state := m.state
		m.mu.Unlock()
		return state, nil
	}
	m.state = Validating
	m.loading = true
	m.mu.Unlock()

	creds := m.store.Snapshot()
	if creds.AccessToken == "" || creds.User == nil {
		slog.Debug("No cached session", "has_token", creds.AccessToken != "", "has_user", creds.User != nil)
		return m.finish(Unauthenticated, nil), nil
	}

	profile, err := m.backend.FetchProfile(ctx)
	if err != nil {
		slog.Info("Cached session rejected", "error", err, "remember_me", creds.RememberMe)
		cleanup := m.store.ClearTokens()
		if !creds.RememberMe {
			cleanup = errors.Join(cleanup, m.store.ClearUser())
		}
		if cleanup != nil {
			slog.Warn("Failed to clear stale credentials", "error", cleanup)
		}
		return m.finish(Unauthenticated, nil), fmt.Errorf("session validation failed: %w", err)
	}

	if err := m.store.SetUser(profile); err != nil {
		slog.Warn("Failed to cache profile", "error", err)
	}
	return m.finish(Authenticated, profile), nil
}

// Login authenticates, applies remember, and loads the profile. If the
// profile cannot be loaded the credential record is restored to what it
// was before the attempt.
func (m *Manager) Login(ctx context.Context, username, password string, remember bool) error {
	if err := m.begin(); err != nil {
		return err
	}

	tokens, err := m.backend.Login(ctx, username, password)
	if err != nil {
		m.end()
		return &LoginError{Title: "Authentication Failed", Err: err}
	}

	prev := m.store.Snapshot()
	if err := m.store.SetTokens(tokens.Access, tokens.Refresh); err != nil {
		m.end()
		return fmt.Errorf("failed to store tokens: %w", err)
	}
	if err := m.store.SetRememberMe(remember); err != nil {
		m.rollback(prev)
		m.end()
		return fmt.Errorf("failed to store remember-me: %w", err)
	}

	profile, err := m.backend.FetchProfile(ctx)
	if err != nil {
		m.rollback(prev)
		m.end()
		return &LoginError{Title: "Authentication Failed", Err: err}
	}
	if err := m.store.SetUser(profile); err != nil {
		m.rollback(prev)
		m.end()
		return fmt.Errorf("failed to cache profile: %w", err)
	}

	slog.Info("Logged in", "username", profile.Username, "remember_me", remember)
	m.finish(Authenticated, profile)
	return nil
}

// Logout clears tokens unconditionally and the cached user unless
// remember-me is on. It is idempotent.
func (m *Manager) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}

	err := m.store.ClearTokens()
	if !m.store.RememberMe() {
		err = errors.Join(err, m.store.ClearUser())
	}
	m.user = nil
	m.state = Unauthenticated
	if err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}
	return nil
}

// SetRememberMe persists the flag regardless of state
func (m *Manager) SetRememberMe(remember bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	return m.store.SetRememberMe(remember)
}

// Refresh exchanges the stored refresh token for a new access token.
// Nothing calls it automatically.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	disposed := m.disposed
	m.mu.Unlock()
	if disposed {
		return ErrDisposed
	}

	if _, err := m.backend.RefreshAccessToken(ctx); err != nil {
		return err
	}
	slog.Debug("Access token refreshed")
	return nil
}

// Snapshot returns a copy of the current session
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	creds := m.store.Snapshot()
	s := Session{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		RememberMe:   creds.RememberMe,
		Loading:      m.loading,
		State:        m.state,
	}
	if m.user != nil {
		u := *m.user
		s.User = &u
	}
	s.Authenticated = m.state == Authenticated && s.AccessToken != "" && s.User != nil
	return s
}

// State returns the current lifecycle state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// RememberedUsername returns the cached username when remember-me is on
func (m *Manager) RememberedUsername() string {
	creds := m.store.Snapshot()
	if !creds.RememberMe || creds.User == nil {
		return ""
	}
	return creds.User.Username
}

// AccessTokenExpiry reads the exp claim of a JWT access token without
// verifying it. ok is false for opaque tokens or tokens without exp.
func (m *Manager) AccessTokenExpiry() (exp time.Time, ok bool) {
	token := m.store.Snapshot().AccessToken
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Dispose closes the manager. Persisted credentials are left as they are.
func (m *Manager) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.loading = false
}

func (m *Manager) begin() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return ErrDisposed
	}
	m.loading = true
	return nil
}

func (m *Manager) end() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if m.state != Authenticated {
		m.state = Unauthenticated
	}
}

func (m *Manager) finish(state State, user *models.UserProfile) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
	m.user = user
	m.loading = false
	return state
}

func (m *Manager) rollback(prev models.Credentials) {
	if err := m.store.Replace(prev); err != nil {
		slog.Warn("Failed to restore credentials after failed login", "error", err)
	}
}
