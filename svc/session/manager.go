package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/geodash/pkg/kv"
	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/store"
)

// Backend is the remote side of the session protocol. *Client implements it.
type Backend interface {
	FetchCSRFToken(ctx context.Context) (string, error)
	CookieToken() (string, error)
	Register(ctx context.Context, token string, in Registration) (*User, error)
	Login(ctx context.Context, token string, in Credentials) (*User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
}

// Manager owns the session state and drives the backend protocol.
// Operations may run concurrently; they are not sequenced, so the
// response that resolves last determines the final state.
type Manager struct {
	api   Backend
	state *store.Store[AuthState]
	log   *slog.Logger

	flight singleflight.Group

	storage      kv.Store
	storageKey   string
	persistToken bool
	saveMu       sync.Mutex
	lastSaved    []byte
	unsubscribe  func()
}

// NewManager creates a manager in the anonymous phase.
func NewManager(api Backend, opts ...Option) *Manager {
	m := &Manager{
		api:          api,
		state:        store.New(InitialState()),
		log:          logger.Discard(),
		storageKey:   DefaultStorageKey,
		persistToken: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(logger.Component("session"))
	if m.storage != nil {
		m.unsubscribe = m.state.Subscribe(m.save)
	}
	return m
}

// State returns the current session state.
func (m *Manager) State() AuthState {
	return m.state.Get()
}

// Subscribe registers fn for every committed state change.
func (m *Manager) Subscribe(fn func(AuthState)) func() {
	return m.state.Subscribe(fn)
}

// Close detaches persistence.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

// EnsureCSRFToken fetches a fresh token and caches it. Concurrent callers
// share one request. On failure the state is left untouched.
func (m *Manager) EnsureCSRFToken(ctx context.Context) (string, error) {
	v, err, _ := m.flight.Do("csrf", func() (any, error) {
		token, err := m.api.FetchCSRFToken(ctx)
		if err != nil {
			return "", err
		}
		if token != "" {
			m.state.Update(AuthPatch{CSRFToken: store.Set(token)})
		}
		return token, nil
	})
	if err != nil {
		m.log.WarnContext(ctx, "fetch csrf token", logger.Error(err))
		observe("csrf", err)
		return "", err
	}
	observe("csrf", nil)
	return v.(string), nil
}

// token returns the cached token, falling back to the csrftoken cookie.
func (m *Manager) token() (string, error) {
	if tok := m.state.Get().CSRFToken; tok != "" {
		return tok, nil
	}
	tok, err := m.api.CookieToken()
	if err != nil {
		return "", errors.Join(ErrMissingCSRFToken, err)
	}
	return tok, nil
}

// prepare refreshes the token and resolves the one to send.
// A refresh failure is not fatal as long as some token is available.
func (m *Manager) prepare(ctx context.Context) (string, error) {
	_, _ = m.EnsureCSRFToken(ctx)
	return m.token()
}

// Register creates an account and signs in. On failure the session is
// cleared.
func (m *Manager) Register(ctx context.Context, in Registration) error {
	const op = "register"
	m.transition(TriggerBegin, AuthPatch{})

	token, err := m.prepare(ctx)
	if err != nil {
		return m.fail(ctx, op, err)
	}
	user, err := m.api.Register(ctx, token, in)
	if err != nil {
		return m.fail(ctx, op, err)
	}
	m.succeed(ctx, op, user)
	return nil
}

// Login signs in with email and password. On failure the session is cleared.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	const op = "login"
	m.transition(TriggerBegin, AuthPatch{})

	token, err := m.prepare(ctx)
	if err != nil {
		return m.fail(ctx, op, err)
	}
	user, err := m.api.Login(ctx, token, Credentials{Email: email, Password: password})
	if err != nil {
		return m.fail(ctx, op, err)
	}
	m.succeed(ctx, op, user)
	return nil
}

// Logout ends the session. The session is checked first; an expired session
// is cleared locally without calling the logout endpoint.
func (m *Manager) Logout(ctx context.Context) error {
	const op = "logout"
	log := m.log.With(logger.Operation(op))

	if !m.state.Get().IsAuthenticated {
		log.WarnContext(ctx, "logout without session")
		observe(op, ErrNotAuthenticated)
		return ErrNotAuthenticated
	}

	token, err := m.prepare(ctx)
	if err != nil {
		log.ErrorContext(ctx, "logout aborted", logger.Error(err))
		observe(op, err)
		return err
	}

	if _, err := m.api.CurrentUser(ctx, token); err != nil {
		var apiErr *APIError
		switch {
		case errors.Is(err, ErrSessionExpired):
			m.transition(TriggerExpire, clearedSession())
			log.InfoContext(ctx, "session already expired")
			observe(op, err)
			return err
		case !errors.As(err, &apiErr) && !errors.Is(err, ErrUnexpectedResponse):
			log.ErrorContext(ctx, "session check failed", logger.Error(err))
			observe(op, err)
			return err
		}
		// Any other answer from the server: proceed with logout.
	}

	if err := m.api.Logout(ctx, token); err != nil {
		log.ErrorContext(ctx, "logout failed", logger.Error(err))
		observe(op, err)
		return err
	}

	m.transition(TriggerSignOut, clearedSession())
	log.InfoContext(ctx, "logged out")
	observe(op, nil)
	return nil
}

// FetchCurrentUser refreshes the user from the backend. Any failure,
// including a missing token, leaves the session anonymous.
func (m *Manager) FetchCurrentUser(ctx context.Context) error {
	const op = "current_user"

	token, err := m.prepare(ctx)
	if err != nil {
		return m.fail(ctx, op, err)
	}
	user, err := m.api.CurrentUser(ctx, token)
	if err != nil {
		return m.fail(ctx, op, err)
	}
	m.succeed(ctx, op, user)
	return nil
}

// ForgotPassword requests a reset email. Session state is not touched.
func (m *Manager) ForgotPassword(ctx context.Context, email string) (string, error) {
	const op = "forgot_password"
	msg, err := m.api.ForgotPassword(ctx, email)
	observe(op, err)
	if err != nil {
		m.log.WarnContext(ctx, "forgot password failed", logger.Operation(op), logger.Error(err))
		return "", err
	}
	if msg == "" {
		msg = DefaultForgotPasswordMessage
	}
	return msg, nil
}

// succeed records a signed-in user.
func (m *Manager) succeed(ctx context.Context, op string, user *User) {
	m.transition(TriggerSucceed, signedIn(user))
	m.log.InfoContext(ctx, "authenticated", logger.Operation(op), logger.UserID(user.Email))
	observe(op, nil)
}

// fail clears the user and returns err.
func (m *Manager) fail(ctx context.Context, op string, err error) error {
	m.transition(TriggerFail, signedOut())
	m.log.WarnContext(ctx, "operation failed", logger.Operation(op), logger.Error(err))
	observe(op, err)
	return err
}

// transition applies patch and moves the phase in one atomic update.
func (m *Manager) transition(trigger Trigger, patch AuthPatch) {
	m.state.UpdateFunc(func(s AuthState) AuthState {
		next, err := lifecycle.Next(s.Phase, trigger)
		if err != nil {
			m.log.Warn("ignored lifecycle event",
				logger.Phase(string(s.Phase)),
				slog.String("trigger", string(trigger)),
				logger.Error(err),
			)
			next = s.Phase
		}
		s = patch.Apply(s)
		s.Phase = next
		return s
	})
}
