package session

import (
	"log/slog"

	"github.com/dmitrymomot/geodash/pkg/kv"
)

// DefaultStorageKey is the key the session snapshot is stored under.
const DefaultStorageKey = "auth-storage"

// DefaultForgotPasswordMessage is returned when the backend sends no message.
const DefaultForgotPasswordMessage = "Check your email for reset instructions."

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStorage enables persistence of the session snapshot.
func WithStorage(s kv.Store) Option {
	return func(m *Manager) {
		m.storage = s
	}
}

// WithStorageKey overrides DefaultStorageKey.
func WithStorageKey(key string) Option {
	return func(m *Manager) {
		if key != "" {
			m.storageKey = key
		}
	}
}

// WithPersistCSRFToken controls whether the CSRF token is part of the stored
// snapshot. On by default; when disabled a restored session refetches the
// token or falls back to the csrftoken cookie.
func WithPersistCSRFToken(enabled bool) Option {
	return func(m *Manager) {
		m.persistToken = enabled
	}
}
