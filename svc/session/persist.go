package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrymomot/geodash/pkg/logger"
	"github.com/dmitrymomot/geodash/pkg/store"
)

const saveTimeout = 5 * time.Second

// snapshot is the persisted subset of AuthState.
type snapshot struct {
	User            *User   `json:"user"`
	IsAuthenticated bool    `json:"isAuthenticated"`
	CSRFToken       *string `json:"csrfToken"`
}

// encode builds the snapshot bytes for s.
func (m *Manager) encode(s AuthState) ([]byte, error) {
	snap := snapshot{User: s.User, IsAuthenticated: s.IsAuthenticated}
	if m.persistToken && s.CSRFToken != "" {
		tok := s.CSRFToken
		snap.CSRFToken = &tok
	}
	return json.Marshal(snap)
}

// save runs as a store subscriber; identical snapshots are not rewritten.
func (m *Manager) save(s AuthState) {
	data, err := m.encode(s)
	if err != nil {
		m.log.Error("encode session snapshot", logger.Error(err))
		return
	}

	m.saveMu.Lock()
	defer m.saveMu.Unlock()
	if bytes.Equal(data, m.lastSaved) {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := m.storage.Set(ctx, m.storageKey, data); err != nil {
		m.log.Error("persist session snapshot", logger.Error(err))
		return
	}
	m.lastSaved = data
}

// Restore loads the persisted snapshot into the state. It is a no-op when
// nothing is stored or the session already left the anonymous phase.
func (m *Manager) Restore(ctx context.Context) error {
	if m.storage == nil {
		return nil
	}
	data, ok, err := m.storage.Get(ctx, m.storageKey)
	if err != nil {
		return fmt.Errorf("session: load snapshot: %w", err)
	}
	if !ok {
		return nil
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("session: decode snapshot: %w", err)
	}

	if cur := m.state.Get(); cur.Phase != PhaseAnonymous {
		m.log.WarnContext(ctx, "skip restore of active session", logger.Phase(string(cur.Phase)))
		return nil
	}

	m.saveMu.Lock()
	m.lastSaved = data
	m.saveMu.Unlock()

	patch := AuthPatch{
		User:            store.Set(snap.User),
		IsAuthenticated: store.Set(snap.IsAuthenticated),
	}
	if snap.CSRFToken != nil {
		patch.CSRFToken = store.Set(*snap.CSRFToken)
	}
	if snap.IsAuthenticated && snap.User != nil {
		m.transition(TriggerRestore, patch)
	} else {
		m.state.Update(patch)
	}

	m.log.DebugContext(ctx, "session restored", logger.Phase(string(m.state.Get().Phase)))
	return nil
}
