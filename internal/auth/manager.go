package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"taskrush/internal/service"
)

// Manager owns the current session for the process. Init fetches the
// session and subscribes to auth changes; Close unsubscribes.
type Manager struct {
	auth   service.Auth
	logger *slog.Logger

	// initMu serializes Init so concurrent calls subscribe once.
	initMu sync.Mutex

	mu          sync.RWMutex
	session     *service.Session
	initialized bool
	unsubscribe func()

	listeners Notifier
}

// NewManager creates a Manager over a.
func NewManager(a service.Auth, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{auth: a, logger: logger}
}

// Init loads the current session and starts following auth changes.
// Calling Init again before Close is a no-op.
func (m *Manager) Init(ctx context.Context) error {
	m.initMu.Lock()
	defer m.initMu.Unlock()

	m.mu.RLock()
	initialized := m.initialized
	m.mu.RUnlock()
	if initialized {
		return nil
	}

	session, err := m.auth.Session(ctx)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	m.mu.Lock()
	m.session = session
	m.initialized = true
	m.unsubscribe = m.auth.OnAuthStateChange(m.handle)
	m.mu.Unlock()

	m.logger.Debug("auth initialized", "signed_in", session != nil)
	m.listeners.Notify(service.AuthInitialSession, session)
	return nil
}

// Close stops following auth changes.
func (m *Manager) Close() {
	m.mu.Lock()
	unsubscribe := m.unsubscribe
	m.unsubscribe = nil
	m.initialized = false
	m.mu.Unlock()
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Session returns the current session, or nil.
func (m *Manager) Session() *service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// RequireUser returns the current session or service.ErrNotAuthenticated.
func (m *Manager) RequireUser() (*service.Session, error) {
	s := m.Session()
	if s == nil {
		return nil, service.ErrNotAuthenticated
	}
	return s, nil
}

// Subscribe registers fn for auth changes seen by the manager.
func (m *Manager) Subscribe(fn service.AuthListener) (unsubscribe func()) {
	return m.listeners.OnAuthStateChange(fn)
}

// SignOut ends the session remotely.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.auth.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (m *Manager) handle(event service.AuthEvent, session *service.Session) {
	m.mu.Lock()
	m.session = session
	m.mu.Unlock()
	m.logger.Debug("auth state changed", "event", string(event))
	m.listeners.Notify(event, session)
}
