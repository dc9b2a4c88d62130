package todo

import (
	"sync"
)

// IdentityProvider resolves session tokens and ends sessions
type IdentityProvider interface {
	UserIDForToken(token string) (string, bool)
	SignOut(token string)
}

// Manager owns one coordinator per authenticated session
type Manager struct {
	store    ItemStore
	sched    Scheduler
	codes    *Allocator
	identity IdentityProvider

	mu       sync.Mutex
	sessions map[string]*Coordinator // by session token
}

// NewManager creates a session manager with its collaborators
func NewManager(st ItemStore, sched Scheduler, codes *Allocator, identity IdentityProvider) *Manager {
	return &Manager{
		store:    st,
		sched:    sched,
		codes:    codes,
		identity: identity,
		sessions: make(map[string]*Coordinator),
	}
}

// Coordinator returns the coordinator for a session token, creating it on
// first use. Returns ErrNotAuthenticated if the token does not resolve.
func (m *Manager) Coordinator(token string) (*Coordinator, error) {
	userID, ok := m.identity.UserIDForToken(token)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if c, ok := m.sessions[token]; ok {
		return c, nil
	}

	c := NewCoordinator(userID, token, m.store, m.sched, m.codes, m.identity)
	m.sessions[token] = c
	return c, nil
}

// Logout tears down the session's coordinator and ends the session.
// Unknown tokens still get signed out of the identity provider.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	c := m.sessions[token]
	delete(m.sessions, token)
	m.mu.Unlock()

	if c != nil {
		c.Logout()
		return
	}
	m.identity.SignOut(token)
}

// Shutdown tears down all coordinators without ending their sessions.
// Session tokens stay valid across restarts; in-process alarms do not.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*Coordinator, 0, len(m.sessions))
	for _, c := range m.sessions {
		sessions = append(sessions, c)
	}
	m.sessions = make(map[string]*Coordinator)
	m.mu.Unlock()

	for _, c := range sessions {
		c.shutdown()
	}
}
