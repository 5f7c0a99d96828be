// Package session mirrors the identity provider's session state into a
// single authenticated signal.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/identity"
)

// Gate is the sole writer of local session belief. It reacts to provider
// notifications and nothing else; screens read it, they never write it.
// Events are applied in delivery order — each one is a full authoritative
// snapshot, so no coalescing is allowed.
type Gate struct {
	logger *slog.Logger

	mu        sync.Mutex
	session   *domain.Session
	listeners []gateListener
}

type gateListener struct {
	id uuid.UUID
	fn func(authenticated bool)
}

func NewGate(logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{logger: logger}
}

// Bind subscribes the gate to the provider's auth-state stream and returns
// the unsubscribe handle. Call the handle on teardown.
func (g *Gate) Bind(provider identity.Provider) (unsubscribe func()) {
	return provider.OnAuthStateChange(func(event identity.AuthEvent, session *domain.Session) {
		g.apply(event, session)
	})
}

func (g *Gate) apply(event identity.AuthEvent, session *domain.Session) {
	g.mu.Lock()
	g.session = session
	authenticated := session != nil
	listeners := make([]gateListener, len(g.listeners))
	copy(listeners, g.listeners)
	g.mu.Unlock()

	g.logger.Info("session state changed", "event", string(event), "authenticated", authenticated)

	for _, l := range listeners {
		l.fn(authenticated)
	}
}

// Authenticated reports whether a session is currently held.
func (g *Gate) Authenticated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session != nil
}

// Session returns the held session, nil when unauthenticated.
func (g *Gate) Session() *domain.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// User returns the signed-in user, nil when unauthenticated.
func (g *Gate) User() *domain.User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.session == nil {
		return nil
	}
	u := g.session.User
	return &u
}

// Subscribe registers fn for authenticated-state changes and returns its
// unsubscribe handle.
func (g *Gate) Subscribe(fn func(authenticated bool)) (unsubscribe func()) {
	id := uuid.New()

	g.mu.Lock()
	g.listeners = append(g.listeners, gateListener{id: id, fn: fn})
	g.mu.Unlock()

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		for i, l := range g.listeners {
			if l.id == id {
				g.listeners = append(g.listeners[:i], g.listeners[i+1:]...)
				return
			}
		}
	}
}
