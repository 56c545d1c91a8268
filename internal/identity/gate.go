package identity

import (
	"context"
	"sync"
)

// Gate holds a session that starts out resolving. Readers either wait for
// resolution or see StateResolving, which allows nothing.
type Gate struct {
	mu      sync.Mutex
	session Session
	done    chan struct{}
	err     error
}

// NewGate returns a gate in the resolving state.
func NewGate() *Gate {
	return &Gate{
		session: Session{State: StateResolving},
		done:    make(chan struct{}),
	}
}

// Resolve runs r for token and settles the gate with the result. It returns
// the resolver's error, which is also kept for Err.
func (g *Gate) Resolve(ctx context.Context, r Resolver, token string) error {
	s, err := r.Resolve(ctx, token)
	if err != nil {
		s = Anonymous
	}
	g.settle(s, err)
	return err
}

// Set settles the gate with s. Only the first call has any effect.
func (g *Gate) Set(s Session) {
	g.settle(s, nil)
}

func (g *Gate) settle(s Session, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	select {
	case <-g.done:
		return
	default:
	}
	if s.State == StateResolving {
		s = Anonymous
	}
	g.session = s
	g.err = err
	close(g.done)
}

// Session returns the current session without blocking.
func (g *Gate) Session() Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

// Err returns the resolution error, if any.
func (g *Gate) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Wait blocks until the gate settles or ctx is done.
func (g *Gate) Wait(ctx context.Context) (Session, error) {
	select {
	case <-g.done:
		return g.Session(), nil
	case <-ctx.Done():
		return Session{State: StateResolving}, ctx.Err()
	}
}

// Allows reports whether role-gated content may be shown now.
func (g *Gate) Allows(role Role) bool {
	return g.Session().Allows(role)
}
