// Package identity authenticates dashboard users against an identity provider
// and broadcasts sign-in and sign-out events.
package identity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password
var ErrInvalidCredentials = errors.New("e-mail ou senha inválidos")

// User is an authenticated account
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Provider is the identity collaborator
type Provider interface {
	// SignInWithPassword returns the user or ErrInvalidCredentials
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	// SignOut ends the provider-side session of the user, if any
	SignOut(ctx context.Context, userID string) error
}

// ── session events ──

// EventType distinguishes session events
type EventType string

const (
	SignedIn  EventType = "SIGNED_IN"
	SignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to subscribers on every session change
type Event struct {
	Type EventType
	User User
	At   time.Time
}

// Notifier fans session events out to subscribers
type Notifier struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

// NewNotifier creates a notifier with no subscribers
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(Event))}
}

// Subscribe registers fn and returns a function that removes it
func (n *Notifier) Subscribe(fn func(Event)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.next
	n.next++
	n.subs[id] = fn
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
	}
}

// Publish calls every subscriber synchronously
func (n *Notifier) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	n.mu.RLock()
	fns := make([]func(Event), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}
