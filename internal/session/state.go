package session

import (
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
)

// AuthStatus is the coarse sign-in state seen by screens and the gate.
type AuthStatus int

const (
	StatusLoading AuthStatus = iota
	StatusUnauthenticated
	StatusAuthenticated
)

func (s AuthStatus) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// AuthState is the in-memory projection of the persisted session.
// User is set only when Status is StatusAuthenticated.
type AuthState struct {
	Status AuthStatus
	User   *models.User
}

func Loading() AuthState         { return AuthState{Status: StatusLoading} }
func Unauthenticated() AuthState { return AuthState{Status: StatusUnauthenticated} }

func Authenticated(u models.User) AuthState {
	return AuthState{Status: StatusAuthenticated, User: &u}
}

func (s AuthState) IsAuthenticated() bool { return s.Status == StatusAuthenticated }

// Listener receives the state that was just published.
type Listener func(AuthState)

type subscription struct {
	id int
	fn Listener
}

// AuthStateCell holds the current AuthState and notifies listeners on every
// Set. Listeners run synchronously on the publishing goroutine, in the order
// they subscribed, and must not call Set themselves.
type AuthStateCell struct {
	mu     sync.RWMutex
	state  AuthState
	nextID int
	subs   []subscription
}

// NewAuthStateCell starts in the loading state.
func NewAuthStateCell() *AuthStateCell {
	return &AuthStateCell{state: Loading()}
}

func (c *AuthStateCell) Get() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn. The returned func removes it and is safe to call
// more than once.
func (c *AuthStateCell) Subscribe(fn Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.subs = append(c.subs, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			for i, s := range c.subs {
				if s.id == id {
					c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Set publishes s and then calls every listener with it.
func (c *AuthStateCell) Set(s AuthState) {
	c.mu.Lock()
	c.state = s
	subs := make([]subscription, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}
