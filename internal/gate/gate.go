// Package gate decides which screens are reachable in a given AuthState.
// It keeps no state; callers evaluate Decide on every navigation.
package gate

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/session"
)

// Screen is a route key. The "(auth)" group is public, "(tabs)" is private.
type Screen string

const (
	Login    Screen = "/(auth)/login"
	Register Screen = "/(auth)/register"
	Home     Screen = "/(tabs)/home"
	Profile  Screen = "/(tabs)/profile"
)

// Screens lists every known route in menu order.
var Screens = []Screen{Login, Register, Home, Profile}

// Public reports whether s is reachable without a session.
func (s Screen) Public() bool { return strings.HasPrefix(string(s), "/(auth)/") }

// Name is the last path segment, e.g. "login".
func (s Screen) Name() string { return string(s)[strings.LastIndex(string(s), "/")+1:] }

// ParseScreen accepts a full route key or its short name.
func ParseScreen(v string) (Screen, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, s := range Screens {
		if v == string(s) || v == s.Name() {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown screen %q", v)
}

// Decision is the outcome of one gate evaluation. When Placeholder is set
// neither Allow nor RedirectTo is meaningful.
type Decision struct {
	Allow       bool
	RedirectTo  Screen
	Placeholder bool
}

// Decide is the routing rule:
//   - loading: show a placeholder, do not redirect;
//   - unauthenticated: public screens only, anything else goes to Login;
//   - authenticated: private screens only, public ones go to Home.
func Decide(state session.AuthState, requested Screen) Decision {
	switch state.Status {
	case session.StatusAuthenticated:
		if requested.Public() {
			return Decision{RedirectTo: Home}
		}
		return Decision{Allow: true}
	case session.StatusUnauthenticated:
		if requested.Public() {
			return Decision{Allow: true}
		}
		return Decision{RedirectTo: Login}
	default:
		return Decision{Placeholder: true}
	}
}

// Resolve returns the screen that ends up shown for requested, following
// at most one redirect. ok is false while the state is loading.
func Resolve(state session.AuthState, requested Screen) (shown Screen, ok bool) {
	d := Decide(state, requested)
	switch {
	case d.Placeholder:
		return "", false
	case d.Allow:
		return requested, true
	default:
		return d.RedirectTo, true
	}
}
