package gate

import (
	"testing"

	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	loading = session.Loading()
	anon    = session.Unauthenticated()
	ana     = session.Authenticated(models.User{Email: "a@x.com", Name: "Ana"})
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name   string
		state  session.AuthState
		screen Screen
		want   Decision
	}{
		{"loading login", loading, Login, Decision{Placeholder: true}},
		{"loading home", loading, Home, Decision{Placeholder: true}},
		{"anon login", anon, Login, Decision{Allow: true}},
		{"anon register", anon, Register, Decision{Allow: true}},
		{"anon home", anon, Home, Decision{RedirectTo: Login}},
		{"anon profile", anon, Profile, Decision{RedirectTo: Login}},
		{"auth login", ana, Login, Decision{RedirectTo: Home}},
		{"auth register", ana, Register, Decision{RedirectTo: Home}},
		{"auth home", ana, Home, Decision{Allow: true}},
		{"auth profile", ana, Profile, Decision{Allow: true}},
		{"anon unknown private", anon, Screen("/(tabs)/settings"), Decision{RedirectTo: Login}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.state, tt.screen))
		})
	}
}

func TestDecide_SameInputSameDecision(t *testing.T) {
	for _, st := range []session.AuthState{loading, anon, ana} {
		for _, s := range Screens {
			first := Decide(st, s)
			for i := 0; i < 5; i++ {
				assert.Equal(t, first, Decide(st, s))
			}
		}
	}
}

// A redirect target must itself be allowed, so the gate never bounces.
func TestDecide_RedirectTargetIsAllowed(t *testing.T) {
	for _, st := range []session.AuthState{anon, ana} {
		for _, s := range Screens {
			d := Decide(st, s)
			if d.Allow {
				continue
			}
			assert.True(t, Decide(st, d.RedirectTo).Allow, "%s -> %s", s, d.RedirectTo)
		}
	}
}

func TestResolve(t *testing.T) {
	_, ok := Resolve(loading, Home)
	assert.False(t, ok)

	shown, ok := Resolve(anon, Profile)
	require.True(t, ok)
	assert.Equal(t, Login, shown)

	shown, ok = Resolve(ana, Profile)
	require.True(t, ok)
	assert.Equal(t, Profile, shown)
}

func TestParseScreen(t *testing.T) {
	s, err := ParseScreen("home")
	require.NoError(t, err)
	assert.Equal(t, Home, s)

	s, err = ParseScreen(" /(auth)/Register ")
	require.NoError(t, err)
	assert.Equal(t, Register, s)

	_, err = ParseScreen("settings")
	assert.Error(t, err)
}

func TestScreen_PublicAndName(t *testing.T) {
	assert.True(t, Login.Public())
	assert.True(t, Register.Public())
	assert.False(t, Home.Public())
	assert.False(t, Profile.Public())
	assert.Equal(t, "profile", Profile.Name())
}
