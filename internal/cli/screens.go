package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/gate"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errNotShown is returned by commands whose screen the gate did not let
// through.
var errNotShown = errors.New("screen not available")

// Navigate asks the gate for requested and renders whatever it resolves to.
// It returns errNotShown when the user ended up somewhere else.
func (a *App) Navigate(ctx context.Context, requested gate.Screen) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if shown := a.show(requested); shown != requested {
		return errNotShown
	}
	return nil
}

// show must be called with a.mu held.
func (a *App) show(requested gate.Screen) gate.Screen {
	st := a.auth.State()
	shown, ok := gate.Resolve(st, requested)
	if !ok {
		a.current = requested
		a.println("Loading...")
		return ""
	}
	if shown != requested {
		a.log.Debug(context.Background(), "navigation redirected", "from", string(requested), "to", string(shown))
	}
	a.current = shown

	switch shown {
	case gate.Login:
		a.println("== Sign in ==  type 'login' to sign in or 'register' to create an account")
	case gate.Register:
		a.println("== Create account ==  type 'register' to sign up or 'login' if you already have one")
	case gate.Home:
		a.println(fmt.Sprintf("== Home ==  Welcome, %s!", displayName(st)))
	case gate.Profile:
		a.println("== Profile ==")
		a.println(fmt.Sprintf("Name:  %s", st.User.Name))
		a.println(fmt.Sprintf("Email: %s", st.User.Email))
		a.println("Type 'logout' to sign out.")
	}
	return shown
}

// Login shows the sign-in form. Empty fields are rejected here without
// calling the session manager.
func (a *App) Login(ctx context.Context) error {
	if err := a.Navigate(ctx, gate.Login); err != nil {
		return err
	}

	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if email == "" || len(password) == 0 {
		a.println("Error: please fill in all fields")
		return common.ErrInvalidInput
	}

	res := a.auth.SignIn(ctx, email, string(password))
	if !res.Success {
		a.println("Error:", res.Message)
		return res.Err
	}
	return nil
}

// Register shows the sign-up form.
func (a *App) Register(ctx context.Context) error {
	if err := a.Navigate(ctx, gate.Register); err != nil {
		return err
	}

	name, err := getSimpleText(a.reader, "Enter name", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.auth.SignUp(ctx, email, string(password), name)
	if !res.Success {
		a.println("Error:", res.Message)
		return res.Err
	}
	return nil
}

// Logout signs out from anywhere. The state change brings the user back to
// the login screen.
func (a *App) Logout(ctx context.Context) error {
	a.auth.SignOut(ctx)
	return nil
}

func (a *App) Home(ctx context.Context) error {
	return a.Navigate(ctx, gate.Home)
}

func (a *App) Profile(ctx context.Context) error {
	return a.Navigate(ctx, gate.Profile)
}
