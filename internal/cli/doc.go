// Package cli is the interactive terminal front-end of sessionkeeper.
//
// It plays the part of the app's screens: Login, Register, Home and
// Profile. Every navigation goes through gate.Decide, and the current
// screen is re-evaluated whenever the session manager publishes a new
// AuthState, so signing in lands on Home and signing out lands on Login.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits
// or input ends.
package cli
