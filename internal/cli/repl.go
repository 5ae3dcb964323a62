package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/sessionkeeper/internal/gate"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Home(ctx context.Context) error
	Profile(ctx context.Context) error
	Navigate(ctx context.Context, requested gate.Screen) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// The loop exits at end of input or on "exit"/"quit".
//
//	Signed out:
//	  - help           show available commands
//	  - login          sign in
//	  - register       create an account
//	  - go <screen>    navigate (login, register, home, profile)
//	  - exit | quit    leave the program
//
//	Signed in:
//	  - help           show available commands
//	  - home           home screen
//	  - profile        profile screen
//	  - go <screen>    navigate
//	  - logout         sign out
//	  - exit | quit    leave the program
//
// Errors returned by command handlers are ignored here; handlers report
// them to the user themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "sk %s> ", statusFn())
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: home, profile, go <screen>, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, register, go <screen>, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "register":
			_ = a.Register(ctx)

		case "home":
			_ = a.Home(ctx)

		case "profile":
			_ = a.Profile(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "go":
			if len(args) == 0 {
				fmt.Fprintln(w, "Usage: go <screen>")
				continue
			}
			screen, err := gate.ParseScreen(args[0])
			if err != nil {
				fmt.Fprintln(w, "Error:", err)
				continue
			}
			_ = a.Navigate(ctx, screen)

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}
	}
}
