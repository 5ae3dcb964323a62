package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/gate"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/session"
)

// AuthService is what the screens need from the session manager.
// *session.Manager implements it.
type AuthService interface {
	State() session.AuthState
	Subscribe(fn session.Listener) (unsubscribe func())
	SignUp(ctx context.Context, email, password, name string) session.Result
	SignIn(ctx context.Context, email, password string) session.Result
	SignOut(ctx context.Context)
}

type App struct {
	auth   AuthService
	reader *bufio.Reader
	out    io.Writer
	log    logging.Logger

	// mu guards current and keeps screen output whole. It is never held
	// while calling into auth.
	mu      sync.Mutex
	current gate.Screen
}

func NewApp(auth AuthService, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		auth:    auth,
		reader:  bufio.NewReader(in),
		out:     out,
		log:     log,
		current: gate.Login,
	}
}

// Run shows the current screen, keeps it in sync with the auth state and
// serves commands until exit or end of input.
func (a *App) Run(ctx context.Context) {
	unsubscribe := a.auth.Subscribe(a.onStateChange)
	defer unsubscribe()

	a.println("Welcome to sessionkeeper (type 'help' for commands)")
	_ = a.Navigate(ctx, a.Current())

	runREPL(ctx, a, a.status, a.reader, a.out)
}

// onStateChange re-evaluates the current screen under the new state.
func (a *App) onStateChange(session.AuthState) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.show(a.current)
}

// Current returns the screen the user is on.
func (a *App) Current() gate.Screen {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) isLoggedIn() bool {
	return a.auth.State().IsAuthenticated()
}

func (a *App) status() string {
	st := a.auth.State()
	s := st.Status.String()
	if st.User != nil {
		s = displayName(st) + " " + s
	}
	return fmt.Sprintf("(%s) %s", s, a.Current())
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func displayName(st session.AuthState) string {
	if st.User == nil {
		return ""
	}
	if st.User.Name != "" {
		return st.User.Name
	}
	return st.User.Email
}
