// Package session owns the in-memory sign-in state of the app. The Manager
// runs sign-up, sign-in, sign-out and restore against the credential store
// and publishes every resulting AuthState through an AuthStateCell.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/cryptox"
	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// CredentialStore is the persistence the Manager needs.
// *credentials.Store implements it.
type CredentialStore interface {
	FindUser(ctx context.Context, email string) (models.UserRecord, error)
	InsertUser(ctx context.Context, rec models.UserRecord) error
	LoadSession(ctx context.Context) (*models.Session, error)
	SaveSession(ctx context.Context, sess models.Session) error
	ClearSession(ctx context.Context) error
}

// TokenSigner issues and checks the token stored with a session.
// *cryptox.TokenSigner implements it.
type TokenSigner interface {
	Issue(sessionID, email string, issuedAt time.Time) (string, error)
	Verify(token string) (sessionID, email string, err error)
}

type signUpInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
	Name     string
}

type signInInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// Manager is safe for concurrent use. Operations are serialised, so the
// state left behind is the one of the operation that finished last.
type Manager struct {
	store    CredentialStore
	scheme   cryptox.SecretScheme
	tokens   TokenSigner
	cell     *AuthStateCell
	validate *validator.Validate
	log      logging.Logger

	timeout time.Duration
	now     func() time.Time
	newID   func() string

	mu sync.Mutex
	// session is what the session key should hold given the published
	// state; nil means no session. Guarded by mu.
	session *models.Session
}

type Option func(*Manager)

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithStorageTimeout bounds every storage call. Zero disables the bound.
func WithStorageTimeout(d time.Duration) Option {
	return func(m *Manager) { m.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(m *Manager) { m.newID = gen }
}

// NewManager returns a Manager in the loading state. Call RestoreSession
// once at startup to leave it.
func NewManager(store CredentialStore, scheme cryptox.SecretScheme, tokens TokenSigner, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		scheme:   scheme,
		tokens:   tokens,
		cell:     NewAuthStateCell(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logging.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the current AuthState.
func (m *Manager) State() AuthState { return m.cell.Get() }

// Subscribe registers fn for every future state change.
func (m *Manager) Subscribe(fn Listener) (unsubscribe func()) { return m.cell.Subscribe(fn) }

// SignUp registers a new user and signs them in. Email and password are
// required; the email must not be registered yet, ignoring case.
func (m *Manager) SignUp(ctx context.Context, email, password, name string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := signUpInput{Email: strings.TrimSpace(email), Password: password, Name: strings.TrimSpace(name)}
	if err := m.validate.Struct(in); err != nil {
		return m.reject(ctx, "sign up", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}

	secret, err := m.scheme.Seal(in.Password)
	if err != nil {
		return m.reject(ctx, "sign up", fmt.Errorf("seal password: %w", err))
	}

	rec := models.UserRecord{
		ID:             m.newID(),
		Email:          in.Email,
		PasswordSecret: secret,
		Name:           in.Name,
		CreatedAt:      m.now().UTC(),
	}
	err = m.storage(ctx, func(ctx context.Context) error {
		return m.store.InsertUser(ctx, rec)
	})
	if err != nil {
		return m.reject(ctx, "sign up", err)
	}
	m.log.Info(ctx, "user registered", "email", rec.Email)

	return m.startSession(ctx, rec)
}

// SignIn checks the password of a registered user and signs them in. An
// unknown email and a wrong password give the same ErrInvalidCredentials.
func (m *Manager) SignIn(ctx context.Context, email, password string) Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	in := signInInput{Email: strings.TrimSpace(email), Password: password}
	if err := m.validate.Struct(in); err != nil {
		return m.reject(ctx, "sign in", fmt.Errorf("%w: %w", common.ErrInvalidInput, err))
	}

	var rec models.UserRecord
	err := m.storage(ctx, func(ctx context.Context) error {
		var err error
		rec, err = m.store.FindUser(ctx, in.Email)
		return err
	})
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return m.reject(ctx, "sign in", common.ErrInvalidCredentials)
	case err != nil:
		return m.reject(ctx, "sign in", err)
	}

	if !m.scheme.Verify(rec.PasswordSecret, in.Password) {
		return m.reject(ctx, "sign in", common.ErrInvalidCredentials)
	}

	return m.startSession(ctx, rec)
}

// SignOut always ends unauthenticated. A failure to clear the stored
// session is only logged.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	if err := m.writeSession(ctx, m.store.ClearSession); err != nil {
		m.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
	m.publish(ctx, Unauthenticated())
}

// RestoreSession reads the stored session and resolves its user. It ends
// authenticated only if both succeed and the session token checks out; a
// session with a bad token or a missing user is removed from storage.
// Storage failures end unauthenticated and leave storage untouched.
func (m *Manager) RestoreSession(ctx context.Context) AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = nil
	var sess *models.Session
	err := m.storage(ctx, func(ctx context.Context) error {
		var err error
		sess, err = m.store.LoadSession(ctx)
		return err
	})
	if err != nil {
		m.log.Error(ctx, "failed to load stored session", "error", err)
		return m.publish(ctx, Unauthenticated())
	}
	if sess == nil {
		return m.publish(ctx, Unauthenticated())
	}

	id, subject, err := m.tokens.Verify(sess.Token)
	if err == nil && (id != sess.ID || subject != common.NormalizeEmail(sess.Email)) {
		err = common.ErrInvalidToken
	}
	if err != nil {
		m.log.Warn(ctx, "discarding session with invalid token", "error", err)
		m.discardSession(ctx)
		return m.publish(ctx, Unauthenticated())
	}

	var rec models.UserRecord
	err = m.storage(ctx, func(ctx context.Context) error {
		var err error
		rec, err = m.store.FindUser(ctx, sess.Email)
		return err
	})
	switch {
	case errors.Is(err, common.ErrorNotFound):
		m.log.Warn(ctx, "discarding session of unknown user", "email", sess.Email)
		m.discardSession(ctx)
		return m.publish(ctx, Unauthenticated())
	case err != nil:
		m.log.Error(ctx, "failed to resolve session user", "email", sess.Email, "error", err)
		return m.publish(ctx, Unauthenticated())
	}

	m.session = sess
	return m.publish(ctx, Authenticated(rec.Public()))
}

func (m *Manager) startSession(ctx context.Context, rec models.UserRecord) Result {
	issuedAt := m.now().UTC()
	sess := models.Session{ID: m.newID(), Email: rec.Email, IssuedAt: issuedAt}

	token, err := m.tokens.Issue(sess.ID, sess.Email, issuedAt)
	if err != nil {
		return m.reject(ctx, "start session", err)
	}
	sess.Token = token

	err = m.writeSession(ctx, func(ctx context.Context) error {
		return m.store.SaveSession(ctx, sess)
	})
	if err != nil {
		return m.reject(ctx, "start session", err)
	}
	m.session = &sess

	m.publish(ctx, Authenticated(rec.Public()))
	return ok()
}

func (m *Manager) discardSession(ctx context.Context) {
	if err := m.writeSession(ctx, m.store.ClearSession); err != nil {
		m.log.Warn(ctx, "failed to clear stored session", "error", err)
	}
}

func (m *Manager) publish(ctx context.Context, s AuthState) AuthState {
	if s.User != nil {
		m.log.Info(ctx, "auth state changed", "status", s.Status.String(), "email", s.User.Email)
	} else {
		m.log.Info(ctx, "auth state changed", "status", s.Status.String())
	}
	m.cell.Set(s)
	return s
}

// reject logs err and turns it into a failed Result. The state is left as is.
func (m *Manager) reject(ctx context.Context, op string, err error) Result {
	switch {
	case errors.Is(err, common.ErrStorageUnavailable), errors.Is(err, common.ErrStorageWriteFailed):
		m.log.Error(ctx, op+" failed", "error", err)
	default:
		m.log.Debug(ctx, op+" rejected", "error", err)
	}
	return failed(err)
}

// storage runs fn under the storage timeout. A call that outlives it is
// reported as common.ErrStorageUnavailable even if fn ignores its context.
func (m *Manager) storage(ctx context.Context, fn func(context.Context) error) error {
	return m.bounded(ctx, fn, nil)
}

// writeSession is storage for writes of the session key. A write that
// outlives the timeout may still land later; once it returns, the key is
// rewritten from m.session so storage matches the published state again.
func (m *Manager) writeSession(ctx context.Context, fn func(context.Context) error) error {
	return m.bounded(ctx, fn, m.reconcileSession)
}

func (m *Manager) bounded(ctx context.Context, fn func(context.Context) error, afterLate func()) error {
	if m.timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(ctx) }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		if afterLate != nil {
			go func() {
				<-done
				afterLate()
			}()
		}
		return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, ctx.Err())
	}
}

// reconcileSession runs after a timed-out session write has returned.
func (m *Manager) reconcileSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := context.Background()
	var err error
	if m.session != nil {
		sess := *m.session
		err = m.storage(ctx, func(ctx context.Context) error {
			return m.store.SaveSession(ctx, sess)
		})
	} else {
		err = m.storage(ctx, m.store.ClearSession)
	}
	if err != nil {
		m.log.Error(ctx, "failed to reconcile stored session", "error", err)
		return
	}
	m.log.Info(ctx, "stored session reconciled after late write", "signed_in", m.session != nil)
}
