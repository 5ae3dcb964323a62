// Package credentials is the durable home of user records and of the
// current session. It encodes both as JSON under two keys of a
// kvstore.Repository and maps backend failures onto
// common.ErrStorageUnavailable (reads) and common.ErrStorageWriteFailed
// (writes).
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/dmitrijs2005/sessionkeeper/internal/models"
	"github.com/dmitrijs2005/sessionkeeper/internal/repositories/kvstore"
)

const (
	UsersKey   = "@users"
	SessionKey = "@session"
)

// Store is safe for concurrent use. Writers of the users collection and of
// the session key are serialised independently.
type Store struct {
	repo kvstore.Repository

	usersMu   sync.Mutex
	sessionMu sync.Mutex
}

func NewStore(repo kvstore.Repository) *Store {
	return &Store{repo: repo}
}

// LoadAllUsers returns every record in registration order; an empty slice
// if nothing was stored yet.
func (s *Store) LoadAllUsers(ctx context.Context) ([]models.UserRecord, error) {
	raw, err := s.repo.Get(ctx, UsersKey)
	if errors.Is(err, common.ErrorNotFound) {
		return []models.UserRecord{}, nil
	}
	if err != nil {
		return nil, readFailed(err)
	}
	return decodeUsers(raw)
}

// FindUser looks a record up by case-insensitive email.
func (s *Store) FindUser(ctx context.Context, email string) (models.UserRecord, error) {
	users, err := s.LoadAllUsers(ctx)
	if err != nil {
		return models.UserRecord{}, err
	}
	if i := indexOf(users, email); i >= 0 {
		return users[i], nil
	}
	return models.UserRecord{}, common.ErrorNotFound
}

// SaveUser appends rec, or replaces the record with the same email.
func (s *Store) SaveUser(ctx context.Context, rec models.UserRecord) error {
	return s.updateUsers(ctx, func(users []models.UserRecord) ([]models.UserRecord, error) {
		if i := indexOf(users, rec.Email); i >= 0 {
			users[i] = rec
			return users, nil
		}
		return append(users, rec), nil
	})
}

// InsertUser appends rec unless its email is already taken, in which case
// it returns common.ErrEmailAlreadyRegistered. The check and the write are
// a single atomic step on backends implementing kvstore.Updater.
func (s *Store) InsertUser(ctx context.Context, rec models.UserRecord) error {
	return s.updateUsers(ctx, func(users []models.UserRecord) ([]models.UserRecord, error) {
		if indexOf(users, rec.Email) >= 0 {
			return nil, common.ErrEmailAlreadyRegistered
		}
		return append(users, rec), nil
	})
}

func (s *Store) updateUsers(ctx context.Context, mutate func([]models.UserRecord) ([]models.UserRecord, error)) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	apply := func(cur string, found bool) (string, error) {
		users := []models.UserRecord{}
		if found {
			var err error
			if users, err = decodeUsers(cur); err != nil {
				return "", err
			}
		}
		next, err := mutate(users)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(next)
		if err != nil {
			return "", fmt.Errorf("%w: encode users: %w", common.ErrStorageWriteFailed, err)
		}
		return string(b), nil
	}

	if u, ok := s.repo.(kvstore.Updater); ok {
		return writeFailed(u.Update(ctx, UsersKey, apply))
	}

	cur, err := s.repo.Get(ctx, UsersKey)
	found := true
	if errors.Is(err, common.ErrorNotFound) {
		found = false
	} else if err != nil {
		return readFailed(err)
	}
	next, err := apply(cur, found)
	if err != nil {
		return err
	}
	return writeFailed(s.repo.Set(ctx, UsersKey, next))
}

// LoadSession returns the persisted session, or nil when there is none.
func (s *Store) LoadSession(ctx context.Context) (*models.Session, error) {
	raw, err := s.repo.Get(ctx, SessionKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, readFailed(err)
	}
	var sess models.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return nil, fmt.Errorf("%w: decode session: %w", common.ErrStorageUnavailable, err)
	}
	return &sess, nil
}

func (s *Store) SaveSession(ctx context.Context, sess models.Session) error {
	b, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode session: %w", common.ErrStorageWriteFailed, err)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return writeFailed(s.repo.Set(ctx, SessionKey, string(b)))
}

// ClearSession is idempotent.
func (s *Store) ClearSession(ctx context.Context) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()
	return writeFailed(s.repo.Remove(ctx, SessionKey))
}

func decodeUsers(raw string) ([]models.UserRecord, error) {
	users := []models.UserRecord{}
	if err := json.Unmarshal([]byte(raw), &users); err != nil {
		return nil, fmt.Errorf("%w: decode users: %w", common.ErrStorageUnavailable, err)
	}
	return users, nil
}

func indexOf(users []models.UserRecord, email string) int {
	for i, u := range users {
		if u.Matches(email) {
			return i
		}
	}
	return -1
}

// readFailed tags err as common.ErrStorageUnavailable.
func readFailed(err error) error {
	return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
}

// writeFailed tags err as common.ErrStorageWriteFailed unless it already
// carries a domain or storage sentinel. A timed-out call counts as the
// storage being unavailable.
func writeFailed(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrEmailAlreadyRegistered),
		errors.Is(err, common.ErrStorageUnavailable),
		errors.Is(err, common.ErrStorageWriteFailed):
		return err
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", common.ErrStorageUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", common.ErrStorageWriteFailed, err)
	}
}
