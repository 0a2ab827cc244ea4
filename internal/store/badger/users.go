package badger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/connectapp/connect-server/internal/domain"
	"github.com/connectapp/connect-server/internal/store"
)

func emailKey(email string) []byte {
	return []byte(prefixUserEmail + strings.ToLower(strings.TrimSpace(email)))
}

// CreateUser stores a new user and sets user.ID when it was zero.
// Returns store.ErrAlreadyExists if the id or email is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	return s.CreateUserWithProfile(ctx, user, nil)
}

// CreateUserWithProfile stores a user and, when profile is non-nil, its
// profile in one transaction.
func (s *Store) CreateUserWithProfile(ctx context.Context, user *domain.User, profile *domain.Profile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	id := user.ID
	if id == 0 {
		var err error
		if id, err = s.nextID(s.userSeq, prefixUser); err != nil {
			return err
		}
	}

	u := *user
	u.ID = id
	if u.Status == "" {
		u.Status = domain.UserStatusActive
	}

	var p *domain.Profile
	if profile != nil {
		cp := *profile
		cp.UserID = id
		p = &cp
	}

	err := s.update(ctx, func(txn *badgerdb.Txn) error {
		key := idKey(prefixUser, id)
		if taken, err := exists(txn, key); err != nil {
			return err
		} else if taken {
			return store.ErrAlreadyExists.WithCause(fmt.Errorf("user id %d", id))
		}

		ek := emailKey(u.Email)
		if taken, err := exists(txn, ek); err != nil {
			return err
		} else if taken {
			return store.ErrAlreadyExists.WithCause(fmt.Errorf("email %q", u.Email))
		}

		if err := setJSON(txn, key, &u); err != nil {
			return err
		}
		if err := txn.Set(ek, []byte(strconv.FormatInt(id, 10))); err != nil {
			return err
		}
		if p != nil {
			return setJSON(txn, idKey(prefixProfile, id), p)
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.ID = u.ID
	user.Status = u.Status
	if profile != nil {
		profile.UserID = id
	}
	return nil
}

// GetUser retrieves a user by ID.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var u domain.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		return getJSON(txn, idKey(prefixUser, id), &u)
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by id.
func (s *Store) ListUsers(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var users []*domain.User
	err := s.db.View(func(txn *badgerdb.Txn) error {
		var err error
		users, err = scanPrefix[domain.User](txn, []byte(prefixUser))
		return err
	})
	return users, err
}

// requireUser returns store.ErrNotFound unless a user with id exists in txn's view.
func requireUser(txn *badgerdb.Txn, id int64) error {
	ok, err := exists(txn, idKey(prefixUser, id))
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrNotFound.WithCause(fmt.Errorf("user %d", id))
	}
	return nil
}
