// Package badger implements store.Store on an embedded Badger key-value database.
//
// Values are JSON documents under prefixed keys. Integer ids are zero padded
// in keys so that prefix iteration yields id order.
package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/connectapp/connect-server/internal/store"
)

const (
	prefixUser       = "user:id:"
	prefixUserEmail  = "user:email:"
	prefixProfile    = "profile:"
	prefixPost       = "post:"       // post:<user id>:<post id>
	prefixSuggestion = "suggestion:" // suggestion:<user id>:<suggested user id>

	seqUsers = "seq:users"
	seqPosts = "seq:posts"

	// seqBandwidth is how many ids a sequence leases per disk write.
	seqBandwidth = 100

	// maxConflictRetries bounds how often a write is re-run after
	// badger.ErrConflict from a concurrent transaction.
	maxConflictRetries = 3
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badgerdb.DB
	logger *slog.Logger

	userSeq *badgerdb.Sequence
	postSeq *badgerdb.Sequence
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) a Badger database in the directory at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badgerdb.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	userSeq, err := db.GetSequence([]byte(seqUsers), seqBandwidth)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("user sequence: %w", err)
	}
	postSeq, err := db.GetSequence([]byte(seqPosts), seqBandwidth)
	if err != nil {
		_ = userSeq.Release()
		db.Close()
		return nil, fmt.Errorf("post sequence: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return &Store{
		db:      db,
		logger:  logger,
		userSeq: userSeq,
		postSeq: postSeq,
	}, nil
}

// Close releases the id sequences and closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	err := errors.Join(s.userSeq.Release(), s.postSeq.Release())
	return errors.Join(err, s.db.Close())
}

// Shutdown implements do.Shutdowner.
func (s *Store) Shutdown() error {
	return s.Close()
}

// Ping reports whether the database is open.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return nil
}

// update runs fn in a read-write transaction, re-running it when Badger
// reports a conflict with a concurrent transaction.
func (s *Store) update(ctx context.Context, fn func(txn *badgerdb.Txn) error) error {
	var err error
	for range maxConflictRetries {
		if err := ctx.Err(); err != nil {
			return err
		}
		err = s.db.Update(fn)
		if !errors.Is(err, badgerdb.ErrConflict) {
			return err
		}
	}
	return fmt.Errorf("transaction conflict after %d attempts: %w", maxConflictRetries, err)
}

// nextID leases the next free id from seq, skipping ids already used under prefix.
func (s *Store) nextID(seq *badgerdb.Sequence, prefix string) (int64, error) {
	for {
		n, err := seq.Next()
		if err != nil {
			return 0, fmt.Errorf("next id: %w", err)
		}
		id := int64(n) + 1 // sequences start at 0

		taken := false
		err = s.db.View(func(txn *badgerdb.Txn) error {
			var err error
			taken, err = exists(txn, idKey(prefix, id))
			return err
		})
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
}

// idKey builds prefix followed by zero padded ids joined with ':'.
func idKey(prefix string, ids ...int64) []byte {
	buf := make([]byte, 0, len(prefix)+21*len(ids))
	buf = append(buf, prefix...)
	for i, id := range ids {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = fmt.Appendf(buf, "%020d", id)
	}
	return buf
}

// scopeKey is idKey with a trailing ':' for iterating a parent's children.
func scopeKey(prefix string, id int64) []byte {
	return append(idKey(prefix, id), ':')
}

func getJSON(txn *badgerdb.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

func setJSON(txn *badgerdb.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

func exists(txn *badgerdb.Txn, key []byte) (bool, error) {
	_, err := txn.Get(key)
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// scanPrefix decodes every value under prefix into a fresh T, in key order.
func scanPrefix[T any](txn *badgerdb.Txn, prefix []byte) ([]*T, error) {
	it := txn.NewIterator(badgerdb.IteratorOptions{PrefetchValues: true, PrefetchSize: 100, Prefix: prefix})
	defer it.Close()

	var out []*T
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		v := new(T)
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", it.Item().Key(), err)
		}
		out = append(out, v)
	}
	return out, nil
}
