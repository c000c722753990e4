// Package transcript keeps an append-only log of chat turns per session.
package transcript

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/Jrygg01/FrameForge/internal/core"
	"github.com/Jrygg01/FrameForge/internal/retry"
)

// ErrInvalidSession is returned for empty or malformed session ids.
var ErrInvalidSession = errors.New("invalid session id")

type Store struct {
	db *badger.DB
}

// Open opens the store at path. An empty path keeps everything in memory.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open transcript store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Append adds turns to the end of the session log in one transaction.
func (s *Store) Append(ctx context.Context, sessionID string, turns ...core.ChatTurn) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	if len(turns) == 0 {
		return nil
	}
	for i, turn := range turns {
		if !turn.Role.Valid() {
			return fmt.Errorf("turn %d: unknown role %q", i, turn.Role)
		}
	}

	cfg := retry.Config{
		Attempts:  5,
		Retryable: func(err error) bool { return errors.Is(err, badger.ErrConflict) },
	}
	return retry.Do(ctx, cfg, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			seq, err := readSeq(txn, seqKey(sessionID))
			if err != nil {
				return err
			}
			for _, turn := range turns {
				if turn.Timestamp.IsZero() {
					turn.Timestamp = time.Now().UTC()
				}
				data, err := json.Marshal(turn)
				if err != nil {
					return fmt.Errorf("marshal turn: %w", err)
				}
				if err := txn.Set(turnKey(sessionID, seq), data); err != nil {
					return err
				}
				seq++
			}
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], seq)
			return txn.Set(seqKey(sessionID), buf[:])
		})
	})
}

// List returns the session's turns oldest first. limit > 0 keeps only the
// most recent limit turns. Unknown sessions yield an empty list.
func (s *Store) List(ctx context.Context, sessionID string, limit int) ([]core.ChatTurn, error) {
	if err := checkSession(sessionID); err != nil {
		return nil, err
	}
	turns := []core.ChatTurn{}
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := turnPrefix(sessionID)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var turn core.ChatTurn
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &turn)
			}); err != nil {
				return fmt.Errorf("decode turn %q: %w", it.Item().Key(), err)
			}
			turns = append(turns, turn)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// Delete removes the whole session log.
func (s *Store) Delete(sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	return s.db.DropPrefix([]byte("session/" + sessionID + "/"))
}

func readSeq(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("corrupt sequence for %q", key)
		}
		seq = binary.BigEndian.Uint64(val)
		return nil
	})
	return seq, err
}

func checkSession(sessionID string) error {
	if sessionID == "" || strings.ContainsAny(sessionID, "/\x00") {
		return ErrInvalidSession
	}
	return nil
}

func seqKey(sessionID string) []byte {
	return []byte("session/" + sessionID + "/seq")
}

func turnPrefix(sessionID string) []byte {
	return []byte("session/" + sessionID + "/turn/")
}

func turnKey(sessionID string, seq uint64) []byte {
	return []byte(fmt.Sprintf("session/%s/turn/%020d", sessionID, seq))
}
