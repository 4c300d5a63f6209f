// Package channelstore is the durable registry of channels. A channel and its
// post log are created and destroyed together in single Pebble batches.
package channelstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/cis1951/lec8-backend/internal/postlog"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

var (
	ErrNotFound      = errors.New("channel not found")
	ErrAlreadyExists = errors.New("channel already exists")
)

// Channel is a named container for an ordered sequence of posts.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Keyspace:
//   - chan/m              next insertion sequence
//   - chan/n/{name}       insertion sequence of the named channel
//   - chan/e/{seq_be8}    channel record (JSON)
var (
	metaKey     = []byte("chan/m")
	namePrefix  = []byte("chan/n/")
	entryPrefix = []byte("chan/e/")
)

func nameKey(name string) []byte {
	k := make([]byte, 0, len(namePrefix)+len(name))
	k = append(k, namePrefix...)
	return append(k, name...)
}

func entryKey(seq uint64) []byte {
	k := make([]byte, 0, len(entryPrefix)+8)
	k = append(k, entryPrefix...)
	return binary.BigEndian.AppendUint64(k, seq)
}

// Store owns channel records. Create and Delete are serialized by an
// in-process mutex; lookups are not.
type Store struct {
	db   *pebblestore.DB
	logs *postlog.Store

	mu    sync.Mutex
	newID func() string
}

func New(db *pebblestore.DB, logs *postlog.Store) *Store {
	return &Store{db: db, logs: logs, newID: uuid.NewString}
}

// List returns all channels in insertion order.
func (s *Store) List(ctx context.Context) ([]Channel, error) {
	iter, err := s.db.NewIter(pebblestore.PrefixIterOptions(entryPrefix))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make([]Channel, 0)
	for valid := iter.First(); valid; valid = iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var ch Channel
		if err := json.Unmarshal(iter.Value(), &ch); err != nil {
			return nil, fmt.Errorf("decode channel %x: %w", iter.Key(), err)
		}
		out = append(out, ch)
	}
	return out, iter.Error()
}

// Find looks a channel up by exact name.
func (s *Store) Find(ctx context.Context, name string) (Channel, bool, error) {
	ch, _, err := s.find(name)
	if errors.Is(err, ErrNotFound) {
		return Channel{}, false, nil
	}
	if err != nil {
		return Channel{}, false, err
	}
	return ch, true, nil
}

func (s *Store) find(name string) (Channel, uint64, error) {
	seqb, err := s.db.Get(nameKey(name))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Channel{}, 0, ErrNotFound
	}
	if err != nil {
		return Channel{}, 0, err
	}
	if len(seqb) != 8 {
		return Channel{}, 0, fmt.Errorf("corrupt name index for %q", name)
	}
	seq := binary.BigEndian.Uint64(seqb)
	b, err := s.db.Get(entryKey(seq))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return Channel{}, 0, ErrNotFound
	}
	if err != nil {
		return Channel{}, 0, err
	}
	var ch Channel
	if err := json.Unmarshal(b, &ch); err != nil {
		return Channel{}, 0, err
	}
	return ch, seq, nil
}

// Create registers name with a fresh UUID and initializes its empty post log
// in the same batch.
func (s *Store) Create(ctx context.Context, name string) (Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.find(name); err == nil {
		return Channel{}, fmt.Errorf("%q: %w", name, ErrAlreadyExists)
	} else if !errors.Is(err, ErrNotFound) {
		return Channel{}, err
	}

	var seq uint64
	if b, err := s.db.Get(metaKey); err == nil && len(b) == 8 {
		seq = binary.BigEndian.Uint64(b)
	} else if err != nil && !errors.Is(err, pebblestore.ErrNotFound) {
		return Channel{}, err
	}
	seq++

	ch := Channel{ID: s.newID(), Name: name}
	rec, err := json.Marshal(ch)
	if err != nil {
		return Channel{}, err
	}
	var seqb [8]byte
	binary.BigEndian.PutUint64(seqb[:], seq)

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Set(entryKey(seq), rec, nil); err != nil {
		return Channel{}, err
	}
	if err := b.Set(nameKey(name), seqb[:], nil); err != nil {
		return Channel{}, err
	}
	if err := b.Set(metaKey, seqb[:], nil); err != nil {
		return Channel{}, err
	}
	if err := s.logs.Init(b, name); err != nil {
		return Channel{}, err
	}
	if err := s.db.CommitBatch(ctx, b); err != nil {
		return Channel{}, err
	}
	return ch, nil
}

// Delete removes the channel record and irreversibly destroys its log.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, seq, err := s.find(name)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()
	if err := b.Delete(entryKey(seq), nil); err != nil {
		return err
	}
	if err := b.Delete(nameKey(name), nil); err != nil {
		return err
	}
	return s.logs.Destroy(ctx, b, name)
}
