package postlog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/cis1951/lec8-backend/internal/post"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

// DefaultLimit caps List when no positive limit is given.
const DefaultLimit = 10000

// ErrLogNotFound is returned when a channel's log has no metadata, i.e. it was
// never initialized or has been destroyed.
var ErrLogNotFound = errors.New("post log not found")

// Store hands out one Log per channel name. Logs are cached for the lifetime
// of the Store so all writers of a channel share one append lock.
type Store struct {
	db *pebblestore.DB

	mu   sync.Mutex
	logs map[string]*Log
}

func NewStore(db *pebblestore.DB) *Store {
	return &Store{db: db, logs: make(map[string]*Log)}
}

// Open returns the log for channel. It does not check existence; Append and
// List report ErrLogNotFound for a missing log.
func (s *Store) Open(channel string) *Log {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.logs[channel]
	if !ok {
		l = &Log{db: s.db, channel: channel, metaKey: KeyLogMeta(channel)}
		s.logs[channel] = l
	}
	return l
}

// Init queues the metadata of an empty log into b.
func (s *Store) Init(b *pebble.Batch, channel string) error {
	var meta [8]byte
	return b.Set(KeyLogMeta(channel), meta[:], nil)
}

// Destroy queues the removal of the whole log into b and commits b while
// holding the log's append lock, so no append interleaves with the delete.
// The caller may put other mutations into b beforehand.
func (s *Store) Destroy(ctx context.Context, b *pebble.Batch, channel string) error {
	if err := pebblestore.DeletePrefix(b, KeyLogPrefix(channel)); err != nil {
		return err
	}
	l := s.Open(channel)
	l.mu.Lock()
	defer l.mu.Unlock()
	return s.db.CommitBatch(ctx, b)
}

// Log is the append-only post log of one channel.
type Log struct {
	db      *pebblestore.DB
	channel string
	metaKey []byte

	mu sync.Mutex
}

// Append durably appends p at its createdAt position.
func (l *Log) Append(ctx context.Context, p post.Post) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	meta, err := l.db.Get(l.metaKey)
	if errors.Is(err, pebblestore.ErrNotFound) {
		return fmt.Errorf("append to %q: %w", l.channel, ErrLogNotFound)
	}
	if err != nil {
		return err
	}
	var lastSeq uint64
	if len(meta) >= 8 {
		lastSeq = binary.BigEndian.Uint64(meta[:8])
	}
	lastSeq++

	b := l.db.NewBatch()
	defer b.Close()
	if err := b.Set(KeyEntry(l.channel, p.CreatedAt, lastSeq), EncodeRecord(p.Encode()), nil); err != nil {
		return err
	}
	var next [8]byte
	binary.BigEndian.PutUint64(next[:], lastSeq)
	if err := b.Set(l.metaKey, next[:], nil); err != nil {
		return err
	}
	return l.db.CommitBatch(ctx, b)
}
