package postlog

import (
	"fmt"
	"math"

	"github.com/cis1951/lec8-backend/internal/post"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

// List returns up to limit posts ordered by createdAt ascending, ties in
// insertion order. limit <= 0 means DefaultLimit. Corrupt records are skipped.
func (l *Log) List(limit int) ([]post.Post, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return l.list(limit)
}

// ListAll returns every post in the log without a cap.
func (l *Log) ListAll() ([]post.Post, error) {
	return l.list(math.MaxInt)
}

func (l *Log) list(limit int) ([]post.Post, error) {
	ok, err := l.db.Exists(l.metaKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("list %q: %w", l.channel, ErrLogNotFound)
	}

	iter, err := l.db.NewIter(pebblestore.PrefixIterOptions(KeyEntryPrefix(l.channel)))
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	posts := make([]post.Post, 0, min(limit, 64))
	for valid := iter.First(); valid && len(posts) < limit; valid = iter.Next() {
		payload, ok := DecodeRecord(iter.Value())
		if !ok {
			continue
		}
		p, err := post.Decode(payload)
		if err != nil {
			continue
		}
		posts = append(posts, p)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	return posts, nil
}

// Exists reports whether the log has been initialized and not destroyed.
func (l *Log) Exists() (bool, error) {
	return l.db.Exists(l.metaKey)
}
