package runtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cis1951/lec8-backend/internal/channelstore"
	"github.com/cis1951/lec8-backend/internal/postlog"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

// ErrClosed is returned by CheckHealth once the runtime has been closed.
var ErrClosed = errors.New("db not open")

// Options for building the Runtime.
type Options struct {
	DataDir       string
	Fsync         pebblestore.FsyncMode
	FsyncInterval time.Duration
}

// Stats is a snapshot of storage activity since Open.
type Stats struct {
	Reads       int64 `json:"reads"`
	Commits     int64 `json:"commits"`
	CommitBytes int64 `json:"commit_bytes"`
}

// storeStats counts storage observations. It is the DB's MetricsHook.
type storeStats struct {
	reads       atomic.Int64
	commits     atomic.Int64
	commitBytes atomic.Int64
}

func (s *storeStats) ObserveRead(time.Duration, int) { s.reads.Add(1) }

func (s *storeStats) ObserveBatchCommit(_ time.Duration, bytes int) {
	s.commits.Add(1)
	s.commitBytes.Add(int64(bytes))
}

// Runtime wires storage and stores for a single-node instance.
type Runtime struct {
	db       *pebblestore.DB
	stats    *storeStats
	logs     *postlog.Store
	channels *channelstore.Store

	// mu guards closed. CheckHealth holds the read lock for the whole probe.
	mu     sync.RWMutex
	closed bool
}

// Open initializes the underlying storage and returns a Runtime.
func Open(opts Options) (*Runtime, error) {
	stats := &storeStats{}
	db, err := pebblestore.Open(pebblestore.Options{
		DataDir:       opts.DataDir,
		Fsync:         opts.Fsync,
		FsyncInterval: opts.FsyncInterval,
		Metrics:       stats,
	})
	if err != nil {
		return nil, err
	}
	logs := postlog.NewStore(db)
	return &Runtime{
		db:       db,
		stats:    stats,
		logs:     logs,
		channels: channelstore.New(db, logs),
	}, nil
}

// Close closes underlying resources. Calling it twice is a no-op.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	return r.db.Close()
}

// CheckHealth performs a simple health check.
func (r *Runtime) CheckHealth(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	it, err := r.db.NewIter(nil)
	if err != nil {
		return err
	}
	return it.Close()
}

// Stats returns storage counters since Open.
func (r *Runtime) Stats() Stats {
	return Stats{
		Reads:       r.stats.reads.Load(),
		Commits:     r.stats.commits.Load(),
		CommitBytes: r.stats.commitBytes.Load(),
	}
}

// Channels returns the channel registry.
func (r *Runtime) Channels() *channelstore.Store { return r.channels }

// Logs returns the per-channel post log registry.
func (r *Runtime) Logs() *postlog.Store { return r.logs }
