// Package broadcast fans payloads out to the set of live subscribers.
//
// Publish never blocks on a subscriber: each registered subscriber owns a
// bounded outbox drained by its own goroutine. A full outbox or a failed
// Send drops that one delivery and is logged.
package broadcast

import (
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"

	"github.com/cis1951/lec8-backend/pkg/log"
)

// DefaultBuffer is the per-subscriber outbox size when Options.Buffer is unset.
const DefaultBuffer = 64

var (
	ErrClosed     = errors.New("broadcaster closed")
	ErrOutboxFull = errors.New("subscriber outbox full")
)

// Subscriber is one live receiver of broadcasts.
type Subscriber interface {
	ID() string
	// Send delivers one payload. It is only ever called from the subscriber's
	// own pump goroutine.
	Send(payload []byte) error
	// Ready reports whether the subscriber is open for delivery.
	Ready() bool
}

// BroadcastError describes a failed delivery to a single subscriber.
type BroadcastError struct {
	SubscriberID string
	Err          error
}

func (e *BroadcastError) Error() string {
	return fmt.Sprintf("broadcast to %s: %v", e.SubscriberID, e.Err)
}

func (e *BroadcastError) Unwrap() error { return e.Err }

type Options struct {
	Buffer int
}

type entry struct {
	sub    Subscriber
	outbox chan []byte
	done   chan struct{}
}

// Broadcaster tracks registered subscribers. The zero value is not usable;
// construct with New and release with Close.
type Broadcaster struct {
	logger log.Logger
	buffer int

	mu     sync.RWMutex
	subs   map[string]*entry
	closed bool
	wg     sync.WaitGroup
}

func New(logger log.Logger, opts Options) *Broadcaster {
	if logger == nil {
		logger = log.NewNop()
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultBuffer
	}
	return &Broadcaster{
		logger: logger.WithComponent("broadcast"),
		buffer: opts.Buffer,
		subs:   make(map[string]*entry),
	}
}

// Register adds sub. A subscriber already registered under the same ID is
// replaced.
func (b *Broadcaster) Register(sub Subscriber) error {
	e := &entry{sub: sub, outbox: make(chan []byte, b.buffer), done: make(chan struct{})}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if old, ok := b.subs[sub.ID()]; ok {
		close(old.done)
	}
	b.subs[sub.ID()] = e
	b.wg.Add(1)
	b.mu.Unlock()

	go b.pump(e)
	b.logger.Debug("subscriber registered", log.Str("subscriber", sub.ID()))
	return nil
}

// Unregister removes the subscriber with id. It reports whether one was found.
func (b *Broadcaster) Unregister(id string) bool {
	b.mu.Lock()
	e, ok := b.subs[id]
	if ok {
		delete(b.subs, id)
		close(e.done)
	}
	b.mu.Unlock()
	if ok {
		b.logger.Debug("subscriber unregistered", log.Str("subscriber", id))
	}
	return ok
}

// Publish queues payload for every ready subscriber except exclude and
// returns how many accepted it.
func (b *Broadcaster) Publish(payload []byte, exclude string) int {
	b.mu.RLock()
	targets := lo.Filter(lo.Values(b.subs), func(e *entry, _ int) bool {
		return e.sub.ID() != exclude && e.sub.Ready()
	})
	queued := 0
	for _, e := range targets {
		select {
		case e.outbox <- payload:
			queued++
		default:
			b.report(&BroadcastError{SubscriberID: e.sub.ID(), Err: ErrOutboxFull})
		}
	}
	b.mu.RUnlock()
	return queued
}

// Count returns the number of registered subscribers.
func (b *Broadcaster) Count() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close unregisters everyone and waits for all pumps to exit. Register fails
// with ErrClosed afterwards.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	for id, e := range b.subs {
		close(e.done)
		delete(b.subs, id)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

func (b *Broadcaster) pump(e *entry) {
	defer b.wg.Done()
	for {
		select {
		case <-e.done:
			return
		case payload := <-e.outbox:
			if err := e.sub.Send(payload); err != nil {
				b.report(&BroadcastError{SubscriberID: e.sub.ID(), Err: err})
			}
		}
	}
}

func (b *Broadcaster) report(err *BroadcastError) {
	b.logger.Warn("broadcast delivery dropped", log.Str("subscriber", err.SubscriberID), log.Err(err.Err))
}
