package controllers

import (
	"bytes"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/cis1951/lec8-backend/internal/livefilter"
)

const sseKeepAlive = 25 * time.Second

var errSubscriberGone = errors.New("subscriber gone")

// sseSubscriber hands broadcasts to the request goroutine, which is the only
// writer of the response.
type sseSubscriber struct {
	id     string
	filter livefilter.Filter
	out    chan []byte
	done   chan struct{}
	open   atomic.Bool
}

func (s *sseSubscriber) ID() string  { return s.id }
func (s *sseSubscriber) Ready() bool { return s.open.Load() }

func (s *sseSubscriber) Send(payload []byte) error {
	if !s.filter.Match(payload) {
		return nil
	}
	select {
	case s.out <- payload:
		return nil
	case <-s.done:
		return errSubscriberGone
	}
}

// writeEvent formats payload as one SSE data event. Multi-line payloads get a
// data: prefix per line.
func writeEvent(w http.ResponseWriter, payload []byte) error {
	var buf bytes.Buffer
	for _, line := range bytes.Split(payload, []byte("\n")) {
		buf.WriteString("data: ")
		buf.Write(line)
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	_, err := w.Write(buf.Bytes())
	return err
}

func (c *LiveController) handleSSE(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeText(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	filter, err := livefilter.Compile(r.URL.Query().Get(filterParamKey))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	sub := &sseSubscriber{id: uuid.NewString(), filter: filter, out: make(chan []byte, 1), done: make(chan struct{})}
	sub.open.Store(true)
	if err := c.bc.Register(sub); err != nil {
		writeText(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	defer func() {
		sub.open.Store(false)
		close(sub.done)
		c.bc.Unregister(sub.id)
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	c.logger.Debug("sse subscriber connected", subscriberFields(sub.id, filter)...)

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case p := <-sub.out:
			if err := writeEvent(w, p); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
