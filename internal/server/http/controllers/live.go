package controllers

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/livefilter"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	"github.com/cis1951/lec8-backend/pkg/log"
)

const (
	writeWait      = 10 * time.Second
	maxFrameBytes  = 1 << 20
	postEventName  = "post"
	filterParamKey = "filter"
)

// envelope is an inbound live frame. Only the "post" event is understood.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// LiveController serves the push surfaces: /ws (bidirectional) and
// /events (receive-only SSE).
type LiveController struct {
	svc    *channelsvc.Service
	bc     *broadcast.Broadcaster
	logger log.Logger

	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[string]*wsSubscriber
}

func NewLiveController(svc *channelsvc.Service, bc *broadcast.Broadcaster, logger log.Logger) *LiveController {
	if logger == nil {
		logger = log.NewNop()
	}
	return &LiveController{
		svc:    svc,
		bc:     bc,
		logger: logger.WithComponent("live"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		conns: make(map[string]*wsSubscriber),
	}
}

func (c *LiveController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", c.handleWebSocket)
	mux.HandleFunc("/events", c.handleSSE)
}

// CloseAll closes every open WebSocket; their read loops then unregister.
func (c *LiveController) CloseAll() {
	c.mu.Lock()
	subs := make([]*wsSubscriber, 0, len(c.conns))
	for _, s := range c.conns {
		subs = append(subs, s)
	}
	c.mu.Unlock()
	for _, s := range subs {
		s.close()
	}
}

// wsSubscriber adapts a WebSocket connection to broadcast.Subscriber.
type wsSubscriber struct {
	id     string
	conn   *websocket.Conn
	filter livefilter.Filter
	open   atomic.Bool
	once   sync.Once
}

func (s *wsSubscriber) ID() string  { return s.id }
func (s *wsSubscriber) Ready() bool { return s.open.Load() }

func (s *wsSubscriber) Send(payload []byte) error {
	if !s.filter.Match(payload) {
		return nil
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *wsSubscriber) close() {
	s.once.Do(func() {
		s.open.Store(false)
		_ = s.conn.Close()
	})
}

func (c *LiveController) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	filter, err := livefilter.Compile(r.URL.Query().Get(filterParamKey))
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied.
		c.logger.Debug("websocket upgrade failed", log.Err(err))
		return
	}
	conn.SetReadLimit(maxFrameBytes)

	sub := &wsSubscriber{id: uuid.NewString(), conn: conn, filter: filter}
	sub.open.Store(true)
	if err := c.bc.Register(sub); err != nil {
		c.logger.Warn("websocket register failed", log.Err(err))
		sub.close()
		return
	}
	c.mu.Lock()
	c.conns[sub.id] = sub
	c.mu.Unlock()
	c.logger.Info("websocket connected", subscriberFields(sub.id, filter, log.Str("remote", r.RemoteAddr))...)

	defer func() {
		sub.close()
		c.bc.Unregister(sub.id)
		c.mu.Lock()
		delete(c.conns, sub.id)
		c.mu.Unlock()
		c.logger.Info("websocket disconnected", log.Str("subscriber", sub.id))
	}()

	ctx := r.Context()
	for {
		mt, frame, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil || env.Event != postEventName {
			c.logger.Debug("websocket frame ignored", log.Str("subscriber", sub.id))
			continue
		}
		// Failures are logged by the service; nothing goes back to the sender.
		_ = c.svc.HandleLiveMessage(ctx, sub.id, env.Data)
	}
}
