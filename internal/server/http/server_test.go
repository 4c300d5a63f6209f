package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/post"
	"github.com/cis1951/lec8-backend/internal/runtime"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
	logpkg "github.com/cis1951/lec8-backend/pkg/log"
)

const validPost = `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"hi","createdAt":1700000000000}`

type fixture struct {
	rt  *runtime.Runtime
	bc  *broadcast.Broadcaster
	svc *channelsvc.Service
	s   *Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("rt open: %v", err)
	}
	logger, _ := logpkg.ApplyConfig(&logpkg.Config{Level: "error", Format: "text"})
	bc := broadcast.New(logger, broadcast.Options{})
	svc := channelsvc.New(rt, bc, logger, channelsvc.Options{})
	s := New(rt, svc, bc, logger)
	t.Cleanup(func() {
		s.Close()
		bc.Close()
		_ = rt.Close()
	})
	return &fixture{rt: rt, bc: bc, svc: svc, s: s}
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.s.Handler().ServeHTTP(w, req)
	return w
}

func expect(t *testing.T, w *httptest.ResponseRecorder, code int, body string) {
	t.Helper()
	if w.Code != code {
		t.Fatalf("status: got %d want %d (body %q)", w.Code, code, w.Body.String())
	}
	if body != "" && w.Body.String() != body {
		t.Fatalf("body: got %q want %q", w.Body.String(), body)
	}
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)
	expect(t, f.do(t, http.MethodGet, "/", ""), 200, "Welcome to the iOstagram API!")
	expect(t, f.do(t, http.MethodGet, "/nope", ""), 404, "")
	w := f.do(t, http.MethodGet, "/healthz", "")
	expect(t, w, 200, "")
	if !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health body: %s", w.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodOptions, "/channels", "")
	expect(t, w, http.StatusNoContent, "")
	if got := w.Header().Get("Access-Control-Allow-Methods"); !strings.Contains(got, "DELETE") {
		t.Fatalf("allow methods: %q", got)
	}
}

func TestChannelLifecycle(t *testing.T) {
	f := newFixture(t)

	expect(t, f.do(t, http.MethodPost, "/channels", ""), 400, "Channel name is required")

	w := f.do(t, http.MethodPost, "/channels?channel=general", "")
	expect(t, w, 200, "")
	var created struct {
		ID    string      `json:"id"`
		Name  string      `json:"name"`
		Posts []post.Post `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Name != "general" || created.ID == "" || created.Posts == nil || len(created.Posts) != 0 {
		t.Fatalf("unexpected channel: %s", w.Body.String())
	}

	expect(t, f.do(t, http.MethodPost, "/channels?channel=general", ""), 400, "Channel already exists")

	expect(t, f.do(t, http.MethodPost, "/posts?channel=general", validPost), 201, "Post made")

	w = f.do(t, http.MethodGet, "/channels", "")
	expect(t, w, 200, "")
	var list []struct {
		Name  string      `json:"name"`
		Posts []post.Post `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || len(list[0].Posts) != 1 || list[0].Posts[0].Author != "Anonymous" {
		t.Fatalf("unexpected list: %s", w.Body.String())
	}

	expect(t, f.do(t, http.MethodDelete, "/channels", ""), 400, "Channel name is required")
	expect(t, f.do(t, http.MethodDelete, "/channels?channel=general", ""), 204, "")
	expect(t, f.do(t, http.MethodDelete, "/channels?channel=general", ""), 404, "Channel not found")
	expect(t, f.do(t, http.MethodGet, "/posts?channel=general", ""), 404, "Channel not found")
}

func TestPostsErrors(t *testing.T) {
	f := newFixture(t)
	expect(t, f.do(t, http.MethodPost, "/posts", validPost), 400, "Channel name is required")
	expect(t, f.do(t, http.MethodGet, "/posts", ""), 400, "Channel name is required")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=missing", validPost), 404, "Channel not found")

	expect(t, f.do(t, http.MethodPost, "/channels?channel=c", ""), 200, "")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=c", ""), 400, "Post is required")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=c", `{"id":"nope","content":"x","createdAt":1}`), 400, "malformed id")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=c", `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","createdAt":1}`), 400, "missing content")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=c", `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"x"}`), 400, "missing createdAt")
	expect(t, f.do(t, http.MethodPost, "/posts?channel=c", `[1,2]`), 400, "invalid post")
	expect(t, f.do(t, http.MethodPut, "/posts?channel=c", validPost), 405, "")
}

func TestListPostsLimit(t *testing.T) {
	f := newFixture(t)
	expect(t, f.do(t, http.MethodPost, "/channels?channel=c", ""), 200, "")
	for i, ts := range []string{"30", "10", "20"} {
		body := `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c330` + string(rune('1'+i)) + `","content":"x","createdAt":` + ts + `}`
		expect(t, f.do(t, http.MethodPost, "/posts?channel=c", body), 201, "Post made")
	}
	for _, tc := range []struct {
		query string
		want  []int64
	}{
		{"&limit=2", []int64{10, 20}},
		{"", []int64{10, 20, 30}},
		{"&limit=abc", []int64{10, 20, 30}},
		{"&limit=0", []int64{10, 20, 30}},
	} {
		w := f.do(t, http.MethodGet, "/posts?channel=c"+tc.query, "")
		expect(t, w, 200, "")
		var posts []post.Post
		if err := json.Unmarshal(w.Body.Bytes(), &posts); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(posts) != len(tc.want) {
			t.Fatalf("%q: got %d posts", tc.query, len(posts))
		}
		for i, p := range posts {
			if p.CreatedAt != tc.want[i] {
				t.Fatalf("%q: order %v", tc.query, posts)
			}
		}
	}
}

func dialWS(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitSubscribers(t *testing.T, bc *broadcast.Broadcaster, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for bc.Count() != n {
		if time.Now().After(deadline) {
			t.Fatalf("subscribers: got %d want %d", bc.Count(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) (string, bool) {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(wait))
	_, b, err := conn.ReadMessage()
	if err != nil {
		return "", false
	}
	return string(b), true
}

func TestWebSocketFanOut(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()
	if _, err := f.svc.CreateChannel(context.Background(), "general"); err != nil {
		t.Fatalf("create: %v", err)
	}

	a, b, c := dialWS(t, srv, ""), dialWS(t, srv, ""), dialWS(t, srv, "")
	waitSubscribers(t, f.bc, 3)

	data := `{"channel":"general","post":{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"yo","createdAt":5}}`
	if err := a.WriteMessage(websocket.TextMessage, []byte(`{"event":"post","data":`+data+`}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, conn := range []*websocket.Conn{b, c} {
		got, ok := readFrame(t, conn, 2*time.Second)
		if !ok || got != data {
			t.Fatalf("peer frame: %q ok=%v", got, ok)
		}
	}
	if got, ok := readFrame(t, a, 100*time.Millisecond); ok {
		t.Fatalf("originator received its own post: %q", got)
	}

	// request path reaches every live connection with the normalized post
	expect(t, f.do(t, http.MethodPost, "/posts?channel=general", validPost), 201, "Post made")
	want := `{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","author":"Anonymous","content":"hi","createdAt":1700000000000}`
	for _, conn := range []*websocket.Conn{b, c} {
		got, ok := readFrame(t, conn, 2*time.Second)
		if !ok || got != want {
			t.Fatalf("request-path frame: %q ok=%v", got, ok)
		}
	}
}

func TestWebSocketBadFrameDroppedSilently(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()

	a, b := dialWS(t, srv, ""), dialWS(t, srv, "")
	waitSubscribers(t, f.bc, 2)

	frames := []string{
		`not json`,
		`{"event":"typing","data":{}}`,
		`{"event":"post","data":{"channel":"missing","post":{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"x","createdAt":1}}}`,
	}
	for _, fr := range frames {
		if err := a.WriteMessage(websocket.TextMessage, []byte(fr)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if got, ok := readFrame(t, b, 150*time.Millisecond); ok {
		t.Fatalf("unexpected broadcast: %q", got)
	}
	if got, ok := readFrame(t, a, 50*time.Millisecond); ok {
		t.Fatalf("unexpected reply: %q", got)
	}
	// connection survives
	if f.bc.Count() != 2 {
		t.Fatalf("subscribers dropped: %d", f.bc.Count())
	}
}

func TestWebSocketCloseUnregisters(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()
	conn := dialWS(t, srv, "")
	waitSubscribers(t, f.bc, 1)
	_ = conn.Close()
	waitSubscribers(t, f.bc, 0)
}

func TestHealthReportsSubscribersAndStorage(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()
	dialWS(t, srv, "")
	waitSubscribers(t, f.bc, 1)
	expect(t, f.do(t, http.MethodPost, "/channels?channel=general", ""), 200, "")

	w := f.do(t, http.MethodGet, "/healthz", "")
	expect(t, w, 200, "")
	var got struct {
		Status      string        `json:"status"`
		Subscribers int           `json:"subscribers"`
		Storage     runtime.Stats `json:"storage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode health: %v (%s)", err, w.Body.String())
	}
	if got.Status != "ok" || got.Subscribers != 1 {
		t.Fatalf("unexpected health: %+v", got)
	}
	if got.Storage.Commits < 1 {
		t.Fatalf("expected storage commits: %+v", got.Storage)
	}

	_ = f.rt.Close()
	expect(t, f.do(t, http.MethodGet, "/healthz", ""), http.StatusServiceUnavailable, "")
}

func TestWebSocketFilter(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()
	for _, n := range []string{"cats", "dogs"} {
		if _, err := f.svc.CreateChannel(context.Background(), n); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	sender := dialWS(t, srv, "")
	catsOnly := dialWS(t, srv, `?filter=json.channel+%3D%3D+%22cats%22`)
	waitSubscribers(t, f.bc, 2)

	for _, ch := range []string{"dogs", "cats"} {
		data := `{"channel":"` + ch + `","post":{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"x","createdAt":1}}`
		if err := sender.WriteMessage(websocket.TextMessage, []byte(`{"event":"post","data":`+data+`}`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	got, ok := readFrame(t, catsOnly, 2*time.Second)
	if !ok || !strings.Contains(got, `"cats"`) {
		t.Fatalf("filtered frame: %q ok=%v", got, ok)
	}
}

func TestBadFilterRejected(t *testing.T) {
	f := newFixture(t)
	expect(t, f.do(t, http.MethodGet, "/events?filter=size+%2B", ""), 400, "")
}

func TestSSEReceivesBroadcast(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.s.Handler())
	defer srv.Close()
	if _, err := f.svc.CreateChannel(context.Background(), "general"); err != nil {
		t.Fatalf("create: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sse: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type: %s", ct)
	}
	waitSubscribers(t, f.bc, 1)

	if _, err := f.svc.SubmitPost(context.Background(), "general", []byte(validPost)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	line, err := bufio.NewReader(resp.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.HasPrefix(line, "data: {") || !strings.Contains(line, `"content":"hi"`) {
		t.Fatalf("event line: %q", line)
	}
	cancel()
	waitSubscribers(t, f.bc, 0)
}
