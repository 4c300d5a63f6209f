package client

import (
	"bytes"
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	"github.com/cis1951/lec8-backend/internal/runtime"
	grpcserver "github.com/cis1951/lec8-backend/internal/server/grpc"
	httpserver "github.com/cis1951/lec8-backend/internal/server/http"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

type stack struct {
	svc     *channelsvc.Service
	bc      *broadcast.Broadcaster
	baseURL string
}

func startStack(t *testing.T) *stack {
	t.Helper()
	rt, err := runtime.Open(runtime.Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	require.NoError(t, err)
	bc := broadcast.New(nil, broadcast.Options{})
	svc := channelsvc.New(rt, bc, nil, channelsvc.Options{})
	hs := httpserver.New(rt, svc, bc, nil)
	ts := httptest.NewServer(hs.Handler())

	gs := grpcserver.New(rt, svc, bc, nil)
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = gs.Serve(ctx, lis)
		close(done)
	}()
	t.Setenv("CHATD_GRPC", lis.Addr().String())

	t.Cleanup(func() {
		cancel()
		<-done
		hs.Close()
		ts.Close()
		bc.Close()
		_ = rt.Close()
	})
	return &stack{svc: svc, bc: bc, baseURL: ts.URL}
}

func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	root := NewRoot(func() string { return baseURL })
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestChannelAndPostCommands(t *testing.T) {
	s := startStack(t)

	out, err := run(t, s.baseURL, "channels", "create", "general")
	require.NoError(t, err)
	require.Contains(t, out, "created: general")

	_, err = run(t, s.baseURL, "channels", "create", "general")
	require.ErrorContains(t, err, "Channel already exists")

	_, err = run(t, s.baseURL, "posts", "send", "general", "--content", "later", "--created-at", "200")
	require.NoError(t, err)
	_, err = run(t, s.baseURL, "posts", "send", "general", "--content", "earlier", "--author", "amy", "--created-at", "100")
	require.NoError(t, err)

	out, err = run(t, s.baseURL, "posts", "list", "general")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[0], `"content":"earlier"`)
	require.Contains(t, lines[0], `"author":"amy"`)
	require.Contains(t, lines[1], `"author":"Anonymous"`)

	out, err = run(t, s.baseURL, "posts", "list", "general", "--limit", "1")
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)

	out, err = run(t, s.baseURL, "channels", "list")
	require.NoError(t, err)
	require.Contains(t, out, "general")
	require.Contains(t, out, "2 posts")

	_, err = run(t, s.baseURL, "channels", "delete", "general")
	require.NoError(t, err)
	_, err = run(t, s.baseURL, "posts", "list", "general")
	require.ErrorContains(t, err, "Channel not found")
}

func TestPostsSendValidationSurfaced(t *testing.T) {
	s := startStack(t)
	_, err := run(t, s.baseURL, "channels", "create", "c")
	require.NoError(t, err)
	_, err = run(t, s.baseURL, "posts", "send", "c", "--id", "not-a-uuid", "--content", "x")
	require.ErrorContains(t, err, "malformed id")
}

func TestLiveTail(t *testing.T) {
	s := startStack(t)
	ctx := context.Background()
	_, err := s.svc.CreateChannel(ctx, "general")
	require.NoError(t, err)

	type result struct {
		out string
		err error
	}
	resCh := make(chan result, 1)
	go func() {
		out, err := run(t, s.baseURL, "live", "tail", "--limit", "1")
		resCh <- result{out, err}
	}()
	require.Eventually(t, func() bool { return s.bc.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	_, err = s.svc.SubmitPost(ctx, "general", []byte(`{"id":"3f2504e0-4f89-11d3-9a0c-0305e82c3301","content":"tailed","createdAt":1}`))
	require.NoError(t, err)

	select {
	case r := <-resCh:
		require.NoError(t, r.err)
		require.Contains(t, r.out, "tailed")
	case <-time.After(3 * time.Second):
		t.Fatal("tail did not return")
	}
}
