package runtime

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cis1951/lec8-backend/internal/post"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
)

func TestOpenCloseHealth(t *testing.T) {
	dir := t.TempDir()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); err != nil {
		t.Fatalf("health: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := rt.CheckHealth(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("health after close: got %v want ErrClosed", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestHealthDuringClose(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeNever})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if err := rt.CheckHealth(context.Background()); err != nil && !errors.Is(err, ErrClosed) {
					t.Errorf("health: %v", err)
					return
				}
			}
		}()
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	wg.Wait()
}

func TestStatsCountStorageActivity(t *testing.T) {
	rt, err := Open(Options{DataDir: t.TempDir(), Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open runtime: %v", err)
	}
	defer rt.Close()
	if s := rt.Stats(); s != (Stats{}) {
		t.Fatalf("fresh stats: %+v", s)
	}
	ctx := context.Background()
	if _, err := rt.Channels().Create(ctx, "general"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, _, err := rt.Channels().Find(ctx, "general"); err != nil {
		t.Fatalf("find: %v", err)
	}
	s := rt.Stats()
	if s.Commits < 1 || s.CommitBytes <= 0 {
		t.Fatalf("expected a commit: %+v", s)
	}
	if s.Reads < 1 {
		t.Fatalf("expected a read: %+v", s)
	}
}

func TestChannelsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	rt, err := Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := rt.Channels().Create(ctx, "general"); err != nil {
		t.Fatalf("create: %v", err)
	}
	p := post.Post{ID: "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa", Author: "Anonymous", Content: "hi", CreatedAt: 7}
	if err := rt.Logs().Open("general").Append(ctx, p); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := rt.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	rt, err = Open(Options{DataDir: dir, Fsync: pebblestore.FsyncModeAlways})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer rt.Close()
	if _, ok, err := rt.Channels().Find(ctx, "general"); err != nil || !ok {
		t.Fatalf("find after reopen: ok=%v err=%v", ok, err)
	}
	posts, err := rt.Logs().Open("general").List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 || posts[0] != p {
		t.Fatalf("unexpected posts: %+v", posts)
	}
}
