package serverrun

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/cis1951/lec8-backend/internal/broadcast"
	cfgpkg "github.com/cis1951/lec8-backend/internal/config"
	"github.com/cis1951/lec8-backend/internal/runtime"
	grpcserver "github.com/cis1951/lec8-backend/internal/server/grpc"
	httpserver "github.com/cis1951/lec8-backend/internal/server/http"
	channelsvc "github.com/cis1951/lec8-backend/internal/services/channels"
	pebblestore "github.com/cis1951/lec8-backend/internal/storage/pebble"
	logpkg "github.com/cis1951/lec8-backend/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
	// Logger overrides the logger built from Config.LogLevel/LogFormat.
	Logger logpkg.Logger
	// OnReady, if set, is called once both listeners are bound. grpcAddr is
	// empty when gRPC is disabled.
	OnReady func(httpAddr, grpcAddr string)
}

// storeDir is where Pebble lives under the data directory.
func storeDir(dataDir string) string {
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	return filepath.Join(dataDir, "store")
}

func buildLogger(cfg cfgpkg.Config) (logpkg.Logger, error) {
	return logpkg.ApplyConfig(&logpkg.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
}

// Run starts the HTTP and gRPC servers and blocks until ctx is cancelled or a
// server fails. Shutdown order: servers, broadcaster, storage.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	cfg := opts.Config

	fsync, err := pebblestore.ParseFsyncMode(cfg.Fsync)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		if logger, err = buildLogger(cfg); err != nil {
			return err
		}
	}
	// Redirect stdlib logs (e.g., Pebble) to our logger
	logpkg.RedirectStdLog(logger)

	rt, err := runtime.Open(runtime.Options{
		DataDir:       storeDir(cfg.DataDir),
		Fsync:         fsync,
		FsyncInterval: cfg.FsyncInterval,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	bc := broadcast.New(logger, broadcast.Options{Buffer: cfg.SubscriberBuffer})
	defer bc.Close()
	svc := channelsvc.New(rt, bc, logger, channelsvc.Options{DefaultLimit: cfg.DefaultPostLimit})

	hl, err := net.Listen("tcp", cfg.ListenAddr())
	if err != nil {
		return err
	}
	var gl net.Listener
	if cfg.GRPCAddr != "" {
		if gl, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			_ = hl.Close()
			return err
		}
	}

	logger.Info("starting chatd",
		logpkg.Str("http", hl.Addr().String()),
		logpkg.Str("grpc", addrString(gl)),
		logpkg.Str("data_dir", cfg.DataDir),
		logpkg.Str("fsync", cfg.Fsync),
		logpkg.Str("level", cfg.LogLevel),
		logpkg.Int("default_limit", cfg.DefaultPostLimit),
		logpkg.Int("sub_buf", cfg.SubscriberBuffer),
	)

	runCtx, cancel := context.WithCancel(sctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() { firstErr = err })
		cancel()
	}

	hsrv := httpserver.New(rt, svc, bc, logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hsrv.Serve(runCtx, hl); err != nil && runCtx.Err() == nil {
			logger.Error("http server", logpkg.Err(err))
			fail(err)
		}
	}()
	if gl != nil {
		gsrv := grpcserver.New(rt, svc, bc, logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gsrv.Serve(runCtx, gl); err != nil && runCtx.Err() == nil {
				logger.Error("grpc server", logpkg.Err(err))
				fail(err)
			}
		}()
	}
	if opts.OnReady != nil {
		opts.OnReady(hl.Addr().String(), addrString(gl))
	}

	<-runCtx.Done()
	logger.Info("shutting down")
	wg.Wait()
	if firstErr != nil && !errors.Is(firstErr, context.Canceled) {
		return firstErr
	}
	return nil
}

func addrString(l net.Listener) string {
	if l == nil {
		return ""
	}
	return l.Addr().String()
}
