// Package httpserver is the REST and live-push gateway: channel and post
// endpoints, a WebSocket live connection at /ws, a receive-only SSE feed at
// /events and a health probe.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways})
//	bc := broadcast.New(logger, broadcast.Options{})
//	svc := channelsvc.New(rt, bc, logger, channelsvc.Options{})
//	s := httpserver.New(rt, svc, bc, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":3000")
package httpserver
