// Package runtime wires storage into a single-node chatd instance. It exposes
// Open/Close, a basic health check with storage counters, and the channel
// registry and post logs used by the channel service.
//
// Example:
//
//	rt, _ := runtime.Open(runtime.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeAlways})
//	defer rt.Close()
//	_ = rt.CheckHealth(context.Background())
//	ch, _ := rt.Channels().Create(context.Background(), "general")
//	_ = rt.Logs().Open(ch.Name).Append(context.Background(), p)
package runtime
