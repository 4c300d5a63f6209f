// Package pebblestore is the thin Pebble wrapper that every durable component
// of chatd writes through: the channel registry and the per-channel post logs
// share one database.
//
// Usage:
//
//	db, err := pebblestore.Open(pebblestore.Options{
//	    DataDir: "./data",
//	    Fsync:   pebblestore.FsyncModeAlways,
//	})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	// Atomic multi-key updates
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = pebblestore.DeletePrefix(b, []byte("chan/log/general/"))
//	_ = db.CommitBatch(context.Background(), b)
//	b.Close()
package pebblestore
