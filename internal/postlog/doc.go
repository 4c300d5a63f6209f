// Package postlog implements the durable per-channel post log.
//
// # Overview
//
// Each channel owns one append-only log stored in Pebble. Entries are keyed by
// the caller-supplied createdAt timestamp followed by an insertion sequence, so
// a forward range scan yields posts ordered by createdAt with ties broken by
// insertion order:
//   - chan/log/{len_be4}{name}/m                          (metadata: lastSeq)
//   - chan/log/{len_be4}{name}/e/{createdAt_be8}/{seq_be8} (entries)
//
// The name is length-prefixed so that no channel's keyspace is a prefix of
// another's. Records are stored as payload | crc32c(payload).
//
// API surface (internal)
//
//	logs := postlog.NewStore(db)
//	b := db.NewBatch()
//	_ = logs.Init(b, "general") // committed together with the channel record
//	l := logs.Open("general")
//	_ = l.Append(ctx, p)
//	posts, _ := l.List(100)
//	_ = logs.Destroy(ctx, db.NewBatch(), "general")
package postlog
