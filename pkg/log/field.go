package log

import (
	"log/slog"
	"time"
)

// Field is a single structured key/value pair.
type Field struct {
	Key   string
	Value any
}

// ComponentKey tags the subsystem that emitted a log line.
const ComponentKey = "component"

func Str(key, v string) Field { return Field{Key: key, Value: v} }
func Int(key string, v int) Field { return Field{Key: key, Value: v} }
func Int64(key string, v int64) Field { return Field{Key: key, Value: v} }
func Bool(key string, v bool) Field { return Field{Key: key, Value: v} }
func Dur(key string, v time.Duration) Field { return Field{Key: key, Value: v} }
func Any(key string, v any) Field { return Field{Key: key, Value: v} }
func Component(name string) Field { return Field{Key: ComponentKey, Value: name} }

// Err stores err under "error". A nil error yields an empty string value.
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: ""}
	}
	return Field{Key: "error", Value: err.Error()}
}

func attrs(fields []Field) []slog.Attr {
	if len(fields) == 0 {
		return nil
	}
	out := make([]slog.Attr, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key, f.Value))
	}
	return out
}
