// Package log provides the service's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library
// slog handlers, so output is either logfmt-style text or JSON.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	    log.WithOutput(os.Stderr),
//	)
//	l = l.With(log.Component("http"), log.Str("addr", ":3000"))
//	l.Info("server started")
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config (level, format,
// output). Tests use NewNop.
//
// # Interop
//
// Pebble and a few other libraries write through the standard library log
// package. RedirectStdLog routes those lines into a Logger.
package log
