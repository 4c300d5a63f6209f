package log

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Config is the declarative logger configuration.
type Config struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	// Output is one of stderr (default), stdout, null.
	Output string `json:"output"`
}

// ApplyConfig builds a Logger from cfg.
func ApplyConfig(cfg *Config) (Logger, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	var format Format
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		format = FormatText
	case "json":
		format = FormatJSON
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}
	var out io.Writer
	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "null", "none":
		out = io.Discard
	default:
		return nil, fmt.Errorf("unknown log output %q", cfg.Output)
	}
	return NewLogger(WithLevel(lvl), WithFormat(format), WithOutput(out)), nil
}
