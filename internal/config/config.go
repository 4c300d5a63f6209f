package config

import (
	"encoding/json"
	"errors"
	"net"
	"os"
	"path/filepath"
	"time"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// HTTPAddr is the REST/WebSocket/SSE listen address.
	HTTPAddr string `json:"httpAddr" envconfig:"HTTP_ADDR"`
	// Port, when set, overrides the port of HTTPAddr. Read from CHATD_PORT or PORT.
	Port string `json:"port,omitempty" envconfig:"PORT"`
	// GRPCAddr is the gRPC live-transport listen address. Empty disables it.
	GRPCAddr string `json:"grpcAddr" envconfig:"GRPC_ADDR"`

	DataDir       string        `json:"dataDir" envconfig:"DATA_DIR"`
	Fsync         string        `json:"fsync" envconfig:"FSYNC"`
	FsyncInterval time.Duration `json:"fsyncInterval" envconfig:"FSYNC_INTERVAL"`

	DefaultPostLimit int `json:"defaultPostLimit" envconfig:"DEFAULT_POST_LIMIT"`
	SubscriberBuffer int `json:"subscriberBuffer" envconfig:"SUBSCRIBER_BUFFER"`

	LogLevel  string `json:"logLevel" envconfig:"LOG_LEVEL"`
	LogFormat string `json:"logFormat" envconfig:"LOG_FORMAT"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		HTTPAddr:         ":3000",
		GRPCAddr:         ":3001",
		DataDir:          DefaultDataDir(),
		Fsync:            "always",
		FsyncInterval:    5 * time.Millisecond,
		DefaultPostLimit: 10000,
		SubscriberBuffer: 64,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// DefaultDataDir is $XDG_DATA_HOME/chatd when set, otherwise ~/.chatd, or
// ./data when there is no home directory.
func DefaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "chatd")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "./data"
	}
	return filepath.Join(home, ".chatd")
}

// Load reads configuration from a JSON file over Default(). If path is empty,
// returns defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return Config{}, errors.New("yaml config not supported; use JSON")
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ListenAddr returns HTTPAddr with Port applied. An HTTPAddr without a port
// is taken as the host.
func (c Config) ListenAddr() string {
	if c.Port == "" {
		return c.HTTPAddr
	}
	host, _, err := net.SplitHostPort(c.HTTPAddr)
	if err != nil {
		host = c.HTTPAddr
	}
	return net.JoinHostPort(host, c.Port)
}
