package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces environment overrides, e.g. CHATD_HTTP_ADDR.
const EnvPrefix = "CHATD"

// FromEnv overlays CHATD_* environment variables onto cfg. Unset variables
// leave the current value untouched. Each variable also falls back to its
// unprefixed name, so a bare PORT works as on most PaaS hosts.
func FromEnv(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (".env" when none are
// given) into the process environment. Variables already set win. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}
