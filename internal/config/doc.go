// Package config provides loading and environment overlay for chatd
// configuration. It exposes a Default() baseline, a JSON file loader and an
// envconfig-based overlay of CHATD_* variables.
//
// Example:
//
//	_ = config.LoadDotEnv()
//	cfg, err := config.Load(os.Getenv("CHATD_CONFIG"))
//	if err != nil {
//	    return err
//	}
//	if err := config.FromEnv(&cfg); err != nil {
//	    return err
//	}
//	rt, _ := runtime.Open(runtime.Options{DataDir: cfg.DataDir, Fsync: pebblestore.FsyncModeAlways})
//	defer rt.Close()
package config
