package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clientcmd "github.com/cis1951/lec8-backend/internal/cmd/client"
	serverrun "github.com/cis1951/lec8-backend/internal/cmd/server"
	cfgpkg "github.com/cis1951/lec8-backend/internal/config"
)

func main() {
	if err := cfgpkg.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "dotenv:", err)
	}
	rootCmd := &cobra.Command{
		Use:          "chatd",
		Short:        "chatd channel/post messaging backend",
		Long:         "chatd serves channels of timestamped posts over HTTP, WebSocket, SSE and gRPC. This CLI runs the server and talks to it.",
		SilenceUsage: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start chatd (HTTP and gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := cfgpkg.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfgpkg.FromEnv(&cfg); err != nil {
				return fmt.Errorf("env config: %w", err)
			}
			// explicit flags win over file and env
			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				cfg.DataDir, _ = flags.GetString("data-dir")
			}
			if flags.Changed("http") {
				cfg.HTTPAddr, _ = flags.GetString("http")
				cfg.Port = ""
			}
			if flags.Changed("grpc") {
				cfg.GRPCAddr, _ = flags.GetString("grpc")
			}
			if flags.Changed("fsync") {
				cfg.Fsync, _ = flags.GetString("fsync")
			}
			if flags.Changed("fsync-interval") {
				cfg.FsyncInterval, _ = flags.GetDuration("fsync-interval")
			}
			if flags.Changed("log-level") {
				cfg.LogLevel, _ = flags.GetString("log-level")
			}
			if flags.Changed("log-format") {
				cfg.LogFormat, _ = flags.GetString("log-format")
			}
			if flags.Changed("sub-buf") {
				cfg.SubscriberBuffer, _ = flags.GetInt("sub-buf")
			}

			// Run builds the logger and handles SIGINT/SIGTERM.
			if err := serverrun.Run(context.Background(), serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	defaults := cfgpkg.Default()
	serverStartCmd.Flags().String("config", os.Getenv("CHATD_CONFIG"), "JSON config file")
	serverStartCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	serverStartCmd.Flags().String("http", defaults.HTTPAddr, "HTTP listen address (REST, /ws, /events)")
	serverStartCmd.Flags().String("grpc", defaults.GRPCAddr, "gRPC listen address (empty disables)")
	serverStartCmd.Flags().String("fsync", defaults.Fsync, "Fsync mode: always|interval|never")
	serverStartCmd.Flags().Duration("fsync-interval", defaults.FsyncInterval, "When --fsync=interval, group-commit window")
	serverStartCmd.Flags().String("log-level", defaults.LogLevel, "Log level: debug|info|warn|error")
	serverStartCmd.Flags().String("log-format", defaults.LogFormat, "Log format: text|json")
	serverStartCmd.Flags().Int("sub-buf", defaults.SubscriberBuffer, "Per-subscriber outbox size")
	serverCmd.AddCommand(serverStartCmd)
	rootCmd.AddCommand(serverCmd)

	clientcmd.AddCommands(rootCmd, clientcmd.APIURLFromEnv)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
