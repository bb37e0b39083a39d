package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/math-arcade/internal/config"
	"github.com/vovakirdan/math-arcade/internal/server"
)

var (
	flagServerConfig string
	flagSSHAddr      string
	flagHostKey      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the arcade servers",
	Long: `Start the SSH, HTTP and gRPC servers.

SSH users play in a private session with a game picker menu and are ranked
under their SSH user name. The HTTP API serves the leaderboard, browser
play over WebSocket, /metrics and /debug/pprof. gRPC serves health checks.

Configuration is read from --server-config (YAML, JSON or TOML) on top of
the defaults, then from ARCADE_* environment variables, for example
ARCADE_AUTH_SECRET, ARCADE_STORAGE_DRIVER or ARCADE_HTTP_ADDRESS.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.arcade/host_key

Examples:
  ARCADE_AUTH_SECRET=dev arcade serve
  arcade serve --server-config ./arcade.yaml
  arcade serve --ssh :2222

Users can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServerConfig, "server-config", os.Getenv("CONFIG_PATH"), "Path to server config file")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	c := server.DefaultConfig()
	c.Storage.Path = flagDBPath
	c.Math.ConfigPath = flagConfig
	c.SSH.TickRate = flagFPS

	if err := config.Load(flagServerConfig, &c); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagSSHAddr != "" {
		c.SSH.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		c.SSH.HostKeyPath = flagHostKey
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGTERM, os.Interrupt)

	s, err := server.Init(c, nil)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	select {
	case <-shutdown:
		s.Shutdown()
		return nil
	case err := <-done:
		s.Shutdown()
		return err
	}
}
