package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/triplestack/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Triple Stack SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a game picker menu and its own
game instance. Runs are stored per-server (all users share the same history);
with --redis the global record is shared across servers as well.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.triplestack/host_key

Examples:
  triplestack serve                           # Listen on :23234 with auto-generated key
  triplestack serve --ssh :2222               # Listen on port 2222
  triplestack serve --host-key ./my_host_key  # Use specific host key
  triplestack serve --db ./runs.db            # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(_ *cobra.Command, _ []string) {
	logger, closer, err := newLogger()
	if err != nil {
		fail("%v", err)
	}
	defer closer.Close()

	applyRulesetFlags()

	svc := openServices(logger)
	defer closeServices(svc)

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		TickRate:    flagFPS,
	}

	server, err := tui.NewSSHServer(cfg, svc)
	if err != nil {
		fail("creating server: %v", err)
	}

	fmt.Printf("Starting Triple Stack SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		closeServices(svc)
		fail("server: %v", err)
	}
}
