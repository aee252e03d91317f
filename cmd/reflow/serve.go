package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/reflow-dev/reflow/internal/config"
	"github.com/reflow-dev/reflow/pkg/server"
	"github.com/reflow-dev/reflow/pkg/state"
)

func serveCmd() *cobra.Command {
	var (
		port     int
		host     string
		readOnly bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sync server",
		Long: `Start the sync server over a state container.

The server loads reflow.yaml from the working directory, seeds the
data graph from the configured seed file when one is set, and serves
the sync socket plus the HTTP state surface.

Examples:
  reflow serve
  reflow serve --port=9000
  reflow serve --read-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port, host, readOnly)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from reflow.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from reflow.yaml)")
	cmd.Flags().BoolVar(&readOnly, "read-only", false, "Reject writes from remote sessions")

	return cmd
}

func runServe(port int, host string, readOnly bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	// Command-line overrides.
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if readOnly {
		cfg.Server.ReadOnly = true
	}

	setupLogging(cfg.Log)

	graph, err := loadSeed(cfg.SeedPath())
	if err != nil {
		return err
	}

	store, err := state.New(graph)
	if err != nil {
		return err
	}
	defer store.Destroy()

	srv := server.New(store, &server.Config{
		Address:      cfg.Server.Addr(),
		ReadOnly:     cfg.Server.ReadOnly,
		PingInterval: cfg.Sync.PingEvery(),
		SendBuffer:   cfg.Sync.SendBuffer,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	done := make(chan error, 1)
	go func() { done <- srv.Start() }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-done:
		return err
	case s := <-sig:
		slog.Info("shutting down", "signal", s.String())
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

// setupLogging installs the default slog logger per the configuration.
func setupLogging(cfg config.LogConfig) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// loadSeed reads the initial data graph from a JSON file. An empty
// path yields an empty graph.
func loadSeed(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var graph map[string]any
	if err := json.Unmarshal(data, &graph); err != nil {
		return nil, fmt.Errorf("parse seed %s: %w", path, err)
	}
	return graph, nil
}
