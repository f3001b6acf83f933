package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/devserver"
)

var devserverFlags struct {
	addr       string
	db         string
	redis      string
	sessionTTL time.Duration
}

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local task API for development",
	Long: `Serve the task API (login, register, logout, user, tasks, categories)
backed by SQLite. Sessions live in memory, or in Redis when --redis is set.
Point the client at it with --api-url http://<addr>.`,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devserverFlags.addr, "addr", "", "Listen address (default: server_addr from config)")
	devserverCmd.Flags().StringVar(&devserverFlags.db, "db", "", "SQLite database path (default: in memory)")
	devserverCmd.Flags().StringVar(&devserverFlags.redis, "redis", "", "Redis URL for session storage")
	devserverCmd.Flags().DurationVar(&devserverFlags.sessionTTL, "session-ttl", 24*time.Hour, "Session lifetime")
}

func runDevserver(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	srvCfg := devserver.Config{
		Addr:       cfg.ServerAddr,
		DBPath:     cfg.ServerDB,
		RedisURL:   cfg.RedisURL,
		SessionTTL: devserverFlags.sessionTTL,
	}
	if devserverFlags.addr != "" {
		srvCfg.Addr = devserverFlags.addr
	}
	if devserverFlags.db != "" {
		srvCfg.DBPath = devserverFlags.db
	}
	if devserverFlags.redis != "" {
		srvCfg.RedisURL = devserverFlags.redis
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := devserver.New(ctx, srvCfg)
	if err != nil {
		return fmt.Errorf("starting dev server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()
	fmt.Fprintf(cmd.OutOrStdout(), "Dev server listening on http://%s\n", srvCfg.Addr)

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return errors.Join(runErr, err)
	}
	return runErr
}
