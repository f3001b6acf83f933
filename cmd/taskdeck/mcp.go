package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/mcpserver"
)

var mcpFlags struct {
	stdio bool
	addr  string
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the board as MCP tools",
	Long: `Expose whoami, list-categories, list-tasks, move-task, add-task and
delete-task to MCP clients. Writes go through the same mutation pipeline as
the board, so they are ordered per task and journaled.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().BoolVar(&mcpFlags.stdio, "stdio", false, "Serve over stdin/stdout")
	mcpCmd.Flags().StringVar(&mcpFlags.addr, "addr", "127.0.0.1:0", "Listen address for streamable HTTP")
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := openRuntime(ctx, runtimeOptions{journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.session.Start(ctx)
	srv := mcpserver.New(rt.session, rt.cache, rt.pipeline)

	if mcpFlags.stdio {
		return srv.ServeStdio()
	}

	if err := srv.Start(mcpFlags.addr); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on %s\n", srv.URL())

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
