package main

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/tui"
)

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Open the interactive kanban board",
	Long: `Open the full-screen board. Shows the login form when no session is
saved, then the four status lanes for the logged-in user.`,
	RunE: runBoard,
}

func runBoard(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	notices := tui.NewNoticeQueue(0)
	rt, err := openRuntime(ctx, runtimeOptions{notifier: notices, journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ttl, err := rt.cfg.ToastTTL()
	if err != nil {
		return err
	}
	deps := tui.Deps{
		Session:  rt.session,
		Cache:    rt.cache,
		Pipeline: rt.pipeline,
		Notices:  notices,
		Host:     rt.client.Host(),
		DataDir:  rt.cfg.DataDir,
		ToastTTL: ttl,
	}
	if rt.journal != nil {
		deps.History = rt.journal
	}

	rt.session.Start(ctx)
	app := tui.NewApp(ctx, deps)
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}
