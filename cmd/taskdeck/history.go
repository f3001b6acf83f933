package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/journal"
)

var historyFlags struct {
	limit  int
	failed bool
	user   string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show journaled mutations for the current user",
	Long: `Replay the mutation journal and print what was issued and how it
settled, newest first. Use --user to read another account's journal on this
host without contacting the server.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 20, "Maximum number of mutations to show")
	historyCmd.Flags().BoolVar(&historyFlags.failed, "failed", false, "Only show failed mutations")
	historyCmd.Flags().StringVar(&historyFlags.user, "user", "", "Read the journal of this username")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if rt.journal == nil {
		return fmt.Errorf("journal is disabled (set journal: true in taskdeck.yml)")
	}

	username := historyFlags.user
	if username == "" {
		u, err := rt.requireUser(ctx)
		if err != nil {
			return err
		}
		username = u.Username
	}

	h, err := rt.journal.Load(ctx, journal.Scope(rt.client.Host(), username))
	if err != nil {
		return err
	}

	muts := h.Recent(historyFlags.limit)
	if historyFlags.failed {
		muts = h.Failed()
		if len(muts) > historyFlags.limit {
			muts = muts[len(muts)-historyFlags.limit:]
		}
	}

	out := cmd.OutOrStdout()
	if len(muts) == 0 {
		fmt.Fprintln(out, "No activity.")
		return nil
	}
	for _, m := range muts {
		line := fmt.Sprintf("%s  %-10s %-6s", m.IssuedAt.Local().Format("2006-01-02 15:04:05"), m.Outcome, m.Kind)
		if m.TaskID != 0 {
			line += fmt.Sprintf(" #%d", m.TaskID)
		}
		if m.Input != "" {
			line += "  " + m.Input
		}
		if m.Error != "" {
			line += "  error: " + m.Error
		}
		fmt.Fprintln(out, line)
	}
	return nil
}
