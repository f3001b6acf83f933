package main

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/logger"
	"github.com/mark3labs/taskdeck/internal/tui/theme"
)

const (
	logoText1 = "▀█▀ ▄▀█ █▀ █▄▀ █▀▄ █▀▀ █▀▀ █▄▀"
	logoText2 = " █  █▀█ ▄█ █ █ █▄▀ ██▄ █▄▄ █ █"
)

// Version set via ldflags during build
var version = "dev"

// Global flags override config files and environment.
var rootFlags struct {
	apiURL   string
	dataDir  string
	logLevel string
	logFile  string
}

func main() {
	defer func() { _ = logger.Close() }()

	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(version)); err != nil {
		logger.Error("Command execution failed: %v", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "taskdeck",
	Short: "Kanban board client for a session-authenticated task API",
	RunE:  runBoard,
}

func renderLogo() string {
	t := theme.NewCatppuccinMocha()
	line1 := theme.ApplyGradient(logoText1, t.Primary, t.Secondary)
	line2 := theme.ApplyGradient(logoText2, t.Primary, t.Secondary)
	return strings.Join([]string{line1, line2}, "\n")
}

func init() {
	rootCmd.Long = renderLogo() + `

taskdeck keeps a local, session-aware view of your tasks and categories and
shows them as a four-lane kanban board. Cards move between lanes by mouse
drag or keyboard; every change goes through an ordered mutation pipeline and
is journaled to an embedded NATS JetStream store.

Run without a subcommand to open the board.`

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.apiURL, "api-url", "", "Task API root (default: from config, http://localhost:5000)")
	pf.StringVar(&rootFlags.dataDir, "data-dir", "", "Directory for cookies, UI state and the journal (default: .taskdeck)")
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(boardCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(configCmd)
}
