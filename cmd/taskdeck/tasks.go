package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/mcpserver"
	"github.com/mark3labs/taskdeck/internal/mutation"
)

var tasksFlags struct {
	category string
	lanes    bool
}

var addFlags struct {
	description string
	status      string
	category    string
	priority    string
	due         string
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List tasks",
	RunE:  runTasks,
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAdd,
}

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a task to another lane",
	Long: `Move a task to another lane. Status is one of pending, in-progress,
review or completed (lane labels such as "In Progress" also work).`,
	Args: cobra.ExactArgs(2),
	RunE: runMove,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	tasksCmd.Flags().StringVarP(&tasksFlags.category, "category", "c", "", "Only tasks in this category (id or name)")
	tasksCmd.Flags().BoolVar(&tasksFlags.lanes, "lanes", false, "Group tasks by board lane")

	addCmd.Flags().StringVarP(&addFlags.description, "description", "d", "", "Markdown description")
	addCmd.Flags().StringVarP(&addFlags.status, "status", "s", string(api.StatusPending), "Initial lane")
	addCmd.Flags().StringVarP(&addFlags.category, "category", "c", "", "Category id or name")
	addCmd.Flags().StringVarP(&addFlags.priority, "priority", "p", "", "low, medium or high")
	addCmd.Flags().StringVar(&addFlags.due, "due", "", "Deadline as YYYY-MM-DD")
}

// printSuccess reports successful mutations. Failures come back as the
// command's error.
func printSuccess(w io.Writer) mutation.Notifier {
	return mutation.NotifierFunc(func(n mutation.Notice) {
		if n.Level == mutation.LevelSuccess {
			fmt.Fprintln(w, n.Message)
		}
	})
}

// parseStatus accepts a wire status or a lane label, case-insensitively.
func parseStatus(s string) (api.Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, st := range api.Statuses {
		if norm == string(st) || norm == strings.ToLower(st.Label()) {
			return st, nil
		}
	}
	names := make([]string, len(api.Statuses))
	for i, st := range api.Statuses {
		names[i] = string(st)
	}
	return "", fmt.Errorf("invalid status %q: must be one of %s", s, strings.Join(names, ", "))
}

// resolveCategory finds a category by id or by name. An empty query means
// no category.
func resolveCategory(cats []api.Category, query string) (*int64, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		for _, c := range cats {
			if c.ID == id {
				return &id, nil
			}
		}
		return nil, fmt.Errorf("no category with id %d", id)
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, query) {
			id := c.ID
			return &id, nil
		}
	}
	return nil, fmt.Errorf("no category named %q", query)
}

func parseTaskID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// taskTable renders tasks as a bordered table.
func taskTable(tasks []api.Task, idx board.CategoryIndex, now time.Time) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "TITLE", "STATUS", "CATEGORY", "PRIORITY", "DUE")
	for _, task := range tasks {
		due := ""
		if task.Deadline != nil {
			due = task.Deadline.Format("2006-01-02")
			if board.IsOverdue(task, now) {
				due += " (overdue)"
			}
		}
		t.Row(
			strconv.FormatInt(task.ID, 10),
			task.Title,
			task.Status.Label(),
			idx.Name(task.CategoryID),
			board.ParsePriority(task.Priority).String(),
			due,
		)
	}
	return t
}

func runTasks(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(ctx); err != nil {
		return err
	}
	tasks, err := rt.cache.Tasks.Get(ctx)
	if err != nil {
		return err
	}
	cats, err := rt.cache.Categories.Get(ctx)
	if err != nil {
		return err
	}
	filter, err := resolveCategory(cats, tasksFlags.category)
	if err != nil {
		return err
	}

	idx := board.NewCategoryIndex(cats)
	visible := board.Filter(tasks, filter)
	out := cmd.OutOrStdout()
	if tasksFlags.lanes {
		fmt.Fprintln(out, mcpserver.FormatBoard(visible, idx))
		return nil
	}
	if len(visible) == 0 {
		fmt.Fprintln(out, "No tasks.")
		return nil
	}
	_, err = lipgloss.Fprintln(out, taskTable(visible, idx, time.Now()))
	return err
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{notifier: printSuccess(cmd.OutOrStdout()), journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(ctx); err != nil {
		return err
	}

	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return fmt.Errorf("title must not be empty")
	}
	status, err := parseStatus(addFlags.status)
	if err != nil {
		return err
	}
	in := api.NewTask{Title: title, Status: status}
	if addFlags.priority != "" {
		in.Priority = board.ParsePriority(addFlags.priority).String()
	}
	if d := strings.TrimSpace(addFlags.description); d != "" {
		in.Description = &d
	}
	if addFlags.due != "" {
		due, err := time.ParseInLocation("2006-01-02", addFlags.due, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --due %q: want YYYY-MM-DD", addFlags.due)
		}
		in.Deadline = &due
	}
	if addFlags.category != "" {
		cats, err := rt.cache.Categories.Get(ctx)
		if err != nil {
			return err
		}
		if in.CategoryID, err = resolveCategory(cats, addFlags.category); err != nil {
			return err
		}
	}

	task, err := rt.pipeline.CreateTask(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Task #%d in %s\n", task.ID, task.Status.Label())
	return nil
}

func runMove(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}
	status, err := parseStatus(args[1])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{notifier: printSuccess(cmd.OutOrStdout()), journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(ctx); err != nil {
		return err
	}
	return rt.pipeline.UpdateTaskStatus(ctx, id, status)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseTaskID(args[0])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	rt, err := openRuntime(ctx, runtimeOptions{notifier: printSuccess(cmd.OutOrStdout()), journal: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	if _, err := rt.requireUser(ctx); err != nil {
		return err
	}
	return rt.pipeline.DeleteTask(ctx, id)
}
