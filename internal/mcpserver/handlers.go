package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
)

var statusEnum = []string{
	string(api.StatusPending),
	string(api.StatusInProgress),
	string(api.StatusReview),
	string(api.StatusCompleted),
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("whoami",
			mcp.WithDescription("Show the logged-in user"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleWhoami,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-categories",
			mcp.WithDescription("List the user's task categories"),
			mcp.WithReadOnlyHintAnnotation(true),
		),
		s.handleListCategories,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list-tasks",
			mcp.WithDescription("List tasks grouped by board lane"),
			mcp.WithReadOnlyHintAnnotation(true),
			mcp.WithNumber("category",
				mcp.Description("Only show tasks in this category id"),
			),
		),
		s.handleListTasks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("move-task",
			mcp.WithDescription("Move a task to another lane"),
			mcp.WithIdempotentHintAnnotation(true),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Task id"),
			),
			mcp.WithString("status",
				mcp.Required(),
				mcp.Description("Target lane"),
				mcp.Enum(statusEnum...),
			),
		),
		s.handleMoveTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("add-task",
			mcp.WithDescription("Create a task"),
			mcp.WithString("title",
				mcp.Required(),
				mcp.Description("Task title"),
			),
			mcp.WithString("description",
				mcp.Description("Markdown description"),
			),
			mcp.WithNumber("category",
				mcp.Description("Category id"),
			),
			mcp.WithString("status",
				mcp.Description("Initial lane (default pending)"),
				mcp.Enum(statusEnum...),
			),
			mcp.WithString("priority",
				mcp.Description("Priority"),
				mcp.Enum("low", "medium", "high"),
			),
		),
		s.handleAddTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete-task",
			mcp.WithDescription("Delete a task"),
			mcp.WithDestructiveHintAnnotation(true),
			mcp.WithNumber("id",
				mcp.Required(),
				mcp.Description("Task id"),
			),
		),
		s.handleDeleteTask,
	)
}

// requireUser resolves the session, refreshing it if the cache has not
// settled yet.
func (s *Server) requireUser(ctx context.Context) (*api.User, error) {
	if u, ok := s.session.CurrentUser(); ok {
		return u, nil
	}
	if !s.session.Resolved() {
		if _, err := s.session.Refresh(ctx); err != nil {
			return nil, err
		}
		if u, ok := s.session.CurrentUser(); ok {
			return u, nil
		}
	}
	return nil, fmt.Errorf("not logged in; run `taskdeck login` first")
}

func (s *Server) handleWhoami(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	u, err := s.requireUser(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text := fmt.Sprintf("%s (id %d)", u.Username, u.ID)
	if u.Name != nil && *u.Name != "" {
		text = fmt.Sprintf("%s <%s> (id %d)", *u.Name, u.Username, u.ID)
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleListCategories(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cats, err := s.cache.Categories.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load categories: %v", err)), nil
	}
	if len(cats) == 0 {
		return mcp.NewToolResultText("No categories."), nil
	}
	var b strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&b, "%d\t%s\t%s\n", c.ID, c.Name, board.ParseColor(c.Color))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var filter *int64
	if _, ok := request.GetArguments()["category"]; ok {
		id := int64(request.GetInt("category", 0))
		filter = &id
	}

	tasks, err := s.cache.Tasks.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load tasks: %v", err)), nil
	}
	cats, err := s.cache.Categories.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load categories: %v", err)), nil
	}

	return mcp.NewToolResultText(FormatBoard(board.Filter(tasks, filter), board.NewCategoryIndex(cats))), nil
}

// FormatBoard renders tasks as one section per lane, followed by any tasks
// whose status is not a lane.
func FormatBoard(tasks []api.Task, idx board.CategoryIndex) string {
	lanes := board.Partition(tasks)
	var b strings.Builder
	for _, st := range api.Statuses {
		lane := lanes.Lane(st)
		fmt.Fprintf(&b, "## %s (%d)\n", st.Label(), len(lane))
		for _, t := range lane {
			writeTask(&b, t, idx)
		}
		b.WriteString("\n")
	}
	if other := board.Unlaned(tasks); len(other) > 0 {
		fmt.Fprintf(&b, "## Other (%d)\n", len(other))
		for _, t := range other {
			writeTask(&b, t, idx)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func writeTask(b *strings.Builder, t api.Task, idx board.CategoryIndex) {
	fmt.Fprintf(b, "- #%d %s [%s]", t.ID, t.Title, idx.Name(t.CategoryID))
	if t.Priority != "" {
		fmt.Fprintf(b, " priority=%s", t.Priority)
	}
	if !t.Status.Valid() {
		fmt.Fprintf(b, " status=%s", t.Status)
	}
	if t.Deadline != nil {
		fmt.Fprintf(b, " due=%s", t.Deadline.Format("2006-01-02"))
	}
	b.WriteString("\n")
}

func (s *Server) handleMoveTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := request.RequireString("status")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	status := api.Status(raw)
	if !status.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q: must be one of %s", raw, strings.Join(statusEnum, ", "))), nil
	}

	if err := s.pipeline.UpdateTaskStatus(ctx, int64(id), status); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Moved task %d to %s", id, status.Label())), nil
}

func (s *Server) handleAddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return mcp.NewToolResultError("title must not be empty"), nil
	}

	in := api.NewTask{
		Title:    title,
		Status:   api.Status(request.GetString("status", string(api.StatusPending))),
		Priority: request.GetString("priority", ""),
	}
	if !in.Status.Valid() {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", in.Status)), nil
	}
	if desc := request.GetString("description", ""); desc != "" {
		in.Description = &desc
	}
	if _, ok := request.GetArguments()["category"]; ok {
		cat := int64(request.GetInt("category", 0))
		in.CategoryID = &cat
	}

	task, err := s.pipeline.CreateTask(ctx, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created task %d: %s", task.ID, task.Title)), nil
}

func (s *Server) handleDeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireUser(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.pipeline.DeleteTask(ctx, int64(id)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted task %d", id)), nil
}
