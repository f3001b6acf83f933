package mcpserver

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/board"
	"github.com/mark3labs/taskdeck/internal/devserver"
	"github.com/mark3labs/taskdeck/internal/mutation"
	"github.com/mark3labs/taskdeck/internal/session"
	"github.com/mark3labs/taskdeck/internal/taskcache"
)

type fixture struct {
	srv    *Server
	client *api.Client
	sess   *session.Cache
}

// setupTestServer runs the tools against a dev server. When login is true
// the session is established before returning.
func setupTestServer(t *testing.T, login bool) *fixture {
	t.Helper()
	ctx := context.Background()

	dev, err := devserver.New(ctx, devserver.Config{HashCost: bcrypt.MinCost})
	require.NoError(t, err)
	ts := httptest.NewServer(dev.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = dev.Shutdown(context.Background())
	})

	client, err := api.NewClient(ts.URL)
	require.NoError(t, err)

	cache := taskcache.NewCollection(client)
	sess := session.New(client, cache)
	pipe := mutation.New(client, cache)

	if login {
		_, err := sess.Register(ctx, api.Registration{Username: "mcp", Password: "pw"})
		require.NoError(t, err)
	}
	return &fixture{srv: New(sess, cache, pipe), client: client, sess: sess}
}

func call(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{Name: name, Arguments: args},
	}
}

// extractText extracts text from CallToolResult.Content[0]
func extractText(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	if textContent, ok := result.Content[0].(mcp.TextContent); ok {
		return textContent.Text
	}
	return ""
}

func TestWhoami_NotLoggedIn(t *testing.T) {
	f := setupTestServer(t, false)

	result, err := f.srv.handleWhoami(context.Background(), call("whoami", nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "not logged in")
	assert.True(t, f.sess.Resolved(), "the tool resolves the session on demand")
}

func TestWhoami(t *testing.T) {
	f := setupTestServer(t, true)

	result, err := f.srv.handleWhoami(context.Background(), call("whoami", nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, extractText(result), "mcp (id ")
}

func TestListCategories(t *testing.T) {
	f := setupTestServer(t, true)

	result, err := f.srv.handleListCategories(context.Background(), call("list-categories", nil))
	require.NoError(t, err)
	text := extractText(result)
	assert.Contains(t, text, "Work\tblue")
	assert.Contains(t, text, "Urgent\tred")
}

func TestAddMoveListDelete(t *testing.T) {
	ctx := context.Background()
	f := setupTestServer(t, true)

	cats, err := f.client.ListCategories(ctx)
	require.NoError(t, err)
	work := cats[0]

	result, err := f.srv.handleAddTask(ctx, call("add-task", map[string]any{
		"title":    "Draft release notes",
		"category": float64(work.ID),
		"priority": "high",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))
	assert.Contains(t, extractText(result), "Created task")

	tasks, err := f.client.ListTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	id := tasks[0].ID

	result, err = f.srv.handleMoveTask(ctx, call("move-task", map[string]any{
		"id":     float64(id),
		"status": "review",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))
	assert.Equal(t, "Moved task "+tasks[0].Key()+" to Review", extractText(result))

	result, err = f.srv.handleListTasks(ctx, call("list-tasks", nil))
	require.NoError(t, err)
	text := extractText(result)
	assert.Contains(t, text, "## Review (1)")
	assert.Contains(t, text, "Draft release notes [Work] priority=high")

	other := cats[1].ID
	result, err = f.srv.handleListTasks(ctx, call("list-tasks", map[string]any{"category": float64(other)}))
	require.NoError(t, err)
	assert.NotContains(t, extractText(result), "Draft release notes")

	result, err = f.srv.handleDeleteTask(ctx, call("delete-task", map[string]any{"id": float64(id)}))
	require.NoError(t, err)
	require.False(t, result.IsError, extractText(result))

	tasks, err = f.client.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestMoveTask_Validation(t *testing.T) {
	f := setupTestServer(t, true)
	ctx := context.Background()

	result, err := f.srv.handleMoveTask(ctx, call("move-task", map[string]any{"id": float64(1), "status": "archived"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "invalid status")

	result, err = f.srv.handleMoveTask(ctx, call("move-task", map[string]any{"status": "review"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)

	result, err = f.srv.handleMoveTask(ctx, call("move-task", map[string]any{"id": float64(404), "status": "review"}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, extractText(result), "Task not found")
}

func TestAddTask_EmptyTitle(t *testing.T) {
	f := setupTestServer(t, true)

	result, err := f.srv.handleAddTask(context.Background(), call("add-task", map[string]any{"title": "   "}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestFormatBoard(t *testing.T) {
	cat := int64(1)
	idx := board.NewCategoryIndex([]api.Category{{ID: 1, Name: "Work", Color: "blue"}})
	out := FormatBoard([]api.Task{
		{ID: 1, Title: "a", Status: api.StatusPending, CategoryID: &cat},
		{ID: 2, Title: "b", Status: "archived"},
	}, idx)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "## Pending (1)", lines[0])
	assert.Equal(t, "- #1 a [Work]", lines[1])
	assert.Contains(t, out, "## Completed (0)")
	assert.Contains(t, out, "## Other (1)\n- #2 b [Uncategorized] status=archived")
}
