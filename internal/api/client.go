package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/taskdeck/internal/logger"
)

// ErrUnauthenticated is returned when the server reports no active session.
var ErrUnauthenticated = errors.New("not authenticated")

// StatusError is a non-2xx response. Message comes from the server's
// {"message": ...} body when present.
type StatusError struct {
	Method  string
	Path    string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Client talks to the task tracker API using a cookie session.
type Client struct {
	base *url.URL
	http *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client. Its Jar is kept if
// set, otherwise a fresh jar is installed.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each request.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing api url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api url %q must be absolute", baseURL)
	}

	c := &Client{base: u, http: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	if c.http.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("creating cookie jar: %w", err)
		}
		c.http.Jar = jar
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// Host returns the API host, used to scope persisted state.
func (c *Client) Host() string {
	return c.base.Host
}

// Cookies returns the session cookies currently held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	return c.http.Jar.Cookies(c.base)
}

// SetCookies restores previously saved session cookies.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.http.Jar.SetCookies(c.base, cookies)
}

// ClearCookies drops any held session cookie. The jar is expired in place
// so requests in flight keep a valid jar.
func (c *Client) ClearCookies() {
	held := c.http.Jar.Cookies(c.base)
	if len(held) == 0 {
		return
	}
	expired := make([]*http.Cookie, 0, 2*len(held))
	for _, ck := range held {
		// Cookies() omits the path, so expire both the root path and the
		// default path a restored cookie lands on.
		expired = append(expired,
			&http.Cookie{Name: ck.Name, Path: "/", MaxAge: -1},
			&http.Cookie{Name: ck.Name, MaxAge: -1},
		)
	}
	c.http.Jar.SetCookies(c.base, expired)
}

// CurrentUser returns the session user, or ErrUnauthenticated on 401.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/user", nil, &u); err != nil {
		var se *StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	return &u, nil
}

// Login establishes a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/login", creds, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates an account and establishes a session.
func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodPost, "/api/register", reg, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Logout terminates the session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// ListTasks returns the session user's tasks.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListCategories returns the session user's categories.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// CreateTask adds a task.
func (c *Client) CreateTask(ctx context.Context, in NewTask) (*Task, error) {
	var t Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTask applies a partial update.
func (c *Client) UpdateTask(ctx context.Context, id int64, patch TaskPatch) error {
	return c.do(ctx, http.MethodPatch, taskPath(id), patch, nil)
}

// DeleteTask removes a task.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id int64) string {
	return "/api/tasks/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := sonic.ConfigStd.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debug("api: %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			Method:  method,
			Path:    path,
			Code:    resp.StatusCode,
			Message: readMessage(resp.Body),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// readMessage extracts {"message": "..."} or falls back to the raw body.
func readMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(data) == 0 {
		return ""
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := sonic.ConfigStd.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}
