// Package devserver is a small session-cookie task API for local use and for
// exercising the client end to end.
package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	"github.com/mark3labs/taskdeck/internal/api"
	"github.com/mark3labs/taskdeck/internal/logger"
)

// SessionCookie is the name of the session cookie.
const SessionCookie = "taskdeck.sid"

const userIDKey = "userID"

// seedCategories are created for every new account.
var seedCategories = []api.Category{
	{Name: "Work", Color: "blue"},
	{Name: "Personal", Color: "green"},
	{Name: "Urgent", Color: "red"},
}

// Config configures a Server.
type Config struct {
	Addr       string
	DBPath     string
	RedisURL   string        // empty keeps sessions in memory
	SessionTTL time.Duration // defaults to 24h
	HashCost   int           // bcrypt cost, defaults to bcrypt.DefaultCost
}

// Server serves the task API over echo.
type Server struct {
	cfg      Config
	echo     *echo.Echo
	db       *sql.DB
	store    *Store
	sessions SessionStore
	redis    *redis.Client
}

// New opens storage and the session store and registers the routes.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}
	if cfg.HashCost == 0 {
		cfg.HashCost = bcrypt.DefaultCost
	}
	if cfg.DBPath == "" {
		cfg.DBPath = ":memory:"
	}

	db, err := OpenDB(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, db: db, store: NewStore(db)}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			opts = &redis.Options{Addr: cfg.RedisURL}
		}
		s.redis = redis.NewClient(opts)
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.redis.Close()
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		s.sessions = NewRedisSessions(s.redis, cfg.SessionTTL)
	} else {
		s.sessions = NewMemorySessions(cfg.SessionTTL)
	}

	s.echo = s.routes()
	return s, nil
}

func (s *Server) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = sonicSerializer{}

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logger.WithFields(logger.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	g := e.Group("/api")
	g.POST("/login", s.login)
	g.POST("/register", s.register)
	g.POST("/logout", s.logout)

	authed := g.Group("", s.requireSession)
	authed.GET("/user", s.currentUser)
	authed.GET("/tasks", s.listTasks)
	authed.POST("/tasks", s.createTask)
	authed.PATCH("/tasks/:id", s.updateTask)
	authed.DELETE("/tasks/:id", s.deleteTask)
	authed.GET("/categories", s.listCategories)
	return e
}

// Handler exposes the server for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on cfg.Addr until Shutdown.
func (s *Server) Start() error {
	logger.Info("Dev server listening on %s", s.cfg.Addr)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the listener and closes storage.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.echo.Shutdown(ctx)
	if s.redis != nil {
		s.redis.Close()
	}
	if cerr := s.db.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

// Store exposes the repository for seeding in tests.
func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(SessionCookie)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		uid, ok, err := s.sessions.Lookup(c.Request().Context(), cookie.Value)
		if err != nil {
			return internalError(err)
		}
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
		}
		c.Set(userIDKey, uid)
		return next(c)
	}
}

func (s *Server) currentUser(c echo.Context) error {
	u, err := s.store.UserByID(c.Request().Context(), c.Get(userIDKey).(int64))
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) login(c echo.Context) error {
	var creds api.Credentials
	if err := c.Bind(&creds); err != nil {
		return err
	}
	ctx := c.Request().Context()

	row, err := s.store.userByUsername(ctx, creds.Username)
	if errors.Is(err, ErrNotFound) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}
	if err != nil {
		return internalError(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(creds.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid username or password")
	}

	if err := s.startSession(c, row.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, row.User)
}

func (s *Server) register(c echo.Context) error {
	var reg api.Registration
	if err := c.Bind(&reg); err != nil {
		return err
	}
	reg.Username = strings.TrimSpace(reg.Username)
	if reg.Username == "" || reg.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Username and password are required")
	}
	ctx := c.Request().Context()

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cfg.HashCost)
	if err != nil {
		return internalError(err)
	}
	u, err := s.store.CreateUser(ctx, reg, string(hash))
	if errors.Is(err, ErrUsernameTaken) {
		return echo.NewHTTPError(http.StatusBadRequest, "Username already exists")
	}
	if err != nil {
		return internalError(err)
	}
	for _, cat := range seedCategories {
		if _, err := s.store.CreateCategory(ctx, u.ID, cat.Name, cat.Color); err != nil {
			return internalError(err)
		}
	}

	if err := s.startSession(c, u.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

func (s *Server) logout(c echo.Context) error {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := s.sessions.Delete(c.Request().Context(), cookie.Value); err != nil {
			return internalError(err)
		}
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Server) startSession(c echo.Context, userID int64) error {
	token, err := s.sessions.Create(c.Request().Context(), userID)
	if err != nil {
		return internalError(err)
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) listTasks(c echo.Context) error {
	tasks, err := s.store.ListTasks(c.Request().Context(), c.Get(userIDKey).(int64))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, tasks)
}

func (s *Server) listCategories(c echo.Context) error {
	cats, err := s.store.ListCategories(c.Request().Context(), c.Get(userIDKey).(int64))
	if err != nil {
		return internalError(err)
	}
	return c.JSON(http.StatusOK, cats)
}

func (s *Server) createTask(c echo.Context) error {
	var in api.NewTask
	if err := c.Bind(&in); err != nil {
		return err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title is required")
	}
	t, err := s.store.CreateTask(c.Request().Context(), c.Get(userIDKey).(int64), in)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	var patch api.TaskPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Title cannot be empty")
	}
	if patch.Status != nil && *patch.Status == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Status cannot be empty")
	}
	t, err := s.store.UpdateTask(c.Request().Context(), c.Get(userIDKey).(int64), id, patch)
	if err != nil {
		return storeError(err)
	}
	return c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c echo.Context) error {
	id, err := taskID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(c.Request().Context(), c.Get(userIDKey).(int64), id); err != nil {
		return storeError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func taskID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid task id")
	}
	return id, nil
}

// storeError maps repository errors onto HTTP errors.
func storeError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownCategory):
		return echo.NewHTTPError(http.StatusBadRequest, "Category not found").SetInternal(err)
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Task not found").SetInternal(err)
	default:
		return internalError(err)
	}
}

func internalError(err error) error {
	logger.Error("Dev server: %v", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error").SetInternal(err)
}
