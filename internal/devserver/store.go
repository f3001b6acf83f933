package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/taskdeck/internal/api"
)

// ErrNotFound is returned when a row does not exist for the user.
var ErrNotFound = errors.New("not found")

// ErrUnknownCategory is returned when a task references a category the user
// does not own.
var ErrUnknownCategory = errors.New("unknown category")

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already exists")

// userRow is a user with its password hash.
type userRow struct {
	api.User
	PasswordHash string
}

// Store is the SQLite repository behind the development server.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore wraps an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) CreateUser(ctx context.Context, reg api.Registration, hash string) (*api.User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, email, name, created_at) VALUES (?, ?, ?, ?, ?)`,
		reg.Username, hash, nullableString(reg.Email), nullableString(reg.Name), s.now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading user id: %w", err)
	}
	return &api.User{ID: id, Username: reg.Username, Email: reg.Email, Name: reg.Name}, nil
}

func (s *Store) userByUsername(ctx context.Context, username string) (*userRow, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, name FROM users WHERE username = ?`, username)
	return scanUser(row)
}

func (s *Store) UserByID(ctx context.Context, id int64) (*api.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, email, name FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, err
	}
	return &u.User, nil
}

func scanUser(row *sql.Row) (*userRow, error) {
	var (
		u           userRow
		email, name sql.NullString
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &email, &name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.Email = stringPtr(email)
	u.Name = stringPtr(name)
	return &u, nil
}

func (s *Store) CreateCategory(ctx context.Context, userID int64, name, color string) (*api.Category, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, color) VALUES (?, ?, ?)`, userID, name, color)
	if err != nil {
		return nil, fmt.Errorf("inserting category: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading category id: %w", err)
	}
	return &api.Category{ID: id, Name: name, Color: color}, nil
}

func (s *Store) ListCategories(ctx context.Context, userID int64) ([]api.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color FROM categories WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	defer rows.Close()

	cats := []api.Category{}
	for rows.Next() {
		var c api.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

const taskColumns = `id, title, description, status, category_id, deadline, priority, created_at`

func (s *Store) ListTasks(ctx context.Context, userID int64) ([]api.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []api.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) GetTask(ctx context.Context, userID, id int64) (*api.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return t, err
}

func (s *Store) CreateTask(ctx context.Context, userID int64, in api.NewTask) (*api.Task, error) {
	if in.Status == "" {
		in.Status = api.StatusPending
	}
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if err := s.checkCategory(ctx, userID, in.CategoryID); err != nil {
		return nil, err
	}
	created := s.now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (user_id, title, description, status, category_id, deadline, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, in.Title, nullableString(in.Description), string(in.Status),
		nullableInt(in.CategoryID), nullableTime(in.Deadline), in.Priority, created.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading task id: %w", err)
	}
	return s.GetTask(ctx, userID, id)
}

// UpdateTask applies the non-nil fields of patch.
func (s *Store) UpdateTask(ctx context.Context, userID, id int64, patch api.TaskPatch) (*api.Task, error) {
	var (
		sets []string
		args []any
	)
	if patch.Title != nil {
		sets, args = append(sets, "title = ?"), append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets, args = append(sets, "description = ?"), append(args, *patch.Description)
	}
	if patch.Status != nil {
		sets, args = append(sets, "status = ?"), append(args, string(*patch.Status))
	}
	if patch.CategoryID != nil {
		if err := s.checkCategory(ctx, userID, patch.CategoryID); err != nil {
			return nil, err
		}
		sets, args = append(sets, "category_id = ?"), append(args, *patch.CategoryID)
	}
	if patch.Deadline != nil {
		sets, args = append(sets, "deadline = ?"), append(args, patch.Deadline.UTC().Format(time.RFC3339))
	}
	if patch.Priority != nil {
		sets, args = append(sets, "priority = ?"), append(args, *patch.Priority)
	}

	if len(sets) > 0 {
		args = append(args, userID, id)
		res, err := s.db.ExecContext(ctx,
			`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE user_id = ? AND id = ?`, args...)
		if err != nil {
			return nil, fmt.Errorf("updating task: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil, ErrNotFound
		}
	}
	return s.GetTask(ctx, userID, id)
}

func (s *Store) DeleteTask(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) checkCategory(ctx context.Context, userID int64, id *int64) error {
	if id == nil {
		return nil
	}
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ? AND id = ?`, userID, *id).Scan(&n)
	if err != nil {
		return fmt.Errorf("checking category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", *id, ErrUnknownCategory)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*api.Task, error) {
	var (
		t                   api.Task
		desc, deadline, cAt sql.NullString
		category            sql.NullInt64
		status              string
	)
	if err := row.Scan(&t.ID, &t.Title, &desc, &status, &category, &deadline, &t.Priority, &cAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning task: %w", err)
	}
	t.Status = api.Status(status)
	t.Description = stringPtr(desc)
	if category.Valid {
		id := category.Int64
		t.CategoryID = &id
	}
	t.Deadline = parseNullableTime(deadline)
	if ts := parseNullableTime(cAt); ts != nil {
		t.CreatedAt = *ts
	}
	return &t, nil
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullableInt(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
