package repo

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskvault/task-tracker-api/internal/model"
)

var (
	// ErrNotFound covers both a missing record and an ownership mismatch.
	// The two are deliberately indistinguishable to callers.
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	// ErrBadCursor means a pagination cursor did not round-trip unmodified.
	ErrBadCursor = errors.New("invalid cursor")
)

const taskColumns = "id, owner_id, title, description, priority, status, due_date, category, created_at, updated_at"

type TaskRepo struct {
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.OwnerID, t.Title, t.Description, t.Priority, t.Status, t.DueDate, t.Category, t.CreatedAt, t.UpdatedAt)
	return t, r.mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// pageKey is the store's native pagination token: the sort key of the last row
// of a page. It leaves the repo only in its encoded, opaque form.
type pageKey struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"id"`
}

func encodeCursor(k pageKey) string {
	raw, _ := json.Marshal(k)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(cursor string) (pageKey, error) {
	var k pageKey
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return k, ErrBadCursor
	}
	if err := json.Unmarshal(raw, &k); err != nil || k.ID == "" {
		return k, ErrBadCursor
	}
	return k, nil
}

func (r *TaskRepo) List(ctx context.Context, ownerID string, limit int, cursor string) (model.TaskPage, error) {
	var page model.TaskPage

	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	// One extra row tells us whether another page exists.
	args := []any{ownerID, limit + 1}

	if cursor != "" {
		key, err := decodeCursor(cursor)
		if err != nil {
			return page, err
		}
		query = `
			SELECT ` + taskColumns + `
			FROM tasks
			WHERE owner_id = $1 AND (created_at, id) < ($3, $4)
			ORDER BY created_at DESC, id DESC
			LIMIT $2
		`
		args = append(args, key.CreatedAt, key.ID)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return page, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return page, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return page, err
	}

	if len(tasks) > limit {
		last := tasks[limit-1]
		page.NextCursor = encodeCursor(pageKey{CreatedAt: last.CreatedAt, ID: last.ID})
		tasks = tasks[:limit]
	}

	page.Items = tasks
	page.Count = len(tasks)
	return page, nil
}

// Update applies the non-nil patch fields and stamps updated_at in a single
// conditional statement. The owner check and the mutation are one indivisible
// round trip, so a non-owner can never win a race against the rightful owner.
func (r *TaskRepo) Update(ctx context.Context, id, ownerID string, patch model.TaskPatch, now time.Time) (model.Task, error) {
	set := make([]string, 0, 7)
	args := []any{id, ownerID}
	assign := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		assign("title", *patch.Title)
	}
	if patch.Description != nil {
		assign("description", *patch.Description)
	}
	if patch.Priority != nil {
		assign("priority", *patch.Priority)
	}
	if patch.Status != nil {
		assign("status", *patch.Status)
	}
	if due, ok := patch.DueDate(); ok {
		// A nil value clears the column.
		assign("due_date", due)
	}
	if patch.Category != nil {
		assign("category", *patch.Category)
	}
	assign("updated_at", now)

	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		UPDATE tasks
		SET %s
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		strings.Join(set, ", "),
	), args...)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

// Delete removes the record if it belongs to ownerID and returns its prior state.
func (r *TaskRepo) Delete(ctx context.Context, id, ownerID string) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM tasks
		WHERE id = $1 AND owner_id = $2
		RETURNING `+taskColumns,
		id, ownerID)

	t, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return t, ErrNotFound
	}
	return t, err
}

func (r *TaskRepo) Stats(ctx context.Context, ownerID string) (Stats, error) {
	stats := Stats{
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT status, priority, COUNT(*)
		FROM tasks
		WHERE owner_id = $1
		GROUP BY status, priority
	`, ownerID)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var status, priority string
		var count int
		if err := rows.Scan(&status, &priority, &count); err != nil {
			return stats, err
		}
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
		stats.Total += count
	}
	return stats, rows.Err()
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority, &t.Status,
		&t.DueDate, &t.Category, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func (r *TaskRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return ErrConflict
		}
	}
	return err
}
