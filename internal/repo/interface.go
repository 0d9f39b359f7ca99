package repo

import (
	"context"
	"time"

	"github.com/taskvault/task-tracker-api/internal/model"
)

// TaskRepository is the store adapter: point reads by id, unconditional put on
// create, and owner-conditioned atomic mutations. Update and Delete succeed only
// when the stored record belongs to ownerID; absence and ownership mismatch are
// both reported as ErrNotFound.
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	List(ctx context.Context, ownerID string, limit int, cursor string) (model.TaskPage, error)
	Update(ctx context.Context, id, ownerID string, patch model.TaskPatch, now time.Time) (model.Task, error)
	Delete(ctx context.Context, id, ownerID string) (model.Task, error)
	Stats(ctx context.Context, ownerID string) (Stats, error)
}

type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Stats is the per-owner dashboard aggregate.
type Stats struct {
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
}
