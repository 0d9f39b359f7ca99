package tests

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/taskvault/task-tracker-api/internal/model"
	"github.com/taskvault/task-tracker-api/internal/repo"
)

// SetupTestDB starts a throwaway Postgres container with the schema applied.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	ctx := context.Background()

	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filename))
	migrationsPath := filepath.Join(projectRoot, "migrations")

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		postgres.WithInitScripts(
			filepath.Join(migrationsPath, "001_create_users.up.sql"),
			filepath.Join(migrationsPath, "002_create_tasks.up.sql"),
		),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping database: %v", err)
	}

	cleanup := func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Errorf("Failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// TruncateTables clears all tables between test cases.
func TruncateTables(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	ctx := context.Background()

	_, err := pool.Exec(ctx, "TRUNCATE tasks, users CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
}

// SeedTasks creates count tasks for the given owner, oldest first.
func SeedTasks(t *testing.T, pool *pgxpool.Pool, ownerID string, count int) []string {
	t.Helper()

	taskRepo := repo.NewTaskRepo(pool)
	ctx := context.Background()

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		now := time.Now().UTC()
		task, err := taskRepo.Create(ctx, model.Task{
			ID:        uuid.NewString(),
			OwnerID:   ownerID,
			Title:     fmt.Sprintf("Task %d", i+1),
			Priority:  model.PriorityMedium,
			Status:    model.StatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			t.Fatalf("Failed to seed task: %v", err)
		}
		ids = append(ids, task.ID)
		time.Sleep(2 * time.Millisecond) // keep created_at strictly ordered
	}

	return ids
}
