package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/taskvault/task-tracker-api/internal/model"
	"github.com/taskvault/task-tracker-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

// StatsCache holds per-owner dashboard aggregates. Misses and backend failures
// both surface as a plain "not cached"; the service recomputes either way.
type StatsCache interface {
	Get(ctx context.Context, ownerID string) (repo.Stats, bool)
	Set(ctx context.Context, ownerID string, stats repo.Stats)
	Invalidate(ctx context.Context, ownerID string)
}

type TaskService struct {
	repo  repo.TaskRepository
	cache StatsCache
}

// NewTaskService wires the service; cache may be nil to disable stats caching.
func NewTaskService(repo repo.TaskRepository, cache StatsCache) *TaskService {
	return &TaskService{repo: repo, cache: cache}
}

func (s *TaskService) Create(ctx context.Context, t model.Task, ownerID string) (model.Task, error) {
	applyDefaults(&t)
	if err := s.validate(t); err != nil {
		return t, err
	}

	now := time.Now().UTC()
	t.ID = uuid.NewString()
	t.OwnerID = ownerID
	t.CreatedAt = now
	t.UpdatedAt = now

	created, err := s.repo.Create(ctx, t)
	if err != nil {
		return created, err
	}

	s.invalidateStats(ctx, ownerID)
	return created, nil
}

// Get fetches by id alone and resolves ownership here: a record owned by
// someone else looks exactly like a missing one.
func (s *TaskService) Get(ctx context.Context, id, ownerID string) (model.Task, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return t, err
	}
	if t.OwnerID != ownerID {
		return model.Task{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *TaskService) List(ctx context.Context, ownerID string, limit int, cursor string) (model.TaskPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, ownerID, limit, cursor)
}

func (s *TaskService) Update(ctx context.Context, id, ownerID string, patch model.TaskPatch) (model.Task, error) {
	if err := s.validatePatch(patch); err != nil {
		return model.Task{}, err
	}

	updated, err := s.repo.Update(ctx, id, ownerID, patch, time.Now().UTC())
	if err != nil {
		return updated, err
	}

	s.invalidateStats(ctx, ownerID)
	return updated, nil
}

func (s *TaskService) Delete(ctx context.Context, id, ownerID string) (model.Task, error) {
	deleted, err := s.repo.Delete(ctx, id, ownerID)
	if err != nil {
		return deleted, err
	}

	s.invalidateStats(ctx, ownerID)
	return deleted, nil
}

func (s *TaskService) Stats(ctx context.Context, ownerID string) (repo.Stats, error) {
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, ownerID); ok {
			return stats, nil
		}
	}

	stats, err := s.repo.Stats(ctx, ownerID)
	if err != nil {
		return stats, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, ownerID, stats)
	}
	return stats, nil
}

func (s *TaskService) invalidateStats(ctx context.Context, ownerID string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, ownerID)
	}
}

func applyDefaults(t *model.Task) {
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if t.Status == "" {
		t.Status = model.StatusPending
	}
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" || utf8.RuneCountInString(t.Title) > 200 {
		return fmt.Errorf("%w: title must be 1-200 characters", ErrValidation)
	}
	if utf8.RuneCountInString(t.Description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrValidation)
	}
	if utf8.RuneCountInString(t.Category) > 50 {
		return fmt.Errorf("%w: category must be at most 50 characters", ErrValidation)
	}
	if !model.ValidPriority(t.Priority) {
		return fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
	}
	if !model.ValidStatus(t.Status) {
		return fmt.Errorf("%w: status must be pending, in-progress or completed", ErrValidation)
	}
	return nil
}

func (s *TaskService) validatePatch(p model.TaskPatch) error {
	if p.IsEmpty() {
		return fmt.Errorf("%w: at least one field must be supplied", ErrValidation)
	}
	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" || utf8.RuneCountInString(*p.Title) > 200 {
			return fmt.Errorf("%w: title must be 1-200 characters", ErrValidation)
		}
	}
	if p.Description != nil && utf8.RuneCountInString(*p.Description) > 1000 {
		return fmt.Errorf("%w: description must be at most 1000 characters", ErrValidation)
	}
	if p.Category != nil && utf8.RuneCountInString(*p.Category) > 50 {
		return fmt.Errorf("%w: category must be at most 50 characters", ErrValidation)
	}
	if p.Priority != nil && !model.ValidPriority(*p.Priority) {
		return fmt.Errorf("%w: priority must be low, medium or high", ErrValidation)
	}
	if p.Status != nil && !model.ValidStatus(*p.Status) {
		return fmt.Errorf("%w: status must be pending, in-progress or completed", ErrValidation)
	}
	return nil
}
