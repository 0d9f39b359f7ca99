package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/taskvault/task-tracker-api/internal/middleware"
	"github.com/taskvault/task-tracker-api/internal/model"
	"github.com/taskvault/task-tracker-api/internal/repo"
	"github.com/taskvault/task-tracker-api/internal/service"
	"github.com/taskvault/task-tracker-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	task, err := h.service.Create(r.Context(), req, ownerID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	cursor := r.URL.Query().Get("cursor")

	page, err := h.service.List(r.Context(), ownerID, limit, cursor)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, page)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var patch model.TaskPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), ownerID, patch)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Delete responds with the removed record's prior state.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	task, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), ownerID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.CallerID(r.Context())
	if !ok {
		respond.Error(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	stats, err := h.service.Stats(r.Context(), ownerID)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, stats)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrBadCursor):
		respond.Error(w, r, http.StatusBadRequest, "invalid cursor")
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
