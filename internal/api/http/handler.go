package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veranemoloko/downloadtask/internal/domain"
	errpkg "github.com/veranemoloko/downloadtask/internal/errors"
	"github.com/veranemoloko/downloadtask/internal/validation"
)

// maxBodyBytes caps the size of a create-task request body.
const maxBodyBytes = 1 << 20

// TaskServiceI defines the interface for task-related business logic.
type TaskServiceI interface {
	CreateTask(ctx context.Context, req *domain.CreateTaskRequest) (*domain.Task, error)
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
}

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	taskService TaskServiceI
	validator   *validation.Validator
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler with the provided service, validator and logger.
func NewTaskHandler(taskService TaskServiceI, v *validation.Validator, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   v,
		logger:      logger,
	}
}

// CreateTask handles the HTTP POST /tasks request to create a new task.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CreateTaskRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("failed to decode request", "error", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.ValidateCreateTask(&req); err != nil {
		h.logger.Warn("validation failed", "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(ctx, &req)
	if err != nil {
		if errors.Is(err, errpkg.ErrServiceClosed) {
			writeError(w, http.StatusServiceUnavailable, "service is shutting down")
			return
		}
		h.logger.Error("failed to create task", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"task_id": task.ID,
	})
}

// GetTask handles the HTTP GET /tasks/{taskID} request to fetch a task by ID.
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	taskIDStr := chi.URLParam(r, "taskID")
	taskID, err := uuid.Parse(taskIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task ID")
		return
	}

	task, err := h.taskService.GetTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, errpkg.ErrTaskNotFound) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		h.logger.Error("failed to get task", "task_id", taskID, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, domain.NewTaskResponse(task))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}
