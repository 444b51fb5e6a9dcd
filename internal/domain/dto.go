package domain

import (
	"time"

	"github.com/google/uuid"
)

// CreateTaskRequest represents the request body for creating a new Task.
type CreateTaskRequest struct {
	Downloads []DownloadSpec `json:"downloads" validate:"required,min=1,dive"`
}

// DownloadSpec names one URL to fetch and, optionally, the file to store it in.
type DownloadSpec struct {
	URL      string `json:"url" validate:"required,url,safe_url"`
	FileName string `json:"file_name,omitempty" validate:"omitempty,safe_filename"`
}

// TaskResponse represents the response returned for a Task, including its status and downloads.
type TaskResponse struct {
	ID        uuid.UUID      `json:"task_id"`
	Status    TaskStatus     `json:"status"`
	Downloads []DownloadItem `json:"downloads"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewTaskResponse builds the API view of a task.
func NewTaskResponse(task *Task) TaskResponse {
	return TaskResponse{
		ID:        task.ID,
		Status:    task.Status,
		Downloads: task.Downloads,
		CreatedAt: task.CreatedAt,
		UpdatedAt: task.UpdatedAt,
	}
}
