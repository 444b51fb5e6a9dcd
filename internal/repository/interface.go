package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/veranemoloko/downloadtask/internal/domain"
)

// TaskRepo defines the interface for task storage operations.
// Tasks returned by the repository are copies; changes go through UpdateTask.
type TaskRepo interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, update func(task *domain.Task)) (*domain.Task, error)
	SetProgress(ctx context.Context, id uuid.UUID, index int, percent int) error
	GetTasksByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
}
