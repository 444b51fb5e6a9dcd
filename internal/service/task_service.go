package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/downloadtask/internal/domain"
	errpkg "github.com/veranemoloko/downloadtask/internal/errors"
	"github.com/veranemoloko/downloadtask/internal/metrics"
	"github.com/veranemoloko/downloadtask/internal/repository"
)

// Downloader runs the downloads of a task.
type Downloader interface {
	DownloadTask(ctx context.Context, task *domain.Task) error
}

// TaskService creates tasks and drives them to completion in the background.
type TaskService struct {
	repo       repository.TaskRepo
	downloader Downloader
	logger     *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewTaskService creates a TaskService. Background work is bound to the
// service lifetime, not to the request that created it.
func NewTaskService(repo repository.TaskRepo, downloader Downloader, logger *slog.Logger) *TaskService {
	ctx, cancel := context.WithCancel(context.Background())
	return &TaskService{
		repo:       repo,
		downloader: downloader,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// CreateTask stores a new pending task for the requested downloads and starts
// processing it. The request is expected to be validated already.
func (s *TaskService) CreateTask(ctx context.Context, req *domain.CreateTaskRequest) (*domain.Task, error) {
	now := time.Now()
	task := &domain.Task{
		ID:        uuid.New(),
		Status:    domain.TaskStatusPending,
		Downloads: make([]domain.DownloadItem, len(req.Downloads)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	seen := make(map[string]bool, len(req.Downloads))
	for i, spec := range req.Downloads {
		name := uniqueName(seen, task.ID, i, destinationName(task.ID, i, spec))
		seen[name] = true

		task.Downloads[i] = domain.DownloadItem{
			URL:      spec.URL,
			FileName: name,
			Status:   domain.DownloadStatusPending,
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errpkg.ErrServiceClosed
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	metrics.TasksCreated.Inc()

	s.logger.Info("task created",
		"task_id", task.ID,
		"urls_count", len(task.Downloads),
	)

	s.dispatch(task)
	return task, nil
}

// GetTask returns a snapshot of the task.
func (s *TaskService) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	return s.repo.GetTask(ctx, id)
}

// ProcessTask marks the task in progress, runs its downloads and records the
// final status. It blocks until the downloads are done.
func (s *TaskService) ProcessTask(ctx context.Context, task *domain.Task) error {
	if _, err := s.repo.UpdateTask(ctx, task.ID, func(t *domain.Task) {
		t.Status = domain.TaskStatusInProgress
	}); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	s.logger.Info("start processing task",
		"task_id", task.ID,
		"urls_count", len(task.Downloads),
	)

	if err := s.downloader.DownloadTask(ctx, task); err != nil {
		// Interrupted tasks stay in progress and are picked up by RecoverPendingTasks.
		return err
	}

	final, err := s.repo.UpdateTask(context.WithoutCancel(ctx), task.ID, func(t *domain.Task) {
		switch {
		case t.Succeeded():
			t.Status = domain.TaskStatusCompleted
		case t.Finished():
			t.Status = domain.TaskStatusFailed
		}
	})
	if err != nil {
		return fmt.Errorf("failed to record task result: %w", err)
	}
	if !final.Finished() {
		// Left in progress for RecoverPendingTasks.
		return fmt.Errorf("task %s has unfinished downloads", task.ID)
	}

	if final.Status == domain.TaskStatusCompleted {
		metrics.TasksCompleted.Inc()
		s.logger.Info("task completed successfully",
			"task_id", task.ID,
			"total_downloads", len(final.Downloads),
		)
	} else {
		metrics.TasksFailed.Inc()
		s.logger.Warn("task finished with failed downloads",
			"task_id", task.ID,
			"failed_downloads", countFailed(final),
			"total_downloads", len(final.Downloads),
		)
	}

	return nil
}

// RecoverPendingTasks requeues tasks left pending or in progress by a previous run.
// Items that were mid-download restart from scratch.
func (s *TaskService) RecoverPendingTasks(ctx context.Context) error {
	pending, err := s.repo.GetTasksByStatus(ctx, domain.TaskStatusPending)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	inProgress, err := s.repo.GetTasksByStatus(ctx, domain.TaskStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to get in-progress tasks: %w", err)
	}

	tasks := append(pending, inProgress...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errpkg.ErrServiceClosed
	}

	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return err
		}

		if task.Status == domain.TaskStatusInProgress {
			recovered, err := s.repo.UpdateTask(ctx, task.ID, func(t *domain.Task) {
				for i := range t.Downloads {
					if t.Downloads[i].Status == domain.DownloadStatusInProgress {
						t.Downloads[i].Status = domain.DownloadStatusPending
						t.Downloads[i].Progress = 0
						t.Downloads[i].Error = ""
					}
				}
			})
			if err != nil {
				s.logger.Error("failed to recover task", "task_id", task.ID, "error", err)
				continue
			}
			task = recovered
		}

		s.logger.Info("recovering task", "task_id", task.ID, "status", task.Status)
		s.dispatch(task)
	}

	return nil
}

// Shutdown stops accepting tasks, interrupts running downloads and waits for
// the background goroutines to exit or for ctx to expire.
func (s *TaskService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("task service stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// dispatch must be called with s.mu held so it cannot race with Shutdown.
func (s *TaskService) dispatch(task *domain.Task) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.ProcessTask(s.ctx, task); err != nil {
			s.logger.Error("task processing failed", "task_id", task.ID, "error", err)
		}
	}()
}

// destinationName prefixes names with the task ID so tasks never share a file.
func destinationName(taskID uuid.UUID, index int, spec domain.DownloadSpec) string {
	if spec.FileName != "" {
		return fmt.Sprintf("%s_%s", taskID, spec.FileName)
	}

	ext := ""
	if u, err := url.Parse(spec.URL); err == nil {
		ext = path.Ext(u.Path)
	}
	if ext == "" || len(ext) > 16 {
		ext = ".bin"
	}
	return fmt.Sprintf("%s_%d%s", taskID, index, ext)
}

// uniqueName returns name, or a variant of it carrying the item index, that
// is not yet in seen.
func uniqueName(seen map[string]bool, taskID uuid.UUID, index int, name string) string {
	if !seen[name] {
		return name
	}
	base := strings.TrimPrefix(name, taskID.String()+"_")
	candidate := fmt.Sprintf("%s_%d_%s", taskID, index, base)
	for n := 1; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d_%d_%s", taskID, index, n, base)
	}
	return candidate
}

func countFailed(task *domain.Task) int {
	n := 0
	for _, d := range task.Downloads {
		if d.Status == domain.DownloadStatusFailed {
			n++
		}
	}
	return n
}
