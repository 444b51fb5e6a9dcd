package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veranemoloko/downloadtask/internal/domain"
	"github.com/veranemoloko/downloadtask/internal/download"
	"github.com/veranemoloko/downloadtask/internal/metrics"
	"github.com/veranemoloko/downloadtask/internal/repository"
	"github.com/veranemoloko/downloadtask/internal/storage"
)

// Options tunes how downloads are run.
type Options struct {
	// PoolSize caps the number of concurrent downloads within one task.
	PoolSize      int
	ChunkSize     int
	RemovePartial bool
}

// DownloadWorker runs the downloads of a task and records their progress
// and outcome in the repository.
type DownloadWorker struct {
	client      download.Getter
	fileStorage *storage.FileStorage
	repo        repository.TaskRepo
	opts        Options
	logger      *slog.Logger
}

// NewDownloadWorker creates a new DownloadWorker. The client is shared by
// all downloads; each download gets its own download.Task.
func NewDownloadWorker(
	client download.Getter,
	fileStorage *storage.FileStorage,
	repo repository.TaskRepo,
	opts Options,
	logger *slog.Logger,
) *DownloadWorker {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 5
	}
	return &DownloadWorker{
		client:      client,
		fileStorage: fileStorage,
		repo:        repo,
		opts:        opts,
		logger:      logger,
	}
}

// DownloadTask downloads every unfinished item of the task concurrently,
// at most PoolSize at a time. A failed download does not stop the others;
// the returned error reports repository failures or cancellation only.
func (w *DownloadWorker) DownloadTask(ctx context.Context, task *domain.Task) error {
	var g errgroup.Group
	g.SetLimit(w.opts.PoolSize)

	for i, item := range task.Downloads {
		if item.Status.Finished() {
			continue
		}
		g.Go(func() error {
			_, err := w.DownloadItem(ctx, task.ID, i, item)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		w.logger.Error("task download interrupted",
			"task_id", task.ID,
			"error", err,
		)
		return fmt.Errorf("download task: %w", err)
	}

	return nil
}

// DownloadItem runs a single download and blocks until it reaches a terminal
// state. If ctx is cancelled before the download succeeds, the item is put
// back to pending so a later recovery can restart it, and ctx.Err() is
// returned. A download that already succeeded is recorded as completed.
func (w *DownloadWorker) DownloadItem(ctx context.Context, taskID uuid.UUID, index int, item domain.DownloadItem) (download.Result, error) {
	// Repository writes must survive cancellation of the download itself.
	repoCtx := context.WithoutCancel(ctx)
	logger := w.logger.With("task_id", taskID, "index", index)

	if _, err := w.repo.UpdateTask(repoCtx, taskID, func(t *domain.Task) {
		d := &t.Downloads[index]
		d.Status = domain.DownloadStatusInProgress
		d.FilePath = w.fileStorage.Path(d.FileName)
		d.Progress = 0
		d.Outcome = nil
		d.Error = ""
	}); err != nil {
		return download.Result{}, fmt.Errorf("mark download started: %w", err)
	}

	task := download.NewTask(w.client, download.Config{
		ChunkSize:     w.opts.ChunkSize,
		Storage:       w.fileStorage,
		Logger:        logger,
		RemovePartial: w.opts.RemovePartial,
	})

	var (
		result   download.Result
		lastSeen = -1
	)
	observer := download.ObserverFuncs{
		OnProgress: func(percent int) {
			if percent == lastSeen {
				return
			}
			lastSeen = percent
			if err := w.repo.SetProgress(repoCtx, taskID, index, percent); err != nil {
				logger.Warn("failed to record progress", "error", err)
			}
		},
		OnFinished: func(res download.Result) {
			result = res
		},
	}

	started := time.Now()
	req := download.Request{URL: item.URL, DestinationPath: item.FileName}
	if err := task.Execute(ctx, req, observer); err != nil {
		logger.Error("download rejected", "url", item.URL, "error", err)
		_, uerr := w.repo.UpdateTask(repoCtx, taskID, func(t *domain.Task) {
			d := &t.Downloads[index]
			d.Status = domain.DownloadStatusFailed
			d.Error = err.Error()
		})
		return download.Result{}, uerr
	}

	metrics.DownloadsActive.Inc()
	<-task.Done()
	metrics.DownloadsActive.Dec()

	if result.Outcome != download.OutcomeSuccess && ctx.Err() != nil {
		logger.Info("download interrupted", "url", item.URL)
		_, err := w.repo.UpdateTask(repoCtx, taskID, func(t *domain.Task) {
			d := &t.Downloads[index]
			d.Status = domain.DownloadStatusPending
			d.Progress = 0
		})
		if err != nil {
			return result, err
		}
		return result, ctx.Err()
	}

	metrics.ObserveDownload(result, time.Since(started))

	_, err := w.repo.UpdateTask(repoCtx, taskID, func(t *domain.Task) {
		d := &t.Downloads[index]
		outcome := result.Outcome
		d.Outcome = &outcome
		d.BytesWritten = result.BytesWritten
		if result.Outcome == download.OutcomeSuccess {
			d.Status = domain.DownloadStatusCompleted
			d.Progress = 100
			d.Error = ""
		} else {
			d.Status = domain.DownloadStatusFailed
			if result.Err != nil {
				d.Error = result.Err.Error()
			}
		}
	})
	if err != nil {
		return result, fmt.Errorf("record download result: %w", err)
	}

	return result, nil
}
