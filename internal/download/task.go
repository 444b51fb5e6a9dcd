package download

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/veranemoloko/downloadtask/internal/storage"
)

// DefaultChunkSize is the read size used when Config.ChunkSize is unset.
const DefaultChunkSize = 4096

// Storage creates download destinations.
type Storage interface {
	// ReplaceFile removes any existing file at name and creates an empty one.
	ReplaceFile(name string) (storage.File, error)
	Remove(name string) error
}

// Config contains the configuration for a Task.
type Config struct {
	// ChunkSize is the size of each body read and of the write buffer.
	ChunkSize int
	// Storage prepares the destination file. Defaults to the local filesystem
	// with paths used as given.
	Storage Storage
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// RemovePartial deletes the destination when streaming fails.
	// By default a partial file is left behind.
	RemovePartial bool
}

// Task downloads a single URL to a single file. It is good for one
// Execute call only.
type Task struct {
	client Getter
	cfg    Config
	state  atomic.Int32
	done   chan struct{}
}

// NewTask returns an idle Task that will use client for its request.
func NewTask(client Getter, cfg Config) *Task {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if cfg.Storage == nil {
		cfg.Storage = storage.NewFileStorage("")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Task{
		client: client,
		cfg:    cfg,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (t *Task) State() State {
	return State(t.state.Load())
}

// Done is closed after the observer's Finished call has returned.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Execute validates its arguments and starts the download on a new
// goroutine. Argument errors wrap ErrInvalidArgument and are returned
// before any I/O; every other failure is reported through obs.
func (t *Task) Execute(ctx context.Context, req Request, obs Observer) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if obs == nil {
		return fmt.Errorf("%w: observer is nil", ErrInvalidArgument)
	}
	if t.client == nil {
		return fmt.Errorf("%w: http client is nil", ErrInvalidArgument)
	}
	if !t.state.CompareAndSwap(int32(StateIdle), int32(StateRequesting)) {
		return ErrTaskReused
	}

	go t.run(ctx, req, obs)
	return nil
}

func (t *Task) run(ctx context.Context, req Request, obs Observer) {
	defer close(t.done)

	logger := t.cfg.Logger.With("url", req.URL, "path", req.DestinationPath)
	logger.Debug("download started")

	res := t.download(ctx, req, obs, logger)
	t.state.Store(int32(terminalState(res.Outcome)))

	if res.Err != nil {
		logger.Error("download failed",
			"outcome", res.Outcome,
			"bytes", res.BytesWritten,
			"error", res.Err,
		)
	} else {
		logger.Info("download completed", "bytes", res.BytesWritten)
	}

	obs.Finished(res)
}

func (t *Task) download(ctx context.Context, req Request, obs Observer, logger *slog.Logger) Result {
	resp, err := t.client.Get(ctx, req.URL)
	if err != nil {
		return Result{Outcome: OutcomeTransportError, Err: fmt.Errorf("get: %w", err)}
	}
	if resp == nil {
		return Result{Outcome: OutcomeTransportError, Err: ErrNoResponse}
	}

	body := resp.Body
	if body == nil {
		body = http.NoBody
	}
	defer body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{
			Outcome: OutcomeTransportError,
			Err:     fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode),
		}
	}
	if resp.ContentLength <= 0 {
		return Result{
			Outcome: OutcomeTransportError,
			Err:     fmt.Errorf("%w: %d", ErrUnknownLength, resp.ContentLength),
		}
	}

	res := Result{ContentLength: resp.ContentLength}
	t.state.Store(int32(StateStreaming))

	f, err := t.cfg.Storage.ReplaceFile(req.DestinationPath)
	if err != nil {
		res.Outcome = OutcomeStorageError
		res.Err = fmt.Errorf("prepare destination: %w", err)
		return res
	}

	res.BytesWritten, res.Err = t.stream(body, f, resp.ContentLength, obs)
	if cerr := f.Close(); cerr != nil && res.Err == nil {
		res.Err = fmt.Errorf("close file: %w", cerr)
	}

	if res.Err != nil {
		res.Outcome = OutcomeStorageError
		if t.cfg.RemovePartial {
			if err := t.cfg.Storage.Remove(req.DestinationPath); err != nil {
				logger.Warn("failed to remove partial file", "error", err)
			}
		}
		return res
	}

	res.Outcome = OutcomeSuccess
	return res
}

// stream copies src to dst chunk by chunk, reporting progress after every
// chunk accepted by the writer.
func (t *Task) stream(src io.Reader, dst storage.File, total int64, obs Observer) (int64, error) {
	w := bufio.NewWriterSize(dst, t.cfg.ChunkSize)
	buf := make([]byte, t.cfg.ChunkSize)
	var written int64

	for {
		nr, rerr := src.Read(buf)
		if nr > 0 {
			nw, werr := w.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, fmt.Errorf("write: %w", werr)
			}
			if nw != nr {
				return written, fmt.Errorf("write: %w", io.ErrShortWrite)
			}
			obs.Progress(percentOf(written, total))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return written, fmt.Errorf("read body: %w", rerr)
		}
	}

	if err := w.Flush(); err != nil {
		return written, fmt.Errorf("flush: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return written, fmt.Errorf("sync: %w", err)
	}
	return written, nil
}

// percentOf is floor(written*100/total), capped at 100 for servers that
// send more than they declared.
func percentOf(written, total int64) int {
	p := written * 100 / total
	if p > 100 {
		p = 100
	}
	return int(p)
}
