package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

// watchdog cancels its context when it is not kicked for timeout.
// A zero timeout disables it.
type watchdog struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	timer   *time.Timer
	timeout time.Duration
}

func newWatchdog(parent context.Context, timeout time.Duration) (context.Context, *watchdog) {
	ctx, cancel := context.WithCancelCause(parent)
	var timer *time.Timer
	if timeout > 0 {
		timer = time.AfterFunc(timeout, func() {
			cancel(os.ErrDeadlineExceeded)
		})
	}
	return ctx, &watchdog{
		ctx:     ctx,
		cancel:  cancel,
		timer:   timer,
		timeout: timeout,
	}
}

func (wd *watchdog) kick() {
	if wd.timer != nil {
		wd.timer.Reset(wd.timeout)
	}
}

func (wd *watchdog) stop() {
	if wd.timer != nil {
		wd.timer.Stop()
	}
	wd.cancel(nil)
}

// explain replaces a bare cancellation error with the inactivity timeout
// when the watchdog fired.
func (wd *watchdog) explain(err error) error {
	if err == nil || err == io.EOF {
		return err
	}
	if cause := context.Cause(wd.ctx); errors.Is(cause, os.ErrDeadlineExceeded) {
		return fmt.Errorf("no data received for %s: %w", wd.timeout, cause)
	}
	return err
}

// watchedBody kicks the watchdog on every read and stops it on close.
type watchedBody struct {
	io.ReadCloser
	wd *watchdog
}

func (b *watchedBody) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if n > 0 {
		b.wd.kick()
	}
	return n, b.wd.explain(err)
}

func (b *watchedBody) Close() error {
	err := b.ReadCloser.Close()
	b.wd.stop()
	return err
}
