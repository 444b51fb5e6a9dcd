package download

import (
	"context"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrInvalidArgument is returned synchronously by Execute when the
	// request or observer is unusable. No network activity has happened.
	ErrInvalidArgument = errors.New("download: invalid argument")

	// ErrTaskReused is returned when Execute is called on a Task that has
	// already been started.
	ErrTaskReused = errors.New("download: task already executed")
)

// Errors carried in Result.Err for transport failures detected after the
// request was issued.
var (
	ErrNoResponse    = errors.New("download: no response")
	ErrBadStatus     = errors.New("download: unexpected status code")
	ErrUnknownLength = errors.New("download: content length not provided")
)

// Request names what to fetch and where to put it.
type Request struct {
	URL             string
	DestinationPath string
}

// Validate reports an ErrInvalidArgument if either field is empty.
func (r Request) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("%w: url is empty", ErrInvalidArgument)
	}
	if r.DestinationPath == "" {
		return fmt.Errorf("%w: destination path is empty", ErrInvalidArgument)
	}
	return nil
}

// Response is the subset of an HTTP response the Task needs.
type Response struct {
	StatusCode    int
	ContentLength int64
	Body          io.ReadCloser
}

// Getter issues HTTP GET requests.
type Getter interface {
	Get(ctx context.Context, url string) (*Response, error)
}
