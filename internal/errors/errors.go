package errors

import "errors"

var (
	ErrTaskNotFound  = errors.New("task not found")
	ErrServiceClosed = errors.New("service is shutting down")
)
