package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/veranemoloko/downloadtask/internal/download"
)

// Task groups the downloads submitted in one request.
type Task struct {
	ID        uuid.UUID      `json:"id"`
	Status    TaskStatus     `json:"status"`
	Downloads []DownloadItem `json:"downloads"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// DownloadItem tracks one URL of a Task.
type DownloadItem struct {
	URL          string            `json:"url"`
	FileName     string            `json:"file_name"`
	FilePath     string            `json:"file_path,omitempty"`
	Status       DownloadStatus    `json:"status"`
	Progress     int               `json:"progress"`
	Outcome      *download.Outcome `json:"outcome,omitempty"`
	BytesWritten int64             `json:"bytes_written"`
	Error        string            `json:"error,omitempty"`
}

// Finished reports whether every item reached a terminal status.
func (t *Task) Finished() bool {
	for _, d := range t.Downloads {
		if !d.Status.Finished() {
			return false
		}
	}
	return true
}

// Succeeded reports whether every item completed.
func (t *Task) Succeeded() bool {
	for _, d := range t.Downloads {
		if d.Status != DownloadStatusCompleted {
			return false
		}
	}
	return true
}

// Clone returns a deep copy that can be handed out without sharing items.
func (t *Task) Clone() *Task {
	c := *t
	c.Downloads = make([]DownloadItem, len(t.Downloads))
	for i, d := range t.Downloads {
		if d.Outcome != nil {
			o := *d.Outcome
			d.Outcome = &o
		}
		c.Downloads[i] = d
	}
	return &c
}
