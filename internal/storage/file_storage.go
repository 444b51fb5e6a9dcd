package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is the write side of a download destination.
type File interface {
	io.Writer
	Sync() error
	Close() error
}

// FileStorage resolves file names against a root directory.
// An empty root leaves names untouched, so absolute and relative paths are used as-is.
type FileStorage struct {
	dir string
}

// NewFileStorage creates a new FileStorage instance with the given directory.
func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Path returns the location of filename inside the storage directory.
func (s *FileStorage) Path(filename string) string {
	if s.dir == "" {
		return filename
	}
	return filepath.Join(s.dir, filename)
}

// ReplaceFile removes any existing file with the given name and creates a new, empty one.
func (s *FileStorage) ReplaceFile(filename string) (File, error) {
	path := s.Path(filename)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("remove existing file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	return f, nil
}

// FileExists checks whether a file exists in the storage directory.
func (s *FileStorage) FileExists(filename string) bool {
	_, err := os.Stat(s.Path(filename))
	return err == nil
}

// Remove deletes the file. A missing file is not an error.
func (s *FileStorage) Remove(filename string) error {
	if err := os.Remove(s.Path(filename)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
