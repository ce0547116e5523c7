// Package storage keeps uploaded source files and their metadata.
package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a file id has no metadata.
var ErrNotFound = errors.New("file not found")

// ErrInvalidSource is returned for an empty or unsafe source id.
var ErrInvalidSource = errors.New("invalid source id")

// FileInfo contains metadata about a stored file
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	SourceID    string    `json:"source_id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // Internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the file operations the ingestion pipeline needs.
// Files are grouped by source, e.g. a district office or an inbox.
type Storage interface {
	// Upload stores a file and returns its metadata
	Upload(ctx context.Context, sourceID string, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Download retrieves a file by its ID
	Download(ctx context.Context, sourceID string, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes a file by its ID
	Delete(ctx context.Context, sourceID string, fileID uuid.UUID) error

	// List returns all files of a source, oldest first
	List(ctx context.Context, sourceID string) ([]*FileInfo, error)

	// GetInfo returns metadata for a file without downloading
	GetInfo(ctx context.Context, sourceID string, fileID uuid.UUID) (*FileInfo, error)
}

// Config holds storage configuration
type Config struct {
	LocalPath string
}

// New creates the local filesystem storage.
func New(cfg *Config) (Storage, error) {
	return NewLocalStorage(cfg.LocalPath)
}
