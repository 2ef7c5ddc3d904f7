package fsx

import (
	"context"
	"io"
	"time"
)

// FileInfo describes a stored object.
type FileInfo struct {
	Path         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// FileReader reads stored objects.
type FileReader interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// FileWriter writes and removes stored objects.
type FileWriter interface {
	WriteFile(ctx context.Context, path string, data []byte, contentType string) error
	Delete(ctx context.Context, path string) error
}

// FileSystem is the storage abstraction used for uploaded documents.
type FileSystem interface {
	FileReader
	FileWriter
	Stat(ctx context.Context, path string) (FileInfo, error)
	PresignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}
