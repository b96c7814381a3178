package storage

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when object storage settings are missing.
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectInfo represents metadata for a remote file/object.
type ObjectInfo struct {
	Key  string
	Size int64
}

// ObjectStorage captures the minimal S3-compatible operations used for
// snapshot imports and draft order exports.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}
