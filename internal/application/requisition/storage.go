package requisition

import (
	"context"
	"io"
	"time"
)

// ObjectStorageService is the blob store seen by the ledgers. The core
// never inspects file bytes; it stores the opaque key plus caller-supplied
// metadata. Implemented by the infrastructure layer (S3-compatible).
type ObjectStorageService interface {
	// PutObject uploads an object under the given key
	PutObject(ctx context.Context, storageKey string, body io.Reader, size int64, contentType string) error

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
