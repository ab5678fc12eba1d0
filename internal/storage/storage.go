package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// ReportArchive defines the interface for archiving exported progress
// reports in object storage.
type ReportArchive interface {
	// PutReport stores a serialized report under the given object key.
	PutReport(ctx context.Context, objectKey string, body []byte, contentType string) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows GET
	// requests for an archived report.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)

	// DeleteReport removes an archived report.
	DeleteReport(ctx context.Context, objectKey string) error
}
