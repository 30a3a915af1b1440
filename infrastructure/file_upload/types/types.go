package types

import (
	"context"
	"time"
)

// EvidenceStore archives the images behind a verification attempt.
type EvidenceStore interface {
	Upload(ctx context.Context, blobName string, data []byte, contentType string) error
	SignedURL(blobName string, permission SignedURLPermission, ttl time.Duration) (*string, error)
	Exists(ctx context.Context, blobName string) (bool, error)
	Delete(ctx context.Context, blobName string) error
}

type SignedURLPermission struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Delete bool `json:"delete"`
}
