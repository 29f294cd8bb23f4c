package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to store an object.
type UploadInput struct {
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful store.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectStorage abstracts the sink that exported reports are written to.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Delete(ctx context.Context, key string) error
	GetPresignedURL(ctx context.Context, key string, expirySeconds int64) (string, error)
}
