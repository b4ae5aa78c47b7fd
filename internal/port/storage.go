package port

import (
	"context"
	"io"
)

// UploadInput encapsulates the parameters needed to upload an object.
type UploadInput struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
}

// UploadOutput contains the result of a successful upload.
type UploadOutput struct {
	Location string
	ETag     string
}

// ObjectInfo is the metadata returned by a HEAD request on an object.
type ObjectInfo struct {
	Key         string
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// ObjectReader is an open object stream. The caller must close Body.
type ObjectReader struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
}

// ObjectStorage abstracts cloud object storage operations.
type ObjectStorage interface {
	Upload(ctx context.Context, input UploadInput) (*UploadOutput, error)
	Head(ctx context.Context, bucket, key string) (*ObjectInfo, error)
	Open(ctx context.Context, bucket, key string) (*ObjectReader, error)
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
