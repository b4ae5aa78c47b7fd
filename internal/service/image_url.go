package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"reportingest/internal/config"
	"reportingest/internal/port"
)

// ImageURLResolver builds the URL the analysis API downloads the image from.
type ImageURLResolver interface {
	Resolve(ctx context.Context, bucket, key string) (string, error)
}

type imageURLResolver struct {
	storage port.ObjectStorage
	cfg     *config.S3Config
}

// NewImageURLResolver returns a resolver that uses cfg.PublicBaseURL when set and
// falls back to presigned GET URLs otherwise.
func NewImageURLResolver(storage port.ObjectStorage, cfg *config.S3Config) ImageURLResolver {
	return &imageURLResolver{storage: storage, cfg: cfg}
}

func (r *imageURLResolver) Resolve(ctx context.Context, bucket, key string) (string, error) {
	if r.cfg.PublicBaseURL != "" {
		return PublicObjectURL(r.cfg.PublicBaseURL, bucket, key), nil
	}
	u, err := r.storage.GetPresignedURL(ctx, bucket, key, r.cfg.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presigning image url: %w", err)
	}
	return u, nil
}

// PublicObjectURL joins base, bucket and the path-escaped key segments.
func PublicObjectURL(base, bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(bucket) + "/" + strings.Join(segments, "/")
}
