// Package trigger turns storage notifications into upload events for the ingest
// service. The same handler backs the Lambda entrypoint and the HTTP webhook.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"reportingest/internal/domain"
	"reportingest/internal/port"
	"reportingest/internal/service"
)

// S3Handler processes S3 ObjectCreated notifications.
type S3Handler struct {
	storage port.ObjectStorage
	ingest  service.IngestService
	prefix  string
	log     *zap.Logger
}

// NewS3Handler creates an S3Handler.
func NewS3Handler(storage port.ObjectStorage, ingest service.IngestService, uploadsPrefix string, log *zap.Logger) *S3Handler {
	return &S3Handler{storage: storage, ingest: ingest, prefix: uploadsPrefix, log: log}
}

// Handle processes every record in order. A failing record does not stop the
// others; all errors are joined.
func (h *S3Handler) Handle(ctx context.Context, evt events.S3Event) error {
	var errs []error
	for i := range evt.Records {
		if err := h.HandleRecord(ctx, evt.Records[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandleRecord processes one notification record.
func (h *S3Handler) HandleRecord(ctx context.Context, rec events.S3EventRecord) error {
	if rec.EventName != "" && !strings.Contains(rec.EventName, "ObjectCreated") {
		h.log.Debug("ignoring storage event", zap.String("event", rec.EventName))
		return nil
	}

	bucket := rec.S3.Bucket.Name
	key, err := ObjectKey(rec)
	if err != nil {
		return fmt.Errorf("decoding object key %q: %w", rec.S3.Object.Key, err)
	}

	// Skip the HEAD request for objects that can never be eligible.
	if !strings.HasPrefix(key, h.prefix) {
		h.log.Debug("ignoring object outside uploads prefix", zap.String("key", key))
		return nil
	}

	info, err := h.storage.Head(ctx, bucket, key)
	if err != nil {
		if errors.Is(err, domain.ErrObjectNotFound) {
			h.log.Warn("object vanished before processing", zap.String("bucket", bucket), zap.String("key", key))
			return nil
		}
		return fmt.Errorf("reading object metadata for %s: %w", key, err)
	}

	_, err = h.ingest.Process(ctx, domain.UploadEvent{
		Bucket:      bucket,
		Key:         key,
		ContentType: info.ContentType,
		Metadata:    info.Metadata,
	})
	return err
}

// ObjectKey returns the decoded object key. S3 notifications form-encode keys,
// so "+" stands for a space.
func ObjectKey(rec events.S3EventRecord) (string, error) {
	if rec.S3.Object.URLDecodedKey != "" {
		return rec.S3.Object.URLDecodedKey, nil
	}
	return url.QueryUnescape(rec.S3.Object.Key)
}
