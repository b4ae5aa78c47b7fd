package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"reportingest/internal/config"
	"reportingest/internal/domain"
	"reportingest/internal/port"
)

// UploadInput is the DTO for image upload requests.
type UploadInput struct {
	File   multipart.File
	Header *multipart.FileHeader
}

// UploadResult describes a stored upload. Ingestion starts from the storage
// notification, not from this call.
type UploadResult struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	ImageURL    string `json:"imageUrl"`
}

// UploadService stores report images under the uploads prefix.
type UploadService interface {
	Upload(ctx context.Context, input UploadInput) (*UploadResult, error)
}

type uploadService struct {
	storage port.ObjectStorage
	urls    ImageURLResolver
	cfg     *config.S3Config
	prefix  string
	log     *zap.Logger
}

// NewUploadService creates a new UploadService implementation.
func NewUploadService(
	storage port.ObjectStorage,
	urls ImageURLResolver,
	cfg *config.S3Config,
	uploadsPrefix string,
	log *zap.Logger,
) UploadService {
	return &uploadService{
		storage: storage,
		urls:    urls,
		cfg:     cfg,
		prefix:  uploadsPrefix,
		log:     log,
	}
}

func (s *uploadService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	maxBytes := s.cfg.MaxFileSizeMB * 1024 * 1024
	if input.Header.Size > maxBytes {
		return nil, domain.ErrFileTooLarge
	}

	// Read first 512 bytes for magic-byte content type detection
	buf := make([]byte, 512)
	n, err := input.File.Read(buf)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading file header: %w", err)
	}
	contentType := http.DetectContentType(buf[:n])
	ext, ok := domain.AllowedImageTypes[contentType]
	if !ok {
		return nil, domain.ErrUnsupportedFileType
	}

	if _, err := input.File.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seeking file: %w", err)
	}

	key := s.prefix + uploadObjectName(input.Header.Filename, ext)

	s.log.Info("uploading image",
		zap.String("original_name", input.Header.Filename),
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("size", input.Header.Size))

	_, err = s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		Body:        input.File,
		ContentType: contentType,
		Size:        input.Header.Size,
	})
	if err != nil {
		s.log.Error("image upload failed", zap.String("key", key), zap.Error(err))
		return nil, domain.ErrUploadFailed
	}

	imageURL, err := s.urls.Resolve(ctx, s.cfg.Bucket, key)
	if err != nil {
		return nil, err
	}

	return &UploadResult{
		Bucket:      s.cfg.Bucket,
		Key:         key,
		ContentType: contentType,
		Size:        input.Header.Size,
		ImageURL:    imageURL,
	}, nil
}

// uploadObjectName returns "<uuid>/<base name>.<ext>", replacing the client's
// extension with the one matching the detected content type.
func uploadObjectName(filename, ext string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, path.Ext(base))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" {
		base = "image"
	}
	return uuid.NewString() + "/" + base + "." + ext
}
