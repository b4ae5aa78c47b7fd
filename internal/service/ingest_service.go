package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"reportingest/internal/domain"
	"reportingest/internal/interpreter"
	"reportingest/internal/normalizer"
	"reportingest/internal/port"
)

// IngestResult summarizes what one upload produced.
type IngestResult struct {
	Skipped bool
	Reports []domain.ReportDocument
	Scan    *domain.ScanDocument
}

// IngestService runs one upload through analysis, normalization and persistence.
type IngestService interface {
	Process(ctx context.Context, event domain.UploadEvent) (*IngestResult, error)
}

type ingestService struct {
	analyzer port.Analyzer
	reports  port.ReportRepository
	scans    port.ScanRepository
	notifier port.Notifier
	urls     ImageURLResolver
	prefix   string
	log      *zap.Logger
}

// NewIngestService creates a new IngestService implementation. A nil notifier
// disables notifications.
func NewIngestService(
	analyzer port.Analyzer,
	reports port.ReportRepository,
	scans port.ScanRepository,
	notifier port.Notifier,
	urls ImageURLResolver,
	uploadsPrefix string,
	log *zap.Logger,
) IngestService {
	return &ingestService{
		analyzer: analyzer,
		reports:  reports,
		scans:    scans,
		notifier: notifier,
		urls:     urls,
		prefix:   uploadsPrefix,
		log:      log,
	}
}

func (s *ingestService) Process(ctx context.Context, event domain.UploadEvent) (*IngestResult, error) {
	log := s.log.With(zap.String("bucket", event.Bucket), zap.String("key", event.Key))

	if !event.Eligible(s.prefix) {
		log.Debug("ignoring upload", zap.String("content_type", event.ContentType))
		return &IngestResult{Skipped: true}, nil
	}

	imageURL, err := s.urls.Resolve(ctx, event.Bucket, event.Key)
	if err != nil {
		return nil, fmt.Errorf("building image url: %w", err)
	}

	log.Info("processing image")

	out, err := s.analyzer.Analyze(ctx, port.AnalyzeInput{
		ImageURL:    imageURL,
		ImagePath:   event.Key,
		ContentType: event.ContentType,
	})
	if err != nil {
		log.Error("analysis failed", zap.Error(err))
		s.notify(ctx, log, port.Outcome{Status: port.OutcomeAnalyzeFailed, ImagePath: event.Key, Err: err})
		return nil, fmt.Errorf("analyzing %s: %w", event.Key, err)
	}
	log.Debug("analysis response", zap.String("provider", out.Provider), zap.ByteString("raw", out.Raw))

	parsed, parseErr := interpreter.Parse(out.Raw)
	if parseErr != nil {
		var pe *interpreter.ParseError
		if errors.As(parseErr, &pe) {
			log.Warn("dropping malformed tool call", zap.String("shape", pe.Shape), zap.Int("index", pe.Index), zap.Error(parseErr))
		} else {
			log.Warn("dropping malformed tool call", zap.Error(parseErr))
		}
	}

	src := normalizer.Source{
		ImagePath:      event.Key,
		ImageURL:       imageURL,
		ConversationID: parsed.ConversationID,
	}

	if len(parsed.Calls) == 0 {
		return s.saveScan(ctx, log, src, out.Raw)
	}

	result := &IngestResult{Reports: make([]domain.ReportDocument, 0, len(parsed.Calls))}
	types := make([]domain.ReportType, 0, len(parsed.Calls))
	for _, call := range parsed.Calls {
		doc := normalizer.Normalize(call, src)
		if err := s.reports.Create(ctx, doc); err != nil {
			log.Error("saving report failed", zap.String("type", string(doc.Type)), zap.Error(err))
			s.notify(ctx, log, port.Outcome{
				Status:         port.OutcomePersistFailed,
				ImagePath:      event.Key,
				ReportTypes:    types,
				ConversationID: parsed.ConversationID,
				Err:            err,
			})
			return nil, fmt.Errorf("saving %s report: %w", doc.Type, err)
		}
		log.Info("report saved",
			zap.String("type", string(doc.Type)),
			zap.Bool("known_type", doc.Type.IsKnown()),
			zap.String("id", doc.ID.String()))
		result.Reports = append(result.Reports, *doc)
		types = append(types, doc.Type)
	}

	s.notify(ctx, log, port.Outcome{
		Status:         port.OutcomeSaved,
		ImagePath:      event.Key,
		ReportTypes:    types,
		ConversationID: parsed.ConversationID,
	})
	return result, nil
}

// saveScan stores the raw response when nothing could be interpreted. This is a
// soft failure: only a failing write is returned as an error.
func (s *ingestService) saveScan(ctx context.Context, log *zap.Logger, src normalizer.Source, raw json.RawMessage) (*IngestResult, error) {
	log.Info("no tool calls found, saving raw response")

	scan := &domain.ScanDocument{
		Type:        domain.ScanTypeUnknown,
		ImagePath:   src.ImagePath,
		ImageURL:    src.ImageURL,
		RawResponse: raw,
	}
	if err := s.scans.Create(ctx, scan); err != nil {
		log.Error("saving scan failed", zap.Error(err))
		s.notify(ctx, log, port.Outcome{
			Status:         port.OutcomePersistFailed,
			ImagePath:      src.ImagePath,
			ConversationID: src.ConversationID,
			Err:            err,
		})
		return nil, fmt.Errorf("saving scan: %w", err)
	}

	s.notify(ctx, log, port.Outcome{
		Status:         port.OutcomeNoToolCalls,
		ImagePath:      src.ImagePath,
		ConversationID: src.ConversationID,
	})
	return &IngestResult{Scan: scan}, nil
}

func (s *ingestService) notify(ctx context.Context, log *zap.Logger, o port.Outcome) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, o); err != nil {
		log.Warn("notification failed", zap.String("status", string(o.Status)), zap.Error(err))
	}
}
