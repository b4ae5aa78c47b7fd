// Package app wires process-wide dependencies shared by every command.
package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"reportingest/internal/analyzer"
	"reportingest/internal/analyzer/hub"
	openaianalyzer "reportingest/internal/analyzer/openai"
	"reportingest/internal/config"
	"reportingest/internal/email/noop"
	"reportingest/internal/email/ses"
	"reportingest/internal/notify"
	"reportingest/internal/port"
	"reportingest/internal/repository/postgres"
	"reportingest/internal/service"
	s3storage "reportingest/internal/storage/s3"
	"reportingest/internal/trigger"
)

func init() {
	analyzer.RegisterProvider("hub", func(cfg *config.Config) (port.Analyzer, error) {
		client, err := newHubClient(&cfg.Hub)
		if err != nil {
			return nil, err
		}
		return client, nil
	})
	analyzer.RegisterProvider("openai", func(cfg *config.Config) (port.Analyzer, error) {
		a, err := openaianalyzer.NewAnalyzer(&cfg.Analyzer)
		if err != nil {
			return nil, err
		}
		return a, nil
	})
}

func newHubClient(cfg *config.HubConfig) (*hub.Client, error) {
	key, err := cfg.ResolveAPIKey()
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("hub api key is not configured")
	}
	return hub.NewClient(cfg, key), nil
}

// NewNotifier builds the outcome notifier chain from config. The hub notifier
// needs an API key; without one it is skipped with a warning.
func NewNotifier(cfg *config.Config, log *zap.Logger) (port.Notifier, error) {
	var chain notify.Multi

	if cfg.Notify.Hub {
		client, err := newHubClient(&cfg.Hub)
		if err != nil {
			log.Warn("hub notifications disabled", zap.Error(err))
		} else {
			chain = append(chain, notify.NewHubNotifier(client))
		}
	}

	var sender port.EmailSender
	switch cfg.Notify.Email.Provider {
	case "ses":
		s, err := ses.NewSESSender(
			cfg.Notify.Email.Region,
			cfg.Notify.Email.FromAddress,
			cfg.Notify.Email.FromName,
			cfg.Notify.Email.ToAddress,
		)
		if err != nil {
			return nil, fmt.Errorf("creating SES sender: %w", err)
		}
		sender = s
	case "noop", "":
		sender = noop.NewNoopSender(log)
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Notify.Email.Provider)
	}
	chain = append(chain, notify.NewEmailNotifier(sender))

	return chain, nil
}

// Components holds the services every entrypoint needs.
type Components struct {
	DB       *sqlx.DB
	Storage  port.ObjectStorage
	URLs     service.ImageURLResolver
	Reports  port.ReportRepository
	Scans    port.ScanRepository
	Ingest   service.IngestService
	Triggers *trigger.S3Handler
}

// Build connects to Postgres and S3 and assembles the ingestion path.
// The caller owns DB and must close it.
func Build(cfg *config.Config, log *zap.Logger) (*Components, error) {
	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	a, err := analyzer.NewAnalyzer(cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize analyzer: %w", err)
	}

	notifier, err := NewNotifier(cfg, log)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	urls := service.NewImageURLResolver(storage, &cfg.S3)
	reports := postgres.NewReportRepo(db)
	scans := postgres.NewScanRepo(db)
	ingest := service.NewIngestService(a, reports, scans, notifier, urls, cfg.Ingest.UploadsPrefix, log)

	return &Components{
		DB:       db,
		Storage:  storage,
		URLs:     urls,
		Reports:  reports,
		Scans:    scans,
		Ingest:   ingest,
		Triggers: trigger.NewS3Handler(storage, ingest, cfg.Ingest.UploadsPrefix, log),
	}, nil
}
