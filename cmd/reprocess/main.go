// Command reprocess runs stored uploads through the ingestion path again.
// Records are append-only, so every run creates new reports or scans.
// Usage: go run ./cmd/reprocess -key uploads/abc/report.jpg
//
//	go run ./cmd/reprocess -prefix uploads/2024/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"reportingest/internal/app"
	"reportingest/internal/config"
	"reportingest/internal/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	key := flag.String("key", "", "single object key to reprocess")
	prefix := flag.String("prefix", "", "reprocess every object under this prefix")
	bucket := flag.String("bucket", "", "bucket to read from (defaults to REPORTS_S3_BUCKET)")
	dryRun := flag.Bool("dry-run", false, "list matching objects without processing them")
	flag.Parse()

	if (*key == "") == (*prefix == "") {
		return errors.New("exactly one of -key or -prefix is required")
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *bucket == "" {
		*bucket = cfg.S3.Bucket
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = zlog.Sync() }()

	c, err := app.Build(cfg, zlog)
	if err != nil {
		return err
	}
	defer func() { _ = c.DB.Close() }()

	ctx := context.Background()

	keys := []string{*key}
	if *prefix != "" {
		keys, err = c.Storage.List(ctx, *bucket, *prefix)
		if err != nil {
			return fmt.Errorf("listing %s/%s: %w", *bucket, *prefix, err)
		}
	}

	var failed int
	for _, k := range keys {
		if strings.HasSuffix(k, "/") {
			continue
		}
		if *dryRun {
			zlog.Info("would reprocess", zap.String("key", k))
			continue
		}

		rec := events.S3EventRecord{
			S3: events.S3Entity{
				Bucket: events.S3Bucket{Name: *bucket},
				Object: events.S3Object{Key: k, URLDecodedKey: k},
			},
		}
		if err := c.Triggers.HandleRecord(ctx, rec); err != nil {
			failed++
			zlog.Error("reprocess failed", zap.String("key", k), zap.Error(err))
			continue
		}
		zlog.Info("reprocessed", zap.String("key", k))
	}

	zlog.Info("reprocess complete", zap.Int("objects", len(keys)), zap.Int("failed", failed))
	if failed > 0 {
		return fmt.Errorf("%d of %d objects failed", failed, len(keys))
	}
	return nil
}
