// Command ingest is the AWS Lambda entrypoint fired by S3 ObjectCreated
// notifications on the uploads bucket.
package main

import (
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"reportingest/internal/app"
	"reportingest/internal/config"
	"reportingest/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	zap.ReplaceGlobals(zlog)

	// The connection pool lives for the lifetime of the execution environment.
	c, err := app.Build(cfg, zlog)
	if err != nil {
		zlog.Fatal("bootstrap failed", zap.Error(err))
	}

	lambda.Start(c.Triggers.Handle)
}
