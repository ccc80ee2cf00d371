package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"github.com/imrishuroy/go-glucose-guard-orderflow/config"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/aws"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/logs"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/notify"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logs.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	if cfg.Idempotency.Table == "" {
		log.Fatalf("idempotency.table is required for the worker")
	}

	clients, err := aws.NewAWSClients(context.Background(), cfg.AWS)
	if err != nil {
		log.Fatalf("failed to init aws clients: %v", err)
	}

	p := NewProcessor(
		idempotency.NewStore(clients.DynamoDB, cfg.Idempotency.Table, cfg.Idempotency.TTL),
		notify.NewSimulatedNotifier(logger, cfg.Notifier.Latency, cfg.Notifier.FailureRate),
		logger,
	)

	// If RUN_LOCAL=true, process a single simulated SQS event and exit.
	if os.Getenv("RUN_LOCAL") == "true" {
		testBody := os.Getenv("LOCAL_SQS_BODY")
		if testBody == "" {
			testBody = `{"id":"local-notification-1","audience":"family","recipient":"+1-555-0101","message":"local test","channel":"sms"}`
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: testBody}},
		}
		resp, err := p.Handle(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			log.Fatalf("local handler error: %v failures=%d", err, len(resp.BatchItemFailures))
		}
		return
	}

	lambda.Start(p.Handle)
}
