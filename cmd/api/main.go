package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-glucose-guard-orderflow/config"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/aws"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/checkout"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/handlers"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/health"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/idempotency"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/logs"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/metrics"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/notify"
	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/session"
)

func needsAWS(cfg *config.Config) bool {
	return cfg.Idempotency.Table != "" || cfg.Notifier.Provider == config.ProviderSQS || cfg.Metrics.Enabled
}

func buildWorkflow(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*checkout.Workflow, error) {
	var clients *aws.AWSClients
	if needsAWS(cfg) {
		var err error
		clients, err = aws.NewAWSClients(ctx, cfg.AWS)
		if err != nil {
			return nil, err
		}
	}

	var notifier notify.Notifier
	switch cfg.Notifier.Provider {
	case config.ProviderSQS:
		notifier = notify.NewSQSNotifier(aws.NewPublisher(clients.SQS, cfg.Notifier.QueueURL))
	default:
		notifier = notify.NewSimulatedNotifier(logger, cfg.Notifier.Latency, cfg.Notifier.FailureRate)
	}

	var guard checkout.CommitGuard = idempotency.NewMemoryGuard()
	if cfg.Idempotency.Table != "" {
		guard = idempotency.NewCommitGuard(idempotency.NewStore(clients.DynamoDB, cfg.Idempotency.Table, cfg.Idempotency.TTL))
	}

	var recorder metrics.Recorder = metrics.Nop{}
	if cfg.Metrics.Enabled {
		recorder = metrics.NewCloudWatchRecorder(clients.CloudWatch, cfg.Metrics.Namespace, cfg.Env.ServiceName, logger)
	}

	return checkout.New(
		health.NewRules(cfg.Checkout.Thresholds),
		notify.NewDispatcher(notifier, logger),
		guard,
		recorder,
		logger,
		cfg.Checkout.DeliveryEstimate,
	), nil
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger, err := logs.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	if !cfg.Env.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	wf, err := buildWorkflow(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("failed to init checkout workflow: %v", err)
	}

	r := handlers.NewRouter(handlers.HandlerConfig{
		Sessions: session.NewStore(),
		Workflow: wf,
		Logger:   logger,
	})

	if cfg.HTTP.RunLocal {
		addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
		logger.Info("running local server", slog.String("addr", addr), slog.String("notifier", cfg.Notifier.Provider))
		if err := r.Run(addr); err != nil {
			log.Fatalf("failed to run local server: %v", err)
		}
		return
	}

	// lambda adapter
	adapter := ginadapter.New(r)

	lambda.Start(func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return adapter.ProxyWithContext(ctx, req)
	})
}
