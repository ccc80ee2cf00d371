// Package metrics publishes checkout outcome counters to CloudWatch.
package metrics

import (
	"context"
	"log/slog"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/pkg/errors"

	"github.com/imrishuroy/go-glucose-guard-orderflow/internal/aws"
)

// Recorder counts checkout outcomes by risk level.
type Recorder interface {
	RecordOutcome(ctx context.Context, outcome, riskLevel string) error
}

// Nop discards every observation.
type Nop struct{}

func (Nop) RecordOutcome(context.Context, string, string) error { return nil }

const metricOutcome = "CheckoutOutcome"

// CloudWatchRecorder writes one datapoint per outcome.
type CloudWatchRecorder struct {
	client    aws.CloudWatchAPI
	namespace string
	service   string
	logger    *slog.Logger
	nowFunc   func() time.Time
}

// NewCloudWatchRecorder returns a recorder publishing under namespace.
func NewCloudWatchRecorder(client aws.CloudWatchAPI, namespace, service string, logger *slog.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		client:    client,
		namespace: namespace,
		service:   service,
		logger:    logger,
		nowFunc:   time.Now,
	}
}

// RecordOutcome implements Recorder.
func (r *CloudWatchRecorder) RecordOutcome(ctx context.Context, outcome, riskLevel string) error {
	dims := []cwtypes.Dimension{
		{Name: sdkaws.String("Service"), Value: sdkaws.String(r.service)},
		{Name: sdkaws.String("Outcome"), Value: sdkaws.String(outcome)},
	}
	if riskLevel != "" {
		dims = append(dims, cwtypes.Dimension{Name: sdkaws.String("RiskLevel"), Value: sdkaws.String(riskLevel)})
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: sdkaws.String(metricOutcome),
			Dimensions: dims,
			Timestamp:  sdkaws.Time(r.nowFunc()),
			Unit:       cwtypes.StandardUnitCount,
			Value:      sdkaws.Float64(1),
		}},
	})
	if err != nil {
		r.logger.WarnContext(ctx, "put metric data failed", slog.String("outcome", outcome), slog.Any("error", err))
		return errors.Wrap(err, "put metric data")
	}
	return nil
}
