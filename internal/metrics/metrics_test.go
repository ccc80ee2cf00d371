package metrics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
	err    error
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, params)
	if m.err != nil {
		return nil, m.err
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func dimensions(d []cwtypes.Dimension) map[string]string {
	out := map[string]string{}
	for _, x := range d {
		out[*x.Name] = *x.Value
	}
	return out
}

func TestCloudWatchRecorder_RecordOutcome(t *testing.T) {
	mock := &mockCloudWatch{}
	r := NewCloudWatchRecorder(mock, "GlucoseGuard", "checkout-api", slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, r.RecordOutcome(context.Background(), "committed", "high"))
	require.Len(t, mock.inputs, 1)

	in := mock.inputs[0]
	assert.Equal(t, "GlucoseGuard", *in.Namespace)
	require.Len(t, in.MetricData, 1)
	assert.Equal(t, "CheckoutOutcome", *in.MetricData[0].MetricName)
	assert.Equal(t, 1.0, *in.MetricData[0].Value)
	assert.Equal(t, map[string]string{
		"Service":   "checkout-api",
		"Outcome":   "committed",
		"RiskLevel": "high",
	}, dimensions(in.MetricData[0].Dimensions))

	require.NoError(t, r.RecordOutcome(context.Background(), "cancelled", ""))
	assert.NotContains(t, dimensions(mock.inputs[1].MetricData[0].Dimensions), "RiskLevel")
}

func TestCloudWatchRecorder_Error(t *testing.T) {
	mock := &mockCloudWatch{err: errors.New("denied")}
	r := NewCloudWatchRecorder(mock, "ns", "svc", slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := r.RecordOutcome(context.Background(), "blocked", "critical")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "put metric data")
	assert.NoError(t, Nop{}.RecordOutcome(context.Background(), "x", "y"))
}
