package aws

import (
	"context"
	"fmt"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names emitted by the checkout flow.
const (
	MetricOrdersPlaced       = "OrdersPlaced"
	MetricOrderValue         = "OrderValue"
	MetricSubmissionsFailed  = "CRMSubmissionsFailed"
	MetricSubmissionsSkipped = "CRMSubmissionsSkipped"
)

// Metrics emits counters to one CloudWatch namespace.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{CloudWatch: cw, Namespace: namespace, nowFunc: time.Now}
}

// Count records value under name with Count units.
func (m *Metrics) Count(ctx context.Context, name string, value float64, dimensions map[string]string) error {
	return m.put(ctx, name, value, cwtypes.StandardUnitCount, dimensions)
}

// Value records a unitless sample, e.g. an order total.
func (m *Metrics) Value(ctx context.Context, name string, value float64, dimensions map[string]string) error {
	return m.put(ctx, name, value, cwtypes.StandardUnitNone, dimensions)
}

func (m *Metrics) put(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit, dimensions map[string]string) error {
	if m == nil || m.CloudWatch == nil {
		return nil
	}
	dims := make([]cwtypes.Dimension, 0, len(dimensions))
	for k, v := range dimensions {
		dims = append(dims, cwtypes.Dimension{Name: sdkaws.String(k), Value: sdkaws.String(v)})
	}
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: sdkaws.String(m.Namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: sdkaws.String(name),
			Value:      sdkaws.Float64(value),
			Unit:       unit,
			Timestamp:  sdkaws.Time(m.nowFunc()),
			Dimensions: dims,
		}},
	})
	if err != nil {
		return fmt.Errorf("put metric %s: %w", name, err)
	}
	return nil
}
