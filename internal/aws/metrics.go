package aws

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metric names.
const (
	MetricInvoicesListed  = "InvoicesListed"
	MetricInvoicesDeleted = "InvoicesDeleted"

	MetricInvoiceEventsProcessed = "InvoiceEventsProcessed"
	MetricInvoiceEventsRejected  = "InvoiceEventsRejected"
)

// Metrics publishes counters to CloudWatch under a single namespace.
// A nil *Metrics or one without a client is disabled.
type Metrics struct {
	CloudWatch CloudWatchAPI
	Namespace  string
	nowFunc    func() time.Time
}

// NewMetrics returns a Metrics recorder bound to a namespace.
func NewMetrics(cw CloudWatchAPI, namespace string) *Metrics {
	return &Metrics{
		CloudWatch: cw,
		Namespace:  namespace,
		nowFunc:    time.Now,
	}
}

// Enabled reports whether metrics are published.
func (m *Metrics) Enabled() bool {
	return m != nil && m.CloudWatch != nil && m.Namespace != ""
}

// Count records a Count datum for name.
func (m *Metrics) Count(ctx context.Context, name string, value float64) error {
	if !m.Enabled() {
		return nil
	}
	ts := m.nowFunc()
	_, err := m.CloudWatch.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.Namespace,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: awsString(name),
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Timestamp:  &ts,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("put metric data (%s): %w", name, err)
	}
	return nil
}
