package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
)

// --- mock implementations ---

type mockCloudWatch struct {
	metrics map[string]float64
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	if m.metrics == nil {
		m.metrics = map[string]float64{}
	}
	for _, d := range in.MetricData {
		m.metrics[*d.MetricName] += *d.Value
	}
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func eventBody(t *testing.T, ev aws.InvoiceEvent) string {
	t.Helper()
	b, err := json.Marshal(ev)
	require.NoError(t, err)
	return string(b)
}

func deletedEvent(id string) aws.InvoiceEvent {
	return aws.InvoiceEvent{
		EventID:    "ev-" + id,
		Type:       aws.EventInvoiceDeleted,
		UserID:     "u1",
		InvoiceID:  id,
		OccurredAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// --- test cases ---

func TestProcessor_Handle(t *testing.T) {
	cw := &mockCloudWatch{}
	p := NewProcessor(aws.NewMetrics(cw, "Invoices"))
	p.nowFunc = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 5, 0, time.UTC) }

	other := deletedEvent("inv3")
	other.Type = "invoice.created"
	incomplete := deletedEvent("inv4")
	incomplete.UserID = ""

	var logs bytes.Buffer
	ctx := zerolog.New(&logs).WithContext(context.Background())

	resp, err := p.Handle(ctx, events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: eventBody(t, deletedEvent("inv1"))},
		{MessageId: "m2", Body: "not json"},
		{MessageId: "m3", Body: eventBody(t, other)},
		{MessageId: "m4", Body: eventBody(t, incomplete)},
		{MessageId: "m5", Body: eventBody(t, deletedEvent("inv5"))},
	}})

	require.NoError(t, err)
	assert.Equal(t, []events.SQSBatchItemFailure{
		{ItemIdentifier: "m2"},
		{ItemIdentifier: "m4"},
	}, resp.BatchItemFailures)
	assert.Equal(t, float64(2), cw.metrics[aws.MetricInvoiceEventsProcessed])
	assert.Equal(t, float64(2), cw.metrics[aws.MetricInvoiceEventsRejected])
	assert.Contains(t, logs.String(), `"invoice_id":"inv1"`)
	assert.Contains(t, logs.String(), `"invoice_id":"inv5"`)
}

func TestProcessor_WithoutMetrics(t *testing.T) {
	p := NewProcessor(nil)

	resp, err := p.Handle(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "m1", Body: eventBody(t, deletedEvent("inv1"))},
	}})

	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
}

func TestWithLogger_DefaultLocalBody(t *testing.T) {
	var logs bytes.Buffer
	handler := withLogger(zerolog.New(&logs), NewProcessor(nil))

	resp, err := handler(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "local-1", Body: defaultLocalBody},
	}})

	require.NoError(t, err)
	assert.Empty(t, resp.BatchItemFailures)
	assert.Contains(t, logs.String(), `"records":1`)
}
