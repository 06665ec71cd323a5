package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type mockSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (m *mockSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	m.inputs = append(m.inputs, in)
	if m.err != nil {
		return nil, m.err
	}
	return &sqs.SendMessageOutput{}, nil
}

type mockCloudWatch struct {
	inputs []*cloudwatch.PutMetricDataInput
}

func (m *mockCloudWatch) PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error) {
	m.inputs = append(m.inputs, in)
	return &cloudwatch.PutMetricDataOutput{}, nil
}

func TestPublishInvoiceDeleted(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "https://sqs.local/invoice-events")
	fixed := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	p.nowFunc = func() time.Time { return fixed }

	if err := p.PublishInvoiceDeleted(context.Background(), "u1", "inv1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.inputs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(mock.inputs))
	}

	in := mock.inputs[0]
	if *in.QueueUrl != "https://sqs.local/invoice-events" {
		t.Fatalf("queue url mismatch: %s", *in.QueueUrl)
	}
	var ev InvoiceEvent
	if err := json.Unmarshal([]byte(*in.MessageBody), &ev); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if ev.Type != EventInvoiceDeleted || ev.UserID != "u1" || ev.InvoiceID != "inv1" {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.EventID == "" || !ev.OccurredAt.Equal(fixed) {
		t.Fatalf("event id/time not set: %+v", ev)
	}
	if got := *in.MessageAttributes["event_type"].StringValue; got != EventInvoiceDeleted {
		t.Fatalf("event_type attribute mismatch: %s", got)
	}
}

func TestPublishInvoiceDeleted_Disabled(t *testing.T) {
	mock := &mockSQS{}
	p := NewPublisher(mock, "")
	if err := p.PublishInvoiceDeleted(context.Background(), "u1", "inv1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mock.inputs) != 0 {
		t.Fatalf("expected no messages when queue url is empty")
	}

	var nilPublisher *Publisher
	if err := nilPublisher.PublishInvoiceDeleted(context.Background(), "u1", "inv1"); err != nil {
		t.Fatalf("nil publisher should be a no-op, got %v", err)
	}
}

func TestPublishInvoiceDeleted_SendError(t *testing.T) {
	sendErr := errors.New("boom")
	p := NewPublisher(&mockSQS{err: sendErr}, "q")
	err := p.PublishInvoiceDeleted(context.Background(), "u1", "inv1")
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}

func TestMetricsCount(t *testing.T) {
	cw := &mockCloudWatch{}
	m := NewMetrics(cw, "Invoices")

	if err := m.Count(context.Background(), MetricInvoicesListed, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cw.inputs) != 1 {
		t.Fatalf("expected 1 put, got %d", len(cw.inputs))
	}
	d := cw.inputs[0].MetricData[0]
	if *d.MetricName != MetricInvoicesListed || *d.Value != 5 {
		t.Fatalf("unexpected datum: %+v", d)
	}

	var disabled *Metrics
	if err := disabled.Count(context.Background(), MetricInvoicesDeleted, 1); err != nil {
		t.Fatalf("nil metrics should be a no-op, got %v", err)
	}
}
