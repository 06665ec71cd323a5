package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
)

// Invoice event types.
const (
	EventInvoiceDeleted = "invoice.deleted"
)

// InvoiceEvent is the payload sent to the invoice events queue.
type InvoiceEvent struct {
	EventID    string    `json:"event_id" validate:"required"`
	Type       string    `json:"type" validate:"required"`
	UserID     string    `json:"user_id" validate:"required"`
	InvoiceID  string    `json:"invoice_id" validate:"required"`
	OccurredAt time.Time `json:"occurred_at" validate:"required"`
}

// Publisher wraps an SQS client and a queue URL.
type Publisher struct {
	SQS      SQSAPI
	QueueURL string
	nowFunc  func() time.Time
}

// NewPublisher returns a Publisher bound to a queue URL.
func NewPublisher(sqsClient SQSAPI, queueURL string) *Publisher {
	return &Publisher{
		SQS:      sqsClient,
		QueueURL: queueURL,
		nowFunc:  time.Now,
	}
}

// Enabled reports whether a queue is configured.
func (p *Publisher) Enabled() bool {
	return p != nil && p.SQS != nil && p.QueueURL != ""
}

// PublishInvoiceDeleted sends an invoice.deleted event. It is a no-op when the publisher is disabled.
func (p *Publisher) PublishInvoiceDeleted(ctx context.Context, userID, invoiceID string) error {
	if !p.Enabled() {
		return nil
	}
	ev := InvoiceEvent{
		EventID:    uuid.NewString(),
		Type:       EventInvoiceDeleted,
		UserID:     userID,
		InvoiceID:  invoiceID,
		OccurredAt: p.nowFunc().UTC(),
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return p.send(ctx, string(body), map[string]string{
		"event_type": ev.Type,
		"invoice_id": invoiceID,
	})
}

// send sends a JSON message body to SQS; attributes are sent as String MessageAttributes.
func (p *Publisher) send(ctx context.Context, messageBody string, attributes map[string]string) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    &p.QueueURL,
		MessageBody: &messageBody,
	}
	if len(attributes) > 0 {
		msgAttrs := map[string]sqstypes.MessageAttributeValue{}
		for k, v := range attributes {
			msgAttrs[k] = sqstypes.MessageAttributeValue{
				DataType:    awsString("String"),
				StringValue: awsString(v),
			}
		}
		input.MessageAttributes = msgAttrs
	}

	_, err := p.SQS.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// awsString helper
func awsString(s string) *string { return &s }
