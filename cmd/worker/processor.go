package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
)

// errUnknownEvent marks a well-formed event of a type this consumer does not handle.
var errUnknownEvent = errors.New("unknown event type")

// Processor consumes invoice events from SQS and records an audit line per event.
type Processor struct {
	metrics  *aws.Metrics
	validate *validatorv10.Validate
	nowFunc  func() time.Time
}

// NewProcessor creates a processor. A nil metrics recorder disables metrics.
func NewProcessor(metrics *aws.Metrics) *Processor {
	return &Processor{
		metrics:  metrics,
		validate: validatorv10.New(),
		nowFunc:  time.Now,
	}
}

// Handle processes an SQS batch. Messages that cannot be decoded are reported as
// batch item failures so only they are redelivered; unknown event types are acked.
func (p *Processor) Handle(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
	log := zerolog.Ctx(ctx)
	var resp events.SQSEventResponse
	processed, rejected := 0, 0

	for _, rec := range ev.Records {
		err := p.processMessage(ctx, rec)
		switch {
		case err == nil:
			processed++
		case errors.Is(err, errUnknownEvent):
			log.Warn().Err(err).Str("message_id", rec.MessageId).Msg("skipping event")
		default:
			rejected++
			log.Error().Err(err).Str("message_id", rec.MessageId).Msg("invalid invoice event")
			resp.BatchItemFailures = append(resp.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: rec.MessageId,
			})
		}
	}

	p.count(ctx, aws.MetricInvoiceEventsProcessed, processed)
	p.count(ctx, aws.MetricInvoiceEventsRejected, rejected)
	return resp, nil
}

func (p *Processor) processMessage(ctx context.Context, rec events.SQSMessage) error {
	var msg aws.InvoiceEvent
	if err := json.Unmarshal([]byte(rec.Body), &msg); err != nil {
		return fmt.Errorf("invalid message body: %w", err)
	}
	if err := p.validate.Struct(msg); err != nil {
		return fmt.Errorf("invalid event %s: %w", msg.EventID, err)
	}
	if msg.Type != aws.EventInvoiceDeleted {
		return fmt.Errorf("%w: %s", errUnknownEvent, msg.Type)
	}

	zerolog.Ctx(ctx).Info().
		Str("event_id", msg.EventID).
		Str("user_id", msg.UserID).
		Str("invoice_id", msg.InvoiceID).
		Dur("lag", p.nowFunc().Sub(msg.OccurredAt)).
		Msg("invoice deleted")
	return nil
}

func (p *Processor) count(ctx context.Context, name string, n int) {
	if n == 0 {
		return
	}
	if err := p.metrics.Count(ctx, name, float64(n)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("metric", name).Msg("metric not recorded")
	}
}
