package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
	"github.com/imrishuroy/go-invoice-handlers/internal/config"
	"github.com/imrishuroy/go-invoice-handlers/internal/logger"
)

const defaultLocalBody = `{"event_id":"local-event-1","type":"invoice.deleted","user_id":"local-user","invoice_id":"local-invoice-1","occurred_at":"2024-01-01T00:00:00Z"}`

// withLogger puts l on the context of every invocation.
func withLogger(l zerolog.Logger, p *Processor) func(context.Context, events.SQSEvent) (events.SQSEventResponse, error) {
	return func(ctx context.Context, ev events.SQSEvent) (events.SQSEventResponse, error) {
		ctx = l.With().Int("records", len(ev.Records)).Logger().WithContext(ctx)
		return p.Handle(ctx, ev)
	}
}

func main() {
	if os.Getenv("RUN_LOCAL") == "true" {
		_ = godotenv.Load()
	}

	cfg := config.LoadWorker()
	l := logger.Configure(cfg.LogLevel, cfg.LogFormat)

	var metrics *aws.Metrics
	if cfg.MetricsEnabled {
		clients, err := aws.NewAWSClients(context.Background())
		if err != nil {
			l.Fatal().Err(err).Msg("failed to init aws clients")
		}
		metrics = aws.NewMetrics(clients.CloudWatch, cfg.MetricsNamespace)
	}
	handler := withLogger(l, NewProcessor(metrics))

	// If RUN_LOCAL=true, simulate a single SQS event for local testing.
	if cfg.RunLocal {
		body := cfg.LocalBody
		if body == "" {
			body = defaultLocalBody
		}
		event := events.SQSEvent{
			Records: []events.SQSMessage{{MessageId: "local-1", Body: body}},
		}
		resp, err := handler(context.Background(), event)
		if err != nil || len(resp.BatchItemFailures) > 0 {
			l.Fatal().Err(err).Int("failures", len(resp.BatchItemFailures)).Msg("local handler error")
		}
		return
	}

	lambda.Start(handler)
}
