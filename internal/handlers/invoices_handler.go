package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-invoice-handlers/internal/aws"
	"github.com/imrishuroy/go-invoice-handlers/internal/identity"
	"github.com/imrishuroy/go-invoice-handlers/internal/invoices"
	"github.com/imrishuroy/go-invoice-handlers/internal/validation"
)

// HandlerConfig groups dependencies for the invoices handler.
type HandlerConfig struct {
	DynamoDBClient   aws.DynamoDBAPI
	SQSClient        aws.SQSAPI
	CloudWatchClient aws.CloudWatchAPI
	TableName        string
	PageSize         int32
	Location         *time.Location
	EventsQueueURL   string // empty disables invoice events
	MetricsNamespace string // empty disables metrics
	Identity         identity.Provider
}

// invoiceStore is the part of invoices.Store the handlers use.
type invoiceStore interface {
	ListByUser(ctx context.Context, userID string) ([]invoices.Invoice, error)
	Delete(ctx context.Context, userID, invoiceID string) error
}

// InvoiceHandler serves the invoice routes.
type InvoiceHandler struct {
	store     invoiceStore
	identity  identity.Provider
	validate  *validatorv10.Validate
	publisher *aws.Publisher
	metrics   *aws.Metrics
}

// NewInvoiceHandler wires the invoice store, validator, publisher and metrics from cfg.
func NewInvoiceHandler(cfg HandlerConfig) *InvoiceHandler {
	h := &InvoiceHandler{
		store: invoices.NewStore(cfg.DynamoDBClient, cfg.TableName,
			invoices.WithPageSize(cfg.PageSize),
			invoices.WithLocation(cfg.Location),
		),
		identity: cfg.Identity,
		validate: validation.New(),
	}
	if cfg.SQSClient != nil && cfg.EventsQueueURL != "" {
		h.publisher = aws.NewPublisher(cfg.SQSClient, cfg.EventsQueueURL)
	}
	if cfg.CloudWatchClient != nil && cfg.MetricsNamespace != "" {
		h.metrics = aws.NewMetrics(cfg.CloudWatchClient, cfg.MetricsNamespace)
	}
	return h
}

// RegisterInvoiceRoutes registers routes for the invoice API.
func RegisterInvoiceRoutes(r gin.IRouter, cfg HandlerConfig) {
	h := NewInvoiceHandler(cfg)

	r.GET("/invoices", h.List)
	r.DELETE("/invoices/:invoiceId", h.Delete)
}

// List returns every invoice of the caller: 200 {"invoices": [...], "count": n}.
func (h *InvoiceHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.identity.ResolveCallerID(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	list, err := h.store.ListByUser(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := validation.ListInvoicesResponse{Invoices: list, Count: len(list)}
	if err := validation.ValidateListResponse(h.validate, resp); err != nil {
		// stored data does not match the response shape
		zerolog.Ctx(ctx).Error().Err(err).Str("user_id", userID).Msg("invoice list failed validation")
		c.JSON(http.StatusInternalServerError, gin.H{"error": errInvalidInvoiceData})
		return
	}

	h.count(ctx, aws.MetricInvoicesListed, len(list))
	c.JSON(http.StatusOK, resp)
}

// Delete removes one invoice of the caller: 204 with no body.
func (h *InvoiceHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	userID, err := h.identity.ResolveCallerID(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	var req validation.DeleteInvoiceRequest
	if err := validation.BindURIAndValidate(c, &req, h.validate); err != nil {
		// BindURIAndValidate already wrote a 400
		return
	}

	if err := h.store.Delete(ctx, userID, req.InvoiceID); err != nil {
		writeError(c, err)
		return
	}

	log := zerolog.Ctx(ctx)
	log.Info().Str("user_id", userID).Str("invoice_id", req.InvoiceID).Msg("invoice deleted")

	if err := h.publisher.PublishInvoiceDeleted(ctx, userID, req.InvoiceID); err != nil {
		log.Warn().Err(err).Str("invoice_id", req.InvoiceID).Msg("publish invoice.deleted failed")
	}
	h.count(ctx, aws.MetricInvoicesDeleted, 1)

	c.Status(http.StatusNoContent)
}

func (h *InvoiceHandler) count(ctx context.Context, name string, n int) {
	if err := h.metrics.Count(ctx, name, float64(n)); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("metric", name).Msg("metric not recorded")
	}
}
