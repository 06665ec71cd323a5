package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/go-invoice-handlers/internal/identity"
	"github.com/imrishuroy/go-invoice-handlers/internal/invoices"
)

// Error codes returned in {"error": ...} bodies.
const (
	errUnauthorized       = "unauthorized"
	errInvoiceIDRequired  = "invoiceId is required"
	errInvoiceNotFound    = "invoice_not_found"
	errInvalidInvoiceData = "invalid_invoice_data"
	errInternal           = "internal_error"
)

// statusFor maps a handler error to its HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, identity.ErrMissingIdentity), errors.Is(err, invoices.ErrMissingUserID):
		return http.StatusUnauthorized, errUnauthorized
	case errors.Is(err, invoices.ErrMissingInvoiceID):
		return http.StatusBadRequest, errInvoiceIDRequired
	case errors.Is(err, invoices.ErrNotFound):
		return http.StatusNotFound, errInvoiceNotFound
	case errors.Is(err, invoices.ErrMalformedRecord):
		return http.StatusInternalServerError, errInvalidInvoiceData
	default:
		return http.StatusInternalServerError, errInternal
	}
}

// writeError logs err and writes the mapped JSON error response.
func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)

	log := zerolog.Ctx(c.Request.Context())
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Msg("request failed")

	c.JSON(status, gin.H{"error": code})
}
