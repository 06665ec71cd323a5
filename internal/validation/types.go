package validation

import "github.com/imrishuroy/go-invoice-handlers/internal/invoices"

// DeleteInvoiceRequest holds the path parameters of DELETE /invoices/:invoiceId
type DeleteInvoiceRequest struct {
	InvoiceID string `uri:"invoiceId" validate:"required"`
}

// ListInvoicesResponse is the body of GET /invoices
type ListInvoicesResponse struct {
	Invoices []invoices.Invoice `json:"invoices" validate:"dive"` // every element is checked
	Count    int                `json:"count" validate:"min=0"`   // must equal len(Invoices)
}
