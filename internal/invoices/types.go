package invoices

// Status is the display status of an invoice. It is never stored.
type Status string

// Invoice statuses
const (
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
	StatusSent    Status = "sent"
)

// CounterPrefix marks internal sequence-counter items that share the invoices table.
const CounterPrefix = "counter"

// DynamoDB attribute names of the invoices table.
const (
	AttrUserID         = "userId"    // partition key
	AttrInvoiceID      = "invoiceId" // sort key
	AttrInvoiceDate    = "invoiceDate"
	AttrTotalAmount    = "totalAmount"
	AttrPaid           = "paid"
	AttrInvoiceDueDays = "invoiceDueDays"
	AttrCurrency       = "currency"
	AttrClientName     = "clientName"
)

// listProjection is the set of attributes read when listing invoices.
var listProjection = []string{
	AttrInvoiceID,
	AttrInvoiceDate,
	AttrTotalAmount,
	AttrPaid,
	AttrInvoiceDueDays,
	AttrCurrency,
	AttrClientName,
}

// Record is an invoice as stored in the invoices table (without status).
type Record struct {
	InvoiceID      string  `dynamodbav:"invoiceId" json:"invoiceId" validate:"required"`
	InvoiceDate    string  `dynamodbav:"invoiceDate" json:"invoiceDate" validate:"required"`
	TotalAmount    float64 `dynamodbav:"totalAmount" json:"totalAmount"`
	Paid           bool    `dynamodbav:"paid" json:"paid"`
	InvoiceDueDays int     `dynamodbav:"invoiceDueDays" json:"invoiceDueDays" validate:"min=0"`
	Currency       string  `dynamodbav:"currency" json:"currency" validate:"required"`
	ClientName     string  `dynamodbav:"clientName" json:"clientName" validate:"required"`
}

// Invoice is a stored Record annotated with its derived Status.
type Invoice struct {
	Record
	Status Status `dynamodbav:"-" json:"status" validate:"required,oneof=paid overdue sent"`
}
