package invoices

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// DeriveStatus computes the display status of an invoice at instant now.
// Paid wins over dates; an unpaid invoice is overdue once now is strictly after
// invoiceDate plus dueDays calendar days, and sent until then.
func DeriveStatus(paid bool, invoiceDate time.Time, dueDays int, now time.Time) Status {
	if paid {
		return StatusPaid
	}
	due := invoiceDate.AddDate(0, 0, dueDays)
	if now.After(due) {
		return StatusOverdue
	}
	return StatusSent
}

// ParseInvoiceDate parses a stored invoiceDate. Date-only values are midnight in loc.
func ParseInvoiceDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	if t, err := time.ParseInLocation(dateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid invoice date %q", s)
	}
	return t, nil
}

// WithStatus returns r annotated with its status at instant now.
func WithStatus(r Record, now time.Time, loc *time.Location) (Invoice, error) {
	date, err := ParseInvoiceDate(r.InvoiceDate, loc)
	if err != nil {
		return Invoice{}, err
	}
	return Invoice{
		Record: r,
		Status: DeriveStatus(r.Paid, date, r.InvoiceDueDays, now),
	}, nil
}
