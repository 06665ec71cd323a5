package validation

import (
	"fmt"
	"reflect"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
// Field names in errors are taken from uri/json tags so they match the wire names.
func New() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(wireName)

	// the reported count must always match the number of invoices returned
	v.RegisterStructValidation(listInvoicesStructValidation, ListInvoicesResponse{})

	return v
}

// ValidateListResponse checks the assembled list before it is sent.
func ValidateListResponse(v *validatorv10.Validate, resp ListInvoicesResponse) error {
	if err := v.Struct(resp); err != nil {
		return fmt.Errorf("list invoices response: %w", err)
	}
	return nil
}

func listInvoicesStructValidation(sl validatorv10.StructLevel) {
	resp := sl.Current().Interface().(ListInvoicesResponse)
	if resp.Count != len(resp.Invoices) {
		sl.ReportError(resp.Count, "count", "Count", "count_matches_invoices", fmt.Sprintf("%d", len(resp.Invoices)))
	}
}

func wireName(fld reflect.StructField) string {
	for _, tag := range []string{"uri", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
