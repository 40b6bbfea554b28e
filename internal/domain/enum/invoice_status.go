package enum

import (
	"encoding/json"
	"fmt"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusValidated InvoiceStatus = "VALIDATED"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

func (s InvoiceStatus) String() string {
	return string(s)
}

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusValidated, InvoiceStatusCancelled:
		return true
	}
	return false
}

// ParseInvoiceStatus parses a status filter value.
func ParseInvoiceStatus(str string) (InvoiceStatus, error) {
	s := InvoiceStatus(str)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid invoice status %q", str)
	}
	return s, nil
}

func (s *InvoiceStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v, err := ParseInvoiceStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}
