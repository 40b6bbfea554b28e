package enum

import (
	"encoding/json"
	"fmt"
)

// BillingType selects the pricing formula of a service
type BillingType string

const (
	BillingFlat      BillingType = "FLAT"
	BillingPerMinute BillingType = "PER_MINUTE"
	BillingPerHour   BillingType = "PER_HOUR"
)

func (b BillingType) String() string {
	return string(b)
}

// IsValid reports whether b is a known billing type.
func (b BillingType) IsValid() bool {
	switch b {
	case BillingFlat, BillingPerMinute, BillingPerHour:
		return true
	}
	return false
}

// IsTimed reports whether the service is priced by duration.
func (b BillingType) IsTimed() bool {
	return b == BillingPerMinute || b == BillingPerHour
}

func (b *BillingType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	v := BillingType(str)
	if !v.IsValid() {
		return fmt.Errorf("invalid billing type %q", str)
	}
	*b = v
	return nil
}
