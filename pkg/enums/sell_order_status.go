package enums

import "fmt"

// SellOrderStatus tracks a buyback order from submission to payout.
type SellOrderStatus string

const (
	SellOrderStatusSubmitted  SellOrderStatus = "submitted"
	SellOrderStatusKitSent    SellOrderStatus = "kit_sent"
	SellOrderStatusReceived   SellOrderStatus = "received"
	SellOrderStatusInspecting SellOrderStatus = "inspecting"
	SellOrderStatusApproved   SellOrderStatus = "approved"
	SellOrderStatusPaid       SellOrderStatus = "paid"
	SellOrderStatusRejected   SellOrderStatus = "rejected"
)

var validSellOrderStatuses = []SellOrderStatus{
	SellOrderStatusSubmitted,
	SellOrderStatusKitSent,
	SellOrderStatusReceived,
	SellOrderStatusInspecting,
	SellOrderStatusApproved,
	SellOrderStatusPaid,
	SellOrderStatusRejected,
}

// String implements fmt.Stringer.
func (s SellOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SellOrderStatus.
func (s SellOrderStatus) IsValid() bool {
	for _, candidate := range validSellOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSellOrderStatus converts raw input into a SellOrderStatus.
func ParseSellOrderStatus(value string) (SellOrderStatus, error) {
	for _, candidate := range validSellOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sell order status %q", value)
}
