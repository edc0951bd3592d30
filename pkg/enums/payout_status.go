package enums

import "fmt"

// PayoutStatus tracks whether accrued driver earnings have been paid out.
type PayoutStatus string

const (
	PayoutStatusAccrued PayoutStatus = "accrued"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// IsValid reports whether the value is a known PayoutStatus.
func (p PayoutStatus) IsValid() bool {
	return p == PayoutStatusAccrued || p == PayoutStatusPaid
}

// ParsePayoutStatus converts raw input into a PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	switch PayoutStatus(value) {
	case PayoutStatusAccrued:
		return PayoutStatusAccrued, nil
	case PayoutStatusPaid:
		return PayoutStatusPaid, nil
	default:
		return "", fmt.Errorf("invalid payout status %q", value)
	}
}
