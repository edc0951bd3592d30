package enums

import "fmt"

// AcceptanceStatus is the restaurant-side decision sub-status, independent of
// the canonical order status.
type AcceptanceStatus string

const (
	AcceptancePending  AcceptanceStatus = "pending"
	AcceptanceAccepted AcceptanceStatus = "accepted"
	AcceptanceRejected AcceptanceStatus = "rejected"
)

var validAcceptanceStatuses = []AcceptanceStatus{
	AcceptancePending,
	AcceptanceAccepted,
	AcceptanceRejected,
}

// String implements fmt.Stringer.
func (s AcceptanceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known AcceptanceStatus.
func (s AcceptanceStatus) IsValid() bool {
	for _, candidate := range validAcceptanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// Decided reports whether the restaurant has already accepted or rejected.
func (s AcceptanceStatus) Decided() bool {
	return s == AcceptanceAccepted || s == AcceptanceRejected
}

// ParseAcceptanceStatus converts raw input into an AcceptanceStatus.
func ParseAcceptanceStatus(value string) (AcceptanceStatus, error) {
	for _, candidate := range validAcceptanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid acceptance status %q", value)
}
