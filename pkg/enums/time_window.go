package enums

import "fmt"

// TimeWindowKind distinguishes immediate orders from scheduled ones.
type TimeWindowKind string

const (
	TimeWindowASAP      TimeWindowKind = "asap"
	TimeWindowScheduled TimeWindowKind = "scheduled"
)

// IsValid reports whether the value is a known TimeWindowKind.
func (t TimeWindowKind) IsValid() bool {
	return t == TimeWindowASAP || t == TimeWindowScheduled
}

// ParseTimeWindowKind converts raw input into a TimeWindowKind.
func ParseTimeWindowKind(value string) (TimeWindowKind, error) {
	switch TimeWindowKind(value) {
	case TimeWindowASAP:
		return TimeWindowASAP, nil
	case TimeWindowScheduled:
		return TimeWindowScheduled, nil
	default:
		return "", fmt.Errorf("invalid time window kind %q", value)
	}
}
