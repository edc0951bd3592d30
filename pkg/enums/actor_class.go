package enums

import "fmt"

// ActorClass identifies which kind of portal user performed an action. Every
// order mutation records the acting class, and messages carry it as sender.
type ActorClass string

const (
	ActorCustomer   ActorClass = "customer"
	ActorRestaurant ActorClass = "restaurant"
	ActorDriver     ActorClass = "driver"
	ActorStaff      ActorClass = "staff"
)

var validActorClasses = []ActorClass{
	ActorCustomer,
	ActorRestaurant,
	ActorDriver,
	ActorStaff,
}

// String implements fmt.Stringer.
func (a ActorClass) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ActorClass.
func (a ActorClass) IsValid() bool {
	for _, candidate := range validActorClasses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActorClass converts raw input into an ActorClass.
func ParseActorClass(value string) (ActorClass, error) {
	for _, candidate := range validActorClasses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor class %q", value)
}
