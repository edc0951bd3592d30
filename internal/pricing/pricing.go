package pricing

import (
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

// Line is one cart entry priced in whole pesos.
type Line struct {
	PriceValue int
	Quantity   int
}

// Input carries everything the engine needs to price an order. Discount
// amounts are the requested (uncapped) values; capping happens here so every
// caller prices identically.
type Input struct {
	Lines []Line

	// Requested discount amounts per channel.
	PromoDiscount    int
	LoyaltyDiscount  int
	ReferralDiscount int

	DeliveryFee int
	Tip         int
	Priority    bool
	PriorityFee int
}

// Breakdown is the itemized pricing result stored on the order.
type Breakdown struct {
	Subtotal         int
	PromoDiscount    int
	LoyaltyDiscount  int
	ReferralDiscount int
	DeliveryFee      int
	Tip              int
	PriorityFee      int
	Total            int
}

// Discounts returns the combined capped discount amount.
func (b Breakdown) Discounts() int {
	return b.PromoDiscount + b.LoyaltyDiscount + b.ReferralDiscount
}

// Compute prices a cart. Discounts cap in a fixed order: promo against the
// subtotal, loyalty against what remains after promo, referral against what
// remains after both. The combined discount can therefore never exceed the
// subtotal and the total can never go negative.
func Compute(in Input) (Breakdown, error) {
	if len(in.Lines) == 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "cart cannot be empty")
	}
	for _, line := range in.Lines {
		if line.Quantity < 1 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.PriceValue < 0 {
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "line price cannot be negative")
		}
	}
	if in.PromoDiscount < 0 || in.LoyaltyDiscount < 0 || in.ReferralDiscount < 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "discounts cannot be negative")
	}
	if in.DeliveryFee < 0 || in.Tip < 0 || in.PriorityFee < 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "fees cannot be negative")
	}

	subtotal := 0
	for _, line := range in.Lines {
		subtotal += line.PriceValue * line.Quantity
	}

	promo := clamp(in.PromoDiscount, subtotal)
	loyalty := clamp(in.LoyaltyDiscount, subtotal-promo)
	referral := clamp(in.ReferralDiscount, subtotal-promo-loyalty)

	priorityFee := 0
	if in.Priority {
		priorityFee = in.PriorityFee
	}

	total := subtotal - (promo + loyalty + referral) + in.DeliveryFee + in.Tip + priorityFee
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal:         subtotal,
		PromoDiscount:    promo,
		LoyaltyDiscount:  loyalty,
		ReferralDiscount: referral,
		DeliveryFee:      in.DeliveryFee,
		Tip:              in.Tip,
		PriorityFee:      priorityFee,
		Total:            total,
	}, nil
}

func clamp(value, max int) int {
	if value > max {
		return max
	}
	return value
}
