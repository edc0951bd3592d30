package discounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

// ResolveInput carries the customer's requested discount channels at
// checkout. At most one promo code per order; loyalty is requested in
// points; referral spends up to the phone's prepaid balance.
type ResolveInput struct {
	Phone          string
	Subtotal       int
	PromoCode      *string
	LoyaltyPoints  int
	ReferralAmount int
	Now            time.Time
}

// Resolution is the validated, capped discount set plus what redeeming it
// will consume. The amounts feed the pricing engine unchanged.
type Resolution struct {
	PromoID            *uuid.UUID
	PromoCode          *string
	PromoDiscount      int
	LoyaltyPointsSpent int
	LoyaltyDiscount    int
	ReferralDiscount   int
}

// Service validates and redeems the three discount channels.
type Service interface {
	Resolve(ctx context.Context, input ResolveInput) (*Resolution, error)
	// Consume deducts the resolved redemptions inside the caller's order
	// transaction.
	Consume(ctx context.Context, tx *gorm.DB, phone string, res *Resolution) error
	// AccrueLoyalty awards points for a delivered order inside the caller's
	// transaction.
	AccrueLoyalty(ctx context.Context, tx *gorm.DB, phone string, orderTotal int) error
}

type service struct {
	repo Repository
	cfg  config.CheckoutConfig
}

// NewService builds the discount resolver.
func NewService(repo Repository, cfg config.CheckoutConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("discounts repository required")
	}
	if cfg.LoyaltyPointsPer <= 0 {
		return nil, fmt.Errorf("loyalty point ratio must be positive")
	}
	return &service{repo: repo, cfg: cfg}, nil
}

func (s *service) Resolve(ctx context.Context, input ResolveInput) (*Resolution, error) {
	if input.Subtotal < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal cannot be negative")
	}
	if input.LoyaltyPoints < 0 || input.ReferralAmount < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "requested discounts cannot be negative")
	}
	now := input.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	res := &Resolution{}
	remaining := input.Subtotal

	if input.PromoCode != nil && *input.PromoCode != "" {
		promo, err := s.repo.FindPromoByCode(ctx, *input.PromoCode)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo code")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up promo code")
		}
		if !promo.Active || (promo.ExpiresAt != nil && now.After(*promo.ExpiresAt)) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code expired")
		}
		if input.Subtotal < promo.MinSubtotal {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo minimum not met")
		}
		if !promo.UsableAt(now, input.Subtotal) {
			// not started yet or uses exhausted
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid promo code")
		}
		discount := min(promo.Amount, remaining)
		res.PromoID = &promo.ID
		res.PromoCode = &promo.Code
		res.PromoDiscount = discount
		remaining -= discount
	}

	if input.LoyaltyPoints > 0 {
		account, err := s.repo.FindLoyaltyAccount(ctx, input.Phone)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "no loyalty points for this phone")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up loyalty account")
		}
		points := min(input.LoyaltyPoints, account.Points)
		// Redemption is quantized to whole pesos.
		value := min(points/s.cfg.LoyaltyPointsPer, remaining)
		if value > 0 {
			res.LoyaltyDiscount = value
			res.LoyaltyPointsSpent = value * s.cfg.LoyaltyPointsPer
			remaining -= value
		}
	}

	if input.ReferralAmount > 0 {
		credit, err := s.repo.FindReferralCredit(ctx, input.Phone)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "no referral credit for this phone")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up referral credit")
		}
		res.ReferralDiscount = min(min(input.ReferralAmount, credit.Balance), remaining)
	}

	return res, nil
}

func (s *service) Consume(ctx context.Context, tx *gorm.DB, phone string, res *Resolution) error {
	if res == nil {
		return nil
	}
	repo := s.repo.WithTx(tx)

	if res.PromoID != nil {
		if err := repo.IncrementPromoUse(ctx, *res.PromoID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume promo code")
		}
	}
	if res.LoyaltyPointsSpent > 0 {
		if err := repo.SpendLoyaltyPoints(ctx, phone, res.LoyaltyPointsSpent); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "loyalty points no longer available")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "spend loyalty points")
		}
	}
	if res.ReferralDiscount > 0 {
		if err := repo.SpendReferralBalance(ctx, phone, res.ReferralDiscount); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "referral credit no longer available")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "spend referral credit")
		}
	}
	return nil
}

func (s *service) AccrueLoyalty(ctx context.Context, tx *gorm.DB, phone string, orderTotal int) error {
	if phone == "" || orderTotal <= 0 || s.cfg.LoyaltyAccrualPer <= 0 {
		return nil
	}
	points := orderTotal / s.cfg.LoyaltyAccrualPer
	if points == 0 {
		return nil
	}
	if err := s.repo.WithTx(tx).AddLoyaltyPoints(ctx, phone, points); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accrue loyalty points")
	}
	return nil
}
