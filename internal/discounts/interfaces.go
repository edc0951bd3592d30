package discounts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository defines persistence for the three discount channels.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	FindPromoByCode(ctx context.Context, code string) (*models.PromoCode, error)
	IncrementPromoUse(ctx context.Context, promoID uuid.UUID) error

	FindLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error)
	AddLoyaltyPoints(ctx context.Context, phone string, points int) error
	SpendLoyaltyPoints(ctx context.Context, phone string, points int) error

	FindReferralCredit(ctx context.Context, phone string) (*models.ReferralCredit, error)
	SpendReferralBalance(ctx context.Context, phone string, amount int) error
}
