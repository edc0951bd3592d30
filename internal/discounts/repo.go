package discounts

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a discounts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	var promo models.PromoCode
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&promo).Error
	if err != nil {
		return nil, err
	}
	return &promo, nil
}

func (r *repository) IncrementPromoUse(ctx context.Context, promoID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PromoCode{}).
		Where("id = ?", promoID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1")).Error
}

func (r *repository) FindLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&account).Error
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *repository) AddLoyaltyPoints(ctx context.Context, phone string, points int) error {
	account := models.LoyaltyAccount{ID: uuid.New(), Phone: phone, Points: points}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "phone"}},
			DoUpdates: clause.Assignments(map[string]any{"points": gorm.Expr("loyalty_accounts.points + ?", points)}),
		}).
		Create(&account).Error
}

func (r *repository) SpendLoyaltyPoints(ctx context.Context, phone string, points int) error {
	res := r.db.WithContext(ctx).
		Model(&models.LoyaltyAccount{}).
		Where("phone = ? AND points >= ?", phone, points).
		UpdateColumn("points", gorm.Expr("points - ?", points))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) FindReferralCredit(ctx context.Context, phone string) (*models.ReferralCredit, error) {
	var credit models.ReferralCredit
	err := r.db.WithContext(ctx).
		Where("phone = ?", phone).
		First(&credit).Error
	if err != nil {
		return nil, err
	}
	return &credit, nil
}

func (r *repository) SpendReferralBalance(ctx context.Context, phone string, amount int) error {
	res := r.db.WithContext(ctx).
		Model(&models.ReferralCredit{}).
		Where("phone = ? AND balance >= ?", phone, amount).
		UpdateColumn("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
