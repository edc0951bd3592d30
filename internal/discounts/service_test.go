package discounts

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

type stubRepo struct {
	promos    map[string]*models.PromoCode
	loyalty   map[string]*models.LoyaltyAccount
	referrals map[string]*models.ReferralCredit

	promoUses     int
	pointsSpent   int
	pointsAdded   int
	referralSpent int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		promos:    map[string]*models.PromoCode{},
		loyalty:   map[string]*models.LoyaltyAccount{},
		referrals: map[string]*models.ReferralCredit{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) FindPromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo, ok := s.promos[code]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return promo, nil
}

func (s *stubRepo) IncrementPromoUse(ctx context.Context, promoID uuid.UUID) error {
	s.promoUses++
	return nil
}

func (s *stubRepo) FindLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error) {
	account, ok := s.loyalty[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return account, nil
}

func (s *stubRepo) AddLoyaltyPoints(ctx context.Context, phone string, points int) error {
	s.pointsAdded += points
	return nil
}

func (s *stubRepo) SpendLoyaltyPoints(ctx context.Context, phone string, points int) error {
	account, ok := s.loyalty[phone]
	if !ok || account.Points < points {
		return gorm.ErrRecordNotFound
	}
	s.pointsSpent += points
	return nil
}

func (s *stubRepo) FindReferralCredit(ctx context.Context, phone string) (*models.ReferralCredit, error) {
	credit, ok := s.referrals[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return credit, nil
}

func (s *stubRepo) SpendReferralBalance(ctx context.Context, phone string, amount int) error {
	credit, ok := s.referrals[phone]
	if !ok || credit.Balance < amount {
		return gorm.ErrRecordNotFound
	}
	s.referralSpent += amount
	return nil
}

func checkoutCfg() config.CheckoutConfig {
	return config.CheckoutConfig{
		CancelWindow:      5 * time.Minute,
		PriorityFee:       50,
		LoyaltyPointsPer:  2,
		LoyaltyAccrualPer: 20,
	}
}

func TestResolveAllChannels(t *testing.T) {
	repo := newStubRepo()
	repo.promos["SAVE50"] = &models.PromoCode{ID: uuid.New(), Code: "SAVE50", Amount: 50, Active: true}
	repo.loyalty["09171234567"] = &models.LoyaltyAccount{Phone: "09171234567", Points: 100}
	repo.referrals["09171234567"] = &models.ReferralCredit{Phone: "09171234567", Balance: 80}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	code := "SAVE50"
	res, err := svc.Resolve(context.Background(), ResolveInput{
		Phone:          "09171234567",
		Subtotal:       500,
		PromoCode:      &code,
		LoyaltyPoints:  100,
		ReferralAmount: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, 50, res.PromoDiscount)
	assert.Equal(t, 50, res.LoyaltyDiscount, "100 points at 2 points per peso")
	assert.Equal(t, 100, res.LoyaltyPointsSpent)
	assert.Equal(t, 30, res.ReferralDiscount)
}

func TestResolvePromoRejections(t *testing.T) {
	repo := newStubRepo()
	expired := time.Now().Add(-time.Hour)
	repo.promos["OLD"] = &models.PromoCode{ID: uuid.New(), Code: "OLD", Amount: 50, Active: true, ExpiresAt: &expired}
	repo.promos["BIGONLY"] = &models.PromoCode{ID: uuid.New(), Code: "BIGONLY", Amount: 50, Active: true, MinSubtotal: 1000}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	cases := []struct {
		code    string
		message string
	}{
		{"NOPE", "invalid promo code"},
		{"OLD", "promo code expired"},
		{"BIGONLY", "promo minimum not met"},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			code := tc.code
			_, err := svc.Resolve(context.Background(), ResolveInput{
				Phone:     "09171234567",
				Subtotal:  500,
				PromoCode: &code,
			})
			require.Error(t, err)
			assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
			assert.Contains(t, err.Error(), tc.message)
		})
	}
}

func TestResolveLoyaltyCapsAgainstRemainder(t *testing.T) {
	repo := newStubRepo()
	repo.promos["EATFREE"] = &models.PromoCode{ID: uuid.New(), Code: "EATFREE", Amount: 90, Active: true}
	repo.loyalty["09171234567"] = &models.LoyaltyAccount{Phone: "09171234567", Points: 200}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	code := "EATFREE"
	res, err := svc.Resolve(context.Background(), ResolveInput{
		Phone:         "09171234567",
		Subtotal:      100,
		PromoCode:     &code,
		LoyaltyPoints: 200,
	})
	require.NoError(t, err)

	assert.Equal(t, 90, res.PromoDiscount)
	assert.Equal(t, 10, res.LoyaltyDiscount, "capped to subtotal minus promo")
	assert.Equal(t, 20, res.LoyaltyPointsSpent, "only the redeemed value consumes points")
}

func TestResolveReferralCapsAgainstBalanceAndRemainder(t *testing.T) {
	repo := newStubRepo()
	repo.referrals["09171234567"] = &models.ReferralCredit{Phone: "09171234567", Balance: 40}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	res, err := svc.Resolve(context.Background(), ResolveInput{
		Phone:          "09171234567",
		Subtotal:       500,
		ReferralAmount: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 40, res.ReferralDiscount)
}

func TestConsumeDeductsAllChannels(t *testing.T) {
	repo := newStubRepo()
	repo.loyalty["09171234567"] = &models.LoyaltyAccount{Phone: "09171234567", Points: 100}
	repo.referrals["09171234567"] = &models.ReferralCredit{Phone: "09171234567", Balance: 80}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	promoID := uuid.New()
	res := &Resolution{
		PromoID:            &promoID,
		PromoDiscount:      50,
		LoyaltyPointsSpent: 100,
		LoyaltyDiscount:    50,
		ReferralDiscount:   30,
	}
	require.NoError(t, svc.Consume(context.Background(), nil, "09171234567", res))

	assert.Equal(t, 1, repo.promoUses)
	assert.Equal(t, 100, repo.pointsSpent)
	assert.Equal(t, 30, repo.referralSpent)
}

func TestConsumeSurfacesRaces(t *testing.T) {
	repo := newStubRepo()
	repo.loyalty["09171234567"] = &models.LoyaltyAccount{Phone: "09171234567", Points: 10}

	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	err = svc.Consume(context.Background(), nil, "09171234567", &Resolution{LoyaltyPointsSpent: 100})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
}

func TestAccrueLoyalty(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo, checkoutCfg())
	require.NoError(t, err)

	require.NoError(t, svc.AccrueLoyalty(context.Background(), nil, "09171234567", 530))
	assert.Equal(t, 26, repo.pointsAdded, "one point per 20 pesos")

	require.NoError(t, svc.AccrueLoyalty(context.Background(), nil, "09171234567", 10))
	assert.Equal(t, 26, repo.pointsAdded, "sub-threshold totals accrue nothing")
}
