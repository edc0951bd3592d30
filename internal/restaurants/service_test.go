package restaurants

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

type stubRestaurantRepo struct {
	restaurants map[string]*models.Restaurant
	items       map[uuid.UUID]*models.RestaurantItem
	orders      map[uuid.UUID]*models.Order
	itemWrites  map[uuid.UUID]map[string]any
	writes      map[uuid.UUID]map[string]any
}

func newStubRestaurantRepo() *stubRestaurantRepo {
	return &stubRestaurantRepo{
		restaurants: map[string]*models.Restaurant{},
		items:       map[uuid.UUID]*models.RestaurantItem{},
		orders:      map[uuid.UUID]*models.Order{},
		itemWrites:  map[uuid.UUID]map[string]any{},
		writes:      map[uuid.UUID]map[string]any{},
	}
}

func (s *stubRestaurantRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRestaurantRepo) FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	restaurant, ok := s.restaurants[slug]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return restaurant, nil
}

func (s *stubRestaurantRepo) FindItem(ctx context.Context, id uuid.UUID) (*models.RestaurantItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubRestaurantRepo) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.writes[id] = updates
	return nil
}

func (s *stubRestaurantRepo) UpdateItemFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.itemWrites[id] = updates
	return nil
}

func (s *stubRestaurantRepo) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

func seedRestaurant(repo *stubRestaurantRepo) *models.Restaurant {
	restaurant := &models.Restaurant{
		ID:         uuid.New(),
		Name:       "Tita Nena's",
		Slug:       "tita-nenas",
		Commission: decimal.RequireFromString("0.15"),
		Open:       true,
	}
	available := models.RestaurantItem{
		ID: uuid.New(), RestaurantID: restaurant.ID, Name: "adobo rice bowl", Price: 250,
	}
	soldOut := models.RestaurantItem{
		ID: uuid.New(), RestaurantID: restaurant.ID, Name: "lechon kawali", Price: 320, SoldOut: true,
	}
	restaurant.Items = []models.RestaurantItem{available, soldOut}
	repo.restaurants[restaurant.Slug] = restaurant
	repo.items[available.ID] = &available
	repo.items[soldOut.ID] = &soldOut
	return restaurant
}

func newRestaurantService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	require.NoError(t, err)
	return svc
}

func TestMenuFiltersSoldOut(t *testing.T) {
	repo := newStubRestaurantRepo()
	seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	menu, err := svc.Menu(context.Background(), "tita-nenas", false)
	require.NoError(t, err)
	require.Len(t, menu, 1)
	assert.Equal(t, "adobo rice bowl", menu[0].Name)

	full, err := svc.Menu(context.Background(), "tita-nenas", true)
	require.NoError(t, err)
	assert.Len(t, full, 2)
}

func TestSetItemSoldOutChecksOwnership(t *testing.T) {
	repo := newStubRestaurantRepo()
	restaurant := seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	foreign := &models.RestaurantItem{ID: uuid.New(), RestaurantID: uuid.New(), Name: "pancit canton"}
	repo.items[foreign.ID] = foreign

	err := svc.SetItemSoldOut(context.Background(), "tita-nenas", foreign.ID, true)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeForbidden))

	itemID := restaurant.Items[0].ID
	require.NoError(t, svc.SetItemSoldOut(context.Background(), "tita-nenas", itemID, true))
	assert.Equal(t, map[string]any{"sold_out": true}, repo.itemWrites[itemID])
}

func TestSetOpenAndMinOrder(t *testing.T) {
	repo := newStubRestaurantRepo()
	restaurant := seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	require.NoError(t, svc.SetOpen(context.Background(), "tita-nenas", false))
	assert.Equal(t, map[string]any{"open": false}, repo.writes[restaurant.ID])

	require.NoError(t, svc.SetMinOrder(context.Background(), "tita-nenas", 200))
	assert.Equal(t, map[string]any{"min_order": 200}, repo.writes[restaurant.ID])

	err := svc.SetMinOrder(context.Background(), "tita-nenas", -1)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestOrderPayoutWithholdsCommission(t *testing.T) {
	repo := newStubRestaurantRepo()
	seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusDelivered,
		Items: []models.OrderItem{
			{RestaurantSlug: "tita-nenas", ItemName: "adobo rice bowl", PriceValue: 250, Quantity: 2},
			{RestaurantSlug: "metro-mart", ItemName: "instant noodles", PriceValue: 45, Quantity: 3},
		},
	}
	repo.orders[order.ID] = order

	payout, err := svc.OrderPayout(context.Background(), "tita-nenas", order.ID)
	require.NoError(t, err)
	assert.Equal(t, 500, payout.Gross, "grocery lines stay out of the restaurant's take")
	assert.Equal(t, 75, payout.Commission)
	assert.Equal(t, 425, payout.Net)
}

func TestOrderPayoutRequiresDelivery(t *testing.T) {
	repo := newStubRestaurantRepo()
	seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusOutForDelivery,
		Items: []models.OrderItem{
			{RestaurantSlug: "tita-nenas", PriceValue: 250, Quantity: 1},
		},
	}
	repo.orders[order.ID] = order

	_, err := svc.OrderPayout(context.Background(), "tita-nenas", order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeStateConflict))
}

func TestOrderPayoutNoLines(t *testing.T) {
	repo := newStubRestaurantRepo()
	seedRestaurant(repo)
	svc := newRestaurantService(t, repo)

	order := &models.Order{
		ID:     uuid.New(),
		Status: enums.OrderStatusDelivered,
		Items: []models.OrderItem{
			{RestaurantSlug: "metro-mart", PriceValue: 45, Quantity: 2},
		},
	}
	repo.orders[order.ID] = order

	_, err := svc.OrderPayout(context.Background(), "tita-nenas", order.ID)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
