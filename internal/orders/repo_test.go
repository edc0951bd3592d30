package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	"github.com/rmagbanua/kaon-backend/pkg/pagination"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  customer_name TEXT NOT NULL,
  phone TEXT NOT NULL,
  email TEXT,
  address TEXT NOT NULL,
  landmark TEXT NOT NULL,
  room TEXT,
  floor TEXT,
  guest_name TEXT,
  delivery_lat REAL,
  delivery_lng REAL,
  zone_name TEXT,
  distance_km REAL NOT NULL DEFAULT 0,
  subtotal INTEGER NOT NULL,
  promo_code TEXT,
  promo_discount INTEGER NOT NULL DEFAULT 0,
  loyalty_discount INTEGER NOT NULL DEFAULT 0,
  referral_discount INTEGER NOT NULL DEFAULT 0,
  delivery_fee INTEGER NOT NULL DEFAULT 0,
  tip INTEGER NOT NULL DEFAULT 0,
  priority INTEGER NOT NULL DEFAULT 0,
  priority_fee INTEGER NOT NULL DEFAULT 0,
  total INTEGER NOT NULL,
  window_kind TEXT NOT NULL DEFAULT 'asap',
  scheduled_for DATETIME,
  status TEXT NOT NULL DEFAULT 'pending',
  acceptance TEXT NOT NULL DEFAULT 'pending',
  prep_minutes INTEGER,
  reject_reason TEXT,
  refund_pending INTEGER NOT NULL DEFAULT 0,
  updated_by TEXT NOT NULL DEFAULT 'customer',
  driver_id TEXT,
  arrived_at_hub_at DATETIME,
  driver_arrived_at DATETIME,
  driver_lat REAL,
  driver_lng REAL,
  driver_located_at DATETIME,
  payment_method TEXT NOT NULL DEFAULT 'cash',
  payment_ref TEXT,
  notes TEXT,
  cancel_cutoff_at DATETIME NOT NULL,
  confirmed_at DATETIME,
  preparing_at DATETIME,
  ready_at DATETIME,
  assigned_at DATETIME,
  picked_at DATETIME,
  out_for_delivery_at DATETIME,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  estimated_delivery_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  restaurant_name TEXT NOT NULL,
  restaurant_slug TEXT NOT NULL,
  is_grocery INTEGER NOT NULL DEFAULT 0,
  item_name TEXT NOT NULL,
  price TEXT NOT NULL,
  price_value INTEGER NOT NULL,
  quantity INTEGER NOT NULL,
  position INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME
);`
	cashRecords := `
CREATE TABLE IF NOT EXISTS cash_records (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  expected INTEGER NOT NULL DEFAULT 0,
  received INTEGER,
  turned_in INTEGER,
  variance_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	require.NoError(t, db.Exec(cashRecords).Error)
	return db
}

func seedRepoOrder(t *testing.T, db *gorm.DB, slug string, status enums.OrderStatus, created time.Time) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:             uuid.New(),
		CustomerName:   "Maria Santos",
		Phone:          "09171234567",
		Address:        "123 Mango Ave, Cebu City",
		Landmark:       "beside the barangay hall",
		Subtotal:       500,
		Total:          580,
		Status:         status,
		Acceptance:     enums.AcceptancePending,
		PaymentMethod:  enums.PaymentMethodCash,
		CancelCutoffAt: created.Add(5 * time.Minute),
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	require.NoError(t, db.Create(order).Error)

	item := &models.OrderItem{
		ID:             uuid.New(),
		OrderID:        order.ID,
		RestaurantName: "Tita Nena's",
		RestaurantSlug: slug,
		ItemName:       "Chicken Adobo",
		Price:          "₱250",
		PriceValue:     250,
		Quantity:       2,
		CreatedAt:      created,
	}
	require.NoError(t, db.Create(item).Error)
	return order
}

func TestRepoUpdateFieldsPatchesOnlyNamedColumns(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusPending, time.Now().UTC())

	now := time.Now().UTC()
	err := repo.UpdateFields(ctx, order.ID, map[string]any{
		"status":       enums.OrderStatusConfirmed,
		"confirmed_at": now,
		"updated_by":   enums.ActorRestaurant,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
	assert.Equal(t, enums.ActorRestaurant, found.UpdatedBy)
	require.NotNil(t, found.ConfirmedAt)
	assert.Equal(t, 500, found.Subtotal, "untouched columns keep their values")
	assert.Equal(t, "09171234567", found.Phone)
}

func TestRepoUpdateFieldsMissingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateFields(context.Background(), uuid.New(), map[string]any{"tip": 10})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoChangedSince(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusPending, time.Now().UTC())

	before, err := repo.ChangedSince(ctx, order.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateFields(ctx, order.ID, map[string]any{"tip": 25}))

	after, err := repo.ChangedSince(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, after.Before(before))
}

func TestRepoReplaceItems(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	order := seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusPending, time.Now().UTC())

	err := repo.ReplaceItems(ctx, order.ID, []models.OrderItem{{
		ID:             uuid.New(),
		OrderID:        order.ID,
		RestaurantName: "Tita Nena's",
		RestaurantSlug: "tita-nenas",
		ItemName:       "Pancit Canton",
		Price:          "₱180",
		PriceValue:     180,
		Quantity:       1,
	}})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Pancit Canton", found.Items[0].ItemName)
}

func TestRepoListByRestaurantSlug(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusPending, base)
	seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusReady, base.Add(time.Minute))
	seedRepoOrder(t, db, "larsian-bbq", enums.OrderStatusPending, base.Add(2*time.Minute))

	list, err := repo.ListByRestaurantSlug(ctx, "tita-nenas", nil, pagination.Params{})
	require.NoError(t, err)
	assert.Len(t, list.Orders, 2)

	list, err = repo.ListByRestaurantSlug(ctx, "tita-nenas", []enums.OrderStatus{enums.OrderStatusReady}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, enums.OrderStatusReady, list.Orders[0].Status)
}

func TestRepoListPaginates(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	for i := 0; i < 3; i++ {
		seedRepoOrder(t, db, "tita-nenas", enums.OrderStatusPending, base.Add(time.Duration(i)*time.Minute))
	}

	first, err := repo.ListByStatus(ctx, nil, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := repo.ListByStatus(ctx, nil, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, order := range append(first.Orders, second.Orders...) {
		assert.False(t, seen[order.ID], "no order appears twice across pages")
		seen[order.ID] = true
	}
}
