package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	"github.com/rmagbanua/kaon-backend/pkg/pagination"
)

// Repository defines persistence for the order aggregate. Mutations go
// through UpdateFields so every writer patches only the columns it owns.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// UpdateFields patches the named columns on one order row; callers never
	// save whole records.
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ReplaceItems(ctx context.Context, orderID uuid.UUID, items []models.OrderItem) error
	// ChangedSince returns the order's current updated_at without loading the
	// aggregate; pollers compare it against their last seen value.
	ChangedSince(ctx context.Context, id uuid.UUID) (time.Time, error)
	ListByRestaurantSlug(ctx context.Context, slug string, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListByStatus(ctx context.Context, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListByPhone(ctx context.Context, phone string, params pagination.Params) (*OrderList, error)
}
