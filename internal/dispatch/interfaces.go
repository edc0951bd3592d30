package dispatch

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository covers the driver rows and the order columns dispatch owns
// (live position and arrival annotations).
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
	UpdateDriverFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateOrderFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	// ListStaleAvailable returns online drivers whose last_seen_at is older
	// than the cutoff (or never set).
	ListStaleAvailable(ctx context.Context, cutoff time.Time) ([]models.Driver, error)
}

// throttleStore is the slice of the redis client the location throttle uses.
type throttleStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	ThrottleKey(driverID string) string
}
