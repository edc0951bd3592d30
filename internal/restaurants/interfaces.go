package restaurants

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository persists merchant storefronts and their menus.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	FindItem(ctx context.Context, id uuid.UUID) (*models.RestaurantItem, error)
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	UpdateItemFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
