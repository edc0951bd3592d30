package messaging

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository persists order message threads.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, message *models.Message) error
	// ListByOrder returns the full thread in strict send order.
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Message, error)
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
}
