package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
)

// Repository persists cash reconciliation records and driver earnings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindCashByOrder(ctx context.Context, orderID uuid.UUID) (*models.CashRecord, error)
	CreateCash(ctx context.Context, record *models.CashRecord) error
	UpdateCashFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	CreateEarning(ctx context.Context, earning *models.DriverEarning) error
	ListEarningsByDriver(ctx context.Context, driverID uuid.UUID) ([]models.DriverEarning, error)
	// MarkEarningsPaid flips every accrued earning for the driver to paid and
	// returns how many rows changed.
	MarkEarningsPaid(ctx context.Context, driverID uuid.UUID) (int64, error)
}
