package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindCashByOrder(ctx context.Context, orderID uuid.UUID) (*models.CashRecord, error) {
	var record models.CashRecord
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) CreateCash(ctx context.Context, record *models.CashRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) UpdateCashFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).
		Model(&models.CashRecord{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CreateEarning(ctx context.Context, earning *models.DriverEarning) error {
	return r.db.WithContext(ctx).Create(earning).Error
}

func (r *repository) ListEarningsByDriver(ctx context.Context, driverID uuid.UUID) ([]models.DriverEarning, error) {
	var earnings []models.DriverEarning
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("created_at DESC").
		Find(&earnings).Error
	if err != nil {
		return nil, err
	}
	return earnings, nil
}

func (r *repository) MarkEarningsPaid(ctx context.Context, driverID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DriverEarning{}).
		Where("driver_id = ? AND status = ?", driverID, enums.PayoutStatusAccrued).
		Updates(map[string]any{
			"status":  enums.PayoutStatusPaid,
			"paid_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
