package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/metrics"
)

// RecordCashInput patches a cash-on-delivery record. Nil amounts are left as
// they are, so the driver can log the customer hand-off hours before the hub
// turn-in.
type RecordCashInput struct {
	OrderID        uuid.UUID
	Received       *int
	TurnedIn       *int
	VarianceReason *string
}

// Service keeps cash reconciliation records and driver earnings.
type Service interface {
	RecordCash(ctx context.Context, input RecordCashInput) (*models.CashRecord, error)
	GetCash(ctx context.Context, orderID uuid.UUID) (*models.CashRecord, error)
	// AccrueDelivery credits the driver their share of the delivery fee once
	// per delivered order, inside the delivery transaction.
	AccrueDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) error
	ListEarnings(ctx context.Context, driverID uuid.UUID) ([]models.DriverEarning, error)
	MarkEarningsPaid(ctx context.Context, driverID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
	// driverShare = 1 - platform commission on the delivery fee.
	driverShare decimal.Decimal
	metrics     *metrics.OrderMetrics
}

// NewService wires the cash and earnings ledger. commission is the
// platform's fractional cut of the delivery fee, 0 <= commission < 1.
func NewService(repo Repository, commission decimal.Decimal, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if commission.IsNegative() || commission.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("driver commission must be in [0, 1)")
	}
	return &service{
		repo:        repo,
		driverShare: decimal.NewFromInt(1).Sub(commission),
		metrics:     orderMetrics,
	}, nil
}

func (s *service) RecordCash(ctx context.Context, input RecordCashInput) (*models.CashRecord, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Received != nil && *input.Received < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "received amount cannot be negative")
	}
	if input.TurnedIn != nil && *input.TurnedIn < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "turned-in amount cannot be negative")
	}

	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.PaymentMethod != enums.PaymentMethodCash {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not cash on delivery")
	}

	record, err := s.repo.FindCashByOrder(ctx, input.OrderID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash record")
	}
	if record == nil {
		record = &models.CashRecord{
			OrderID:  input.OrderID,
			Expected: order.Total,
		}
		if err := s.repo.CreateCash(ctx, record); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cash record")
		}
	}

	updates := map[string]any{}
	if input.Received != nil {
		updates["received"] = *input.Received
		record.Received = input.Received
	}
	if input.TurnedIn != nil {
		updates["turned_in"] = *input.TurnedIn
		record.TurnedIn = input.TurnedIn
	}
	if input.VarianceReason != nil {
		updates["variance_reason"] = *input.VarianceReason
		record.VarianceReason = input.VarianceReason
	}
	if len(updates) > 0 {
		if err := s.repo.UpdateCashFields(ctx, record.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cash record")
		}
	}

	if hasVariance(record) {
		s.metrics.IncCashVariance()
	}
	return record, nil
}

// hasVariance reports whether any recorded amount disagrees with another.
func hasVariance(record *models.CashRecord) bool {
	if record.Received != nil && *record.Received != record.Expected {
		return true
	}
	if record.Received != nil && record.TurnedIn != nil && *record.Received != *record.TurnedIn {
		return true
	}
	return false
}

func (s *service) GetCash(ctx context.Context, orderID uuid.UUID) (*models.CashRecord, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	record, err := s.repo.FindCashByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no cash record for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cash record")
	}
	return record, nil
}

func (s *service) AccrueDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) error {
	if order == nil || order.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}
	if order.DriverID == nil {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no driver to credit")
	}

	amount := decimal.NewFromInt(int64(order.DeliveryFee)).
		Mul(s.driverShare).
		Round(0).
		IntPart()
	earning := &models.DriverEarning{
		DriverID: *order.DriverID,
		OrderID:  order.ID,
		Amount:   int(amount),
		Status:   enums.PayoutStatusAccrued,
	}
	if err := s.repo.WithTx(tx).CreateEarning(ctx, earning); err != nil {
		// The order_id unique index makes the accrual idempotent across
		// redelivered transitions.
		if isDuplicate(err) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accrue driver earning")
	}
	return nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || db.IsUniqueViolation(err, "")
}

func (s *service) ListEarnings(ctx context.Context, driverID uuid.UUID) ([]models.DriverEarning, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	earnings, err := s.repo.ListEarningsByDriver(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver earnings")
	}
	return earnings, nil
}

func (s *service) MarkEarningsPaid(ctx context.Context, driverID uuid.UUID) (int64, error) {
	if driverID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "driver id required")
	}
	count, err := s.repo.MarkEarningsPaid(ctx, driverID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark earnings paid")
	}
	return count, nil
}
