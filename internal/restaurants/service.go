package restaurants

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
)

// Payout is a merchant's take for one delivered order: the gross value of
// their lines, the platform commission withheld, and the net owed. Whole
// pesos; rounding favors the platform on the commission.
type Payout struct {
	OrderID    uuid.UUID `json:"order_id"`
	Gross      int       `json:"gross"`
	Commission int       `json:"commission"`
	Net        int       `json:"net"`
}

// Service manages merchant storefronts, menus, and payouts.
type Service interface {
	FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
	Menu(ctx context.Context, slug string, includeSoldOut bool) ([]models.RestaurantItem, error)
	SetItemSoldOut(ctx context.Context, slug string, itemID uuid.UUID, soldOut bool) error
	SetOpen(ctx context.Context, slug string, open bool) error
	SetMinOrder(ctx context.Context, slug string, minOrder int) error
	OrderPayout(ctx context.Context, slug string, orderID uuid.UUID) (*Payout, error)
}

type service struct {
	repo Repository
}

// NewService wires restaurant dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("restaurant repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant slug required")
	}
	restaurant, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "restaurant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	return restaurant, nil
}

func (s *service) Menu(ctx context.Context, slug string, includeSoldOut bool) ([]models.RestaurantItem, error) {
	restaurant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if includeSoldOut {
		return restaurant.Items, nil
	}
	items := make([]models.RestaurantItem, 0, len(restaurant.Items))
	for _, item := range restaurant.Items {
		if !item.SoldOut {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *service) SetItemSoldOut(ctx context.Context, slug string, itemID uuid.UUID, soldOut bool) error {
	restaurant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load menu item")
	}
	if item.RestaurantID != restaurant.ID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "menu item belongs to another restaurant")
	}
	if err := s.repo.UpdateItemFields(ctx, itemID, map[string]any{"sold_out": soldOut}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}
	return nil
}

func (s *service) SetOpen(ctx context.Context, slug string, open bool) error {
	restaurant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFields(ctx, restaurant.ID, map[string]any{"open": open}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	return nil
}

func (s *service) SetMinOrder(ctx context.Context, slug string, minOrder int) error {
	if minOrder < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "minimum order cannot be negative")
	}
	restaurant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateFields(ctx, restaurant.ID, map[string]any{"min_order": minOrder}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update restaurant")
	}
	return nil
}

func (s *service) OrderPayout(ctx context.Context, slug string, orderID uuid.UUID) (*Payout, error) {
	restaurant, err := s.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order has not been delivered")
	}

	gross := 0
	for _, item := range order.Items {
		if item.RestaurantSlug == restaurant.Slug {
			gross += item.PriceValue * item.Quantity
		}
	}
	if gross == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order has no lines for this restaurant")
	}

	commission := decimal.NewFromInt(int64(gross)).
		Mul(restaurant.Commission).
		Ceil().
		IntPart()

	return &Payout{
		OrderID:    order.ID,
		Gross:      gross,
		Commission: int(commission),
		Net:        gross - int(commission),
	}, nil
}
