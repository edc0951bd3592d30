package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/internal/deliveryfee"
	"github.com/rmagbanua/kaon-backend/internal/discounts"
	"github.com/rmagbanua/kaon-backend/internal/pricing"
	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/metrics"
	"github.com/rmagbanua/kaon-backend/pkg/pagination"
	"github.com/rmagbanua/kaon-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// RestaurantDirectory resolves the cart's primary merchant for min-order and
// fee origin checks.
type RestaurantDirectory interface {
	FindBySlug(ctx context.Context, slug string) (*models.Restaurant, error)
}

// DriverDirectory gates claim transitions on the driver's availability flag.
type DriverDirectory interface {
	FindDriver(ctx context.Context, id uuid.UUID) (*models.Driver, error)
}

// EarningsAccruer records the driver's delivery-fee share when an order
// reaches delivered.
type EarningsAccruer interface {
	AccrueDelivery(ctx context.Context, tx *gorm.DB, order *models.Order) error
}

// Service is the order lifecycle spine all four portals mutate.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	// Track is the customer-facing read, authorized by the order's contact
	// phone rather than a token.
	Track(ctx context.Context, id uuid.UUID, phone string) (*models.Order, error)
	Head(ctx context.Context, id uuid.UUID, since time.Time) (*ChangeHead, error)
	Accept(ctx context.Context, input AcceptInput) (*models.Order, error)
	Reject(ctx context.Context, input RejectInput) (*models.Order, error)
	Transition(ctx context.Context, input TransitionInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) error
	Edit(ctx context.Context, input EditInput) (*models.Order, error)
	RecordPaymentRef(ctx context.Context, id uuid.UUID, ref string) error
	ListForRestaurant(ctx context.Context, slug string, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListBoard(ctx context.Context, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
	ListClaimable(ctx context.Context, params pagination.Params) (*OrderList, error)
	ListForDriver(ctx context.Context, driverID uuid.UUID, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error)
}

type service struct {
	repo        Repository
	tx          txRunner
	discounts   discounts.Service
	fees        *deliveryfee.Calculator
	restaurants RestaurantDirectory
	drivers     DriverDirectory
	earnings    EarningsAccruer
	cfg         config.CheckoutConfig
	metrics     *metrics.OrderMetrics
	now         func() time.Time
}

// NewService wires the order lifecycle engine.
func NewService(
	repo Repository,
	tx txRunner,
	discountSvc discounts.Service,
	fees *deliveryfee.Calculator,
	restaurants RestaurantDirectory,
	drivers DriverDirectory,
	earnings EarningsAccruer,
	cfg config.CheckoutConfig,
	orderMetrics *metrics.OrderMetrics,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if discountSvc == nil {
		return nil, fmt.Errorf("discount resolver required")
	}
	if fees == nil {
		return nil, fmt.Errorf("delivery fee calculator required")
	}
	if restaurants == nil {
		return nil, fmt.Errorf("restaurant directory required")
	}
	if drivers == nil {
		return nil, fmt.Errorf("driver directory required")
	}
	if earnings == nil {
		return nil, fmt.Errorf("earnings accruer required")
	}
	if cfg.CancelWindow <= 0 {
		return nil, fmt.Errorf("cancel window must be positive")
	}
	return &service{
		repo:        repo,
		tx:          tx,
		discounts:   discountSvc,
		fees:        fees,
		restaurants: restaurants,
		drivers:     drivers,
		earnings:    earnings,
		cfg:         cfg,
		metrics:     orderMetrics,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if err := validateCreate(input); err != nil {
		return nil, err
	}
	now := s.now()
	if input.WindowKind == enums.TimeWindowScheduled {
		if input.ScheduledFor == nil || !input.ScheduledFor.After(now) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "scheduled time must be in the future")
		}
	}

	primarySlug, err := cartSlugs(input.Lines)
	if err != nil {
		return nil, err
	}
	restaurant, err := s.restaurants.FindBySlug(ctx, primarySlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown restaurant "+primarySlug)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load restaurant")
	}
	if !restaurant.Open {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, restaurant.Name+" is currently closed")
	}

	subtotal := 0
	for _, line := range input.Lines {
		subtotal += line.PriceValue * line.Quantity
	}
	if subtotal < restaurant.MinOrder {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("order is below the minimum of %d", restaurant.MinOrder))
	}

	var dropoff *types.LatLng
	if input.DeliveryLat != nil && input.DeliveryLng != nil {
		dropoff = &types.LatLng{Lat: *input.DeliveryLat, Lng: *input.DeliveryLng}
	}
	origin := &types.LatLng{Lat: restaurant.Lat, Lng: restaurant.Lng}
	quote, err := s.fees.QuoteTrip(ctx, origin, dropoff)
	if err != nil {
		return nil, err
	}

	resolution, err := s.discounts.Resolve(ctx, discounts.ResolveInput{
		Phone:          input.Phone,
		Subtotal:       subtotal,
		PromoCode:      input.PromoCode,
		LoyaltyPoints:  input.LoyaltyPoints,
		ReferralAmount: input.ReferralAmount,
		Now:            now,
	})
	if err != nil {
		return nil, err
	}

	breakdown, err := s.price(input.Lines, resolution, quote.Fee, input.Tip, input.Priority)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		CustomerName:     input.CustomerName,
		Phone:            input.Phone,
		Email:            input.Email,
		Address:          input.Address,
		Landmark:         input.Landmark,
		Room:             input.Room,
		Floor:            input.Floor,
		GuestName:        input.GuestName,
		DeliveryLat:      input.DeliveryLat,
		DeliveryLng:      input.DeliveryLng,
		ZoneName:         input.ZoneName,
		DistanceKm:       quote.DistanceKm,
		Subtotal:         breakdown.Subtotal,
		PromoCode:        resolution.PromoCode,
		PromoDiscount:    breakdown.PromoDiscount,
		LoyaltyDiscount:  breakdown.LoyaltyDiscount,
		ReferralDiscount: breakdown.ReferralDiscount,
		DeliveryFee:      breakdown.DeliveryFee,
		Tip:              breakdown.Tip,
		Priority:         input.Priority,
		PriorityFee:      breakdown.PriorityFee,
		Total:            breakdown.Total,
		WindowKind:       input.WindowKind,
		ScheduledFor:     input.ScheduledFor,
		Status:           enums.OrderStatusPending,
		Acceptance:       enums.AcceptancePending,
		UpdatedBy:        enums.ActorCustomer,
		PaymentMethod:    input.PaymentMethod,
		PaymentRef:       input.PaymentRef,
		Notes:            input.Notes,
		CancelCutoffAt:   now.Add(s.cfg.CancelWindow),
		Items:            buildItems(input.Lines),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		return s.discounts.Consume(ctx, tx, input.Phone, resolution)
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated(string(order.PaymentMethod))
	return order, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) Track(ctx context.Context, id uuid.UUID, phone string) (*models.Order, error) {
	if strings.TrimSpace(phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	order, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// A wrong phone gets the same answer as a missing order so callers
	// cannot probe for order ids.
	if order.Phone != phone {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) Head(ctx context.Context, id uuid.UUID, since time.Time) (*ChangeHead, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	updatedAt, err := s.repo.ChangedSince(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order head")
	}
	return &ChangeHead{
		OrderID:   id,
		UpdatedAt: updatedAt,
		Changed:   updatedAt.After(since),
	}, nil
}

func (s *service) Accept(ctx context.Context, input AcceptInput) (*models.Order, error) {
	if input.PrepMinutes <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "prep minutes must be positive")
	}
	var accepted *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForRestaurant(ctx, repo, input.OrderID, input.RestaurantSlug)
		if err != nil {
			return err
		}
		if err := checkUndecided(order); err != nil {
			return err
		}
		if err := CheckTransition(enums.ActorRestaurant, order.Status, enums.OrderStatusConfirmed); err != nil {
			return err
		}

		now := s.now()
		updates := transitionUpdates(order, enums.OrderStatusConfirmed, enums.ActorRestaurant, now)
		updates["acceptance"] = enums.AcceptanceAccepted
		updates["prep_minutes"] = input.PrepMinutes
		updates["estimated_delivery_at"] = now.Add(time.Duration(input.PrepMinutes) * time.Minute)
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accept order")
		}
		accepted, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(enums.OrderStatusConfirmed.String(), enums.ActorRestaurant.String())
	return accepted, nil
}

func (s *service) Reject(ctx context.Context, input RejectInput) (*models.Order, error) {
	if strings.TrimSpace(input.Reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reject reason required")
	}
	var rejected *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForRestaurant(ctx, repo, input.OrderID, input.RestaurantSlug)
		if err != nil {
			return err
		}
		if err := checkUndecided(order); err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+order.Status.String())
		}

		// A reject closes the order: cancelled status, and for already-paid
		// methods a refund flag for the payments follow-up.
		updates := transitionUpdates(order, enums.OrderStatusCancelled, enums.ActorRestaurant, s.now())
		updates["acceptance"] = enums.AcceptanceRejected
		updates["reject_reason"] = input.Reason
		if order.PaymentMethod != enums.PaymentMethodCash {
			updates["refund_pending"] = true
		}
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject order")
		}
		rejected, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncCancelled(enums.ActorRestaurant.String())
	return rejected, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		updates, err := s.transitionPatch(ctx, order, input)
		if err != nil {
			return err
		}
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}

		if input.Target == enums.OrderStatusDelivered && order.Status != enums.OrderStatusDelivered {
			if order.DriverID != nil {
				delivered := *order
				delivered.Status = enums.OrderStatusDelivered
				if err := s.earnings.AccrueDelivery(ctx, tx, &delivered); err != nil {
					return err
				}
			}
			if err := s.discounts.AccrueLoyalty(ctx, tx, order.Phone, order.Total); err != nil {
				return err
			}
		}

		updated, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncTransition(input.Target.String(), input.Actor.String())
	return updated, nil
}

// transitionPatch validates the move for the acting class and builds the
// field patch, including driver assignment on a claim.
func (s *service) transitionPatch(ctx context.Context, order *models.Order, input TransitionInput) (map[string]any, error) {
	switch input.Actor {
	case enums.ActorStaff:
		if err := CheckOverride(input.Target); err != nil {
			return nil, err
		}
	case enums.ActorDriver:
		if input.DriverID == nil || *input.DriverID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
		}
		if err := CheckTransition(input.Actor, order.Status, input.Target); err != nil {
			return nil, err
		}
		if input.Target == enums.OrderStatusAssigned {
			if order.DriverID != nil {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order already claimed")
			}
			driver, err := s.drivers.FindDriver(ctx, *input.DriverID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
				}
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
			}
			if !driver.Available {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "driver is offline")
			}
		} else if order.DriverID == nil || *order.DriverID != *input.DriverID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another driver")
		}
	default:
		if err := CheckTransition(input.Actor, order.Status, input.Target); err != nil {
			return nil, err
		}
	}

	updates := transitionUpdates(order, input.Target, input.Actor, s.now())
	if input.Target == enums.OrderStatusAssigned && input.DriverID != nil {
		updates["driver_id"] = *input.DriverID
	}
	return updates, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor != enums.ActorCustomer && input.Actor != enums.ActorStaff {
		return pkgerrors.New(pkgerrors.CodeForbidden, "actor cannot cancel this order")
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		now := s.now()
		if input.Actor == enums.ActorCustomer {
			if order.Phone != input.Phone {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			if !now.Before(order.CancelCutoffAt) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cancellation window has passed")
			}
			if err := CheckTransition(enums.ActorCustomer, order.Status, enums.OrderStatusCancelled); err != nil {
				return err
			}
		} else if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+order.Status.String())
		}

		updates := transitionUpdates(order, enums.OrderStatusCancelled, input.Actor, now)
		if input.Reason != nil {
			updates["reject_reason"] = *input.Reason
		}
		if order.PaymentMethod != enums.PaymentMethodCash {
			updates["refund_pending"] = true
		}
		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncCancelled(input.Actor.String())
	return nil
}

func (s *service) Edit(ctx context.Context, input EditInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	var edited *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Phone != input.Phone {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		now := s.now()
		if !now.Before(order.CancelCutoffAt) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "edit window has passed")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+order.Status.String())
		}

		updates := map[string]any{"updated_by": enums.ActorCustomer}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}

		lines := input.Lines
		tip := order.Tip
		if input.Tip != nil {
			if *input.Tip < 0 {
				return pkgerrors.New(pkgerrors.CodeValidation, "tip cannot be negative")
			}
			tip = *input.Tip
		}

		// Any money input change reprices the whole order through the same
		// engine checkout used, so totals can never drift from the items.
		if lines != nil || input.Tip != nil {
			if lines == nil {
				lines = linesFromItems(order.Items)
			}
			if _, err := cartSlugs(lines); err != nil {
				return err
			}
			resolution := resolutionFromOrder(order)
			breakdown, err := s.price(lines, resolution, order.DeliveryFee, tip, order.Priority)
			if err != nil {
				return err
			}
			if input.Lines != nil {
				if err := repo.ReplaceItems(ctx, order.ID, buildItemsFor(order.ID, input.Lines)); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace order items")
				}
			}
			updates["subtotal"] = breakdown.Subtotal
			updates["promo_discount"] = breakdown.PromoDiscount
			updates["loyalty_discount"] = breakdown.LoyaltyDiscount
			updates["referral_discount"] = breakdown.ReferralDiscount
			updates["tip"] = breakdown.Tip
			updates["total"] = breakdown.Total
		}

		if err := repo.UpdateFields(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "edit order")
		}
		edited, err = repo.FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return edited, nil
}

func (s *service) RecordPaymentRef(ctx context.Context, id uuid.UUID, ref string) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(ref) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment reference required")
	}
	err := s.repo.UpdateFields(ctx, id, map[string]any{"payment_ref": ref})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment reference")
	}
	return nil
}

func (s *service) ListForRestaurant(ctx context.Context, slug string, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restaurant slug required")
	}
	list, err := s.repo.ListByRestaurantSlug(ctx, slug, statuses, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list restaurant orders")
	}
	return list, nil
}

func (s *service) ListBoard(ctx context.Context, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByStatus(ctx, statuses, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ListClaimable(ctx context.Context, params pagination.Params) (*OrderList, error) {
	list, err := s.repo.ListByStatus(ctx, []enums.OrderStatus{enums.OrderStatusReady}, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list claimable orders")
	}
	claimable := make([]models.Order, 0, len(list.Orders))
	for _, order := range list.Orders {
		if order.DriverID == nil {
			claimable = append(claimable, order)
		}
	}
	list.Orders = claimable
	return list, nil
}

func (s *service) ListForDriver(ctx context.Context, driverID uuid.UUID, statuses []enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	list, err := s.repo.ListByDriver(ctx, driverID, statuses, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list driver orders")
	}
	return list, nil
}

func (s *service) loadForRestaurant(ctx context.Context, repo Repository, orderID uuid.UUID, slug string) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(slug) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "restaurant context missing")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	owned := false
	for _, item := range order.Items {
		if item.RestaurantSlug == slug {
			owned = true
			break
		}
	}
	if !owned {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to restaurant")
	}
	return order, nil
}

func (s *service) price(lines []CartLine, res *discounts.Resolution, deliveryFee, tip int, priority bool) (pricing.Breakdown, error) {
	in := pricing.Input{
		Lines:       make([]pricing.Line, 0, len(lines)),
		DeliveryFee: deliveryFee,
		Tip:         tip,
		Priority:    priority,
		PriorityFee: s.cfg.PriorityFee,
	}
	if res != nil {
		in.PromoDiscount = res.PromoDiscount
		in.LoyaltyDiscount = res.LoyaltyDiscount
		in.ReferralDiscount = res.ReferralDiscount
	}
	for _, line := range lines {
		in.Lines = append(in.Lines, pricing.Line{PriceValue: line.PriceValue, Quantity: line.Quantity})
	}
	return pricing.Compute(in)
}

func validateCreate(input CreateInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address required")
	}
	if strings.TrimSpace(input.Landmark) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "landmark required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart cannot be empty")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if input.Tip < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "tip cannot be negative")
	}
	if input.PaymentMethod == enums.PaymentMethodCash &&
		(input.DeliveryLat == nil || input.DeliveryLng == nil) {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery coordinates required for cash orders")
	}
	switch input.WindowKind {
	case enums.TimeWindowASAP, enums.TimeWindowScheduled:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid time window")
	}
	return nil
}

// cartSlugs enforces the one-restaurant-one-grocery rule and returns the
// primary slug for min-order and fee-origin checks. The food merchant is
// primary when both are present.
func cartSlugs(lines []CartLine) (string, error) {
	var foodSlug, grocerySlug string
	for _, line := range lines {
		slug := strings.TrimSpace(line.RestaurantSlug)
		if slug == "" {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "cart line missing restaurant")
		}
		if line.IsGrocery {
			if grocerySlug != "" && grocerySlug != slug {
				return "", pkgerrors.New(pkgerrors.CodeValidation, "only one grocery per order")
			}
			grocerySlug = slug
			continue
		}
		if foodSlug != "" && foodSlug != slug {
			return "", pkgerrors.New(pkgerrors.CodeValidation, "only one restaurant per order")
		}
		foodSlug = slug
	}
	if foodSlug != "" {
		return foodSlug, nil
	}
	return grocerySlug, nil
}

func buildItems(lines []CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for i, line := range lines {
		items = append(items, models.OrderItem{
			RestaurantName: line.RestaurantName,
			RestaurantSlug: line.RestaurantSlug,
			IsGrocery:      line.IsGrocery,
			ItemName:       line.ItemName,
			Price:          line.Price,
			PriceValue:     line.PriceValue,
			Quantity:       line.Quantity,
			Position:       i,
		})
	}
	return items
}

func buildItemsFor(orderID uuid.UUID, lines []CartLine) []models.OrderItem {
	items := buildItems(lines)
	for i := range items {
		items[i].OrderID = orderID
	}
	return items
}

func linesFromItems(items []models.OrderItem) []CartLine {
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, CartLine{
			RestaurantName: item.RestaurantName,
			RestaurantSlug: item.RestaurantSlug,
			IsGrocery:      item.IsGrocery,
			ItemName:       item.ItemName,
			Price:          item.Price,
			PriceValue:     item.PriceValue,
			Quantity:       item.Quantity,
		})
	}
	return lines
}

// resolutionFromOrder reuses the already-redeemed discount amounts when an
// edit reprices; edits never re-validate or re-consume discount channels.
func resolutionFromOrder(order *models.Order) *discounts.Resolution {
	return &discounts.Resolution{
		PromoCode:        order.PromoCode,
		PromoDiscount:    order.PromoDiscount,
		LoyaltyDiscount:  order.LoyaltyDiscount,
		ReferralDiscount: order.ReferralDiscount,
	}
}

func checkUndecided(order *models.Order) error {
	switch order.Acceptance {
	case enums.AcceptanceAccepted:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already accepted")
	case enums.AcceptanceRejected:
		return pkgerrors.New(pkgerrors.CodeStateConflict, "order already rejected")
	}
	return nil
}
