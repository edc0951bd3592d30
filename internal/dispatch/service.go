package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/db/models"
	"github.com/rmagbanua/kaon-backend/pkg/enums"
	pkgerrors "github.com/rmagbanua/kaon-backend/pkg/errors"
	"github.com/rmagbanua/kaon-backend/pkg/metrics"
	"github.com/rmagbanua/kaon-backend/pkg/redis"
)

// Push outcomes recorded on the location metric.
const (
	PushOutcomeWritten   = "written"
	PushOutcomeThrottled = "throttled"
	PushOutcomeError     = "error"
)

// ArrivalKind selects which set-once arrival flag a driver is reporting.
type ArrivalKind string

const (
	ArrivalAtHub      ArrivalKind = "hub"
	ArrivalAtCustomer ArrivalKind = "customer"
)

// PushInput is one location sample from the assigned driver's device.
type PushInput struct {
	OrderID   uuid.UUID
	DriverID  uuid.UUID
	Lat       float64
	Lng       float64
	AccuracyM float64
	At        time.Time
}

// PushResult reports what happened to a sample. Samples that lose the
// throttle window are swallowed, not errors.
type PushResult struct {
	Outcome string `json:"outcome"`
}

// LivePosition is the freshest fix for an order's driver, redis-first.
type LivePosition struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	AccuracyM float64   `json:"accuracy_m"`
	At        time.Time `json:"at"`
}

// windowFix is the redis payload for the current throttle window: the best
// fix seen so far, when the window closes, and where the fix gets flushed.
type windowFix struct {
	OrderID      uuid.UUID `json:"order_id"`
	DriverID     uuid.UUID `json:"driver_id"`
	Lat          float64   `json:"lat"`
	Lng          float64   `json:"lng"`
	AccuracyM    float64   `json:"accuracy_m"`
	At           time.Time `json:"at"`
	WindowEndsAt time.Time `json:"window_ends_at"`
}

// Service owns driver availability and live-location propagation.
type Service interface {
	SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) (*models.Driver, error)
	// PushLocation accepts a sample from the assigned driver while the order
	// is out for delivery. At most one database write happens per throttle
	// window and it carries the window's most accurate sample: fixes are
	// buffered in redis while the window is open and the best one is flushed
	// to the order row when a later push finds the window closed. Reads stay
	// fresh throughout because LiveLocation prefers the buffered fix.
	PushLocation(ctx context.Context, input PushInput) (*PushResult, error)
	LiveLocation(ctx context.Context, orderID uuid.UUID) (*LivePosition, error)
	RecordArrival(ctx context.Context, orderID, driverID uuid.UUID, kind ArrivalKind) (*models.Order, error)
	// SweepStaleDrivers flips drivers offline when they have not been seen
	// within the configured liveness window. Returns how many were flipped.
	SweepStaleDrivers(ctx context.Context) (int, error)
}

type service struct {
	repo     Repository
	throttle throttleStore
	cfg      config.DispatchConfig
	metrics  *metrics.OrderMetrics
	now      func() time.Time
}

// NewService wires the dispatch tracker.
func NewService(repo Repository, throttle throttleStore, cfg config.DispatchConfig, orderMetrics *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dispatch repository required")
	}
	if throttle == nil {
		return nil, fmt.Errorf("throttle store required")
	}
	if cfg.PushInterval <= 0 {
		return nil, fmt.Errorf("push interval must be positive")
	}
	if cfg.OfflineAfter <= 0 {
		return nil, fmt.Errorf("offline window must be positive")
	}
	return &service{
		repo:     repo,
		throttle: throttle,
		cfg:      cfg,
		metrics:  orderMetrics,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *service) SetAvailability(ctx context.Context, driverID uuid.UUID, available bool) (*models.Driver, error) {
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	err := s.repo.UpdateDriverFields(ctx, driverID, map[string]any{
		"available":    available,
		"last_seen_at": s.now(),
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "driver not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update driver availability")
	}
	driver, err := s.repo.FindDriver(ctx, driverID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load driver")
	}
	return driver, nil
}

func (s *service) PushLocation(ctx context.Context, input PushInput) (*PushResult, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.DriverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DriverID == nil || *order.DriverID != input.DriverID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another driver")
	}
	if order.Status != enums.OrderStatusOutForDelivery {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "location updates only while out for delivery")
	}

	now := s.now()
	at := input.At
	if at.IsZero() {
		at = now
	}

	// From here on everything is best-effort: a failed sample is dropped and
	// the device retries on its next tick.
	key := s.throttle.ThrottleKey(input.DriverID.String())
	raw, err := s.throttle.Get(ctx, key)
	if err != nil && !errors.Is(err, redis.Nil) {
		return s.pushOutcome(PushOutcomeError), nil
	}

	if errors.Is(err, redis.Nil) {
		s.startWindow(ctx, key, order.ID, input, at, now)
		return s.pushOutcome(PushOutcomeThrottled), nil
	}

	var current windowFix
	if jsonErr := json.Unmarshal([]byte(raw), &current); jsonErr != nil {
		s.startWindow(ctx, key, order.ID, input, at, now)
		return s.pushOutcome(PushOutcomeThrottled), nil
	}
	if !now.Before(current.WindowEndsAt) {
		// Window closed: its best fix becomes the single persisted write for
		// that window, then this sample opens the next one. A failed flush
		// keeps the key so a later push retries it.
		if flushErr := s.flushWindow(ctx, current); flushErr != nil {
			return s.pushOutcome(PushOutcomeError), nil
		}
		s.startWindow(ctx, key, order.ID, input, at, now)
		return s.pushOutcome(PushOutcomeWritten), nil
	}

	if input.AccuracyM < current.AccuracyM {
		best := current
		best.Lat, best.Lng, best.AccuracyM, best.At = input.Lat, input.Lng, input.AccuracyM, at
		if payload, jsonErr := json.Marshal(best); jsonErr == nil {
			remaining := current.WindowEndsAt.Sub(now) + s.cfg.PushInterval
			_ = s.throttle.Set(ctx, key, string(payload), remaining)
		}
	}
	return s.pushOutcome(PushOutcomeThrottled), nil
}

// startWindow opens a throttle window around the sample. Nothing is persisted
// here; the window's best fix is flushed once the window closes.
func (s *service) startWindow(ctx context.Context, key string, orderID uuid.UUID, input PushInput, at, now time.Time) {
	fix := windowFix{
		OrderID:      orderID,
		DriverID:     input.DriverID,
		Lat:          input.Lat,
		Lng:          input.Lng,
		AccuracyM:    input.AccuracyM,
		At:           at,
		WindowEndsAt: now.Add(s.cfg.PushInterval),
	}
	if payload, jsonErr := json.Marshal(fix); jsonErr == nil {
		// The TTL outlives the window so the best fix is still readable when
		// the first push of the next window flushes it.
		_ = s.throttle.Set(ctx, key, string(payload), 2*s.cfg.PushInterval)
	}
}

// flushWindow writes a closed window's best fix to the order and driver rows.
func (s *service) flushWindow(ctx context.Context, fix windowFix) error {
	err := s.repo.UpdateOrderFields(ctx, fix.OrderID, map[string]any{
		"driver_lat":        fix.Lat,
		"driver_lng":        fix.Lng,
		"driver_located_at": fix.At,
	})
	if err != nil {
		return err
	}
	_ = s.repo.UpdateDriverFields(ctx, fix.DriverID, map[string]any{
		"lat":          fix.Lat,
		"lng":          fix.Lng,
		"last_seen_at": fix.At,
	})
	return nil
}

func (s *service) pushOutcome(outcome string) *PushResult {
	s.metrics.IncLocationPush(outcome)
	return &PushResult{Outcome: outcome}
}

func (s *service) LiveLocation(ctx context.Context, orderID uuid.UUID) (*LivePosition, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DriverID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no driver assigned")
	}

	// The window's best fix beats the persisted one when present.
	raw, err := s.throttle.Get(ctx, s.throttle.ThrottleKey(order.DriverID.String()))
	if err == nil {
		var fix windowFix
		if jsonErr := json.Unmarshal([]byte(raw), &fix); jsonErr == nil {
			return &LivePosition{Lat: fix.Lat, Lng: fix.Lng, AccuracyM: fix.AccuracyM, At: fix.At}, nil
		}
	}

	if order.DriverLat == nil || order.DriverLng == nil || order.DriverLocatedAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no location reported yet")
	}
	return &LivePosition{
		Lat: *order.DriverLat,
		Lng: *order.DriverLng,
		At:  *order.DriverLocatedAt,
	}, nil
}

func (s *service) RecordArrival(ctx context.Context, orderID, driverID uuid.UUID, kind ArrivalKind) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if driverID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "driver identity missing")
	}
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DriverID == nil || *order.DriverID != driverID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order is assigned to another driver")
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already "+order.Status.String())
	}

	var column string
	var already bool
	switch kind {
	case ArrivalAtHub:
		column, already = "arrived_at_hub_at", order.ArrivedAtHubAt != nil
	case ArrivalAtCustomer:
		column, already = "driver_arrived_at", order.DriverArrivedAt != nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid arrival kind")
	}
	// Set once; reporting the same arrival again is a harmless no-op.
	if !already {
		err = s.repo.UpdateOrderFields(ctx, orderID, map[string]any{
			column:       s.now(),
			"updated_by": enums.ActorDriver,
		})
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record arrival")
		}
	}
	order, err = s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload order")
	}
	return order, nil
}

func (s *service) SweepStaleDrivers(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.OfflineAfter)
	stale, err := s.repo.ListStaleAvailable(ctx, cutoff)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stale drivers")
	}
	flipped := 0
	for _, driver := range stale {
		err := s.repo.UpdateDriverFields(ctx, driver.ID, map[string]any{"available": false})
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			return flipped, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark driver offline")
		}
		flipped++
	}
	return flipped, nil
}
