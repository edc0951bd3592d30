package deliveryfee

import (
	"context"
	"fmt"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/types"
)

// DistanceEstimator returns road distance between two points in kilometers.
type DistanceEstimator interface {
	Distance(ctx context.Context, from, to types.LatLng) (float64, error)
}

// Quote is the fee decision for one order.
type Quote struct {
	Fee        int
	DistanceKm float64
	// HubFallback is set when routing failed or coordinates were missing and
	// the fee came from straight-line hub distance instead.
	HubFallback bool
}

// Calculator maps a trip to a delivery fee through the tier table. Routing
// failures degrade to hub distance; order placement never blocks on the
// routing service.
type Calculator struct {
	tiers     *TierTable
	hub       types.LatLng
	estimator DistanceEstimator
}

// NewCalculator validates the configured tier table and hub origin. The
// estimator may be nil, which forces hub fallback for every quote.
func NewCalculator(cfg config.DeliveryConfig, estimator DistanceEstimator) (*Calculator, error) {
	tiers, err := ParseTierTable(cfg.Tiers, cfg.BeyondTierFee)
	if err != nil {
		return nil, fmt.Errorf("delivery fee tiers: %w", err)
	}
	hub := types.LatLng{Lat: cfg.HubLat, Lng: cfg.HubLng}
	if hub.IsZero() {
		return nil, fmt.Errorf("hub coordinates are required")
	}
	return &Calculator{tiers: tiers, hub: hub, estimator: estimator}, nil
}

// QuoteTrip prices the restaurant-to-drop-off leg. Both coordinates known
// and routing healthy: road distance. Otherwise: straight-line distance from
// the hub to whichever drop-off point is known, or the first tier when the
// order has no pin at all.
func (c *Calculator) QuoteTrip(ctx context.Context, restaurant, dropoff *types.LatLng) (Quote, error) {
	if c.estimator != nil && restaurant != nil && !restaurant.IsZero() && dropoff != nil && !dropoff.IsZero() {
		km, err := c.estimator.Distance(ctx, *restaurant, *dropoff)
		if err == nil {
			fee, ferr := c.tiers.FeeFor(km)
			if ferr != nil {
				return Quote{}, ferr
			}
			return Quote{Fee: fee, DistanceKm: km}, nil
		}
		// fall through to hub distance
	}

	km := 0.0
	if dropoff != nil && !dropoff.IsZero() {
		km = types.HaversineKm(c.hub, *dropoff)
	}
	fee, err := c.tiers.FeeFor(km)
	if err != nil {
		return Quote{}, err
	}
	return Quote{Fee: fee, DistanceKm: km, HubFallback: true}, nil
}
