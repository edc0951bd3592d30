package deliveryfee

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmagbanua/kaon-backend/pkg/config"
	"github.com/rmagbanua/kaon-backend/pkg/types"
)

func TestParseTierTable(t *testing.T) {
	table, err := ParseTierTable("2:49,5:69,8:99", 129)
	require.NoError(t, err)

	cases := []struct {
		km  float64
		fee int
	}{
		{0, 49},
		{2, 49},
		{2.1, 69},
		{5, 69},
		{7.9, 99},
		{8.01, 129},
		{40, 129},
	}
	for _, tc := range cases {
		fee, err := table.FeeFor(tc.km)
		require.NoError(t, err)
		assert.Equal(t, tc.fee, fee, "distance %.2f", tc.km)
	}

	_, err = table.FeeFor(-1)
	assert.Error(t, err)
}

func TestParseTierTableRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		raw    string
		beyond int
	}{
		{"empty", "", 100},
		{"missing fee", "2:49,5", 100},
		{"negative fee", "2:-5", 100},
		{"zero distance", "0:49", 100},
		{"decreasing fee", "2:99,5:49", 100},
		{"duplicate distance", "2:49,2:69", 100},
		{"beyond undercuts", "2:49,5:99", 70},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseTierTable(tc.raw, tc.beyond)
			assert.Error(t, err)
		})
	}
}

func TestParseTierTableSortsUnorderedInput(t *testing.T) {
	table, err := ParseTierTable("8:99,2:49,5:69", 129)
	require.NoError(t, err)

	fee, err := table.FeeFor(3)
	require.NoError(t, err)
	assert.Equal(t, 69, fee)
}

type stubEstimator struct {
	km  float64
	err error
}

func (s *stubEstimator) Distance(ctx context.Context, from, to types.LatLng) (float64, error) {
	return s.km, s.err
}

func deliveryCfg() config.DeliveryConfig {
	return config.DeliveryConfig{
		HubLat:        10.3157,
		HubLng:        123.8854,
		Tiers:         "2:49,5:69,8:99",
		BeyondTierFee: 129,
	}
}

func TestQuoteTripUsesRoadDistance(t *testing.T) {
	calc, err := NewCalculator(deliveryCfg(), &stubEstimator{km: 4.2})
	require.NoError(t, err)

	restaurant := &types.LatLng{Lat: 10.31, Lng: 123.89}
	dropoff := &types.LatLng{Lat: 10.33, Lng: 123.91}

	quote, err := calc.QuoteTrip(context.Background(), restaurant, dropoff)
	require.NoError(t, err)
	assert.Equal(t, 69, quote.Fee)
	assert.InDelta(t, 4.2, quote.DistanceKm, 0.001)
	assert.False(t, quote.HubFallback)
}

func TestQuoteTripFallsBackToHubOnRoutingFailure(t *testing.T) {
	calc, err := NewCalculator(deliveryCfg(), &stubEstimator{err: errors.New("routing down")})
	require.NoError(t, err)

	restaurant := &types.LatLng{Lat: 10.31, Lng: 123.89}
	// ~2km north of the hub.
	dropoff := &types.LatLng{Lat: 10.3337, Lng: 123.8854}

	quote, err := calc.QuoteTrip(context.Background(), restaurant, dropoff)
	require.NoError(t, err)
	assert.True(t, quote.HubFallback)
	assert.InDelta(t, 2.0, quote.DistanceKm, 0.1)
	assert.Equal(t, 69, quote.Fee)
}

func TestQuoteTripWithoutCoordinatesUsesFirstTier(t *testing.T) {
	calc, err := NewCalculator(deliveryCfg(), nil)
	require.NoError(t, err)

	quote, err := calc.QuoteTrip(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.True(t, quote.HubFallback)
	assert.Equal(t, 49, quote.Fee)
	assert.Zero(t, quote.DistanceKm)
}

func TestNewCalculatorValidatesConfig(t *testing.T) {
	cfg := deliveryCfg()
	cfg.Tiers = "not-a-table"
	_, err := NewCalculator(cfg, nil)
	assert.Error(t, err)

	cfg = deliveryCfg()
	cfg.HubLat = 0
	cfg.HubLng = 0
	_, err = NewCalculator(cfg, nil)
	assert.Error(t, err)
}
