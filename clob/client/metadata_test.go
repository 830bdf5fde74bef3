package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/polyclob/clob/types"
)

func TestPriceValid(t *testing.T) {
	tests := []struct {
		price float64
		tick  types.TickSize
		want  bool
	}{
		// inside the band, on the grid
		{0.01, "0.01", true},
		{0.50, "0.01", true},
		{0.57, "0.01", true},
		{0.99, "0.01", true},
		{0.1, "0.1", true},
		{0.9, "0.1", true},
		{0.0001, "0.0001", true},
		{0.9999, "0.0001", true},

		// outside the band
		{0.005, "0.01", false},
		{0.995, "0.01", false},
		{0.0, "0.01", false},
		{1.0, "0.01", false},
		{0.05, "0.1", false},
		{0.95, "0.1", false},

		// off the grid
		{0.572, "0.01", false},
		{0.15, "0.1", false},
		{0.123456, "0.0001", false},
	}

	for _, tt := range tests {
		got := priceValid(tt.price, tt.tick)
		assert.Equalf(t, tt.want, got, "priceValid(%v, %s)", tt.price, tt.tick)
	}
}

func TestIsTickSizeSmaller(t *testing.T) {
	assert.True(t, isTickSizeSmaller("0.001", "0.01"))
	assert.False(t, isTickSizeSmaller("0.01", "0.001"))
	assert.False(t, isTickSizeSmaller("0.01", "0.01"))
}

func TestPriceBand(t *testing.T) {
	min, max := priceBand("0.01")
	assert.Equal(t, 0.01, min)
	assert.Equal(t, 0.99, max)

	min, max = priceBand("0.1")
	assert.Equal(t, 0.1, min)
	assert.InDelta(t, 0.9, max, 1e-12)
}

func TestGetTickSizeCachedForClientLifetime(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, EndpointGetTickSize, r.URL.Path)
		require.Equal(t, "token-1", r.URL.Query().Get("token_id"))
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(tickSizeResponse{MinimumTickSize: 0.01})
	}))
	defer server.Close()

	c := NewClient(server.URL, types.ChainPolygon, nil, nil)
	ctx := context.Background()

	tick, err := c.GetTickSize(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, types.TickSize001, tick)

	tick, err = c.GetTickSize(ctx, "token-1")
	require.NoError(t, err)
	assert.Equal(t, types.TickSize001, tick)

	assert.Equal(t, int32(1), hits.Load(), "second lookup must hit the cache")
}

func TestGetNegRiskCached(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode(negRiskResponse{NegRisk: true})
	}))
	defer server.Close()

	c := NewClient(server.URL, types.ChainPolygon, nil, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		nr, err := c.GetNegRisk(ctx, "token-1")
		require.NoError(t, err)
		assert.True(t, nr)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestResolveTickSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tickSizeResponse{MinimumTickSize: 0.01})
	}))
	defer server.Close()

	c := NewClient(server.URL, types.ChainPolygon, nil, nil)
	ctx := context.Background()

	t.Run("defaults to the market minimum", func(t *testing.T) {
		tick, err := c.resolveTickSize(ctx, "token-1", "")
		require.NoError(t, err)
		assert.Equal(t, types.TickSize001, tick)
	})

	t.Run("coarser override is accepted", func(t *testing.T) {
		tick, err := c.resolveTickSize(ctx, "token-1", "0.1")
		require.NoError(t, err)
		assert.Equal(t, types.TickSize01, tick)
	})

	t.Run("finer override is rejected", func(t *testing.T) {
		_, err := c.resolveTickSize(ctx, "token-1", "0.001")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrInvalidTickSize)
	})
}

func TestResolveFeeRate(t *testing.T) {
	tests := []struct {
		name      string
		market    float64
		requested int
		want      int
		wantErr   bool
	}{
		{name: "caller omits, market applies", market: 50, requested: 0, want: 50},
		{name: "caller matches market", market: 50, requested: 50, want: 50},
		{name: "caller conflicts with market", market: 50, requested: 30, wantErr: true},
		{name: "free market ignores caller rate", market: 0, requested: 30, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(feeRateResponse{BaseFee: tt.market})
			}))
			defer server.Close()

			c := NewClient(server.URL, types.ChainPolygon, nil, nil)
			fee, err := c.resolveFeeRate(context.Background(), "token-1", tt.requested)
			if tt.wantErr {
				require.Error(t, err)
				var feeErr *types.InvalidFeeRateError
				assert.ErrorAs(t, err, &feeErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, fee)
		})
	}
}

func TestGetTickSizeRejectsUnknownValue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(tickSizeResponse{MinimumTickSize: 0.02})
	}))
	defer server.Close()

	c := NewClient(server.URL, types.ChainPolygon, nil, nil)
	_, err := c.GetTickSize(context.Background(), "token-1")
	assert.Error(t, err)
}
