package client

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/polyclob/clob/types"
)

type tickSizeResponse struct {
	MinimumTickSize float64 `json:"minimum_tick_size"`
}

type negRiskResponse struct {
	NegRisk bool `json:"neg_risk"`
}

type feeRateResponse struct {
	BaseFee float64 `json:"base_fee"`
}

// GetTickSize returns the market minimum tick size for a token, fetching it
// once and serving every later call from the instance cache.
func (c *Client) GetTickSize(ctx context.Context, tokenID string) (types.TickSize, error) {
	if tick, ok := c.tickSizes.Get(tokenID); ok {
		return tick, nil
	}

	var resp tickSizeResponse
	err := c.http.get(ctx, EndpointGetTickSize, nil, map[string]string{"token_id": tokenID}, &resp)
	if err != nil {
		return "", errors.Wrap(err, "fetch tick size")
	}

	tick := types.TickSize(strconv.FormatFloat(resp.MinimumTickSize, 'f', -1, 64))
	if !tick.Valid() {
		return "", errors.Errorf("unexpected tick size %q for token %s", tick, tokenID)
	}
	c.tickSizes.Set(tokenID, tick)
	return tick, nil
}

// GetNegRisk returns the negative-risk flag for a token, cached per instance.
func (c *Client) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	if nr, ok := c.negRisk.Get(tokenID); ok {
		return nr, nil
	}

	var resp negRiskResponse
	err := c.http.get(ctx, EndpointGetNegRisk, nil, map[string]string{"token_id": tokenID}, &resp)
	if err != nil {
		return false, errors.Wrap(err, "fetch neg risk")
	}

	c.negRisk.Set(tokenID, resp.NegRisk)
	return resp.NegRisk, nil
}

// GetFeeRateBps returns the market base fee in bps for a token, cached per
// instance.
func (c *Client) GetFeeRateBps(ctx context.Context, tokenID string) (int, error) {
	if fee, ok := c.feeRates.Get(tokenID); ok {
		return fee, nil
	}

	var resp feeRateResponse
	err := c.http.get(ctx, EndpointGetFeeRate, nil, map[string]string{"token_id": tokenID}, &resp)
	if err != nil {
		return 0, errors.Wrap(err, "fetch fee rate")
	}

	fee := int(resp.BaseFee)
	c.feeRates.Set(tokenID, fee)
	return fee, nil
}

// resolveTickSize validates a caller-requested tick size against the market
// minimum and defaults to the minimum when none is requested.
func (c *Client) resolveTickSize(ctx context.Context, tokenID string, requested types.TickSize) (types.TickSize, error) {
	minimum, err := c.GetTickSize(ctx, tokenID)
	if err != nil {
		return "", err
	}
	if requested == "" {
		return minimum, nil
	}
	if isTickSizeSmaller(requested, minimum) {
		return "", errors.Wrapf(types.ErrInvalidTickSize, "%s is finer than the market minimum %s", requested, minimum)
	}
	return requested, nil
}

// resolveFeeRate rejects a nonzero caller rate that conflicts with a nonzero
// market rate and returns the market rate otherwise.
func (c *Client) resolveFeeRate(ctx context.Context, tokenID string, requested int) (int, error) {
	market, err := c.GetFeeRateBps(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	if market > 0 && requested > 0 && requested != market {
		return 0, &types.InvalidFeeRateError{Requested: requested, Market: market}
	}
	return market, nil
}

// isTickSizeSmaller reports whether a is a finer increment than b.
func isTickSizeSmaller(a, b types.TickSize) bool {
	da, erra := decimal.NewFromString(string(a))
	db, errb := decimal.NewFromString(string(b))
	if erra != nil || errb != nil {
		return false
	}
	return da.LessThan(db)
}

// priceValid reports whether price is an exact tick multiple inside the
// [tick, 1-tick] band.
func priceValid(price float64, tick types.TickSize) bool {
	t, err := decimal.NewFromString(string(tick))
	if err != nil || t.Sign() <= 0 {
		return false
	}
	p := decimal.NewFromFloat(price)
	if p.LessThan(t) || p.GreaterThan(decimal.NewFromInt(1).Sub(t)) {
		return false
	}
	return p.Mod(t).IsZero()
}
