package client

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/types"
)

// CalculateMarketPrice derives the execution price for a marketable order of
// the given size by walking live book depth: the result is the price of the
// last level needed to fill the amount, i.e. the worst price that still
// guarantees a full fill. The order type only changes how the caller applies
// slippage checks afterwards, not this computation.
func (c *Client) CalculateMarketPrice(ctx context.Context, tokenID string, side types.Side, amount float64, _ types.OrderType) (float64, error) {
	book, err := c.GetOrderBook(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	if book == nil {
		return 0, types.ErrMissingOrderbook
	}

	var levels []types.OrderSummary
	if side == types.SideBuy {
		levels = sortedLevels(book.Asks, true)
	} else {
		levels = sortedLevels(book.Bids, false)
	}
	return priceForAmount(levels, amount)
}

// priceForAmount walks levels in taker-favourable order, accumulating share
// size until the requested amount is covered.
func priceForAmount(levels []types.OrderSummary, amount float64) (float64, error) {
	var cumulative float64
	for _, level := range levels {
		size, err := strconv.ParseFloat(level.Size, 64)
		if err != nil {
			continue
		}
		cumulative += size
		if cumulative >= amount {
			price, err := strconv.ParseFloat(level.Price, 64)
			if err != nil {
				return 0, errors.Wrapf(err, "malformed price %q at filling level", level.Price)
			}
			return price, nil
		}
	}
	return 0, &types.InsufficientLiquidityError{Requested: amount, Available: cumulative}
}

// sortedLevels orders a book side for walking: asks ascending, bids
// descending. The server does not guarantee an ordering.
func sortedLevels(levels []types.OrderSummary, ascending bool) []types.OrderSummary {
	out := make([]types.OrderSummary, len(levels))
	copy(out, levels)
	sort.SliceStable(out, func(i, j int) bool {
		pi, _ := strconv.ParseFloat(out[i].Price, 64)
		pj, _ := strconv.ParseFloat(out[j].Price, 64)
		if ascending {
			return pi < pj
		}
		return pi > pj
	})
	return out
}
