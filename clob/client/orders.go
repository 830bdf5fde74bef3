package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/polyclob/clob/types"
)

// CreateOrder validates and signs a limit order. The steps run in a fixed
// order: resolve tick size, validate the price, resolve the neg-risk flag,
// resolve the fee rate, then sign. Validation failures stop construction
// before any submission can happen.
func (c *Client) CreateOrder(ctx context.Context, order *types.UserOrder, opts *types.CreateOrderOptions) (*types.SignedOrder, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	var requestedTick types.TickSize
	var negRisk *bool
	if opts != nil {
		requestedTick = opts.TickSize
		negRisk = opts.NegRisk
	}

	tick, err := c.resolveTickSize(ctx, order.TokenID, requestedTick)
	if err != nil {
		return nil, err
	}

	if !priceValid(order.Price, tick) {
		min, max := priceBand(tick)
		return nil, &types.InvalidPriceError{Price: order.Price, Min: min, Max: max}
	}

	if negRisk == nil {
		nr, err := c.GetNegRisk(ctx, order.TokenID)
		if err != nil {
			return nil, err
		}
		negRisk = &nr
	}

	requestedFee := 0
	if order.FeeRateBps != nil {
		requestedFee = *order.FeeRateBps
	}
	fee, err := c.resolveFeeRate(ctx, order.TokenID, requestedFee)
	if err != nil {
		return nil, err
	}
	order.FeeRateBps = &fee

	return c.builder().buildOrder(order, &types.CreateOrderOptions{TickSize: tick, NegRisk: negRisk})
}

// CreateMarketOrder validates and signs a marketable order. When no positive
// price is supplied one is derived from live book depth; a partially priced
// order is never produced.
func (c *Client) CreateMarketOrder(ctx context.Context, order *types.UserMarketOrder, opts *types.CreateOrderOptions) (*types.SignedOrder, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	var requestedTick types.TickSize
	var negRisk *bool
	if opts != nil {
		requestedTick = opts.TickSize
		negRisk = opts.NegRisk
	}

	tick, err := c.resolveTickSize(ctx, order.TokenID, requestedTick)
	if err != nil {
		return nil, err
	}

	orderType := types.OrderTypeFOK
	if order.OrderType != nil {
		orderType = *order.OrderType
	}

	price := 0.0
	if order.Price != nil {
		price = *order.Price
	}
	if price <= 0 {
		price, err = c.CalculateMarketPrice(ctx, order.TokenID, order.Side, order.Amount, orderType)
		if err != nil {
			return nil, err
		}
	}

	if !priceValid(price, tick) {
		min, max := priceBand(tick)
		return nil, &types.InvalidPriceError{Price: price, Min: min, Max: max}
	}

	if negRisk == nil {
		nr, err := c.GetNegRisk(ctx, order.TokenID)
		if err != nil {
			return nil, err
		}
		negRisk = &nr
	}

	requestedFee := 0
	if order.FeeRateBps != nil {
		requestedFee = *order.FeeRateBps
	}
	fee, err := c.resolveFeeRate(ctx, order.TokenID, requestedFee)
	if err != nil {
		return nil, err
	}
	order.FeeRateBps = &fee

	return c.builder().buildMarketOrder(order, price, &types.CreateOrderOptions{TickSize: tick, NegRisk: negRisk})
}

// PostOrder submits one signed order. Transport and HTTP-level failures are
// reported as a nil result with a logged diagnostic rather than an error, so
// callers scripting many submissions check results instead of handling faults
// per call. The returned error covers only precondition failures.
func (c *Client) PostOrder(ctx context.Context, order *types.SignedOrder, orderType types.OrderType) (*types.OrderResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, "clob:order:post"); err != nil {
		return nil, err
	}

	body := types.NewOrder{
		Order:     *order,
		Owner:     c.authConfig.Creds.Key,
		OrderType: orderType,
	}
	raw, bodyStr, err := marshalBody(body)
	if err != nil {
		return nil, err
	}

	headers, err := c.buildAuthHeaders(http.MethodPost, EndpointPostOrder, &bodyStr)
	if err != nil {
		return nil, err
	}

	var resp types.OrderResponse
	if err := c.http.post(ctx, EndpointPostOrder, headers, raw, &resp); err != nil {
		c.log.WithFields(logrus.Fields{
			"token_id":   order.TokenID,
			"side":       order.Side,
			"order_type": orderType,
		}).WithError(err).Warn("order submission failed")
		return nil, nil
	}
	if !resp.Success {
		c.log.WithField("token_id", order.TokenID).Warnf("order rejected: %s", resp.ErrorMsg)
	}
	return &resp, nil
}

// PostOrders submits a batch in a single request. A transport-level failure
// returns no per-order information at all (nil slice plus a logged warning);
// a successful call yields results index-aligned with the submitted batch,
// and entries carrying an error message are logged individually without
// aborting the rest.
func (c *Client) PostOrders(ctx context.Context, args []types.PostOrdersArgs) ([]types.OrderResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}
	if err := c.limiter.Wait(ctx, "clob:orders:post"); err != nil {
		return nil, err
	}

	batch := make([]types.NewOrder, 0, len(args))
	for _, a := range args {
		batch = append(batch, types.NewOrder{
			Order:     a.Order,
			Owner:     c.authConfig.Creds.Key,
			OrderType: a.OrderType,
		})
	}
	raw, bodyStr, err := marshalBody(batch)
	if err != nil {
		return nil, err
	}

	headers, err := c.buildAuthHeaders(http.MethodPost, EndpointPostOrders, &bodyStr)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{"batch_id": batchID, "orders": len(args)})

	var resp []types.OrderResponse
	if err := c.http.post(ctx, EndpointPostOrders, headers, raw, &resp); err != nil {
		log.WithError(err).Warn("batch submission failed, no per-order outcomes")
		return nil, nil
	}

	for i, r := range resp {
		if r.ErrorMsg != "" {
			log.WithField("index", i).Warnf("batch order rejected: %s", r.ErrorMsg)
		}
	}
	return resp, nil
}

// CreateAndPostOrder composes CreateOrder and PostOrder.
func (c *Client) CreateAndPostOrder(ctx context.Context, order *types.UserOrder, opts *types.CreateOrderOptions, orderType types.OrderType) (*types.OrderResponse, error) {
	signed, err := c.CreateOrder(ctx, order, opts)
	if err != nil {
		return nil, err
	}
	return c.PostOrder(ctx, signed, orderType)
}

// CreateAndPostMarketOrder composes CreateMarketOrder and PostOrder.
func (c *Client) CreateAndPostMarketOrder(ctx context.Context, order *types.UserMarketOrder, opts *types.CreateOrderOptions) (*types.OrderResponse, error) {
	signed, err := c.CreateMarketOrder(ctx, order, opts)
	if err != nil {
		return nil, err
	}
	orderType := types.OrderTypeFOK
	if order.OrderType != nil {
		orderType = *order.OrderType
	}
	return c.PostOrder(ctx, signed, orderType)
}

// CancelOrder cancels one order by id.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if err := c.CanL2Auth(); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx, "clob:order:delete"); err != nil {
		return err
	}

	raw, bodyStr, err := marshalBody(map[string]string{"orderID": orderID})
	if err != nil {
		return err
	}
	headers, err := c.buildAuthHeaders(http.MethodDelete, EndpointCancelOrder, &bodyStr)
	if err != nil {
		return err
	}
	return c.http.del(ctx, EndpointCancelOrder, headers, raw, nil)
}

// CancelOrders cancels a set of orders by id.
func (c *Client) CancelOrders(ctx context.Context, orderIDs []string) error {
	if err := c.CanL2Auth(); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx, "clob:orders:delete"); err != nil {
		return err
	}

	raw, bodyStr, err := marshalBody(orderIDs)
	if err != nil {
		return err
	}
	headers, err := c.buildAuthHeaders(http.MethodDelete, EndpointCancelOrders, &bodyStr)
	if err != nil {
		return err
	}
	return c.http.del(ctx, EndpointCancelOrders, headers, raw, nil)
}

// CancelAll cancels every resting order of the authenticated user.
func (c *Client) CancelAll(ctx context.Context) error {
	if err := c.CanL2Auth(); err != nil {
		return err
	}
	headers, err := c.buildAuthHeaders(http.MethodDelete, EndpointCancelAll, nil)
	if err != nil {
		return err
	}
	return c.http.del(ctx, EndpointCancelAll, headers, nil, nil)
}

// CancelMarketOrders cancels resting orders in one market or asset.
func (c *Client) CancelMarketOrders(ctx context.Context, params *types.OrderMarketCancelParams) error {
	if err := c.CanL2Auth(); err != nil {
		return err
	}

	body := map[string]string{}
	if params != nil {
		if params.Market != nil {
			body["market"] = *params.Market
		}
		if params.AssetID != nil {
			body["asset_id"] = *params.AssetID
		}
	}
	raw, bodyStr, err := marshalBody(body)
	if err != nil {
		return err
	}
	headers, err := c.buildAuthHeaders(http.MethodDelete, EndpointCancelMarketOrders, &bodyStr)
	if err != nil {
		return err
	}
	return c.http.del(ctx, EndpointCancelMarketOrders, headers, raw, nil)
}

// GetOpenOrders returns one cursor page of resting orders.
func (c *Client) GetOpenOrders(ctx context.Context, params *types.OpenOrderParams, cursor string) (*types.OpenOrdersPage, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, "clob:orders:get"); err != nil {
		return nil, err
	}

	headers, err := c.buildAuthHeaders(http.MethodGet, EndpointGetOpenOrders, nil)
	if err != nil {
		return nil, err
	}

	query := map[string]string{"next_cursor": orDefaultCursor(cursor)}
	if params != nil {
		if params.ID != nil {
			query["id"] = *params.ID
		}
		if params.Market != nil {
			query["market"] = *params.Market
		}
		if params.AssetID != nil {
			query["asset_id"] = *params.AssetID
		}
	}

	var page types.OpenOrdersPage
	if err := c.http.get(ctx, EndpointGetOpenOrders, headers, query, &page); err != nil {
		return nil, errors.Wrap(err, "fetch open orders")
	}
	return &page, nil
}

// GetAllOpenOrders drains every page of resting orders.
func (c *Client) GetAllOpenOrders(ctx context.Context, params *types.OpenOrderParams) ([]types.OpenOrder, error) {
	return fetchAllPages(ctx, func(ctx context.Context, cursor string) ([]types.OpenOrder, string, error) {
		page, err := c.GetOpenOrders(ctx, params, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Data, page.NextCursor, nil
	})
}

// IsOrderScoring reports whether one order currently scores for rewards.
func (c *Client) IsOrderScoring(ctx context.Context, orderID string) (bool, error) {
	if err := c.CanL2Auth(); err != nil {
		return false, err
	}
	headers, err := c.buildAuthHeaders(http.MethodGet, EndpointIsOrderScoring, nil)
	if err != nil {
		return false, err
	}

	var out types.OrderScoring
	err = c.http.get(ctx, EndpointIsOrderScoring, headers, map[string]string{"order_id": orderID}, &out)
	if err != nil {
		return false, errors.Wrap(err, "fetch order scoring")
	}
	return out.Scoring, nil
}

// AreOrdersScoring reports the scoring flag for a set of orders.
func (c *Client) AreOrdersScoring(ctx context.Context, orderIDs []string) (types.OrdersScoring, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}

	raw, bodyStr, err := marshalBody(map[string][]string{"orderIds": orderIDs})
	if err != nil {
		return nil, err
	}
	headers, err := c.buildAuthHeaders(http.MethodPost, EndpointAreOrdersScoring, &bodyStr)
	if err != nil {
		return nil, err
	}

	var out types.OrdersScoring
	if err := c.http.post(ctx, EndpointAreOrdersScoring, headers, raw, &out); err != nil {
		return nil, errors.Wrap(err, "fetch orders scoring")
	}
	return out, nil
}

// priceBand returns the inclusive [tick, 1-tick] price range.
func priceBand(tick types.TickSize) (min, max float64) {
	t, err := strconv.ParseFloat(string(tick), 64)
	if err != nil {
		return 0, 1
	}
	return t, 1 - t
}
