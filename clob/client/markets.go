package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/types"
)

// GetServerTime returns the exchange's unix timestamp. Useful for checking
// local clock skew before signing authenticated requests.
func (c *Client) GetServerTime(ctx context.Context) (int64, error) {
	var ts int64
	if err := c.http.get(ctx, EndpointTime, nil, nil, &ts); err != nil {
		return 0, errors.Wrap(err, "fetch server time")
	}
	return ts, nil
}

// GetOrderBook returns the live book snapshot for one token.
func (c *Client) GetOrderBook(ctx context.Context, tokenID string) (*types.OrderBookSummary, error) {
	if err := c.limiter.Wait(ctx, "clob:book:get"); err != nil {
		return nil, err
	}

	var book types.OrderBookSummary
	err := c.http.get(ctx, EndpointGetOrderBook, nil, map[string]string{"token_id": tokenID}, &book)
	if err != nil {
		return nil, errors.Wrap(err, "fetch order book")
	}
	return &book, nil
}

// GetOrderBooks returns book snapshots for a set of tokens in one call.
func (c *Client) GetOrderBooks(ctx context.Context, params []types.BookParams) ([]types.OrderBookSummary, error) {
	if err := c.limiter.Wait(ctx, "clob:book:get"); err != nil {
		return nil, err
	}

	raw, _, err := marshalBody(params)
	if err != nil {
		return nil, err
	}
	var books []types.OrderBookSummary
	if err := c.http.post(ctx, EndpointGetOrderBooks, nil, raw, &books); err != nil {
		return nil, errors.Wrap(err, "fetch order books")
	}
	return books, nil
}

// GetMidpoint returns the bid/ask midpoint for one token.
func (c *Client) GetMidpoint(ctx context.Context, tokenID string) (*types.MidpointResponse, error) {
	var out types.MidpointResponse
	err := c.http.get(ctx, EndpointGetMidpoint, nil, map[string]string{"token_id": tokenID}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "fetch midpoint")
	}
	return &out, nil
}

// GetMidpoints returns midpoints for a set of tokens, keyed by token id.
func (c *Client) GetMidpoints(ctx context.Context, params []types.BookParams) (map[string]string, error) {
	raw, _, err := marshalBody(params)
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := c.http.post(ctx, EndpointGetMidpoints, nil, raw, &out); err != nil {
		return nil, errors.Wrap(err, "fetch midpoints")
	}
	return out, nil
}

// GetPrice returns the best resting price on one side of a book.
func (c *Client) GetPrice(ctx context.Context, tokenID string, side types.Side) (*types.PriceResponse, error) {
	if err := c.limiter.Wait(ctx, "clob:price:get"); err != nil {
		return nil, err
	}

	query := map[string]string{"token_id": tokenID, "side": string(side)}
	var out types.PriceResponse
	if err := c.http.get(ctx, EndpointGetPrice, nil, query, &out); err != nil {
		return nil, errors.Wrap(err, "fetch price")
	}
	return &out, nil
}

// GetPrices returns best prices for a set of token/side pairs, keyed by
// token id then side.
func (c *Client) GetPrices(ctx context.Context, params []types.BookParams) (map[string]map[string]string, error) {
	if err := c.limiter.Wait(ctx, "clob:price:get"); err != nil {
		return nil, err
	}

	raw, _, err := marshalBody(params)
	if err != nil {
		return nil, err
	}
	var out map[string]map[string]string
	if err := c.http.post(ctx, EndpointGetPrices, nil, raw, &out); err != nil {
		return nil, errors.Wrap(err, "fetch prices")
	}
	return out, nil
}

// GetSpread returns the bid/ask spread for one token.
func (c *Client) GetSpread(ctx context.Context, tokenID string) (*types.SpreadResponse, error) {
	var out types.SpreadResponse
	err := c.http.get(ctx, EndpointGetSpread, nil, map[string]string{"token_id": tokenID}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "fetch spread")
	}
	return &out, nil
}

// GetSpreads returns spreads for a set of tokens, keyed by token id.
func (c *Client) GetSpreads(ctx context.Context, params []types.BookParams) (map[string]string, error) {
	raw, _, err := marshalBody(params)
	if err != nil {
		return nil, err
	}
	var out map[string]string
	if err := c.http.post(ctx, EndpointGetSpreads, nil, raw, &out); err != nil {
		return nil, errors.Wrap(err, "fetch spreads")
	}
	return out, nil
}

// GetLastTradePrice returns the most recent fill price for one token.
func (c *Client) GetLastTradePrice(ctx context.Context, tokenID string) (*types.LastTradePrice, error) {
	var out types.LastTradePrice
	err := c.http.get(ctx, EndpointGetLastTradePrice, nil, map[string]string{"token_id": tokenID}, &out)
	if err != nil {
		return nil, errors.Wrap(err, "fetch last trade price")
	}
	return &out, nil
}

// GetLastTradePrices returns recent fill prices for a set of tokens.
func (c *Client) GetLastTradePrices(ctx context.Context, params []types.BookParams) ([]types.LastTradePrice, error) {
	raw, _, err := marshalBody(params)
	if err != nil {
		return nil, err
	}
	var out []types.LastTradePrice
	if err := c.http.post(ctx, EndpointGetLastTradePrices, nil, raw, &out); err != nil {
		return nil, errors.Wrap(err, "fetch last trade prices")
	}
	return out, nil
}

// GetMarket returns one market record by condition id.
func (c *Client) GetMarket(ctx context.Context, conditionID string) (map[string]any, error) {
	var out map[string]any
	if err := c.http.get(ctx, EndpointGetMarket+conditionID, nil, nil, &out); err != nil {
		return nil, errors.Wrap(err, "fetch market")
	}
	return out, nil
}

// GetMarkets returns one cursor page of market records.
func (c *Client) GetMarkets(ctx context.Context, cursor string) (*types.MarketsPage, error) {
	return c.marketsPage(ctx, EndpointGetMarkets, cursor)
}

// GetSimplifiedMarkets returns one cursor page of reduced market records.
func (c *Client) GetSimplifiedMarkets(ctx context.Context, cursor string) (*types.MarketsPage, error) {
	return c.marketsPage(ctx, EndpointGetSimplifiedMarkets, cursor)
}

// GetSamplingMarkets returns one cursor page of reward-eligible markets.
func (c *Client) GetSamplingMarkets(ctx context.Context, cursor string) (*types.MarketsPage, error) {
	return c.marketsPage(ctx, EndpointGetSamplingMarkets, cursor)
}

func (c *Client) marketsPage(ctx context.Context, endpoint, cursor string) (*types.MarketsPage, error) {
	if err := c.limiter.Wait(ctx, "clob:markets:get"); err != nil {
		return nil, err
	}

	var page types.MarketsPage
	query := map[string]string{"next_cursor": orDefaultCursor(cursor)}
	if err := c.http.get(ctx, endpoint, nil, query, &page); err != nil {
		return nil, errors.Wrapf(err, "fetch markets page %s", endpoint)
	}
	return &page, nil
}

// GetAllMarkets drains every page of market records.
func (c *Client) GetAllMarkets(ctx context.Context) ([]map[string]any, error) {
	return fetchAllPages(ctx, func(ctx context.Context, cursor string) ([]map[string]any, string, error) {
		page, err := c.GetMarkets(ctx, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Data, page.NextCursor, nil
	})
}

// GetAllSimplifiedMarkets drains every page of reduced market records.
func (c *Client) GetAllSimplifiedMarkets(ctx context.Context) ([]map[string]any, error) {
	return fetchAllPages(ctx, func(ctx context.Context, cursor string) ([]map[string]any, string, error) {
		page, err := c.GetSimplifiedMarkets(ctx, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Data, page.NextCursor, nil
	})
}

// GetTrades returns one cursor page of the user's fills.
func (c *Client) GetTrades(ctx context.Context, params *types.TradeParams, cursor string) (*types.TradesPage, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, "clob:trades:get"); err != nil {
		return nil, err
	}

	headers, err := c.buildAuthHeaders(http.MethodGet, EndpointGetTrades, nil)
	if err != nil {
		return nil, err
	}

	query := map[string]string{"next_cursor": orDefaultCursor(cursor)}
	if params != nil {
		if params.ID != nil {
			query["id"] = *params.ID
		}
		if params.MakerAddress != nil {
			query["maker_address"] = *params.MakerAddress
		}
		if params.Market != nil {
			query["market"] = *params.Market
		}
		if params.AssetID != nil {
			query["asset_id"] = *params.AssetID
		}
		if params.Before != nil {
			query["before"] = *params.Before
		}
		if params.After != nil {
			query["after"] = *params.After
		}
	}

	var page types.TradesPage
	if err := c.http.get(ctx, EndpointGetTrades, headers, query, &page); err != nil {
		return nil, errors.Wrap(err, "fetch trades")
	}
	return &page, nil
}

// GetAllTrades drains every page of the user's fills.
func (c *Client) GetAllTrades(ctx context.Context, params *types.TradeParams) ([]types.Trade, error) {
	return fetchAllPages(ctx, func(ctx context.Context, cursor string) ([]types.Trade, string, error) {
		page, err := c.GetTrades(ctx, params, cursor)
		if err != nil {
			return nil, "", err
		}
		return page.Data, page.NextCursor, nil
	})
}

// Server-side sampling floors, in minutes, below which /prices-history
// returns an empty series.
var minFidelity = map[types.PriceHistoryInterval]int{
	types.PriceHistoryIntervalOneHour:  1,
	types.PriceHistoryIntervalSixHours: 1,
	types.PriceHistoryIntervalOneDay:   1,
	types.PriceHistoryIntervalOneWeek:  5,
	types.PriceHistoryIntervalOneMonth: 10,
	types.PriceHistoryIntervalMax:      2,
}

const maxPriceHistoryRange = 15 * 24 * time.Hour

// GetPricesHistory returns sampled trade prices for one token. An interval
// and an explicit timestamp range are mutually exclusive, and a requested
// fidelity below the server's floor for the window is rejected up front
// instead of silently yielding an empty series.
func (c *Client) GetPricesHistory(ctx context.Context, params *types.PriceHistoryParams) (*types.PriceHistory, error) {
	if params == nil || params.Market == "" {
		return nil, errors.New("price history requires a token id")
	}

	hasRange := params.StartTs != nil || params.EndTs != nil
	if params.Interval != nil && hasRange {
		return nil, errors.New("interval and start/end timestamps are mutually exclusive")
	}

	query := map[string]string{"market": params.Market}
	if params.Interval != nil {
		if params.Fidelity != nil {
			if floor := minFidelity[*params.Interval]; *params.Fidelity < floor {
				return nil, errors.Errorf("fidelity %d below minimum %d for interval %s", *params.Fidelity, floor, *params.Interval)
			}
		}
		query["interval"] = string(*params.Interval)
	}
	if params.StartTs != nil {
		query["startTs"] = fmt.Sprintf("%d", *params.StartTs)
	}
	if params.EndTs != nil {
		query["endTs"] = fmt.Sprintf("%d", *params.EndTs)
	}
	if params.StartTs != nil && params.EndTs != nil {
		if time.Duration(*params.EndTs-*params.StartTs)*time.Second > maxPriceHistoryRange {
			return nil, errors.Errorf("timestamp range exceeds %s", maxPriceHistoryRange)
		}
	}
	if params.Fidelity != nil {
		query["fidelity"] = fmt.Sprintf("%d", *params.Fidelity)
	}

	var out types.PriceHistory
	if err := c.http.get(ctx, EndpointGetPricesHistory, nil, query, &out); err != nil {
		return nil, errors.Wrap(err, "fetch price history")
	}
	return &out, nil
}
