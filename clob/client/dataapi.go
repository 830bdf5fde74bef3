package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/logger"
	"github.com/betbot/polyclob/pkg/ratelimit"
)

// DefaultDataHost is the public data API.
const DefaultDataHost = "https://data-api.polymarket.com"

// DataClient reads position and activity data for a wallet from the data
// API. The endpoints are unauthenticated, addressed by wallet address, and
// paged by offset/limit rather than cursors.
type DataClient struct {
	http    *httpClient
	limiter *ratelimit.Manager
	log     *logrus.Entry
	user    string
}

// NewDataClient builds a data API client for one wallet address.
func NewDataClient(host, userAddress string) *DataClient {
	if host == "" {
		host = DefaultDataHost
	}
	return &DataClient{
		http:    newHTTPClient(host),
		limiter: ratelimit.NewManager(),
		log:     logger.WithField("component", "data-client"),
		user:    userAddress,
	}
}

const dataPageLimit = 500

// GetPositions returns one offset/limit page of open positions.
func (d *DataClient) GetPositions(ctx context.Context, params *types.PositionParams, limit, offset int) ([]types.Position, error) {
	if err := d.limiter.Wait(ctx, "data:general"); err != nil {
		return nil, err
	}

	query := map[string]string{
		"user":   d.user,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
	if params != nil {
		if params.Market != nil {
			query["market"] = *params.Market
		}
		if params.SizeThreshold != nil {
			query["sizeThreshold"] = strconv.FormatFloat(*params.SizeThreshold, 'f', -1, 64)
		}
		if params.Redeemable != nil {
			query["redeemable"] = strconv.FormatBool(*params.Redeemable)
		}
		if params.SortBy != nil {
			query["sortBy"] = *params.SortBy
		}
		if params.SortDirection != nil {
			query["sortDirection"] = *params.SortDirection
		}
	}

	var out []types.Position
	if err := d.http.get(ctx, EndpointDataPositions, nil, query, &out); err != nil {
		return nil, errors.Wrap(err, "fetch positions")
	}
	return out, nil
}

// GetAllPositions drains the position listing page by page until a short
// page signals the end.
func (d *DataClient) GetAllPositions(ctx context.Context, params *types.PositionParams) ([]types.Position, error) {
	return fetchAllOffset(ctx, dataPageLimit, func(ctx context.Context, limit, offset int) ([]types.Position, error) {
		return d.GetPositions(ctx, params, limit, offset)
	})
}

// GetActivity returns one offset/limit page of account activity.
func (d *DataClient) GetActivity(ctx context.Context, params *types.ActivityParams, limit, offset int) ([]types.Activity, error) {
	if err := d.limiter.Wait(ctx, "data:general"); err != nil {
		return nil, err
	}

	query := map[string]string{
		"user":   d.user,
		"limit":  strconv.Itoa(limit),
		"offset": strconv.Itoa(offset),
	}
	if params != nil {
		if params.Market != nil {
			query["market"] = *params.Market
		}
		if params.Type != nil {
			query["type"] = *params.Type
		}
		if params.Start != nil {
			query["start"] = fmt.Sprintf("%d", *params.Start)
		}
		if params.End != nil {
			query["end"] = fmt.Sprintf("%d", *params.End)
		}
		if params.Side != nil {
			query["side"] = string(*params.Side)
		}
		if params.SortBy != nil {
			query["sortBy"] = *params.SortBy
		}
		if params.SortDirection != nil {
			query["sortDirection"] = *params.SortDirection
		}
	}

	var out []types.Activity
	if err := d.http.get(ctx, EndpointDataActivity, nil, query, &out); err != nil {
		return nil, errors.Wrap(err, "fetch activity")
	}
	return out, nil
}

// GetAllActivity drains the activity listing page by page.
func (d *DataClient) GetAllActivity(ctx context.Context, params *types.ActivityParams) ([]types.Activity, error) {
	return fetchAllOffset(ctx, dataPageLimit, func(ctx context.Context, limit, offset int) ([]types.Activity, error) {
		return d.GetActivity(ctx, params, limit, offset)
	})
}
