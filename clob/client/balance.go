package client

import (
	"context"
	"net/http"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/polyclob/clob/types"
)

// GetBalanceAllowance returns the raw on-chain balance and exchange
// allowance for collateral or one conditional token. Amounts come back as
// 6-decimal integer strings; see CollateralAmount for the human value.
func (c *Client) GetBalanceAllowance(ctx context.Context, params *types.BalanceAllowanceParams) (*types.BalanceAllowanceResponse, error) {
	if err := c.CanL2Auth(); err != nil {
		return nil, err
	}
	if params == nil {
		return nil, errors.New("balance query requires an asset type")
	}

	headers, err := c.buildAuthHeaders(http.MethodGet, EndpointGetBalanceAllowance, nil)
	if err != nil {
		return nil, err
	}

	query := map[string]string{"asset_type": string(params.AssetType)}
	if params.AssetType == types.AssetTypeConditional {
		if params.TokenID == nil {
			return nil, errors.New("conditional balance query requires a token id")
		}
		query["token_id"] = *params.TokenID
	}
	sigType := c.signatureType
	if params.SignatureType != nil {
		sigType = *params.SignatureType
	}
	query["signature_type"] = strconv.Itoa(int(sigType))

	var out types.BalanceAllowanceResponse
	if err := c.http.get(ctx, EndpointGetBalanceAllowance, headers, query, &out); err != nil {
		return nil, errors.Wrap(err, "fetch balance allowance")
	}
	return &out, nil
}

// CollateralAmount converts a raw 6-decimal integer amount into whole
// collateral units.
func CollateralAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse raw amount %q", raw)
	}
	return d.Shift(-collateralTokenDecimals), nil
}
