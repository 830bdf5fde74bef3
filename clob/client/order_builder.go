package client

import (
	"math/big"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/betbot/polyclob/clob/signing"
	"github.com/betbot/polyclob/clob/types"
)

// RoundingConfig maps a tick size to the decimal precision used for the
// price, share size, and quote amount of an order.
var RoundingConfig = map[types.TickSize]types.RoundConfig{
	types.TickSize01:    {Price: 1, Size: 2, Amount: 3},
	types.TickSize001:   {Price: 2, Size: 2, Amount: 4},
	types.TickSize0001:  {Price: 3, Size: 2, Amount: 5},
	types.TickSize00001: {Price: 4, Size: 2, Amount: 6},
}

// orderBuilder turns resolved order intents into signed orders.
type orderBuilder struct {
	client *Client
}

func (c *Client) builder() *orderBuilder {
	return &orderBuilder{client: c}
}

// buildOrder rounds the limit order's amounts, fills the on-chain fields, and
// signs against the exchange contract selected by the neg-risk flag.
func (ob *orderBuilder) buildOrder(order *types.UserOrder, opts *types.CreateOrderOptions) (*types.SignedOrder, error) {
	rc, ok := RoundingConfig[opts.TickSize]
	if !ok {
		return nil, errors.Errorf("unsupported tick size: %s", opts.TickSize)
	}

	rawMakerAmt, rawTakerAmt := orderRawAmounts(order.Side, order.Size, order.Price, rc)

	return ob.sign(orderFields{
		tokenID:    order.TokenID,
		side:       order.Side,
		makerAmt:   rawMakerAmt,
		takerAmt:   rawTakerAmt,
		feeRateBps: order.FeeRateBps,
		nonce:      order.Nonce,
		expiration: order.Expiration,
		taker:      order.Taker,
		negRisk:    opts.NegRisk != nil && *opts.NegRisk,
	})
}

// buildMarketOrder does the same for a marketable order whose price has
// already been resolved against live depth.
func (ob *orderBuilder) buildMarketOrder(order *types.UserMarketOrder, price float64, opts *types.CreateOrderOptions) (*types.SignedOrder, error) {
	rc, ok := RoundingConfig[opts.TickSize]
	if !ok {
		return nil, errors.Errorf("unsupported tick size: %s", opts.TickSize)
	}

	rawMakerAmt, rawTakerAmt := marketOrderRawAmounts(order.Side, order.Amount, price, rc)

	return ob.sign(orderFields{
		tokenID:    order.TokenID,
		side:       order.Side,
		makerAmt:   rawMakerAmt,
		takerAmt:   rawTakerAmt,
		feeRateBps: order.FeeRateBps,
		nonce:      order.Nonce,
		taker:      order.Taker,
		negRisk:    opts.NegRisk != nil && *opts.NegRisk,
	})
}

type orderFields struct {
	tokenID    string
	side       types.Side
	makerAmt   float64
	takerAmt   float64
	feeRateBps *int
	nonce      *int
	expiration *int64
	taker      *string
	negRisk    bool
}

func (ob *orderBuilder) sign(f orderFields) (*types.SignedOrder, error) {
	c := ob.client
	contracts, err := contractConfig(c.chainID)
	if err != nil {
		return nil, err
	}

	signer := signing.GetAddressFromPrivateKey(c.authConfig.PrivateKey).Hex()
	maker := signer
	if c.funderAddress != "" {
		maker = c.funderAddress
	}

	taker := zeroAddress
	if f.taker != nil && *f.taker != "" {
		taker = *f.taker
	}

	feeRateBps := big.NewInt(0)
	if f.feeRateBps != nil {
		feeRateBps = big.NewInt(int64(*f.feeRateBps))
	}
	nonce := big.NewInt(0)
	if f.nonce != nil {
		nonce = big.NewInt(int64(*f.nonce))
	}
	expiration := big.NewInt(0)
	if f.expiration != nil {
		expiration = big.NewInt(*f.expiration)
	}

	tokenID, ok := new(big.Int).SetString(f.tokenID, 10)
	if !ok {
		return nil, errors.Errorf("invalid token id: %s", f.tokenID)
	}

	exchange := contracts.Exchange
	if f.negRisk {
		exchange = contracts.NegRiskExchange
	}

	makerAmount := parseUnits(f.makerAmt, collateralTokenDecimals)
	takerAmount := parseUnits(f.takerAmt, collateralTokenDecimals)
	salt := time.Now().UnixNano()

	signature, err := signing.BuildOrderSignature(c.authConfig.PrivateKey, c.chainID, exchange, &signing.OrderData{
		Salt:          salt,
		Maker:         maker,
		Signer:        signer,
		Taker:         taker,
		TokenID:       tokenID,
		MakerAmount:   makerAmount,
		TakerAmount:   takerAmount,
		Expiration:    expiration,
		Nonce:         nonce,
		FeeRateBps:    feeRateBps,
		Side:          f.side,
		SignatureType: c.signatureType,
	})
	if err != nil {
		return nil, errors.Wrap(err, "sign order")
	}

	return &types.SignedOrder{
		Salt:          salt,
		Maker:         maker,
		Signer:        signer,
		Taker:         taker,
		TokenID:       f.tokenID,
		MakerAmount:   makerAmount.String(),
		TakerAmount:   takerAmount.String(),
		Expiration:    expiration.String(),
		Nonce:         nonce.String(),
		FeeRateBps:    feeRateBps.String(),
		Side:          f.side,
		SignatureType: int(c.signatureType),
		Signature:     signature,
	}, nil
}

// orderRawAmounts computes the maker/taker legs of a limit order. Buys pay
// quote and receive shares; sells are the reverse, and the exchange enforces
// tighter precision on the share leg.
func orderRawAmounts(side types.Side, size, price float64, rc types.RoundConfig) (rawMakerAmt, rawTakerAmt float64) {
	rawPrice := roundNormal(price, rc.Price)

	if side == types.SideBuy {
		rawTakerAmt = roundDown(size, rc.Size)
		rawMakerAmt = rawTakerAmt * rawPrice
		if decimalPlaces(rawMakerAmt) > rc.Amount {
			rawMakerAmt = roundUp(rawMakerAmt, rc.Amount+4)
			if decimalPlaces(rawMakerAmt) > rc.Amount {
				rawMakerAmt = roundDown(rawMakerAmt, rc.Amount)
			}
		}
		return rawMakerAmt, rawTakerAmt
	}

	rawMakerAmt = roundDown(size, rc.Size)
	rawTakerAmt = rawMakerAmt * rawPrice
	if decimalPlaces(rawTakerAmt) > 4 {
		rawTakerAmt = roundDown(rawTakerAmt, 4)
	}
	if decimalPlaces(rawMakerAmt) > 2 {
		rawMakerAmt = roundDown(rawMakerAmt, 2)
		rawTakerAmt = rawMakerAmt * rawPrice
		if decimalPlaces(rawTakerAmt) > 4 {
			rawTakerAmt = roundDown(rawTakerAmt, 4)
		}
	}
	return rawMakerAmt, rawTakerAmt
}

// marketOrderRawAmounts computes the maker/taker legs of a marketable order.
// The amount is quote currency for buys and shares for sells.
func marketOrderRawAmounts(side types.Side, amount, price float64, rc types.RoundConfig) (rawMakerAmt, rawTakerAmt float64) {
	rawPrice := roundNormal(price, rc.Price)

	if side == types.SideBuy {
		rawMakerAmt = roundDown(amount, rc.Size)
		rawTakerAmt = rawMakerAmt / rawPrice
		if decimalPlaces(rawTakerAmt) > rc.Amount {
			rawTakerAmt = roundUp(rawTakerAmt, rc.Amount+4)
			if decimalPlaces(rawTakerAmt) > rc.Amount {
				rawTakerAmt = roundDown(rawTakerAmt, rc.Amount)
			}
		}
		return rawMakerAmt, rawTakerAmt
	}

	rawMakerAmt = roundDown(amount, rc.Size)
	rawTakerAmt = rawMakerAmt * rawPrice
	if decimalPlaces(rawTakerAmt) > rc.Amount {
		rawTakerAmt = roundUp(rawTakerAmt, rc.Amount+4)
		if decimalPlaces(rawTakerAmt) > rc.Amount {
			rawTakerAmt = roundDown(rawTakerAmt, rc.Amount)
		}
	}
	return rawMakerAmt, rawTakerAmt
}

func decimalPlaces(num float64) int32 {
	exp := decimal.NewFromFloat(num).Exponent()
	if exp >= 0 {
		return 0
	}
	return -exp
}

func roundNormal(num float64, places int32) float64 {
	if decimalPlaces(num) <= places {
		return num
	}
	return decimal.NewFromFloat(num).Round(places).InexactFloat64()
}

func roundDown(num float64, places int32) float64 {
	if decimalPlaces(num) <= places {
		return num
	}
	return decimal.NewFromFloat(num).RoundFloor(places).InexactFloat64()
}

func roundUp(num float64, places int32) float64 {
	if decimalPlaces(num) <= places {
		return num
	}
	return decimal.NewFromFloat(num).RoundCeil(places).InexactFloat64()
}

// parseUnits scales a decimal amount to the token's integer representation.
func parseUnits(value float64, decimals int32) *big.Int {
	return decimal.NewFromFloat(value).Shift(decimals).BigInt()
}
