package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for conditions callers branch on.
var (
	// ErrInvalidTickSize is returned when a caller requests a tick size finer
	// than the market minimum.
	ErrInvalidTickSize = errors.New("invalid tick size: finer than the market minimum")

	// ErrMissingOrderbook is returned when no order book snapshot is available
	// for a token.
	ErrMissingOrderbook = errors.New("no orderbook exists for the requested token id")

	// ErrAuthenticationRequired is returned when an operation needs credentials
	// that were not provided.
	ErrAuthenticationRequired = errors.New("api credentials required")
)

// InvalidPriceError reports a price that is not a tick multiple or falls
// outside the [tick, 1-tick] band.
type InvalidPriceError struct {
	Price float64
	Min   float64
	Max   float64
}

func (e *InvalidPriceError) Error() string {
	return fmt.Sprintf("invalid price (%v), min: %v - max: %v", e.Price, e.Min, e.Max)
}

// InvalidFeeRateError reports a caller fee rate that conflicts with a nonzero
// market fee rate.
type InvalidFeeRateError struct {
	Requested int
	Market    int
}

func (e *InvalidFeeRateError) Error() string {
	return fmt.Sprintf("invalid fee rate (%dbps), market requires %dbps", e.Requested, e.Market)
}

// InsufficientLiquidityError reports that the book does not carry enough depth
// on the relevant side to fill the requested amount.
type InsufficientLiquidityError struct {
	Requested float64
	Available float64
}

func (e *InsufficientLiquidityError) Error() string {
	return fmt.Sprintf("insufficient liquidity: requested %v, available %v", e.Requested, e.Available)
}
