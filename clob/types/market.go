package types

// OrderSummary is a single price level of a book snapshot. Prices and sizes
// arrive as decimal strings.
type OrderSummary struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// OrderBookSummary is a point-in-time book snapshot for one token.
type OrderBookSummary struct {
	Market       string         `json:"market"`
	AssetID      string         `json:"asset_id"`
	Timestamp    string         `json:"timestamp"`
	Bids         []OrderSummary `json:"bids"`
	Asks         []OrderSummary `json:"asks"`
	MinOrderSize string         `json:"min_order_size"`
	TickSize     string         `json:"tick_size"`
	NegRisk      bool           `json:"neg_risk"`
	Hash         string         `json:"hash"`
}

// BookParams addresses one book in a batch request.
type BookParams struct {
	TokenID string `json:"token_id"`
	Side    Side   `json:"side,omitempty"`
}

// MidpointResponse is the /midpoint response.
type MidpointResponse struct {
	Mid string `json:"mid"`
}

// PriceResponse is the /price response.
type PriceResponse struct {
	Price string `json:"price"`
}

// SpreadResponse is the /spread response.
type SpreadResponse struct {
	Spread string `json:"spread"`
}

// LastTradePrice is the /last-trade-price response.
type LastTradePrice struct {
	TokenID string `json:"token_id"`
	Price   string `json:"price"`
	Side    string `json:"side"`
}

// MakerOrder is the maker leg of a trade.
type MakerOrder struct {
	OrderID       string `json:"order_id"`
	Owner         string `json:"owner"`
	MakerAddress  string `json:"maker_address"`
	MatchedAmount string `json:"matched_amount"`
	Price         string `json:"price"`
	FeeRateBps    string `json:"fee_rate_bps"`
	AssetID       string `json:"asset_id"`
	Outcome       string `json:"outcome"`
	Side          Side   `json:"side"`
}

// Trade is one fill involving the authenticated user.
type Trade struct {
	ID              string       `json:"id"`
	TakerOrderID    string       `json:"taker_order_id"`
	Market          string       `json:"market"`
	AssetID         string       `json:"asset_id"`
	Side            Side         `json:"side"`
	Size            string       `json:"size"`
	FeeRateBps      string       `json:"fee_rate_bps"`
	Price           string       `json:"price"`
	Status          string       `json:"status"`
	MatchTime       string       `json:"match_time"`
	LastUpdate      string       `json:"last_update"`
	Outcome         string       `json:"outcome"`
	BucketIndex     int          `json:"bucket_index"`
	Owner           string       `json:"owner"`
	MakerAddress    string       `json:"maker_address"`
	MakerOrders     []MakerOrder `json:"maker_orders"`
	TransactionHash string       `json:"transaction_hash"`
	TraderSide      string       `json:"trader_side"` // "TAKER" | "MAKER"
}

// TradeParams filters the trade listing.
type TradeParams struct {
	ID           *string
	MakerAddress *string
	Market       *string
	AssetID      *string
	Before       *string
	After        *string
}

// TradesPage is one cursor page of trades.
type TradesPage struct {
	Data       []Trade `json:"data"`
	NextCursor string  `json:"next_cursor"`
	Limit      int     `json:"limit"`
	Count      int     `json:"count"`
}

// MarketsPage is one cursor page of market records. Market records are kept
// untyped; this client only pages them through.
type MarketsPage struct {
	Data       []map[string]any `json:"data"`
	NextCursor string           `json:"next_cursor"`
	Limit      int              `json:"limit"`
	Count      int              `json:"count"`
}

// PriceHistoryInterval selects a relative history window.
type PriceHistoryInterval string

const (
	PriceHistoryIntervalMax      PriceHistoryInterval = "max"
	PriceHistoryIntervalOneMonth PriceHistoryInterval = "1m"
	PriceHistoryIntervalOneWeek  PriceHistoryInterval = "1w"
	PriceHistoryIntervalOneDay   PriceHistoryInterval = "1d"
	PriceHistoryIntervalSixHours PriceHistoryInterval = "6h"
	PriceHistoryIntervalOneHour  PriceHistoryInterval = "1h"
)

// PriceHistoryParams filters /prices-history. Interval and the StartTs/EndTs
// pair are mutually exclusive.
type PriceHistoryParams struct {
	Market   string
	StartTs  *int64
	EndTs    *int64
	Interval *PriceHistoryInterval
	Fidelity *int
}

// PricePoint is one sample of a price history series.
type PricePoint struct {
	Timestamp int64   `json:"t"`
	Price     float64 `json:"p"`
}

// PriceHistory is the /prices-history response.
type PriceHistory struct {
	History []PricePoint `json:"history"`
}

// BalanceAllowanceParams addresses one balance/allowance query.
type BalanceAllowanceParams struct {
	AssetType     AssetType
	TokenID       *string
	SignatureType *SignatureType
}

// BalanceAllowanceResponse carries raw 6-decimal integer amounts.
type BalanceAllowanceResponse struct {
	Balance    string            `json:"balance"`
	Allowance  string            `json:"allowance"`
	Allowances map[string]string `json:"allowances,omitempty"`
}

// TickSizes caches per-token tick sizes.
type TickSizes map[string]TickSize

// NegRisk caches per-token negative-risk flags.
type NegRisk map[string]bool

// FeeRates caches per-token base fee rates in bps.
type FeeRates map[string]int

// RoundConfig is the per-tick-size decimal precision set used when building
// order amounts.
type RoundConfig struct {
	Price  int32
	Size   int32
	Amount int32
}
