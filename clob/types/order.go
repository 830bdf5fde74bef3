package types

// UserOrder is a limit order intent as supplied by the caller. The client
// fills in resolved fee rate and rounding before signing.
type UserOrder struct {
	// TokenID is the conditional token asset id.
	TokenID string

	// Price in the [tick, 1-tick] band, a multiple of the market tick size.
	Price float64

	// Size is the number of conditional shares.
	Size float64

	Side Side

	// FeeRateBps is optional; when nonzero it must match a nonzero market rate.
	FeeRateBps *int

	// Nonce for on-chain cancellation, optional.
	Nonce *int

	// Expiration unix timestamp in seconds, optional (GTD orders).
	Expiration *int64

	// Taker address; the zero address means a public order. Optional.
	Taker *string
}

// UserMarketOrder is a marketable order intent.
type UserMarketOrder struct {
	TokenID string

	// Price is optional; when nil or non-positive the client derives a
	// marketable price from live book depth.
	Price *float64

	// Amount is denominated in dollars for BUY and in shares for SELL.
	Amount float64

	Side Side

	FeeRateBps *int
	Nonce      *int
	Taker      *string

	// OrderType of the submission; only FOK and FAK are meaningful here.
	OrderType *OrderType
}

// SignedOrder is the fully resolved, signed order payload. Consumed exactly
// once by submission.
type SignedOrder struct {
	Salt          int64  `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          Side   `json:"side"`
	SignatureType int    `json:"signatureType"`
	Signature     string `json:"signature"`
}

// NewOrder is the single-order submission body.
type NewOrder struct {
	Order     SignedOrder `json:"order"`
	Owner     string      `json:"owner"`
	OrderType OrderType   `json:"orderType"`
	DeferExec bool        `json:"deferExec"`
}

// PostOrdersArgs pairs an order with its execution type for batch submission.
type PostOrdersArgs struct {
	Order     SignedOrder
	OrderType OrderType
}

// OrderResponse is the per-order submission outcome. In a batch response the
// slice is index-aligned with the submitted orders.
type OrderResponse struct {
	Success           bool     `json:"success"`
	ErrorMsg          string   `json:"errorMsg"`
	OrderID           string   `json:"orderID"`
	TransactionHashes []string `json:"transactionsHashes"`
	Status            string   `json:"status"`
	TakingAmount      string   `json:"takingAmount"`
	MakingAmount      string   `json:"makingAmount"`
}

// OpenOrder is a resting order as reported by the exchange.
type OpenOrder struct {
	ID              string   `json:"id"`
	Status          string   `json:"status"`
	Owner           string   `json:"owner"`
	MakerAddress    string   `json:"maker_address"`
	Market          string   `json:"market"`
	AssetID         string   `json:"asset_id"`
	Side            string   `json:"side"`
	OriginalSize    string   `json:"original_size"`
	SizeMatched     string   `json:"size_matched"`
	Price           string   `json:"price"`
	AssociateTrades []string `json:"associate_trades"`
	Outcome         string   `json:"outcome"`
	CreatedAt       int64    `json:"created_at"`
	Expiration      string   `json:"expiration"`
	OrderType       string   `json:"order_type"`
}

// OpenOrdersPage is one cursor page of open orders.
type OpenOrdersPage struct {
	Data       []OpenOrder `json:"data"`
	NextCursor string      `json:"next_cursor"`
	Limit      int         `json:"limit"`
	Count      int         `json:"count"`
}

// OpenOrderParams filters the open-order listing.
type OpenOrderParams struct {
	ID      *string
	Market  *string
	AssetID *string
}

// CreateOrderOptions lets a caller override resolved metadata.
type CreateOrderOptions struct {
	// TickSize overrides the cached market tick size; must not be finer than
	// the market minimum.
	TickSize TickSize

	// NegRisk overrides the cached negative-risk flag.
	NegRisk *bool
}

// OrderScoring reports whether an order is scoring for rewards.
type OrderScoring struct {
	Scoring bool `json:"scoring"`
}

// OrdersScoring maps order id to its scoring flag.
type OrdersScoring map[string]bool

// OrderMarketCancelParams selects orders to cancel by market or asset.
type OrderMarketCancelParams struct {
	Market  *string
	AssetID *string
}
