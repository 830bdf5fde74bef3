package client

// CLOB REST endpoints.
const (
	EndpointTime = "/time"

	// credentials
	EndpointCreateAPIKey = "/auth/api-key"
	EndpointDeriveAPIKey = "/auth/derive-api-key"
	EndpointGetAPIKeys   = "/auth/api-keys"
	EndpointDeleteAPIKey = "/auth/api-key"

	// market metadata
	EndpointGetTickSize = "/tick-size"
	EndpointGetNegRisk  = "/neg-risk"
	EndpointGetFeeRate  = "/fee-rate"

	// markets and books
	EndpointGetMarkets           = "/markets"
	EndpointGetMarket            = "/markets/"
	EndpointGetSimplifiedMarkets = "/simplified-markets"
	EndpointGetSamplingMarkets   = "/sampling-markets"
	EndpointGetOrderBook         = "/book"
	EndpointGetOrderBooks        = "/books"
	EndpointGetMidpoint          = "/midpoint"
	EndpointGetMidpoints         = "/midpoints"
	EndpointGetSpread            = "/spread"
	EndpointGetSpreads           = "/spreads"
	EndpointGetPrice             = "/price"
	EndpointGetPrices            = "/prices"
	EndpointGetLastTradePrice    = "/last-trade-price"
	EndpointGetLastTradePrices   = "/last-trades-prices"
	EndpointGetPricesHistory     = "/prices-history"

	// orders
	EndpointPostOrder          = "/order"
	EndpointPostOrders         = "/orders"
	EndpointCancelOrder        = "/order"
	EndpointCancelOrders       = "/orders"
	EndpointCancelAll          = "/cancel-all"
	EndpointCancelMarketOrders = "/cancel-market-orders"
	EndpointGetOpenOrders      = "/data/orders"
	EndpointGetTrades          = "/data/trades"
	EndpointIsOrderScoring     = "/order-scoring"
	EndpointAreOrdersScoring   = "/orders-scoring"

	// balance
	EndpointGetBalanceAllowance = "/balance-allowance"
)

// Data API endpoints (separate host).
const (
	EndpointDataPositions = "/positions"
	EndpointDataActivity  = "/activity"
)
