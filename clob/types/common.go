// Package types holds the wire-level and shared domain types for the CLOB client.
package types

// Side is the order direction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType is the execution type of an order.
type OrderType string

const (
	OrderTypeGTC OrderType = "GTC" // good till cancelled
	OrderTypeFOK OrderType = "FOK" // fill or kill
	OrderTypeGTD OrderType = "GTD" // good till date
	OrderTypeFAK OrderType = "FAK" // fill and kill (partial fill, rest cancelled)
)

// Chain identifies the target network.
type Chain int

const (
	ChainPolygon Chain = 137
	ChainAmoy    Chain = 80002
)

// SignatureType selects how the maker address relates to the signing key.
type SignatureType int

const (
	SignatureTypeEOA        SignatureType = 0 // standard wallet
	SignatureTypeMagic      SignatureType = 1 // Magic Link proxy
	SignatureTypeGnosisSafe SignatureType = 2 // Gnosis Safe proxy wallet
)

// AssetType distinguishes collateral from conditional token balances.
type AssetType string

const (
	AssetTypeCollateral  AssetType = "COLLATERAL"
	AssetTypeConditional AssetType = "CONDITIONAL"
)

// TickSize is the minimum price increment of a market, kept in its wire form.
type TickSize string

const (
	TickSize01    TickSize = "0.1"
	TickSize001   TickSize = "0.01"
	TickSize0001  TickSize = "0.001"
	TickSize00001 TickSize = "0.0001"
)

// Valid reports whether t is one of the tick sizes the exchange emits.
func (t TickSize) Valid() bool {
	switch t {
	case TickSize01, TickSize001, TickSize0001, TickSize00001:
		return true
	}
	return false
}

// APICreds are the level-2 trading credentials. Obtained once per session and
// immutable afterwards. The JSON tags match the websocket auth handshake shape.
type APICreds struct {
	Key        string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

// APIKeyRaw is the REST response shape of the credential endpoints.
type APIKeyRaw struct {
	APIKey     string `json:"apiKey"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}
