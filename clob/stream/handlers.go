package stream

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// CryptoPrice is one tick on the crypto_prices topics.
type CryptoPrice struct {
	Symbol            string      `json:"symbol"`
	Timestamp         int64       `json:"timestamp"`
	Value             FlexFloat64 `json:"value"`
	FullAccuracyValue string      `json:"full_accuracy_value,omitempty"`
}

// Profile is the author block attached to comments.
type Profile struct {
	BaseAddress           string `json:"baseAddress"`
	DisplayUsernamePublic bool   `json:"displayUsernamePublic"`
	Name                  string `json:"name"`
	ProxyWallet           string `json:"proxyWallet"`
	Pseudonym             string `json:"pseudonym"`
}

// Comment is a comment event on the comments topic.
type Comment struct {
	ID               string   `json:"id"`
	Body             string   `json:"body"`
	CreatedAt        FlexTime `json:"createdAt"`
	ParentCommentID  *string  `json:"parentCommentID,omitempty"`
	ParentEntityID   int      `json:"parentEntityID"`
	ParentEntityType string   `json:"parentEntityType"`
	Profile          Profile  `json:"profile"`
	ReactionCount    int      `json:"reactionCount"`
	UserAddress      string   `json:"userAddress"`
}

// Reaction is a comment reaction on the reactions topic.
type Reaction struct {
	ID           string   `json:"id"`
	CommentID    int      `json:"commentID"`
	ReactionType string   `json:"reactionType"`
	Icon         string   `json:"icon"`
	UserAddress  string   `json:"userAddress"`
	CreatedAt    FlexTime `json:"createdAt"`
}

// LiveTrade is a fill on the activity and clob_user topics.
type LiveTrade struct {
	ID              string     `json:"id"`
	Market          string     `json:"market"`
	AssetID         string     `json:"asset_id"`
	Price           FlexNumber `json:"price"`
	Size            FlexNumber `json:"size"`
	Side            string     `json:"side"`
	Timestamp       int64      `json:"timestamp"`
	MakerAddress    string     `json:"maker_address"`
	TakerAddress    string     `json:"taker_address"`
	Outcome         string     `json:"outcome"`
	OrderHash       string     `json:"order_hash"`
	TransactionHash string     `json:"transaction_hash"`
}

// LiveOrder is an order lifecycle update on the clob_user topic.
type LiveOrder struct {
	ID           string `json:"id"`
	AssetID      string `json:"asset_id"`
	Market       string `json:"market"`
	MakerAddress string `json:"maker_address"`
	Owner        string `json:"owner"`
	OrderType    string `json:"order_type"`
	OriginalSize string `json:"original_size"`
	SizeMatched  string `json:"size_matched"`
	Outcome      string `json:"outcome"`
	Price        string `json:"price"`
	Side         string `json:"side"`
	Status       string `json:"status"`
	Type         string `json:"type"`
	CreatedAt    string `json:"created_at"`
	Expiration   string `json:"expiration"`
}

// LiveBook is an aggregated book snapshot on the clob_market topic.
type LiveBook struct {
	Market       string       `json:"market"`
	AssetID      string       `json:"asset_id"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
	Hash         string       `json:"hash"`
	MinOrderSize string       `json:"min_order_size"`
	NegRisk      bool         `json:"neg_risk"`
	TickSize     string       `json:"tick_size"`
	Timestamp    string       `json:"timestamp"`
}

// LiveLastTradePrice is a last-trade tick on the clob_market topic.
type LiveLastTradePrice struct {
	Market    string `json:"market"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

// LivePriceChange is one market entry in a price-change batch.
type LivePriceChange struct {
	Market    string `json:"market"`
	AssetID   string `json:"asset_id"`
	Price     string `json:"price"`
	Timestamp string `json:"timestamp"`
}

// LivePriceChanges is a clob_market price-change batch keyed by market.
type LivePriceChanges struct {
	Markets map[string]LivePriceChange `json:"markets"`
}

// ParseCryptoPrice decodes a crypto_prices payload.
func ParseCryptoPrice(payload json.RawMessage) (*CryptoPrice, error) {
	var price CryptoPrice
	if err := json.Unmarshal(payload, &price); err != nil {
		return nil, errors.Wrap(err, "parse crypto price")
	}
	return &price, nil
}

// ParseComment decodes a comments payload.
func ParseComment(payload json.RawMessage) (*Comment, error) {
	var comment Comment
	if err := json.Unmarshal(payload, &comment); err != nil {
		return nil, errors.Wrap(err, "parse comment")
	}
	return &comment, nil
}

// ParseReaction decodes a reactions payload.
func ParseReaction(payload json.RawMessage) (*Reaction, error) {
	var reaction Reaction
	if err := json.Unmarshal(payload, &reaction); err != nil {
		return nil, errors.Wrap(err, "parse reaction")
	}
	return &reaction, nil
}

// ParseLiveTrade decodes a trade payload.
func ParseLiveTrade(payload json.RawMessage) (*LiveTrade, error) {
	var trade LiveTrade
	if err := json.Unmarshal(payload, &trade); err != nil {
		return nil, errors.Wrap(err, "parse trade")
	}
	return &trade, nil
}

// ParseLiveOrder decodes an order payload.
func ParseLiveOrder(payload json.RawMessage) (*LiveOrder, error) {
	var order LiveOrder
	if err := json.Unmarshal(payload, &order); err != nil {
		return nil, errors.Wrap(err, "parse order")
	}
	return &order, nil
}

// ParseLiveBook decodes an agg_orderbook payload.
func ParseLiveBook(payload json.RawMessage) (*LiveBook, error) {
	var book LiveBook
	if err := json.Unmarshal(payload, &book); err != nil {
		return nil, errors.Wrap(err, "parse orderbook")
	}
	return &book, nil
}

// ParseLiveLastTradePrice decodes a last_trade_price payload.
func ParseLiveLastTradePrice(payload json.RawMessage) (*LiveLastTradePrice, error) {
	var price LiveLastTradePrice
	if err := json.Unmarshal(payload, &price); err != nil {
		return nil, errors.Wrap(err, "parse last trade price")
	}
	return &price, nil
}

// ParseLivePriceChanges decodes a price-change batch payload.
func ParseLivePriceChanges(payload json.RawMessage) (*LivePriceChanges, error) {
	var changes LivePriceChanges
	if err := json.Unmarshal(payload, &changes); err != nil {
		return nil, errors.Wrap(err, "parse price changes")
	}
	return &changes, nil
}

// CryptoPriceHandler wraps a typed callback into a LiveHandler.
func CryptoPriceHandler(callback func(*CryptoPrice) error) LiveHandler {
	return func(msg *LiveMessage) error {
		price, err := ParseCryptoPrice(msg.Payload)
		if err != nil {
			return err
		}
		return callback(price)
	}
}

// CommentHandler wraps a typed callback into a LiveHandler.
func CommentHandler(callback func(*Comment) error) LiveHandler {
	return func(msg *LiveMessage) error {
		comment, err := ParseComment(msg.Payload)
		if err != nil {
			return err
		}
		return callback(comment)
	}
}

// ReactionHandler wraps a typed callback into a LiveHandler.
func ReactionHandler(callback func(*Reaction) error) LiveHandler {
	return func(msg *LiveMessage) error {
		reaction, err := ParseReaction(msg.Payload)
		if err != nil {
			return err
		}
		return callback(reaction)
	}
}

// LiveTradeHandler wraps a typed callback into a LiveHandler.
func LiveTradeHandler(callback func(*LiveTrade) error) LiveHandler {
	return func(msg *LiveMessage) error {
		trade, err := ParseLiveTrade(msg.Payload)
		if err != nil {
			return err
		}
		return callback(trade)
	}
}

// LiveOrderHandler wraps a typed callback into a LiveHandler.
func LiveOrderHandler(callback func(*LiveOrder) error) LiveHandler {
	return func(msg *LiveMessage) error {
		order, err := ParseLiveOrder(msg.Payload)
		if err != nil {
			return err
		}
		return callback(order)
	}
}

// LiveBookHandler wraps a typed callback into a LiveHandler.
func LiveBookHandler(callback func(*LiveBook) error) LiveHandler {
	return func(msg *LiveMessage) error {
		book, err := ParseLiveBook(msg.Payload)
		if err != nil {
			return err
		}
		return callback(book)
	}
}

// LiveLastTradePriceHandler wraps a typed callback into a LiveHandler.
func LiveLastTradePriceHandler(callback func(*LiveLastTradePrice) error) LiveHandler {
	return func(msg *LiveMessage) error {
		price, err := ParseLiveLastTradePrice(msg.Payload)
		if err != nil {
			return err
		}
		return callback(price)
	}
}

// LivePriceChangesHandler wraps a typed callback into a LiveHandler.
func LivePriceChangesHandler(callback func(*LivePriceChanges) error) LiveHandler {
	return func(msg *LiveMessage) error {
		changes, err := ParseLivePriceChanges(msg.Payload)
		if err != nil {
			return err
		}
		return callback(changes)
	}
}
