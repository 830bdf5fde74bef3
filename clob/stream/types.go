// Package stream provides the realtime WebSocket clients: market data,
// authenticated user events, and the live-data feed. Each client owns its own
// socket and goroutines; they share the connection core in conn.go.
package stream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/betbot/polyclob/clob/types"
)

// Default endpoints.
const (
	MarketWSURL   = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	UserWSURL     = "wss://ws-subscriptions-clob.polymarket.com/ws/user"
	LiveDataWSURL = "wss://ws-live-data.polymarket.com"
)

// ErrAuthenticationRequired is returned when a subscription needs API
// credentials and none are configured. Raised before any dial.
var ErrAuthenticationRequired = types.ErrAuthenticationRequired

// State is the connection lifecycle phase. There is no terminal state while
// the client is open; Stop or context cancellation tears the socket down.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateSubscribed
	StateStreaming
	StateReconnecting
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	case StateStreaming:
		return "streaming"
	case StateReconnecting:
		return "reconnecting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// EventType discriminates market and user channel messages.
type EventType string

const (
	EventBook           EventType = "book"
	EventPriceChange    EventType = "price_change"
	EventTickSizeChange EventType = "tick_size_change"
	EventLastTradePrice EventType = "last_trade_price"

	EventOrder EventType = "order"
	EventTrade EventType = "trade"

	// EventRaw marks a frame whose discriminant was unknown; EventText marks
	// a frame that was not JSON at all. Both pass the original bytes through.
	EventRaw  EventType = "raw"
	EventText EventType = "text"
)

// FlexNumber keeps a JSON number or numeric string as its string form.
type FlexNumber string

func (n *FlexNumber) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*n = FlexNumber(num.String())
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*n = FlexNumber(s)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexNumber", string(b))
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(n))
}

func (n FlexNumber) String() string { return string(n) }

// Float64 parses the value as float64.
func (n FlexNumber) Float64() (float64, error) {
	s := strings.TrimSpace(string(n))
	if s == "" {
		return 0, fmt.Errorf("empty number")
	}
	return strconv.ParseFloat(s, 64)
}

// FlexFloat64 parses JSON numbers or numeric strings into float64.
type FlexFloat64 float64

func (f *FlexFloat64) UnmarshalJSON(b []byte) error {
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		v, err := num.Float64()
		if err != nil {
			return err
		}
		*f = FlexFloat64(v)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = FlexFloat64(v)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into FlexFloat64", string(b))
}

func (f FlexFloat64) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(f))
}

func (f FlexFloat64) Float64() float64 { return float64(f) }

// FlexTime parses the handful of timestamp layouts the feeds use.
type FlexTime time.Time

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), "\"")
	if s == "null" || s == "" {
		*t = FlexTime(time.Time{})
		return nil
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999999Z",
		"2006-01-02T15:04:05Z",
	}
	var err error
	for _, format := range formats {
		var parsed time.Time
		parsed, err = time.Parse(format, s)
		if err == nil {
			*t = FlexTime(parsed)
			return nil
		}
	}
	// unix seconds or millis
	if ts, perr := strconv.ParseInt(s, 10, 64); perr == nil {
		if ts > 1e12 {
			ts /= 1000
		}
		*t = FlexTime(time.Unix(ts, 0))
		return nil
	}
	return err
}

func (t FlexTime) MarshalJSON() ([]byte, error) {
	v := time.Time(t)
	if v.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(v.Format(time.RFC3339))
}

func (t FlexTime) Time() time.Time { return time.Time(t) }

// PriceLevel is one side level in a streamed book snapshot.
type PriceLevel struct {
	Price FlexNumber `json:"price"`
	Size  FlexNumber `json:"size"`
}

// BookEvent is a full book snapshot pushed on subscribe and on rebuilds.
type BookEvent struct {
	EventType EventType    `json:"event_type"`
	AssetID   string       `json:"asset_id"`
	Market    string       `json:"market"`
	Timestamp FlexNumber   `json:"timestamp"`
	Hash      string       `json:"hash"`
	Bids      []PriceLevel `json:"bids"`
	Asks      []PriceLevel `json:"asks"`
}

// PriceChangeEntry is one level delta inside a price_change event.
type PriceChangeEntry struct {
	AssetID string     `json:"asset_id"`
	Price   FlexNumber `json:"price"`
	Size    FlexNumber `json:"size"`
	Side    string     `json:"side"`
	Hash    string     `json:"hash"`
	BestBid FlexNumber `json:"best_bid"`
	BestAsk FlexNumber `json:"best_ask"`
}

// PriceChangeEvent carries level deltas for one market.
type PriceChangeEvent struct {
	EventType    EventType          `json:"event_type"`
	AssetID      string             `json:"asset_id"`
	Market       string             `json:"market"`
	Timestamp    FlexNumber         `json:"timestamp"`
	Changes      []PriceChangeEntry `json:"changes"`
	PriceChanges []PriceChangeEntry `json:"price_changes"`
}

// TickSizeChangeEvent signals the market's minimum increment moved.
type TickSizeChangeEvent struct {
	EventType   EventType  `json:"event_type"`
	AssetID     string     `json:"asset_id"`
	Market      string     `json:"market"`
	Timestamp   FlexNumber `json:"timestamp"`
	OldTickSize FlexNumber `json:"old_tick_size"`
	NewTickSize FlexNumber `json:"new_tick_size"`
}

// LastTradePriceEvent reports the most recent fill on an asset.
type LastTradePriceEvent struct {
	EventType  EventType  `json:"event_type"`
	AssetID    string     `json:"asset_id"`
	Market     string     `json:"market"`
	Timestamp  FlexNumber `json:"timestamp"`
	Price      FlexNumber `json:"price"`
	Side       string     `json:"side"`
	Size       FlexNumber `json:"size"`
	FeeRateBps FlexNumber `json:"fee_rate_bps"`
}

// MarketEvent is the market channel's tagged union. Exactly one payload field
// matching Type is set; unknown discriminants land in Raw, non-JSON frames in
// Text.
type MarketEvent struct {
	Type EventType

	Book           *BookEvent
	PriceChange    *PriceChangeEvent
	TickSizeChange *TickSizeChangeEvent
	LastTradePrice *LastTradePriceEvent

	Raw  json.RawMessage
	Text string
}

// OrderEvent is a user channel order lifecycle update.
type OrderEvent struct {
	EventType    EventType  `json:"event_type"`
	ID           string     `json:"id"`
	AssetID      string     `json:"asset_id"`
	Market       string     `json:"market"`
	Side         string     `json:"side"`
	Price        FlexNumber `json:"price"`
	OriginalSize FlexNumber `json:"original_size"`
	SizeMatched  FlexNumber `json:"size_matched"`
	Outcome      string     `json:"outcome"`
	Owner        string     `json:"owner"`
	OrderType    string     `json:"order_type"`
	Status       string     `json:"status"`
	Type         string     `json:"type"` // PLACEMENT | UPDATE | CANCELLATION
	CreatedAt    FlexNumber `json:"created_at"`
	Timestamp    FlexNumber `json:"timestamp"`
}

// TradeEvent is a user channel fill notification.
type TradeEvent struct {
	EventType    EventType    `json:"event_type"`
	ID           string       `json:"id"`
	AssetID      string       `json:"asset_id"`
	Market       string       `json:"market"`
	Side         string       `json:"side"`
	Price        FlexNumber   `json:"price"`
	Size         FlexNumber   `json:"size"`
	Status       string       `json:"status"`
	Outcome      string       `json:"outcome"`
	Owner        string       `json:"owner"`
	TakerOrderID string       `json:"taker_order_id"`
	MakerOrders  []MakerMatch `json:"maker_orders"`
	MatchTime    FlexNumber   `json:"matchtime"`
	Timestamp    FlexNumber   `json:"timestamp"`
	TradeOwner   string       `json:"trade_owner"`
	Type         string       `json:"type"`
}

// MakerMatch is one maker leg of a streamed fill.
type MakerMatch struct {
	OrderID       string     `json:"order_id"`
	Owner         string     `json:"owner"`
	MakerAddress  string     `json:"maker_address"`
	MatchedAmount FlexNumber `json:"matched_amount"`
	Price         FlexNumber `json:"price"`
	FeeRateBps    FlexNumber `json:"fee_rate_bps"`
	AssetID       string     `json:"asset_id"`
	Outcome       string     `json:"outcome"`
}

// UserEvent is the user channel's tagged union.
type UserEvent struct {
	Type EventType

	Order *OrderEvent
	Trade *TradeEvent

	Raw  json.RawMessage
	Text string
}

// clobAuth is the credential shape embedded in live-data subscriptions.
type clobAuth struct {
	Key        string `json:"key"`
	Secret     string `json:"secret"`
	Passphrase string `json:"passphrase"`
}

func newClobAuth(creds *types.APICreds) *clobAuth {
	return &clobAuth{Key: creds.Key, Secret: creds.Secret, Passphrase: creds.Passphrase}
}
