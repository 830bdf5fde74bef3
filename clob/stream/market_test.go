package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarketClient(t *testing.T) *MarketClient {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EventBufferSize = 16
	return NewMarketClient(cfg)
}

func recvMarketEvent(t *testing.T, c *MarketClient) MarketEvent {
	t.Helper()
	select {
	case ev := <-c.Events():
		return ev
	default:
		t.Fatal("no event delivered")
		return MarketEvent{}
	}
}

func TestMarketStartRequiresSubscription(t *testing.T) {
	c := testMarketClient(t)
	assert.Error(t, c.Start(nil))
}

func TestMarketSubscribeRecordsAssets(t *testing.T) {
	c := testMarketClient(t)
	require.NoError(t, c.Subscribe("asset-1", "asset-2", "asset-1"))
	assert.Equal(t, 2, c.SubscriptionCount())

	require.NoError(t, c.Unsubscribe("asset-2", "never-subscribed"))
	assert.Equal(t, 1, c.SubscriptionCount())
}

func TestMarketHandshakeCarriesSubscriptions(t *testing.T) {
	c := testMarketClient(t)
	require.NoError(t, c.Subscribe("asset-1"))

	payload, err := c.handshakePayload()
	require.NoError(t, err)

	msg, ok := payload.(marketSubscribeMsg)
	require.True(t, ok)
	assert.Equal(t, "market", msg.Type)
	assert.Equal(t, []string{"asset-1"}, msg.AssetsIDs)
}

func TestMarketDispatchBook(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`{
		"event_type": "book",
		"asset_id": "123",
		"market": "0xabc",
		"timestamp": "1700000000000",
		"hash": "h1",
		"bids": [{"price": "0.39", "size": "100"}],
		"asks": [{"price": "0.41", "size": "50"}]
	}`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventBook, ev.Type)
	require.NotNil(t, ev.Book)
	assert.Equal(t, "123", ev.Book.AssetID)
	require.Len(t, ev.Book.Bids, 1)
	assert.Equal(t, "0.39", ev.Book.Bids[0].Price.String())
	require.Len(t, ev.Book.Asks, 1)
	assert.Equal(t, "50", ev.Book.Asks[0].Size.String())
}

func TestMarketDispatchPriceChangeFallback(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`{
		"event_type": "price_change",
		"market": "0xabc",
		"price_changes": [
			{"asset_id": "123", "price": "0.55", "size": "100", "side": "BUY"}
		]
	}`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventPriceChange, ev.Type)
	require.NotNil(t, ev.PriceChange)
	require.Len(t, ev.PriceChange.Changes, 1, "price_changes must be folded into Changes")
	assert.Equal(t, "0.55", ev.PriceChange.Changes[0].Price.String())
}

func TestMarketDispatchTickSizeChange(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`{
		"event_type": "tick_size_change",
		"asset_id": "123",
		"old_tick_size": "0.01",
		"new_tick_size": "0.001"
	}`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventTickSizeChange, ev.Type)
	require.NotNil(t, ev.TickSizeChange)
	assert.Equal(t, "0.001", ev.TickSizeChange.NewTickSize.String())
}

func TestMarketDispatchLastTradePrice(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`{
		"event_type": "last_trade_price",
		"asset_id": "123",
		"price": "0.56",
		"side": "BUY",
		"size": "10"
	}`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventLastTradePrice, ev.Type)
	require.NotNil(t, ev.LastTradePrice)
	assert.Equal(t, "0.56", ev.LastTradePrice.Price.String())
}

func TestMarketDispatchArrayFrame(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`[
		{"event_type": "book", "asset_id": "1", "bids": [], "asks": []},
		{"event_type": "last_trade_price", "asset_id": "2", "price": "0.5"}
	]`))

	first := recvMarketEvent(t, c)
	assert.Equal(t, EventBook, first.Type)
	second := recvMarketEvent(t, c)
	assert.Equal(t, EventLastTradePrice, second.Type)
}

func TestMarketDispatchUnknownEventType(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`{"event_type": "mystery", "foo": "bar"}`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventRaw, ev.Type)
	assert.JSONEq(t, `{"event_type": "mystery", "foo": "bar"}`, string(ev.Raw))
}

func TestMarketDispatchNonJSONFrame(t *testing.T) {
	c := testMarketClient(t)
	c.handleFrame([]byte(`not json at all`))

	ev := recvMarketEvent(t, c)
	assert.Equal(t, EventText, ev.Type)
	assert.Equal(t, "not json at all", ev.Text)
}

func TestMarketDeliverReportsFullBuffer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EventBufferSize = 1
	c := NewMarketClient(cfg)

	frame := []byte(`{"event_type": "book", "asset_id": "1", "bids": [], "asks": []}`)
	c.handleFrame(frame)
	c.handleFrame(frame)

	select {
	case err := <-c.Errors():
		assert.Contains(t, err.Error(), "buffer full")
	default:
		t.Fatal("expected a dropped-event error")
	}
}
