package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/polyclob/clob/types"
)

func streamCreds() *types.APICreds {
	return &types.APICreds{Key: "key-1", Secret: "c2VjcmV0", Passphrase: "pass-1"}
}

func testUserClient(t *testing.T) *UserClient {
	t.Helper()
	cfg := DefaultConfig()
	cfg.EventBufferSize = 16
	c, err := NewUserClient(streamCreds(), []string{"0xmarket"}, cfg)
	require.NoError(t, err)
	return c
}

func TestNewUserClientRequiresCredentials(t *testing.T) {
	tests := []struct {
		name  string
		creds *types.APICreds
	}{
		{name: "nil creds", creds: nil},
		{name: "missing key", creds: &types.APICreds{Secret: "s", Passphrase: "p"}},
		{name: "missing secret", creds: &types.APICreds{Key: "k", Passphrase: "p"}},
		{name: "missing passphrase", creds: &types.APICreds{Key: "k", Secret: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUserClient(tt.creds, nil, nil)
			assert.ErrorIs(t, err, ErrAuthenticationRequired)
		})
	}
}

func TestUserHandshakeCarriesAuth(t *testing.T) {
	c := testUserClient(t)

	payload, err := c.handshakePayload()
	require.NoError(t, err)

	msg, ok := payload.(userSubscribeMsg)
	require.True(t, ok)
	assert.Equal(t, "USER", msg.Type)
	assert.Equal(t, []string{"0xmarket"}, msg.Markets)
	require.NotNil(t, msg.Auth)
	assert.Equal(t, "key-1", msg.Auth.Key)
}

func TestUserDispatchOrder(t *testing.T) {
	c := testUserClient(t)
	c.handleFrame([]byte(`{
		"event_type": "order",
		"id": "order-1",
		"asset_id": "123",
		"market": "0xabc",
		"side": "BUY",
		"price": "0.55",
		"original_size": "100",
		"size_matched": "40",
		"status": "LIVE",
		"type": "UPDATE"
	}`))

	select {
	case ev := <-c.Events():
		assert.Equal(t, EventOrder, ev.Type)
		require.NotNil(t, ev.Order)
		assert.Equal(t, "order-1", ev.Order.ID)
		assert.Equal(t, "40", ev.Order.SizeMatched.String())
		assert.Equal(t, "UPDATE", ev.Order.Type)
	default:
		t.Fatal("no event delivered")
	}
}

func TestUserDispatchTrade(t *testing.T) {
	c := testUserClient(t)
	c.handleFrame([]byte(`{
		"event_type": "trade",
		"id": "trade-1",
		"asset_id": "123",
		"side": "SELL",
		"price": "0.38",
		"size": "12",
		"status": "MATCHED",
		"maker_orders": [
			{"order_id": "m1", "matched_amount": "12", "price": "0.38"}
		]
	}`))

	select {
	case ev := <-c.Events():
		assert.Equal(t, EventTrade, ev.Type)
		require.NotNil(t, ev.Trade)
		assert.Equal(t, "trade-1", ev.Trade.ID)
		require.Len(t, ev.Trade.MakerOrders, 1)
		assert.Equal(t, "12", ev.Trade.MakerOrders[0].MatchedAmount.String())
	default:
		t.Fatal("no event delivered")
	}
}

func TestUserDispatchArrayAndUnknown(t *testing.T) {
	c := testUserClient(t)
	c.handleFrame([]byte(`[{"event_type": "order", "id": "o1"}, {"event_type": "mystery"}]`))

	select {
	case ev := <-c.Events():
		assert.Equal(t, EventOrder, ev.Type)
	default:
		t.Fatal("no order event delivered")
	}
	select {
	case ev := <-c.Events():
		assert.Equal(t, EventRaw, ev.Type)
	default:
		t.Fatal("no raw event delivered")
	}
}

func TestUserAddMarketsBeforeStart(t *testing.T) {
	c := testUserClient(t)
	require.NoError(t, c.AddMarkets("0xother"))

	payload, err := c.handshakePayload()
	require.NoError(t, err)
	msg := payload.(userSubscribeMsg)
	assert.Len(t, msg.Markets, 2)
}
