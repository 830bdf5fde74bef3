package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/polyclob/clob/signing"
	"github.com/betbot/polyclob/clob/types"
)

// well-known test key, never funded
const testKeyHex = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// base64("0123456789abcdef0123456789abcdef")
const testSecret = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY="

func testCreds() *types.APICreds {
	return &types.APICreds{Key: "key-1", Secret: testSecret, Passphrase: "pass-1"}
}

func authedClient(t *testing.T, host string) *Client {
	t.Helper()
	key, err := signing.PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	return NewClient(host, types.ChainPolygon, key, testCreds())
}

func sampleSignedOrder() *types.SignedOrder {
	return &types.SignedOrder{
		Salt:        1,
		Maker:       "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Signer:      "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
		Taker:       zeroAddress,
		TokenID:     "123456",
		MakerAmount: "5000000",
		TakerAmount: "10000000",
		Expiration:  "0",
		Nonce:       "0",
		FeeRateBps:  "0",
		Side:        types.SideBuy,
		Signature:   "0xdeadbeef",
	}
}

func TestPostOrderRequiresCreds(t *testing.T) {
	key, err := signing.PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	c := NewClient("http://localhost:1", types.ChainPolygon, key, nil)

	_, err = c.PostOrder(context.Background(), sampleSignedOrder(), types.OrderTypeGTC)
	assert.Error(t, err)
}

func TestPostOrderSendsAuthAndBody(t *testing.T) {
	var gotBody types.NewOrder
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, EndpointPostOrder, r.URL.Path)
		for _, h := range []string{"POLY_ADDRESS", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_API_KEY", "POLY_PASSPHRASE"} {
			assert.NotEmptyf(t, r.Header.Get(h), "missing header %s", h)
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(types.OrderResponse{Success: true, OrderID: "order-1"})
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	resp, err := c.PostOrder(context.Background(), sampleSignedOrder(), types.OrderTypeGTC)
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.True(t, resp.Success)
	assert.Equal(t, "order-1", resp.OrderID)
	assert.Equal(t, "key-1", gotBody.Owner, "owner must be the api key")
	assert.Equal(t, types.OrderTypeGTC, gotBody.OrderType)
	assert.Equal(t, "123456", gotBody.Order.TokenID)
}

func TestPostOrderTransportFailureIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	resp, err := c.PostOrder(context.Background(), sampleSignedOrder(), types.OrderTypeGTC)
	assert.NoError(t, err, "submission faults are logged, not returned")
	assert.Nil(t, resp)
}

func TestPostOrderRejectionIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(types.OrderResponse{Success: false, ErrorMsg: "not enough balance"})
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	resp, err := c.PostOrder(context.Background(), sampleSignedOrder(), types.OrderTypeGTC)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "not enough balance", resp.ErrorMsg)
}

func TestPostOrdersIndexAlignedResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, EndpointPostOrders, r.URL.Path)
		var batch []types.NewOrder
		require.NoError(t, json.NewDecoder(r.Body).Decode(&batch))
		require.Len(t, batch, 3)

		// reject the middle order only
		_ = json.NewEncoder(w).Encode([]types.OrderResponse{
			{Success: true, OrderID: "order-0"},
			{Success: false, ErrorMsg: "invalid order"},
			{Success: true, OrderID: "order-2"},
		})
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	args := []types.PostOrdersArgs{
		{Order: *sampleSignedOrder(), OrderType: types.OrderTypeGTC},
		{Order: *sampleSignedOrder(), OrderType: types.OrderTypeFOK},
		{Order: *sampleSignedOrder(), OrderType: types.OrderTypeGTC},
	}
	resp, err := c.PostOrders(context.Background(), args)
	require.NoError(t, err)
	require.Len(t, resp, 3)

	assert.True(t, resp[0].Success)
	assert.Equal(t, "order-0", resp[0].OrderID)
	assert.False(t, resp[1].Success)
	assert.Equal(t, "invalid order", resp[1].ErrorMsg)
	assert.True(t, resp[2].Success)
	assert.Equal(t, "order-2", resp[2].OrderID)
}

func TestPostOrdersTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	args := []types.PostOrdersArgs{{Order: *sampleSignedOrder(), OrderType: types.OrderTypeGTC}}
	resp, err := c.PostOrders(context.Background(), args)
	assert.NoError(t, err)
	assert.Nil(t, resp, "a failed batch yields no per-order outcomes")
}

func TestPostOrdersEmptyBatch(t *testing.T) {
	c := authedClient(t, "http://localhost:1")
	resp, err := c.PostOrders(context.Background(), nil)
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestCancelOrder(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, EndpointCancelOrder, r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"canceled":["order-1"]}`))
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	require.NoError(t, c.CancelOrder(context.Background(), "order-1"))
	assert.Equal(t, map[string]string{"orderID": "order-1"}, gotBody)
}

func TestGetAllOpenOrdersDrainsCursorPages(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, EndpointGetOpenOrders, r.URL.Path)
		requests++
		switch r.URL.Query().Get("next_cursor") {
		case InitialCursor:
			_ = json.NewEncoder(w).Encode(types.OpenOrdersPage{
				Data:       []types.OpenOrder{{ID: "o1"}, {ID: "o2"}},
				NextCursor: "NTAw",
			})
		case "NTAw":
			_ = json.NewEncoder(w).Encode(types.OpenOrdersPage{
				Data:       []types.OpenOrder{{ID: "o3"}},
				NextCursor: EndCursor,
			})
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("next_cursor"))
		}
	}))
	defer server.Close()

	c := authedClient(t, server.URL)
	orders, err := c.GetAllOpenOrders(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "o3", orders[2].ID)
	assert.Equal(t, 2, requests)
}
