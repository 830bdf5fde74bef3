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

func l1Client(t *testing.T, host string) *Client {
	t.Helper()
	key, err := signing.PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	return NewClient(host, types.ChainPolygon, key, nil)
}

func TestCreateAPIKeyRequiresSigner(t *testing.T) {
	c := NewClient("http://localhost:1", types.ChainPolygon, nil, nil)
	_, err := c.CreateAPIKey(context.Background(), nil)
	assert.Error(t, err)
}

func TestCreateOrDeriveFreshCredentials(t *testing.T) {
	creates, derives := 0, 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == EndpointCreateAPIKey:
			creates++
			assert.NotEmpty(t, r.Header.Get("POLY_ADDRESS"))
			assert.NotEmpty(t, r.Header.Get("POLY_SIGNATURE"))
			assert.NotEmpty(t, r.Header.Get("POLY_NONCE"))
			_ = json.NewEncoder(w).Encode(types.APIKeyRaw{APIKey: "fresh-key", Secret: testSecret, Passphrase: "fresh-pass"})
		case r.Method == http.MethodGet && r.URL.Path == EndpointDeriveAPIKey:
			derives++
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	c := l1Client(t, server.URL)
	creds, err := c.CreateOrDeriveAPIKey(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, "fresh-key", creds.Key)
	assert.Equal(t, 1, creates)
	assert.Equal(t, 0, derives, "a successful create must not fall through to derive")
	assert.NoError(t, c.CanL2Auth(), "credentials must be installed on the client")
}

func TestCreateOrDeriveFallsBackWhenCredsExist(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDerive bool
	}{
		{
			name:       "409 conflict",
			status:     http.StatusConflict,
			body:       `{"error":"conflict"}`,
			wantDerive: true,
		},
		{
			name:       "400 with exists message",
			status:     http.StatusBadRequest,
			body:       `{"error":"api key already exists"}`,
			wantDerive: true,
		},
		{
			name:       "unrelated 400 is a real failure",
			status:     http.StatusBadRequest,
			body:       `{"error":"malformed signature"}`,
			wantDerive: false,
		},
		{
			name:       "server error is a real failure",
			status:     http.StatusInternalServerError,
			body:       `{"error":"boom"}`,
			wantDerive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derives := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				switch {
				case r.Method == http.MethodPost && r.URL.Path == EndpointCreateAPIKey:
					http.Error(w, tt.body, tt.status)
				case r.Method == http.MethodGet && r.URL.Path == EndpointDeriveAPIKey:
					derives++
					_ = json.NewEncoder(w).Encode(types.APIKeyRaw{APIKey: "derived-key", Secret: testSecret, Passphrase: "derived-pass"})
				}
			}))
			defer server.Close()

			c := l1Client(t, server.URL)
			creds, err := c.CreateOrDeriveAPIKey(context.Background(), nil)

			if !tt.wantDerive {
				require.Error(t, err)
				assert.NotErrorIs(t, err, ErrCredsExist)
				assert.Equal(t, 0, derives)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "derived-key", creds.Key)
			assert.Equal(t, 1, derives)
		})
	}
}

func TestCreateOrDeriveIsIdempotent(t *testing.T) {
	// first call creates; the retry hits the conflict and derives the same set
	creates := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == EndpointCreateAPIKey:
			creates++
			if creates == 1 {
				_ = json.NewEncoder(w).Encode(types.APIKeyRaw{APIKey: "key-A", Secret: testSecret, Passphrase: "pass-A"})
				return
			}
			http.Error(w, `{"error":"creds already exist"}`, http.StatusBadRequest)
		case r.Method == http.MethodGet && r.URL.Path == EndpointDeriveAPIKey:
			_ = json.NewEncoder(w).Encode(types.APIKeyRaw{APIKey: "key-A", Secret: testSecret, Passphrase: "pass-A"})
		}
	}))
	defer server.Close()

	c := l1Client(t, server.URL)
	first, err := c.CreateOrDeriveAPIKey(context.Background(), nil)
	require.NoError(t, err)
	second, err := c.CreateOrDeriveAPIKey(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, first, second, "retrying acquisition must yield the same credential set")
}

func TestCredsConflict(t *testing.T) {
	assert.True(t, credsConflict(&httpError{Status: http.StatusConflict, Body: "anything"}))
	assert.True(t, credsConflict(&httpError{Status: http.StatusBadRequest, Body: "creds already EXIST"}))
	assert.False(t, credsConflict(&httpError{Status: http.StatusBadRequest, Body: "bad signature"}))
	assert.False(t, credsConflict(&httpError{Status: http.StatusInternalServerError, Body: "exists"}))
}
