package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/signing"
	"github.com/betbot/polyclob/clob/types"
)

// ErrCredsExist distinguishes the "credentials already exist for this wallet"
// outcome of CreateAPIKey from real failures, so the derive fallback never
// swallows unrelated errors.
var ErrCredsExist = errors.New("api credentials already exist for this wallet")

// CreateAPIKey requests a fresh credential set (L1 auth). When the exchange
// already holds credentials for this signer it returns ErrCredsExist.
func (c *Client) CreateAPIKey(ctx context.Context, nonce *int64) (*types.APICreds, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	headers, err := signing.CreateL1Headers(c.authConfig.PrivateKey, c.authConfig.ChainID, nonce, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build L1 headers")
	}

	var raw types.APIKeyRaw
	if err := c.http.post(ctx, EndpointCreateAPIKey, headers.ToMap(), nil, &raw); err != nil {
		var he *httpError
		if errors.As(err, &he) && credsConflict(he) {
			return nil, ErrCredsExist
		}
		return nil, errors.Wrap(err, "create api key")
	}
	return &types.APICreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
}

// DeriveAPIKey deterministically re-derives the existing credential set for
// this signer and nonce (L1 auth).
func (c *Client) DeriveAPIKey(ctx context.Context, nonce *int64) (*types.APICreds, error) {
	if err := c.CanL1Auth(); err != nil {
		return nil, err
	}

	headers, err := signing.CreateL1Headers(c.authConfig.PrivateKey, c.authConfig.ChainID, nonce, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build L1 headers")
	}

	var raw types.APIKeyRaw
	if err := c.http.get(ctx, EndpointDeriveAPIKey, headers.ToMap(), nil, &raw); err != nil {
		return nil, errors.Wrap(err, "derive api key")
	}
	return &types.APICreds{Key: raw.APIKey, Secret: raw.Secret, Passphrase: raw.Passphrase}, nil
}

// CreateOrDeriveAPIKey is the idempotent acquisition protocol: try to create,
// and only on the creds-exist outcome fall back to derive. Retries therefore
// never leave the signer without valid credentials and never mint duplicate
// key sets. The result is installed on the client.
func (c *Client) CreateOrDeriveAPIKey(ctx context.Context, nonce *int64) (*types.APICreds, error) {
	creds, err := c.CreateAPIKey(ctx, nonce)
	switch {
	case err == nil:
		// fresh key set
	case errors.Is(err, ErrCredsExist):
		c.log.Debug("credentials already exist, deriving")
		creds, err = c.DeriveAPIKey(ctx, nonce)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	c.authConfig.Creds = creds
	return creds, nil
}

// credsConflict matches the server's "already exists" responses. The exchange
// reports the conflict as a 400 with a recognisable message (and some
// deployments use 409).
func credsConflict(he *httpError) bool {
	if he.Status == http.StatusConflict {
		return true
	}
	return he.Status == http.StatusBadRequest &&
		strings.Contains(strings.ToLower(he.Body), "exist")
}
