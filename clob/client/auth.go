package client

import (
	"crypto/ecdsa"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/signing"
	"github.com/betbot/polyclob/clob/types"
)

// AuthConfig holds the signing key and level-2 credentials.
type AuthConfig struct {
	PrivateKey *ecdsa.PrivateKey
	ChainID    types.Chain
	Creds      *types.APICreds
}

// CanL1Auth reports whether wallet-signature auth is possible.
func (c *Client) CanL1Auth() error {
	if c.authConfig == nil || c.authConfig.PrivateKey == nil {
		return errors.New("L1 auth unavailable: no private key configured")
	}
	return nil
}

// CanL2Auth reports whether API-key auth is possible.
func (c *Client) CanL2Auth() error {
	if err := c.CanL1Auth(); err != nil {
		return err
	}
	if c.authConfig.Creds == nil {
		return errors.New("L2 auth unavailable: no api credentials configured")
	}
	return nil
}

// SetAPICreds installs credentials obtained elsewhere (e.g. a secretstore).
func (c *Client) SetAPICreds(creds *types.APICreds) {
	c.authConfig.Creds = creds
}

// Address returns the signer's wallet address.
func (c *Client) Address() (common.Address, error) {
	if err := c.CanL1Auth(); err != nil {
		return common.Address{}, err
	}
	return signing.GetAddressFromPrivateKey(c.authConfig.PrivateKey), nil
}

// buildAuthHeaders computes the level-2 header set for a request. Pure in the
// signer, credentials, and request shape; the body string must be the exact
// bytes that will go on the wire.
func (c *Client) buildAuthHeaders(method, path string, body *string) (map[string]string, error) {
	headers, err := signing.CreateL2Headers(c.authConfig.PrivateKey, c.authConfig.Creds, &types.L2HeaderArgs{
		Method:      method,
		RequestPath: path,
		Body:        body,
	}, nil)
	if err != nil {
		return nil, err
	}
	return headers.ToMap(), nil
}

// marshalBody renders a request body once so the signed bytes and the sent
// bytes cannot diverge.
func marshalBody(v any) ([]byte, string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, "", errors.Wrap(err, "marshal request body")
	}
	return raw, string(raw), nil
}
