// Package client implements the CLOB trading client: credential acquisition,
// metadata resolution and caching, order construction and submission, and the
// paginated read paths.
package client

import (
	"crypto/ecdsa"

	"github.com/sirupsen/logrus"

	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/cache"
	"github.com/betbot/polyclob/pkg/logger"
	"github.com/betbot/polyclob/pkg/ratelimit"
)

// Client is a CLOB API client bound to one signer. The metadata caches are
// scoped to the instance and never invalidated; create a new client to see
// fresh values.
type Client struct {
	host       string
	chainID    types.Chain
	authConfig *AuthConfig
	http       *httpClient
	limiter    *ratelimit.Manager
	log        *logrus.Entry

	// per-token metadata, read-through, never refreshed for the lifetime
	// of the instance
	tickSizes *cache.InMemoryCache[string, types.TickSize]
	negRisk   *cache.InMemoryCache[string, bool]
	feeRates  *cache.InMemoryCache[string, int]

	signatureType types.SignatureType
	funderAddress string
}

// NewClient builds a client. privateKey may be nil for public read paths;
// creds may be nil until acquired via CreateOrDeriveAPIKey.
func NewClient(host string, chainID types.Chain, privateKey *ecdsa.PrivateKey, creds *types.APICreds) *Client {
	return &Client{
		host:    host,
		chainID: chainID,
		authConfig: &AuthConfig{
			PrivateKey: privateKey,
			ChainID:    chainID,
			Creds:      creds,
		},
		http:          newHTTPClient(host),
		limiter:       ratelimit.NewManager(),
		log:           logger.WithField("component", "clob-client"),
		tickSizes:     cache.NewInMemoryCache[string, types.TickSize](0),
		negRisk:       cache.NewInMemoryCache[string, bool](0),
		feeRates:      cache.NewInMemoryCache[string, int](0),
		signatureType: types.SignatureTypeEOA,
	}
}

// SetLogger replaces the client's log sink. Useful for routing diagnostics
// into a caller-owned logger in tests or embedding applications.
func (c *Client) SetLogger(entry *logrus.Entry) {
	if entry != nil {
		c.log = entry
	}
}

// SetFunder routes maker funds through a proxy wallet. signatureType selects
// the proxy flavour (Magic / Gnosis Safe).
func (c *Client) SetFunder(address string, signatureType types.SignatureType) {
	c.funderAddress = address
	c.signatureType = signatureType
}

// Host returns the REST base URL.
func (c *Client) Host() string {
	return c.host
}

// ChainID returns the network the client signs for.
func (c *Client) ChainID() types.Chain {
	return c.chainID
}
