package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/logger"
)

// UserClient streams the authenticated user's order and trade events. The
// handshake carries the API credentials, so construction fails fast when no
// credentials are configured.
type UserClient struct {
	core  *coreConn
	creds *types.APICreds

	markets map[string]bool
	mktMu   sync.RWMutex

	events chan UserEvent
}

type userSubscribeMsg struct {
	Auth    *types.APICreds `json:"auth"`
	Markets []string        `json:"markets"`
	Type    string          `json:"type"`
}

// NewUserClient builds a user stream client for a set of market condition
// ids. Credentials are mandatory: the server closes unauthenticated user
// sockets immediately.
func NewUserClient(creds *types.APICreds, markets []string, cfg *Config) (*UserClient, error) {
	if creds == nil || creds.Key == "" || creds.Secret == "" || creds.Passphrase == "" {
		return nil, ErrAuthenticationRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	wsURL := cfg.URL
	if wsURL == "" {
		wsURL = UserWSURL
	}

	c := &UserClient{
		creds:   creds,
		markets: make(map[string]bool),
		events:  make(chan UserEvent, cfg.withDefaults().EventBufferSize),
	}
	for _, m := range markets {
		c.markets[m] = true
	}
	c.core = newCoreConn(wsURL, cfg, logger.WithField("component", "user-stream"))
	c.core.handshake = c.handshakePayload
	c.core.onFrame = c.handleFrame
	return c, nil
}

// Start connects and begins streaming.
func (c *UserClient) Start(ctx context.Context) error { return c.core.start(ctx) }

// Stop closes the socket.
func (c *UserClient) Stop() { c.core.stop() }

// State reports the connection lifecycle phase.
func (c *UserClient) State() State { return c.core.State() }

// Events returns the user event channel.
func (c *UserClient) Events() <-chan UserEvent { return c.events }

// Errors returns the asynchronous error channel.
func (c *UserClient) Errors() <-chan error { return c.core.Errors() }

// AddMarkets extends the market filter on a live connection.
func (c *UserClient) AddMarkets(markets ...string) error {
	c.mktMu.Lock()
	added := false
	for _, m := range markets {
		if !c.markets[m] {
			c.markets[m] = true
			added = true
		}
	}
	c.mktMu.Unlock()

	if !added || !c.core.isRunning() {
		return nil
	}
	payload, _ := c.handshakePayload()
	return errors.Wrap(c.core.writeJSON(payload), "send market filter")
}

func (c *UserClient) handshakePayload() (any, error) {
	c.mktMu.RLock()
	markets := make([]string, 0, len(c.markets))
	for m := range c.markets {
		markets = append(markets, m)
	}
	c.mktMu.RUnlock()
	return userSubscribeMsg{Auth: c.creds, Markets: markets, Type: "USER"}, nil
}

func (c *UserClient) handleFrame(data []byte) {
	if data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			c.deliver(UserEvent{Type: EventText, Text: string(data)})
			return
		}
		for _, raw := range raws {
			c.dispatchOne(raw)
		}
		return
	}
	if data[0] != '{' {
		c.deliver(UserEvent{Type: EventText, Text: string(data)})
		return
	}
	c.dispatchOne(data)
}

func (c *UserClient) dispatchOne(data []byte) {
	var head struct {
		EventType EventType `json:"event_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		c.deliver(UserEvent{Type: EventText, Text: string(data)})
		return
	}

	switch head.EventType {
	case EventOrder:
		var ev OrderEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(UserEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		c.deliver(UserEvent{Type: EventOrder, Order: &ev})
	case EventTrade:
		var ev TradeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(UserEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		c.deliver(UserEvent{Type: EventTrade, Trade: &ev})
	default:
		c.deliver(UserEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
	}
}

func (c *UserClient) deliver(ev UserEvent) {
	select {
	case c.events <- ev:
	default:
		c.core.reportErr(errors.Errorf("event buffer full, dropped %s event", ev.Type))
	}
}
