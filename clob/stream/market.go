package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/pkg/logger"
)

// MarketClient streams public order book activity for a set of assets.
// Events arrive on Events() as a tagged union; a malformed or unrecognized
// frame becomes a passthrough event rather than an error.
type MarketClient struct {
	core *coreConn

	subscriptions map[string]bool
	subMu         sync.RWMutex

	events chan MarketEvent
}

type marketSubscribeMsg struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

type marketUnsubscribeMsg struct {
	Type      string   `json:"type"`
	AssetsIDs []string `json:"assets_ids"`
}

// NewMarketClient builds a market stream client. cfg may be nil.
func NewMarketClient(cfg *Config) *MarketClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	wsURL := cfg.URL
	if wsURL == "" {
		wsURL = MarketWSURL
	}

	c := &MarketClient{
		subscriptions: make(map[string]bool),
		events:        make(chan MarketEvent, cfg.withDefaults().EventBufferSize),
	}
	c.core = newCoreConn(wsURL, cfg, logger.WithField("component", "market-stream"))
	c.core.handshake = c.handshakePayload
	c.core.onFrame = c.handleFrame
	return c
}

// Start connects and begins streaming. At least one asset must be subscribed
// first so the handshake carries a non-empty subscription set.
func (c *MarketClient) Start(ctx context.Context) error {
	c.subMu.RLock()
	empty := len(c.subscriptions) == 0
	c.subMu.RUnlock()
	if empty {
		return errors.New("no assets subscribed")
	}
	return c.core.start(ctx)
}

// Stop closes the socket.
func (c *MarketClient) Stop() { c.core.stop() }

// State reports the connection lifecycle phase.
func (c *MarketClient) State() State { return c.core.State() }

// Events returns the market event channel.
func (c *MarketClient) Events() <-chan MarketEvent { return c.events }

// Errors returns the asynchronous error channel.
func (c *MarketClient) Errors() <-chan error { return c.core.Errors() }

// Subscribe adds assets to the stream. Before Start it only records them for
// the handshake; on a live connection it also sends the subscribe message.
func (c *MarketClient) Subscribe(assetIDs ...string) error {
	c.subMu.Lock()
	added := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if !c.subscriptions[id] {
			c.subscriptions[id] = true
			added = append(added, id)
		}
	}
	c.subMu.Unlock()

	if len(added) == 0 || !c.core.isRunning() {
		return nil
	}
	return c.sendBatched("market", added)
}

// Unsubscribe removes assets from the stream.
func (c *MarketClient) Unsubscribe(assetIDs ...string) error {
	c.subMu.Lock()
	removed := make([]string, 0, len(assetIDs))
	for _, id := range assetIDs {
		if c.subscriptions[id] {
			delete(c.subscriptions, id)
			removed = append(removed, id)
		}
	}
	c.subMu.Unlock()

	if len(removed) == 0 || !c.core.isRunning() {
		return nil
	}
	for i := 0; i < len(removed); i += maxSubscribeBatch {
		end := min(i+maxSubscribeBatch, len(removed))
		if err := c.core.writeJSON(marketUnsubscribeMsg{Type: "unsubscribe", AssetsIDs: removed[i:end]}); err != nil {
			return errors.Wrap(err, "send unsubscribe")
		}
	}
	return nil
}

// SubscriptionCount reports the number of subscribed assets.
func (c *MarketClient) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

func (c *MarketClient) handshakePayload() (any, error) {
	c.subMu.RLock()
	ids := make([]string, 0, len(c.subscriptions))
	for id := range c.subscriptions {
		ids = append(ids, id)
	}
	c.subMu.RUnlock()
	return marketSubscribeMsg{Type: "market", AssetsIDs: ids}, nil
}

func (c *MarketClient) sendBatched(msgType string, ids []string) error {
	for i := 0; i < len(ids); i += maxSubscribeBatch {
		end := min(i+maxSubscribeBatch, len(ids))
		if err := c.core.writeJSON(marketSubscribeMsg{Type: msgType, AssetsIDs: ids[i:end]}); err != nil {
			return errors.Wrap(err, "send subscribe")
		}
	}
	return nil
}

// handleFrame dispatches one frame. The feed sends single objects and arrays
// of objects interchangeably.
func (c *MarketClient) handleFrame(data []byte) {
	if data[0] == '[' {
		var raws []json.RawMessage
		if err := json.Unmarshal(data, &raws); err != nil {
			c.deliver(MarketEvent{Type: EventText, Text: string(data)})
			return
		}
		for _, raw := range raws {
			c.dispatchOne(raw)
		}
		return
	}
	if data[0] != '{' {
		c.deliver(MarketEvent{Type: EventText, Text: string(data)})
		return
	}
	c.dispatchOne(data)
}

func (c *MarketClient) dispatchOne(data []byte) {
	var head struct {
		EventType EventType `json:"event_type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		c.deliver(MarketEvent{Type: EventText, Text: string(data)})
		return
	}

	switch head.EventType {
	case EventBook:
		var ev BookEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(MarketEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		c.deliver(MarketEvent{Type: EventBook, Book: &ev})
	case EventPriceChange:
		var ev PriceChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(MarketEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		if len(ev.Changes) == 0 && len(ev.PriceChanges) > 0 {
			ev.Changes = ev.PriceChanges
		}
		c.deliver(MarketEvent{Type: EventPriceChange, PriceChange: &ev})
	case EventTickSizeChange:
		var ev TickSizeChangeEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(MarketEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		c.deliver(MarketEvent{Type: EventTickSizeChange, TickSizeChange: &ev})
	case EventLastTradePrice:
		var ev LastTradePriceEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			c.deliver(MarketEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
			return
		}
		c.deliver(MarketEvent{Type: EventLastTradePrice, LastTradePrice: &ev})
	default:
		c.deliver(MarketEvent{Type: EventRaw, Raw: append(json.RawMessage(nil), data...)})
	}
}

func (c *MarketClient) deliver(ev MarketEvent) {
	select {
	case c.events <- ev:
	default:
		c.core.reportErr(errors.Errorf("event buffer full, dropped %s event", ev.Type))
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
