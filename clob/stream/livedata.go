package stream

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/types"
	"github.com/betbot/polyclob/pkg/logger"
)

// Live-data topics.
const (
	TopicCryptoPrices          = "crypto_prices"
	TopicCryptoPricesChainlink = "crypto_prices_chainlink"
	TopicActivity              = "activity"
	TopicComments              = "comments"
	TopicReactions             = "reactions"
	TopicClobMarket            = "clob_market"
	TopicClobUser              = "clob_user"
	TopicRFQ                   = "rfq"
)

// SubscriptionAction is the action field of a live-data control message.
type SubscriptionAction string

const (
	ActionSubscribe   SubscriptionAction = "subscribe"
	ActionUnsubscribe SubscriptionAction = "unsubscribe"
)

// Subscription selects one topic/type pair on the live-data feed. ClobAuth
// is filled in by the client for topics that need it; callers never set it.
type Subscription struct {
	Topic    string    `json:"topic"`
	Type     string    `json:"type"`
	Filters  string    `json:"filters,omitempty"`
	ClobAuth *clobAuth `json:"clob_auth,omitempty"`
}

type subscriptionRequest struct {
	Action        SubscriptionAction `json:"action"`
	Subscriptions []Subscription     `json:"subscriptions"`
}

// LiveMessage is one frame from the live-data feed. Payload stays raw; the
// Parse helpers in handlers.go decode the known topic shapes.
type LiveMessage struct {
	Topic        string          `json:"topic"`
	Type         string          `json:"type"`
	Timestamp    int64           `json:"timestamp"`
	Payload      json.RawMessage `json:"payload"`
	ConnectionID string          `json:"connection_id,omitempty"`
}

// LiveHandler consumes messages for one topic.
type LiveHandler func(msg *LiveMessage) error

// LiveDataClient streams the multi-topic live-data feed. Handlers are keyed
// by topic; "*" receives everything, including frames no topic handler
// claims.
type LiveDataClient struct {
	core  *coreConn
	creds *types.APICreds

	handlers  map[string]LiveHandler
	handlerMu sync.RWMutex

	subscriptions []Subscription
	subMu         sync.RWMutex
}

// NewLiveDataClient builds a live-data client. creds may be nil when no
// authenticated topic will be subscribed.
func NewLiveDataClient(creds *types.APICreds, cfg *Config) *LiveDataClient {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	wsURL := cfg.URL
	if wsURL == "" {
		wsURL = LiveDataWSURL
	}

	c := &LiveDataClient{
		creds:    creds,
		handlers: make(map[string]LiveHandler),
	}
	c.core = newCoreConn(wsURL, cfg, logger.WithField("component", "live-data-stream"))
	c.core.handshake = c.handshakePayload
	c.core.onFrame = c.handleFrame
	return c
}

// Start connects and begins streaming the recorded subscriptions.
func (c *LiveDataClient) Start(ctx context.Context) error {
	c.subMu.RLock()
	empty := len(c.subscriptions) == 0
	c.subMu.RUnlock()
	if empty {
		return errors.New("no subscriptions recorded")
	}
	return c.core.start(ctx)
}

// Stop closes the socket.
func (c *LiveDataClient) Stop() { c.core.stop() }

// State reports the connection lifecycle phase.
func (c *LiveDataClient) State() State { return c.core.State() }

// Errors returns the asynchronous error channel.
func (c *LiveDataClient) Errors() <-chan error { return c.core.Errors() }

// RegisterHandler attaches a handler to a topic. Use "*" for a wildcard.
func (c *LiveDataClient) RegisterHandler(topic string, handler LiveHandler) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	c.handlers[topic] = handler
}

// UnregisterHandler detaches a topic handler.
func (c *LiveDataClient) UnregisterHandler(topic string) {
	c.handlerMu.Lock()
	defer c.handlerMu.Unlock()
	delete(c.handlers, topic)
}

// Subscribe records subscriptions and, on a live connection, sends them.
// Topics that need credentials are checked before any network activity:
// subscribing clob_user without configured creds fails with
// ErrAuthenticationRequired.
func (c *LiveDataClient) Subscribe(subs ...Subscription) error {
	prepared := make([]Subscription, 0, len(subs))
	for _, sub := range subs {
		if sub.Topic == TopicClobUser {
			if c.creds == nil || c.creds.Key == "" || c.creds.Secret == "" || c.creds.Passphrase == "" {
				return ErrAuthenticationRequired
			}
			sub.ClobAuth = newClobAuth(c.creds)
		}
		prepared = append(prepared, sub)
	}

	c.subMu.Lock()
	c.subscriptions = append(c.subscriptions, prepared...)
	c.subMu.Unlock()

	if !c.core.isRunning() {
		return nil
	}
	return errors.Wrap(
		c.core.writeJSON(subscriptionRequest{Action: ActionSubscribe, Subscriptions: prepared}),
		"send subscribe",
	)
}

// Unsubscribe drops matching topic/type pairs.
func (c *LiveDataClient) Unsubscribe(subs ...Subscription) error {
	c.subMu.Lock()
	kept := c.subscriptions[:0]
	for _, existing := range c.subscriptions {
		drop := false
		for _, sub := range subs {
			if existing.Topic == sub.Topic && existing.Type == sub.Type {
				drop = true
				break
			}
		}
		if !drop {
			kept = append(kept, existing)
		}
	}
	c.subscriptions = kept
	c.subMu.Unlock()

	if !c.core.isRunning() {
		return nil
	}
	return errors.Wrap(
		c.core.writeJSON(subscriptionRequest{Action: ActionUnsubscribe, Subscriptions: subs}),
		"send unsubscribe",
	)
}

func (c *LiveDataClient) handshakePayload() (any, error) {
	c.subMu.RLock()
	subs := make([]Subscription, len(c.subscriptions))
	copy(subs, c.subscriptions)
	c.subMu.RUnlock()

	if len(subs) == 0 {
		return nil, errors.New("no subscriptions recorded")
	}
	return subscriptionRequest{Action: ActionSubscribe, Subscriptions: subs}, nil
}

func (c *LiveDataClient) handleFrame(data []byte) {
	if len(data) == 0 {
		return
	}
	if data[0] != '{' {
		c.dispatch(&LiveMessage{Type: string(EventText), Payload: append(json.RawMessage(nil), data...)})
		return
	}

	var msg LiveMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.dispatch(&LiveMessage{Type: string(EventRaw), Payload: append(json.RawMessage(nil), data...)})
		return
	}

	// subscription acks carry no business payload
	if msg.Type == string(ActionSubscribe) || msg.Type == string(ActionUnsubscribe) {
		c.core.log.WithField("topic", msg.Topic).Debugf("subscription ack: %s", msg.Type)
		return
	}
	c.dispatch(&msg)
}

func (c *LiveDataClient) dispatch(msg *LiveMessage) {
	c.handlerMu.RLock()
	handler, ok := c.handlers[msg.Topic]
	wildcard, hasWildcard := c.handlers["*"]
	c.handlerMu.RUnlock()

	if ok && handler != nil {
		if err := handler(msg); err != nil {
			c.core.log.WithField("topic", msg.Topic).WithError(err).Warn("handler error")
		}
	}
	if hasWildcard && wildcard != nil {
		if err := wildcard(msg); err != nil {
			c.core.log.WithError(err).Warn("wildcard handler error")
		}
	}
}
