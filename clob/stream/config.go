package stream

import "time"

const (
	defaultReconnectDelay    = 2 * time.Second
	defaultMaxReconnectDelay = 30 * time.Second
	defaultPingInterval      = 10 * time.Second
	defaultHandshakeTimeout  = 15 * time.Second
	defaultWriteTimeout      = 10 * time.Second

	// Polymarket caps market subscriptions at 100 assets per message.
	maxSubscribeBatch = 100

	defaultEventBufferSize = 1000
	defaultErrorBufferSize = 100
)

// Config tunes a stream client's connection behaviour. The zero value is
// usable; DefaultConfig fills in the tested defaults.
type Config struct {
	URL      string // override the default endpoint
	ProxyURL string // optional HTTP proxy for the dial

	ReconnectEnabled  bool
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	// MaxReconnectAttempts bounds the exponential backoff window, not the
	// retries: past it the client keeps dialing at MaxReconnectDelay.
	MaxReconnectAttempts int

	PingInterval     time.Duration
	WriteTimeout     time.Duration
	HandshakeTimeout time.Duration

	EventBufferSize int
	ErrorBufferSize int
}

// DefaultConfig returns the defaults used in production.
func DefaultConfig() *Config {
	return &Config{
		ReconnectEnabled:     true,
		ReconnectDelay:       defaultReconnectDelay,
		MaxReconnectDelay:    defaultMaxReconnectDelay,
		MaxReconnectAttempts: 10,
		PingInterval:         defaultPingInterval,
		WriteTimeout:         defaultWriteTimeout,
		HandshakeTimeout:     defaultHandshakeTimeout,
		EventBufferSize:      defaultEventBufferSize,
		ErrorBufferSize:      defaultErrorBufferSize,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.ReconnectDelay == 0 {
		out.ReconnectDelay = defaultReconnectDelay
	}
	if out.MaxReconnectDelay == 0 {
		out.MaxReconnectDelay = defaultMaxReconnectDelay
	}
	if out.MaxReconnectAttempts == 0 {
		out.MaxReconnectAttempts = 10
	}
	if out.PingInterval == 0 {
		out.PingInterval = defaultPingInterval
	}
	if out.WriteTimeout == 0 {
		out.WriteTimeout = defaultWriteTimeout
	}
	if out.HandshakeTimeout == 0 {
		out.HandshakeTimeout = defaultHandshakeTimeout
	}
	if out.EventBufferSize == 0 {
		out.EventBufferSize = defaultEventBufferSize
	}
	if out.ErrorBufferSize == 0 {
		out.ErrorBufferSize = defaultErrorBufferSize
	}
	return &out
}
