// Package config loads client configuration from YAML or JSON files with
// environment variable overlays.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/betbot/polyclob/clob/types"
)

type WalletConfig struct {
	PrivateKey    string `yaml:"private_key" json:"private_key"`
	FunderAddress string `yaml:"funder_address" json:"funder_address"`
	SignatureType int    `yaml:"signature_type" json:"signature_type"`
}

// CredsConfig holds pre-existing API credentials. Leave empty to acquire
// them through create/derive instead.
type CredsConfig struct {
	Key        string `yaml:"key" json:"key"`
	Secret     string `yaml:"secret" json:"secret"`
	Passphrase string `yaml:"passphrase" json:"passphrase"`
}

type HostsConfig struct {
	Clob       string `yaml:"clob" json:"clob"`
	DataAPI    string `yaml:"data_api" json:"data_api"`
	MarketWS   string `yaml:"market_ws" json:"market_ws"`
	UserWS     string `yaml:"user_ws" json:"user_ws"`
	LiveDataWS string `yaml:"live_data_ws" json:"live_data_ws"`
}

// StoreConfig configures the local encrypted secret store.
type StoreConfig struct {
	Path          string `yaml:"path" json:"path"`
	EncryptionKey string `yaml:"encryption_key" json:"encryption_key"`
}

type Config struct {
	Wallet  WalletConfig `yaml:"wallet" json:"wallet"`
	Creds   CredsConfig  `yaml:"creds" json:"creds"`
	Hosts   HostsConfig  `yaml:"hosts" json:"hosts"`
	Store   StoreConfig  `yaml:"store" json:"store"`
	ChainID int64        `yaml:"chain_id" json:"chain_id"`

	LogLevel string `yaml:"log_level" json:"log_level"`
	LogFile  string `yaml:"log_file" json:"log_file"`
}

// Production service addresses.
const (
	DefaultClobHost     = "https://clob.polymarket.com"
	DefaultDataHost     = "https://data-api.polymarket.com"
	DefaultMarketWSHost = "wss://ws-subscriptions-clob.polymarket.com/ws/market"
	DefaultUserWSHost   = "wss://ws-subscriptions-clob.polymarket.com/ws/user"
	DefaultLiveDataHost = "wss://ws-live-data.polymarket.com"
)

// LoadDotenv loads .env files when present. Existing environment variables
// win over file values.
func LoadDotenv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load reads a YAML or JSON config file, overlays environment variables, and
// fills in defaults. An empty filePath builds the config from the
// environment alone.
func Load(filePath string) (*Config, error) {
	cfg := &Config{}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse yaml config: %w", err)
			}
		case ".json":
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse json config: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported config format %s (want .yaml, .yml or .json)", ext)
		}
	}

	overlayEnv(&cfg.Wallet.PrivateKey, "WALLET_PRIVATE_KEY")
	overlayEnv(&cfg.Wallet.FunderAddress, "WALLET_FUNDER_ADDRESS")
	overlayEnv(&cfg.Creds.Key, "CLOB_API_KEY")
	overlayEnv(&cfg.Creds.Secret, "CLOB_API_SECRET")
	overlayEnv(&cfg.Creds.Passphrase, "CLOB_API_PASSPHRASE")
	overlayEnv(&cfg.Hosts.Clob, "CLOB_HOST")
	overlayEnv(&cfg.Hosts.DataAPI, "DATA_API_HOST")
	overlayEnv(&cfg.Store.Path, "SECRET_STORE_PATH")
	overlayEnv(&cfg.Store.EncryptionKey, "SECRET_STORE_KEY")
	overlayEnv(&cfg.LogLevel, "LOG_LEVEL")
	overlayEnv(&cfg.LogFile, "LOG_FILE")
	if v := os.Getenv("CHAIN_ID"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.ChainID = id
		}
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Hosts.Clob == "" {
		c.Hosts.Clob = DefaultClobHost
	}
	if c.Hosts.DataAPI == "" {
		c.Hosts.DataAPI = DefaultDataHost
	}
	if c.Hosts.MarketWS == "" {
		c.Hosts.MarketWS = DefaultMarketWSHost
	}
	if c.Hosts.UserWS == "" {
		c.Hosts.UserWS = DefaultUserWSHost
	}
	if c.Hosts.LiveDataWS == "" {
		c.Hosts.LiveDataWS = DefaultLiveDataHost
	}
	if c.ChainID == 0 {
		c.ChainID = int64(types.ChainPolygon)
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// APICreds returns the configured credentials, or nil when incomplete.
func (c *Config) APICreds() *types.APICreds {
	if c.Creds.Key == "" || c.Creds.Secret == "" || c.Creds.Passphrase == "" {
		return nil
	}
	return &types.APICreds{
		Key:        c.Creds.Key,
		Secret:     c.Creds.Secret,
		Passphrase: c.Creds.Passphrase,
	}
}

// Validate checks the minimum configuration needed for signing.
func (c *Config) Validate() error {
	if c.Wallet.PrivateKey == "" {
		return fmt.Errorf("WALLET_PRIVATE_KEY is not set")
	}
	chain := types.Chain(c.ChainID)
	if chain != types.ChainPolygon && chain != types.ChainAmoy {
		return fmt.Errorf("unsupported chain_id: %d", c.ChainID)
	}
	return nil
}

func overlayEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
