package secretstore

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/betbot/polyclob/clob/types"
)

// Well-known store keys. Wallets and API credentials are namespaced by
// address so one store can hold several identities.
const (
	keyWalletPrefix = "wallet:"
	keyCredsPrefix  = "creds:"
)

// SaveWalletKey stores a hex-encoded private key for an address.
func (s *Store) SaveWalletKey(address, privateKeyHex string) error {
	return s.SetString(keyWalletPrefix+address, privateKeyHex)
}

// LoadWalletKey returns the stored private key hex for an address.
func (s *Store) LoadWalletKey(address string) (string, bool, error) {
	return s.GetString(keyWalletPrefix + address)
}

// SaveCreds stores API credentials for an address.
func (s *Store) SaveCreds(address string, creds *types.APICreds) error {
	if creds == nil {
		return errors.New("secretstore: nil creds")
	}
	raw, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "encode creds")
	}
	return s.Set(keyCredsPrefix+address, raw)
}

// LoadCreds returns stored API credentials for an address, if any.
func (s *Store) LoadCreds(address string) (*types.APICreds, bool, error) {
	raw, found, err := s.Get(keyCredsPrefix + address)
	if err != nil || !found {
		return nil, found, err
	}
	var creds types.APICreds
	if err := json.Unmarshal(raw, &creds); err != nil {
		return nil, true, errors.Wrap(err, "decode creds")
	}
	return &creds, true, nil
}
