package signing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/polyclob/clob/types"
)

// well-known test key, never funded
const (
	testKeyHex  = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testAddress = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestGetAddressFromPrivateKey(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)
	assert.Equal(t, testAddress, GetAddressFromPrivateKey(key).Hex())
}

func TestCreateL1Headers(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	ts := int64(1700000000)
	nonce := int64(7)
	headers, err := CreateL1Headers(key, types.ChainPolygon, &nonce, &ts)
	require.NoError(t, err)

	assert.Equal(t, testAddress, headers.PolyAddress)
	assert.Equal(t, "1700000000", headers.PolyTimestamp)
	assert.Equal(t, "7", headers.PolyNonce)

	// 65-byte recoverable signature, hex with 0x prefix
	assert.True(t, strings.HasPrefix(headers.PolySignature, "0x"))
	assert.Len(t, headers.PolySignature, 2+130)
}

func TestCreateL1HeadersDefaultNonce(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	ts := int64(1700000000)
	headers, err := CreateL1Headers(key, types.ChainPolygon, nil, &ts)
	require.NoError(t, err)
	assert.Equal(t, "0", headers.PolyNonce)
}

func TestBuildClobEip712SignatureDeterministic(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	sig1, err := BuildClobEip712Signature(key, types.ChainPolygon, 1700000000, 0)
	require.NoError(t, err)
	sig2, err := BuildClobEip712Signature(key, types.ChainPolygon, 1700000000, 0)
	require.NoError(t, err)
	assert.Equal(t, sig1, sig2)

	// any input change must change the attestation
	sig3, err := BuildClobEip712Signature(key, types.ChainPolygon, 1700000000, 1)
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig3)

	sig4, err := BuildClobEip712Signature(key, types.ChainAmoy, 1700000000, 0)
	require.NoError(t, err)
	assert.NotEqual(t, sig1, sig4)
}

func TestCreateL2Headers(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	creds := &types.APICreds{
		Key:        "key-1",
		Secret:     testSecret,
		Passphrase: "pass-1",
	}
	body := `{"hash":"0x123"}`
	ts := int64(1700000000)

	headers, err := CreateL2Headers(key, creds, &types.L2HeaderArgs{
		Method:      "POST",
		RequestPath: "/order",
		Body:        &body,
	}, &ts)
	require.NoError(t, err)

	assert.Equal(t, testAddress, headers.PolyAddress)
	assert.Equal(t, "key-1", headers.PolyAPIKey)
	assert.Equal(t, "pass-1", headers.PolyPassphrase)
	assert.Equal(t, "1700000000", headers.PolyTimestamp)
	assert.Equal(t, "BvJONiJBA4wzjE16YnISFgAdyXzdqJe11i5tBLNeYj0=", headers.PolySignature)
}

func TestL2HeaderMap(t *testing.T) {
	key, err := PrivateKeyFromHex(testKeyHex)
	require.NoError(t, err)

	creds := &types.APICreds{Key: "key-1", Secret: testSecret, Passphrase: "pass-1"}
	ts := int64(1700000000)
	headers, err := CreateL2Headers(key, creds, &types.L2HeaderArgs{
		Method:      "GET",
		RequestPath: "/data/orders",
	}, &ts)
	require.NoError(t, err)

	m := headers.ToMap()
	for _, name := range []string{"POLY_ADDRESS", "POLY_SIGNATURE", "POLY_TIMESTAMP", "POLY_API_KEY", "POLY_PASSPHRASE"} {
		assert.NotEmpty(t, m[name], name)
	}
}
