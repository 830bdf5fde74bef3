// Package signing implements the two authentication layers of the CLOB API
// (wallet attestation and HMAC request signing) and EIP-712 order signatures.
package signing

const (
	// ClobDomainName is the EIP-712 domain of the auth attestation.
	ClobDomainName = "ClobAuthDomain"

	// ClobVersion is the EIP-712 domain version.
	ClobVersion = "1"

	// MsgToSign is the fixed attestation message; the server verifies it
	// verbatim.
	MsgToSign = "This message attests that I control the given wallet"

	// OrderDomainName is the EIP-712 domain of exchange orders.
	OrderDomainName = "Polymarket CTF Exchange"

	// OrderDomainVersion is the EIP-712 order domain version.
	OrderDomainVersion = "1"
)
