package payments

import "regexp"

// txHashRe matches a 0x-prefixed 32-byte EVM transaction hash.
var txHashRe = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)

// ValidTxHash reports whether the value looks like an on-chain transaction
// hash. Crypto orders stay unverified until staff confirm the transfer, so
// this only rejects obviously malformed references.
func ValidTxHash(value string) bool {
	return txHashRe.MatchString(value)
}
