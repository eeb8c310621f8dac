// Package crypto provides cryptographic primitives shared across the
// game server. Today that is HMAC request signing, used by the
// provisioner webhook to authenticate orchestrator deliveries.
package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
)

// HMACSign generates an HMAC-SHA256 signature.
func HMACSign(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// HMACVerify verifies an HMAC-SHA256 signature.
func HMACVerify(key, data, signature []byte) bool {
	expectedSig := HMACSign(key, data)
	return hmac.Equal(signature, expectedSig)
}
