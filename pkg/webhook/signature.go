package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Sign computes the Tally webhook signature for a raw request body:
// base64(HMAC-SHA256(body, secret)).
func Sign(rawBody []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the tally-signature header value against the raw request body.
// The comparison is constant-time. Verification must run before the body is
// parsed or anything touches the store.
func Verify(rawBody []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := Sign(rawBody, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
