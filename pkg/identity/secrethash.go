package identity

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSecretHash computes the SECRET_HASH authentication parameter the
// user pool requires from confidential clients: the base64 encoding of
// HMAC-SHA256 over username followed by client ID, keyed with the app client
// secret. The user pool recomputes and compares it, so the concatenation
// order and encoding must not change.
func ComputeSecretHash(username string, clientID string, clientSecret string) string {
	mac := hmac.New(sha256.New, []byte(clientSecret))
	mac.Write([]byte(username + clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
