package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifySignature checks the X-Shopify-Hmac-Sha256 header against the raw
// request body. It must be given the exact bytes received: any
// re-serialization changes the digest.
func VerifySignature(rawBody []byte, header string, secret string) bool {
	if header == "" || secret == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(header))
}
