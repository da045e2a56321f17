package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyRedirectSignature checks the signature the checkout widget hands to
// the client after payment: HMAC-SHA256 over "orderRef|transactionRef" with
// the checkout key secret.
func VerifyRedirectSignature(secret, orderRef, transactionRef, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderRef + "|" + transactionRef))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// VerifyWebhookSignature checks the gateway's asynchronous delivery: HMAC
// over the raw request body with the webhook secret, which is distinct from
// the checkout secret. Verification must run over the bytes as received —
// re-serializing a parsed payload can change them.
func VerifyWebhookSignature(secret string, body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
