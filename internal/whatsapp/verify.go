package whatsapp

import (
	"crypto/subtle"
	"net/url"
)

// VerifyChallenge answers the subscription handshake. It returns the
// challenge to echo and true only for mode=subscribe with the right token.
func VerifyChallenge(q url.Values, secret string) (string, bool) {
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || challenge == "" || secret == "" {
		return "", false
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
		return "", false
	}
	return challenge, true
}
