package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"

	"storefront/internal/domain"
)

// SignatureHeader carries the hex HMAC-SHA256 of a sandbox webhook body.
const SignatureHeader = "X-Sandbox-Signature"

// Sandbox is a local processor for development and tests. Checkout sends the
// customer straight to the success URL; payment outcomes arrive as signed
// JSON events posted to the webhook.
type Sandbox struct {
	Secret []byte
}

func NewSandbox(secret string) *Sandbox { return &Sandbox{Secret: []byte(secret)} }

func (s *Sandbox) Checkout(_ context.Context, o domain.Order, successURL, _ string) (string, error) {
	u, err := url.Parse(successURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("order", o.ID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (s *Sandbox) ParseWebhook(payload []byte, sig string) (Event, error) {
	want, err := hex.DecodeString(sig)
	if err != nil || !hmac.Equal(want, s.mac(payload)) {
		return Event{}, ErrSignature
	}
	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Sign returns the signature header value for payload.
func (s *Sandbox) Sign(payload []byte) string { return hex.EncodeToString(s.mac(payload)) }

func (s *Sandbox) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, s.Secret)
	h.Write(payload)
	return h.Sum(nil)
}
