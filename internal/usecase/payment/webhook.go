package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jamiljuma2/edulink/internal/domain"
)

// ErrMissingReference means the webhook body carried no rail transaction id.
var ErrMissingReference = errors.New("webhook payload missing transaction reference")

// VerifySignature checks an HMAC-SHA256 hex signature over the raw request
// body. Verification only applies when both a shared secret and a signature
// header are present; the comparison is constant-time.
func VerifySignature(secret string, raw []byte, signature string) error {
	if secret == "" || signature == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(raw)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// ParseWebhook adapts the rail's event envelope into a normalized outcome.
func ParseWebhook(raw []byte) (domain.RailOutcome, error) {
	var payload struct {
		Event string `json:"event"`
		Data  struct {
			Status           string `json:"status"`
			TransactionID    string `json:"transactionId"`
			TransactionIDAlt string `json:"transaction_id"`
		} `json:"data"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return domain.RailOutcome{}, fmt.Errorf("decode webhook payload: %w", err)
		}
	}

	reference := payload.Data.TransactionID
	if reference == "" {
		reference = payload.Data.TransactionIDAlt
	}
	if reference == "" {
		return domain.RailOutcome{}, ErrMissingReference
	}

	return domain.RailOutcome{
		Reference: reference,
		Status:    domain.NormalizeStatus(payload.Event, payload.Data.Status),
	}, nil
}
