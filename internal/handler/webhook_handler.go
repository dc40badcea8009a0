package handler

import (
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/usecase/payment"
	"github.com/jamiljuma2/edulink/pkg/response"
)

// signatureHeader carries the rail's HMAC of the raw body.
const signatureHeader = "x-lipana-signature"

type WebhookHandler struct {
	svc    *payment.Service
	secret string
	logger *zap.Logger
}

func NewWebhookHandler(svc *payment.Service, secret string, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, secret: secret, logger: logger}
}

// Handle processes a rail outcome delivery. Signature verification happens
// before anything touches the payload or the ledger; unknown references are
// acknowledged so the rail stops retrying.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := payment.VerifySignature(h.secret, raw, r.Header.Get(signatureHeader)); err != nil {
		h.logger.Error("webhook signature rejected",
			zap.String("remote_addr", r.RemoteAddr))
		response.Error(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	outcome, err := payment.ParseWebhook(raw)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "invalid payload")
		return
	}

	h.logger.Info("webhook received",
		zap.String("reference", outcome.Reference),
		zap.String("status", string(outcome.Status)))

	res, err := h.svc.ApplyOutcome(r.Context(), outcome)
	if err != nil {
		h.logger.Error("webhook reconciliation failed",
			zap.String("reference", outcome.Reference),
			zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "reconciliation failed")
		return
	}
	if !res.Found {
		// Deliberate policy, not an error: foreign or purged references get
		// a clean ack so the rail's retry loop ends.
		response.JSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"ok":       true,
		"status":   res.Status,
		"credited": res.Credited,
	})
}
