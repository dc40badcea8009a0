package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/middleware"
	"github.com/jamiljuma2/edulink/internal/usecase/subscription"
	"github.com/jamiljuma2/edulink/pkg/response"
)

type SubscriptionHandler struct {
	svc    *subscription.Service
	logger *zap.Logger
}

func NewSubscriptionHandler(svc *subscription.Service, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, logger: logger}
}

type subscriptionCheckoutRequest struct {
	Plan string `json:"plan"`
}

// Checkout creates an inactive subscription and quotes the price in KES.
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req subscriptionCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	quote, err := h.svc.Checkout(r.Context(), principal, req.Plan)
	if err != nil {
		h.logger.Warn("subscription checkout rejected",
			zap.String("user_id", principal.UserID),
			zap.String("plan", req.Plan),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"subscription_id": quote.SubscriptionID,
		"amount":          quote.AmountKES,
		"currency":        "KES",
		"rate":            quote.Rate,
	})
}

type subscriptionPayRequest struct {
	SubscriptionID uuid.UUID `json:"subscriptionId"`
	Phone          string    `json:"phone"`
}

// Pay pushes the plan charge to the writer's phone.
func (h *SubscriptionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req subscriptionPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubscriptionID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "subscriptionId and phone required")
		return
	}

	reference, err := h.svc.Pay(r.Context(), principal, req.SubscriptionID, req.Phone)
	if err != nil {
		h.logger.Warn("subscription payment rejected",
			zap.String("user_id", principal.UserID),
			zap.String("subscription_id", req.SubscriptionID.String()),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"reference": reference})
}
