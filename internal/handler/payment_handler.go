package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/middleware"
	"github.com/jamiljuma2/edulink/internal/usecase/payment"
	"github.com/jamiljuma2/edulink/pkg/response"
)

type PaymentHandler struct {
	svc    *payment.Service
	logger *zap.Logger
}

func NewPaymentHandler(svc *payment.Service, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{svc: svc, logger: logger}
}

type topUpRequest struct {
	Phone  string          `json:"phone"`
	Amount decimal.Decimal `json:"amount"`
}

// TopUp starts a mobile push top-up and returns the rail reference for
// polling.
func (h *PaymentHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reference, err := h.svc.TopUp(r.Context(), principal, req.Phone, req.Amount)
	if err != nil {
		h.logger.Warn("topup rejected",
			zap.String("user_id", principal.UserID),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"reference": reference})
}

type checkoutRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// Checkout opens a card checkout and returns the approval redirect URL.
func (h *PaymentHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	approveURL, err := h.svc.CreateCheckout(r.Context(), principal, req.Amount)
	if err != nil {
		h.logger.Warn("checkout rejected",
			zap.String("user_id", principal.UserID),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"checkout_url": approveURL})
}

type captureRequest struct {
	OrderID string `json:"orderId"`
}

// Capture finalizes a checkout order after the buyer approves it.
func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req captureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		response.Error(w, http.StatusBadRequest, "orderId required")
		return
	}

	if err := h.svc.Capture(r.Context(), principal, req.OrderID); err != nil {
		h.logger.Warn("capture failed",
			zap.String("user_id", principal.UserID),
			zap.String("order_id", req.OrderID),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"captured": true})
}

// Status reports a transaction's lifecycle state by rail reference.
func (h *PaymentHandler) Status(w http.ResponseWriter, r *http.Request) {
	reference := r.URL.Query().Get("reference")
	if reference == "" {
		response.Error(w, http.StatusBadRequest, "reference required")
		return
	}

	status, err := h.svc.StatusByReference(r.Context(), reference)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"reference": reference,
		"status":    status,
	})
}

// Wallet returns the caller's balance.
func (h *PaymentHandler) Wallet(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	wallet, err := h.svc.Wallet(r.Context(), principal)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"balance":  wallet.Balance,
		"currency": wallet.Currency,
	})
}
