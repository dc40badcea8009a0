package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/usecase/payment"
	"github.com/jamiljuma2/edulink/pkg/response"
)

type AdminHandler struct {
	svc    *payment.Service
	logger *zap.Logger
}

func NewAdminHandler(svc *payment.Service, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{svc: svc, logger: logger}
}

// ListPayments returns the 50 most recent ledger entries.
func (h *AdminHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	txns, err := h.svc.RecentTransactions(r.Context(), 50)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"payments": transactionViews(txns)})
}

type approveWithdrawalRequest struct {
	TransactionID uuid.UUID `json:"transactionId"`
}

// ApproveWithdrawal marks a payout successful and debits the wallet.
func (h *AdminHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req approveWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TransactionID == uuid.Nil {
		response.Error(w, http.StatusBadRequest, "transactionId required")
		return
	}

	if err := h.svc.ApprovePayout(r.Context(), req.TransactionID); err != nil {
		h.logger.Warn("withdrawal approval failed",
			zap.String("transaction_id", req.TransactionID.String()),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{"ok": true})
}
