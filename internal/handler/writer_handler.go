package handler

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/middleware"
	"github.com/jamiljuma2/edulink/internal/usecase/payment"
	"github.com/jamiljuma2/edulink/pkg/response"
)

type WriterHandler struct {
	svc    *payment.Service
	logger *zap.Logger
}

func NewWriterHandler(svc *payment.Service, logger *zap.Logger) *WriterHandler {
	return &WriterHandler{svc: svc, logger: logger}
}

// Earnings returns the writer's wallet and payout history.
func (h *WriterHandler) Earnings(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	wallet, payouts, err := h.svc.Earnings(r.Context(), principal)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"balance":     wallet.Balance,
		"currency":    wallet.Currency,
		"withdrawals": transactionViews(payouts),
	})
}

type withdrawRequest struct {
	Phone  string          `json:"phone"`
	Amount decimal.Decimal `json:"amount"`
}

// Withdraw records a payout request; the wallet is only debited on admin
// approval.
func (h *WriterHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.GetPrincipal(r.Context())

	var req withdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.Withdraw(r.Context(), principal, req.Phone, req.Amount); err != nil {
		h.logger.Warn("withdrawal rejected",
			zap.String("user_id", principal.UserID),
			zap.Error(err))
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"message": "Withdrawal request submitted.",
	})
}

type transactionView struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
	Status    string `json:"status"`
	Reference string `json:"reference,omitempty"`
	CreatedAt string `json:"created_at"`
}

func transactionViews(txns []*domain.Transaction) []transactionView {
	out := make([]transactionView, 0, len(txns))
	for _, t := range txns {
		v := transactionView{
			ID:        t.ID.String(),
			Kind:      string(t.Kind),
			Amount:    t.Amount.String(),
			Currency:  string(t.Currency),
			Status:    string(t.Status),
			CreatedAt: t.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if t.Reference != nil {
			v.Reference = *t.Reference
		}
		out = append(out, v)
	}
	return out
}
