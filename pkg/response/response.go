package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jamiljuma2/edulink/internal/domain"
)

// APIResponse is the envelope every endpoint answers with.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func write(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, APIResponse{Status: "success", Data: data})
}

func Error(w http.ResponseWriter, status int, msg string) {
	write(w, status, APIResponse{Status: "error", Message: msg})
}

// FromError maps domain sentinels onto HTTP statuses. Validation failures
// echo the sentinel text; anything unmapped is an internal error and the
// message is not leaked.
func FromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrPhoneRequired),
		errors.Is(err, domain.ErrAmountTooLow),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidPlan):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		Error(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		Error(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInvalidSignature):
		Error(w, http.StatusUnauthorized, "invalid signature")
	case errors.Is(err, domain.ErrApprovalRequired),
		errors.Is(err, domain.ErrRoleNotAllowed):
		Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrRailFailure):
		Error(w, http.StatusBadGateway, "payment processing failed")
	default:
		Error(w, http.StatusInternalServerError, "internal error")
	}
}
