package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrApprovalRequired    = errors.New("account approval required")
	ErrRoleNotAllowed      = errors.New("role not allowed")
	ErrAmountTooLow        = errors.New("amount below minimum")
	ErrPhoneRequired       = errors.New("phone number required")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidSignature    = errors.New("invalid webhook signature")
	ErrRailFailure         = errors.New("payment rail call failed")
	ErrInvalidPlan         = errors.New("invalid subscription plan")
	ErrInvalidTransition   = errors.New("illegal status transition")
	ErrUnknownKind         = errors.New("unknown transaction kind")
)
