package domain

type Role string

const (
	RoleStudent Role = "student"
	RoleWriter  Role = "writer"
	RoleAdmin   Role = "admin"
)

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Principal is the authenticated caller as established by the auth
// middleware: session subject plus the profile attributes every money
// operation gates on. Handlers and usecases take this instead of re-fetching
// the profile per call.
type Principal struct {
	UserID         string
	Role           Role
	ApprovalStatus ApprovalStatus
}

// Approved reports whether the account has passed admin review.
func (p Principal) Approved() bool {
	return p.ApprovalStatus == ApprovalApproved
}

// Profile is the stored account record the principal is built from.
type Profile struct {
	UserID         string
	Role           Role
	ApprovalStatus ApprovalStatus
	FullName       string
}
