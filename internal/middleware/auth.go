package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/jamiljuma2/edulink/internal/domain"
	"github.com/jamiljuma2/edulink/internal/repository"
	"github.com/jamiljuma2/edulink/pkg/response"
)

type contextKey string

const ContextPrincipal contextKey = "principal"

// GetPrincipal returns the authenticated caller placed in the context by
// Authenticate.
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(ContextPrincipal).(domain.Principal)
	return p, ok
}

// Auth verifies bearer tokens minted by the identity provider and resolves
// the caller's profile into a typed principal, once per request.
type Auth struct {
	secret   []byte
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewAuth(secret string, profiles repository.ProfileRepository, logger *zap.Logger) *Auth {
	return &Auth{secret: []byte(secret), profiles: profiles, logger: logger}
}

func (a *Auth) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.subjectFromRequest(r)
		if err != nil {
			response.FromError(w, err)
			return
		}

		profile, err := a.profiles.Get(r.Context(), userID)
		if errors.Is(err, domain.ErrNotFound) {
			response.Error(w, http.StatusForbidden, "Profile missing")
			return
		}
		if err != nil {
			a.logger.Error("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "Profile lookup failed")
			return
		}

		principal := domain.Principal{
			UserID:         profile.UserID,
			Role:           profile.Role,
			ApprovalStatus: profile.ApprovalStatus,
		}
		ctx := context.WithValue(r.Context(), ContextPrincipal, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route group to approved accounts of one role.
func RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := GetPrincipal(r.Context())
			if !ok {
				response.FromError(w, domain.ErrUnauthorized)
				return
			}
			if !p.Approved() {
				response.FromError(w, domain.ErrApprovalRequired)
				return
			}
			if p.Role != role {
				response.FromError(w, fmt.Errorf("%w: %s required", domain.ErrRoleNotAllowed, role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *Auth) subjectFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", domain.ErrUnauthorized
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}
