package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JIATech/SIGVIP-sub002/pkg/requestcontext"
)

// TokenValidator defines the interface for validating staff tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*StaffClaims, error)
}

// StaffClaims represents the claims we expect from the token validator.
type StaffClaims struct {
	StaffID  string
	Facility string
	Role     string
}

// GetStaffID retrieves the authenticated staff ID from the context.
func GetStaffID(ctx context.Context) string {
	return requestcontext.StaffID(ctx)
}

// RequireStaff rejects requests without a valid staff bearer token and
// stores the staff identity in the request context.
func RequireStaff(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
				return
			}

			ctx := requestcontext.WithStaffID(r.Context(), claims.StaffID)
			ctx = requestcontext.WithStaffRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
