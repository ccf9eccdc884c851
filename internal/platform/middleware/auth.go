package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// IssuerClaims are the claims expected on tokens authorizing credential issuance.
type IssuerClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// RoleIssuer is the role claim value required to issue credentials.
const RoleIssuer = "issuer"

type issuerIDKey struct{}

// GetIssuerID retrieves the authenticated issuer principal from the context.
func GetIssuerID(ctx context.Context) string {
	if id, ok := ctx.Value(issuerIDKey{}).(string); ok {
		return id
	}
	return ""
}

// RequireIssuer guards issuance endpoints with a bearer JWT carrying the
// issuer role. Verification and health endpoints stay public.
func RequireIssuer(signingKey string, logger *slog.Logger) func(http.Handler) http.Handler {
	key := []byte(signingKey)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeAuthError(w, "missing bearer token")
				return
			}
			tokenString := strings.TrimPrefix(header, "Bearer ")

			claims := &IssuerClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return key, nil
			})
			if err != nil || !token.Valid {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(r.Context()),
				)
				writeAuthError(w, "invalid token")
				return
			}

			if claims.Role != RoleIssuer {
				logger.WarnContext(r.Context(), "forbidden access - missing issuer role",
					"role", claims.Role,
					"request_id", GetRequestID(r.Context()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":"forbidden","error_description":"issuer role required"}`))
				return
			}

			ctx := context.WithValue(r.Context(), issuerIDKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
