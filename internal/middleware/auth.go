package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/taskvault/task-tracker-api/pkg/respond"
)

// TokenVerifier checks a bearer token and returns the caller identity.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type ctxKey int

const callerKey ctxKey = iota

// Auth rejects requests without a verifiable bearer token and stores the
// caller identity in the request context for the handlers below it.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				respond.Error(w, r, http.StatusUnauthorized, "authentication required")
				return
			}

			callerID, err := verifier.Verify(token)
			if err != nil {
				logger.Warn("token rejected", zap.Error(err))
				respond.Error(w, r, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), callerKey, callerID)))
		})
	}
}

// CallerID returns the identity placed in the context by Auth.
func CallerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey).(string)
	return id, ok && id != ""
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
