package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/itchan-dev/agora/shared/domain"
)

// UserIdHeader carries the caller identity set by the upstream gateway.
// Authentication happens before requests reach this service.
const UserIdHeader = "X-User-Id"

const maxUserIdLen = 128

type key int

const UserIdKey key = 0

func extractUserId(r *http.Request) (domain.UserId, bool) {
	id := strings.TrimSpace(r.Header.Get(UserIdHeader))
	if id == "" || len(id) > maxUserIdLen {
		return "", false
	}
	return id, true
}

// NeedIdentity rejects requests without a caller identity.
func NeedIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := extractUserId(r)
		if !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), UserIdKey, id)))
	})
}

// OptionalIdentity stores the caller identity if present.
func OptionalIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := extractUserId(r); ok {
			r = r.WithContext(context.WithValue(r.Context(), UserIdKey, id))
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIdFromContext returns the identity stored by NeedIdentity or OptionalIdentity.
func GetUserIdFromContext(r *http.Request) (domain.UserId, bool) {
	id, ok := r.Context().Value(UserIdKey).(domain.UserId)
	return id, ok && id != ""
}
