package jwt

import (
	"context"
	"net/http"
	"strings"

	"hubble/internal/pkg/logx"
)

// contextKey is private to prevent collisions with other packages.
type contextKey string

// ContextIdentityKey stores the parsed identity Payload in the request Context.
const ContextIdentityKey contextKey = "identity_payload"

// IdentityExtractor returns middleware that validates a Bearer token from the
// Authorization header and injects its Payload into the request Context.
// Missing or invalid tokens do not interrupt the request; the caller is
// simply treated as anonymous.
func IdentityExtractor(secretKey string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				next.ServeHTTP(w, r)
				return
			}

			payload, err := ParseToken(parts[1], secretKey)
			if err != nil {
				logx.Warn("Invalid or expired identity token, treating as anonymous", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextIdentityKey, payload)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext extracts the identity Payload from the request Context.
// A nil return means the caller is anonymous.
func FromContext(r *http.Request) *Payload {
	payload, ok := r.Context().Value(ContextIdentityKey).(*Payload)
	if !ok {
		return nil
	}
	return payload
}
