package middleware

import (
	"errors"
	"net/http"

	"github.com/cloo-solutions/concierge/internal/api"
)

// BodyTooLargeMessage is what an oversized chat history gets back. The widget
// resends the whole conversation each turn, so this is usually a long session.
const BodyTooLargeMessage = "Conversation is too long. Please start a new chat."

// MaxBodyBytes rejects bodies over limit. A declared Content-Length is refused
// up front; anything else is cut off while the handler reads it, and the
// handler checks for that with IsBodyTooLarge.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, BodyTooLargeMessage)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// IsBodyTooLarge reports whether err came from reading past the body limit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
