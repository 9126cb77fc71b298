// pkg/middleware/validation.go
package middleware

import (
	"net/http"
	"strings"

	"expensio/internal/api"
	"expensio/internal/apperr"
)

// ValidateRequest rejects obviously malformed requests before they reach a
// handler and caps the body size.
func ValidateRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut {
			contentType := r.Header.Get("Content-Type")
			if contentType != "" && !strings.Contains(contentType, "application/json") {
				api.WriteError(w, r, apperr.BadRequest("Invalid Content-Type, expected application/json"))
				return
			}
		}

		const maxSize = 1 << 20 // 1 MB
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)

		next.ServeHTTP(w, r)
	})
}
