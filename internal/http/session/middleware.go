package session

import (
	"net/http"

	"github.com/prabink/khaatabook/internal/auth"
)

// Require rejects requests without a valid session cookie.
func Require(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}

			if _, err := svc.Verify(cookie.Value); err != nil {
				http.Error(w, "not authenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
