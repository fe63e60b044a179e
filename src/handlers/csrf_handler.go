package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/username/tradecoach/backend/src/logger"
)

const csrfCookieName = "_csrf_token"

// GetCSRFToken issues a fresh double-submit token: one copy in an HttpOnly
// cookie, one in the response for the client to echo in X-CSRF-Token.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := generateRandomToken()

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   false, // behind TLS-terminating proxy in production
		MaxAge:   3600,
	})

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-CSRF-Token", token)
	json.NewEncoder(w).Encode(map[string]string{
		"csrfToken": token,
	})
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.L.Error("Error generating random bytes for CSRF token", "error", err)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.StdEncoding.EncodeToString(b)
}

// CSRFMiddleware compares the X-CSRF-Token header against the token cookie.
// OPTIONS preflights and the token endpoint itself are exempt.
func CSRFMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			if r.Method == http.MethodGet && r.URL.Path == "/csrf" {
				next.ServeHTTP(w, r)
				return
			}

			headerToken := r.Header.Get("X-CSRF-Token")
			cookie, err := r.Cookie(csrfCookieName)

			if headerToken != "" && err == nil && headerToken == cookie.Value {
				next.ServeHTTP(w, r)
				return
			}

			logger.L.Warn("CSRF token validation failed",
				"method", r.Method,
				"path", r.URL.Path,
				"origin", r.Header.Get("Origin"))
			http.Error(w, "CSRF token validation failed", http.StatusForbidden)
		})
	}
}
