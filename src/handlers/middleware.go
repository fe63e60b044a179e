package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/tradecoach/backend/src/database"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/model"
	"github.com/username/tradecoach/backend/src/utils"
)

// contextKey is unexported so no other package can collide with our keys.
type contextKey string

const userIDContextKey contextKey = "userID"

// AuthMiddleware validates the bearer token and its session, then stores the
// user ID in the request context.
func (h *UserHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.L.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
			utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == "" {
			logger.L.Debug("AuthMiddleware: Token string empty", "path", r.URL.Path)
			utils.SendJSONError(w, "Malformed token", http.StatusUnauthorized)
			return
		}

		userIDStr, err := h.authService.ValidateToken(tokenString)
		if err != nil {
			logger.L.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
			utils.SendJSONError(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		userIDInt, err := strconv.ParseInt(userIDStr, 10, 64)
		if err != nil {
			logger.L.Error("AuthMiddleware: Invalid user ID format in token", "userIDStr", userIDStr, "error", err)
			utils.SendJSONError(w, "Invalid user ID in token", http.StatusInternalServerError)
			return
		}

		if _, err := model.GetSessionByToken(database.DB, tokenString); err != nil {
			// Google sign-ins carry a valid app token but no session row.
			user, userErr := model.GetUserByID(database.DB, userIDInt)
			if userErr != nil || user.AuthProvider == "local" {
				logger.L.Warn("AuthMiddleware: Session validation failed", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, "Invalid or expired session", http.StatusUnauthorized)
				return
			}
		}

		ctx := context.WithValue(r.Context(), userIDContextKey, userIDInt)
		next(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext retrieves the userID placed there by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int64)
	return userID, ok
}
