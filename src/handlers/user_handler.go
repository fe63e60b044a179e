package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/username/tradecoach/backend/src/config"
	"github.com/username/tradecoach/backend/src/database"
	"github.com/username/tradecoach/backend/src/logger"
	"github.com/username/tradecoach/backend/src/model"
	"github.com/username/tradecoach/backend/src/security"
	"github.com/username/tradecoach/backend/src/services"
	"github.com/username/tradecoach/backend/src/utils"
)

type UserHandler struct {
	authService  *security.AuthService
	emailService services.EmailService
}

func NewUserHandler(authService *security.AuthService, emailService services.EmailService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		emailService: emailService,
	}
}

func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if credentials.Username == "" || credentials.Email == "" || len(credentials.Password) < 8 {
		utils.SendJSONError(w, "Username, email and a password of at least 8 characters are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.authService.HashPassword(credentials.Password)
	if err != nil {
		utils.SendJSONError(w, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	verificationToken, err := h.authService.GenerateVerificationToken()
	if err != nil {
		utils.SendJSONError(w, "Failed to generate verification token", http.StatusInternalServerError)
		return
	}

	user := &model.User{
		Username:     credentials.Username,
		Email:        credentials.Email,
		Password:     hashedPassword,
		AuthProvider: "local",
		EmailVerificationToken: sql.NullString{String: verificationToken, Valid: true},
		EmailVerificationTokenExpiresAt: sql.NullTime{
			Time:  time.Now().Add(config.Cfg.VerificationTokenExpiry),
			Valid: true,
		},
	}

	if err := user.CreateUser(database.DB); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			utils.SendJSONError(w, "Username already exists", http.StatusConflict)
			return
		}
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			utils.SendJSONError(w, "Email already registered", http.StatusConflict)
			return
		}
		logger.L.Error("Failed to create user", "error", err)
		utils.SendJSONError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := h.emailService.SendVerificationEmail(user.Email, user.Username, verificationToken); err != nil {
		logger.L.Error("Failed to send verification email", "userID", user.ID, "error", err)
		// The account exists; the user can request a new email later.
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User registered successfully. Please check your email to verify your account.",
	})
}

func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		utils.SendJSONError(w, "Verification token is required", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByVerificationToken(database.DB, token)
	if err != nil {
		utils.SendJSONError(w, "Invalid or expired verification token", http.StatusBadRequest)
		return
	}

	if err := user.MarkEmailVerified(database.DB); err != nil {
		logger.L.Error("Failed to mark email verified", "userID", user.ID, "error", err)
		utils.SendJSONError(w, "Failed to verify email", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{"message": "Email verified successfully"})
}

func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := model.GetUserByUsername(database.DB, credentials.Username)
	if err != nil {
		logger.L.Debug("User lookup failed", "username", credentials.Username, "error", err)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := user.CheckPassword(credentials.Password); err != nil {
		logger.L.Debug("Password check failed", "username", credentials.Username)
		utils.SendJSONError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if !user.IsEmailVerified {
		utils.SendJSONError(w, "Email address not verified. Please check your inbox.", http.StatusForbidden)
		return
	}

	accessToken, err := h.authService.GenerateToken(fmt.Sprintf("%d", user.ID))
	if err != nil {
		utils.SendJSONError(w, "Failed to generate access token", http.StatusInternalServerError)
		return
	}

	refreshToken, err := h.authService.GenerateRefreshToken()
	if err != nil {
		utils.SendJSONError(w, "Failed to generate refresh token", http.StatusInternalServerError)
		return
	}

	session := &model.Session{
		UserID:       user.ID,
		Token:        accessToken,
		RefreshToken: refreshToken,
		UserAgent:    r.UserAgent(),
		ClientIP:     r.RemoteAddr,
		IsBlocked:    false,
		ExpiresAt:    time.Now().Add(config.Cfg.RefreshTokenExpiry),
	}
	if err := model.CreateSession(database.DB, session); err != nil {
		utils.SendJSONError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	if err := json.NewDecoder(r.Body).Decode(&requestBody); err != nil {
		utils.SendJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if requestBody.RefreshToken == "" {
		utils.SendJSONError(w, "Refresh token is required", http.StatusBadRequest)
		return
	}

	session, err := model.GetSessionByRefreshToken(database.DB, requestBody.RefreshToken)
	if err != nil {
		logger.L.Warn("Refresh token lookup failed", "error", err)
		utils.SendJSONError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	newAccessToken, err := h.authService.GenerateToken(strconv.Itoa(session.UserID))
	if err != nil {
		utils.SendJSONError(w, "Failed to generate new access token", http.StatusInternalServerError)
		return
	}

	if err := model.UpdateSessionToken(database.DB, session.ID, newAccessToken); err != nil {
		utils.SendJSONError(w, "Failed to update session", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]string{
		"access_token":  newAccessToken,
		"refresh_token": session.RefreshToken,
	})
}

func (h *UserHandler) LogoutUserHandler(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		utils.SendJSONError(w, "Authorization header required", http.StatusUnauthorized)
		return
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	if err := model.DeleteSessionByToken(database.DB, tokenString); err != nil {
		// Logout stays idempotent; a missing session is not a failure.
		logger.L.Warn("Failed to delete session on logout", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCheckUserData reports whether the user has any uploaded trades, so
// the frontend can route between the upload page and the report.
func (h *UserHandler) HandleCheckUserData(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	var count int
	if err := database.DB.QueryRow(`SELECT COUNT(*) FROM trades WHERE user_id = ?`, userID).Scan(&count); err != nil {
		logger.L.Error("Failed to count user trades", "userID", userID, "error", err)
		utils.SendJSONError(w, "Failed to check user data", http.StatusInternalServerError)
		return
	}

	utils.SendJSON(w, http.StatusOK, map[string]interface{}{
		"hasData":    count > 0,
		"tradeCount": count,
	})
}
