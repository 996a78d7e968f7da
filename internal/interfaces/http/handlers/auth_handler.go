package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"shop-kita.backend/internal/domain/entities"
	domainerrors "shop-kita.backend/internal/domain/errors"
	"shop-kita.backend/internal/interfaces/http/middleware"
	"shop-kita.backend/internal/interfaces/http/response"
	"shop-kita.backend/internal/usecases"
	"shop-kita.backend/pkg/logger"
	"shop-kita.backend/pkg/redis"
)

const refreshCookieName = "refresh_token"

// AuthHandler handles the authentication endpoints
type AuthHandler struct {
	authUsecase         *usecases.AuthUsecase
	registrationUsecase *usecases.RegistrationUsecase
	verificationUsecase *usecases.VerificationUsecase
	sessionUsecase      *usecases.SessionUsecase
	sessionStore        *redis.SessionStore
	refreshTTL          time.Duration
}

// NewAuthHandler creates a new auth handler. sessionStore may be nil when
// the session-id login mode is disabled.
func NewAuthHandler(
	authUsecase *usecases.AuthUsecase,
	registrationUsecase *usecases.RegistrationUsecase,
	verificationUsecase *usecases.VerificationUsecase,
	sessionUsecase *usecases.SessionUsecase,
	sessionStore *redis.SessionStore,
	refreshTTL time.Duration,
) *AuthHandler {
	return &AuthHandler{
		authUsecase:         authUsecase,
		registrationUsecase: registrationUsecase,
		verificationUsecase: verificationUsecase,
		sessionUsecase:      sessionUsecase,
		sessionStore:        sessionStore,
		refreshTTL:          refreshTTL,
	}
}

// Register starts a registration
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.registrationUsecase.Register(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "Registration started. Please check your email for verification.",
	})
}

// VerifyEmail completes a registration
// POST /api/v1/auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var input entities.VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	account, err := h.registrationUsecase.VerifyEmail(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Email verified successfully",
		"account": accountProfile(account),
	})
}

// ResendVerification reissues the verification email
// POST /api/v1/auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.registrationUsecase.ResendVerification(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Verification email sent",
	})
}

// Login authenticates and issues tokens
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	authResponse, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	if input.UseSession && h.sessionStore != nil {
		sessionID := uuid.New().String()
		err := h.sessionStore.CreateSession(c.Request.Context(), sessionID, &redis.SessionData{
			AccessToken:  authResponse.AccessToken,
			RefreshToken: authResponse.RefreshToken,
		}, h.refreshTTL)
		if err != nil {
			logger.Error(c.Request.Context(), "failed to create session")
			response.Error(c, domainerrors.InternalError(err))
			return
		}

		// Session mode keeps tokens server-side; only the opaque id goes out.
		response.Success(c, http.StatusOK, gin.H{
			"sessionId": sessionID,
			"account":   accountProfile(authResponse.Account),
		})
		return
	}

	h.setRefreshCookie(c, authResponse.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  authResponse.AccessToken,
		"refreshToken": authResponse.RefreshToken,
		"account":      accountProfile(authResponse.Account),
	})
}

// RefreshToken rotates a refresh token
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	refreshToken := h.refreshTokenFromRequest(c)
	if refreshToken == "" {
		response.Error(c, domainerrors.BadRequest("Refresh token is required"))
		return
	}

	pair, _, err := h.sessionUsecase.Rotate(c.Request.Context(), refreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	response.Success(c, http.StatusOK, gin.H{
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Logout revokes the presented refresh token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := c.GetHeader(middleware.SessionIDHeader); sessionID != "" && h.sessionStore != nil {
		if session, err := h.sessionStore.GetSession(c.Request.Context(), sessionID); err == nil && session != nil {
			if err := h.sessionUsecase.Logout(c.Request.Context(), session.RefreshToken); err != nil {
				logger.Warn(c.Request.Context(), "failed to revoke session refresh token")
			}
		}
		if err := h.sessionStore.DeleteSession(c.Request.Context(), sessionID); err != nil {
			logger.Warn(c.Request.Context(), "failed to delete session")
		}
	}

	if refreshToken := h.refreshTokenFromRequest(c); refreshToken != "" {
		if err := h.sessionUsecase.Logout(c.Request.Context(), refreshToken); err != nil {
			logger.Warn(c.Request.Context(), "failed to revoke refresh token")
		}
	}

	c.SetCookie(refreshCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{
		"message": "Logged out",
	})
}

// ForgotPassword starts a password reset. The response does not reveal
// whether the email is registered.
// POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var input struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.RequestPasswordReset(c.Request.Context(), input.Email); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "If the email is registered, a reset link has been sent",
	})
}

// ResetPassword completes a password reset
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var input entities.ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.ResetPassword(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password reset successfully",
	})
}

// ChangePassword changes the current account's password
// POST /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	var input entities.ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.authUsecase.ChangePassword(c.Request.Context(), accountID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Password changed successfully",
	})
}

// ChangeEmail starts an email change for the current account
// POST /api/v1/auth/change-email
func (h *AuthHandler) ChangeEmail(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	var input entities.ChangeEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.RequestEmailChange(c.Request.Context(), accountID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Confirmation email sent to the new address",
	})
}

// VerifyEmailChange completes an email change
// POST /api/v1/auth/verify-email-change
func (h *AuthHandler) VerifyEmailChange(c *gin.Context) {
	var input entities.VerifyEmailInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.verificationUsecase.ConfirmEmailChange(c.Request.Context(), &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "Email changed successfully",
	})
}

// GetMe returns the current authenticated account
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Unauthorized"))
		return
	}

	account, err := h.authUsecase.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"account": accountProfile(account),
	})
}

// SessionExpiry reports when the stored session's refresh window closes
// GET /api/v1/auth/session-expiry
func (h *AuthHandler) SessionExpiry(c *gin.Context) {
	if h.sessionStore == nil {
		response.Error(c, domainerrors.NotFound("Session mode is disabled"))
		return
	}

	sessionID := c.Query("sessionId")
	if sessionID == "" {
		response.Error(c, domainerrors.BadRequest("sessionId is required"))
		return
	}

	expiresAt, err := h.sessionStore.SessionExpiry(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, domainerrors.NotFound("Session not found"))
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) string {
	if c.Request.ContentLength > 0 {
		var input struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := c.ShouldBindJSON(&input); err == nil && input.RefreshToken != "" {
			return input.RefreshToken
		}
	}

	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		return cookie
	}
	return ""
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetCookie(refreshCookieName, token, int(h.refreshTTL.Seconds()), "/", "", false, true)
}

func accountProfile(account *entities.Account) gin.H {
	profile := gin.H{
		"id":                account.ID,
		"email":             account.Email,
		"name":              account.Name,
		"role":              account.Role,
		"preferredLanguage": account.PreferredLanguage,
		"createdAt":         account.CreatedAt,
	}
	if account.LastLoginAt.Valid {
		profile["lastLoginAt"] = account.LastLoginAt.Time
	}
	return profile
}
