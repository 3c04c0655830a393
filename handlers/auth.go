package handlers

import (
	"errors"
	"net/http"

	"quickbites-api/api"
	"quickbites-api/auth"
	"quickbites-api/config"
	"quickbites-api/email"
	"quickbites-api/middleware"
	"quickbites-api/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const refreshCookie = "refreshToken"

type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *auth.TokenManager
	Sessions *auth.SessionStore
	Mail     email.Sender
	Cfg      *config.Config
}

type RegisterRequest struct {
	Email     string          `json:"email" binding:"required,email"`
	Password  string          `json:"password" binding:"required,min=6"`
	FirstName string          `json:"first_name" binding:"required"`
	LastName  string          `json:"last_name"`
	Phone     string          `json:"phone" binding:"required"`
	Role      models.UserRole `json:"role" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	secure := h.Cfg.GinMode == "release"
	maxAge := int(h.Tokens.RefreshTTL().Seconds())
	c.SetCookie(refreshCookie, token, maxAge, "/", "", secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	secure := h.Cfg.GinMode == "release"
	c.SetCookie(refreshCookie, "", -1, "/", "", secure, true)
}

// Register creates a new user account, caches a session and mails a
// verification link.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}
	if !models.ValidRole(req.Role) || req.Role == models.RoleAdmin {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed,
			"Invalid role. Must be: customer, restaurant_partner or delivery_partner")
		return
	}

	var existing models.User
	err := h.DB.Where("email = ? OR phone = ?", req.Email, req.Phone).First(&existing).Error
	if err == nil {
		msg := "Phone number already registered"
		if existing.Email == req.Email {
			msg = "Email already registered"
		}
		api.Error(c, http.StatusConflict, api.CodeUserExists, msg)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to create user")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to hash password")
		return
	}

	user := models.User{
		Email:        req.Email,
		Phone:        req.Phone,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		// Two registrations can pass the existence check above before either
		// row lands; the loser hits the unique index instead.
		if isUniqueViolation(err) {
			api.Error(c, http.StatusConflict, api.CodeUserExists, "Email or phone already registered")
			return
		}
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to create user")
		return
	}

	if user.Role == models.RoleCustomer {
		if err := h.DB.Create(&models.CustomerProfile{UserID: user.ID}).Error; err != nil {
			log.Warn().Err(err).Uint("user_id", user.ID).Msg("create customer profile failed")
		}
	}

	if token, err := auth.NewOpaqueToken(); err == nil {
		h.Sessions.StoreVerificationToken(c.Request.Context(), token, user.ID)
		if err := h.Mail.Send(user.Email, email.TemplateVerification, email.VerificationData(h.Cfg.AppURL, token)); err != nil {
			// Registration still succeeds; the user can request a resend.
			log.Warn().Err(err).Str("email", user.Email).Msg("verification email failed")
		}
	}

	pair, err := h.Tokens.IssuePair(user.ID, user.Email, user.Role)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to generate tokens")
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	h.Sessions.CacheSession(c.Request.Context(), &user)

	api.OK(c, http.StatusCreated, gin.H{
		"user":        user.Public(),
		"accessToken": pair.AccessToken,
	}, "Registration successful. Please check your email to verify your account.")
}

// Login authenticates credentials and returns a fresh token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		api.Error(c, http.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid email or password")
		return
	}
	if !user.IsActive {
		api.Error(c, http.StatusUnauthorized, api.CodeAccountInactive, "Your account has been deactivated")
		return
	}
	if user.PasswordHash == "" || !auth.CheckPassword(user.PasswordHash, req.Password) {
		api.Error(c, http.StatusUnauthorized, api.CodeInvalidCredentials, "Invalid email or password")
		return
	}

	pair, err := h.Tokens.IssuePair(user.ID, user.Email, user.Role)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to generate tokens")
		return
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	h.Sessions.CacheSession(c.Request.Context(), &user)

	api.OK(c, http.StatusOK, gin.H{
		"user":        user.Public(),
		"accessToken": pair.AccessToken,
	}, "Login successful")
}

// Refresh mints a new access token from the refresh-token cookie. The
// refresh token itself is left as is for its remaining TTL.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(refreshCookie)
	if err != nil || refresh == "" {
		api.Error(c, http.StatusUnauthorized, api.CodeNoRefreshToken, "Refresh token is required")
		return
	}

	access, claims, err := h.Tokens.RotateFromRefresh(refresh)
	if err != nil {
		api.Error(c, http.StatusUnauthorized, api.CodeInvalidToken, "Invalid or expired refresh token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, claims.UserID).Error; err != nil || !user.IsActive {
		api.Error(c, http.StatusUnauthorized, api.CodeInvalidToken, "Invalid refresh token")
		return
	}

	h.Sessions.CacheSession(c.Request.Context(), &user)

	api.OK(c, http.StatusOK, gin.H{
		"accessToken": access,
		"user":        user.Public(),
	}, "Token refreshed successfully")
}

// Logout clears the cookie and the cached session. It always succeeds,
// whatever the state of the token.
func (h *AuthHandler) Logout(c *gin.Context) {
	if refresh, err := c.Cookie(refreshCookie); err == nil && refresh != "" {
		if claims, err := h.Tokens.VerifyRefresh(refresh); err == nil {
			h.Sessions.DropSession(c.Request.Context(), claims.UserID)
		}
	}
	h.clearRefreshCookie(c)
	api.OK(c, http.StatusOK, nil, "Logout successful")
}

type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// VerifyEmail redeems a single-use verification token. A second redemption
// of the same token fails: consuming it deletes it.
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, "Verification token is required")
		return
	}

	userID, ok := h.Sessions.RedeemVerificationToken(c.Request.Context(), req.Token)
	if !ok {
		api.Error(c, http.StatusBadRequest, api.CodeInvalidToken, "Invalid or expired verification token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeUserNotFound, "User not found")
		return
	}
	if user.IsVerified {
		api.Error(c, http.StatusBadRequest, api.CodeAlreadyVerified, "Email is already verified")
		return
	}

	if err := h.DB.Model(&user).Update("is_verified", true).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to verify email")
		return
	}
	user.IsVerified = true
	h.Sessions.CacheSession(c.Request.Context(), &user)

	api.OK(c, http.StatusOK, nil, "Email verified successfully")
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword issues a reset token. The response never reveals whether
// the email exists; only a failed reset mail for an existing account is
// surfaced, since the user has no other path to the link.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	genericMsg := "If an account with this email exists, a password reset link has been sent"

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		api.OK(c, http.StatusOK, nil, genericMsg)
		return
	}

	token, err := auth.NewOpaqueToken()
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to generate reset token")
		return
	}
	h.Sessions.StoreResetToken(c.Request.Context(), token, user.ID)

	if err := h.Mail.Send(user.Email, email.TemplatePasswordReset, email.ResetData(h.Cfg.AppURL, token)); err != nil {
		log.Error().Err(err).Str("email", user.Email).Msg("password reset email failed")
		api.Error(c, http.StatusInternalServerError, api.CodeEmailSendFailed, "Failed to send password reset email")
		return
	}

	api.OK(c, http.StatusOK, nil, genericMsg)
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

// ResetPassword redeems a single-use reset token and replaces the password.
// Every cached session of the user is dropped afterwards.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, api.CodeValidationFailed, err.Error())
		return
	}

	userID, ok := h.Sessions.RedeemResetToken(c.Request.Context(), req.Token)
	if !ok {
		api.Error(c, http.StatusBadRequest, api.CodeInvalidToken, "Invalid or expired reset token")
		return
	}

	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeUserNotFound, "User not found")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to hash password")
		return
	}
	if err := h.DB.Model(&user).Update("password_hash", hash).Error; err != nil {
		api.Error(c, http.StatusInternalServerError, api.CodeInternalError, "Failed to reset password")
		return
	}

	// Force re-login everywhere.
	h.Sessions.DropSession(c.Request.Context(), user.ID)

	api.OK(c, http.StatusOK, nil, "Password reset successful. Please login with your new password")
}

// GetProfile returns the authenticated user's record.
func (h *AuthHandler) GetProfile(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	var user models.User
	if err := h.DB.First(&user, identity.UserID).Error; err != nil {
		api.Error(c, http.StatusNotFound, api.CodeUserNotFound, "User not found")
		return
	}
	api.OK(c, http.StatusOK, gin.H{"user": user.Public()}, "")
}
