package middleware

import (
	"errors"
	"net/http"
	"strings"

	"quickbites-api/api"
	"quickbites-api/auth"
	"quickbites-api/models"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// AuthRequired resolves the bearer token to a live identity. The user record
// is checked against the database, so a deactivated user is rejected even
// with a still-valid token.
func AuthRequired(authenticator *auth.Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			api.Error(c, http.StatusUnauthorized, api.CodeNoToken, "Access token is required")
			return
		}
		tokenStr := strings.TrimPrefix(header, "Bearer ")

		identity, err := authenticator.Authenticate(tokenStr)
		if err != nil {
			status, code, msg := authErrorResponse(err)
			api.Error(c, status, code, msg)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func authErrorResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, auth.ErrNoToken):
		return http.StatusUnauthorized, api.CodeNoToken, "Access token is required"
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, api.CodeTokenExpired, "Access token has expired"
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, api.CodeInvalidToken, "Invalid access token"
	case errors.Is(err, auth.ErrUserNotFound):
		return http.StatusUnauthorized, api.CodeUserNotFound, "User not found"
	case errors.Is(err, auth.ErrAccountInactive):
		return http.StatusUnauthorized, api.CodeAccountInactive, "User account is deactivated"
	case errors.Is(err, auth.ErrAccountUnverified):
		return http.StatusUnauthorized, api.CodeAccountUnverified, "Please verify your email address"
	}
	return http.StatusInternalServerError, api.CodeInternalError, "Authentication failed"
}

// RoleRequired enforces that the caller holds one of the allowed roles. Must
// run after AuthRequired.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if err := auth.Authorize(identity, roles...); err != nil {
			api.Error(c, http.StatusForbidden, api.CodeForbidden, "You do not have permission to access this resource")
			return
		}
		c.Next()
	}
}

// GetIdentity extracts the authenticated caller from the request context.
func GetIdentity(c *gin.Context) auth.Identity {
	val, _ := c.Get(identityKey)
	identity, _ := val.(auth.Identity)
	return identity
}
