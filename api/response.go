// Package api defines the response envelope and the stable machine-readable
// error codes shared by handlers and middleware.
package api

import "github.com/gin-gonic/gin"

// Error codes returned to clients. These are contract: clients switch on
// them, so they never change meaning.
const (
	CodeUserExists         = "USER_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeAccountUnverified  = "ACCOUNT_UNVERIFIED"
	CodeNoToken            = "NO_TOKEN"
	CodeNoRefreshToken     = "NO_REFRESH_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeAlreadyVerified    = "ALREADY_VERIFIED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeConflict           = "CONFLICT"
	CodeEmailSendFailed    = "EMAIL_SEND_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error writes the failure envelope and aborts the request.
func Error(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   ErrorBody{Code: code, Message: message},
	})
}

// OK writes a success envelope.
func OK(c *gin.Context, status int, data gin.H, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}
