package email

import (
	"github.com/rs/zerolog/log"
)

// Template identifies which transactional mail to send. Rendering happens in
// the provider; the service only supplies data.
type Template string

const (
	TemplateVerification      Template = "verification"
	TemplatePasswordReset     Template = "password_reset"
	TemplateOrderConfirmation Template = "order_confirmation"
)

// Sender is the outbound-mail collaborator. Verification and reset mails
// surface errors to the caller (the user has no other path to the link);
// order confirmations are fire-and-forget.
type Sender interface {
	Send(to string, template Template, data map[string]any) error
}

// LogSender writes mails to the log instead of a provider. Used in
// development and tests.
type LogSender struct{}

func (LogSender) Send(to string, template Template, data map[string]any) error {
	log.Info().Str("to", to).Str("template", string(template)).Fields(data).Msg("email: send")
	return nil
}

// VerificationData builds the template payload for an account-verification
// mail.
func VerificationData(appURL, token string) map[string]any {
	return map[string]any{
		"verification_link": appURL + "/verify-email?token=" + token,
	}
}

// ResetData builds the template payload for a password-reset mail.
func ResetData(appURL, token string) map[string]any {
	return map[string]any{
		"reset_link":   appURL + "/reset-password?token=" + token,
		"expiry_hours": 1,
	}
}

// OrderConfirmationData builds the template payload for an order receipt.
func OrderConfirmationData(orderNumber string, totalAmount float64, estimatedMinutes int) map[string]any {
	return map[string]any{
		"order_number":      orderNumber,
		"total_amount":      totalAmount,
		"estimated_minutes": estimatedMinutes,
	}
}
