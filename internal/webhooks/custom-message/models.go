// Package custommessage builds the verification, password reset and resend
// emails the identity platform sends with a one-time code.
package custommessage

import "github.com/wiseuni/identity-hooks/internal/event"

// MessageKind is a message this package knows how to customize.
type MessageKind int

const (
	// KindNone means the trigger is left to the platform's default message.
	KindNone MessageKind = iota
	KindSignupVerification
	KindPasswordReset
	KindCodeResend
)

func (k MessageKind) String() string {
	switch k {
	case KindSignupVerification:
		return "signup_verification"
	case KindPasswordReset:
		return "password_reset"
	case KindCodeResend:
		return "code_resend"
	default:
		return "none"
	}
}

// KindFor maps a trigger to the message it customizes.
func KindFor(t event.Trigger) MessageKind {
	switch t {
	case event.TriggerCustomMessageSignUp:
		return KindSignupVerification
	case event.TriggerCustomMessageForgotPassword:
		return KindPasswordReset
	case event.TriggerCustomMessageResendCode:
		return KindCodeResend
	default:
		return KindNone
	}
}

// Branding holds the values shared by every template.
type Branding struct {
	BrandName          string
	SupportAddress     string
	DefaultDisplayName string
}

// templateData is what each template renders.
type templateData struct {
	Brand   string
	Name    string
	Code    string
	Support string
}
