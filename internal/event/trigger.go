package event

import "strings"

// Trigger identifies the lifecycle point that fired.
type Trigger int

// Known trigger sources. Anything else decodes as TriggerUnknown.
const (
	TriggerUnknown Trigger = iota
	TriggerPreSignUp
	TriggerPreSignUpAdminCreateUser
	TriggerPreSignUpExternalProvider
	TriggerCustomMessageSignUp
	TriggerCustomMessageForgotPassword
	TriggerCustomMessageResendCode
	TriggerPreAuthentication
	TriggerPostConfirmationSignUp
	TriggerPostConfirmationForgotPassword
)

var triggerSources = map[string]Trigger{
	"PreSignUp_SignUp":                       TriggerPreSignUp,
	"PreSignUp_AdminCreateUser":              TriggerPreSignUpAdminCreateUser,
	"PreSignUp_ExternalProvider":             TriggerPreSignUpExternalProvider,
	"CustomMessage_SignUp":                   TriggerCustomMessageSignUp,
	"CustomMessage_ForgotPassword":           TriggerCustomMessageForgotPassword,
	"CustomMessage_ResendCode":               TriggerCustomMessageResendCode,
	"PreAuthentication_Authentication":       TriggerPreAuthentication,
	"PostConfirmation_ConfirmSignUp":         TriggerPostConfirmationSignUp,
	"PostConfirmation_ConfirmForgotPassword": TriggerPostConfirmationForgotPassword,
}

// ParseTrigger maps a trigger source string to its Trigger.
func ParseTrigger(source string) Trigger {
	return triggerSources[source]
}

// Hook names used for routing. They match the trigger source prefixes.
const (
	HookPreSignUp         = "PreSignUp"
	HookCustomMessage     = "CustomMessage"
	HookPreAuthentication = "PreAuthentication"
	HookPostConfirmation  = "PostConfirmation"
)

// HookName returns the routing name for a trigger source: the text before the
// first underscore. "CustomMessage_AdminCreateUser" routes to CustomMessage
// even though it is not a Trigger this module customizes.
func HookName(source string) string {
	name, _, _ := strings.Cut(source, "_")
	return name
}
