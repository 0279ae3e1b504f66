// Package presignup implements the signup gate: it accepts or rejects a
// registration by email domain and pre-verifies trusted domains.
package presignup

// Decision is the outcome of evaluating one address.
type Decision struct {
	Domain string
	// AutoConfirm is set for trusted domains; the user skips manual verification.
	AutoConfirm bool
}

// Rejection reasons shown to the end user.
const (
	ReasonBlockedDomain = "Temporary or disposable email addresses are not allowed. Please use a permanent email address."
	reasonNotAllowedFmt = "Invalid email domain. Only %s are allowed."
)
