// Package preauthentication implements the login gate: accounts on restricted
// domains cannot sign in during a configured daily window.
package preauthentication

import (
	"time"

	"github.com/wiseuni/identity-hooks/internal/policy"
)

// Settings configures the login gate.
type Settings struct {
	RestrictedDomains policy.DomainSet
	Window            policy.Window
	// BlockedMessage is shown to the end user when a login is rejected.
	BlockedMessage string
}

// CheckResult holds the outcome of a login check.
type CheckResult struct {
	Allowed bool
	Domain  string
	// Restricted is true when the domain is subject to the window.
	Restricted bool
	// Fields populated when blocked
	Reason  string
	Message string
	At      time.Time
}

// Block reasons.
const (
	ReasonLoginWindow = "login_window"
)

// DefaultBlockedMessage is used when Settings.BlockedMessage is empty.
const DefaultBlockedMessage = "Student logins are not available during lunch break"

