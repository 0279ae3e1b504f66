// Package postconfirmation sends the welcome email after a user confirms
// their account. Delivery is best effort: failures never block confirmation.
package postconfirmation

// Settings configures the welcome message.
type Settings struct {
	BrandName          string
	SenderAddress      string
	PortalURL          string
	SupportAddress     string
	DefaultDisplayName string
}

// WelcomeData is rendered into the welcome templates.
type WelcomeData struct {
	Brand    string
	Name     string
	UserName string
	Email    string
	Portal   string
	Support  string
}

// Result statuses logged for each confirmation event.
const (
	StatusSent      = "sent"
	StatusSkipped   = "skipped"
	StatusDuplicate = "duplicate"
)
