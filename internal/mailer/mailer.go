// Package mailer delivers outbound email through a configured provider.
//
// Every Sender returns a provider message ID on success or a
// hookerr DeliveryError on failure.
package mailer

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// Message is one outbound email. At least one of Text and HTML is set.
type Message struct {
	From    string
	To      string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender is the mail-sending collaborator.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Validate checks the fields every provider requires.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return hookerr.Delivery("InvalidRecipient", fmt.Errorf("empty recipient email"))
	}
	if strings.TrimSpace(m.From) == "" {
		return hookerr.Delivery("InvalidSender", fmt.Errorf("empty sender email"))
	}
	if strings.TrimSpace(m.Text) == "" && strings.TrimSpace(m.HTML) == "" {
		return hookerr.Delivery("EmptyBody", fmt.Errorf("message has no body"))
	}
	return nil
}

// splitAddress parses "Name <addr>" into its parts. A bare address is returned
// with an empty name.
func splitAddress(s string) (name, addr string, err error) {
	a, err := mail.ParseAddress(s)
	if err != nil {
		return "", "", fmt.Errorf("invalid address %q: %w", s, err)
	}
	return a.Name, a.Address, nil
}
