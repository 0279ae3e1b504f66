package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mailersend/mailersend-go"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// MailerSendAPI is the subset of the MailerSend email service used for sending.
type MailerSendAPI interface {
	NewMessage() *mailersend.Message
	Send(ctx context.Context, message *mailersend.Message) (*mailersend.Response, error)
}

// MailerSendSender sends through MailerSend.
type MailerSendSender struct {
	email   MailerSendAPI
	timeout time.Duration
}

// NewMailerSendSender creates a sender from an API key.
func NewMailerSendSender(apiKey string) *MailerSendSender {
	return NewMailerSendSenderWithAPI(mailersend.NewMailersend(apiKey).Email)
}

// NewMailerSendSenderWithAPI creates a sender over the given email service.
func NewMailerSendSenderWithAPI(email MailerSendAPI) *MailerSendSender {
	return &MailerSendSender{email: email, timeout: 10 * time.Second}
}

// Send implements Sender.
func (m *MailerSendSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	fromName, fromEmail, err := splitAddress(msg.From)
	if err != nil {
		return "", hookerr.Delivery("InvalidSender", err)
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	message := m.email.NewMessage()
	message.SetFrom(mailersend.From{Name: fromName, Email: fromEmail})
	message.SetRecipients([]mailersend.Recipient{{Name: msg.ToName, Email: msg.To}})
	message.SetSubject(msg.Subject)
	if strings.TrimSpace(msg.Text) != "" {
		message.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		message.SetHTML(msg.HTML)
	}

	res, err := m.email.Send(ctx, message)
	if err != nil {
		return "", hookerr.Delivery("MailerSendRequestFailed", fmt.Errorf("mailersend: %w", err))
	}
	if res == nil || res.Response == nil {
		return "", hookerr.Delivery("MailerSendEmptyResponse", errors.New("mailersend: empty response"))
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return "", hookerr.Delivery(
			fmt.Sprintf("HTTP%d", res.StatusCode),
			fmt.Errorf("mailersend: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body))),
		)
	}
	// MailerSend returns the message ID in X-Message-Id.
	return res.Header.Get("X-Message-Id"), nil
}
