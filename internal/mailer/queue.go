package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

// EventTypeEmailRequested tags messages published by QueueSender.
const EventTypeEmailRequested = "EMAIL_REQUESTED"

// Publisher publishes a JSON payload under a message ID.
type Publisher interface {
	Publish(ctx context.Context, messageID string, payload any) error
}

// EmailRequestedEvent is the queue payload consumed by a downstream mail worker.
type EmailRequestedEvent struct {
	EventType   string `json:"eventType"`
	MessageID   string `json:"messageId"`
	RequestedAt string `json:"requestedAt"`
	From        string `json:"from"`
	To          string `json:"to"`
	ToName      string `json:"toName,omitempty"`
	Subject     string `json:"subject"`
	Text        string `json:"text,omitempty"`
	HTML        string `json:"html,omitempty"`
}

// QueueSender hands messages to a notifications queue. The returned ID is the
// queue message ID; actual delivery happens downstream.
type QueueSender struct {
	publisher Publisher
	now       func() time.Time
}

// NewQueueSender creates a queue-backed sender.
func NewQueueSender(publisher Publisher) *QueueSender {
	return &QueueSender{publisher: publisher, now: time.Now}
}

// Send implements Sender.
func (q *QueueSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	id := uuid.New().String()
	event := EmailRequestedEvent{
		EventType:   EventTypeEmailRequested,
		MessageID:   id,
		RequestedAt: q.now().UTC().Format(time.RFC3339),
		From:        msg.From,
		To:          msg.To,
		ToName:      msg.ToName,
		Subject:     msg.Subject,
		Text:        msg.Text,
		HTML:        msg.HTML,
	}
	if err := q.publisher.Publish(ctx, id, event); err != nil {
		return "", hookerr.Delivery("QueuePublishFailed", fmt.Errorf("queue: %w", err))
	}
	return id, nil
}
