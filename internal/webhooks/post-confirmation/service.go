package postconfirmation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/mailer"
	"github.com/wiseuni/identity-hooks/internal/metrics"
	"github.com/wiseuni/identity-hooks/internal/middleware"
)

// Deduper records which users already received a welcome email.
type Deduper interface {
	// MarkWelcomeSentIfNew returns true if this call created the marker.
	MarkWelcomeSentIfNew(ctx context.Context, userID string) (bool, error)
	// ReleaseWelcomeSent removes the marker after a failed delivery.
	ReleaseWelcomeSent(ctx context.Context, userID string) error
}

// Service handles the business logic for welcome emails.
type Service struct {
	sender   mailer.Sender
	deduper  Deduper
	settings Settings
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewService creates a welcome notifier. deduper may be nil to disable the
// idempotency guard.
func NewService(sender mailer.Sender, deduper Deduper, settings Settings, m *metrics.Metrics, logger *zap.Logger) *Service {
	if settings.DefaultDisplayName == "" {
		settings.DefaultDisplayName = "Student"
	}
	return &Service{
		sender:   sender,
		deduper:  deduper,
		settings: settings,
		metrics:  m,
		logger:   logger,
	}
}

// BuildMessage composes the welcome email for a confirmed user.
func (s *Service) BuildMessage(ev *event.Event) (mailer.Message, error) {
	email, err := ev.Email()
	if err != nil {
		return mailer.Message{}, err
	}
	name := ev.AttributeOr(event.AttrName, s.settings.DefaultDisplayName)

	subject, text, html, err := renderWelcome(WelcomeData{
		Brand:    s.settings.BrandName,
		Name:     name,
		UserName: ev.UserName,
		Email:    email,
		Portal:   s.settings.PortalURL,
		Support:  s.settings.SupportAddress,
	})
	if err != nil {
		return mailer.Message{}, fmt.Errorf("render welcome email: %w", err)
	}

	return mailer.Message{
		From:    s.settings.SenderAddress,
		To:      email,
		ToName:  name,
		Subject: subject,
		Text:    text,
		HTML:    html,
	}, nil
}

// Process sends the welcome email for a confirmed signup. A confirmed
// password reset is not a new account and is skipped. Errors are returned
// for the dispatcher to log; they never reach the user.
func (s *Service) Process(ctx context.Context, ev *event.Event) error {
	correlationID := middleware.GetCorrelationID(ctx)

	if ev.Trigger() == event.TriggerPostConfirmationForgotPassword {
		s.logger.Info("confirmation is a password reset, no welcome email",
			zap.String("correlation_id", correlationID),
			zap.String("user_name", ev.UserName),
			zap.String("status", StatusSkipped),
		)
		s.metrics.IncrementWelcome(metrics.WelcomeSkipped)
		return nil
	}

	msg, err := s.BuildMessage(ev)
	if err != nil {
		s.metrics.IncrementWelcome(metrics.WelcomeFailed)
		return err
	}

	userID := ev.AttributeOr(event.AttrSub, ev.UserName)
	if !s.claim(ctx, userID, correlationID) {
		s.logger.Info("welcome email already sent for this user",
			zap.String("correlation_id", correlationID),
			zap.String("user_id", userID),
			zap.String("status", StatusDuplicate),
		)
		s.metrics.IncrementWelcome(metrics.WelcomeDuplicate)
		return nil
	}

	messageID, err := s.sender.Send(ctx, msg)
	if err != nil {
		s.release(ctx, userID, correlationID)
		s.metrics.IncrementWelcome(metrics.WelcomeFailed)
		if hookerr.KindOf(err) != hookerr.KindDelivery {
			err = hookerr.Delivery("SendFailed", err)
		}
		return err
	}

	s.metrics.IncrementWelcome(metrics.WelcomeSent)
	s.logger.Info("welcome email sent",
		zap.String("correlation_id", correlationID),
		zap.String("user_id", userID),
		config.EmailHash(msg.To),
		zap.String("message_id", messageID),
		zap.String("status", StatusSent),
	)
	return nil
}

// claim reports whether this invocation should send. Without a deduper, or
// when the deduper fails, it returns true: a duplicate welcome is preferable
// to none.
func (s *Service) claim(ctx context.Context, userID, correlationID string) bool {
	if s.deduper == nil || userID == "" {
		return true
	}
	isNew, err := s.deduper.MarkWelcomeSentIfNew(ctx, userID)
	if err != nil {
		s.logger.Warn("redis unavailable for idempotency check, proceeding with welcome email",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
			zap.String("user_id", userID),
		)
		return true
	}
	return isNew
}

func (s *Service) release(ctx context.Context, userID, correlationID string) {
	if s.deduper == nil || userID == "" {
		return
	}
	if err := s.deduper.ReleaseWelcomeSent(ctx, userID); err != nil {
		s.logger.Warn("failed to release welcome_sent marker",
			zap.Error(err),
			zap.String("correlation_id", correlationID),
			zap.String("user_id", userID),
		)
	}
}
