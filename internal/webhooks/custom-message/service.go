package custommessage

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/middleware"
)

// Service customizes outbound code messages.
type Service struct {
	branding Branding
	logger   *zap.Logger
}

// NewService creates a message customizer.
func NewService(branding Branding, logger *zap.Logger) *Service {
	if branding.DefaultDisplayName == "" {
		branding.DefaultDisplayName = "Student"
	}
	return &Service{
		branding: branding,
		logger:   logger,
	}
}

// Render returns the subject and HTML body for a message kind.
func (s *Service) Render(kind MessageKind, name, code string) (string, string, error) {
	tmpl, ok := templates[kind]
	if !ok {
		return "", "", fmt.Errorf("no template for message kind %s", kind)
	}
	data := templateData{
		Brand:   s.branding.BrandName,
		Name:    name,
		Code:    code,
		Support: s.branding.SupportAddress,
	}

	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, data); err != nil {
		return "", "", fmt.Errorf("render %s subject: %w", kind, err)
	}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("render %s body: %w", kind, err)
	}
	return subject.String(), body.String(), nil
}

// Process sets emailSubject and emailMessage for known triggers. Unknown
// triggers return with the event untouched so the platform sends its default
// message. The response is only written once both parts rendered.
func (s *Service) Process(ctx context.Context, ev *event.Event) error {
	correlationID := middleware.GetCorrelationID(ctx)

	kind := KindFor(ev.Trigger())
	switch kind {
	case KindSignupVerification, KindPasswordReset, KindCodeResend:
	case KindNone:
		s.logger.Info("no custom message for trigger, using platform default",
			zap.String("correlation_id", correlationID),
			zap.String("trigger_source", ev.TriggerSource),
		)
		return nil
	default:
		return fmt.Errorf("unhandled message kind %d", kind)
	}

	if ev.Request == nil || !ev.Request.HasCode {
		return hookerr.MalformedEvent("request has no codeParameter")
	}
	name := ev.AttributeOr(event.AttrName, s.branding.DefaultDisplayName)

	subject, body, err := s.Render(kind, name, ev.Request.CodeParameter)
	if err != nil {
		return err
	}
	ev.Response.SetEmail(subject, body)

	s.logger.Info("custom message created",
		zap.String("correlation_id", correlationID),
		zap.String("trigger_source", ev.TriggerSource),
		zap.String("message_kind", kind.String()),
		zap.String("user_name", ev.UserName),
	)
	return nil
}
