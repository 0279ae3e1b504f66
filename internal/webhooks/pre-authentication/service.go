package preauthentication

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/middleware"
	"github.com/wiseuni/identity-hooks/internal/policy"
)

// Service handles the business logic for the login gate.
type Service struct {
	settings Settings
	now      func() time.Time
	logger   *zap.Logger
}

// NewService creates a login gate using the wall clock.
func NewService(settings Settings, logger *zap.Logger) *Service {
	return NewServiceWithClock(settings, time.Now, logger)
}

// NewServiceWithClock creates a login gate with the given clock.
// This constructor is intended for testing.
func NewServiceWithClock(settings Settings, now func() time.Time, logger *zap.Logger) *Service {
	if settings.BlockedMessage == "" {
		settings.BlockedMessage = DefaultBlockedMessage
	}
	return &Service{
		settings: settings,
		now:      now,
		logger:   logger,
	}
}

// Check evaluates one login attempt for an address at the current time.
// Unrestricted domains are allowed without looking at the clock.
func (s *Service) Check(email string) (CheckResult, error) {
	domain, err := policy.EmailDomain(email)
	if err != nil {
		return CheckResult{}, err
	}
	if !s.settings.RestrictedDomains.Contains(domain) {
		return CheckResult{Allowed: true, Domain: domain}, nil
	}

	now := s.now()
	if !s.settings.Window.Contains(now) {
		return CheckResult{Allowed: true, Domain: domain, Restricted: true, At: now}, nil
	}
	return CheckResult{
		Allowed:    false,
		Domain:     domain,
		Restricted: true,
		Reason:     ReasonLoginWindow,
		Message:    s.settings.BlockedMessage,
		At:         now,
	}, nil
}

// Process runs the gate against a PreAuthentication event. Every failure is
// returned so the login does not proceed.
func (s *Service) Process(ctx context.Context, ev *event.Event) error {
	correlationID := middleware.GetCorrelationID(ctx)

	if ev.UserName == "" {
		return hookerr.MalformedEvent("event has no userName")
	}
	email, err := ev.Email()
	if err != nil {
		return err
	}

	result, err := s.Check(email)
	if err != nil {
		s.logger.Warn("login rejected: invalid email",
			zap.String("correlation_id", correlationID),
			zap.String("user_name", ev.UserName),
			config.EmailHash(email),
		)
		return err
	}

	if !result.Allowed {
		s.logger.Warn("login attempt blocked",
			zap.String("correlation_id", correlationID),
			zap.String("user_name", ev.UserName),
			zap.String("domain", result.Domain),
			zap.String("window", s.settings.Window.String()),
			zap.Time("at", result.At),
			zap.String("block_reason", result.Reason),
		)
		return hookerr.PolicyViolation(result.Message)
	}

	s.logger.Info("login attempt allowed",
		zap.String("correlation_id", correlationID),
		zap.String("user_name", ev.UserName),
		zap.String("domain", result.Domain),
		zap.Bool("restricted", result.Restricted),
	)
	return nil
}
