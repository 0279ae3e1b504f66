package presignup

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/middleware"
	"github.com/wiseuni/identity-hooks/internal/policy"
)

// Service evaluates signup attempts.
type Service struct {
	policy  policy.DomainPolicy
	trusted policy.DomainSet
	logger  *zap.Logger
}

// NewService creates a signup gate. Trusted domains count as members of an
// allow-list policy.
func NewService(p policy.DomainPolicy, trusted policy.DomainSet, logger *zap.Logger) *Service {
	return &Service{
		policy:  p,
		trusted: trusted,
		logger:  logger,
	}
}

// Evaluate decides whether an address may register.
func (s *Service) Evaluate(email string) (Decision, error) {
	domain, err := policy.EmailDomain(email)
	if err != nil {
		return Decision{}, err
	}

	trusted := s.trusted.Contains(domain)
	if !trusted || s.policy.Mode == policy.ModeBlockList {
		if !s.policy.Permits(domain) {
			return Decision{Domain: domain}, hookerr.PolicyViolation(s.rejectionReason())
		}
	}

	return Decision{Domain: domain, AutoConfirm: trusted}, nil
}

func (s *Service) rejectionReason() string {
	if s.policy.Mode == policy.ModeBlockList {
		return ReasonBlockedDomain
	}
	allowed := policy.NewDomainSet(append(s.policy.Domains.Sorted(), s.trusted.Sorted()...)...)
	return fmt.Sprintf(reasonNotAllowedFmt, strings.Join(allowed.Sorted(), ", "))
}

// Process runs the gate against a PreSignUp event. A trusted domain sets
// autoConfirmUser and autoVerifyEmail; every other accepted address leaves the
// response untouched.
func (s *Service) Process(ctx context.Context, ev *event.Event) error {
	correlationID := middleware.GetCorrelationID(ctx)

	email, err := ev.Email()
	if err != nil {
		return err
	}

	decision, err := s.Evaluate(email)
	if err != nil {
		s.logger.Warn("signup rejected",
			zap.String("correlation_id", correlationID),
			zap.String("user_name", ev.UserName),
			config.EmailHash(email),
			zap.String("domain", decision.Domain),
			zap.String("kind", hookerr.KindOf(err).String()),
		)
		return err
	}

	if decision.AutoConfirm {
		ev.Response.SetAutoConfirm(true)
	}

	s.logger.Info("signup accepted",
		zap.String("correlation_id", correlationID),
		zap.String("user_name", ev.UserName),
		config.EmailHash(email),
		zap.String("domain", decision.Domain),
		zap.Bool("auto_confirm", decision.AutoConfirm),
	)
	return nil
}
