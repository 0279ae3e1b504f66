// Package app wires configuration into the hooks, their collaborators and the
// dispatcher. Both the HTTP server and the Lambda entrypoint build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/clients"
	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/dispatch"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/health"
	"github.com/wiseuni/identity-hooks/internal/mailer"
	"github.com/wiseuni/identity-hooks/internal/metrics"
	"github.com/wiseuni/identity-hooks/internal/policy"
	custommessage "github.com/wiseuni/identity-hooks/internal/webhooks/custom-message"
	postconfirmation "github.com/wiseuni/identity-hooks/internal/webhooks/post-confirmation"
	preauthentication "github.com/wiseuni/identity-hooks/internal/webhooks/pre-authentication"
	presignup "github.com/wiseuni/identity-hooks/internal/webhooks/pre-signup"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Registry   *prometheus.Registry
	Metrics    *metrics.Metrics
	Dispatcher *dispatch.Dispatcher
	// Checkers are the external dependencies that gate readiness.
	Checkers []health.Checker

	closers []io.Closer
}

// New builds every hook from cfg and registers it on a dispatcher.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: reg,
		Metrics:  metrics.New(reg),
	}

	sender, err := a.newSender(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	var deduper postconfirmation.Deduper
	if cfg.RedisURL != "" {
		redisClient, err := clients.NewRedisClient(cfg.RedisURL, cfg.WelcomeDedupeTTL)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, redisClient)
		a.Checkers = append(a.Checkers, redisClient)
		deduper = redisClient
	}

	window, err := cfg.LoginWindow()
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	d := dispatch.New(a.Metrics, logger)
	d.Register(dispatch.Route{
		Name:   event.HookPreSignUp,
		Policy: dispatch.PolicyPropagate,
		Hook: presignup.NewService(
			cfg.SignupPolicy(),
			policy.NewDomainSet(cfg.TrustedDomains...),
			hookLogger(logger, event.HookPreSignUp),
		),
	})
	d.Register(dispatch.Route{
		Name:   event.HookCustomMessage,
		Policy: dispatch.PolicySuppress,
		Hook: custommessage.NewService(custommessage.Branding{
			BrandName:          cfg.BrandName,
			SupportAddress:     cfg.SupportAddress,
			DefaultDisplayName: cfg.DefaultDisplayName,
		}, hookLogger(logger, event.HookCustomMessage)),
	})
	d.Register(dispatch.Route{
		Name:   event.HookPreAuthentication,
		Policy: dispatch.PolicyPropagate,
		Hook: preauthentication.NewService(preauthentication.Settings{
			RestrictedDomains: policy.NewDomainSet(cfg.LoginRestrictedDomains...),
			Window:            window,
			BlockedMessage:    cfg.LoginBlockMessage,
		}, hookLogger(logger, event.HookPreAuthentication)),
	})
	d.Register(dispatch.Route{
		Name:   event.HookPostConfirmation,
		Policy: dispatch.PolicySuppress,
		Hook: postconfirmation.NewService(sender, deduper, postconfirmation.Settings{
			BrandName:          cfg.BrandName,
			SenderAddress:      cfg.SenderAddress,
			PortalURL:          cfg.PortalURL,
			SupportAddress:     cfg.SupportAddress,
			DefaultDisplayName: cfg.DefaultDisplayName,
		}, a.Metrics, hookLogger(logger, event.HookPostConfirmation)),
	})
	a.Dispatcher = d

	logger.Info("hooks registered",
		zap.Strings("hooks", d.Names()),
		zap.String("mail_provider", cfg.MailProvider),
		zap.Bool("welcome_dedupe", deduper != nil),
		zap.String("login_window", window.String()),
	)
	return a, nil
}

// newSender builds the welcome mail collaborator for cfg.MailProvider.
func (a *App) newSender(ctx context.Context) (mailer.Sender, error) {
	cfg := a.Config
	switch cfg.MailProvider {
	case config.MailProviderSES:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return mailer.NewSESSender(sesv2.NewFromConfig(awsCfg), cfg.SESConfigurationSet), nil
	case config.MailProviderMailerSend:
		return mailer.NewMailerSendSender(cfg.MailerSendAPIKey), nil
	case config.MailProviderQueue:
		rabbitMQClient, err := clients.NewRabbitMQClient(cfg.RabbitMQURL, cfg.NotificationsQueue)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rabbitMQClient)
		a.Checkers = append(a.Checkers, rabbitMQClient)
		return mailer.NewQueueSender(rabbitMQClient), nil
	case config.MailProviderLog:
		return mailer.NewLogSender(a.Logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.MailProvider)
	}
}

// Close releases the external clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func hookLogger(logger *zap.Logger, hook string) *zap.Logger {
	return logger.With(zap.String("hook", hook))
}
