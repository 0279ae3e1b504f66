// Package provisioner pushes the email verification template into a Cognito
// user pool.
package provisioner

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.uber.org/zap"
)

// CodePlaceholder is replaced by Cognito with the one-time verification code.
const CodePlaceholder = "{####}"

// DefaultSubject is the verification email subject.
const DefaultSubject = "Your WiseUni verification code"

// Cognito rejects verification messages outside these bounds.
const (
	minMessageLength = 6
	maxMessageLength = 20000
)

//go:embed templates/verification.html
var defaultTemplate string

var (
	// ErrMissingPlaceholder is returned for templates without CodePlaceholder.
	ErrMissingPlaceholder = errors.New("template does not contain the " + CodePlaceholder + " code placeholder")
	// ErrTemplateLength is returned for templates Cognito would reject by size.
	ErrTemplateLength = fmt.Errorf("template must be between %d and %d characters", minMessageLength, maxMessageLength)
	// ErrUserPoolNotFound is returned when the pool does not exist.
	ErrUserPoolNotFound = errors.New("user pool not found")
)

// CognitoAPI is the subset of the Cognito client used here.
type CognitoAPI interface {
	DescribeUserPool(ctx context.Context, in *cip.DescribeUserPoolInput, optFns ...func(*cip.Options)) (*cip.DescribeUserPoolOutput, error)
	UpdateUserPool(ctx context.Context, in *cip.UpdateUserPoolInput, optFns ...func(*cip.Options)) (*cip.UpdateUserPoolOutput, error)
}

// Request describes one template push.
type Request struct {
	UserPoolID string
	Subject    string
	Template   string
	// DryRun validates and reports without calling UpdateUserPool.
	DryRun bool
}

// Result reports what changed.
type Result struct {
	UserPoolID     string
	PoolName       string
	SubjectChanged bool
	MessageChanged bool
	Applied        bool
}

// Changed reports whether the pool differs from the request.
func (r Result) Changed() bool {
	return r.SubjectChanged || r.MessageChanged
}

// DefaultTemplate returns the built-in verification template.
func DefaultTemplate() string {
	return defaultTemplate
}

// LoadTemplate reads and validates a template file. An empty path returns
// the built-in template.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return defaultTemplate, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}
	body := string(b)
	if err := ValidateTemplate(body); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return body, nil
}

// ValidateTemplate checks a verification message before it is sent to Cognito.
func ValidateTemplate(body string) error {
	if n := utf8.RuneCountInString(body); n < minMessageLength || n > maxMessageLength {
		return ErrTemplateLength
	}
	if !strings.Contains(body, CodePlaceholder) {
		return ErrMissingPlaceholder
	}
	return nil
}

// Provisioner updates user pool verification templates.
type Provisioner struct {
	client CognitoAPI
	logger *zap.Logger
}

// New creates a provisioner.
func New(client CognitoAPI, logger *zap.Logger) *Provisioner {
	return &Provisioner{client: client, logger: logger}
}

// Apply reads the current pool and writes the verification subject and
// message. UpdateUserPool resets any attribute it is not given, so the
// current pool settings are carried over.
func (p *Provisioner) Apply(ctx context.Context, req Request) (Result, error) {
	if req.UserPoolID == "" {
		return Result{}, errors.New("user pool id is required")
	}
	if req.Subject == "" {
		req.Subject = DefaultSubject
	}
	if err := ValidateTemplate(req.Template); err != nil {
		return Result{}, err
	}

	out, err := p.client.DescribeUserPool(ctx, &cip.DescribeUserPoolInput{UserPoolId: aws.String(req.UserPoolID)})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return Result{}, fmt.Errorf("%s: %w", req.UserPoolID, ErrUserPoolNotFound)
		}
		return Result{}, fmt.Errorf("failed to describe user pool: %w", err)
	}
	if out.UserPool == nil {
		return Result{}, fmt.Errorf("%s: %w", req.UserPoolID, ErrUserPoolNotFound)
	}
	pool := out.UserPool

	current := currentTemplate(pool)
	result := Result{
		UserPoolID:     req.UserPoolID,
		PoolName:       aws.ToString(pool.Name),
		SubjectChanged: aws.ToString(current.EmailSubject) != req.Subject,
		MessageChanged: aws.ToString(current.EmailMessage) != req.Template,
	}

	p.logger.Info("verification template diff",
		zap.String("user_pool_id", req.UserPoolID),
		zap.String("pool_name", result.PoolName),
		zap.Bool("subject_changed", result.SubjectChanged),
		zap.Bool("message_changed", result.MessageChanged),
		zap.Bool("dry_run", req.DryRun),
	)

	if req.DryRun || !result.Changed() {
		return result, nil
	}

	if _, err := p.client.UpdateUserPool(ctx, BuildUpdate(pool, req.Subject, req.Template)); err != nil {
		return result, fmt.Errorf("failed to update user pool: %w", err)
	}
	result.Applied = true

	p.logger.Info("verification template updated",
		zap.String("user_pool_id", req.UserPoolID),
	)
	return result, nil
}

// BuildUpdate copies the mutable settings of pool into an update request that
// only changes the email verification subject and message.
func BuildUpdate(pool *types.UserPoolType, subject, message string) *cip.UpdateUserPoolInput {
	tmpl := currentTemplate(pool)
	tmpl.DefaultEmailOption = types.DefaultEmailOptionTypeConfirmWithCode
	tmpl.EmailSubject = aws.String(subject)
	tmpl.EmailMessage = aws.String(message)

	return &cip.UpdateUserPoolInput{
		UserPoolId:                  pool.Id,
		EmailVerificationSubject:    aws.String(subject),
		EmailVerificationMessage:    aws.String(message),
		VerificationMessageTemplate: tmpl,

		AccountRecoverySetting:      pool.AccountRecoverySetting,
		AdminCreateUserConfig:       pool.AdminCreateUserConfig,
		AutoVerifiedAttributes:      pool.AutoVerifiedAttributes,
		DeletionProtection:          pool.DeletionProtection,
		DeviceConfiguration:         pool.DeviceConfiguration,
		EmailConfiguration:          pool.EmailConfiguration,
		LambdaConfig:                pool.LambdaConfig,
		MfaConfiguration:            pool.MfaConfiguration,
		Policies:                    pool.Policies,
		SmsAuthenticationMessage:    pool.SmsAuthenticationMessage,
		SmsConfiguration:            pool.SmsConfiguration,
		SmsVerificationMessage:      pool.SmsVerificationMessage,
		UserAttributeUpdateSettings: pool.UserAttributeUpdateSettings,
		UserPoolAddOns:              pool.UserPoolAddOns,
		UserPoolTags:                pool.UserPoolTags,
	}
}

// currentTemplate returns a copy of the pool's verification template,
// falling back to the legacy top-level fields.
func currentTemplate(pool *types.UserPoolType) *types.VerificationMessageTemplateType {
	if pool.VerificationMessageTemplate != nil {
		tmpl := *pool.VerificationMessageTemplate
		return &tmpl
	}
	return &types.VerificationMessageTemplateType{
		EmailSubject: pool.EmailVerificationSubject,
		EmailMessage: pool.EmailVerificationMessage,
		SmsMessage:   pool.SmsVerificationMessage,
	}
}
