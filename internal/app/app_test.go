package app_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/app"
	"github.com/wiseuni/identity-hooks/internal/config"
	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
)

func testConfig() *config.Config {
	return &config.Config{
		SignupPolicyMode:       "blocklist",
		SignupDomains:          config.DefaultBlockedDomains,
		TrustedDomains:         []string{"wiseuni.com"},
		LoginRestrictedDomains: []string{"student.wiseuni.com"},
		LoginBlockStart:        "12:00",
		LoginBlockEnd:          "13:00",
		LoginBlockTimezone:     "UTC",
		BrandName:              "WiseUni",
		DefaultDisplayName:     "Student",
		SenderAddress:          "WiseUni Student Portal <noreply@wiseuni.co.uk>",
		PortalURL:              "https://app.wiseuni.com",
		SupportAddress:         "support@wiseuni.com",
		MailProvider:           config.MailProviderLog,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()
	a, err := app.New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNew_RegistersAllHooks(t *testing.T) {
	a := newTestApp(t, testConfig())

	assert.Equal(t, []string{
		event.HookCustomMessage,
		event.HookPostConfirmation,
		event.HookPreAuthentication,
		event.HookPreSignUp,
	}, a.Dispatcher.Names())
	assert.Empty(t, a.Checkers)
}

func TestNew_SignupGateIsWired(t *testing.T) {
	a := newTestApp(t, testConfig())

	_, err := a.Dispatcher.InvokeTrigger(context.Background(),
		[]byte(`{"triggerSource":"PreSignUp_SignUp","userName":"u","request":{"userAttributes":{"email":"x@tempmail.com"}},"response":{}}`))
	assert.ErrorIs(t, err, hookerr.ErrPolicyViolation)

	out, err := a.Dispatcher.InvokeTrigger(context.Background(),
		[]byte(`{"triggerSource":"PreSignUp_SignUp","userName":"u","request":{"userAttributes":{"email":"prof@wiseuni.com"}},"response":{}}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"triggerSource":"PreSignUp_SignUp","userName":"u","request":{"userAttributes":{"email":"prof@wiseuni.com"}},"response":{"autoConfirmUser":true,"autoVerifyEmail":true}}`, string(out))
}

func TestNew_CustomMessageIsWired(t *testing.T) {
	a := newTestApp(t, testConfig())

	out, err := a.Dispatcher.InvokeTrigger(context.Background(),
		[]byte(`{"triggerSource":"CustomMessage_SignUp","userName":"u","request":{"userAttributes":{"email":"a@b.c","name":"Ada"},"codeParameter":"{####}"},"response":{}}`))
	require.NoError(t, err)

	var decoded struct {
		Response struct {
			EmailSubject string `json:"emailSubject"`
			EmailMessage string `json:"emailMessage"`
		} `json:"response"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Contains(t, decoded.Response.EmailSubject, "WiseUni")
	assert.Contains(t, decoded.Response.EmailMessage, "{####}")
}

func TestNew_WelcomeNotifierIsWired(t *testing.T) {
	a := newTestApp(t, testConfig())
	payload := `{"triggerSource":"PostConfirmation_ConfirmSignUp","userName":"u","request":{"userAttributes":{"email":"a@b.c"}},"response":{}}`

	out, err := a.Dispatcher.InvokeTrigger(context.Background(), []byte(payload))
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(out))
}

func TestNew_ConfigErrors(t *testing.T) {
	cfg := testConfig()
	cfg.MailProvider = "carrier-pigeon"
	_, err := app.New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.LoginBlockTimezone = "Mars/Olympus_Mons"
	_, err = app.New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.RedisURL = "http://not-redis"
	_, err = app.New(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}
