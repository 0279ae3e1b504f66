package preauthentication_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wiseuni/identity-hooks/internal/event"
	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/policy"
	preauthentication "github.com/wiseuni/identity-hooks/internal/webhooks/pre-authentication"
)

func lunchBreak() policy.Window {
	return policy.Window{
		Start:    policy.ClockTime{Hour: 12},
		End:      policy.ClockTime{Hour: 13},
		Location: time.UTC,
	}
}

func newTestService(t *testing.T, at time.Time) *preauthentication.Service {
	t.Helper()
	settings := preauthentication.Settings{
		RestrictedDomains: policy.NewDomainSet("student.wiseuni.com"),
		Window:            lunchBreak(),
	}
	return preauthentication.NewServiceWithClock(settings, func() time.Time { return at }, zap.NewNop())
}

func clock(h, m, s int) time.Time {
	return time.Date(2026, 10, 19, h, m, s, 0, time.UTC)
}

func loginEvent(t *testing.T, userName, email string) *event.Event {
	t.Helper()
	payload, err := json.Marshal(map[string]any{
		"triggerSource": "PreAuthentication_Authentication",
		"userName":      userName,
		"request":       map[string]any{"userAttributes": map[string]string{"email": email}, "validationData": map[string]string{}},
		"response":      map[string]any{},
	})
	require.NoError(t, err)
	ev, err := event.Decode(payload)
	require.NoError(t, err)
	return ev
}

func TestProcess_StudentBlockedInsideWindow(t *testing.T) {
	for _, at := range []time.Time{clock(12, 0, 0), clock(12, 30, 0), clock(12, 59, 59)} {
		svc := newTestService(t, at)
		err := svc.Process(context.Background(), loginEvent(t, "s1", "s1@student.wiseuni.com"))

		require.ErrorIs(t, err, hookerr.ErrPolicyViolation, at.String())
		assert.Equal(t, preauthentication.DefaultBlockedMessage, err.Error())
	}
}

func TestProcess_StudentAllowedAtWindowEnd(t *testing.T) {
	svc := newTestService(t, clock(13, 0, 0))
	assert.NoError(t, svc.Process(context.Background(), loginEvent(t, "s1", "s1@student.wiseuni.com")))
}

func TestProcess_StudentAllowedOutsideWindow(t *testing.T) {
	for _, at := range []time.Time{clock(8, 0, 0), clock(11, 59, 59), clock(18, 0, 0)} {
		svc := newTestService(t, at)
		assert.NoError(t, svc.Process(context.Background(), loginEvent(t, "s1", "S1@Student.WiseUni.com")), at.String())
	}
}

func TestProcess_UnrestrictedDomainsAlwaysAllowed(t *testing.T) {
	for _, at := range []time.Time{clock(12, 0, 0), clock(12, 30, 0), clock(3, 0, 0)} {
		svc := newTestService(t, at)
		for _, email := range []string{"prof@wiseuni.com", "ada@gmail.com", "x@wiseuni.student.com"} {
			assert.NoError(t, svc.Process(context.Background(), loginEvent(t, "u", email)), email)
		}
	}
}

func TestProcess_MissingUserNameIsMalformed(t *testing.T) {
	svc := newTestService(t, clock(9, 0, 0))
	err := svc.Process(context.Background(), loginEvent(t, "", "s1@student.wiseuni.com"))
	assert.ErrorIs(t, err, hookerr.ErrMalformedEvent)
}

func TestProcess_MissingEmailIsMalformed(t *testing.T) {
	ev, err := event.Decode([]byte(`{"userName":"s1","request":{"userAttributes":{}}}`))
	require.NoError(t, err)

	err = newTestService(t, clock(9, 0, 0)).Process(context.Background(), ev)
	assert.ErrorIs(t, err, hookerr.ErrMalformedEvent)
}

func TestProcess_InvalidEmailIsInvalidInput(t *testing.T) {
	for _, email := range []string{"student", "student@", ""} {
		err := newTestService(t, clock(12, 30, 0)).Process(context.Background(), loginEvent(t, "s1", email))
		assert.ErrorIs(t, err, hookerr.ErrInvalidInput, email)
	}
}

func TestCheck_ReportsBlockDetails(t *testing.T) {
	result, err := newTestService(t, clock(12, 15, 0)).Check("s1@student.wiseuni.com")
	require.NoError(t, err)

	assert.False(t, result.Allowed)
	assert.True(t, result.Restricted)
	assert.Equal(t, "student.wiseuni.com", result.Domain)
	assert.Equal(t, preauthentication.ReasonLoginWindow, result.Reason)
	assert.Equal(t, clock(12, 15, 0), result.At)
}

func TestProcess_CustomMessage(t *testing.T) {
	settings := preauthentication.Settings{
		RestrictedDomains: policy.NewDomainSet("student.wiseuni.com"),
		Window:            lunchBreak(),
		BlockedMessage:    "Back at 13:00",
	}
	svc := preauthentication.NewServiceWithClock(settings, func() time.Time { return clock(12, 1, 0) }, zap.NewNop())

	err := svc.Process(context.Background(), loginEvent(t, "s1", "s1@student.wiseuni.com"))
	require.Error(t, err)
	assert.Equal(t, "Back at 13:00", err.Error())
}
