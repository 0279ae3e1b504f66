package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wiseuni/identity-hooks/internal/hookerr"
	"github.com/wiseuni/identity-hooks/internal/policy"
)

func TestEmailDomain(t *testing.T) {
	cases := []struct {
		email  string
		domain string
	}{
		{"ada@example.com", "example.com"},
		{"  Ada@Example.COM ", "example.com"},
		{"weird@name@student.wiseuni.com", "student.wiseuni.com"},
	}
	for _, tc := range cases {
		got, err := policy.EmailDomain(tc.email)
		require.NoError(t, err, tc.email)
		assert.Equal(t, tc.domain, got)
	}
}

func TestEmailDomain_Invalid(t *testing.T) {
	for _, email := range []string{"", "ada", "ada.example.com", "ada@", "  ada@  "} {
		_, err := policy.EmailDomain(email)
		assert.ErrorIs(t, err, hookerr.ErrInvalidInput, email)
		assert.Equal(t, policy.InvalidEmailReason, err.Error())
	}
}

func TestDomainPolicy_Permits(t *testing.T) {
	domains := policy.NewDomainSet("mailinator.com", " TempMail.com ", "")

	block := policy.DomainPolicy{Mode: policy.ModeBlockList, Domains: domains}
	assert.False(t, block.Permits("mailinator.com"))
	assert.False(t, block.Permits("tempmail.com"))
	assert.True(t, block.Permits("gmail.com"))

	allow := policy.DomainPolicy{Mode: policy.ModeAllowList, Domains: domains}
	assert.True(t, allow.Permits("mailinator.com"))
	assert.False(t, allow.Permits("gmail.com"))

	assert.Equal(t, []string{"mailinator.com", "tempmail.com"}, domains.Sorted())
}

func TestParseMode(t *testing.T) {
	m, err := policy.ParseMode("AllowList")
	require.NoError(t, err)
	assert.Equal(t, policy.ModeAllowList, m)

	_, err = policy.ParseMode("denylist")
	assert.Error(t, err)
}

func TestParseClockTime(t *testing.T) {
	c, err := policy.ParseClockTime("09:05")
	require.NoError(t, err)
	assert.Equal(t, policy.ClockTime{Hour: 9, Minute: 5}, c)
	assert.Equal(t, "09:05", c.String())

	for _, bad := range []string{"24:00", "12", "noon", "12:60"} {
		_, err := policy.ParseClockTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestWindow_HalfOpen(t *testing.T) {
	w := policy.Window{
		Start:    policy.ClockTime{Hour: 12},
		End:      policy.ClockTime{Hour: 13},
		Location: time.UTC,
	}
	at := func(h, m, s, ns int) time.Time {
		return time.Date(2026, 3, 2, h, m, s, ns, time.UTC)
	}

	assert.False(t, w.Contains(at(11, 59, 59, 999999999)))
	assert.True(t, w.Contains(at(12, 0, 0, 0)), "start is inclusive")
	assert.True(t, w.Contains(at(12, 30, 0, 0)))
	assert.True(t, w.Contains(at(12, 59, 59, 999999999)))
	assert.False(t, w.Contains(at(13, 0, 0, 0)), "end is exclusive")
	assert.False(t, w.Contains(at(18, 0, 0, 0)))
}

func TestWindow_UsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	w := policy.Window{
		Start:    policy.ClockTime{Hour: 12},
		End:      policy.ClockTime{Hour: 13},
		Location: loc,
	}

	// 10:30 UTC is 12:30 in UTC+2.
	assert.True(t, w.Contains(time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)))
}

func TestWindow_WrapsMidnight(t *testing.T) {
	w := policy.Window{
		Start:    policy.ClockTime{Hour: 22},
		End:      policy.ClockTime{Hour: 6},
		Location: time.UTC,
	}
	assert.True(t, w.Contains(time.Date(2026, 3, 2, 23, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 2, 6, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
}

func TestWindow_EmptyWhenStartEqualsEnd(t *testing.T) {
	w := policy.Window{Start: policy.ClockTime{Hour: 12}, End: policy.ClockTime{Hour: 12}, Location: time.UTC}
	assert.False(t, w.Contains(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)))
}
