package mailer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSender struct {
	sent []Email
	err  error
}

func (c *captureSender) Send(_ context.Context, e Email) error {
	c.sent = append(c.sent, e)
	return c.err
}

func TestBuildPasscodeEmail(t *testing.T) {
	e := BuildPasscodeEmail(PasscodeEmailData{SiteName: "PeerHub", Name: "Ada", Code: "123456", ExpiresIn: "10 minutes"})

	assert.Equal(t, "PeerHub - Verify Your Email", e.Subject)
	assert.Contains(t, e.TextBody, "123456")
	assert.Contains(t, e.TextBody, "10 minutes")
	assert.Contains(t, e.HTMLBody, "123456")
	assert.Contains(t, e.HTMLBody, "Hi Ada")
}

func TestBuildEmail_EscapesHTML(t *testing.T) {
	e := BuildWelcomeEmail(WelcomeEmailData{SiteName: "PeerHub", Name: "<b>Ada</b>", StartURL: "https://example.com"})
	assert.NotContains(t, e.HTMLBody, "<b>Ada</b>")
	assert.Contains(t, e.HTMLBody, "&lt;b&gt;Ada&lt;/b&gt;")
}

func TestHumanDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{10 * time.Minute, "10 minutes"},
		{time.Hour, "1 hour"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Minute, "90 minutes"},
		{time.Minute, "1 minute"},
		{30 * time.Second, "30 seconds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HumanDuration(tt.in), tt.in.String())
	}
}

func TestNotifier_SendPasscode(t *testing.T) {
	s := &captureSender{}
	n := NewNotifier(s, "", "https://app.example.com/")

	require.NoError(t, n.SendPasscode(context.Background(), "ada@example.com", "Ada", "654321", 10*time.Minute))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "ada@example.com", s.sent[0].To)
	assert.True(t, strings.HasPrefix(s.sent[0].Subject, "PeerHub"))
}

func TestNotifier_SendPasswordReset_Link(t *testing.T) {
	s := &captureSender{}
	n := NewNotifier(s, "PeerHub", "https://app.example.com/")

	require.NoError(t, n.SendPasswordReset(context.Background(), "ada@example.com", "Ada", "abc123", time.Hour))
	require.Len(t, s.sent, 1)
	assert.Contains(t, s.sent[0].TextBody, "https://app.example.com/reset-password/abc123")
	assert.Contains(t, s.sent[0].TextBody, "1 hour")
}

func TestNotifier_PropagatesSenderError(t *testing.T) {
	n := NewNotifier(Disabled{}, "PeerHub", "")
	err := n.SendWelcome(context.Background(), "ada@example.com", "Ada")
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestNewSMTP_Validation(t *testing.T) {
	_, err := NewSMTP(Config{From: "noreply@example.com"})
	assert.Error(t, err)

	_, err = NewSMTP(Config{Host: "smtp.example.com"})
	assert.Error(t, err)

	s, err := NewSMTP(Config{Host: "smtp.example.com", From: "noreply@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 587, s.cfg.Port)
}

func TestSMTP_Message(t *testing.T) {
	s, err := NewSMTP(Config{Host: "smtp.example.com", From: "noreply@example.com", FromName: "PeerHub"})
	require.NoError(t, err)

	_, err = s.message(Email{To: "not an address", Subject: "x", TextBody: "y"})
	assert.Error(t, err)

	msg, err := s.message(Email{To: "ada@example.com", Subject: "Hello", TextBody: "body", HTMLBody: "<p>body</p>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, msg.GetGenHeader("Subject"))
}
