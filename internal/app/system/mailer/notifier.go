package mailer

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// Notifier sends the account lifecycle emails.
type Notifier interface {
	SendPasscode(ctx context.Context, to, name, code string, ttl time.Duration) error
	SendWelcome(ctx context.Context, to, name string) error
	SendPasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) error
}

// Templated renders the account emails and hands them to a Sender.
type Templated struct {
	Sender      Sender
	SiteName    string
	FrontendURL string
}

// NewNotifier returns a Templated notifier. frontendURL is the base of the
// links placed in welcome and reset emails.
func NewNotifier(sender Sender, siteName, frontendURL string) *Templated {
	if siteName == "" {
		siteName = "PeerHub"
	}
	return &Templated{
		Sender:      sender,
		SiteName:    siteName,
		FrontendURL: strings.TrimSuffix(frontendURL, "/"),
	}
}

func (n *Templated) SendPasscode(ctx context.Context, to, name, code string, ttl time.Duration) error {
	e := BuildPasscodeEmail(PasscodeEmailData{
		SiteName:  n.SiteName,
		Name:      name,
		Code:      code,
		ExpiresIn: HumanDuration(ttl),
	})
	e.To = to
	return n.Sender.Send(ctx, e)
}

func (n *Templated) SendWelcome(ctx context.Context, to, name string) error {
	e := BuildWelcomeEmail(WelcomeEmailData{
		SiteName: n.SiteName,
		Name:     name,
		StartURL: n.FrontendURL,
	})
	e.To = to
	return n.Sender.Send(ctx, e)
}

func (n *Templated) SendPasswordReset(ctx context.Context, to, name, token string, ttl time.Duration) error {
	e := BuildPasswordResetEmail(ResetEmailData{
		SiteName:  n.SiteName,
		Name:      name,
		ResetURL:  n.FrontendURL + "/reset-password/" + url.PathEscape(token),
		ExpiresIn: HumanDuration(ttl),
	})
	e.To = to
	return n.Sender.Send(ctx, e)
}
