// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// PasscodeEmailData holds data for the signup passcode email.
type PasscodeEmailData struct {
	SiteName  string
	Name      string
	Code      string
	ExpiresIn string // e.g. "10 minutes"
}

// WelcomeEmailData holds data for the post-verification welcome email.
type WelcomeEmailData struct {
	SiteName string
	Name     string
	StartURL string
}

// ResetEmailData holds data for the password reset email.
type ResetEmailData struct {
	SiteName  string
	Name      string
	ResetURL  string
	ExpiresIn string
}

// BuildPasscodeEmail creates the verification email with HTML and text bodies.
func BuildPasscodeEmail(data PasscodeEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&text, "Your %s verification code is: %s\n\n", data.SiteName, data.Code)
	fmt.Fprintf(&text, "This code expires in %s.\n\n", data.ExpiresIn)
	text.WriteString("If you did not request this code, you can safely ignore this email.\n")

	return Email{
		Subject:  fmt.Sprintf("%s - Verify Your Email", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(passcodeHTML, data),
	}
}

// BuildWelcomeEmail creates the welcome email sent once an account is verified.
func BuildWelcomeEmail(data WelcomeEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&text, "Your email has been verified. You're now part of the %s community.\n\n", data.SiteName)
	text.WriteString("Add the skills you want to learn and the ones you can teach to start getting matched.\n\n")
	fmt.Fprintf(&text, "Get started: %s\n", data.StartURL)

	return Email{
		Subject:  fmt.Sprintf("Welcome to %s!", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(welcomeHTML, data),
	}
}

// BuildPasswordResetEmail creates the reset email carrying the reset link.
func BuildPasswordResetEmail(data ResetEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Hi %s,\n\n", data.Name)
	fmt.Fprintf(&text, "We received a request to reset your %s password. Open this link to choose a new one:\n\n", data.SiteName)
	text.WriteString(data.ResetURL + "\n\n")
	fmt.Fprintf(&text, "This link expires in %s. If you didn't request a reset, ignore this email and your password won't change.\n", data.ExpiresIn)

	return Email{
		Subject:  fmt.Sprintf("%s - Password Reset Request", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(resetHTML, data),
	}
}

// HumanDuration renders d the way the emails phrase expiry ("10 minutes", "1 hour").
func HumanDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute:
		return plural(int(d/time.Minute), "minute")
	default:
		return plural(int(d/time.Second), "second")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

var (
	passcodeHTML = template.Must(template.New("passcode").Parse(layoutHTML + `{{define "content"}}
<p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Name}},</p>
<p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">Please use the following code to verify your email address:</p>
<div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
  <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Code}}</span>
</div>
<p style="margin: 0; font-size: 13px; color: #9ca3af; text-align: center;">This code expires in {{.ExpiresIn}}.</p>
{{end}}{{define "footer"}}If you did not request this code, you can safely ignore this email.{{end}}`))

	welcomeHTML = template.Must(template.New("welcome").Parse(layoutHTML + `{{define "content"}}
<p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Name}},</p>
<p style="margin: 0 0 16px; font-size: 16px; color: #374151; line-height: 1.5;">Your email has been verified. You're now part of the {{.SiteName}} community.</p>
<ul style="margin: 0 0 24px; padding-left: 20px; color: #374151; line-height: 1.6;">
  <li>Add the skills you want to learn and the ones you can teach</li>
  <li>Get matched with people whose skills complement yours</li>
  <li>Connect and start learning from each other</li>
</ul>
<p style="text-align: center; margin: 0;"><a href="{{.StartURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">Get Started</a></p>
{{end}}{{define "footer"}}You are receiving this because you signed up for {{.SiteName}}.{{end}}`))

	resetHTML = template.Must(template.New("reset").Parse(layoutHTML + `{{define "content"}}
<p style="margin: 0 0 16px; font-size: 16px; color: #374151;">Hi {{.Name}},</p>
<p style="margin: 0 0 24px; font-size: 16px; color: #374151; line-height: 1.5;">We received a request to reset your password. Click the button below to choose a new one:</p>
<p style="text-align: center; margin: 0 0 24px;"><a href="{{.ResetURL}}" style="display: inline-block; padding: 14px 32px; background-color: #4f46e5; color: #ffffff; text-decoration: none; font-size: 16px; font-weight: 500; border-radius: 6px;">Reset Password</a></p>
<p style="margin: 0 0 8px; font-size: 13px; color: #6b7280; text-align: center;">Or copy this link into your browser:</p>
<p style="margin: 0 0 24px; font-size: 12px; color: #6b7280; word-break: break-all; text-align: center;">{{.ResetURL}}</p>
<p style="margin: 0; font-size: 13px; color: #9ca3af; text-align: center;">This link expires in {{.ExpiresIn}}.</p>
{{end}}{{define "footer"}}If you didn't request a reset, ignore this email. Your password won't change.{{end}}`))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	_ = t.Execute(&buf, data)
	return buf.String()
}

const layoutHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px; box-shadow: 0 2px 4px rgba(0, 0, 0, 0.1);">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">{{template "content" .}}</td>
          </tr>
          <tr>
            <td style="padding: 24px 32px; background-color: #f9fafb; border-top: 1px solid #e5e7eb; border-radius: 0 0 8px 8px;">
              <p style="margin: 0; font-size: 12px; color: #9ca3af; text-align: center;">{{template "footer" .}}</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
