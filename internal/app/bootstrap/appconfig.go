// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework side (ports, TLS, logging, CORS, body limits); everything
// peerhub itself needs lives here.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Credential signing and the browser session cookie
	JWTSecret     string
	JWTTTL        time.Duration
	SessionName   string
	SessionDomain string

	// Signup, reset and matching tunables
	PasscodeTTL      time.Duration
	ResetTokenTTL    time.Duration
	MatchLimit       int
	CandidatePoolCap int

	// DeploymentMode is "interactive" or "production". Blank derives it
	// from the WAFFLE env.
	DeploymentMode string

	// Email/SMTP configuration
	MailSMTPHost string
	MailSMTPPort int
	MailSMTPUser string
	MailSMTPPass string
	MailSMTPTLS  bool
	MailFrom     string
	MailFromName string
	// MailTransport is "smtp", "log" or "disabled". Blank picks smtp when
	// a host is set and disabled otherwise.
	MailTransport string

	// FrontendURL is used in email links and as the allowed websocket origin.
	FrontendURL string

	// Redis backs the passcode limiter and cross-instance chat fan-out.
	// Blank RedisAddr runs both in-process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PasscodeSendLimit  int
	PasscodeSendWindow time.Duration

	// AdminSecret gates POST /create-admin. Blank disables it.
	AdminSecret string

	PendingSweepInterval time.Duration

	// AuditLog is "all", "db", "log" or "off".
	AuditLog string
}
