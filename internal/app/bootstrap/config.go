// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/peerhub/internal/app/services/provision"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devJWTSecret is the shipped default. Production refuses to start with it.
const devJWTSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for peerhub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: PEERHUB_MONGO_URI, PEERHUB_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "peerhub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "jwt_secret", Default: devJWTSecret, Desc: "Login token signing secret (must be changed in production)"},
	{Name: "jwt_ttl", Default: "168h", Desc: "Login token lifetime"},
	{Name: "session_name", Default: "token", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "passcode_ttl", Default: "10m", Desc: "Signup passcode lifetime"},
	{Name: "reset_token_ttl", Default: "1h", Desc: "Password reset token lifetime"},
	{Name: "match_limit", Default: 50, Desc: "Maximum matches returned by GET /matches"},
	{Name: "candidate_pool_cap", Default: 2000, Desc: "Maximum accounts scanned per match computation"},
	{Name: "deployment_mode", Default: "", Desc: "'interactive' or 'production' (blank derives from env)"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables email)"},
	{Name: "mail_smtp_port", Default: 587, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_smtp_tls", Default: true, Desc: "Require STARTTLS"},
	{Name: "mail_from", Default: "noreply@peerhub.local", Desc: "From email address"},
	{Name: "mail_from_name", Default: "PeerHub", Desc: "From display name"},
	{Name: "mail_transport", Default: "", Desc: "'smtp', 'log', or 'disabled' (blank picks smtp when a host is set)"},
	{Name: "frontend_url", Default: "http://localhost:5173", Desc: "Frontend base URL for email links and websocket origin"},

	{Name: "redis_addr", Default: "", Desc: "Redis address (blank keeps limiter and chat fan-out in process)"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},

	{Name: "passcode_send_limit", Default: 5, Desc: "Passcode emails allowed per address per window"},
	{Name: "passcode_send_window", Default: "10m", Desc: "Passcode send window"},

	{Name: "admin_secret", Default: "", Desc: "Secret for POST /create-admin (blank disables)"},
	{Name: "pending_sweep_interval", Default: "5m", Desc: "How often expired pending signups are deleted"},

	{Name: "audit_log", Default: "all", Desc: "Audit events: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig merges, in order of precedence,
// flags > env (WAFFLE_* for core, PEERHUB_* for app) > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "PEERHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret:     appValues.String("jwt_secret"),
		JWTTTL:        appValues.Duration("jwt_ttl", 168*time.Hour),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),

		PasscodeTTL:      appValues.Duration("passcode_ttl", provision.DefaultPasscodeTTL),
		ResetTokenTTL:    appValues.Duration("reset_token_ttl", provision.DefaultResetTokenTTL),
		MatchLimit:       appValues.Int("match_limit"),
		CandidatePoolCap: appValues.Int("candidate_pool_cap"),
		DeploymentMode:   appValues.String("deployment_mode"),

		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailSMTPTLS:  appValues.Bool("mail_smtp_tls"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),
		FrontendURL:  appValues.String("frontend_url"),

		MailTransport: appValues.String("mail_transport"),

		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		PasscodeSendLimit:  appValues.Int("passcode_send_limit"),
		PasscodeSendWindow: appValues.Duration("passcode_send_window", 10*time.Minute),

		AdminSecret:          appValues.String("admin_secret"),
		PendingSweepInterval: appValues.Duration("pending_sweep_interval", 5*time.Minute),

		AuditLog: appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// It rejects a malformed MongoDB URI before any connection attempt, the
// shipped signing secret in production, and a non-positive match limit.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if deploymentMode(coreCfg, appCfg) == provision.Production &&
		(appCfg.JWTSecret == "" || appCfg.JWTSecret == devJWTSecret) {
		return errors.New("jwt_secret must be set to a non-default value in production")
	}

	if appCfg.MatchLimit <= 0 {
		return fmt.Errorf("match_limit must be positive, got %d", appCfg.MatchLimit)
	}

	return nil
}

// deploymentMode resolves the configured mode against the WAFFLE env.
func deploymentMode(coreCfg *config.CoreConfig, appCfg AppConfig) provision.Mode {
	env := ""
	if coreCfg != nil {
		env = coreCfg.Env
	}
	return provision.ParseMode(appCfg.DeploymentMode, env)
}
