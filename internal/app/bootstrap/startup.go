// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dalemusser/peerhub/internal/app/realtime"
	"github.com/dalemusser/peerhub/internal/app/services/connreq"
	"github.com/dalemusser/peerhub/internal/app/services/matching"
	"github.com/dalemusser/peerhub/internal/app/services/provision"
	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	auditstore "github.com/dalemusser/peerhub/internal/app/store/audit"
	connectionstore "github.com/dalemusser/peerhub/internal/app/store/connections"
	pendingstore "github.com/dalemusser/peerhub/internal/app/store/pendingsignups"
	"github.com/dalemusser/peerhub/internal/app/system/auditlog"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/mailer"
	"github.com/dalemusser/peerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Runtime is the set of long-lived services Startup builds and the
// handlers and Shutdown consume.
type Runtime struct {
	Accounts    *accountstore.Store
	Provisioner *provision.Service
	Requests    *connreq.Service
	Matcher     *matching.Service
	Auth        *auth.Manager
	Chat        *realtime.Router
	Login       *ratelimit.LoginLimiter
	Sweeper     *workers.PendingSweeper

	// stops holds cleanup for in-process limiters.
	stops []func()
}

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built. It wires
// the stores into the services, starts the chat router's bus subscription
// and launches the pending-signup sweeper.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	rt := deps.Runtime
	if rt == nil {
		return fmt.Errorf("startup: runtime not allocated")
	}
	db := deps.MongoDatabase
	mode := deploymentMode(coreCfg, appCfg)

	rt.Accounts = accountstore.New(db)
	pending := pendingstore.New(db)

	audit := auditlog.New(auditstore.New(db), logger, auditlog.Config{Mode: appCfg.AuditLog})

	sender, err := newSender(appCfg, logger)
	if err != nil {
		logger.Error("mailer init failed", zap.Error(err))
		return err
	}
	notifier := mailer.NewNotifier(sender, appCfg.MailFromName, appCfg.FrontendURL)

	rt.Provisioner = provision.New(provision.Deps{
		Accounts: rt.Accounts,
		Pending:  pending,
		Legacy:   rt.Accounts,
		Notifier: notifier,
		Limiter:  rt.passcodeLimiter(deps, appCfg),
		Audit:    audit,
		Logger:   logger,
	}, provision.Config{
		PasscodeTTL:   appCfg.PasscodeTTL,
		ResetTokenTTL: appCfg.ResetTokenTTL,
		Mode:          mode,
		AdminSecret:   appCfg.AdminSecret,
	})

	rt.Requests = connreq.New(connectionstore.New(db), rt.Accounts, audit, logger)
	rt.Matcher = matching.NewService(matching.NewEngine(appCfg.MatchLimit), rt.Accounts, rt.Requests, appCfg.CandidatePoolCap, logger)

	rt.Auth, err = auth.NewManager(auth.Config{
		Secret:      appCfg.JWTSecret,
		TTL:         appCfg.JWTTTL,
		SessionName: appCfg.SessionName,
		Domain:      appCfg.SessionDomain,
		Secure:      coreCfg.Env == "prod",
	}, rt.Accounts, logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return err
	}
	rt.Login = ratelimit.NewLoginLimiter()

	var bus realtime.Bus = realtime.NewLocalBus()
	if deps.Redis != nil {
		bus = realtime.NewRedisBus(deps.Redis, logger)
	}
	rt.Chat = realtime.NewRouter(bus, logger)
	if err := rt.Chat.Start(context.Background()); err != nil {
		logger.Error("chat router start failed", zap.Error(err))
		return err
	}

	rt.Sweeper = workers.NewPendingSweeper(pending, logger, appCfg.PendingSweepInterval)
	rt.Sweeper.Start()

	logger.Info("peerhub started",
		zap.String("mode", mode.String()),
		zap.Bool("redis", deps.Redis != nil),
		zap.Int("match_limit", appCfg.MatchLimit),
	)
	return nil
}

// passcodeLimiter prefers the shared Redis window so every instance counts
// the same sends. Without Redis each instance keeps its own window.
func (rt *Runtime) passcodeLimiter(deps DBDeps, appCfg AppConfig) ratelimit.KeyLimiter {
	if deps.Redis != nil {
		return ratelimit.NewRedis(deps.Redis, "peerhub:passcode:", appCfg.PasscodeSendLimit, appCfg.PasscodeSendWindow)
	}
	l := ratelimit.New(appCfg.PasscodeSendLimit, appCfg.PasscodeSendWindow)
	rt.stops = append(rt.stops, l.Stop)
	return l
}

// newSender picks the mail transport.
func newSender(appCfg AppConfig, logger *zap.Logger) (mailer.Sender, error) {
	transport := strings.ToLower(strings.TrimSpace(appCfg.MailTransport))
	if transport == "" {
		transport = "disabled"
		if appCfg.MailSMTPHost != "" {
			transport = "smtp"
		}
	}

	switch transport {
	case "smtp":
		return mailer.NewSMTP(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			Username: appCfg.MailSMTPUser,
			Password: appCfg.MailSMTPPass,
			TLS:      appCfg.MailSMTPTLS,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		})
	case "log":
		return mailer.Log{Logger: logger.Named("mail")}, nil
	case "disabled":
		return mailer.Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown mail_transport %q", appCfg.MailTransport)
	}
}

// allowedOrigins derives the websocket origin allow-list from the frontend URL.
func allowedOrigins(frontendURL string) []string {
	u, err := url.Parse(frontendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return []string{u.Scheme + "://" + u.Host}
}
