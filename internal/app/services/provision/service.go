// Package provision implements the two-phase account lifecycle: a signup
// is held as a pending record until its emailed passcode is confirmed, and
// only then promoted to an account. It also owns login, password reset and
// admin promotion.
package provision

import (
	"context"
	"strings"
	"time"

	pendingstore "github.com/dalemusser/peerhub/internal/app/store/pendingsignups"
	"github.com/dalemusser/peerhub/internal/app/system/auditlog"
	"github.com/dalemusser/peerhub/internal/app/system/authutil"
	"github.com/dalemusser/peerhub/internal/app/system/mailer"
	"github.com/dalemusser/peerhub/internal/app/system/ratelimit"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Defaults for Config.
const (
	DefaultPasscodeTTL   = 10 * time.Minute
	DefaultResetTokenTTL = time.Hour
)

// Mode controls what happens when an email cannot be delivered.
type Mode int

const (
	// Interactive returns the undelivered secret in the result so local
	// development is not blocked by a missing mail server.
	Interactive Mode = iota
	// Production fails the operation and rolls back what it created.
	Production
)

func (m Mode) String() string {
	if m == Production {
		return "production"
	}
	return "interactive"
}

// ParseMode maps a configured mode onto a Mode. A blank value derives the
// mode from the runtime environment: "prod" means Production.
func ParseMode(configured, env string) Mode {
	switch strings.ToLower(strings.TrimSpace(configured)) {
	case "production", "prod":
		return Production
	case "interactive", "dev", "development":
		return Interactive
	}
	if strings.EqualFold(env, "prod") {
		return Production
	}
	return Interactive
}

// Accounts is the account persistence the service needs. Implemented by
// accountstore.Store.
type Accounts interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	Create(ctx context.Context, a models.Account) (models.Account, error)
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	ConsumeResetToken(ctx context.Context, tokenHash string) (*models.Account, error)
	SetPasswordHash(ctx context.Context, id primitive.ObjectID, hash string) error
	SetAdmin(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// PendingSignups is the pending record persistence. Implemented by
// pendingstore.Store.
type PendingSignups interface {
	Upsert(ctx context.Context, p models.PendingSignup) (pendingstore.UpsertResult, error)
	GetByEmail(ctx context.Context, email string) (*models.PendingSignup, error)
	RefreshPasscode(ctx context.Context, email, passcodeHash string, expiresAt time.Time) (*models.PendingSignup, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) error
}

// Hasher hashes and checks passwords and passcodes. Implemented by
// authutil.Bcrypt.
type Hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hash string) bool
}

// Config holds the tunables.
type Config struct {
	PasscodeTTL   time.Duration
	ResetTokenTTL time.Duration
	Mode          Mode
	// AdminSecret gates PromoteAdmin. Blank disables promotion.
	AdminSecret string
}

// Deps are the collaborators. Limiter, Legacy and Audit are optional.
type Deps struct {
	Accounts Accounts
	Pending  PendingSignups
	Legacy   LegacyAccounts
	Hasher   Hasher
	Notifier mailer.Notifier
	// Limiter throttles passcode sends per email.
	Limiter ratelimit.KeyLimiter
	Audit   *auditlog.Logger
	Logger  *zap.Logger
}

// Service is the account provisioner.
type Service struct {
	accounts Accounts
	pending  PendingSignups
	legacy   LegacyAccounts
	hasher   Hasher
	notify   mailer.Notifier
	limiter  ratelimit.KeyLimiter
	audit    *auditlog.Logger
	log      *zap.Logger
	cfg      Config

	now           func() time.Time
	newPasscode   func() (string, error)
	newResetToken func() (token, hash string, err error)
}

// New builds a Service.
func New(d Deps, cfg Config) *Service {
	if cfg.PasscodeTTL <= 0 {
		cfg.PasscodeTTL = DefaultPasscodeTTL
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = DefaultResetTokenTTL
	}
	if d.Hasher == nil {
		d.Hasher = authutil.Bcrypt{}
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Service{
		accounts:      d.Accounts,
		pending:       d.Pending,
		legacy:        d.Legacy,
		hasher:        d.Hasher,
		notify:        d.Notifier,
		limiter:       d.Limiter,
		audit:         d.Audit,
		log:           d.Logger,
		cfg:           cfg,
		now:           time.Now,
		newPasscode:   authutil.GeneratePasscode,
		newResetToken: authutil.GenerateResetToken,
	}
}

// Mode reports the delivery failure mode.
func (s *Service) Mode() Mode { return s.cfg.Mode }

// allowSend applies the per-email passcode throttle.
func (s *Service) allowSend(email string) bool {
	if s.limiter == nil {
		return true
	}
	return s.limiter.Allow(email)
}
