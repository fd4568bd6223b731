// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"

	"github.com/dalemusser/peerhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Destination modes for Config.Mode.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off" // disabled
)

// Config holds audit logging configuration.
type Config struct {
	// Mode controls where events go: "all", "db", "log" or "off".
	// Blank means "all".
	Mode string
}

// Sink persists events. Implemented by audit.Store.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
}

// Logger provides convenience methods for logging audit events.
// It logs to MongoDB (via Sink) and structured logs (via zap).
type Logger struct {
	store  Sink
	zapLog *zap.Logger
	mode   string
}

// New creates a new audit Logger.
func New(store Sink, zapLog *zap.Logger, config Config) *Logger {
	mode := config.Mode
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	return &Logger{
		store:  store,
		zapLog: zapLog,
		mode:   mode,
	}
}

// logToZap logs the event to zap with consistent structure. Emails are
// logged; secrets never reach an Event.
func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
	}

	if event.UserID != nil {
		fields = append(fields, zap.String("user_id", event.UserID.Hex()))
	}
	if event.ActorID != nil {
		fields = append(fields, zap.String("actor_id", event.ActorID.Hex()))
	}
	if event.Email != "" {
		fields = append(fields, zap.String("email", event.Email))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records an audit event based on configuration.
// If the logger is nil, this is a no-op (allows tests to use nil audit logger).
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(event)
	}

	if (l.mode == ModeAll || l.mode == ModeDB) && l.store != nil {
		if err := l.store.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType),
			)
		}
	}
}

// --- Signup and authentication events ---

// SignupStarted logs a BeginSignup that issued a passcode. created is false
// when an existing pending signup was refreshed.
func (l *Logger) SignupStarted(ctx context.Context, email string, created bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignupStarted,
		Email:     email,
		Success:   true,
		Details:   map[string]string{"created": boolToString(created)},
	})
}

// SignupVerified logs the promotion of a pending signup to an account.
func (l *Logger) SignupVerified(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventSignupVerified,
		UserID:    &userID,
		Email:     email,
		Success:   true,
	})
}

// PasscodeResent logs a passcode resend. legacy marks the single-phase path.
func (l *Logger) PasscodeResent(ctx context.Context, email string, legacy bool) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasscodeResent,
		Email:     email,
		Success:   true,
		Details:   map[string]string{"legacy": boolToString(legacy)},
	})
}

// LoginSuccess logs a successful login.
func (l *Logger) LoginSuccess(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    &userID,
		Email:     email,
		Success:   true,
	})
}

// LoginFailed logs a failed login; reason is the error kind.
func (l *Logger) LoginFailed(ctx context.Context, email, reason string) {
	l.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventLoginFailed,
		Email:         email,
		Success:       false,
		FailureReason: reason,
	})
}

// PasswordResetRequested logs a reset request for an existing account.
func (l *Logger) PasswordResetRequested(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordResetRequested,
		UserID:    &userID,
		Email:     email,
		Success:   true,
	})
}

// PasswordResetCompleted logs a password set through a reset token.
func (l *Logger) PasswordResetCompleted(ctx context.Context, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordResetCompleted,
		UserID:    &userID,
		Success:   true,
	})
}

// PasswordChanged logs a signed-in password change.
func (l *Logger) PasswordChanged(ctx context.Context, userID primitive.ObjectID) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventPasswordChanged,
		UserID:    &userID,
		Success:   true,
	})
}

// --- Admin events ---

// AdminPromoted logs an account gaining the admin flag.
func (l *Logger) AdminPromoted(ctx context.Context, userID primitive.ObjectID, email string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventAdminPromoted,
		UserID:    &userID,
		Email:     email,
		Success:   true,
	})
}

// --- Connection events ---

// RequestSent logs a new connection request from actor to target.
func (l *Logger) RequestSent(ctx context.Context, actor, target, requestID primitive.ObjectID, status string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryConnection,
		EventType: audit.EventRequestSent,
		ActorID:   &actor,
		UserID:    &target,
		Success:   true,
		Details: map[string]string{
			"request_id": requestID.Hex(),
			"status":     status,
		},
	})
}

// RequestReviewed logs a receiver's decision on a request.
func (l *Logger) RequestReviewed(ctx context.Context, receiver, sender, requestID primitive.ObjectID, status string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryConnection,
		EventType: audit.EventRequestReviewed,
		ActorID:   &receiver,
		UserID:    &sender,
		Success:   true,
		Details: map[string]string{
			"request_id": requestID.Hex(),
			"status":     status,
		},
	})
}

// RequestCancelled logs the removal of a pair's request.
func (l *Logger) RequestCancelled(ctx context.Context, actor, counterpart, requestID primitive.ObjectID, priorStatus string) {
	l.Log(ctx, audit.Event{
		Category:  audit.CategoryConnection,
		EventType: audit.EventRequestCancelled,
		ActorID:   &actor,
		UserID:    &counterpart,
		Success:   true,
		Details: map[string]string{
			"request_id":   requestID.Hex(),
			"prior_status": priorStatus,
		},
	})
}

func boolToString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
