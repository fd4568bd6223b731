package provision

import (
	"context"
	"errors"
	"time"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	pendingstore "github.com/dalemusser/peerhub/internal/app/store/pendingsignups"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/authutil"
	"github.com/dalemusser/peerhub/internal/app/system/inputval"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/app/system/profilefields"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.uber.org/zap"
)

// User-facing messages.
const (
	msgPasscodeSent        = "OTP sent. Please verify your email to complete signup."
	msgPasscodeRefreshed   = "OTP resent to your email"
	msgPasscodeResent      = "OTP resent successfully"
	msgPasscodeInline      = "OTP generated (email service unavailable). Verify to complete signup."
	msgPendingNotFound     = "Pending signup not found. Please sign up again."
	msgAlreadyVerified     = "Email already verified"
	msgTooManyPasscodes    = "Too many verification emails requested. Please wait a few minutes and try again."
	msgPasscodeUndelivered = "Could not send the verification email. Please try again later."
)

// SignupInput is the data collected at signup.
type SignupInput struct {
	FirstName string `validate:"required,notblank,max=100" label:"First name"`
	LastName  string `validate:"required,notblank,max=100" label:"Last name"`
	Email     string `validate:"required,email,max=254" label:"Email"`
	Password  string `validate:"required" label:"Password"`
	Profile   models.Profile
}

// SignupResult reports the outcome of BeginSignup.
type SignupResult struct {
	// Created is false when an existing pending signup was refreshed.
	Created bool
	Message string
	// DevPasscode is set only in Interactive mode when delivery failed.
	DevPasscode string
}

// ResendResult reports the outcome of ResendPasscode.
type ResendResult struct {
	Message     string
	DevPasscode string
}

// BeginSignup validates in, reconciles any leftover single-phase account
// and stores (or refreshes) the pending signup, then mails its passcode.
func (s *Service) BeginSignup(ctx context.Context, in SignupInput) (SignupResult, error) {
	in.Email = normalize.Email(in.Email)
	if res := inputval.Validate(in); res.HasErrors() {
		return SignupResult{}, apperr.Validation(res.First())
	}
	if err := authutil.ValidateStrongPassword(in.Password); err != nil {
		return SignupResult{}, apperr.Validation(err.Error())
	}
	first, err := profilefields.Name(in.FirstName)
	if err != nil {
		return SignupResult{}, apperr.Validation("First name is required.")
	}
	last, err := profilefields.Name(in.LastName)
	if err != nil {
		return SignupResult{}, apperr.Validation("Last name is required.")
	}
	profile, err := profilefields.Clean(in.Profile)
	if err != nil {
		return SignupResult{}, apperr.Validation(err.Error())
	}

	existing, err := s.accounts.GetByEmail(ctx, in.Email)
	switch {
	case errors.Is(err, accountstore.ErrNotFound):
		existing = nil
	case err != nil:
		return SignupResult{}, apperr.Internal(err)
	case existing.EmailVerified:
		return SignupResult{}, apperr.Conflict("Email already registered and verified")
	}

	if !s.allowSend(in.Email) {
		return SignupResult{}, apperr.RateLimited(msgTooManyPasscodes)
	}
	if existing != nil {
		if err := s.discardLegacy(ctx, in.Email); err != nil {
			return SignupResult{}, apperr.Internal(err)
		}
	}

	code, codeHash, err := s.passcode()
	if err != nil {
		return SignupResult{}, apperr.Internal(err)
	}
	pwHash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return SignupResult{}, apperr.Internal(err)
	}

	up, err := s.pending.Upsert(ctx, models.PendingSignup{
		Email:        in.Email,
		FirstName:    first,
		LastName:     last,
		PasswordHash: pwHash,
		Profile:      profile,
		PasscodeHash: codeHash,
		ExpiresAt:    s.now().Add(s.cfg.PasscodeTTL),
	})
	if err != nil {
		return SignupResult{}, apperr.Internal(err)
	}

	result := SignupResult{Created: up.Created, Message: msgPasscodeRefreshed}
	if up.Created {
		result.Message = msgPasscodeSent
	}

	if err := s.notify.SendPasscode(ctx, in.Email, up.Record.FirstName, code, s.cfg.PasscodeTTL); err != nil {
		if s.cfg.Mode == Production {
			if up.Created {
				s.rollbackPending(ctx, up.Record)
			}
			s.log.Error("passcode delivery failed", zap.String("email", in.Email), zap.Error(err))
			return SignupResult{}, apperr.Upstream(msgPasscodeUndelivered, err)
		}
		s.log.Warn("passcode delivery failed; returning passcode inline",
			zap.String("email", in.Email), zap.Error(err))
		result.Message = msgPasscodeInline
		result.DevPasscode = code
	}

	s.audit.SignupStarted(ctx, in.Email, up.Created)
	return result, nil
}

// rollbackPending deletes a pending signup created by a failed BeginSignup.
func (s *Service) rollbackPending(ctx context.Context, p models.PendingSignup) {
	if err := s.pending.DeleteByID(ctx, p.ID); err != nil {
		s.log.Error("pending signup rollback failed",
			zap.String("email", p.Email), zap.Error(err))
	}
}

// passcode returns a fresh code and its hash.
func (s *Service) passcode() (code, hash string, err error) {
	code, err = s.newPasscode()
	if err != nil {
		return "", "", err
	}
	hash, err = s.hasher.Hash(code)
	if err != nil {
		return "", "", err
	}
	return code, hash, nil
}

// VerifyPasscode promotes the pending signup for email to an account when
// code matches before expiry.
func (s *Service) VerifyPasscode(ctx context.Context, email, code string) (*models.Account, error) {
	email = normalize.Email(email)
	if email == "" || code == "" {
		return nil, apperr.Validation("Email and OTP are required")
	}

	p, err := s.pending.GetByEmail(ctx, email)
	if errors.Is(err, pendingstore.ErrNotFound) {
		return nil, apperr.NotFound(msgPendingNotFound)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if p.Expired(s.now()) {
		return nil, apperr.Expired("OTP has expired. Please request a new one.")
	}
	if !s.hasher.Verify(code, p.PasscodeHash) {
		return nil, apperr.InvalidCode("Invalid OTP")
	}

	existing, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, accountstore.ErrNotFound):
	case err != nil:
		return nil, apperr.Internal(err)
	case existing.EmailVerified:
		s.deletePending(ctx, p)
		return nil, apperr.AlreadyVerified(msgAlreadyVerified)
	default:
		if err := s.discardLegacy(ctx, email); err != nil {
			return nil, apperr.Internal(err)
		}
	}

	acct, err := s.accounts.Create(ctx, models.Account{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		PasswordHash:  p.PasswordHash,
		EmailVerified: true,
		Profile:       p.Profile,
	})
	if errors.Is(err, accountstore.ErrDuplicateEmail) {
		// A concurrent verification won.
		s.deletePending(ctx, p)
		return nil, apperr.AlreadyVerified(msgAlreadyVerified)
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	s.deletePending(ctx, p)

	if err := s.notify.SendWelcome(ctx, acct.Email, acct.FirstName); err != nil {
		s.log.Warn("welcome email failed", zap.String("email", acct.Email), zap.Error(err))
	}
	s.audit.SignupVerified(ctx, acct.ID, acct.Email)
	return &acct, nil
}

// deletePending removes a consumed pending signup. A failure is logged
// only: the record is already unusable and the TTL index removes it.
func (s *Service) deletePending(ctx context.Context, p *models.PendingSignup) {
	if err := s.pending.DeleteByID(ctx, p.ID); err != nil {
		s.log.Warn("failed to delete pending signup",
			zap.String("email", p.Email), zap.Error(err))
	}
}

// ResendPasscode issues a new passcode for a pending signup, or for a
// single-phase unverified account when no pending signup exists.
func (s *Service) ResendPasscode(ctx context.Context, email string) (ResendResult, error) {
	email = normalize.Email(email)
	if email == "" {
		return ResendResult{}, apperr.Validation("Email is required")
	}

	p, err := s.pending.GetByEmail(ctx, email)
	if errors.Is(err, pendingstore.ErrNotFound) {
		return s.resendLegacy(ctx, email)
	}
	if err != nil {
		return ResendResult{}, apperr.Internal(err)
	}
	if !s.allowSend(email) {
		return ResendResult{}, apperr.RateLimited(msgTooManyPasscodes)
	}

	code, codeHash, err := s.passcode()
	if err != nil {
		return ResendResult{}, apperr.Internal(err)
	}
	if _, err := s.pending.RefreshPasscode(ctx, email, codeHash, s.now().Add(s.cfg.PasscodeTTL)); err != nil {
		if errors.Is(err, pendingstore.ErrNotFound) {
			return ResendResult{}, apperr.NotFound(msgPendingNotFound)
		}
		return ResendResult{}, apperr.Internal(err)
	}

	res, err := s.deliverResend(ctx, email, p.FirstName, code)
	if err != nil {
		return ResendResult{}, err
	}
	s.audit.PasscodeResent(ctx, email, false)
	return res, nil
}

// deliverResend mails a resent passcode and applies the delivery mode.
func (s *Service) deliverResend(ctx context.Context, email, name, code string) (ResendResult, error) {
	if err := s.notify.SendPasscode(ctx, email, name, code, s.cfg.PasscodeTTL); err != nil {
		if s.cfg.Mode == Production {
			s.log.Error("passcode delivery failed", zap.String("email", email), zap.Error(err))
			return ResendResult{}, apperr.Upstream(msgPasscodeUndelivered, err)
		}
		s.log.Warn("passcode delivery failed; returning passcode inline",
			zap.String("email", email), zap.Error(err))
		return ResendResult{Message: "OTP generated (email service unavailable)", DevPasscode: code}, nil
	}
	return ResendResult{Message: msgPasscodeResent}, nil
}

// PasscodeTTL reports the configured passcode lifetime.
func (s *Service) PasscodeTTL() time.Duration { return s.cfg.PasscodeTTL }
