package provision

import (
	"context"
	"errors"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/authutil"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// msgResetRequested is returned whether or not the email has an account.
const msgResetRequested = "If an account exists with this email, you will receive a password reset link shortly."

// ResetResult reports the outcome of RequestPasswordReset.
type ResetResult struct {
	Message string
	// DevResetToken is set only in Interactive mode when delivery failed.
	DevResetToken string
}

// RequestPasswordReset issues a reset token for a verified account and
// mails a link carrying it. Unknown emails get the same response.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (ResetResult, error) {
	email = normalize.Email(email)
	if email == "" {
		return ResetResult{}, apperr.Validation("Email is required")
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, accountstore.ErrNotFound) {
		return ResetResult{Message: msgResetRequested}, nil
	}
	if err != nil {
		return ResetResult{}, apperr.Internal(err)
	}
	if !acct.EmailVerified {
		return ResetResult{}, apperr.Forbidden("Please verify your email before resetting password")
	}

	token, hash, err := s.newResetToken()
	if err != nil {
		return ResetResult{}, apperr.Internal(err)
	}
	if err := s.accounts.SetResetToken(ctx, acct.ID, hash, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return ResetResult{}, apperr.Internal(err)
	}

	result := ResetResult{Message: msgResetRequested}
	if err := s.notify.SendPasswordReset(ctx, email, acct.FirstName, token, s.cfg.ResetTokenTTL); err != nil {
		if s.cfg.Mode == Production {
			if cerr := s.accounts.ClearResetToken(ctx, acct.ID); cerr != nil {
				s.log.Error("failed to clear undelivered reset token",
					zap.String("email", email), zap.Error(cerr))
			}
			s.log.Error("password reset delivery failed", zap.String("email", email), zap.Error(err))
			return ResetResult{}, apperr.Upstream("Could not send the password reset email. Please try again later.", err)
		}
		s.log.Warn("password reset delivery failed; returning token inline",
			zap.String("email", email), zap.Error(err))
		result.Message = "Password reset token generated (email service unavailable)"
		result.DevResetToken = token
	}

	s.audit.PasswordResetRequested(ctx, acct.ID, email)
	return result, nil
}

// CompletePasswordReset sets a new password for the account holding token.
// The token is consumed by the lookup, so it cannot be replayed even when
// the update fails.
func (s *Service) CompletePasswordReset(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return apperr.Validation("Token and new password are required")
	}
	if err := authutil.ValidatePassword(newPassword); err != nil {
		return apperr.Validation(err.Error())
	}

	acct, err := s.accounts.ConsumeResetToken(ctx, authutil.HashToken(token))
	if errors.Is(err, accountstore.ErrNotFound) {
		return apperr.InvalidOrExpiredToken()
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if acct.ResetExpiresAt == nil || !s.now().Before(*acct.ResetExpiresAt) {
		return apperr.InvalidOrExpiredToken()
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.accounts.SetPasswordHash(ctx, acct.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	s.audit.PasswordResetCompleted(ctx, acct.ID)
	return nil
}

// ChangePassword replaces the password of a signed-in account after
// checking the current one.
func (s *Service) ChangePassword(ctx context.Context, accountID primitive.ObjectID, current, next string) error {
	if current == "" || next == "" {
		return apperr.Validation("Both current and new password are required.")
	}
	acct, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, accountstore.ErrNotFound) {
		return apperr.NotFound("Account not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if !s.hasher.Verify(current, acct.PasswordHash) {
		return apperr.InvalidCredentials()
	}
	if err := authutil.ValidatePassword(next); err != nil {
		return apperr.Validation(err.Error())
	}
	if next == current {
		return apperr.Validation("New password must be different from the current one.")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.accounts.SetPasswordHash(ctx, acct.ID, hash); err != nil {
		return apperr.Internal(err)
	}
	s.audit.PasswordChanged(ctx, acct.ID)
	return nil
}
