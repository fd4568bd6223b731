package provision

import (
	"context"
	"crypto/subtle"
	"errors"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/normalize"
	"github.com/dalemusser/peerhub/internal/domain/models"
)

// Login checks credentials and returns the account. Issuing the session
// credential is the caller's job.
func (s *Service) Login(ctx context.Context, email, password string) (*models.Account, error) {
	email = normalize.Email(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("Email and password are required")
	}

	acct, err := s.accounts.GetByEmail(ctx, email)
	if errors.Is(err, accountstore.ErrNotFound) {
		s.audit.LoginFailed(ctx, email, string(apperr.KindNotFound))
		return nil, apperr.NotFound("Account not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !acct.EmailVerified {
		s.audit.LoginFailed(ctx, email, string(apperr.KindForbidden))
		return nil, apperr.Forbidden("Email not verified")
	}
	if !s.hasher.Verify(password, acct.PasswordHash) {
		s.audit.LoginFailed(ctx, email, string(apperr.KindInvalidCredentials))
		return nil, apperr.InvalidCredentials()
	}

	s.audit.LoginSuccess(ctx, acct.ID, acct.Email)
	return acct, nil
}

// PromoteAdmin grants the administrator flag to the account with email
// when secret matches the configured admin secret.
func (s *Service) PromoteAdmin(ctx context.Context, email, secret string) (*models.Account, error) {
	if s.cfg.AdminSecret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(s.cfg.AdminSecret)) != 1 {
		return nil, apperr.Forbidden("Invalid admin secret")
	}

	acct, err := s.accounts.GetByEmail(ctx, normalize.Email(email))
	if errors.Is(err, accountstore.ErrNotFound) {
		return nil, apperr.NotFound("User not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if acct.IsAdmin {
		return nil, apperr.Conflict("User is already an admin")
	}

	changed, err := s.accounts.SetAdmin(ctx, acct.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if !changed {
		return nil, apperr.Conflict("User is already an admin")
	}
	acct.IsAdmin = true
	s.audit.AdminPromoted(ctx, acct.ID, acct.Email)
	return acct, nil
}
