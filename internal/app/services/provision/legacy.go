package provision

import (
	"context"
	"errors"
	"time"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// LegacyAccounts covers accounts written by the earlier single-phase
// signup, which stored unverified accounts directly. It is consulted only
// when no pending signup exists for an email and can be removed once no
// such accounts remain. Implemented by accountstore.Store.
type LegacyAccounts interface {
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	DeleteUnverifiedByEmail(ctx context.Context, email string) (int64, error)
	SetLegacyPasscode(ctx context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error
}

// discardLegacy deletes an unverified single-phase account so a new
// two-phase signup can own the email.
func (s *Service) discardLegacy(ctx context.Context, email string) error {
	if s.legacy == nil {
		return nil
	}
	n, err := s.legacy.DeleteUnverifiedByEmail(ctx, email)
	if err != nil {
		return err
	}
	if n > 0 {
		s.log.Info("removed unverified legacy account", zap.String("email", email))
	}
	return nil
}

// resendLegacy refreshes the passcode stored on an unverified
// single-phase account.
func (s *Service) resendLegacy(ctx context.Context, email string) (ResendResult, error) {
	if s.legacy == nil {
		return ResendResult{}, apperr.NotFound(msgPendingNotFound)
	}
	acct, err := s.legacy.GetByEmail(ctx, email)
	if errors.Is(err, accountstore.ErrNotFound) {
		return ResendResult{}, apperr.NotFound(msgPendingNotFound)
	}
	if err != nil {
		return ResendResult{}, apperr.Internal(err)
	}
	if acct.EmailVerified {
		return ResendResult{}, apperr.AlreadyVerified(msgAlreadyVerified)
	}
	if !s.allowSend(email) {
		return ResendResult{}, apperr.RateLimited(msgTooManyPasscodes)
	}

	code, codeHash, err := s.passcode()
	if err != nil {
		return ResendResult{}, apperr.Internal(err)
	}
	if err := s.legacy.SetLegacyPasscode(ctx, acct.ID, codeHash, s.now().Add(s.cfg.PasscodeTTL)); err != nil {
		return ResendResult{}, apperr.Internal(err)
	}

	res, err := s.deliverResend(ctx, email, acct.FirstName, code)
	if err != nil {
		return ResendResult{}, err
	}
	s.audit.PasscodeResent(ctx, email, true)
	return res, nil
}
