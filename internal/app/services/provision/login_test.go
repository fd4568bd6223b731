package provision

import (
	"context"
	"testing"

	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	h := newHarness(Production)
	verifiedAccount(h)
	h.accounts.put(models.Account{Email: "new@example.com", PasswordHash: "h:pw-123456"})
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     apperr.Kind
	}{
		{"unknown", "ghost@example.com", "old-secret", apperr.KindNotFound},
		{"unverified", "new@example.com", "pw-123456", apperr.KindForbidden},
		{"wrong password", "ada@example.com", "nope", apperr.KindInvalidCredentials},
		{"missing password", "ada@example.com", "", apperr.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.svc.Login(ctx, tt.email, tt.password)
			assert.Equal(t, tt.want, apperr.KindOf(err))
		})
	}

	acct, err := h.svc.Login(ctx, " ADA@example.com", "old-secret")
	require.NoError(t, err)
	assert.Equal(t, "Ada", acct.FirstName)
}

func TestLogin_AfterSignup(t *testing.T) {
	h := newHarness(Production)
	ctx := context.Background()
	_, err := h.svc.BeginSignup(ctx, signupInput("ada@example.com"))
	require.NoError(t, err)

	_, err = h.svc.Login(ctx, "ada@example.com", "Str0ng!pass")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "pending signups cannot log in")

	_, err = h.svc.VerifyPasscode(ctx, "ada@example.com", "111111")
	require.NoError(t, err)
	_, err = h.svc.Login(ctx, "ada@example.com", "Str0ng!pass")
	assert.NoError(t, err)
}

func TestPromoteAdmin(t *testing.T) {
	h := newHarness(Production)
	verifiedAccount(h)
	ctx := context.Background()

	_, err := h.svc.PromoteAdmin(ctx, "ada@example.com", "wrong")
	assert.Equal(t, "Invalid admin secret", apperr.MessageOf(err))

	_, err = h.svc.PromoteAdmin(ctx, "ghost@example.com", "s3cret-admin")
	assert.Equal(t, "User not found", apperr.MessageOf(err))

	acct, err := h.svc.PromoteAdmin(ctx, "ada@example.com", "s3cret-admin")
	require.NoError(t, err)
	assert.True(t, acct.IsAdmin)
	assert.Equal(t, "Ada Lovelace", acct.FullName())

	_, err = h.svc.PromoteAdmin(ctx, "ada@example.com", "s3cret-admin")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestPromoteAdmin_DisabledWithoutSecret(t *testing.T) {
	h := newHarness(Production)
	verifiedAccount(h)
	h.svc.cfg.AdminSecret = ""
	_, err := h.svc.PromoteAdmin(context.Background(), "ada@example.com", "")
	assert.True(t, apperr.Is(err, apperr.KindForbidden))
}
