// Package auth authenticates API and websocket callers.
//
// A login token is read from the Authorization bearer header first and
// from the login session cookie second. The cookie is a gorilla/sessions
// cookie that carries the same signed token, so browser clients never see
// or handle the raw credential.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/gorilla/sessions"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DefaultSessionName is the cookie name browser clients receive on login.
const DefaultSessionName = "token"

const tokenKey = "token"

// AccountLookup loads the account behind a verified token.
type AccountLookup interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Account, error)
}

// SessionUser is what handlers see as the caller.
type SessionUser struct {
	ID      primitive.ObjectID
	Name    string
	Email   string
	IsAdmin bool
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the caller and whether one is signed in.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	return FromContext(r.Context())
}

// FromContext is CurrentUser for code that only holds a context.
func FromContext(ctx context.Context) (*SessionUser, bool) {
	u, ok := ctx.Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context. Used by handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// Config configures the Manager.
type Config struct {
	Secret      string
	TTL         time.Duration
	SessionName string
	Domain      string
	// Secure marks the cookie Secure with SameSite=None; otherwise Lax.
	Secure bool
}

// Manager owns token signing, the session cookie store and the account
// lookup used by LoadUser.
type Manager struct {
	tokens   *Tokens
	store    *sessions.CookieStore
	name     string
	accounts AccountLookup
	log      *zap.Logger
}

// NewManager builds a Manager. The session cookie is signed with the same
// secret as the tokens.
func NewManager(cfg Config, accounts AccountLookup, logger *zap.Logger) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("auth: signing secret is empty")
	}
	if len(cfg.Secret) < 32 {
		logger.Warn("signing secret is short; 32+ chars recommended",
			zap.Int("length", len(cfg.Secret)))
	}
	if cfg.SessionName == "" {
		cfg.SessionName = DefaultSessionName
	}

	tokens := NewTokens(cfg.Secret, cfg.TTL)

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Domain:   cfg.Domain,
		Path:     "/",
		MaxAge:   int(tokens.TTL().Seconds()),
		Secure:   cfg.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if cfg.Secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	return &Manager{
		tokens:   tokens,
		store:    store,
		name:     cfg.SessionName,
		accounts: accounts,
		log:      logger,
	}, nil
}

// Tokens exposes the token manager.
func (m *Manager) Tokens() *Tokens { return m.tokens }

// SignIn issues a token for a, stores it in the session cookie and
// returns it for clients that prefer the bearer header.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, a *models.Account) (string, error) {
	token, _, err := m.tokens.Issue(a.ID.Hex(), a.Email, a.IsAdmin)
	if err != nil {
		return "", err
	}
	sess, _ := m.store.Get(r, m.name)
	sess.Values[tokenKey] = token
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return token, nil
}

// SignOut expires the session cookie.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// TokenFromRequest returns the bearer token, falling back to the session
// cookie.
func (m *Manager) TokenFromRequest(r *http.Request) string {
	if h := strings.TrimSpace(r.Header.Get("Authorization")); len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	tok, _ := sess.Values[tokenKey].(string)
	return tok
}

// Authenticate resolves the caller of r. It returns nil without error
// when the request carries no usable token.
func (m *Manager) Authenticate(r *http.Request) (*SessionUser, error) {
	tok := m.TokenFromRequest(r)
	if tok == "" {
		return nil, nil
	}
	claims, err := m.tokens.Parse(tok)
	if err != nil {
		return nil, nil
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, nil
	}
	a, err := m.accounts.GetByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	return &SessionUser{
		ID:      a.ID,
		Name:    a.FullName(),
		Email:   a.Email,
		IsAdmin: a.IsAdmin,
	}, nil
}

// LoadUser injects the caller into the request context when the request
// carries a valid token for an existing account.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, err := m.Authenticate(r)
		if err != nil {
			m.log.Debug("token did not resolve to an account", zap.Error(err))
		}
		if u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests without a caller in context.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			deny(w, http.StatusUnauthorized, "unauthorized", "Unauthorized: no valid token provided")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin rejects callers without the administrator flag.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := CurrentUser(r)
		if !ok {
			deny(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
			return
		}
		if !u.IsAdmin {
			deny(w, http.StatusForbidden, "forbidden", "Access denied. Admin privileges required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func deny(w http.ResponseWriter, status int, kind, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"kind":    kind,
		"message": msg,
	})
}
