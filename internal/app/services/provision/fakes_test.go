package provision

import (
	"context"
	"errors"
	"sync"
	"time"

	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	pendingstore "github.com/dalemusser/peerhub/internal/app/store/pendingsignups"
	"github.com/dalemusser/peerhub/internal/app/system/authutil"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var errMailDown = errors.New("smtp: connection refused")

type fakeAccounts struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*models.Account
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{byID: map[primitive.ObjectID]*models.Account{}}
}

func (f *fakeAccounts) put(a models.Account) *models.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	f.byID[a.ID] = &a
	return &a
}

func (f *fakeAccounts) find(email string) *models.Account {
	for _, a := range f.byID {
		if a.Email == email {
			return a
		}
	}
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return nil, accountstore.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(email)
	if a == nil {
		return nil, accountstore.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAccounts) Create(_ context.Context, a models.Account) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.find(a.Email) != nil {
		return models.Account{}, accountstore.ErrDuplicateEmail
	}
	a.ID = primitive.NewObjectID()
	f.byID[a.ID] = &a
	return a, nil
}

func (f *fakeAccounts) DeleteUnverifiedByEmail(_ context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.find(email)
	if a == nil || a.EmailVerified {
		return 0, nil
	}
	delete(f.byID, a.ID)
	return 1, nil
}

func (f *fakeAccounts) SetLegacyPasscode(_ context.Context, id primitive.ObjectID, hash string, expiresAt time.Time) error {
	return f.mutate(id, func(a *models.Account) {
		a.LegacyPasscodeHash = hash
		a.LegacyPasscodeExpiresAt = &expiresAt
	})
}

func (f *fakeAccounts) SetResetToken(_ context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	return f.mutate(id, func(a *models.Account) {
		a.ResetTokenHash = tokenHash
		a.ResetExpiresAt = &expiresAt
	})
}

func (f *fakeAccounts) ClearResetToken(_ context.Context, id primitive.ObjectID) error {
	return f.mutate(id, func(a *models.Account) {
		a.ResetTokenHash = ""
		a.ResetExpiresAt = nil
	})
}

func (f *fakeAccounts) ConsumeResetToken(_ context.Context, tokenHash string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.byID {
		if tokenHash != "" && a.ResetTokenHash == tokenHash {
			before := *a
			a.ResetTokenHash = ""
			a.ResetExpiresAt = nil
			return &before, nil
		}
	}
	return nil, accountstore.ErrNotFound
}

func (f *fakeAccounts) SetPasswordHash(_ context.Context, id primitive.ObjectID, hash string) error {
	return f.mutate(id, func(a *models.Account) { a.PasswordHash = hash })
}

func (f *fakeAccounts) SetAdmin(_ context.Context, id primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok || a.IsAdmin {
		return false, nil
	}
	a.IsAdmin = true
	return true, nil
}

func (f *fakeAccounts) mutate(id primitive.ObjectID, fn func(*models.Account)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byID[id]
	if !ok {
		return accountstore.ErrNotFound
	}
	fn(a)
	return nil
}

type fakePending struct {
	mu      sync.Mutex
	byEmail map[string]*models.PendingSignup
}

func newFakePending() *fakePending {
	return &fakePending{byEmail: map[string]*models.PendingSignup{}}
}

func (f *fakePending) Upsert(_ context.Context, p models.PendingSignup) (pendingstore.UpsertResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cur, ok := f.byEmail[p.Email]; ok {
		cur.PasscodeHash = p.PasscodeHash
		cur.ExpiresAt = p.ExpiresAt
		return pendingstore.UpsertResult{Record: *cur}, nil
	}
	p.ID = primitive.NewObjectID()
	f.byEmail[p.Email] = &p
	return pendingstore.UpsertResult{Record: p, Created: true}, nil
}

func (f *fakePending) GetByEmail(_ context.Context, email string) (*models.PendingSignup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byEmail[email]
	if !ok {
		return nil, pendingstore.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePending) RefreshPasscode(_ context.Context, email, hash string, expiresAt time.Time) (*models.PendingSignup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.byEmail[email]
	if !ok {
		return nil, pendingstore.ErrNotFound
	}
	p.PasscodeHash = hash
	p.ExpiresAt = expiresAt
	cp := *p
	return &cp, nil
}

func (f *fakePending) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for email, p := range f.byEmail {
		if p.ID == id {
			delete(f.byEmail, email)
			return nil
		}
	}
	return pendingstore.ErrNotFound
}

func (f *fakePending) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byEmail)
}

type sentMail struct {
	kind   string
	to     string
	secret string
}

type fakeNotifier struct {
	mu   sync.Mutex
	fail bool
	sent []sentMail
}

func (n *fakeNotifier) record(kind, to, secret string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errMailDown
	}
	n.sent = append(n.sent, sentMail{kind: kind, to: to, secret: secret})
	return nil
}

func (n *fakeNotifier) SendPasscode(_ context.Context, to, _, code string, _ time.Duration) error {
	return n.record("passcode", to, code)
}

func (n *fakeNotifier) SendWelcome(_ context.Context, to, _ string) error {
	return n.record("welcome", to, "")
}

func (n *fakeNotifier) SendPasswordReset(_ context.Context, to, _, token string, _ time.Duration) error {
	return n.record("reset", to, token)
}

func (n *fakeNotifier) last(kind string) (sentMail, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := len(n.sent) - 1; i >= 0; i-- {
		if n.sent[i].kind == kind {
			return n.sent[i], true
		}
	}
	return sentMail{}, false
}

// plainHasher keeps tests fast; bcrypt is covered in authutil.
type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (plainHasher) Verify(plain, hash string) bool    { return hash == "h:"+plain }

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }

type harness struct {
	svc      *Service
	accounts *fakeAccounts
	pending  *fakePending
	mail     *fakeNotifier
	clock    time.Time
}

func newHarness(mode Mode) *harness {
	h := &harness{
		accounts: newFakeAccounts(),
		pending:  newFakePending(),
		mail:     &fakeNotifier{},
		clock:    time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	h.svc = New(Deps{
		Accounts: h.accounts,
		Pending:  h.pending,
		Legacy:   h.accounts,
		Hasher:   plainHasher{},
		Notifier: h.mail,
		Logger:   zap.NewNop(),
	}, Config{Mode: mode, AdminSecret: "s3cret-admin"})
	h.svc.now = func() time.Time { return h.clock }
	n := 0
	h.svc.newPasscode = func() (string, error) {
		n++
		return []string{"111111", "222222", "333333", "444444"}[(n-1)%4], nil
	}
	h.svc.newResetToken = func() (string, string, error) {
		return "reset-token", authutil.HashToken("reset-token"), nil
	}
	return h
}

func (h *harness) advance(d time.Duration) { h.clock = h.clock.Add(d) }

func signupInput(email string) SignupInput {
	return SignupInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "Str0ng!pass",
		Profile: models.Profile{
			SkillsWanted: []string{"Go", "go "},
			SkillsTaught: []string{"Python"},
			Year:         "2nd",
		},
	}
}
