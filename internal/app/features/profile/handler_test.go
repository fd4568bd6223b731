package profile_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/peerhub/internal/app/features/profile"
	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeAccounts struct {
	acct    *models.Account
	lastUpd *accountstore.ProfileUpdate
}

func (f *fakeAccounts) GetByID(_ context.Context, id primitive.ObjectID) (*models.Account, error) {
	if f.acct == nil || f.acct.ID != id {
		return nil, accountstore.ErrNotFound
	}
	return f.acct, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, id primitive.ObjectID, upd accountstore.ProfileUpdate) (*models.Account, error) {
	if f.acct == nil || f.acct.ID != id {
		return nil, accountstore.ErrNotFound
	}
	f.lastUpd = &upd
	if upd.FirstName != nil {
		f.acct.FirstName = *upd.FirstName
	}
	if upd.SkillsWanted != nil {
		f.acct.SkillsWanted = *upd.SkillsWanted
	}
	if upd.Bio != nil {
		f.acct.Bio = *upd.Bio
	}
	return f.acct, nil
}

type fakePasswords struct {
	current, next string
	err           error
}

func (f *fakePasswords) ChangePassword(_ context.Context, _ primitive.ObjectID, current, next string) error {
	f.current, f.next = current, next
	return f.err
}

func setup() (*fakeAccounts, *fakePasswords, http.Handler, *models.Account) {
	acct := &models.Account{
		ID:            primitive.NewObjectID(),
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		PasswordHash:  "secret-hash",
		EmailVerified: true,
	}
	accounts := &fakeAccounts{acct: acct}
	passwords := &fakePasswords{}
	r := chi.NewRouter()
	r.Mount("/profile", profile.Routes(profile.NewHandler(accounts, passwords, zap.NewNop())))
	return accounts, passwords, r, acct
}

func do(t *testing.T, h http.Handler, user *models.Account, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != nil {
		req = auth.WithTestUser(req, &auth.SessionUser{ID: user.ID, Email: user.Email})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestRoutes_RequireSignedIn(t *testing.T) {
	_, _, h, _ := setup()
	for _, tc := range []struct{ method, path string }{
		{"GET", "/profile/view"},
		{"PATCH", "/profile/edit"},
		{"PATCH", "/profile/password"},
	} {
		rec, _ := do(t, h, nil, tc.method, tc.path, `{}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected status %d, got %d", tc.method, tc.path, http.StatusUnauthorized, rec.Code)
		}
	}
}

func TestServeView(t *testing.T) {
	_, _, h, acct := setup()
	rec, body := do(t, h, acct, "GET", "/profile/view", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body["email"] != "ada@example.com" || body["first_name"] != "Ada" {
		t.Errorf("unexpected body: %v", body)
	}
	if strings.Contains(rec.Body.String(), "secret-hash") {
		t.Error("password hash leaked into response")
	}
}

func TestServeView_AccountGone(t *testing.T) {
	_, _, h, _ := setup()
	ghost := &models.Account{ID: primitive.NewObjectID()}
	rec, _ := do(t, h, ghost, "GET", "/profile/view", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestHandleEdit_NormalizesAndSanitizes(t *testing.T) {
	accounts, _, h, acct := setup()
	rec, body := do(t, h, acct, "PATCH", "/profile/edit",
		`{"first_name":"  Augusta ","wants_to_learn":["go "," GO","Rust",""],"bio":"<b>hello</b> world"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	if body["message"] != "Augusta, your profile updated successfully!" {
		t.Errorf("message: got %v", body["message"])
	}
	upd := accounts.lastUpd
	if upd == nil || upd.SkillsWanted == nil {
		t.Fatal("expected skills update")
	}
	if got := *upd.SkillsWanted; len(got) != 2 || got[0] != "go" || got[1] != "Rust" {
		t.Errorf("skills: got %v", got)
	}
	if upd.Bio == nil || strings.Contains(*upd.Bio, "<b>") {
		t.Errorf("bio not sanitized: %v", upd.Bio)
	}
	if upd.LastName != nil || upd.Year != nil {
		t.Error("absent fields must stay nil")
	}
}

func TestHandleEdit_Rejections(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"email", `{"email":"new@example.com"}`, "Email cannot be changed"},
		{"unknown fields", `{"is_admin":true,"password":"x","bio":"ok"}`, "Invalid fields provided for profile update: is_admin, password"},
		{"empty", `{}`, "No fields provided for profile update"},
		{"bad year", `{"year":"9th"}`, "Year must be one of: 1st, 2nd, 3rd, 4th, alumni."},
		{"wrong type", `{"age":"old"}`, "Invalid value in profile update"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts, _, h, acct := setup()
			rec, body := do(t, h, acct, "PATCH", "/profile/edit", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
			}
			if body["message"] != tt.want {
				t.Errorf("message: got %q, want %q", body["message"], tt.want)
			}
			if accounts.lastUpd != nil {
				t.Error("rejected edit must not reach the store")
			}
		})
	}
}

func TestHandleChangePassword(t *testing.T) {
	_, passwords, h, acct := setup()
	rec, body := do(t, h, acct, "PATCH", "/profile/password", `{"current_password":"Old!pass1","new_password":"N3w!pass22"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if body["message"] != "Password updated successfully" {
		t.Errorf("message: got %v", body["message"])
	}
	if passwords.current != "Old!pass1" || passwords.next != "N3w!pass22" {
		t.Errorf("service got current=%q next=%q", passwords.current, passwords.next)
	}

	passwords.err = apperr.InvalidCredentials()
	rec, _ = do(t, h, acct, "PATCH", "/profile/password", `{"current_password":"wrong","new_password":"N3w!pass22"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}
