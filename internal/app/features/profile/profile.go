// internal/app/features/profile/profile.go
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	accountstore "github.com/dalemusser/peerhub/internal/app/store/accounts"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/profilefields"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"github.com/dalemusser/peerhub/internal/domain/models"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// editableFields is the allow-list for PATCH /profile/edit, keyed by the
// JSON names clients send.
var editableFields = map[string]bool{
	"first_name":     true,
	"last_name":      true,
	"wants_to_learn": true,
	"can_teach":      true,
	"skills":         true,
	"age":            true,
	"gender":         true,
	"about":          true,
	"bio":            true,
	"college":        true,
	"year":           true,
	"social_links":   true,
	"photo_url":      true,
}

// editRequest mirrors editableFields. Absent keys stay nil.
type editRequest struct {
	FirstName    *string             `json:"first_name"`
	LastName     *string             `json:"last_name"`
	SkillsWanted *[]string           `json:"wants_to_learn"`
	SkillsTaught *[]string           `json:"can_teach"`
	Skills       *[]string           `json:"skills"`
	Age          *int                `json:"age"`
	Gender       *string             `json:"gender"`
	About        *string             `json:"about"`
	Bio          *string             `json:"bio"`
	College      *string             `json:"college"`
	Year         *string             `json:"year"`
	SocialLinks  *models.SocialLinks `json:"social_links"`
	PhotoURL     *string             `json:"photo_url"`
}

// ServeView handles GET /profile/view.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.GetByID(ctx, user.ID)
	if err != nil {
		uierrors.Render(w, r, h.Log, notFound(err))
		return
	}
	uierrors.JSON(w, http.StatusOK, acct)
}

// HandleEdit handles PATCH /profile/edit. Only allow-listed fields may be
// sent; email is fixed once verified.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var raw map[string]json.RawMessage
	if err := shared.DecodeJSON(w, r, &raw); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	if _, ok := raw["email"]; ok {
		uierrors.RenderKind(w, apperr.KindValidation, "Email cannot be changed")
		return
	}
	if bad := lo.Filter(lo.Keys(raw), func(k string, _ int) bool { return !editableFields[k] }); len(bad) > 0 {
		slices.Sort(bad)
		uierrors.RenderKind(w, apperr.KindValidation,
			"Invalid fields provided for profile update: "+strings.Join(bad, ", "))
		return
	}
	if len(raw) == 0 {
		uierrors.RenderKind(w, apperr.KindValidation, "No fields provided for profile update")
		return
	}

	var req editRequest
	body, _ := json.Marshal(raw)
	if err := json.Unmarshal(body, &req); err != nil {
		uierrors.RenderKind(w, apperr.KindValidation, "Invalid value in profile update")
		return
	}

	upd, err := cleanEdit(req)
	if err != nil {
		uierrors.RenderKind(w, apperr.KindValidation, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	acct, err := h.Accounts.UpdateProfile(ctx, user.ID, upd)
	if err != nil {
		uierrors.Render(w, r, h.Log, notFound(err))
		return
	}

	h.Log.Info("profile updated", zap.String("user_id", user.ID.Hex()), zap.Strings("fields", lo.Keys(raw)))
	uierrors.Success(w, http.StatusOK, acct.FirstName+", your profile updated successfully!", map[string]any{
		"user": acct,
	})
}

// cleanEdit runs every present field through profilefields.
func cleanEdit(req editRequest) (accountstore.ProfileUpdate, error) {
	var upd accountstore.ProfileUpdate

	str := func(in *string, clean func(string) (string, error)) (*string, error) {
		if in == nil {
			return nil, nil
		}
		v, err := clean(*in)
		if err != nil {
			return nil, err
		}
		return &v, nil
	}
	list := func(in *[]string) *[]string {
		if in == nil {
			return nil
		}
		v := profilefields.Skills(*in)
		return &v
	}

	var err error
	if upd.FirstName, err = str(req.FirstName, profilefields.Name); err != nil {
		return upd, err
	}
	if upd.LastName, err = str(req.LastName, profilefields.Name); err != nil {
		return upd, err
	}
	if upd.Gender, err = str(req.Gender, profilefields.Gender); err != nil {
		return upd, err
	}
	if upd.About, err = str(req.About, profilefields.About); err != nil {
		return upd, err
	}
	if upd.Bio, err = str(req.Bio, profilefields.Bio); err != nil {
		return upd, err
	}
	if upd.College, err = str(req.College, profilefields.College); err != nil {
		return upd, err
	}
	if upd.Year, err = str(req.Year, profilefields.Year); err != nil {
		return upd, err
	}
	photo := func(s string) (string, error) { return profilefields.URL("Photo URL", s) }
	if upd.PhotoURL, err = str(req.PhotoURL, photo); err != nil {
		return upd, err
	}
	if req.Age != nil {
		if err = profilefields.Age(*req.Age); err != nil {
			return upd, err
		}
		upd.Age = req.Age
	}
	if req.SocialLinks != nil {
		links, err := profilefields.SocialLinks(*req.SocialLinks)
		if err != nil {
			return upd, err
		}
		upd.SocialLinks = &links
	}
	upd.SkillsWanted = list(req.SkillsWanted)
	upd.SkillsTaught = list(req.SkillsTaught)
	upd.Skills = list(req.Skills)
	return upd, nil
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles PATCH /profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.CurrentUser(r)

	var req passwordRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Passwords.ChangePassword(ctx, user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	uierrors.Success(w, http.StatusOK, "Password updated successfully", nil)
}

func notFound(err error) error {
	if errors.Is(err, accountstore.ErrNotFound) {
		return apperr.NotFound("User not found")
	}
	return apperr.Internal(err)
}
