// internal/app/features/alumni/manage.go
package alumni

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/peerhub/internal/app/features/errors"
	"github.com/dalemusser/peerhub/internal/app/features/shared"
	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/auth"
	"github.com/dalemusser/peerhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// HandleCreate handles POST /alumni.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	if !req.hasRequired() {
		uierrors.RenderKind(w, apperr.KindValidation, msgRequired)
		return
	}
	ch, err := req.clean()
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Directory.Create(ctx, newEntry(ch))
	if err != nil {
		uierrors.Render(w, r, h.Log, apperr.Internal(err))
		return
	}

	h.logChange(r, "alumni added", a.ID.Hex())
	uierrors.Success(w, http.StatusCreated, "Alumni added successfully", map[string]any{"alumni": a})
}

// HandleUpdate handles PUT /alumni/{id}. Only the fields sent change;
// required fields may not be blanked.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "id", "alumni")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	var req entryRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}
	if req.blanksRequired() {
		uierrors.RenderKind(w, apperr.KindValidation, msgRequired)
		return
	}
	ch, err := req.clean()
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	a, err := h.Directory.Update(ctx, id, ch)
	if err != nil {
		uierrors.Render(w, r, h.Log, storeErr(err))
		return
	}

	h.logChange(r, "alumni updated", a.ID.Hex())
	uierrors.Success(w, http.StatusOK, "Alumni updated successfully", map[string]any{"alumni": a})
}

// HandleDelete handles DELETE /alumni/{id}. The entry is hidden, not
// deleted.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := shared.PathID(r, "id", "alumni")
	if err != nil {
		uierrors.Render(w, r, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Directory.Deactivate(ctx, id); err != nil {
		uierrors.Render(w, r, h.Log, storeErr(err))
		return
	}

	h.logChange(r, "alumni removed", id.Hex())
	uierrors.Success(w, http.StatusOK, "Alumni removed successfully", nil)
}

func (h *Handler) logChange(r *http.Request, msg, alumniID string) {
	user, _ := auth.CurrentUser(r)
	fields := []zap.Field{zap.String("alumni_id", alumniID)}
	if user != nil {
		fields = append(fields, zap.String("admin_id", user.ID.Hex()))
	}
	h.Log.Info(msg, fields...)
}
