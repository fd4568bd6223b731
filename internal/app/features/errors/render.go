// internal/app/features/errors/render.go
package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Success bool   `json:"success"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Success writes {"success":true,"message":...} merged with extra fields.
func Success(w http.ResponseWriter, status int, message string, extra map[string]any) {
	body := map[string]any{"success": true, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, status, body)
}

// Render maps err onto its status and writes the error body. Internal and
// upstream failures are logged at error level with the cause; client
// errors at debug.
func Render(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	if log != nil {
		fields := []zap.Field{
			zap.String("kind", string(kind)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		}
		if kind == apperr.KindInternal || kind == apperr.KindUpstreamUnavailable {
			log.Error("request failed", fields...)
		} else {
			log.Debug("request rejected", fields...)
		}
	}

	JSON(w, status, errorBody{
		Success: false,
		Kind:    string(kind),
		Message: apperr.MessageOf(err),
	})
}

// RenderKind writes an error body without an underlying error value.
func RenderKind(w http.ResponseWriter, kind apperr.Kind, message string) {
	JSON(w, apperr.HTTPStatus(kind), errorBody{
		Success: false,
		Kind:    string(kind),
		Message: message,
	})
}
