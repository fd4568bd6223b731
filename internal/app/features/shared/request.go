// Package shared holds request helpers used by every JSON feature.
package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/peerhub/internal/app/system/apperr"
	"github.com/dalemusser/peerhub/internal/app/system/limits"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DecodeJSON reads r's body into v. An empty body leaves v unchanged.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return apperr.Validation("Request body is too large")
		}
		return apperr.Validation("Malformed JSON body")
	}
	return nil
}

// PathID parses the ObjectID in URL parameter key. label names the value
// in the error message.
func PathID(r *http.Request, key, label string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(strings.TrimSpace(chi.URLParam(r, key)))
	if err != nil {
		return primitive.NilObjectID, apperr.Validation("Invalid " + label + " ID format")
	}
	return id, nil
}
