// Package httpjson holds the small request/response helpers shared by all
// JSON handlers: decode with a size cap, respond, and render taxonomy
// errors in the stable wire shape.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/rafaelGenish111/Alu-Control/internal/app/system/apperr"
	"go.uber.org/zap"
)

// maxBodyBytes caps request bodies; order payloads are small documents.
const maxBodyBytes = 1 << 20

// Decode reads a JSON body into dst. Malformed input maps to Validation.
func Decode(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return apperr.Wrap(apperr.Validation, "malformed JSON body", err)
	}
	return nil
}

// Respond writes v as JSON with the given status.
func Respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// errorBody is the stable error wire shape:
//
//	{ "error": { "kind": "conflict", "message": "..." } }
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    apperr.Kind `json:"kind"`
	Message string      `json:"message"`
}

// Error renders err through the taxonomy. Internal causes are logged, not
// echoed to the caller.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	kind := apperr.KindOf(err)
	if kind == apperr.Internal && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	Respond(w, apperr.HTTPStatus(kind), errorBody{Error: errorDetail{
		Kind:    kind,
		Message: apperr.MessageOf(err),
	}})
}
