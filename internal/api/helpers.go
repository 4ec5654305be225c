package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rendis/dsviz/internal/validation"
	"github.com/rendis/dsviz/pkg/schema"
)

const maxBody = 4 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response. VizErrors keep their code and
// details; anything else is a 500.
func writeError(w http.ResponseWriter, err error) {
	var ve *schema.VizError
	if !errors.As(err, &ve) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   map[string]string{"code": "INTERNAL", "message": err.Error()},
		})
		return
	}
	writeJSON(w, statusFor(ve.Code), map[string]any{"success": false, "error": ve})
}

func statusFor(code string) int {
	switch code {
	case schema.ErrCodeValidation, schema.ErrCodeUnknownAlgorithm,
		schema.ErrCodeUnknownStructure, schema.ErrCodeInvalidGraph, schema.ErrCodeExpression:
		return http.StatusBadRequest
	case schema.ErrCodeNotFound:
		return http.StatusNotFound
	case schema.ErrCodeCancelled:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(format string, args ...any) error {
	return schema.NewErrorf(schema.ErrCodeValidation, format, args...)
}

// queryInt extracts an integer query param with a default value.
func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// readBody reads a JSON body, checks it against doc and decodes it into v.
func (s *Server) readBody(r *http.Request, doc validation.Document, v any) error {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		return badRequest("read body: %v", err)
	}
	if len(raw) == 0 {
		return badRequest("request body is required")
	}
	if err := s.deps.Validator.Validate(doc, raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return badRequest("invalid JSON: %v", err)
	}
	return nil
}

// respond writes v, or the outputs of the jq query in ?jq= when present.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	q := r.URL.Query().Get("jq")
	if q == "" {
		writeJSON(w, status, v)
		return
	}
	out, err := s.deps.JQ.Query(r.Context(), q, v)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(out) == 1 {
		writeJSON(w, status, out[0])
		return
	}
	writeJSON(w, status, out)
}

func requireDep(ok bool, what string) error {
	if ok {
		return nil
	}
	return schema.NewError(schema.ErrCodeNotFound, fmt.Sprintf("%s is not enabled", what))
}
