package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/rentbook-dev/rentbook/internal/model"
	"github.com/rentbook-dev/rentbook/internal/store"
)

// writeJSON marshals v as JSON and writes it with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("Failed to encode response")
	}
}

type errorBody struct {
	Error  string       `json:"error"`
	Code   string       `json:"code"`
	Fields []fieldError `json:"fields,omitempty"`
}

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: message, Code: code})
}

// statusFor maps a service error to an HTTP status and error code.
func statusFor(err error) (int, string) {
	switch {
	case model.IsValidation(err):
		return http.StatusUnprocessableEntity, "VALIDATION_ERROR"
	case errors.Is(err, store.ErrPermission):
		return http.StatusForbidden, "PERMISSION_DENIED"
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	case errors.Is(err, store.ErrInvalid):
		return http.StatusBadRequest, "INVALID_REQUEST"
	}
	return http.StatusInternalServerError, "INTERNAL_ERROR"
}

// fail writes err as a JSON error. Unexpected errors are logged and hidden.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	body := errorBody{Error: err.Error(), Code: code}

	if verrs, ok := model.AsValidation(err); ok {
		body.Error = "validation failed"
		for _, v := range verrs {
			body.Fields = append(body.Fields, fieldError{Field: v.Field, Message: v.Message})
		}
	}
	if status >= http.StatusInternalServerError {
		s.log.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
			"error":  err,
		}).Error("Request failed")
		if status == http.StatusInternalServerError {
			body.Error = "internal server error"
		}
	}
	writeJSON(w, status, body)
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding request body: %w", err)
	}
	return nil
}

// list serves GET on a collection. An empty collection is [].
func list[S, T any](s *Server, pick func(services) S, fn func(S, context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := fn(pick(s.services(r)), r.Context())
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

// submit decodes an In body, applies fn and answers with status.
func submit[S, In, Out any](s *Server, status int, pick func(services) S, fn func(S, context.Context, In) (Out, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_JSON", err.Error())
			return
		}
		out, err := fn(pick(s.services(r)), r.Context(), in)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		writeJSON(w, status, out)
	}
}

// remove serves DELETE /{id}. Deleting a missing record succeeds.
func remove[S any](s *Server, pick func(services) S, fn func(S, context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(pick(s.services(r)), r.Context(), chi.URLParam(r, "id")); err != nil {
			s.fail(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
