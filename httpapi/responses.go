package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"jobmatrimony/domain"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

var errMalformedBody = fmt.Errorf("httpapi: malformed request body: %w", domain.ErrInvalidInput)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto HTTP statuses. An unauthorized
// anonymous caller gets 401 so clients know to authenticate; a known caller
// gets 403.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status, code = http.StatusForbidden, "FORBIDDEN"
		if identityFrom(r.Context()).IsAnonymous() {
			status, code = http.StatusUnauthorized, "UNAUTHENTICATED"
		}
	case errors.Is(err, domain.ErrNotFound):
		status, code = http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrInvalidState):
		status, code = http.StatusConflict, "INVALID_STATE"
	case errors.Is(err, domain.ErrInvalidInput):
		status, code = http.StatusBadRequest, "INVALID_ARGUMENT"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		loggerFrom(r.Context()).Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: msg}})
}

// decode reads a single JSON document into v, rejecting unknown fields.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errMalformedBody, err)
	}
	return nil
}

func int64Param(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("httpapi: %s must be an integer: %w", name, domain.ErrInvalidInput)
	}
	return id, nil
}

func identityParam(r *http.Request, name string) domain.Identity {
	return domain.Identity(chi.URLParam(r, name))
}
