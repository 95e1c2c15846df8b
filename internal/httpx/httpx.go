// Package httpx holds the JSON transport helpers shared by every handler.
package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fekuna/omnipos-inventory-service/internal/apperror"
	"github.com/fekuna/omnipos-inventory-service/internal/logger"
)

type errorBody struct {
	Error   string                `json:"error"`
	Code    apperror.Kind         `json:"code"`
	Details []apperror.FieldError `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// StatusOf maps an error kind to its HTTP status.
func StatusOf(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthenticated:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err. Unexpected errors are logged and answered with a
// generic message.
func WriteError(w http.ResponseWriter, log logger.ZapLogger, err error) {
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Unexpected("internal error", err)
	}

	body := errorBody{Error: appErr.Message, Code: appErr.Kind, Details: appErr.Fields}
	switch appErr.Kind {
	case apperror.KindUnexpected:
		log.Error("request failed", zap.Error(err))
		body.Error = "internal error"
	case apperror.KindBusinessRule:
		log.Warn("business rule violated", zap.Error(err))
	}
	WriteJSON(w, StatusOf(appErr.Kind), body)
}

// DecodeJSON reads one JSON document from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("request body is required")
		}
		return apperror.Validation("malformed request body", apperror.FieldError{Field: "body", Message: err.Error()})
	}
	return nil
}

// QueryInt parses an integer query parameter, returning def when it is absent.
func QueryInt(r *http.Request, key string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation("invalid query", apperror.FieldError{Field: key, Message: "must be an integer"})
	}
	return v, nil
}

// QueryBool parses a boolean query parameter, returning def when it is absent.
func QueryBool(r *http.Request, key string, def bool) (bool, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperror.Validation("invalid query", apperror.FieldError{Field: key, Message: "must be a boolean"})
	}
	return v, nil
}

// QueryList reads a parameter given either repeated or comma separated.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
