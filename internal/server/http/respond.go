package httpserver

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/and161185/foodgram/internal/errs"
)

const maxBodyBytes = 10 << 20 // images arrive inline as data URIs

type detailBody struct {
	Detail string `json:"detail"`
}

type errorsBody struct {
	Errors map[string]string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// decodeJSON reads one JSON object into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON"
		if errors.Is(err, io.EOF) {
			msg = "empty body"
		} else if strings.Contains(err.Error(), "unknown field") {
			msg = err.Error()
		}
		writeJSON(w, http.StatusBadRequest, errorsBody{Errors: map[string]string{"non_field_errors": msg}})
		return false
	}
	return true
}

// decodeValid decodes dst and runs DTO validation, writing a 400 on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !decodeJSON(w, r, dst) {
		return false
	}
	if fields := s.validator.validate(dst); fields != nil {
		writeJSON(w, http.StatusBadRequest, errorsBody{Errors: fields})
		return false
	}
	return true
}

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, errs.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, errs.ErrEmptyCollection),
		errors.Is(err, errs.ErrUnknownReference),
		errors.Is(err, errs.ErrDuplicateReference),
		errors.Is(err, errs.ErrOutOfRange),
		errors.Is(err, errs.ErrConflict),
		errors.Is(err, errs.ErrSelfReference),
		errors.Is(err, errs.ErrInvalidInput),
		errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err. Unexpected errors are logged and hidden from the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	switch status {
	case http.StatusInternalServerError:
		s.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeJSON(w, status, detailBody{Detail: "internal server error"})
	case http.StatusBadRequest:
		field := errs.FieldOf(err)
		msg := err.Error()
		var fe *errs.FieldError
		if errors.As(err, &fe) {
			msg = fe.Err.Error()
		}
		if field == "" {
			field = "non_field_errors"
		}
		writeJSON(w, status, errorsBody{Errors: map[string]string{field: msg}})
	default:
		writeJSON(w, status, detailBody{Detail: err.Error()})
	}
}
