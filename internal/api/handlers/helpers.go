package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/auth"
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/ports"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		obs.Logger(r.Context()).Warn("encode failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg})
}

// Problem writes a JSON error body for middleware outside this package.
func Problem(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeError(w, r, status, msg)
}

// writeDomainError maps the domain error taxonomy onto HTTP statuses.
// Unknown errors are logged and reported as 500.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr *domain.ValidationError
		ferr domain.FieldErrors
		rerr *domain.ReferencedError
	)
	switch {
	case errors.As(err, &verr):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: verr.Error(), Kind: string(verr.Kind)})
	case errors.As(err, &ferr):
		writeJSON(w, r, http.StatusBadRequest, dto.ErrorResponse{Error: "invalid input", Fields: ferr})
	case errors.Is(err, ports.ErrInvalidPage):
		writeError(w, r, http.StatusNotFound, "invalid page")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.As(err, &rerr):
		writeError(w, r, http.StatusConflict, rerr.Error())
	case errors.Is(err, domain.ErrInvalidCredentials), errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, r, http.StatusForbidden, err.Error())
	default:
		obs.Logger(r.Context()).Error("request failed",
			zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeStrict reads exactly one JSON object into v, rejecting unknown fields.
func decodeStrict(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

// decodeRecord reads one JSON object as a raw record. Field names are
// checked later against the entity.
func decodeRecord(w http.ResponseWriter, r *http.Request) (catalog.Record, bool) {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.UseNumber()

	var rec catalog.Record
	if err := dec.Decode(&rec); err != nil || rec == nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return nil, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return nil, false
	}
	return rec, true
}

// requireUser answers 401 for anonymous requests.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if auth.UserFrom(r.Context()) == nil {
		writeDomainError(w, r, domain.ErrUnauthenticated)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}
