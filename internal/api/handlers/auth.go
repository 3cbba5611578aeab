package handlers

import (
	"errors"
	"net/http"
	"strings"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/auth"
	"logistics-service/internal/domain"
)

// TokenHandler issues JWT pairs for API clients.
type TokenHandler struct {
	Auth *auth.Authenticator
}

func (h *TokenHandler) Obtain(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	fe := domain.FieldErrors{}
	if strings.TrimSpace(req.Username) == "" {
		fe.Add("username", "this field is required")
	}
	if req.Password == "" {
		fe.Add("password", "this field is required")
	}
	if err := fe.Err(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	pair, err := h.Auth.ObtainPair(r.Context(), req.Username, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		writeError(w, r, http.StatusUnauthorized, "no active account found with the given credentials")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.TokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !decodeStrict(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Refresh) == "" {
		writeDomainError(w, r, domain.FieldErrors{"refresh": "this field is required"})
		return
	}

	access, err := h.Auth.Tokens.Refresh(req.Refresh)
	if errors.Is(err, auth.ErrInvalidToken) {
		writeError(w, r, http.StatusUnauthorized, "token is invalid or expired")
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.AccessResponse{Access: access})
}
