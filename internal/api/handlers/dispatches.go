package handlers

import (
	"net/http"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/catalog"
	"logistics-service/internal/services"
)

// DispatchValidateHandler checks a candidate dispatch without saving it.
type DispatchValidateHandler struct {
	Validator *services.DispatchValidator
}

func (h *DispatchValidateHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	raw, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	a, err := h.Validator.Check(raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ValidateResponse{Valid: true, Assignment: dto.NewAssignment(a)})
}

// Root lists the collection endpoints.
func Root(w http.ResponseWriter, r *http.Request) {
	res := make(map[string]string)
	for _, e := range catalog.All() {
		res[e.Path] = requestScheme(r) + "://" + r.Host + "/api/" + e.Path + "/"
	}
	writeJSON(w, r, http.StatusOK, res)
}
