package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
)

func TestOpenAPIDocumentCoversCatalog(t *testing.T) {
	doc := OpenAPIDocument("Logistics API", "test")
	assert.Equal(t, "3.0.3", doc["openapi"])

	paths := doc["paths"].(object)
	schemas := doc["components"].(object)["schemas"].(object)
	for _, e := range catalog.All() {
		base := "/api/" + e.Path + "/"
		assert.Contains(t, paths, base)
		assert.Contains(t, paths, base+"{id}/")
		assert.Contains(t, schemas, schemaName(e))
		assert.Contains(t, schemas, "Paginated"+schemaName(e)+"List")
	}

	dispatch := schemas["Dispatch"].(object)
	assert.Subset(t, dispatch["required"], []string{"dispatch_date", "route", "cargo"})
	assert.Contains(t, paths, "/api/dispatches/validate/")
}

func TestListQuery(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/vehicles/?page=2&search=ab&ordering=-capacity_kg&active=true", nil)
	q, ok := listQuery(httptest.NewRecorder(), r, 10)
	require.True(t, ok)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 10, q.PageSize)
	assert.Equal(t, "ab", q.Search)
	assert.Equal(t, "-capacity_kg", q.Ordering)
	assert.Equal(t, map[string]string{"active": "true"}, q.Filters)

	for _, page := range []string{"0", "-1", "two"} {
		t.Run("page "+page, func(t *testing.T) {
			rec := httptest.NewRecorder()
			_, ok := listQuery(rec, httptest.NewRequest(http.MethodGet, "/api/vehicles/?page="+page, nil), 10)
			assert.False(t, ok)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	}
}

func TestPageURL(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/clients/?ordering=name&page=2", nil)
	r.Header.Set("X-Forwarded-Proto", "https")

	assert.Equal(t, "https://example.com/api/clients/?ordering=name", *pageURL(r, 1))
	assert.Equal(t, "https://example.com/api/clients/?ordering=name&page=3", *pageURL(r, 3))
}

func TestWriteDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   dto.ErrorResponse
	}{
		{"dispatch rule", fmt.Errorf("create dispatch: %w", &domain.ValidationError{Kind: domain.MissingTransport}), 400,
			dto.ErrorResponse{Error: "a dispatch must have a vehicle or an aircraft assigned", Kind: "MissingTransport"}},
		{"field errors", domain.FieldErrors{"plate_number": "this field is required"}, 400,
			dto.ErrorResponse{Error: "invalid input", Fields: map[string]string{"plate_number": "this field is required"}}},
		{"invalid page", ports.ErrInvalidPage, 404, dto.ErrorResponse{Error: "invalid page"}},
		{"not found", fmt.Errorf("get vehicle 9: %w", domain.ErrNotFound), 404, dto.ErrorResponse{Error: "not found"}},
		{"referenced", &domain.ReferencedError{Entity: "route", ReferencedBy: "dispatches", Count: 2}, 409,
			dto.ErrorResponse{Error: "cannot delete route: still referenced by 2 dispatches"}},
		{"unauthenticated", domain.ErrUnauthenticated, 401, dto.ErrorResponse{Error: domain.ErrUnauthenticated.Error()}},
		{"forbidden", domain.ErrForbidden, 403, dto.ErrorResponse{Error: domain.ErrForbidden.Error()}},
		{"unexpected", fmt.Errorf("disk on fire"), 500, dto.ErrorResponse{Error: "internal server error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeDomainError(rec, httptest.NewRequest(http.MethodGet, "/api/x/", nil), tt.err)

			require.Equal(t, tt.status, rec.Code)
			var got dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
