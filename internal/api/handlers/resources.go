package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"logistics-service/internal/api/dto"
	"logistics-service/internal/catalog"
	"logistics-service/internal/ports"
	"logistics-service/internal/services"
)

// Query parameters with a fixed meaning on list endpoints. Every other
// parameter is treated as a filter.
const (
	pageParam     = "page"
	searchParam   = "search"
	orderingParam = "ordering"
)

type writeFunc func(ctx context.Context, id int64, raw catalog.Record) (catalog.Record, error)

// ResourceHandler exposes one catalog entity as a JSON collection.
type ResourceHandler struct {
	Resource services.Resource
	PageSize int
}

// canRead allows anonymous reads only for public entities.
func (h *ResourceHandler) canRead(w http.ResponseWriter, r *http.Request) bool {
	if h.Resource.Entity().PublicRead {
		return true
	}
	return requireUser(w, r)
}

func (h *ResourceHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.canRead(w, r) {
		return
	}

	q, ok := listQuery(w, r, h.PageSize)
	if !ok {
		return
	}
	page, err := h.Resource.List(r.Context(), q)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	res := dto.ListResponse{Count: page.Count, Results: make([]any, 0, len(page.Items))}
	for _, rec := range page.Items {
		res.Results = append(res.Results, rec)
	}
	if page.HasNext() {
		res.Next = pageURL(r, page.Page+1)
	}
	if page.HasPrevious() {
		res.Previous = pageURL(r, page.Page-1)
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *ResourceHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	raw, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	rec, err := h.Resource.Create(r.Context(), raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, rec)
}

func (h *ResourceHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !h.canRead(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.Resource.Get(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

// Update replaces every writable field (PUT).
func (h *ResourceHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.Resource.Update)
}

// Patch merges the body over the stored record (PATCH).
func (h *ResourceHandler) Patch(w http.ResponseWriter, r *http.Request) {
	h.write(w, r, h.Resource.Patch)
}

func (h *ResourceHandler) write(w http.ResponseWriter, r *http.Request, apply writeFunc) {
	if !requireUser(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	raw, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	rec, err := apply(r.Context(), id, raw)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rec)
}

func (h *ResourceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Resource.Delete(r.Context(), id); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Register mounts the collection under /api/<path>/.
func (h *ResourceHandler) Register(mux *http.ServeMux) {
	base := "/api/" + h.Resource.Entity().Path + "/"
	mux.HandleFunc("GET "+base+"{$}", h.List)
	mux.HandleFunc("POST "+base+"{$}", h.Create)
	mux.HandleFunc("GET "+base+"{id}/{$}", h.Get)
	mux.HandleFunc("PUT "+base+"{id}/{$}", h.Update)
	mux.HandleFunc("PATCH "+base+"{id}/{$}", h.Patch)
	mux.HandleFunc("DELETE "+base+"{id}/{$}", h.Delete)
}

// listQuery reads page, search, ordering and filters from the query string.
// A page that is not a positive integer is an invalid page.
func listQuery(w http.ResponseWriter, r *http.Request, pageSize int) (ports.ListQuery, bool) {
	params := r.URL.Query()
	q := ports.ListQuery{
		Filters:  map[string]string{},
		Search:   params.Get(searchParam),
		Ordering: params.Get(orderingParam),
		Page:     1,
		PageSize: pageSize,
	}

	if raw := strings.TrimSpace(params.Get(pageParam)); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeDomainError(w, r, ports.ErrInvalidPage)
			return q, false
		}
		q.Page = n
	}

	for k, v := range params {
		if k == pageParam || k == searchParam || k == orderingParam || len(v) == 0 {
			continue
		}
		q.Filters[k] = v[0]
	}
	return q, true
}

// pageURL returns the absolute URL of another page of the same list.
// The first page is addressed without a page parameter.
func pageURL(r *http.Request, page int) *string {
	params := r.URL.Query()
	if page <= 1 {
		params.Del(pageParam)
	} else {
		params.Set(pageParam, strconv.Itoa(page))
	}

	u := url.URL{Scheme: requestScheme(r), Host: r.Host, Path: r.URL.Path, RawQuery: params.Encode()}
	s := u.String()
	return &s
}

func requestScheme(r *http.Request) string {
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" || proto == "http" {
		return proto
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
