package web

import (
	"errors"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"logistics-service/internal/auth"
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/ports"
	"logistics-service/internal/services"
)

// entityViews serves the list, form and delete pages of one entity.
type entityViews struct {
	*Handler
	entity *catalog.Entity
	res    services.Resource
}

type column struct {
	Label string
	Sort  string // empty when the column is not sortable
	Order string // "asc", "desc" or ""
}

type row struct {
	ID      int64
	Label   string
	Cells   []string
	Flagged bool
}

type listView struct {
	Entity       *catalog.Entity
	Columns      []column
	Rows         []row
	Filters      []formField
	FilterErrors []string
	Search       string
	Ordering     string
	Count        int
	Page         int
	Pages        int
	PrevURL      string
	NextURL      string
	CanEdit      bool
}

type formView struct {
	Entity *catalog.Entity
	Action string
	IsNew  bool
	Fields []formField
	Error  string
}

type deleteView struct {
	Entity  *catalog.Entity
	ID      int64
	Display string
	Error   string
}

func (v *entityViews) base() string { return "/" + v.entity.Name + "/" }

func (v *entityViews) list(w http.ResponseWriter, r *http.Request) {
	if !v.entity.PublicList && !v.requireLogin(w, r) {
		return
	}
	ctx := r.Context()
	params := r.URL.Query()

	q := ports.ListQuery{
		Filters:  map[string]string{},
		Search:   strings.TrimSpace(params.Get("search")),
		Ordering: params.Get("ordering"),
		Page:     1,
		PageSize: v.PageSize,
		Clamp:    true,
	}
	if _, ok := v.entity.OrderBy(q.Ordering); !ok {
		q.Ordering = ""
	}
	if n, err := strconv.Atoi(params.Get("page")); err == nil && n > 0 {
		q.Page = n
	}
	for _, flt := range v.entity.Filters {
		if val := params.Get(flt.Param); val != "" {
			q.Filters[flt.Param] = val
		}
	}

	lv := listView{
		Entity:   v.entity,
		Search:   q.Search,
		Ordering: q.Ordering,
		Page:     1,
		Pages:    1,
		CanEdit:  auth.UserFrom(ctx) != nil,
	}

	page, err := v.res.List(ctx, q)
	var fe domain.FieldErrors
	switch {
	case errors.As(err, &fe):
		lv.FilterErrors = slices.Sorted(maps.Values(fe))
	case err != nil:
		v.serverError(w, r, err)
		return
	default:
		lv.Count, lv.Page = page.Count, page.Page
		lv.Pages = pageCount(page.Count, page.PageSize)
		if page.HasPrevious() {
			lv.PrevURL = withParam(params, "page", strconv.Itoa(page.Page-1))
		}
		if page.HasNext() {
			lv.NextURL = withParam(params, "page", strconv.Itoa(page.Page+1))
		}
	}

	filters, err := v.filterForm(ctx, v.entity, params, fe)
	if err != nil {
		v.serverError(w, r, err)
		return
	}
	lv.Filters = filters

	cols := v.entity.ListFields()
	var refs []string
	for _, f := range cols {
		if f.Kind == catalog.Reference {
			refs = append(refs, f.Ref)
		}
	}
	labels, err := v.labelsFor(ctx, refs...)
	if err != nil {
		v.serverError(w, r, err)
		return
	}

	for _, f := range cols {
		lv.Columns = append(lv.Columns, v.column(f, params))
	}
	for _, rec := range page.Items {
		rw := row{ID: rec.ID(), Label: v.entity.DisplayOf(rec)}
		for _, f := range cols {
			cell := catalog.Format(rec[f.Name])
			if f.Kind == catalog.Reference && cell != "" {
				if label, ok := labels[f.Ref][cell]; ok {
					cell = label
				}
			}
			rw.Cells = append(rw.Cells, cell)
		}
		rw.Flagged, _ = rec[catalog.FlagColumn].(bool)
		lv.Rows = append(lv.Rows, rw)
	}

	v.render(w, r, http.StatusOK, "list", v.entity.LabelPlural, lv)
}

// column builds a header whose link toggles the sort direction.
func (v *entityViews) column(f catalog.Field, params url.Values) column {
	c := column{Label: f.Label}
	sortable := false
	for _, name := range v.entity.Ordering {
		if name == f.Name {
			sortable = true
		}
	}
	if !sortable {
		return c
	}

	next := f.Name
	switch params.Get("ordering") {
	case f.Name:
		c.Order, next = "asc", "-"+f.Name
	case "-" + f.Name:
		c.Order = "desc"
	}
	p := url.Values{}
	for k, vals := range params {
		if k != "page" {
			p[k] = vals
		}
	}
	c.Sort = withParam(p, "ordering", next)
	return c
}

func (v *entityViews) newForm(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) {
		return
	}
	v.renderForm(w, r, http.StatusOK, 0, catalog.Record{}, nil, "")
}

func (v *entityViews) create(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) || !v.checkCSRF(w, r) {
		return
	}
	raw := v.entity.DecodeForm(r.PostForm)

	rec, err := v.res.Create(r.Context(), raw)
	if err != nil {
		v.formError(w, r, 0, raw, err)
		return
	}
	v.redirect(w, r, v.base(), v.entity.DisplayOf(rec)+" was created.")
}

func (v *entityViews) editForm(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rec, err := v.res.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		v.serverError(w, r, err)
		return
	}
	v.renderForm(w, r, http.StatusOK, id, rec, nil, "")
}

func (v *entityViews) update(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) || !v.checkCSRF(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	raw := v.entity.DecodeForm(r.PostForm)

	rec, err := v.res.Update(r.Context(), id, raw)
	if err != nil {
		v.formError(w, r, id, raw, err)
		return
	}
	v.redirect(w, r, v.base(), v.entity.DisplayOf(rec)+" was updated.")
}

// formError re-renders a rejected form with the submitted values and a 400
// status.
func (v *entityViews) formError(w http.ResponseWriter, r *http.Request, id int64, raw catalog.Record, err error) {
	var (
		verr *domain.ValidationError
		fe   domain.FieldErrors
	)
	switch {
	case errors.As(err, &verr):
		v.renderForm(w, r, http.StatusBadRequest, id, raw, nil, verr.Error())
	case errors.As(err, &fe):
		v.renderForm(w, r, http.StatusBadRequest, id, raw, fe, "")
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
	default:
		v.serverError(w, r, err)
	}
}

func (v *entityViews) renderForm(w http.ResponseWriter, r *http.Request, status int, id int64, values catalog.Record, errs map[string]string, msg string) {
	fields, err := v.entityForm(r.Context(), v.entity, values, errs)
	if err != nil {
		v.serverError(w, r, err)
		return
	}

	fv := formView{Entity: v.entity, Fields: fields, Error: msg, IsNew: id == 0}
	title := "New " + strings.ToLower(v.entity.Label)
	fv.Action = v.base() + "new/"
	if id != 0 {
		title = "Edit " + strings.ToLower(v.entity.Label)
		fv.Action = v.base() + strconv.FormatInt(id, 10) + "/edit/"
	}
	v.render(w, r, status, "form", title, fv)
}

func (v *entityViews) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rec, err := v.res.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		v.serverError(w, r, err)
		return
	}
	v.render(w, r, http.StatusOK, "delete", "Delete "+strings.ToLower(v.entity.Label),
		deleteView{Entity: v.entity, ID: id, Display: v.entity.DisplayOf(rec)})
}

func (v *entityViews) delete(w http.ResponseWriter, r *http.Request) {
	if !v.requireLogin(w, r) || !v.checkCSRF(w, r) {
		return
	}
	id, ok := pathID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	rec, err := v.res.Get(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		v.serverError(w, r, err)
		return
	}
	display := v.entity.DisplayOf(rec)

	err = v.res.Delete(r.Context(), id)
	var rerr *domain.ReferencedError
	switch {
	case errors.As(err, &rerr):
		v.render(w, r, http.StatusConflict, "delete", "Delete "+strings.ToLower(v.entity.Label),
			deleteView{Entity: v.entity, ID: id, Display: display, Error: rerr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		http.NotFound(w, r)
	case err != nil:
		v.serverError(w, r, err)
	default:
		v.redirect(w, r, v.base(), display+" was deleted.")
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func pageCount(count, size int) int {
	if size <= 0 || count == 0 {
		return 1
	}
	return (count + size - 1) / size
}

// withParam returns "?<query>" with key set to value.
func withParam(params url.Values, key, value string) string {
	p := url.Values{}
	for k, vals := range params {
		p[k] = vals
	}
	p.Set(key, value)
	return "?" + p.Encode()
}
