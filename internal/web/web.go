// Package web serves the server-rendered back office: a dashboard, account
// pages and one list/form/delete view per catalog entity.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"logistics-service/internal/auth"
	"logistics-service/internal/catalog"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "list", "form", "delete", "login", "register", "profile"}

// Deps are the collaborators of the HTML views.
type Deps struct {
	Resources services.Resources
	Dashboard *services.Dashboard
	Auth      *auth.Authenticator
	Sessions  *auth.SessionManager
	PageSize  int
}

type Handler struct {
	Deps
	pages map[string]*template.Template
}

func New(d Deps) (*Handler, error) {
	h := &Handler{Deps: d, pages: map[string]*template.Template{}}
	for _, name := range pageNames {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		h.pages[name] = t
	}
	return h, nil
}

// Register mounts every page on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.home)
	mux.HandleFunc("GET /login/{$}", h.loginForm)
	mux.HandleFunc("POST /login/{$}", h.login)
	mux.HandleFunc("GET /register/{$}", h.registerForm)
	mux.HandleFunc("POST /register/{$}", h.register)
	mux.HandleFunc("POST /logout/{$}", h.logout)
	mux.HandleFunc("GET /profile/{$}", h.profile)

	for _, e := range catalog.All() {
		res, ok := h.Resources.Lookup(e.Name)
		if !ok {
			continue
		}
		v := &entityViews{Handler: h, entity: e, res: res}
		base := "/" + e.Name + "/"
		mux.HandleFunc("GET "+base+"{$}", v.list)
		mux.HandleFunc("GET "+base+"new/{$}", v.newForm)
		mux.HandleFunc("POST "+base+"new/{$}", v.create)
		mux.HandleFunc("GET "+base+"{id}/edit/{$}", v.editForm)
		mux.HandleFunc("POST "+base+"{id}/edit/{$}", v.update)
		mux.HandleFunc("GET "+base+"{id}/delete/{$}", v.confirmDelete)
		mux.HandleFunc("POST "+base+"{id}/delete/{$}", v.delete)
	}
}

// view is the data every page template receives.
type view struct {
	Title   string
	User    *domain.User
	CSRF    string
	Flashes []string
	Nav     []*catalog.Entity
	Body    any
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page, title string, body any) {
	sess, r, err := h.Sessions.Ensure(w, r)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	v := view{
		Title:   title,
		User:    auth.UserFrom(r.Context()),
		CSRF:    sess.CSRFToken,
		Flashes: h.Sessions.PopFlashes(w, r),
		Nav:     catalog.All(),
		Body:    body,
	}

	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", v); err != nil {
		h.serverError(w, r, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	obs.Logger(r.Context()).Error("page failed",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// redirect queues an optional flash message and sends the browser on.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to, flash string) {
	if flash != "" {
		if err := h.Sessions.Flash(w, r, flash); err != nil {
			obs.Logger(r.Context()).Warn("flash failed", zap.Error(err))
		}
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}

// requireLogin sends anonymous visitors to the login page.
func (h *Handler) requireLogin(w http.ResponseWriter, r *http.Request) bool {
	if auth.UserFrom(r.Context()) != nil {
		return true
	}
	http.Redirect(w, r, "/login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
	return false
}

// checkCSRF rejects form posts without the session's token.
func (h *Handler) checkCSRF(w http.ResponseWriter, r *http.Request) bool {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return false
	}
	if h.Sessions.CheckCSRF(r) {
		return true
	}
	http.Error(w, "CSRF verification failed. Request aborted.", http.StatusForbidden)
	return false
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
