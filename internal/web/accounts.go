package web

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"logistics-service/internal/auth"
	"logistics-service/internal/domain"
	"logistics-service/internal/platform/obs"
	"logistics-service/internal/services"
)

type homeView struct {
	Summary services.Summary
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	s, err := h.Dashboard.Summary(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, http.StatusOK, "home", "Dashboard", homeView{Summary: s})
}

type loginView struct {
	Username string
	Next     string
	Error    string
}

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "login", "Log in", loginView{Next: r.URL.Query().Get("next")})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	v := loginView{Username: r.PostFormValue("username"), Next: r.PostFormValue("next")}

	u, err := h.Auth.Login(r.Context(), v.Username, r.PostFormValue("password"))
	if errors.Is(err, domain.ErrInvalidCredentials) {
		v.Error = "Please enter a correct username and password."
		h.render(w, r, http.StatusOK, "login", "Log in", v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	r, err = h.Sessions.Login(w, r, u)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	obs.Logger(r.Context()).Info("user logged in", zap.Int64("user_id", u.UserID))
	h.redirect(w, r, safeNext(v.Next), "Welcome, "+u.DisplayName()+".")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	if err := h.Sessions.Logout(w, r); err != nil {
		h.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

type registerView struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Errors    domain.FieldErrors
}

func (h *Handler) registerForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "register", "Create account", registerView{})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	if !h.checkCSRF(w, r) {
		return
	}
	reg := auth.Registration{
		Username:        r.PostFormValue("username"),
		Email:           r.PostFormValue("email"),
		FirstName:       r.PostFormValue("first_name"),
		LastName:        r.PostFormValue("last_name"),
		Password:        r.PostFormValue("password"),
		PasswordConfirm: r.PostFormValue("password_confirm"),
	}

	u, err := h.Auth.Register(r.Context(), reg)
	var fe domain.FieldErrors
	if errors.As(err, &fe) {
		v := registerView{Username: reg.Username, Email: reg.Email, FirstName: reg.FirstName, LastName: reg.LastName, Errors: fe}
		h.render(w, r, http.StatusBadRequest, "register", "Create account", v)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	r, err = h.Sessions.Login(w, r, u)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.redirect(w, r, "/", "Your account has been created.")
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	if !h.requireLogin(w, r) {
		return
	}
	h.render(w, r, http.StatusOK, "profile", "Profile", nil)
}
