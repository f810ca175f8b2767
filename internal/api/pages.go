package api

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/smartshuttle/shuttle/internal/auth"
	"github.com/smartshuttle/shuttle/internal/onboarding"
	"github.com/smartshuttle/shuttle/internal/storage"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

type pages struct {
	byName map[string]*template.Template
}

func loadPages() (*pages, error) {
	p := &pages{byName: make(map[string]*template.Template)}
	for _, name := range []string{"home.html", "login.html", "register.html"} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		p.byName[name] = t
	}
	return p, nil
}

type formValues struct {
	Name  string
	Email string
}

type pageData struct {
	Title    string
	ThemeCSS template.CSS
	User     *auth.AuthUser
	Steps    []onboarding.Step
	Form     formValues
	Error    string
	Fields   auth.FieldErrors
}

func (s *server) render(w http.ResponseWriter, status int, name string, data pageData) {
	data.ThemeCSS = s.Theme.CSSVariables()
	var buf bytes.Buffer
	if err := s.pages.byName[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.Logger.Error("render page", zap.String("page", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *server) home(w http.ResponseWriter, r *http.Request) {
	data := pageData{Steps: s.Onboarding.Steps()}
	if u, ok := auth.UserFromContext(r.Context()); ok {
		data.User = &u
	}
	s.render(w, http.StatusOK, "home.html", data)
}

// redirectSignedIn sends authenticated visitors home and reports whether
// it did so.
func redirectSignedIn(w http.ResponseWriter, r *http.Request) bool {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return true
	}
	return false
}

func (s *server) loginPage(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	s.render(w, http.StatusOK, "login.html", pageData{Title: "Sign in"})
}

func (s *server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := auth.LoginInput{Email: r.PostForm.Get("email"), Password: r.PostForm.Get("password")}
	sess, err := s.Auth.Login(r.Context(), in)
	if err != nil {
		s.formError(w, r, "login.html", "Sign in", formValues{Email: strings.TrimSpace(in.Email)}, err)
		return
	}
	http.SetCookie(w, auth.AuthCookie(sess.Token, s.Secure))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *server) registerPage(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	s.render(w, http.StatusOK, "register.html", pageData{Title: "Create account"})
}

func (s *server) registerSubmit(w http.ResponseWriter, r *http.Request) {
	if redirectSignedIn(w, r) {
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	in := auth.RegisterInput{
		Name:     r.PostForm.Get("name"),
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	sess, err := s.Auth.Register(r.Context(), in)
	if err != nil {
		form := formValues{Name: strings.TrimSpace(in.Name), Email: strings.TrimSpace(in.Email)}
		s.formError(w, r, "register.html", "Create account", form, err)
		return
	}
	http.SetCookie(w, auth.AuthCookie(sess.Token, s.Secure))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// formError re-renders a form with the trimmed values and the failure. A
// taken email is reported against the email field.
func (s *server) formError(w http.ResponseWriter, r *http.Request, page, title string, form formValues, err error) {
	status, message := auth.StatusFor(err)
	data := pageData{Title: title, Form: form}
	var fe auth.FieldErrors
	switch {
	case errors.As(err, &fe):
		data.Fields = fe
	case errors.Is(err, storage.ErrEmailTaken):
		data.Fields = auth.FieldErrors{"email": message}
	default:
		data.Error = message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.Error("form submit failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	s.render(w, status, page, data)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.LogoutCookie())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
