package auth

import (
	"net/url"
	"strings"
)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Remember   bool   `json:"remember"`
	RedirectTo string `json:"redirectTo"`
}

func (d *LoginDTO) BindForm(form url.Values) {
	d.Email = form.Get("email")
	d.Password = form.Get("password")
	d.Remember = form.Get("remember") == "on"
	d.RedirectTo = form.Get("redirectTo")
}

// JoinDTO carries the sign-up form.
type JoinDTO struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirectTo"`
}

func (d *JoinDTO) BindForm(form url.Values) {
	d.Email = form.Get("email")
	d.Password = form.Get("password")
	d.RedirectTo = form.Get("redirectTo")
}

// AuthPage backs the join and login templates.
type AuthPage struct {
	RedirectTo string `json:"redirectTo,omitempty"`
}

// SafeRedirect keeps redirects on this site: only paths starting with a
// single slash are honoured, anything else falls back to def.
func SafeRedirect(to, def string) string {
	to = strings.TrimSpace(to)
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.HasPrefix(to, "/\\") {
		return def
	}
	return to
}
