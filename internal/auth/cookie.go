package auth

import "net/http"

// CookieConfig describes how the session cookie is written. SameSite, Secure,
// and Path are deployment-configurable; the cookie is always HttpOnly.
type CookieConfig struct {
	Name     string
	Path     string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int // seconds
}

// Session builds the session cookie carrying token.
func (c CookieConfig) Session(token string) *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     c.Path,
		MaxAge:   c.MaxAge,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}

// Expired builds a cookie that instructs the client to drop the session.
// Logout is client-side only; the token itself stays valid until expiry.
func (c CookieConfig) Expired() *http.Cookie {
	return &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     c.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: c.SameSite,
	}
}
