package action

import (
	"net/http"
	"time"
)

// HandledError maps an error (matched with errors.Is) to a response status
type HandledError struct {
	Err    error
	Status int
}

// CookieOptions are the defaults applied to cookies set through a Response
type CookieOptions struct {
	Path     string
	Domain   string
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// Config is the base action configuration every app and slice cascades from
type Config struct {
	Formats         Formats
	AcceptedFormats []string

	DefaultRequestFormat  string
	DefaultResponseFormat string
	DefaultCharset        string
	DefaultHeaders        map[string]string

	ContentSecurityPolicy ContentSecurityPolicy

	// HandleExceptions turns unhandled errors into 500 responses, when false
	// they panic up to the recoverer
	HandleExceptions  bool
	HandledExceptions []HandledError

	CSRFProtection bool
	Cookies        CookieOptions
}

func DefaultConfig() Config {
	return Config{
		Formats:               DefaultFormats(),
		DefaultRequestFormat:  "html",
		DefaultResponseFormat: "html",
		DefaultCharset:        "utf-8",
		DefaultHeaders: map[string]string{
			"X-Frame-Options":        "DENY",
			"X-Content-Type-Options": "nosniff",
			"X-XSS-Protection":       "1; mode=block",
		},
		ContentSecurityPolicy: DefaultContentSecurityPolicy(),
		HandleExceptions:      true,
		Cookies: CookieOptions{
			Path:     "/",
			HTTPOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func (c CookieOptions) cookie(name, value string) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     c.Path,
		Domain:   c.Domain,
		Secure:   c.Secure,
		HttpOnly: c.HTTPOnly,
		SameSite: c.SameSite,
	}

	if c.MaxAge > 0 {
		ck.MaxAge = int(c.MaxAge.Seconds())
		ck.Expires = time.Now().Add(c.MaxAge)
	}
	return ck
}
