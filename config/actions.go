package config

import (
	"time"

	"github.com/slimloans/hanami/action"
	"github.com/slimloans/hanami/session"
	"github.com/slimloans/hanami/setting"
)

const (
	SessionStoreCookie = "cookie"
	SessionStoreRedis  = "redis"
)

type Actions struct {
	Formats               *setting.Value[action.Formats]
	AcceptedFormats       *setting.Value[[]string]
	DefaultRequestFormat  *setting.Value[string]
	DefaultResponseFormat *setting.Value[string]
	DefaultCharset        *setting.Value[string]
	DefaultHeaders        *setting.Value[map[string]string]
	ContentSecurityPolicy *setting.Value[action.ContentSecurityPolicy]
	HandleExceptions      *setting.Value[bool]
	HandledExceptions     *setting.Value[[]action.HandledError]
	Cookies               *setting.Value[action.CookieOptions]

	// CSRFProtection follows Sessions.Enabled unless set
	CSRFProtection *setting.Value[bool]

	Sessions *Sessions
}

// Sessions are disabled while Store is empty
type Sessions struct {
	Store  *setting.Value[string]
	Secret *setting.Value[string]
	Key    *setting.Value[string]
	Expiry *setting.Value[time.Duration]
	Secure *setting.Value[bool]
}

func newActions(lock *setting.Lock) *Actions {
	base := action.DefaultConfig()

	return &Actions{
		Formats:               setting.New(lock, "actions.formats", base.Formats),
		AcceptedFormats:       setting.New(lock, "actions.accepted_formats", base.AcceptedFormats),
		DefaultRequestFormat:  setting.New(lock, "actions.default_request_format", base.DefaultRequestFormat),
		DefaultResponseFormat: setting.New(lock, "actions.default_response_format", base.DefaultResponseFormat),
		DefaultCharset:        setting.New(lock, "actions.default_charset", base.DefaultCharset),
		DefaultHeaders:        setting.New(lock, "actions.default_headers", base.DefaultHeaders),
		ContentSecurityPolicy: setting.New(lock, "actions.content_security_policy", base.ContentSecurityPolicy),
		HandleExceptions:      setting.New(lock, "actions.handle_exceptions", base.HandleExceptions),
		HandledExceptions:     setting.New(lock, "actions.handled_exceptions", base.HandledExceptions),
		Cookies:               setting.New(lock, "actions.cookies", base.Cookies),
		CSRFProtection:        setting.New(lock, "actions.csrf_protection", false),

		Sessions: &Sessions{
			Store:  setting.New(lock, "actions.sessions.store", ""),
			Secret: setting.New(lock, "actions.sessions.secret", ""),
			Key:    setting.New(lock, "actions.sessions.key", session.DefaultOptions().Key),
			Expiry: setting.New[time.Duration](lock, "actions.sessions.expiry", 0),
			Secure: setting.New(lock, "actions.sessions.secure", false),
		},
	}
}

func (a *Actions) inherit(lock *setting.Lock) *Actions {
	return &Actions{
		Formats:               a.Formats.Inherit(lock),
		AcceptedFormats:       a.AcceptedFormats.Inherit(lock),
		DefaultRequestFormat:  a.DefaultRequestFormat.Inherit(lock),
		DefaultResponseFormat: a.DefaultResponseFormat.Inherit(lock),
		DefaultCharset:        a.DefaultCharset.Inherit(lock),
		DefaultHeaders:        a.DefaultHeaders.Inherit(lock),
		ContentSecurityPolicy: a.ContentSecurityPolicy.Inherit(lock),
		HandleExceptions:      a.HandleExceptions.Inherit(lock),
		HandledExceptions:     a.HandledExceptions.Inherit(lock),
		Cookies:               a.Cookies.Inherit(lock),
		CSRFProtection:        a.CSRFProtection.Inherit(lock),

		Sessions: &Sessions{
			Store:  a.Sessions.Store.Inherit(lock),
			Secret: a.Sessions.Secret.Inherit(lock),
			Key:    a.Sessions.Key.Inherit(lock),
			Expiry: a.Sessions.Expiry.Inherit(lock),
			Secure: a.Sessions.Secure.Inherit(lock),
		},
	}
}

func (s *Sessions) Enabled() bool { return s.Store.Get() != "" }

// Options are the session cookie options
func (s *Sessions) Options() session.Options {
	opts := session.DefaultOptions()
	opts.Key = s.Key.Get()
	opts.Expiry = s.Expiry.Get()
	opts.Secure = s.Secure.Get()
	return opts
}

// CSRFEnabled is the effective CSRF protection flag
func (a *Actions) CSRFEnabled() bool {
	if a.CSRFProtection.Defined() {
		return a.CSRFProtection.Get()
	}
	return a.Sessions.Enabled()
}

// Config snapshots the values into the configuration an action runs with.
// Maps and slices are copied so actions never share them with the settings.
func (a *Actions) Config() action.Config {
	headers := make(map[string]string, len(a.DefaultHeaders.Get()))
	for k, v := range a.DefaultHeaders.Get() {
		headers[k] = v
	}

	return action.Config{
		Formats:               a.Formats.Get().Clone(),
		AcceptedFormats:       append([]string(nil), a.AcceptedFormats.Get()...),
		DefaultRequestFormat:  a.DefaultRequestFormat.Get(),
		DefaultResponseFormat: a.DefaultResponseFormat.Get(),
		DefaultCharset:        a.DefaultCharset.Get(),
		DefaultHeaders:        headers,
		ContentSecurityPolicy: append(action.ContentSecurityPolicy(nil), a.ContentSecurityPolicy.Get()...),
		HandleExceptions:      a.HandleExceptions.Get(),
		HandledExceptions:     append([]action.HandledError(nil), a.HandledExceptions.Get()...),
		CSRFProtection:        a.CSRFEnabled(),
		Cookies:               a.Cookies.Get(),
	}
}
