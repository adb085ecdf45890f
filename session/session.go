// Package session keeps per client state between requests.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/slimloans/hanami/errors"
)

const (
	flashKey = "_flash"
	csrfKey  = "_csrf_token"
)

var (
	ErrorCookieOverflow = errors.Error{Key: "ERROR.SESSION_COOKIE_OVERFLOW", Status: http.StatusInternalServerError}
	ErrorStore          = errors.Error{Key: "ERROR.SESSION_STORE", Status: http.StatusInternalServerError}
)

// Options are the cookie settings shared by all stores
type Options struct {
	Key      string
	Path     string
	Domain   string
	Expiry   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

func DefaultOptions() Options {
	return Options{
		Key:      "hanami.session",
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o Options) cookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     o.Key,
		Value:    value,
		Path:     o.Path,
		Domain:   o.Domain,
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	}

	if o.Expiry > 0 {
		c.MaxAge = int(o.Expiry.Seconds())
		c.Expires = time.Now().Add(o.Expiry)
	}
	return c
}

func (o Options) expired() *http.Cookie {
	c := o.cookie("")
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

// Store loads and persists sessions
type Store interface {
	Load(ctx context.Context, r *http.Request) (*Session, error)
	Save(ctx context.Context, w http.ResponseWriter, s *Session) error
}

// Session is the mutable per client state
type Session struct {
	id     string
	isNew  bool
	values map[string]interface{}

	dirty     bool
	destroyed bool
	renewed   bool

	flash *Flash

	mu sync.RWMutex
}

// New returns an empty session, id is store specific and may be empty
func New(id string) *Session {
	return &Session{id: id, isNew: true, values: map[string]interface{}{}}
}

func newLoaded(id string, values map[string]interface{}) *Session {
	if values == nil {
		values = map[string]interface{}{}
	}
	return &Session{id: id, values: values}
}

func (s *Session) ID() string  { return s.id }
func (s *Session) IsNew() bool { return s.isNew }

func (s *Session) IsDirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *Session) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	return v, ok
}

func (s *Session) GetString(key string) string {
	v, _ := s.Get(key)
	str, _ := v.(string)
	return str
}

func (s *Session) Set(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	s.dirty = true
}

func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// Clear drops every value but keeps the session alive
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = map[string]interface{}{}
	s.dirty = true
}

// Destroy removes the session from the client and the store
func (s *Session) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values = map[string]interface{}{}
	s.destroyed = true
	s.dirty = true
}

// Renew asks the store for a new id keeping the values (fixation protection)
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.renewed = true
	s.dirty = true
}

// Values returns a copy of the public values
func (s *Session) Values() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		if k == flashKey {
			continue
		}
		ret[k] = v
	}
	return ret
}

func (s *Session) snapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ret := make(map[string]interface{}, len(s.values))
	for k, v := range s.values {
		ret[k] = v
	}
	return ret
}

// Flash returns the flash bound to this session
func (s *Session) Flash() *Flash {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.flash == nil {
		now, _ := s.values[flashKey].(map[string]interface{})
		s.flash = newFlash(now)
	}
	return s.flash
}

// sweep moves the next-request flash into the values before persisting
func (s *Session) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, had := s.values[flashKey]

	if s.flash == nil {
		if had {
			delete(s.values, flashKey)
			s.dirty = true
		}
		return
	}

	next := s.flash.next()

	switch {
	case len(next) > 0:
		s.values[flashKey] = next
		s.dirty = true
	case had:
		delete(s.values, flashKey)
		s.dirty = true
	}
}

type contextKey struct{}

// WithSession stores s on ctx
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session loaded by Middleware, nil without one
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(contextKey{}).(*Session)
	return s
}
