// Package config is the cascading configuration of an application and its
// slices.
//
// The app configuration reads through to the base configuration of every
// library (action, view, router) until a value is set. A slice configuration
// reads through to its parent the same way, at any depth. Finalize freezes a
// configuration; setting a value afterwards returns errors.ErrorFrozen.
package config

import (
	"net/url"
	"sync"

	"github.com/slimloans/hanami/env"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/setting"
)

var ErrorInvalidConfig = errors.Error{Key: "ERROR.INVALID_CONFIG"}

type Config struct {
	name   string
	lock   *setting.Lock
	parent *Config

	Env  *setting.Value[string]
	Root *setting.Value[string]

	// Slices limits the slices loaded, empty loads all of them
	Slices *setting.Value[[]string]

	SharedAppComponentKeys *setting.Value[[]string]
	NoAutoRegisterPaths    *setting.Value[[]string]
	Inflections            *setting.Value[[]string]

	Actions *Actions
	Views   *Views
	Router  *Router
	Logger  *Logger
	Server  *Server
	DB      *DB
	Redis   *Redis
	Metrics *Metrics

	mu           sync.Mutex
	environments map[string][]func(*Config)
}

// New builds the app configuration
func New(name string) *Config {
	lock := setting.NewLock(name)

	return &Config{
		name: name,
		lock: lock,

		Env:  setting.New(lock, "env", env.CurrentENV()),
		Root: setting.New(lock, "root", "."),

		Slices:                 setting.New[[]string](lock, "slices", nil),
		SharedAppComponentKeys: setting.New(lock, "shared_app_component_keys", []string{"inflector", "logger", "metrics", "routes", "settings"}),
		NoAutoRegisterPaths:    setting.New(lock, "no_auto_register_paths", []string{"db", "entities", "relations", "structs"}),
		Inflections:            setting.New[[]string](lock, "inflections", nil),

		Actions: newActions(lock),
		Views:   newViews(lock),
		Router:  newRouter(lock),
		Logger:  newLogger(lock),
		Server:  newServer(lock),
		DB:      newDB(lock),
		Redis:   newRedis(lock),
		Metrics: newMetrics(lock),

		environments: map[string][]func(*Config){},
	}
}

// Child builds a slice configuration reading through to c
func (c *Config) Child(name string) *Config {
	lock := setting.NewLock(name)

	return &Config{
		name:   name,
		lock:   lock,
		parent: c,

		Env:  c.Env.Inherit(lock),
		Root: c.Root.Inherit(lock),

		Slices:                 c.Slices.Inherit(lock),
		SharedAppComponentKeys: c.SharedAppComponentKeys.Inherit(lock),
		NoAutoRegisterPaths:    c.NoAutoRegisterPaths.Inherit(lock),
		Inflections:            c.Inflections.Inherit(lock),

		Actions: c.Actions.inherit(lock),
		Views:   c.Views.inherit(lock),
		Router:  c.Router.inherit(lock),
		Logger:  c.Logger.inherit(lock),
		Server:  c.Server.inherit(lock),
		DB:      c.DB.inherit(lock),
		Redis:   c.Redis.inherit(lock),
		Metrics: c.Metrics.inherit(lock),

		environments: map[string][]func(*Config){},
	}
}

func (c *Config) Name() string    { return c.name }
func (c *Config) Parent() *Config { return c.parent }
func (c *Config) Finalized() bool { return c.lock.Frozen() }

// Environment records configuration applied at Finalize when the
// environment is name
func (c *Config) Environment(name string, fn func(*Config)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.environments[name] = append(c.environments[name], fn)
}

// Finalize applies the environment blocks, validates and freezes the
// configuration. Calling it again is a no-op.
func (c *Config) Finalize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lock.Frozen() {
		return nil
	}

	blocks := c.environments[c.Env.Get()]
	c.environments = map[string][]func(*Config){}

	for _, fn := range blocks {
		if err := c.run(fn); err != nil {
			return err
		}
	}

	if err := c.validate(); err != nil {
		return err
	}

	c.lock.Freeze()
	return nil
}

// run turns a panicking MustSet inside an environment block into an error
func (c *Config) run(fn func(*Config)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = ErrorInvalidConfig.Errorf("%v", r)
		}
	}()

	fn(c)
	return nil
}

func (c *Config) validate() error {
	var errs []error

	formats := c.Actions.Formats.Get()
	for _, f := range []string{c.Actions.DefaultRequestFormat.Get(), c.Actions.DefaultResponseFormat.Get()} {
		if _, ok := formats[f]; !ok {
			errs = append(errs, ErrorInvalidConfig.Errorf("%s: unknown format %q", c.name, f))
		}
	}

	for _, f := range c.Actions.AcceptedFormats.Get() {
		if _, ok := formats[f]; !ok {
			errs = append(errs, ErrorInvalidConfig.Errorf("%s: unknown accepted format %q", c.name, f))
		}
	}

	switch store := c.Actions.Sessions.Store.Get(); store {
	case "", SessionStoreRedis:
	case SessionStoreCookie:
		if c.Actions.Sessions.Secret.Get() == "" {
			errs = append(errs, ErrorInvalidConfig.Errorf("%s: cookie sessions need a secret", c.name))
		}
	default:
		errs = append(errs, ErrorInvalidConfig.Errorf("%s: unknown session store %q", c.name, store))
	}

	if c.Actions.CSRFEnabled() && !c.Actions.Sessions.Enabled() {
		errs = append(errs, ErrorInvalidConfig.Errorf("%s: CSRF protection needs sessions", c.name))
	}

	return errors.Join(errs...)
}

// SliceFilter reports whether the slice at path (dotted for nested slices)
// should be loaded
func (c *Config) SliceFilter(path string) bool {
	filter := c.Slices.Get()
	if len(filter) == 0 {
		return true
	}

	for _, name := range filter {
		if name == path || isParentPath(path, name) || isParentPath(name, path) {
			return true
		}
	}
	return false
}

func isParentPath(path, parent string) bool {
	return len(path) > len(parent) && path[:len(parent)] == parent && path[len(parent)] == '.'
}

// Describe lists the effective settings for the settings command
func (c *Config) Describe() map[string]interface{} {
	out := map[string]interface{}{
		"env":                       c.Env.Get(),
		"root":                      c.Root.Get(),
		"slices":                    c.Slices.Get(),
		"shared_app_component_keys": c.SharedAppComponentKeys.Get(),
		"no_auto_register_paths":    c.NoAutoRegisterPaths.Get(),
		"inflections":               c.Inflections.Get(),
		"actions": map[string]interface{}{
			"accepted_formats":        c.Actions.AcceptedFormats.Get(),
			"default_request_format":  c.Actions.DefaultRequestFormat.Get(),
			"default_response_format": c.Actions.DefaultResponseFormat.Get(),
			"default_charset":         c.Actions.DefaultCharset.Get(),
			"handle_exceptions":       c.Actions.HandleExceptions.Get(),
			"csrf_protection":         c.Actions.CSRFEnabled(),
			"content_security_policy": c.Actions.ContentSecurityPolicy.Get().String(),
			"sessions":                c.Actions.Sessions.Store.Get(),
		},
		"views": map[string]interface{}{
			"layout":         c.Views.Layout.Get(),
			"layouts_dir":    c.Views.LayoutsDir.Get(),
			"paths":          c.Views.Paths.Get(),
			"part_namespace": c.Views.PartNamespace.Get(),
		},
		"router": map[string]interface{}{
			"base_url":      c.Router.BaseURL.Get(),
			"timeout":       c.Router.Timeout.Get().String(),
			"strip_slashes": c.Router.StripSlashes.Get(),
		},
		"logger": map[string]interface{}{
			"level":   c.Logger.Level.Get(),
			"format":  c.Logger.FormatFor(c.Env.Get()),
			"filters": c.Logger.Filters.Get(),
		},
		"server": map[string]interface{}{
			"bind":          c.Server.Bind.Get(),
			"read_timeout":  c.Server.ReadTimeout.Get().String(),
			"write_timeout": c.Server.WriteTimeout.Get().String(),
		},
		"db":      map[string]interface{}{"url": redact(c.DB.URL.Get())},
		"redis":   map[string]interface{}{"url": redact(c.Redis.URL.Get())},
		"metrics": map[string]interface{}{"enabled": c.Metrics.Enabled.Get(), "path": c.Metrics.Path.Get()},
	}
	return out
}

// redact hides passwords in connection urls
func redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	return u.Redacted()
}
