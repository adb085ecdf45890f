package config

import (
	"io"
	"time"

	"github.com/slimloans/hanami/env"
	"github.com/slimloans/hanami/router"
	"github.com/slimloans/hanami/setting"
	"github.com/slimloans/hanami/view"
)

type Views struct {
	Layout                *setting.Value[string]
	LayoutsDir            *setting.Value[string]
	Paths                 *setting.Value[[]string]
	PartNamespace         *setting.Value[string]
	TemplateInferenceBase *setting.Value[string]
}

func newViews(lock *setting.Lock) *Views {
	base := view.DefaultConfig()

	return &Views{
		Layout:                setting.New(lock, "views.layout", base.Layout),
		LayoutsDir:            setting.New(lock, "views.layouts_dir", base.LayoutsDir),
		Paths:                 setting.New(lock, "views.paths", base.Paths),
		PartNamespace:         setting.New(lock, "views.part_namespace", base.PartNamespace),
		TemplateInferenceBase: setting.New(lock, "views.template_inference_base", base.TemplateInferenceBase),
	}
}

func (v *Views) inherit(lock *setting.Lock) *Views {
	return &Views{
		Layout:                v.Layout.Inherit(lock),
		LayoutsDir:            v.LayoutsDir.Inherit(lock),
		Paths:                 v.Paths.Inherit(lock),
		PartNamespace:         v.PartNamespace.Inherit(lock),
		TemplateInferenceBase: v.TemplateInferenceBase.Inherit(lock),
	}
}

func (v *Views) Config() view.Config {
	return view.Config{
		Layout:                v.Layout.Get(),
		LayoutsDir:            v.LayoutsDir.Get(),
		Paths:                 append([]string(nil), v.Paths.Get()...),
		PartNamespace:         v.PartNamespace.Get(),
		TemplateInferenceBase: v.TemplateInferenceBase.Get(),
	}
}

type Router struct {
	BaseURL      *setting.Value[string]
	Timeout      *setting.Value[time.Duration]
	StripSlashes *setting.Value[bool]
}

func newRouter(lock *setting.Lock) *Router {
	base := router.DefaultConfig()

	return &Router{
		BaseURL:      setting.New(lock, "router.base_url", base.BaseURL),
		Timeout:      setting.New(lock, "router.timeout", base.Timeout),
		StripSlashes: setting.New(lock, "router.strip_slashes", base.StripSlashes),
	}
}

func (r *Router) inherit(lock *setting.Lock) *Router {
	return &Router{
		BaseURL:      r.BaseURL.Inherit(lock),
		Timeout:      r.Timeout.Inherit(lock),
		StripSlashes: r.StripSlashes.Inherit(lock),
	}
}

func (r *Router) Config() router.Config {
	return router.Config{
		BaseURL:      r.BaseURL.Get(),
		Timeout:      r.Timeout.Get(),
		StripSlashes: r.StripSlashes.Get(),
	}
}

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)

type Logger struct {
	Level *setting.Value[string]

	// Format is text in development and test, json elsewhere, unless set
	Format *setting.Value[string]

	// Stream is stdout, or discarded in test, unless set
	Stream *setting.Value[io.Writer]

	// Filters are param names masked in request logs
	Filters *setting.Value[[]string]
}

func newLogger(lock *setting.Lock) *Logger {
	return &Logger{
		Level:   setting.New(lock, "logger.level", "info"),
		Format:  setting.New(lock, "logger.format", ""),
		Stream:  setting.New[io.Writer](lock, "logger.stream", nil),
		Filters: setting.New(lock, "logger.filters", []string{"_csrf_token", "password", "password_confirmation"}),
	}
}

func (l *Logger) inherit(lock *setting.Lock) *Logger {
	return &Logger{
		Level:   l.Level.Inherit(lock),
		Format:  l.Format.Inherit(lock),
		Stream:  l.Stream.Inherit(lock),
		Filters: l.Filters.Inherit(lock),
	}
}

// FormatFor returns the effective log format in environment e
func (l *Logger) FormatFor(e string) string {
	if f := l.Format.Get(); f != "" {
		return f
	}

	if e == env.Development || e == env.Test {
		return LogFormatText
	}
	return LogFormatJSON
}

type Server struct {
	Bind            *setting.Value[string]
	ReadTimeout     *setting.Value[time.Duration]
	WriteTimeout    *setting.Value[time.Duration]
	IdleTimeout     *setting.Value[time.Duration]
	ShutdownTimeout *setting.Value[time.Duration]
}

func newServer(lock *setting.Lock) *Server {
	return &Server{
		Bind:            setting.New(lock, "server.bind", ":2300"),
		ReadTimeout:     setting.New(lock, "server.read_timeout", 5*time.Second),
		WriteTimeout:    setting.New(lock, "server.write_timeout", 10*time.Second),
		IdleTimeout:     setting.New(lock, "server.idle_timeout", 120*time.Second),
		ShutdownTimeout: setting.New(lock, "server.shutdown_timeout", 10*time.Second),
	}
}

func (s *Server) inherit(lock *setting.Lock) *Server {
	return &Server{
		Bind:            s.Bind.Inherit(lock),
		ReadTimeout:     s.ReadTimeout.Inherit(lock),
		WriteTimeout:    s.WriteTimeout.Inherit(lock),
		IdleTimeout:     s.IdleTimeout.Inherit(lock),
		ShutdownTimeout: s.ShutdownTimeout.Inherit(lock),
	}
}

type DB struct {
	// URL is sqlite://path or postgres://..., empty disables the db provider
	URL             *setting.Value[string]
	LogLevel        *setting.Value[string]
	MaxOpenConns    *setting.Value[int]
	MaxIdleConns    *setting.Value[int]
	ConnMaxLifetime *setting.Value[time.Duration]
}

func newDB(lock *setting.Lock) *DB {
	return &DB{
		URL:             setting.New(lock, "db.url", ""),
		LogLevel:        setting.New(lock, "db.log_level", "warn"),
		MaxOpenConns:    setting.New(lock, "db.max_open_conns", 0),
		MaxIdleConns:    setting.New(lock, "db.max_idle_conns", 2),
		ConnMaxLifetime: setting.New[time.Duration](lock, "db.conn_max_lifetime", 0),
	}
}

func (d *DB) inherit(lock *setting.Lock) *DB {
	return &DB{
		URL:             d.URL.Inherit(lock),
		LogLevel:        d.LogLevel.Inherit(lock),
		MaxOpenConns:    d.MaxOpenConns.Inherit(lock),
		MaxIdleConns:    d.MaxIdleConns.Inherit(lock),
		ConnMaxLifetime: d.ConnMaxLifetime.Inherit(lock),
	}
}

type Redis struct {
	// URL is redis://..., empty disables the redis provider
	URL *setting.Value[string]
}

func newRedis(lock *setting.Lock) *Redis {
	return &Redis{URL: setting.New(lock, "redis.url", "")}
}

func (r *Redis) inherit(lock *setting.Lock) *Redis {
	return &Redis{URL: r.URL.Inherit(lock)}
}

type Metrics struct {
	Enabled   *setting.Value[bool]
	Path      *setting.Value[string]
	Namespace *setting.Value[string]
}

func newMetrics(lock *setting.Lock) *Metrics {
	return &Metrics{
		Enabled:   setting.New(lock, "metrics.enabled", false),
		Path:      setting.New(lock, "metrics.path", "/metrics"),
		Namespace: setting.New(lock, "metrics.namespace", "hanami"),
	}
}

func (m *Metrics) inherit(lock *setting.Lock) *Metrics {
	return &Metrics{
		Enabled:   m.Enabled.Inherit(lock),
		Path:      m.Path.Inherit(lock),
		Namespace: m.Namespace.Inherit(lock),
	}
}
