// Package view defines what an action renders through. Templates are the
// application's business; the framework resolves, injects and calls views.
package view

import (
	"net/http"
	"sync"
)

// Exposures are the values handed from an action to its view
type Exposures map[string]interface{}

// View renders exposures within a request scoped Context
type View interface {
	Render(ctx *Context, exposures Exposures) (string, error)
}

// Func adapts a plain function to a View
type Func func(ctx *Context, exposures Exposures) (string, error)

func (f Func) Render(ctx *Context, exposures Exposures) (string, error) { return f(ctx, exposures) }

// Routes is the subset of the router a view needs for building links
type Routes interface {
	Path(name string, params map[string]interface{}) (string, error)
	URL(name string, params map[string]interface{}) (string, error)
}

// Config is the base view configuration
type Config struct {
	Layout                string
	LayoutsDir            string
	Paths                 []string
	PartNamespace         string
	TemplateInferenceBase string
}

// DefaultConfig is the base every app and slice view configuration cascades from
func DefaultConfig() Config {
	return Config{
		Layout:                "app",
		LayoutsDir:            "layouts",
		Paths:                 []string{"templates"},
		PartNamespace:         "views.parts",
		TemplateInferenceBase: "views",
	}
}

// Flash is the read side of the flash a view can display
type Flash interface {
	Get(key string) (interface{}, bool)
}

// Context is shared by all views of a slice; WithRequest derives the per
// request copy an action renders with
type Context struct {
	Slice  string
	Config Config
	Routes Routes

	Request   *http.Request
	Flash     Flash
	Session   map[string]interface{}
	CSRFToken string

	mu     sync.RWMutex
	values map[string]interface{}
}

func NewContext(slice string, config Config, routes Routes) *Context {
	return &Context{Slice: slice, Config: config, Routes: routes}
}

// WithRequest clones the context for a single request
func (c *Context) WithRequest(r *http.Request, flash Flash, session map[string]interface{}, csrfToken string) *Context {
	c.mu.RLock()
	values := make(map[string]interface{}, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	c.mu.RUnlock()

	return &Context{
		Slice:     c.Slice,
		Config:    c.Config,
		Routes:    c.Routes,
		Request:   r,
		Flash:     flash,
		Session:   session,
		CSRFToken: csrfToken,
		values:    values,
	}
}

// Set stores an arbitrary value available to every render
func (c *Context) Set(key string, value interface{}) *Context {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.values == nil {
		c.values = map[string]interface{}{}
	}
	c.values[key] = value
	return c
}

func (c *Context) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.values[key]
	return v, ok
}
