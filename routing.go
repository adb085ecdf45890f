package hanami

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	backend "github.com/redis/go-redis/v9"
	"github.com/slimloans/hanami/config"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/middleware"
	"github.com/slimloans/hanami/providers/redis"
	"github.com/slimloans/hanami/router"
	"github.com/slimloans/hanami/session"
)

// drawRoutes adds the application routes and the metrics endpoint
func (a *Application) drawRoutes() {
	if a.config.Metrics.Enabled.Get() {
		a.router.Get(a.config.Metrics.Path.Get(), promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}), router.As("metrics"))
	}

	if a.options.Routes != nil {
		a.router.Draw(a.options.Routes)
	}
}

// sliceRoutes returns the routes a slice draws itself when mounted without
// a block
func (a *Application) sliceRoutes(path string) func(*router.Scope) {
	s, err := a.slices.Get(path)
	if err != nil {
		a.logger.WithError(err).Warnf("cannot draw routes of slice %s", path)
		return nil
	}
	return s.Routes()
}

func (a *Application) buildHandler() (http.Handler, error) {
	stack := []func(http.Handler) http.Handler{
		middleware.RequestID,
		chimw.RealIP,
		middleware.RequestLogger(a.logger, a.config.Logger.Filters.Get()),
		middleware.Recoverer,
	}

	if a.config.Metrics.Enabled.Get() {
		metrics, err := middleware.NewMetrics(a.registry, a.config.Metrics.Namespace.Get())
		if err != nil {
			return nil, err
		}

		metrics.SliceFor = func(r *http.Request) string { return a.router.SliceFor(r.URL.Path) }
		stack = append(stack, metrics.Handler)
	}

	store, err := a.sessionStore()
	if err != nil {
		return nil, err
	}
	if store != nil {
		stack = append(stack, session.Middleware(store))
	}

	a.router.Use(stack...)

	return a.router.Build(endpointResolver{app: a})
}

// sessionStore builds the store configured by actions.sessions, nil when
// sessions are disabled
func (a *Application) sessionStore() (session.Store, error) {
	sessions := a.config.Actions.Sessions

	switch sessions.Store.Get() {
	case config.SessionStoreCookie:
		return session.NewCookieStore(sessions.Secret.Get(), sessions.Options()), nil
	case config.SessionStoreRedis:
		client, err := container.Resolve[backend.UniversalClient](a.container, redis.ClientKey)
		if err != nil {
			return nil, config.ErrorInvalidConfig.Errorf("redis sessions need a redis connection: %v", err)
		}

		var opts []session.RedisOption
		if expiry := sessions.Expiry.Get(); expiry > 0 {
			opts = append(opts, session.WithTTL(expiry))
		}
		return session.NewRedisStore(client, sessions.Options(), opts...), nil
	}

	return nil, nil
}

// endpointResolver resolves route identifiers against the container of the
// slice owning the route, "books.show" is the component "actions.books.show"
type endpointResolver struct {
	app *Application
}

func (er endpointResolver) slice(path string) (*Slice, error) {
	if path == "" {
		return er.app.Slice, nil
	}
	return er.app.slices.Get(path)
}

func (er endpointResolver) Resolve(slice, identifier string) (http.Handler, error) {
	s, err := er.slice(slice)
	if err != nil {
		return nil, err
	}

	return container.Resolve[http.Handler](s.container, ActionKey(identifier))
}

func (er endpointResolver) Eager(slice string) bool {
	s, err := er.slice(slice)
	return err == nil && s.State() == SliceStateBooted
}

var _ router.Resolver = endpointResolver{}
