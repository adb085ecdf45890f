package hanami

import (
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/providers/db"
	"github.com/slimloans/hanami/providers/redis"
)

// registerBuiltins registers the components every slice shares, see
// config.Config.SharedAppComponentKeys
func (a *Application) registerBuiltins() error {
	builtins := []struct {
		key   string
		value interface{}
	}{
		{LoggerKey, a.logger},
		{InflectorKey, a.inflector},
		{RoutesKey, a.router},
		{MetricsKey, a.registry},
	}

	for _, b := range builtins {
		if err := a.container.Register(b.key, b.value); err != nil {
			return err
		}
	}

	return nil
}

// registerProviders registers the providers of the slice options and the db
// and redis providers. A slice without its own db or redis url shares the
// connection of its parent.
func (s *Slice) registerProviders() error {
	for _, p := range s.options.Providers {
		if err := s.container.RegisterProvider(p); err != nil {
			return err
		}
	}

	if err := s.registerDB(); err != nil {
		return err
	}

	return s.registerRedis()
}

func (s *Slice) registerDB() error {
	cfg := s.config.DB

	switch {
	case s.container.ProviderState(db.Name) != container.ProviderUnregistered:
	case cfg.URL.Get() != "" && (s.IsApp() || cfg.URL.IsSet()):
		p := db.New(db.Options{
			URL:             cfg.URL.Get(),
			LogLevel:        cfg.LogLevel.Get(),
			MaxOpenConns:    cfg.MaxOpenConns.Get(),
			MaxIdleConns:    cfg.MaxIdleConns.Get(),
			ConnMaxLifetime: cfg.ConnMaxLifetime.Get(),
			Logger:          s.logger.WithField("provider", db.Name),
		})

		if err := s.container.RegisterProvider(p); err != nil {
			return err
		}
	case s.parent != nil && s.parent.hasDB:
		if err := s.container.Import("", s.parent.container, db.GatewayKey); err != nil {
			return err
		}
	default:
		return nil
	}

	s.hasDB = true

	return nil
}

func (s *Slice) registerRedis() error {
	url := s.config.Redis.URL

	switch {
	case s.container.ProviderState(redis.Name) != container.ProviderUnregistered:
	case url.Get() != "" && (s.IsApp() || url.IsSet()):
		p := redis.New(redis.Options{URL: url.Get(), Logger: s.logger.WithField("provider", redis.Name)})

		if err := s.container.RegisterProvider(p); err != nil {
			return err
		}
	case s.parent != nil && s.parent.hasRedis:
		if err := s.container.Import("", s.parent.container, redis.ClientKey); err != nil {
			return err
		}
	default:
		return nil
	}

	s.hasRedis = true

	return nil
}
