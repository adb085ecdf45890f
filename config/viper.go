package config

import (
	"path/filepath"
	"strings"

	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/setting"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, HANAMI_DB_URL sets db.url
const EnvPrefix = "HANAMI"

// Load reads the optional hanami config file (yaml, json or toml) from root
// or root/config, with environment overrides
func Load(root string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName("hanami")
	v.AddConfigPath(filepath.Join(root, "config"))
	v.AddConfigPath(root)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, errors.Wrap(ErrorInvalidConfig, err)
		}
	}

	return v, nil
}

// Apply overlays the values present in v. Slice sections live under
// "slice.<name>", see Sub.
func (c *Config) Apply(v *viper.Viper) error {
	if v == nil {
		return nil
	}

	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(apply(v, "root", c.Root, cast.ToStringE))
	add(apply(v, "slices", c.Slices, toStrings))
	add(apply(v, "shared_app_component_keys", c.SharedAppComponentKeys, toStrings))
	add(apply(v, "no_auto_register_paths", c.NoAutoRegisterPaths, toStrings))
	add(apply(v, "inflections", c.Inflections, toStrings))

	add(apply(v, "actions.accepted_formats", c.Actions.AcceptedFormats, toStrings))
	add(apply(v, "actions.default_request_format", c.Actions.DefaultRequestFormat, cast.ToStringE))
	add(apply(v, "actions.default_response_format", c.Actions.DefaultResponseFormat, cast.ToStringE))
	add(apply(v, "actions.default_charset", c.Actions.DefaultCharset, cast.ToStringE))
	add(apply(v, "actions.default_headers", c.Actions.DefaultHeaders, cast.ToStringMapStringE))
	add(apply(v, "actions.handle_exceptions", c.Actions.HandleExceptions, cast.ToBoolE))
	add(apply(v, "actions.csrf_protection", c.Actions.CSRFProtection, cast.ToBoolE))
	add(apply(v, "actions.sessions.store", c.Actions.Sessions.Store, cast.ToStringE))
	add(apply(v, "actions.sessions.secret", c.Actions.Sessions.Secret, cast.ToStringE))
	add(apply(v, "actions.sessions.key", c.Actions.Sessions.Key, cast.ToStringE))
	add(apply(v, "actions.sessions.expiry", c.Actions.Sessions.Expiry, cast.ToDurationE))
	add(apply(v, "actions.sessions.secure", c.Actions.Sessions.Secure, cast.ToBoolE))

	add(apply(v, "views.layout", c.Views.Layout, cast.ToStringE))
	add(apply(v, "views.layouts_dir", c.Views.LayoutsDir, cast.ToStringE))
	add(apply(v, "views.paths", c.Views.Paths, toStrings))
	add(apply(v, "views.part_namespace", c.Views.PartNamespace, cast.ToStringE))

	add(apply(v, "router.base_url", c.Router.BaseURL, cast.ToStringE))
	add(apply(v, "router.timeout", c.Router.Timeout, cast.ToDurationE))
	add(apply(v, "router.strip_slashes", c.Router.StripSlashes, cast.ToBoolE))

	add(apply(v, "logger.level", c.Logger.Level, cast.ToStringE))
	add(apply(v, "logger.format", c.Logger.Format, cast.ToStringE))
	add(apply(v, "logger.filters", c.Logger.Filters, toStrings))

	add(apply(v, "server.bind", c.Server.Bind, cast.ToStringE))
	add(apply(v, "server.read_timeout", c.Server.ReadTimeout, cast.ToDurationE))
	add(apply(v, "server.write_timeout", c.Server.WriteTimeout, cast.ToDurationE))
	add(apply(v, "server.idle_timeout", c.Server.IdleTimeout, cast.ToDurationE))
	add(apply(v, "server.shutdown_timeout", c.Server.ShutdownTimeout, cast.ToDurationE))

	add(apply(v, "db.url", c.DB.URL, cast.ToStringE))
	add(apply(v, "db.log_level", c.DB.LogLevel, cast.ToStringE))
	add(apply(v, "db.max_open_conns", c.DB.MaxOpenConns, cast.ToIntE))
	add(apply(v, "db.max_idle_conns", c.DB.MaxIdleConns, cast.ToIntE))
	add(apply(v, "db.conn_max_lifetime", c.DB.ConnMaxLifetime, cast.ToDurationE))

	add(apply(v, "redis.url", c.Redis.URL, cast.ToStringE))

	add(apply(v, "metrics.enabled", c.Metrics.Enabled, cast.ToBoolE))
	add(apply(v, "metrics.path", c.Metrics.Path, cast.ToStringE))
	add(apply(v, "metrics.namespace", c.Metrics.Namespace, cast.ToStringE))

	return errors.Join(errs...)
}

// Sub returns the section of v configuring the slice name
func Sub(v *viper.Viper, name string) *viper.Viper {
	if v == nil {
		return nil
	}
	return v.Sub("slice." + name)
}

func apply[T any](v *viper.Viper, key string, dst *setting.Value[T], conv func(interface{}) (T, error)) error {
	if !v.IsSet(key) {
		return nil
	}

	val, err := conv(v.Get(key))
	if err != nil {
		return ErrorInvalidConfig.Errorf("%s: %v", key, err)
	}
	return dst.Set(val)
}

// toStrings also splits comma separated env values
func toStrings(i interface{}) ([]string, error) {
	if s, ok := i.(string); ok {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	}
	return cast.ToStringSliceE(i)
}
