package hanami

import (
	"reflect"
	"strings"

	"github.com/slimloans/hanami/action"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/utils"
	"github.com/slimloans/hanami/view"
)

const (
	LoggerKey      = "logger"
	InflectorKey   = "inflector"
	SettingsKey    = "settings"
	RoutesKey      = "routes"
	MetricsKey     = "metrics"
	ViewContextKey = "views.context"

	actionsNamespace = "actions"
	viewsNamespace   = "views"
)

// ActionKey is the container key of the action an endpoint identifier
// points at, "books.show" lives under "actions.books.show"
func ActionKey(identifier string) string {
	if utils.HasPrefixSegment(identifier, actionsNamespace, container.Separator) {
		return identifier
	}
	return actionsNamespace + container.Separator + identifier
}

// Action registers handler as the action key ("books.show"). The action is
// built on first resolution with the paired view "views.<key>" when one is
// registered, the slice's view context, the routes helper and the handler's
// `inject` fields filled in.
func (s *Slice) Action(key string, handler action.Handler, opts ...action.Option) error {
	factory := func(t container.Target) (interface{}, error) {
		return s.buildAction(t, key, handler, opts)
	}

	return s.container.Register(ActionKey(key), container.Factory(factory), container.Memoize())
}

func (s *Slice) buildAction(t container.Target, key string, handler action.Handler, opts []action.Option) (*action.Action, error) {
	if isStructPtr(handler) {
		if err := container.Inject(t, handler); err != nil {
			return nil, err
		}
	}

	options := []action.Option{
		action.WithName(key),
		action.WithConfig(s.config.Actions.Config()),
		action.WithLogger(s.logger.WithField("action", key)),
	}

	v, err := optional[view.View](t, viewsNamespace+container.Separator+key)
	if err != nil {
		return nil, err
	}
	if v != nil {
		options = append(options, action.WithView(v))
	}

	ctx, err := optional[*view.Context](t, ViewContextKey)
	if err != nil {
		return nil, err
	}
	if ctx != nil {
		options = append(options, action.WithViewContext(ctx))
	}

	routes, err := optional[view.Routes](t, RoutesKey)
	if err != nil {
		return nil, err
	}
	if routes != nil {
		options = append(options, action.WithRoutes(routes))
	}

	return action.New(handler, append(options, opts...)...), nil
}

// optional resolves key returning the zero value when it is not registered
func optional[T any](r container.Resolver, key string) (T, error) {
	v, err := container.Resolve[T](r, key)
	if errors.Is(err, container.ErrorComponentNotFound) {
		return v, nil
	}
	return v, err
}

// View registers v as the view key, the action with the same key renders
// through it
func (s *Slice) View(key string, v view.View) error {
	return s.container.Register(viewsNamespace+container.Separator+key, v)
}

// AutoRegister registers components under keys derived from their Go
// package relative to the slice namespace and their type name:
// <namespace>/repos.BookRepo becomes "repos.book_repo". Handlers under
// actions/ become actions, views under views/ become views. Components in
// one of Config.NoAutoRegisterPaths are skipped.
func (s *Slice) AutoRegister(components ...interface{}) error {
	skip := s.config.NoAutoRegisterPaths.Get()

	for _, component := range components {
		segments, err := componentKey(s.namespace, component, s.app.inflector)
		if err != nil {
			return err
		}

		if utils.StringSliceContains(skip, segments[0]) {
			continue
		}

		if err := s.autoRegister(segments, component); err != nil {
			return err
		}
	}

	return nil
}

func (s *Slice) autoRegister(segments []string, component interface{}) error {
	key := strings.Join(segments, container.Separator)
	rest := strings.Join(segments[1:], container.Separator)

	switch c := component.(type) {
	case action.Handler:
		if segments[0] == actionsNamespace && rest != "" {
			return s.Action(rest, c)
		}
	case view.View:
		if segments[0] == viewsNamespace && rest != "" {
			return s.View(rest, c)
		}
	}

	return s.container.AddLoader(key, func(t container.Target) (interface{}, error) {
		if isStructPtr(component) {
			if err := container.Inject(t, component); err != nil {
				return nil, err
			}
		}
		return component, nil
	})
}

func isStructPtr(v interface{}) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && !rv.IsNil() && rv.Elem().Kind() == reflect.Struct
}
