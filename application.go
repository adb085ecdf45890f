package hanami

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/inflector"
	"github.com/slimloans/hanami/router"
	"github.com/spf13/viper"
)

type ApplicationState string

const (
	StateNew      ApplicationState = "new"
	StatePrepared ApplicationState = "prepared"
	StateBooted   ApplicationState = "booted"
	StateRunning  ApplicationState = "running"
	StateShutdown ApplicationState = "shutdown"
	StateErrored  ApplicationState = "errored"
)

// Application is the root slice. It owns the logger, the router and the
// event manager, and turns the routes of every slice into one http.Handler.
type Application struct {
	*Slice

	StartedAt time.Time

	options   Options
	logger    *logrus.Logger
	inflector *inflector.Inflector
	events    *EventManager
	registry  *prometheus.Registry
	viper     *viper.Viper
	router    *router.Router

	mu    sync.Mutex
	state ApplicationState

	drawMu sync.Mutex
	drawn  bool

	handlerOnce sync.Once
	handler     http.Handler
	handlerErr  error
}

// NewApplication builds the application and its slice tree, nothing is
// configured or loaded until Prepare
func NewApplication(options Options) *Application {
	if options.Name == "" {
		options.Name = "app"
	}

	logger := logrus.New()

	a := &Application{
		StartedAt: time.Now(),
		options:   options,
		logger:    logger,
		inflector: inflector.New(),
		events:    NewEventManager(logrus.NewEntry(logger).WithField("app", options.Name)),
		registry:  prometheus.NewRegistry(),
		state:     StateNew,
	}

	a.Slice = newSlice(a, nil, SliceName{}, options.sliceOptions())

	if options.Env != "" {
		a.config.Env.MustSet(options.Env)
	}

	return a
}

func (a *Application) AppName() string                 { return a.options.Name }
func (a *Application) Version() string                 { return a.options.Version }
func (a *Application) Logger() *logrus.Logger          { return a.logger }
func (a *Application) Inflector() *inflector.Inflector { return a.inflector }
func (a *Application) Events() *EventManager           { return a.events }
func (a *Application) Metrics() *prometheus.Registry   { return a.registry }

// Router is nil until the application is prepared
func (a *Application) Router() *router.Router { return a.router }

func (a *Application) State() ApplicationState {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.state
}

// changeState changes application state within the application
// and dispatches to all those who care
func (a *Application) changeState(state ApplicationState) {
	a.mu.Lock()
	if a.state == StateShutdown || a.state == StateErrored {
		a.mu.Unlock()
		return
	}
	a.state = state
	a.mu.Unlock()

	a.dispatch(ApplicationStateChanged{state})
}

func (a *Application) dispatch(data any) {
	a.events.Dispatch(WithApplication(context.Background(), a), data)
}

func (a *Application) On(event string, fnc EventFunc) {
	a.Events().Register(event, fnc)
}

func (a *Application) Off(event string, fnc EventFunc) {
	a.Events().Unregister(event, fnc)
}

// configured runs once the app configuration is final, before any
// component is registered
func (a *Application) configured() error {
	if err := configureLogger(a.logger, a.config.Logger, a.config.Env.Get()); err != nil {
		return err
	}

	a.inflector.Acronym(a.config.Inflections.Get()...)

	a.router = router.New(a.config.Router.Config())
	a.router.SliceRoutes(a.sliceRoutes)

	return nil
}

// Prepare prepares every loaded slice and draws the routes
func (a *Application) Prepare() error {
	if err := a.Slice.Prepare(); err != nil {
		a.changeState(StateErrored)
		return err
	}

	a.drawMu.Lock()
	defer a.drawMu.Unlock()

	if !a.drawn {
		a.drawRoutes()
		a.drawn = true
		a.changeState(StatePrepared)
	}

	return nil
}

// Boot prepares, finalizes every container and builds the router, resolving
// every endpoint up front
func (a *Application) Boot() error {
	if err := a.Prepare(); err != nil {
		return err
	}

	if err := a.Slice.Boot(); err != nil {
		a.changeState(StateErrored)
		return err
	}

	if _, err := a.Handler(); err != nil {
		a.changeState(StateErrored)
		return err
	}

	if a.State() == StatePrepared {
		a.changeState(StateBooted)
		a.logger.Infof("booted %s (%s) in %s", a.options.Name, a.config.Env.Get(), time.Since(a.StartedAt))
	}

	return nil
}

// Handler returns the routed handler of the application, built once.
// Endpoints of booted slices are resolved while building, the others on
// their first request.
func (a *Application) Handler() (http.Handler, error) {
	if err := a.Prepare(); err != nil {
		return nil, err
	}

	a.handlerOnce.Do(func() {
		a.handler, a.handlerErr = a.buildHandler()
	})

	return a.handler, a.handlerErr
}

func (a *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h, err := a.Handler()
	if err != nil {
		a.logger.WithError(err).Error("unable to build the router")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.ServeHTTP(w, r)
}

// Shutdown stops the providers of every slice, nested slices first
func (a *Application) Shutdown() error {
	if a.State() == StateShutdown {
		return nil
	}

	a.changeState(StateShutdown)

	err := a.Slice.Shutdown()

	a.dispatch(ApplicationShutdown{})
	return err
}

var _ http.Handler = (*Application)(nil)
