package hanami

import (
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/config"
	"github.com/slimloans/hanami/container"
	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/router"
	"github.com/slimloans/hanami/settings"
	"github.com/slimloans/hanami/view"
)

type SliceState string

const (
	SliceStateNew      SliceState = "new"
	SliceStatePrepared SliceState = "prepared"
	SliceStateBooted   SliceState = "booted"
	SliceStateShutdown SliceState = "shutdown"
)

// parentNamespace is the namespace of components imported from the app by
// slices using ImportFromParent
const parentNamespace = "app"

// Slice is a named part of the application with its own root, container,
// configuration and nested slices. The application is the root slice.
type Slice struct {
	name    SliceName
	parent  *Slice
	app     *Application
	options SliceOptions

	root      string
	namespace string

	config    *config.Config
	container *container.Container
	slices    *SliceRegistrar
	logger    *logrus.Entry

	// setupErr holds errors found while building the slice, reported by Prepare
	setupErr error

	// set while preparing, a slice without its own db or redis shares
	// the parent's
	hasDB    bool
	hasRedis bool

	mu       sync.RWMutex
	state    SliceState
	settings interface{}

	// prepareMu of the application slice serializes preparing the whole
	// tree, visiting holds the slices of the running chain
	prepareMu  sync.Mutex
	visiting   map[*Slice]bool
	prepared   bool
	prepareErr error

	bootMu  sync.Mutex
	booted  bool
	bootErr error
}

func newSlice(app *Application, parent *Slice, name SliceName, options SliceOptions) *Slice {
	s := &Slice{
		name:      name,
		parent:    parent,
		app:       app,
		options:   options,
		root:      options.Root,
		namespace: options.Namespace,
		state:     SliceStateNew,
	}

	containerName := app.options.Name
	if parent == nil {
		if s.root == "" {
			s.root = "."
		}
		s.config = config.New(app.options.Name)
		s.logger = logrus.NewEntry(app.logger).WithField("app", app.options.Name)
	} else {
		if s.root == "" {
			s.root = filepath.Join(parent.root, "slices", name.Name())
		}
		if s.namespace == "" && parent.namespace != "" {
			s.namespace = path.Join(parent.namespace, "slices", name.Name())
		}
		containerName = name.String()
		s.config = parent.config.Child(name.String())
		s.logger = parent.logger.WithField("slice", name.String())
	}

	s.config.Root.MustSet(s.root)

	s.container = container.New(containerName)
	s.container.SetLogger(s.logger)

	s.slices = newSliceRegistrar(s)

	names := make([]string, 0, len(options.Slices))
	for n := range options.Slices {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, n := range names {
		if err := s.slices.Register(n, options.Slices[n]); err != nil {
			s.setupErr = errors.Join(s.setupErr, err)
		}
	}

	return s
}

func (s *Slice) Name() SliceName                 { return s.name }
func (s *Slice) Parent() *Slice                  { return s.parent }
func (s *Slice) App() *Application               { return s.app }
func (s *Slice) Namespace() string               { return s.namespace }
func (s *Slice) Config() *config.Config          { return s.config }
func (s *Slice) Container() *container.Container { return s.container }
func (s *Slice) Slices() *SliceRegistrar         { return s.slices }
func (s *Slice) Logger() *logrus.Entry           { return s.logger }
func (s *Slice) IsApp() bool                     { return s.parent == nil }

// String is the dotted path of the slice, the app name for the application
func (s *Slice) String() string {
	if s.IsApp() {
		return s.app.options.Name
	}
	return s.name.String()
}

// Root is the directory holding the slice's config and dotenv files
func (s *Slice) Root() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.root
}

func (s *Slice) State() SliceState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state
}

func (s *Slice) setState(state SliceState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state
}

// Settings is the struct loaded from the dotenv files, nil when the slice
// has no settings
func (s *Slice) Settings() interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.settings
}

// Routes draws the routes of the slice when it is mounted without a block
func (s *Slice) Routes() func(*router.Scope) { return s.options.Routes }

// Slice returns the nested slice at the dotted path
func (s *Slice) Slice(path string) (*Slice, error) { return s.slices.Get(path) }

func (s *Slice) Register(key string, item interface{}, opts ...container.Option) error {
	return s.container.Register(key, item, opts...)
}

func (s *Slice) RegisterProvider(p container.Provider) error {
	return s.container.RegisterProvider(p)
}

func (s *Slice) Resolve(key string) (interface{}, error) {
	return s.container.Resolve(key)
}

// Import makes the components of the slice at the dotted path from available
// under as, the last segment of from when as is empty. An empty from is the
// app.
func (s *Slice) Import(from, as string, keys ...string) error {
	source := s.app.Slice
	if from != "" {
		var err error
		if source, err = s.app.slices.Get(from); err != nil {
			return err
		}
	}

	if as == "" {
		as = source.name.Name()
		if source.IsApp() {
			as = parentNamespace
		}
	}

	// the source registers its components while preparing. Within a Prepare
	// block the source joins the running chain, so slices may import each
	// other.
	prepareSource := source.Prepare
	if visiting := s.visiting; visiting != nil {
		prepareSource = func() error { return source.prepareIn(visiting) }
	}
	if err := prepareSource(); err != nil {
		return err
	}

	return s.container.Import(as, source.container, keys...)
}

// ImportFromParent makes every exported component of the parent available
// under the parent's name, "app" for the application
func (s *Slice) ImportFromParent() error {
	if s.parent == nil {
		return ErrorSliceState.Errorf("the application has no parent to import from")
	}

	ns := s.parent.name.Name()
	if s.parent.IsApp() {
		ns = parentNamespace
	}
	return s.container.Import(ns, s.parent.container)
}

// Export limits the components other slices may import
func (s *Slice) Export(keys ...string) error {
	return s.container.Export(keys...)
}

// Prepare configures the slice, registers its components and prepares its
// nested slices. It runs once; concurrent callers wait for the first one.
func (s *Slice) Prepare() error {
	root := s.tree()

	root.prepareMu.Lock()
	defer root.prepareMu.Unlock()

	return s.prepareIn(map[*Slice]bool{})
}

// prepareIn prepares the slice as part of the chain recorded in visiting. A
// slice already visited is being prepared further up the same chain, as
// happens with slices importing each other.
func (s *Slice) prepareIn(visiting map[*Slice]bool) error {
	if visiting[s] {
		return nil
	}

	if s.prepared {
		return s.prepareErr
	}

	visiting[s] = true
	s.visiting = visiting
	s.prepareErr = s.prepare(visiting)
	s.visiting = nil
	s.prepared = true

	return s.prepareErr
}

func (s *Slice) tree() *Slice {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root
}

func (s *Slice) prepare(visiting map[*Slice]bool) error {
	if s.setupErr != nil {
		return s.setupErr
	}

	// slices configure on top of a prepared parent
	if s.parent != nil {
		if err := s.parent.prepareIn(visiting); err != nil {
			return err
		}
	}

	if err := s.configure(); err != nil {
		return err
	}

	if s.IsApp() {
		if err := s.app.configured(); err != nil {
			return err
		}
	}

	if err := s.loadSettings(); err != nil {
		return err
	}

	if s.IsApp() {
		if err := s.app.registerBuiltins(); err != nil {
			return err
		}
	}

	if err := s.registerProviders(); err != nil {
		return err
	}

	if err := s.importShared(); err != nil {
		return err
	}

	if s.options.ImportFromParent {
		if err := s.ImportFromParent(); err != nil {
			return err
		}
	}

	if s.options.Prepare != nil {
		if err := s.options.Prepare(s); err != nil {
			return err
		}
	}

	if err := s.registerViewContext(); err != nil {
		return err
	}

	if len(s.options.Export) > 0 {
		if err := s.Export(s.options.Export...); err != nil {
			return err
		}
	}

	s.setState(SliceStatePrepared)
	s.logger.Debug("slice prepared")
	s.app.dispatch(SlicePrepared{Slice: s.name.String()})

	return s.slices.Each(func(child *Slice) error { return child.prepareIn(visiting) })
}

// configure runs the configure block, overlays the config file and freezes
// the configuration
func (s *Slice) configure() error {
	if s.options.Configure != nil {
		s.options.Configure(s.config)
	}

	if s.IsApp() {
		v, err := config.Load(s.config.Root.Get())
		if err != nil {
			return err
		}
		s.app.viper = v
	}

	v := s.app.viper
	if !s.IsApp() {
		v = config.Sub(v, s.name.String())
	}

	if err := s.config.Apply(v); err != nil {
		return err
	}

	if err := s.config.Finalize(); err != nil {
		return err
	}

	s.mu.Lock()
	s.root = s.config.Root.Get()
	s.mu.Unlock()

	return nil
}

func (s *Slice) loadSettings() error {
	if s.options.Settings == nil {
		return nil
	}

	if err := settings.Load(s.Root(), s.config.Env.Get(), s.options.Settings); err != nil {
		return err
	}

	s.mu.Lock()
	s.settings = s.options.Settings
	s.mu.Unlock()

	return s.container.Register(SettingsKey, s.options.Settings)
}

// importShared imports the app components every slice shares
func (s *Slice) importShared() error {
	if s.IsApp() {
		return nil
	}

	app := s.app.container

	var keys []string
	for _, key := range s.config.SharedAppComponentKeys.Get() {
		if app.Registered(key) {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil
	}

	return s.container.Import("", app, keys...)
}

func (s *Slice) registerViewContext() error {
	if s.container.Registered(ViewContextKey) {
		return nil
	}

	return s.container.Register(ViewContextKey, container.Factory(func(t container.Target) (interface{}, error) {
		routes, err := container.Resolve[view.Routes](t, RoutesKey)
		if err != nil && !errors.Is(err, container.ErrorComponentNotFound) {
			return nil, err
		}
		return view.NewContext(s.name.String(), s.config.Views.Config(), routes), nil
	}), container.Memoize())
}

// Boot prepares the slice, finalizes its container and boots its nested
// slices. It runs once.
func (s *Slice) Boot() error {
	s.bootMu.Lock()
	defer s.bootMu.Unlock()

	if s.booted {
		return s.bootErr
	}

	s.booted = true
	s.bootErr = s.boot()
	return s.bootErr
}

func (s *Slice) boot() error {
	if err := s.Prepare(); err != nil {
		return err
	}

	if err := s.container.Finalize(); err != nil {
		return err
	}

	s.setState(SliceStateBooted)
	s.logger.Debug("slice booted")
	s.app.dispatch(SliceBooted{Slice: s.name.String()})

	return s.slices.Each(func(child *Slice) error { return child.Boot() })
}

// Shutdown stops the providers of the nested slices, then its own
func (s *Slice) Shutdown() error {
	var errs []error

	children := s.slices.loaded()
	for i := len(children) - 1; i >= 0; i-- {
		if err := children[i].Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.State() != SliceStateShutdown {
		if err := s.container.Shutdown(); err != nil {
			errs = append(errs, err)
		}
		s.setState(SliceStateShutdown)
	}

	return errors.Join(errs...)
}
