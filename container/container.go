// Package container is the component registry every app and slice owns.
//
// Before Finalize the container is lazy: a missing key is looked up through
// registered loaders, then the provider named by the key's first segment,
// then imported containers. Finalize loads everything up front and freezes
// the registry, after which lookups never trigger loading.
package container

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/slimloans/hanami/errors"
)

// Separator splits namespaces in component keys
const Separator = "."

// Resolver looks components up by key
type Resolver interface {
	Resolve(key string) (interface{}, error)
}

// Target is handed to factories, loaders and providers. Resolving through it
// keeps dependency cycle tracking intact and never blocks on the loading lock
// the current resolution already holds.
type Target interface {
	Resolver
	Register(key string, item interface{}, opts ...Option) error
	Name() string
}

// Factory builds a component on resolution
type Factory func(Target) (interface{}, error)

// Loader builds a component once, the first time its key is needed
type Loader func(Target) (interface{}, error)

type Option func(*registration)

// Memoize caches the result of a factory after the first resolution
func Memoize() Option {
	return func(r *registration) { r.memoize = true }
}

type registration struct {
	key     string
	item    interface{}
	factory Factory
	memoize bool

	// imported registrations resolve from another container
	source    *Container
	sourceKey string

	mu       sync.Mutex
	resolved bool
	value    interface{}
}

func (reg *registration) resolve(c *Container, res *resolution) (interface{}, error) {
	if reg.source != nil {
		return reg.source.resolve(res, reg.sourceKey)
	}

	if reg.factory == nil {
		return reg.item, nil
	}

	if !reg.memoize {
		return reg.factory(scope{c, res})
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if reg.resolved {
		return reg.value, nil
	}

	v, err := reg.factory(scope{c, res})
	if err != nil {
		return nil, err
	}

	reg.value = v
	reg.resolved = true
	return v, nil
}

// Container maps keys to components
type Container struct {
	name   string
	logger *logrus.Entry

	mu      sync.RWMutex
	items   map[string]*registration
	loaders map[string]Loader

	providers     map[string]*providerEntry
	providerOrder []string
	startOrder    []string

	imports []*importEntry
	exports []string

	stubs map[string]interface{}

	// loadMu serializes lazy loading before finalize
	loadMu       sync.Mutex
	finalized    atomic.Bool
	finalizeOnce sync.Once
	finalizeErr  error
}

func New(name string) *Container {
	return &Container{
		name:      name,
		logger:    logrus.WithField("container", name),
		items:     map[string]*registration{},
		loaders:   map[string]Loader{},
		providers: map[string]*providerEntry{},
	}
}

func (c *Container) Name() string { return c.name }

func (c *Container) SetLogger(logger *logrus.Entry) {
	c.logger = logger.WithField("container", c.name)
}

func (c *Container) Finalized() bool { return c.finalized.Load() }

// Register adds a component, item is either a value or a Factory
func (c *Container) Register(key string, item interface{}, opts ...Option) error {
	if c.finalized.Load() {
		return errors.ErrorFrozen.Errorf("cannot register %s on finalized container %s", key, c.name)
	}

	reg := &registration{key: key}

	switch f := item.(type) {
	case Factory:
		reg.factory = f
	case func(Target) (interface{}, error):
		reg.factory = f
	default:
		reg.item = item
	}

	for _, opt := range opts {
		opt(reg)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registeredLocally(key) {
		return ErrorDuplicateKey.Errorf("%s is already registered on container %s", key, c.name)
	}
	if _, found := c.loaders[key]; found {
		return ErrorDuplicateKey.Errorf("%s already has a loader on container %s", key, c.name)
	}

	c.items[key] = reg
	c.logger.Tracef("registered %s", key)
	return nil
}

// MustRegister is Register for setup code that cannot recover
func (c *Container) MustRegister(key string, item interface{}, opts ...Option) {
	if err := c.Register(key, item, opts...); err != nil {
		panic(err)
	}
}

// AddLoader registers a component that is materialized on first use
func (c *Container) AddLoader(key string, loader Loader) error {
	if c.finalized.Load() {
		return errors.ErrorFrozen.Errorf("cannot add loader %s on finalized container %s", key, c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registeredLocally(key) {
		return ErrorDuplicateKey.Errorf("%s is already registered on container %s", key, c.name)
	}
	if _, found := c.loaders[key]; found {
		return ErrorDuplicateKey.Errorf("%s already has a loader on container %s", key, c.name)
	}

	// a link cached by an earlier lookup gives way to the local loader
	delete(c.items, key)
	c.loaders[key] = loader
	return nil
}

// registeredLocally reports a registration of this container, links to
// imported components do not count since local keys win over imports. The
// caller holds c.mu.
func (c *Container) registeredLocally(key string) bool {
	reg, found := c.items[key]
	return found && reg.source == nil
}

// Namespace registers components under ns
func (c *Container) Namespace(ns string, fn func(*Namespace)) {
	fn(&Namespace{container: c, prefix: ns})
}

// Resolve returns the component registered under key
func (c *Container) Resolve(key string) (interface{}, error) {
	return c.resolve(newResolution(), key)
}

// MustResolve panics when the component cannot be resolved
func (c *Container) MustResolve(key string) interface{} {
	v, err := c.Resolve(key)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports if key can be resolved, loading it when the container is lazy
func (c *Container) Has(key string) bool {
	if _, found := c.lookup(key); found {
		return true
	}

	if c.finalized.Load() {
		return false
	}

	_, err := c.Resolve(key)
	return err == nil
}

// Registered reports if key was registered or has a loader, without loading
// anything
func (c *Container) Registered(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, item := c.items[key]
	_, loader := c.loaders[key]
	return item || loader
}

// Keys lists the registered keys, lazy components show up once loaded
func (c *Container) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Finalize starts every provider, runs every loader and copies imports, once
func (c *Container) Finalize() error {
	c.finalizeOnce.Do(func() {
		c.finalizeErr = c.finalize()
	})
	return c.finalizeErr
}

func (c *Container) finalize() error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()

	res := newResolution()
	res.held[c] = true
	s := scope{c, res}

	c.mu.RLock()
	providers := append([]string(nil), c.providerOrder...)
	c.mu.RUnlock()

	for _, name := range providers {
		if err := c.startProvider(s, name); err != nil {
			return err
		}
	}

	for _, key := range c.loaderKeys() {
		if _, err := c.runLoader(s, key); err != nil {
			return err
		}
	}

	c.mu.RLock()
	imports := append([]*importEntry(nil), c.imports...)
	c.mu.RUnlock()

	for _, imp := range imports {
		if err := c.copyImport(imp); err != nil {
			return err
		}
	}

	c.finalized.Store(true)
	c.logger.Debugf("finalized with %d components", len(c.Keys()))
	return nil
}

func (c *Container) loaderKeys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.loaders))
	for k := range c.loaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Container) lookup(key string) (*registration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	reg, found := c.items[key]
	return reg, found
}

func (c *Container) resolve(res *resolution, key string) (interface{}, error) {
	if v, found := c.stubbed(key); found {
		return v, nil
	}

	id := c.name + ":" + key
	if res.visiting(id) {
		return nil, ErrorDependencyCycle.Errorf("%s", strings.Join(append(res.stack, id), " -> "))
	}

	res.push(id)
	defer res.pop()

	if !c.finalized.Load() && !res.held[c] {
		c.loadMu.Lock()
		res.held[c] = true

		defer func() {
			delete(res.held, c)
			c.loadMu.Unlock()
		}()
	}

	if reg, found := c.lookup(key); found {
		return reg.resolve(c, res)
	}

	if c.finalized.Load() {
		return nil, ErrorComponentNotFound.Errorf("%s is not registered on container %s", key, c.name)
	}

	return c.load(scope{c, res}, key)
}

// load runs the lazy lookup chain for a missing key
func (c *Container) load(s scope, key string) (interface{}, error) {
	c.mu.RLock()
	_, hasLoader := c.loaders[key]
	c.mu.RUnlock()

	if hasLoader {
		return c.runLoader(s, key)
	}

	if name := firstSegment(key); name != "" {
		if state := c.ProviderState(name); state == ProviderRegistered || state == ProviderPrepared {
			if err := c.startProvider(s, name); err != nil {
				return nil, err
			}

			if reg, found := c.lookup(key); found {
				return reg.resolve(c, s.res)
			}
		}
	}

	if v, found, err := c.resolveImport(s.res, key); found || err != nil {
		return v, err
	}

	return nil, ErrorComponentNotFound.Errorf("%s is not registered on container %s", key, c.name)
}

func (c *Container) runLoader(s scope, key string) (interface{}, error) {
	c.mu.Lock()
	loader, found := c.loaders[key]
	delete(c.loaders, key)
	c.mu.Unlock()

	if !found {
		if reg, ok := c.lookup(key); ok {
			return reg.resolve(c, s.res)
		}
		return nil, ErrorComponentNotFound.Errorf("%s is not registered on container %s", key, c.name)
	}

	v, err := loader(s)
	if err != nil {
		// keep the loader so a later lookup can retry
		c.mu.Lock()
		c.loaders[key] = loader
		c.mu.Unlock()
		return nil, err
	}

	c.mu.Lock()
	c.items[key] = &registration{key: key, item: v}
	c.mu.Unlock()

	c.logger.Tracef("loaded %s", key)
	return v, nil
}

func firstSegment(key string) string {
	if i := strings.Index(key, Separator); i > 0 {
		return key[:i]
	}
	return key
}

// Resolve returns the component under key as T
func Resolve[T any](r Resolver, key string) (T, error) {
	var zero T

	v, err := r.Resolve(key)
	if err != nil {
		return zero, err
	}

	ret, ok := v.(T)
	if !ok {
		return zero, ErrorComponentType.Errorf("%s is %T, not %T", key, v, zero)
	}
	return ret, nil
}

// MustResolve is Resolve for wiring code that cannot recover
func MustResolve[T any](r Resolver, key string) T {
	v, err := Resolve[T](r, key)
	if err != nil {
		panic(err)
	}
	return v
}

// Namespace registers components under a key prefix
type Namespace struct {
	container *Container
	prefix    string
}

func (ns *Namespace) Register(key string, item interface{}, opts ...Option) error {
	return ns.container.Register(ns.prefix+Separator+key, item, opts...)
}

func (ns *Namespace) Namespace(prefix string, fn func(*Namespace)) {
	fn(&Namespace{container: ns.container, prefix: ns.prefix + Separator + prefix})
}

// resolution tracks one top level Resolve call across nested lookups
type resolution struct {
	stack []string
	held  map[*Container]bool
}

func newResolution() *resolution {
	return &resolution{held: map[*Container]bool{}}
}

func (r *resolution) visiting(id string) bool {
	for _, s := range r.stack {
		if s == id {
			return true
		}
	}
	return false
}

func (r *resolution) push(id string) { r.stack = append(r.stack, id) }
func (r *resolution) pop()           { r.stack = r.stack[:len(r.stack)-1] }

type scope struct {
	c   *Container
	res *resolution
}

func (s scope) Resolve(key string) (interface{}, error) { return s.c.resolve(s.res, key) }
func (s scope) Name() string                            { return s.c.name }

func (s scope) Register(key string, item interface{}, opts ...Option) error {
	return s.c.Register(key, item, opts...)
}

var (
	_ Resolver = (*Container)(nil)
	_ Target   = scope{}
)
