package container

import "github.com/slimloans/hanami/errors"

type ProviderState string

const (
	ProviderUnregistered ProviderState = "unregistered"
	ProviderRegistered   ProviderState = "registered"
	ProviderPrepared     ProviderState = "prepared"
	ProviderStarted      ProviderState = "started"
	ProviderStopped      ProviderState = "stopped"
)

// Provider sets up the components living under its name (the "db" provider
// registers "db.gateway"). Prepare and Stop are optional, see ProviderPrepare
// and ProviderStop.
type Provider interface {
	Name() string
	Start(Target) error
}

type ProviderPrepare interface {
	Prepare(Target) error
}

type ProviderStop interface {
	Stop(Target) error
}

type providerEntry struct {
	provider Provider
	state    ProviderState
}

// RegisterProvider adds a provider, it starts on Finalize or the first lookup
// of a key in its namespace
func (c *Container) RegisterProvider(p Provider) error {
	if c.finalized.Load() {
		return errors.ErrorFrozen.Errorf("cannot register provider %s on finalized container %s", p.Name(), c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, found := c.providers[p.Name()]; found {
		return ErrorDuplicateKey.Errorf("provider %s is already registered on container %s", p.Name(), c.name)
	}

	c.providers[p.Name()] = &providerEntry{provider: p, state: ProviderRegistered}
	c.providerOrder = append(c.providerOrder, p.Name())
	return nil
}

// Providers lists provider names in registration order
func (c *Container) Providers() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return append([]string(nil), c.providerOrder...)
}

func (c *Container) provider(name string) *providerEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.providers[name]
}

func (c *Container) ProviderState(name string) ProviderState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if entry, found := c.providers[name]; found {
		return entry.state
	}
	return ProviderUnregistered
}

func (c *Container) setProviderState(name string, state ProviderState) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.providers[name].state = state

	switch state {
	case ProviderStarted:
		c.startOrder = append(c.startOrder, name)
	case ProviderStopped:
		for i, n := range c.startOrder {
			if n == name {
				c.startOrder = append(c.startOrder[:i], c.startOrder[i+1:]...)
				break
			}
		}
	}
}

// Prepare runs the provider's prepare step
func (c *Container) Prepare(name string) error {
	return c.withLoad(func(s scope) error { return c.prepareProvider(s, name) })
}

// Start prepares when needed and starts the provider
func (c *Container) Start(name string) error {
	return c.withLoad(func(s scope) error { return c.startProvider(s, name) })
}

// Stop stops a started provider
func (c *Container) Stop(name string) error {
	return c.withLoad(func(s scope) error { return c.stopProvider(s, name) })
}

// Shutdown stops every started provider in reverse start order
func (c *Container) Shutdown() error {
	return c.withLoad(func(s scope) error {
		c.mu.RLock()
		started := append([]string(nil), c.startOrder...)
		c.mu.RUnlock()

		var errs []error
		for i := len(started) - 1; i >= 0; i-- {
			if err := c.stopProvider(s, started[i]); err != nil {
				errs = append(errs, err)
			}
		}

		return errors.Join(errs...)
	})
}

func (c *Container) withLoad(fn func(scope) error) error {
	res := newResolution()

	if !c.finalized.Load() {
		c.loadMu.Lock()
		defer c.loadMu.Unlock()
	}
	res.held[c] = true

	return fn(scope{c, res})
}

func (c *Container) prepareProvider(s scope, name string) error {
	entry := c.provider(name)
	if entry == nil {
		return ErrorProviderNotFound.Errorf("provider %s is not registered on container %s", name, c.name)
	}

	if state := c.ProviderState(name); state != ProviderRegistered {
		return nil
	}

	if p, ok := entry.provider.(ProviderPrepare); ok {
		c.logger.Debugf("preparing provider %s", name)

		if err := p.Prepare(s); err != nil {
			return errors.Wrap(ErrorProviderFailed, err)
		}
	}

	c.setProviderState(name, ProviderPrepared)
	return nil
}

func (c *Container) startProvider(s scope, name string) error {
	if err := c.prepareProvider(s, name); err != nil {
		return err
	}

	if state := c.ProviderState(name); state != ProviderPrepared {
		return nil
	}

	c.logger.Debugf("starting provider %s", name)

	if err := c.provider(name).provider.Start(s); err != nil {
		return errors.Wrap(ErrorProviderFailed, err)
	}

	c.setProviderState(name, ProviderStarted)
	return nil
}

func (c *Container) stopProvider(s scope, name string) error {
	entry := c.provider(name)
	if entry == nil {
		return ErrorProviderNotFound.Errorf("provider %s is not registered on container %s", name, c.name)
	}

	if c.ProviderState(name) != ProviderStarted {
		return nil
	}

	c.logger.Debugf("stopping provider %s", name)

	if p, ok := entry.provider.(ProviderStop); ok {
		if err := p.Stop(s); err != nil {
			return errors.Wrap(ErrorProviderFailed, err)
		}
	}

	c.setProviderState(name, ProviderStopped)
	return nil
}

// ProviderFunc builds a Provider out of plain functions
type ProviderFunc struct {
	name    string
	prepare func(Target) error
	start   func(Target) error
	stop    func(Target) error
}

func NewProvider(name string, start func(Target) error) *ProviderFunc {
	return &ProviderFunc{name: name, start: start}
}

func (p *ProviderFunc) OnPrepare(fn func(Target) error) *ProviderFunc {
	p.prepare = fn
	return p
}

func (p *ProviderFunc) OnStop(fn func(Target) error) *ProviderFunc {
	p.stop = fn
	return p
}

func (p *ProviderFunc) Name() string { return p.name }

func (p *ProviderFunc) Prepare(t Target) error {
	if p.prepare == nil {
		return nil
	}
	return p.prepare(t)
}

func (p *ProviderFunc) Start(t Target) error {
	if p.start == nil {
		return nil
	}
	return p.start(t)
}

func (p *ProviderFunc) Stop(t Target) error {
	if p.stop == nil {
		return nil
	}
	return p.stop(t)
}

var (
	_ Provider        = (*ProviderFunc)(nil)
	_ ProviderPrepare = (*ProviderFunc)(nil)
	_ ProviderStop    = (*ProviderFunc)(nil)
)
