package hanami

import (
	"strings"
	"sync"
)

// SliceRegistrar holds the slices nested directly in a slice. Slices are
// built on first access and skipped when the app configuration filters them
// out (see config.Config.Slices).
type SliceRegistrar struct {
	parent *Slice

	mu      sync.Mutex
	order   []string
	options map[string]SliceOptions
	slices  map[string]*Slice
}

func newSliceRegistrar(parent *Slice) *SliceRegistrar {
	return &SliceRegistrar{
		parent:  parent,
		options: map[string]SliceOptions{},
		slices:  map[string]*Slice{},
	}
}

// Register adds a nested slice, names are lower case identifiers
func (r *SliceRegistrar) Register(name string, options SliceOptions) error {
	if !validSliceName(name) {
		return ErrorInvalidSliceName.Errorf("%q is not a valid slice name", name)
	}

	if state := r.parent.State(); state != SliceStateNew {
		return ErrorSliceState.Errorf("cannot register slice %s on %s %s", name, state, r.parent)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, found := r.options[name]; found {
		return ErrorDuplicateSlice.Errorf("slice %s is already registered", r.parent.name.Child(name))
	}

	r.order = append(r.order, name)
	r.options[name] = options
	return nil
}

// Get returns the slice at the dotted path, "admin.billing" looks up billing
// nested in admin
func (r *SliceRegistrar) Get(path string) (*Slice, error) {
	name, rest, nested := strings.Cut(path, ".")

	s, err := r.get(name)
	if err != nil {
		return nil, err
	}

	if nested {
		return s.slices.Get(rest)
	}
	return s, nil
}

func (r *SliceRegistrar) get(name string) (*Slice, error) {
	full := r.parent.name.Child(name)

	if !r.enabled(full) {
		return nil, ErrorSliceNotFound.Errorf("slice %s is not loaded", full)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, found := r.slices[name]; found {
		return s, nil
	}

	options, found := r.options[name]
	if !found {
		return nil, ErrorSliceNotFound.Errorf("slice %s is not registered", full)
	}

	s := newSlice(r.parent.app, r.parent, full, options)
	r.slices[name] = s
	return s, nil
}

func (r *SliceRegistrar) enabled(name SliceName) bool {
	return r.parent.app.config.SliceFilter(name.String())
}

// Has reports if the slice at the dotted path is registered and loaded
func (r *SliceRegistrar) Has(path string) bool {
	_, err := r.Get(path)
	return err == nil
}

// Keys lists the names of the loaded slices in registration order
func (r *SliceRegistrar) Keys() []string {
	r.mu.Lock()
	order := append([]string(nil), r.order...)
	r.mu.Unlock()

	keys := make([]string, 0, len(order))
	for _, name := range order {
		if r.enabled(r.parent.name.Child(name)) {
			keys = append(keys, name)
		}
	}
	return keys
}

// Each calls fn with every loaded slice in registration order, stopping at
// the first error
func (r *SliceRegistrar) Each(fn func(*Slice) error) error {
	for _, name := range r.Keys() {
		s, err := r.get(name)
		if err != nil {
			return err
		}

		if err := fn(s); err != nil {
			return err
		}
	}
	return nil
}

// WithNested is Each walking the nested slices depth first
func (r *SliceRegistrar) WithNested(fn func(*Slice) error) error {
	return r.Each(func(s *Slice) error {
		if err := fn(s); err != nil {
			return err
		}
		return s.slices.WithNested(fn)
	})
}

// loaded returns the slices built so far in registration order
func (r *SliceRegistrar) loaded() []*Slice {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make([]*Slice, 0, len(r.slices))
	for _, name := range r.order {
		if s, found := r.slices[name]; found {
			ret = append(ret, s)
		}
	}
	return ret
}
