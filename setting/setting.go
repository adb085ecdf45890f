// Package setting holds cascading configuration values.
//
// A Value either carries its own value, or delegates to the Value it was
// inherited from, or falls back to its default. Values share a Lock with the
// configuration object that owns them so the whole object can be frozen at once.
package setting

import (
	"sync"
	"sync/atomic"

	"github.com/slimloans/hanami/errors"
)

// Lock is the freeze flag shared by every Value of a configuration object
type Lock struct {
	name   string
	frozen atomic.Bool
}

func NewLock(name string) *Lock {
	return &Lock{name: name}
}

func (l *Lock) Name() string { return l.name }

// Freeze marks every value guarded by the lock as read only
func (l *Lock) Freeze() { l.frozen.Store(true) }

func (l *Lock) Frozen() bool { return l != nil && l.frozen.Load() }

// Value is a single setting
type Value[T any] struct {
	name   string
	lock   *Lock
	parent *Value[T]
	def    T

	mu  sync.RWMutex
	v   T
	set bool
}

// New creates a root value with a default
func New[T any](lock *Lock, name string, def T) *Value[T] {
	return &Value[T]{name: name, lock: lock, def: clone(def)}
}

// Inherit returns a child value guarded by lock that reads through to v until set
func (v *Value[T]) Inherit(lock *Lock) *Value[T] {
	return &Value[T]{name: v.name, lock: lock, parent: v, def: v.def}
}

func (v *Value[T]) Name() string { return v.name }

// Get returns a copy of the effective value, maps and slices included
func (v *Value[T]) Get() T {
	v.mu.RLock()
	if v.set {
		defer v.mu.RUnlock()
		return clone(v.v)
	}
	v.mu.RUnlock()

	if v.parent != nil {
		return v.parent.Get()
	}
	return clone(v.def)
}

// Set assigns a value, failing once the owning configuration is finalized
func (v *Value[T]) Set(val T) error {
	if v.lock.Frozen() {
		return errors.ErrorFrozen.Errorf("cannot set %s on finalized %s config", v.name, v.lock.Name())
	}

	v.mu.Lock()
	v.v = clone(val)
	v.set = true
	v.mu.Unlock()

	return nil
}

// MustSet is Set for configuration blocks that cannot fail
func (v *Value[T]) MustSet(val T) {
	if err := v.Set(val); err != nil {
		panic(err)
	}
}

// IsSet reports if the value was assigned on this level
func (v *Value[T]) IsSet() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.set
}

// Defined reports if the value was assigned on this level or any level above
func (v *Value[T]) Defined() bool {
	for cur := v; cur != nil; cur = cur.parent {
		if cur.IsSet() {
			return true
		}
	}
	return false
}

// Reset drops the own value so reads cascade again
func (v *Value[T]) Reset() error {
	if v.lock.Frozen() {
		return errors.ErrorFrozen.Errorf("cannot reset %s on finalized %s config", v.name, v.lock.Name())
	}

	v.mu.Lock()
	var zero T
	v.v = zero
	v.set = false
	v.mu.Unlock()

	return nil
}
