package session

import "sync"

// Flash holds messages for the current request and sets ones for the next
type Flash struct {
	mu       sync.RWMutex
	current  map[string]interface{}
	upcoming map[string]interface{}
}

func newFlash(current map[string]interface{}) *Flash {
	c := make(map[string]interface{}, len(current))
	for k, v := range current {
		c[k] = v
	}
	return &Flash{current: c, upcoming: map[string]interface{}{}}
}

// Get reads a message visible in this request
func (f *Flash) Get(key string) (interface{}, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	v, ok := f.current[key]
	return v, ok
}

// Set stores a message for the next request
func (f *Flash) Set(key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upcoming[key] = value
}

// Now stores a message only visible in this request
func (f *Flash) Now(key string, value interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.current[key] = value
}

// Keep carries current messages (or only key when given) over to the next request
func (f *Flash) Keep(keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(keys) == 0 {
		for k, v := range f.current {
			if _, ok := f.upcoming[k]; !ok {
				f.upcoming[k] = v
			}
		}
		return
	}

	for _, k := range keys {
		if v, ok := f.current[k]; ok {
			f.upcoming[k] = v
		}
	}
}

// Discard drops messages set for the next request
func (f *Flash) Discard() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upcoming = map[string]interface{}{}
}

func (f *Flash) Empty() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return len(f.current) == 0
}

func (f *Flash) next() map[string]interface{} {
	f.mu.RLock()
	defer f.mu.RUnlock()

	ret := make(map[string]interface{}, len(f.upcoming))
	for k, v := range f.upcoming {
		ret[k] = v
	}
	return ret
}
