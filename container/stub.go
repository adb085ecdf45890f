package container

// EnableStubs allows replacing components in tests
func (c *Container) EnableStubs() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stubs == nil {
		c.stubs = map[string]interface{}{}
	}
}

// Stub makes key resolve to value until Unstub, also on finalized containers
func (c *Container) Stub(key string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stubs == nil {
		return ErrorStubsDisabled.Errorf("call EnableStubs on container %s before stubbing %s", c.name, key)
	}

	c.stubs[key] = value
	return nil
}

// Unstub removes the given stubs, every stub when called without keys
func (c *Container) Unstub(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.stubs == nil {
		return
	}

	if len(keys) == 0 {
		c.stubs = map[string]interface{}{}
		return
	}

	for _, k := range keys {
		delete(c.stubs, k)
	}
}

func (c *Container) stubbed(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.stubs == nil {
		return nil, false
	}

	v, found := c.stubs[key]
	return v, found
}
