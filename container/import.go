package container

import (
	"strings"

	"github.com/slimloans/hanami/errors"
	"github.com/slimloans/hanami/utils"
)

type importEntry struct {
	namespace string
	from      *Container
	keys      []string
}

// sourceKey maps a local key onto the key in the source container
func (imp *importEntry) sourceKey(key string) (string, bool) {
	src := key

	if imp.namespace != "" {
		if !strings.HasPrefix(key, imp.namespace+Separator) {
			return "", false
		}
		src = key[len(imp.namespace)+len(Separator):]
	}

	if len(imp.keys) > 0 && !utils.StringSliceContains(imp.keys, src) {
		return "", false
	}

	return src, imp.from.exported(src)
}

func (imp *importEntry) localKey(src string) string {
	if imp.namespace == "" {
		return src
	}
	return imp.namespace + Separator + src
}

// Import makes components of from available under ns, every exported key
// when keys is empty
func (c *Container) Import(ns string, from *Container, keys ...string) error {
	if c.finalized.Load() {
		return errors.ErrorFrozen.Errorf("cannot import into finalized container %s", c.name)
	}

	if from == c || from.importsFrom(c) {
		return ErrorImportCycle.Errorf("importing %s into %s creates a cycle", from.name, c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.imports = append(c.imports, &importEntry{namespace: ns, from: from, keys: keys})
	return nil
}

// Export limits what other containers may import, everything is exported
// until Export is called
func (c *Container) Export(keys ...string) error {
	if c.finalized.Load() {
		return errors.ErrorFrozen.Errorf("cannot change exports of finalized container %s", c.name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.exports == nil {
		c.exports = []string{}
	}
	c.exports = append(c.exports, keys...)
	return nil
}

func (c *Container) exported(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.exports == nil || utils.StringSliceContains(c.exports, key)
}

func (c *Container) exportedKeys() []string {
	c.mu.RLock()
	exports := c.exports
	c.mu.RUnlock()

	if exports == nil {
		return c.Keys()
	}
	return append([]string(nil), exports...)
}

func (c *Container) importsFrom(target *Container) bool {
	c.mu.RLock()
	imports := append([]*importEntry(nil), c.imports...)
	c.mu.RUnlock()

	for _, imp := range imports {
		if imp.from == target || imp.from.importsFrom(target) {
			return true
		}
	}
	return false
}

func (c *Container) resolveImport(res *resolution, key string) (interface{}, bool, error) {
	c.mu.RLock()
	imports := append([]*importEntry(nil), c.imports...)
	c.mu.RUnlock()

	var notFound error

	for _, imp := range imports {
		src, ok := imp.sourceKey(key)
		if !ok {
			continue
		}

		v, err := imp.from.resolve(res, src)
		if err != nil {
			if errors.Is(err, ErrorComponentNotFound) {
				notFound = err
				continue
			}
			return nil, true, err
		}

		c.mu.Lock()
		if _, exists := c.items[key]; !exists {
			c.items[key] = &registration{key: key, source: imp.from, sourceKey: src}
		}
		c.mu.Unlock()

		return v, true, nil
	}

	if notFound != nil {
		return nil, true, notFound
	}
	return nil, false, nil
}

// copyImport finalizes the source and links its keys, local keys win
func (c *Container) copyImport(imp *importEntry) error {
	if err := imp.from.Finalize(); err != nil {
		return err
	}

	keys := imp.keys
	if len(keys) == 0 {
		keys = imp.from.exportedKeys()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, src := range keys {
		if !imp.from.exported(src) {
			continue
		}

		if _, found := imp.from.lookup(src); !found {
			return ErrorComponentNotFound.Errorf("cannot import %s from %s into %s", src, imp.from.name, c.name)
		}

		local := imp.localKey(src)
		if _, exists := c.items[local]; exists {
			continue
		}

		c.items[local] = &registration{key: local, source: imp.from, sourceKey: src}
	}

	return nil
}
