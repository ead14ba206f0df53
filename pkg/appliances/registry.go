package appliances

import (
	"sort"
	"sync"
)

var (
	registryMu    sync.RWMutex
	registry      = make(map[string]Category)
	registryOrder []string
)

// Register registers a builtin appliance category.
func Register(c Category) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if err := c.validate(); err != nil {
		panic(err.Error())
	}
	if _, dup := registry[c.Key]; dup {
		panic("appliances: Register called twice for category " + c.Key)
	}
	registry[c.Key] = c
	registryOrder = append(registryOrder, c.Key)
}

// Get returns a registered category by key.
func Get(key string) (Category, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[key]
	return c, ok
}

// List returns a sorted list of registered category keys.
func List() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var keys []string
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// GetAll returns all registered categories in registration order, which is
// the order forms display them in.
func GetAll() []Category {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]Category, 0, len(registryOrder))
	for _, k := range registryOrder {
		out = append(out, registry[k])
	}
	return out
}
