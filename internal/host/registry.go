package host

import (
	"sort"
	"sync"
)

// DriverRegistry keeps track of drivers by name for inspection surfaces
type DriverRegistry struct {
	drivers map[string]*Driver
	mutex   sync.RWMutex
}

// NewDriverRegistry creates a new driver registry
func NewDriverRegistry() *DriverRegistry {
	return &DriverRegistry{
		drivers: make(map[string]*Driver),
	}
}

// Register adds a driver to the registry
func (r *DriverRegistry) Register(d *Driver) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.drivers[d.Name()]; exists {
		return false
	}

	r.drivers[d.Name()] = d
	return true
}

// Unregister removes a driver from the registry
func (r *DriverRegistry) Unregister(name string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.drivers[name]; !exists {
		return false
	}

	delete(r.drivers, name)
	return true
}

// Get retrieves a driver by name
func (r *DriverRegistry) Get(name string) (*Driver, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	d, exists := r.drivers[name]
	return d, exists
}

// Names returns the registered driver names in sorted order
func (r *DriverRegistry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All retrieves all registered drivers
func (r *DriverRegistry) All() []*Driver {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	out := make([]*Driver, 0, len(r.drivers))
	for _, name := range r.namesLocked() {
		out = append(out, r.drivers[name])
	}
	return out
}

func (r *DriverRegistry) namesLocked() []string {
	names := make([]string, 0, len(r.drivers))
	for name := range r.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
