package provider

import (
	"fmt"
	"sort"
	"sync"
)

var (
	models  = make(map[string]Model)
	aliases = make(map[string]string)
	mu      sync.RWMutex
)

// Register adds a model to the registry under its ID and the given aliases.
// This is typically called from a model package's init() function.
// Registering a name that is already taken overwrites it.
func Register(m Model, alias ...string) {
	mu.Lock()
	defer mu.Unlock()

	id := m.ModelID()
	models[id] = m
	for _, a := range alias {
		aliases[a] = id
	}
}

// Get retrieves a model by ID or alias.
// Returns an error if no model is registered under that name.
func Get(name string) (Model, error) {
	mu.RLock()
	m, ok := lookup(name)
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown model: %q (available: %v)", name, Available())
	}

	return m, nil
}

// Available returns the IDs of all registered models, sorted.
func Available() []string {
	mu.RLock()
	defer mu.RUnlock()

	ids := make([]string, 0, len(models))
	for id := range models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Aliases returns the aliases that resolve to the given model ID, sorted.
func Aliases(id string) []string {
	mu.RLock()
	defer mu.RUnlock()

	var names []string
	for a, target := range aliases {
		if target == id {
			names = append(names, a)
		}
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a model ID or alias is registered.
func IsRegistered(name string) bool {
	mu.RLock()
	defer mu.RUnlock()
	_, ok := lookup(name)
	return ok
}

// lookup must be called with mu held.
func lookup(name string) (Model, bool) {
	if m, ok := models[name]; ok {
		return m, true
	}
	if id, ok := aliases[name]; ok {
		m, ok := models[id]
		return m, ok
	}
	return nil, false
}
