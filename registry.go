package surrealengine

import (
	"fmt"
	"sync"
)

// DefaultConnection is the registry name used by RegisterDefault and
// Default.
const DefaultConnection = "default"

// registry holds named engines so models and application code can share
// connections without threading them through every call site.
var registry = struct {
	mu      sync.RWMutex
	engines map[string]*Engine
}{engines: make(map[string]*Engine)}

// RegisterConnection stores an engine under a name, replacing any previous engine
// registered under the same name.
func RegisterConnection(name string, e *Engine) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.engines[name] = e
}

// RegisterDefault stores an engine under the default name.
func RegisterDefault(e *Engine) {
	RegisterConnection(DefaultConnection, e)
}

// GetConnection returns the engine registered under name.
func GetConnection(name string) (*Engine, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	e, ok := registry.engines[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoConnection, name)
	}
	return e, nil
}

// Default returns the engine registered under the default name.
func Default() (*Engine, error) {
	return GetConnection(DefaultConnection)
}

// UnregisterConnection removes a named engine from the registry. It does not close
// the engine.
func UnregisterConnection(name string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.engines, name)
}
