// Package host exposes cargoplug operations to a host runtime: a named op
// registry, the sync/async dispatch contract, and the cargo_build op.
package host

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sofmeright/cargoplug/src/config"
)

// Response is an op's answer. Sync responses carry Data or Err; async
// responses carry only Err since no async work is ever scheduled.
type Response struct {
	Async bool
	Data  []byte
	Err   error
}

// Op is a host-callable operation. zeroCopy is an optional auxiliary buffer.
type Op func(ctx context.Context, isSync bool, data []byte, zeroCopy []byte) Response

// Factory builds an op from configuration.
type Factory func(cfg *config.Config) Op

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// Register adds an op factory to the global registry.
// Called from init() in each op file.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("host: duplicate op registration: %s", name))
	}
	registry[name] = factory
}

// Get returns a new instance of the named op.
func Get(name string, cfg *config.Config) (Op, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOp, name)
	}
	if cfg == nil {
		cfg = config.Defaults()
	}
	return factory(cfg), nil
}

// All returns sorted names of all registered ops.
func All() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
