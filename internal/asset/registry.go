package asset

import (
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry is a thread-safe registry of known tokens keyed by address.
type Registry struct {
	byAddress map[common.Address]*Asset
	bySymbol  map[string]*Asset
	mu        sync.RWMutex
}

// NewRegistry creates a new empty asset registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[common.Address]*Asset),
		bySymbol:  make(map[string]*Asset),
	}
}

// Register adds an asset to the registry.
// Panics if an asset with the same address is already registered.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byAddress[a.Address()]; exists {
		panic(fmt.Sprintf("asset: %s already registered", a.Address().Hex()))
	}

	r.byAddress[a.Address()] = a
	r.bySymbol[strings.ToUpper(a.Symbol())] = a
}

// Upsert adds or replaces the asset registered at a's address.
func (r *Registry) Upsert(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.byAddress[a.Address()]; ok {
		delete(r.bySymbol, strings.ToUpper(old.Symbol()))
	}
	r.byAddress[a.Address()] = a
	r.bySymbol[strings.ToUpper(a.Symbol())] = a
}

// Get retrieves an asset by its address.
func (r *Registry) Get(addr common.Address) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byAddress[addr]
	return a, ok
}

// GetBySymbol retrieves an asset by symbol, case-insensitively.
func (r *Registry) GetBySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[strings.ToUpper(symbol)]
	return a, ok
}

// SymbolOf returns the registered symbol for addr, or the checksummed
// address when the token is not registered.
func (r *Registry) SymbolOf(addr common.Address) string {
	if a, ok := r.Get(addr); ok {
		return a.Symbol()
	}
	return addr.Hex()
}

// All returns all registered assets.
func (r *Registry) All() []*Asset {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Asset, 0, len(r.byAddress))
	for _, a := range r.byAddress {
		result = append(result, a)
	}
	return result
}

// Count returns the number of registered assets.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byAddress)
}

// Has returns true if an asset with the given address is registered.
func (r *Registry) Has(addr common.Address) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byAddress[addr]
	return ok
}
