package amm

import (
	"github.com/voinetwork/swaprouter/domain"
)

// Registry dispatches a PoolConfig's Dex to its concrete adapter, the same
// tagged-variant pattern used elsewhere in this codebase for pool-type dispatch, generalized
// here to two DEX implementations instead of Osmosis's pool-model zoo.
type Registry struct {
	adapters map[domain.Dex]domain.AMMAdapter
}

// NewRegistry builds a Registry from an explicit dex->adapter map so callers
// (cmd/server) own adapter construction and its chain-gateway dependency.
func NewRegistry(adapters map[domain.Dex]domain.AMMAdapter) *Registry {
	return &Registry{adapters: adapters}
}

// For returns the adapter for pool.Dex, or UnsupportedDexError.
func (r *Registry) For(dex domain.Dex) (domain.AMMAdapter, error) {
	a, ok := r.adapters[dex]
	if !ok {
		return nil, domain.UnsupportedDexError{Dex: dex}
	}
	return a, nil
}
