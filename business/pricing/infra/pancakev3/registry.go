package pancakev3

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/tokenprice/internal/asset"
)

// KnownPool pins a pool for a token pair, bypassing factory lookup.
type KnownPool struct {
	TokenA common.Address
	TokenB common.Address
	Pool   common.Address
}

type pairKey struct {
	lo, hi common.Address
}

func keyOf(a, b common.Address) pairKey {
	lo, hi := asset.SortAddresses(a, b)
	return pairKey{lo: lo, hi: hi}
}

// PoolRegistry maps unordered token pairs to pools. It is immutable after
// construction and safe for concurrent use.
type PoolRegistry struct {
	pools map[pairKey]common.Address
}

// NewPoolRegistry builds a registry. Later entries for the same pair win.
func NewPoolRegistry(pools ...KnownPool) *PoolRegistry {
	r := &PoolRegistry{pools: make(map[pairKey]common.Address, len(pools))}
	for _, p := range pools {
		r.pools[keyOf(p.TokenA, p.TokenB)] = p.Pool
	}
	return r
}

// Lookup returns the pinned pool for a and b in either order.
func (r *PoolRegistry) Lookup(a, b common.Address) (common.Address, bool) {
	if r == nil {
		return common.Address{}, false
	}
	pool, ok := r.pools[keyOf(a, b)]
	return pool, ok
}
