package domain

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Path is an ordered token route, input first and quote last.
type Path []common.Address

// NewPath builds a path from hops.
func NewPath(hops ...common.Address) Path {
	p := make(Path, len(hops))
	copy(p, hops)
	return p
}

// Input returns the first hop.
func (p Path) Input() common.Address {
	if len(p) == 0 {
		return common.Address{}
	}
	return p[0]
}

// Output returns the last hop.
func (p Path) Output() common.Address {
	if len(p) == 0 {
		return common.Address{}
	}
	return p[len(p)-1]
}

// Valid reports whether p has at least two hops.
func (p Path) Valid() bool {
	return len(p) >= 2
}

// Symbols maps every hop through symbolOf.
func (p Path) Symbols(symbolOf func(common.Address) string) []string {
	out := make([]string, len(p))
	for i, addr := range p {
		out[i] = symbolOf(addr)
	}
	return out
}

// String renders the route as "0xA -> 0xB".
func (p Path) String() string {
	hops := make([]string, len(p))
	for i, addr := range p {
		hops[i] = addr.Hex()
	}
	return strings.Join(hops, " -> ")
}
