package pancakev2

import "github.com/fd1az/tokenprice/internal/chain"

// RouterABI is the read-only subset of the PancakeSwap v2 router.
// getAmountsOut reverts when any hop lacks a pair or has empty reserves.
const RouterABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "address[]", "name": "path", "type": "address[]"}
		],
		"name": "getAmountsOut",
		"outputs": [
			{"internalType": "uint256[]", "name": "amounts", "type": "uint256[]"}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

var routerABI = chain.MustParseABI(RouterABI)
