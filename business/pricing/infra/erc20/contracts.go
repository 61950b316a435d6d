package erc20

import "github.com/fd1az/tokenprice/internal/chain"

// ERC20ABI covers the metadata getters.
const ERC20ABI = `[
	{"inputs": [], "name": "symbol", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "name", "outputs": [{"internalType": "string", "name": "", "type": "string"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

// LegacyERC20ABI is for early tokens (MKR-style) that return bytes32 from
// symbol and name.
const LegacyERC20ABI = `[
	{"inputs": [], "name": "symbol", "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}], "stateMutability": "view", "type": "function"},
	{"inputs": [], "name": "name", "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

var (
	erc20ABI  = chain.MustParseABI(ERC20ABI)
	legacyABI = chain.MustParseABI(LegacyERC20ABI)
)
