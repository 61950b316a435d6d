package asset

import "github.com/ethereum/go-ethereum/common"

// Chain IDs
const (
	ChainIDEthereum   = 1
	ChainIDBSC        = 56
	ChainIDBSCTestnet = 97
)

// Well-known token addresses on BNB Smart Chain
var (
	// Wrapped native
	AddrWBNB = common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c")

	// Stablecoins
	AddrUSDT = common.HexToAddress("0x55d398326f99059fF775485246999027B3197955")
	AddrBUSD = common.HexToAddress("0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56")
	AddrUSDC = common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d")

	// Majors
	AddrCAKE = common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82")
	AddrETH  = common.HexToAddress("0x2170Ed0880ac9A755fd29B2688956BD959F933F8")
	AddrBTCB = common.HexToAddress("0x7130d2A12B9BCbFAe4f2634d864A1Ee1Ce3Ead9c")
)

// Well-known Assets (pre-created instances)
var (
	WBNB = NewAsset(AddrWBNB, "WBNB", "Wrapped BNB", 18)
	USDT = NewAsset(AddrUSDT, "USDT", "Tether USD", 18)
	BUSD = NewAsset(AddrBUSD, "BUSD", "BUSD Token", 18)
	USDC = NewAsset(AddrUSDC, "USDC", "USD Coin", 18)
	CAKE = NewAsset(AddrCAKE, "Cake", "PancakeSwap Token", 18)
	ETH  = NewAsset(AddrETH, "ETH", "Ethereum Token", 18)
	BTCB = NewAsset(AddrBTCB, "BTCB", "BTCB Token", 18)
)

// DefaultRegistry returns a registry pre-populated with well-known assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(WBNB)
	r.Register(USDT)
	r.Register(BUSD)
	r.Register(USDC)
	r.Register(CAKE)
	r.Register(ETH)
	r.Register(BTCB)

	return r
}
