package dexscreener

// tokensResponse is the body of GET /latest/dex/tokens/{address}.
type tokensResponse struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pairs         []pairInfo `json:"pairs"`
}

// pairInfo is one trading pair. Price fields are decimal strings and may be
// absent.
type pairInfo struct {
	ChainID     string     `json:"chainId"`
	DexID       string     `json:"dexId"`
	PairAddress string     `json:"pairAddress"`
	BaseToken   tokenInfo  `json:"baseToken"`
	QuoteToken  tokenInfo  `json:"quoteToken"`
	PriceNative *string    `json:"priceNative"`
	PriceUSD    *string    `json:"priceUsd"`
	Liquidity   *liquidity `json:"liquidity"`
}

type tokenInfo struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
}

type liquidity struct {
	USD   *float64 `json:"usd"`
	Base  *float64 `json:"base"`
	Quote *float64 `json:"quote"`
}

// liquidityUSD returns the USD liquidity, zero when absent.
func (p pairInfo) liquidityUSD() float64 {
	if p.Liquidity == nil || p.Liquidity.USD == nil {
		return 0
	}
	return *p.Liquidity.USD
}
