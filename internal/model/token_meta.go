package model

// TokenMeta captures display metadata for a mint. The core never applies
// decimals itself; callers use it to render amounts.
type TokenMeta struct {
	Mint     Pubkey `json:"mint"`
	Decimals uint8  `json:"decimals"`
	Symbol   string `json:"symbol"`
}
