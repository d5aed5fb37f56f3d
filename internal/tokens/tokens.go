package tokens

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// TokenInfo describes a fungible asset from the static token list
type TokenInfo struct {
	ChainID  int    `json:"chainId"`
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
	LogoURI  string `json:"logoURI,omitempty"`
}

// Mint returns the token's mint as a solana.PublicKey
func (t TokenInfo) Mint() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(t.Address)
}

// MainnetChainID is the chain id used by Solana token lists for mainnet-beta
const MainnetChainID = 101

// Registry is a read-only lookup over the static token list.
// Construct once at startup; safe for concurrent reads.
type Registry struct {
	byMint   map[solana.PublicKey]TokenInfo
	bySymbol map[string]TokenInfo
}

// NewRegistry builds a registry from the given tokens
func NewRegistry(list []TokenInfo) *Registry {
	r := &Registry{
		byMint:   make(map[solana.PublicKey]TokenInfo, len(list)),
		bySymbol: make(map[string]TokenInfo, len(list)),
	}
	for _, t := range list {
		r.byMint[NormalizeMint(t.Mint())] = t
		r.bySymbol[t.Symbol] = t
	}
	return r
}

// NewRegistryFromFile loads a token-list JSON file
func NewRegistryFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token list: %w", err)
	}

	var list []TokenInfo
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse token list: %w", err)
	}

	return NewRegistry(list), nil
}

// ByMint looks up a token by its mint address. Native SOL aliases to wSOL.
func (r *Registry) ByMint(mint solana.PublicKey) (TokenInfo, error) {
	t, ok := r.byMint[NormalizeMint(mint)]
	if !ok {
		return TokenInfo{}, fmt.Errorf("unknown mint: %s", mint)
	}
	return t, nil
}

// BySymbol looks up a token by its list symbol
func (r *Registry) BySymbol(symbol string) (TokenInfo, error) {
	t, ok := r.bySymbol[symbol]
	if !ok {
		return TokenInfo{}, fmt.Errorf("unknown token symbol: %s", symbol)
	}
	return t, nil
}

// All returns every registered token
func (r *Registry) All() []TokenInfo {
	out := make([]TokenInfo, 0, len(r.byMint))
	for _, t := range r.byMint {
		out = append(out, t)
	}
	return out
}

// Count returns the number of registered tokens
func (r *Registry) Count() int {
	return len(r.byMint)
}

// DefaultList covers the assets the aggregator trades out of the box.
// Deployments with a broader list load it from a file instead.
func DefaultList() []TokenInfo {
	return []TokenInfo{
		{ChainID: MainnetChainID, Address: "So11111111111111111111111111111111111111112", Name: "Wrapped SOL", Symbol: "SOL", Decimals: 9},
		{ChainID: MainnetChainID, Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", Name: "USD Coin", Symbol: "USDC", Decimals: 6},
		{ChainID: MainnetChainID, Address: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", Name: "USDT", Symbol: "USDT", Decimals: 6},
		{ChainID: MainnetChainID, Address: "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", Name: "Raydium", Symbol: "RAY", Decimals: 6},
		{ChainID: MainnetChainID, Address: "SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt", Name: "Serum", Symbol: "SRM", Decimals: 6},
		{ChainID: MainnetChainID, Address: "orcaEKTdK7LKz57vaAYr9QeNsVEPfiu6QeMU1kektZE", Name: "Orca", Symbol: "ORCA", Decimals: 6},
		{ChainID: MainnetChainID, Address: "mSoLzYCxHdYgdzU16g5QSh3i5K3z3KZK7ytfqcJm7So", Name: "Marinade staked SOL", Symbol: "mSOL", Decimals: 9},
	}
}
