package registry

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// ProtocolDescriptor identifies a swap venue by its on-chain program
type ProtocolDescriptor struct {
	Address solana.PublicKey
	Name    string
}

// Known swap program ids
var (
	OrcaProgramID    = solana.MustPublicKeyFromBase58("9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP")
	RaydiumProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
	SaberProgramID   = solana.MustPublicKeyFromBase58("SSwpkEEcbUqx4vtoEByFjSkhKdCT862DNVb52nZg1UZ")
	SerumProgramID   = solana.MustPublicKeyFromBase58("9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin")
)

// DefaultProtocols returns the venue set in registration order. Order is
// load-bearing: the aggregator breaks quote ties by it.
func DefaultProtocols() []ProtocolDescriptor {
	return []ProtocolDescriptor{
		{Address: OrcaProgramID, Name: "Orca"},
		{Address: RaydiumProgramID, Name: "Raydium"},
		{Address: SaberProgramID, Name: "Saber"},
		{Address: SerumProgramID, Name: "Serum"},
	}
}

// PoolAccounts holds the per-protocol accounts a swap instruction touches.
// Orca fills the token-swap fields; Raydium additionally fills the AMM and
// serum-market routing fields. Serum market entries leave all of it zero,
// the adapter decodes market state from chain instead.
type PoolAccounts struct {
	Authority    solana.PublicKey `json:"authority,omitempty"`
	VaultA       solana.PublicKey `json:"vault_a,omitempty"`
	VaultB       solana.PublicKey `json:"vault_b,omitempty"`
	PoolMint     solana.PublicKey `json:"pool_mint,omitempty"`
	FeeAccount   solana.PublicKey `json:"fee_account,omitempty"`
	OpenOrders   solana.PublicKey `json:"open_orders,omitempty"`
	TargetOrders solana.PublicKey `json:"target_orders,omitempty"`

	Market           solana.PublicKey `json:"market,omitempty"`
	MarketProgram    solana.PublicKey `json:"market_program,omitempty"`
	MarketBids       solana.PublicKey `json:"market_bids,omitempty"`
	MarketAsks       solana.PublicKey `json:"market_asks,omitempty"`
	MarketEventQueue solana.PublicKey `json:"market_event_queue,omitempty"`
	MarketBaseVault  solana.PublicKey `json:"market_base_vault,omitempty"`
	MarketQuoteVault solana.PublicKey `json:"market_quote_vault,omitempty"`
	MarketVaultSign  solana.PublicKey `json:"market_vault_signer,omitempty"`
}

// AmmPoolInfo describes one liquidity pool (or order-book market) instance.
// A pool belongs to exactly one protocol and one unordered token pair.
type AmmPoolInfo struct {
	ChainID         int                 `json:"chain_id"`
	Name            string              `json:"name"`
	Address         solana.PublicKey    `json:"address"`
	ProtocolAddress solana.PublicKey    `json:"protocol_address"`
	AmmAddress      solana.PublicKey    `json:"amm_address"`
	TokenAddresses  [2]solana.PublicKey `json:"token_addresses"`
	FeeNumerator    uint64              `json:"fee_numerator"`
	FeeDenominator  uint64              `json:"fee_denominator"`
	Accounts        PoolAccounts        `json:"accounts"`
}

// HasPair reports whether the pool serves the given unordered mint pair,
// with native/wrapped SOL treated as the same asset
func (p *AmmPoolInfo) HasPair(a, b solana.PublicKey) bool {
	a, b = tokens.NormalizeMint(a), tokens.NormalizeMint(b)
	pa, pb := tokens.NormalizeMint(p.TokenAddresses[0]), tokens.NormalizeMint(p.TokenAddresses[1])
	return (pa.Equals(a) && pb.Equals(b)) || (pa.Equals(b) && pb.Equals(a))
}

// Registry is the constructor-injected pool/protocol catalog. Initialized
// once at startup; all lookups are read-only afterwards.
type Registry struct {
	protocols []ProtocolDescriptor
	pools     []AmmPoolInfo
}

// New builds a registry from explicit protocol and pool sets
func New(protocols []ProtocolDescriptor, pools []AmmPoolInfo) (*Registry, error) {
	byAddr := make(map[solana.PublicKey]bool, len(protocols))
	for _, proto := range protocols {
		if byAddr[proto.Address] {
			return nil, fmt.Errorf("duplicate protocol: %s", proto.Name)
		}
		byAddr[proto.Address] = true
	}
	for i, pool := range pools {
		if !byAddr[pool.ProtocolAddress] {
			return nil, fmt.Errorf("pool %d (%s): unknown protocol %s", i, pool.Name, pool.ProtocolAddress)
		}
		if pool.ProtocolAddress != SerumProgramID && pool.FeeDenominator == 0 {
			return nil, fmt.Errorf("pool %d (%s): fee_denominator must be > 0", i, pool.Name)
		}
	}
	return &Registry{protocols: protocols, pools: pools}, nil
}

// NewFromFile loads the pool catalog from a JSON file, with the default
// protocol set
func NewFromFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool config: %w", err)
	}

	var pools []AmmPoolInfo
	if err := json.Unmarshal(data, &pools); err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	return New(DefaultProtocols(), pools)
}

// Protocols returns descriptors in registration order
func (r *Registry) Protocols() []ProtocolDescriptor {
	return r.protocols
}

// ProtocolByAddress resolves a program id to its descriptor
func (r *Registry) ProtocolByAddress(addr solana.PublicKey) (ProtocolDescriptor, error) {
	for _, proto := range r.protocols {
		if proto.Address.Equals(addr) {
			return proto, nil
		}
	}
	return ProtocolDescriptor{}, fmt.Errorf("unknown protocol address: %s", addr)
}

// ProtocolIndex returns the registration position of a protocol, used for
// tie-breaking. Unknown protocols sort last.
func (r *Registry) ProtocolIndex(addr solana.PublicKey) int {
	for i, proto := range r.protocols {
		if proto.Address.Equals(addr) {
			return i
		}
	}
	return len(r.protocols)
}

// GetTokensPools returns all AMM pools serving the unordered (from, to) pair,
// optionally restricted to one protocol. Serum markets are excluded; callers
// fall back to GetMarket when no AMM pool exists. An empty result is not an
// error.
func (r *Registry) GetTokensPools(fromMint, toMint solana.PublicKey, protocol ...solana.PublicKey) []AmmPoolInfo {
	var out []AmmPoolInfo
	for _, pool := range r.pools {
		if pool.ProtocolAddress.Equals(SerumProgramID) {
			continue
		}
		if len(protocol) > 0 && !pool.ProtocolAddress.Equals(protocol[0]) {
			continue
		}
		if pool.HasPair(fromMint, toMint) {
			out = append(out, pool)
		}
	}
	return out
}

// GetMarket returns the order-book market for the pair, if one is registered
func (r *Registry) GetMarket(fromMint, toMint solana.PublicKey) (AmmPoolInfo, bool) {
	for _, pool := range r.pools {
		if !pool.ProtocolAddress.Equals(SerumProgramID) {
			continue
		}
		if pool.HasPair(fromMint, toMint) {
			return pool, true
		}
	}
	return AmmPoolInfo{}, false
}

// PoolByAddress resolves a pool or market by its on-chain address
func (r *Registry) PoolByAddress(addr solana.PublicKey) (AmmPoolInfo, bool) {
	for _, pool := range r.pools {
		if pool.Address.Equals(addr) {
			return pool, true
		}
	}
	return AmmPoolInfo{}, false
}

// PoolCount returns the number of registered pools and markets
func (r *Registry) PoolCount() int {
	return len(r.pools)
}
