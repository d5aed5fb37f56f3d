package registry

import (
	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/tokens"
)

func pk(s string) solana.PublicKey { return solana.MustPublicKeyFromBase58(s) }

var (
	usdcMint = pk("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
	usdtMint = pk("Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB")
)

// DefaultPools is the built-in mainnet catalog used when no pool config file
// is supplied. Deployments with more pairs load a JSON catalog instead.
func DefaultPools() []AmmPoolInfo {
	return []AmmPoolInfo{
		{
			ChainID:         tokens.MainnetChainID,
			Name:            "Orca SOL/USDC",
			Address:         pk("EGZ7tiLeH62TPV1gL8WwbXGzEPa9zmcpVnnkPKKnrE2U"),
			ProtocolAddress: OrcaProgramID,
			AmmAddress:      pk("EGZ7tiLeH62TPV1gL8WwbXGzEPa9zmcpVnnkPKKnrE2U"),
			TokenAddresses:  [2]solana.PublicKey{tokens.WrappedSOLMint, usdcMint},
			FeeNumerator:    30,
			FeeDenominator:  10000,
			Accounts: PoolAccounts{
				Authority:  pk("JU8kmKzDHF9sXWsnoznaFDFezLsE5uomX2JkRMbmsQP"),
				VaultA:     pk("ANP74VNsHwSrq9uUSjiSNyNWvf6ZPrKTmE4gHoNd13Lg"),
				VaultB:     pk("75HgnSvXbWKZBpZHveX68ZzAhDqMzNDS29X6BGLtxMo1"),
				PoolMint:   pk("APDFRM3HMr8CAGXwKHiu2f5ePSpaiEJhaURwhsRrUUt9"),
				FeeAccount: pk("8JnSiuvQq3BVuCU3n4DrSTw9chBSPvEMswrhtifVkr1o"),
			},
		},
		{
			ChainID:         tokens.MainnetChainID,
			Name:            "Raydium SOL/USDC",
			Address:         pk("58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"),
			ProtocolAddress: RaydiumProgramID,
			AmmAddress:      pk("58oQChx4yWmvKdwLLZzBi4ChoCc2fqCUWBkwMihLYQo2"),
			TokenAddresses:  [2]solana.PublicKey{tokens.WrappedSOLMint, usdcMint},
			FeeNumerator:    25,
			FeeDenominator:  10000,
			Accounts: PoolAccounts{
				Authority:        pk("5Q544fKrFoe6tsEbD7S8EmxGTJYAKtTVhAW5Q5pge4j1"),
				VaultA:           pk("DQyrAcCrDXQ7NeoqGgDCZwBvWDcYmFCjSb9JtteuvPpz"),
				VaultB:           pk("HLmqeL62xR1QoZ1HKKbXRrdN1p3phKpxRMb2VVopvBBz"),
				OpenOrders:       pk("HRk9CMrpq7Jn9sh7mzxE8CChHG8dneX9p475QKz4Fsfc"),
				TargetOrders:     pk("CZza3Ej4Mc58MnxWA385itCC9jCo3L1D7zc3LKy1bZMR"),
				Market:           pk("9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT"),
				MarketProgram:    SerumProgramID,
				MarketBids:       pk("14ivtgssEBoBjuZJtSAPKYgpUK7DmnSwuPMqJoVTSgKJ"),
				MarketAsks:       pk("CEQdAFKdycHugujQg9k2wbmxjcpdYZyVLfV9WerTnafJ"),
				MarketEventQueue: pk("5KKsLVU6TcbVDK4BS6K1DGDxnh4Q9xjYJ8XaDCG5t8ht"),
				MarketBaseVault:  pk("36c6YqAwyGKQG66XEp2dJc5JqjaBNv7sVghEtJv4c7u6"),
				MarketQuoteVault: pk("8CFo8bL8mZQK8abbFyypFMwEDd8tVJjHTTojMLgQTUSZ"),
				MarketVaultSign:  pk("F8Vyqk3unwxkXukZFQeYyGmFfTG3CAX4v24iyrjEYBJV"),
			},
		},
		{
			ChainID:         tokens.MainnetChainID,
			Name:            "Serum SOL/USDC",
			Address:         pk("9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT"),
			ProtocolAddress: SerumProgramID,
			AmmAddress:      pk("9wFFyRfZBsuAha4YcuxcXLKwMxJR43S7fPfQLusDBzvT"),
			TokenAddresses:  [2]solana.PublicKey{tokens.WrappedSOLMint, usdcMint},
		},
		{
			ChainID:         tokens.MainnetChainID,
			Name:            "Serum SRM/USDT",
			Address:         pk("AtNnsY1AyRERWJ8xCskfz38YdvruWVJQUVXgScC1iPb"),
			ProtocolAddress: SerumProgramID,
			AmmAddress:      pk("AtNnsY1AyRERWJ8xCskfz38YdvruWVJQUVXgScC1iPb"),
			TokenAddresses:  [2]solana.PublicKey{pk("SRMuApVNdxXokk5GT7XD5cUUgXMBCoAz2LHeuAoKWRt"), usdtMint},
		},
	}
}

// NewDefault builds a registry over the built-in protocol and pool catalog
func NewDefault() *Registry {
	r, err := New(DefaultProtocols(), DefaultPools())
	if err != nil {
		panic(err) // built-in catalog is validated by tests
	}
	return r
}
