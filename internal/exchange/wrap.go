package exchange

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/solswap-labs/exchange-core/internal/protocols"
	"github.com/solswap-labs/exchange-core/internal/tokens"
)

// IsWrapPair reports whether the pair is a wrap or unwrap: both legs resolve
// to the same underlying asset after native/wrapped aliasing
func IsWrapPair(from, to tokens.TokenInfo) bool {
	return tokens.SameMint(from.Mint(), to.Mint())
}

// IsUnwrap reports whether the operation converts wrapped SOL back to native
func IsUnwrap(from, to tokens.TokenInfo) bool {
	return IsWrapPair(from, to) && !tokens.IsNativeSOL(from.Mint()) && tokens.IsNativeSOL(to.Mint())
}

// WrapExchangeInfo synthesizes the quote for a wrap/unwrap: 1:1 rate, no
// price impact, no protocol fee
func WrapExchangeInfo(from tokens.TokenInfo, amount decimal.Decimal, txFeeBaseline decimal.Decimal) *protocols.ExchangeInfo {
	amount = tokens.RoundToDecimals(amount, from.Decimals)
	return &protocols.ExchangeInfo{
		FromAmm:      "wrap",
		AmountIn:     amount,
		AmountOut:    amount,
		MinAmountOut: amount,
		OutPrice:     decimal.NewFromInt(1),
		PriceImpact:  0,
		ProtocolFees: decimal.Zero,
		NetworkFees:  txFeeBaseline,
	}
}

// BuildWrapTransaction builds an unsigned transaction converting native SOL
// into wrapped SOL in the owner's associated token account
func BuildWrapTransaction(ctx context.Context, chain protocols.ChainReader, owner solana.PublicKey, amount decimal.Decimal) (*solana.Transaction, error) {
	lamports, err := tokens.ToRaw(amount, tokens.SOLDecimals)
	if err != nil {
		return nil, fmt.Errorf("invalid wrap amount: %w", err)
	}
	if lamports == 0 {
		return nil, fmt.Errorf("wrap amount must be > 0")
	}

	ata, _, err := protocols.FindAssociatedTokenAddress(owner, tokens.WrappedSOLMint)
	if err != nil {
		return nil, err
	}
	exists, err := chain.AccountExists(ctx, ata)
	if err != nil {
		return nil, err
	}

	var ixs []solana.Instruction
	if !exists {
		ixs = append(ixs, protocols.NewCreateAssociatedTokenAccountIx(owner, ata, owner, tokens.WrappedSOLMint))
	}
	ixs = append(ixs,
		protocols.NewSystemTransferIx(owner, ata, lamports),
		protocols.NewTokenSyncNativeIx(ata),
	)

	return protocols.BuildUnsignedTransaction(ctx, chain, owner, ixs)
}

// BuildUnwrapTransaction builds an unsigned transaction converting the
// owner's wrapped SOL back to native by closing the wrapped account. The
// whole balance, including rent, returns to the owner.
func BuildUnwrapTransaction(ctx context.Context, chain protocols.ChainReader, owner solana.PublicKey) (*solana.Transaction, error) {
	ata, _, err := protocols.FindAssociatedTokenAddress(owner, tokens.WrappedSOLMint)
	if err != nil {
		return nil, err
	}
	exists, err := chain.AccountExists(ctx, ata)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("no wrapped SOL account to unwrap")
	}

	ixs := []solana.Instruction{
		protocols.NewTokenCloseAccountIx(ata, owner, owner),
	}
	return protocols.BuildUnsignedTransaction(ctx, chain, owner, ixs)
}
