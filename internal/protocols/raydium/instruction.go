package raydium

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/registry"
)

// newSwapBaseInInstruction builds the AMM v4 swapBaseIn instruction.
//
// Data layout:
//
//	u8  instruction (9 = swapBaseIn)
//	u64 amount_in
//	u64 minimum_amount_out
func newSwapBaseInInstruction(pool registry.AmmPoolInfo, owner, userSource, userDest solana.PublicKey, amountIn, minAmountOut uint64) solana.Instruction {
	data := make([]byte, 1+8+8)
	data[0] = 9
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	accounts := []*solana.AccountMeta{
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: pool.AmmAddress, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: pool.Accounts.OpenOrders, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.TargetOrders, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.VaultA, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.VaultB, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketProgram, IsSigner: false, IsWritable: false},
		{PublicKey: pool.Accounts.Market, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketBids, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketAsks, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketEventQueue, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketBaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketQuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.MarketVaultSign, IsSigner: false, IsWritable: false},
		{PublicKey: userSource, IsSigner: false, IsWritable: true},
		{PublicKey: userDest, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}

	return solana.NewInstruction(registry.RaydiumProgramID, accounts, data)
}
