package orca

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/registry"
)

// newSwapInstruction builds the SPL token-swap Swap instruction.
//
// Data layout:
//
//	u8  instruction (1 = Swap)
//	u64 amount_in
//	u64 minimum_amount_out
//
// Account order:
//
//	0. token_swap (pool state)
//	1. swap_authority
//	2. user_transfer_authority (signer)
//	3. user source token account (writable)
//	4. pool source vault (writable)
//	5. pool destination vault (writable)
//	6. user destination token account (writable)
//	7. pool mint (writable)
//	8. fee account (writable)
//	9. token_program
func newSwapInstruction(pool registry.AmmPoolInfo, owner, userSource, userDest, poolSource, poolDest solana.PublicKey, amountIn, minAmountOut uint64) solana.Instruction {
	data := make([]byte, 1+8+8)
	data[0] = 1
	binary.LittleEndian.PutUint64(data[1:9], amountIn)
	binary.LittleEndian.PutUint64(data[9:17], minAmountOut)

	accounts := []*solana.AccountMeta{
		{PublicKey: pool.Address, IsSigner: false, IsWritable: false},
		{PublicKey: pool.Accounts.Authority, IsSigner: false, IsWritable: false},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
		{PublicKey: userSource, IsSigner: false, IsWritable: true},
		{PublicKey: poolSource, IsSigner: false, IsWritable: true},
		{PublicKey: poolDest, IsSigner: false, IsWritable: true},
		{PublicKey: userDest, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.PoolMint, IsSigner: false, IsWritable: true},
		{PublicKey: pool.Accounts.FeeAccount, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(registry.OrcaProgramID, accounts, data)
}
