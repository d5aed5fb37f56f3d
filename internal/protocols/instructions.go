package protocols

import (
	"context"
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/tokens"
)

var (
	// SPL Associated Token Account program
	associatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
)

// WrapSafetyLamports is the fixed margin added when funding a temporary
// wrapped-SOL account, covering rent for accounts created in the same
// transaction. The surplus is refunded when the account is closed.
const WrapSafetyLamports = 5_000_000

// FindAssociatedTokenAddress derives the ATA PDA for (owner, mint)
func FindAssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			owner.Bytes(),
			solana.TokenProgramID.Bytes(),
			mint.Bytes(),
		},
		associatedTokenProgramID,
	)
}

// NewCreateAssociatedTokenAccountIx builds an instruction to create an ATA.
// Account order (ATA program):
// 0. payer (signer, writable)
// 1. ata (writable)
// 2. owner (read-only)
// 3. mint (read-only)
// 4. system_program
// 5. token_program
// 6. rent_sysvar
func NewCreateAssociatedTokenAccountIx(payer, ata, owner, mint solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}

	// ATA create instruction data is empty.
	return solana.NewInstruction(associatedTokenProgramID, accounts, nil)
}

// NewSystemTransferIx builds a SystemProgram transfer instruction
func NewSystemTransferIx(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	// SystemProgram instruction layout:
	// u32: instruction index (2 = Transfer)
	// u64: lamports
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	accounts := []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: false, IsWritable: true},
	}
	return solana.NewInstruction(solana.SystemProgramID, accounts, data)
}

// NewTokenTransferIx builds a SPL Token Transfer instruction
func NewTokenTransferIx(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	// TokenProgram instruction index 3 = Transfer
	data := make([]byte, 1+8)
	data[0] = 3
	binary.LittleEndian.PutUint64(data[1:9], amount)

	accounts := []*solana.AccountMeta{
		{PublicKey: source, IsSigner: false, IsWritable: true},
		{PublicKey: destination, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, data)
}

// NewTokenSyncNativeIx builds a SPL Token SyncNative instruction
func NewTokenSyncNativeIx(nativeAccount solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 17 = SyncNative
	data := []byte{17}
	accounts := []*solana.AccountMeta{
		{PublicKey: nativeAccount, IsSigner: false, IsWritable: true},
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, data)
}

// NewTokenCloseAccountIx builds a SPL Token CloseAccount instruction
func NewTokenCloseAccountIx(account, destination, owner solana.PublicKey) solana.Instruction {
	// TokenProgram instruction index 9 = CloseAccount
	data := []byte{9}
	accounts := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: destination, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(solana.TokenProgramID, accounts, data)
}

// ResolvedTokenAccount describes the token account to use for one swap leg
// plus the setup/teardown instructions that make it usable
type ResolvedTokenAccount struct {
	Account solana.PublicKey
	Created bool
	PreIxs  []solana.Instruction
	PostIxs []solana.Instruction
}

// ResolveTokenAccount returns the owner's ATA for the mint, creating it when
// missing. For a native-SOL leg the account is funded with the amount plus
// the fixed safety margin, synced, and closed (refunding the remainder) in
// the same transaction.
func ResolveTokenAccount(ctx context.Context, chain ChainReader, owner, mint solana.PublicKey, fundLamports uint64) (*ResolvedTokenAccount, error) {
	normalized := tokens.NormalizeMint(mint)

	ata, _, err := FindAssociatedTokenAddress(owner, normalized)
	if err != nil {
		return nil, err
	}

	exists, err := chain.AccountExists(ctx, ata)
	if err != nil {
		return nil, err
	}

	res := &ResolvedTokenAccount{Account: ata, Created: !exists}
	if !exists {
		res.PreIxs = append(res.PreIxs, NewCreateAssociatedTokenAccountIx(owner, ata, owner, normalized))
	}

	if tokens.IsSOL(mint) {
		if fundLamports > 0 {
			res.PreIxs = append(res.PreIxs,
				NewSystemTransferIx(owner, ata, fundLamports+WrapSafetyLamports),
				NewTokenSyncNativeIx(ata),
			)
		}
		// Temporary wSOL accounts are always unwound; pre-existing ones are
		// left alone so we stay non-destructive for existing wallets.
		if !exists || fundLamports > 0 {
			res.PostIxs = append(res.PostIxs, NewTokenCloseAccountIx(ata, owner, owner))
		}
	}

	return res, nil
}

// FeeTransferIxs builds the aggregator fee leg: a transfer of feeAmount (raw
// source-token units) to the fee collector's token account, creating that
// account first when it does not exist yet. Returns nil when feeAmount is 0.
func FeeTransferIxs(ctx context.Context, chain ChainReader, owner, sourceAccount, feeOwner, sourceMint solana.PublicKey, feeAmount uint64) ([]solana.Instruction, error) {
	if feeAmount == 0 {
		return nil, nil
	}

	mint := tokens.NormalizeMint(sourceMint)
	feeATA, _, err := FindAssociatedTokenAddress(feeOwner, mint)
	if err != nil {
		return nil, err
	}

	exists, err := chain.AccountExists(ctx, feeATA)
	if err != nil {
		return nil, err
	}

	var ixs []solana.Instruction
	if !exists {
		ixs = append(ixs, NewCreateAssociatedTokenAccountIx(owner, feeATA, feeOwner, mint))
	}
	ixs = append(ixs, NewTokenTransferIx(sourceAccount, feeATA, owner, feeAmount))
	return ixs, nil
}

// BuildUnsignedTransaction assembles instructions into a transaction with a
// fresh blockhash and the owner as fee payer. The result carries no
// signatures; signing and submission belong to the lifecycle orchestrator.
func BuildUnsignedTransaction(ctx context.Context, chain ChainReader, owner solana.PublicKey, ixs []solana.Instruction) (*solana.Transaction, error) {
	blockhash, err := chain.GetLatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	return solana.NewTransaction(ixs, blockhash, solana.TransactionPayer(owner))
}
