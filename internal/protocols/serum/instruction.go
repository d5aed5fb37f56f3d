package serum

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/solswap-labs/exchange-core/internal/registry"
)

const (
	sideBid = 0
	sideAsk = 1

	orderTypeIOC        = 1
	selfTradeDecrement  = 0
	matchIterationLimit = 65535

	openOrdersSize = 3228
)

// newOrderV3Instruction builds the serum NewOrderV3 instruction as an
// immediate-or-cancel taker order.
//
// Data layout (51 bytes):
//
//	u8  version (0)
//	u32 instruction (10 = NewOrderV3)
//	u32 side
//	u64 limit_price (lots)
//	u64 max_base_quantity (lots)
//	u64 max_quote_quantity (native units)
//	u32 self_trade_behavior
//	u32 order_type
//	u64 client_order_id
//	u16 match iteration limit
func newOrderV3Instruction(market *marketState, openOrders, payer, owner solana.PublicKey, side uint32, limitPrice, maxBaseQty, maxQuoteQty uint64) solana.Instruction {
	data := make([]byte, 51)
	data[0] = 0
	binary.LittleEndian.PutUint32(data[1:], 10)
	binary.LittleEndian.PutUint32(data[5:], side)
	binary.LittleEndian.PutUint64(data[9:], limitPrice)
	binary.LittleEndian.PutUint64(data[17:], maxBaseQty)
	binary.LittleEndian.PutUint64(data[25:], maxQuoteQty)
	binary.LittleEndian.PutUint32(data[33:], selfTradeDecrement)
	binary.LittleEndian.PutUint32(data[37:], orderTypeIOC)
	binary.LittleEndian.PutUint64(data[41:], 0)
	binary.LittleEndian.PutUint16(data[49:], matchIterationLimit)

	accounts := []*solana.AccountMeta{
		{PublicKey: market.OwnAddress, IsSigner: false, IsWritable: true},
		{PublicKey: openOrders, IsSigner: false, IsWritable: true},
		{PublicKey: market.RequestQueue, IsSigner: false, IsWritable: true},
		{PublicKey: market.EventQueue, IsSigner: false, IsWritable: true},
		{PublicKey: market.Bids, IsSigner: false, IsWritable: true},
		{PublicKey: market.Asks, IsSigner: false, IsWritable: true},
		{PublicKey: payer, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
		{PublicKey: market.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: market.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(registry.SerumProgramID, accounts, data)
}

// newSettleFundsInstruction builds the SettleFunds instruction, releasing
// filled base and quote balances from the open-orders account to the user's
// token accounts
func newSettleFundsInstruction(market *marketState, openOrders, owner, userBase, userQuote, vaultSigner solana.PublicKey) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 0
	binary.LittleEndian.PutUint32(data[1:], 5)

	accounts := []*solana.AccountMeta{
		{PublicKey: market.OwnAddress, IsSigner: false, IsWritable: true},
		{PublicKey: openOrders, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
		{PublicKey: market.BaseVault, IsSigner: false, IsWritable: true},
		{PublicKey: market.QuoteVault, IsSigner: false, IsWritable: true},
		{PublicKey: userBase, IsSigner: false, IsWritable: true},
		{PublicKey: userQuote, IsSigner: false, IsWritable: true},
		{PublicKey: vaultSigner, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(registry.SerumProgramID, accounts, data)
}

// newCloseOpenOrdersInstruction builds the CloseOpenOrders instruction,
// refunding the account's rent to the owner
func newCloseOpenOrdersInstruction(market *marketState, openOrders, owner solana.PublicKey) solana.Instruction {
	data := make([]byte, 5)
	data[0] = 0
	binary.LittleEndian.PutUint32(data[1:], 14)

	accounts := []*solana.AccountMeta{
		{PublicKey: openOrders, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: true},
		{PublicKey: market.OwnAddress, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(registry.SerumProgramID, accounts, data)
}

// newCreateAccountWithSeedIx builds a SystemProgram CreateAccountWithSeed
// instruction assigning the new account to the serum program
func newCreateAccountWithSeedIx(from, created, base solana.PublicKey, seed string, lamports, space uint64) solana.Instruction {
	// SystemProgram instruction layout:
	// u32: instruction index (3 = CreateAccountWithSeed)
	// pubkey: base
	// string: seed (u64 length prefix)
	// u64: lamports
	// u64: space
	// pubkey: owner program
	data := make([]byte, 0, 4+32+8+len(seed)+8+8+32)
	data = binary.LittleEndian.AppendUint32(data, 3)
	data = append(data, base.Bytes()...)
	data = binary.LittleEndian.AppendUint64(data, uint64(len(seed)))
	data = append(data, []byte(seed)...)
	data = binary.LittleEndian.AppendUint64(data, lamports)
	data = binary.LittleEndian.AppendUint64(data, space)
	data = append(data, registry.SerumProgramID.Bytes()...)

	accounts := []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: created, IsSigner: false, IsWritable: true},
		{PublicKey: base, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(solana.SystemProgramID, accounts, data)
}
