package serum

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/solswap-labs/exchange-core/internal/registry"
)

const (
	marketStateSize = 388

	// Serialized account layouts are framed by the literal "serum" padding
	// prefix (5 bytes) and "padding" suffix (7 bytes).
	headPadding = 5
	tailPadding = 7
)

// marketState is the decoded on-chain state of a serum market (MarketStateV1
// layout without the optional authority tail)
type marketState struct {
	OwnAddress       solana.PublicKey
	VaultSignerNonce uint64
	BaseMint         solana.PublicKey
	QuoteMint        solana.PublicKey
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	RequestQueue     solana.PublicKey
	EventQueue       solana.PublicKey
	Bids             solana.PublicKey
	Asks             solana.PublicKey
	BaseLotSize      uint64
	QuoteLotSize     uint64
	FeeRateBps       uint64
}

// decodeMarket parses a raw serum market account
func decodeMarket(data []byte) (*marketState, error) {
	if len(data) < marketStateSize {
		return nil, fmt.Errorf("market account too short: %d bytes", len(data))
	}

	pk := func(off int) solana.PublicKey {
		return solana.PublicKeyFromBytes(data[off : off+32])
	}
	u64 := func(off int) uint64 {
		return binary.LittleEndian.Uint64(data[off : off+8])
	}

	// Offsets follow the serialized layout: 5 bytes padding, 8 bytes account
	// flags, then the fields.
	m := &marketState{
		OwnAddress:       pk(13),
		VaultSignerNonce: u64(45),
		BaseMint:         pk(53),
		QuoteMint:        pk(85),
		BaseVault:        pk(117),
		QuoteVault:       pk(165),
		RequestQueue:     pk(221),
		EventQueue:       pk(253),
		Bids:             pk(285),
		Asks:             pk(317),
		BaseLotSize:      u64(349),
		QuoteLotSize:     u64(357),
		FeeRateBps:       u64(365),
	}

	if m.BaseLotSize == 0 || m.QuoteLotSize == 0 {
		return nil, fmt.Errorf("market has zero lot size")
	}
	return m, nil
}

// vaultSigner derives the program address authorized to move the market's
// vault funds
func (m *marketState) vaultSigner() (solana.PublicKey, error) {
	nonce := make([]byte, 8)
	binary.LittleEndian.PutUint64(nonce, m.VaultSignerNonce)
	return solana.CreateProgramAddress([][]byte{m.OwnAddress.Bytes(), nonce}, registry.SerumProgramID)
}

// priceLotsToUi converts a price in lots into quote-per-base human units
func (m *marketState) priceLotsToUi(priceLots uint64, baseDecimals, quoteDecimals uint8) decimal.Decimal {
	p := decimal.NewFromUint64(priceLots).
		Mul(decimal.NewFromUint64(m.QuoteLotSize)).
		Div(decimal.NewFromUint64(m.BaseLotSize))
	return p.Shift(int32(baseDecimals) - int32(quoteDecimals))
}
