package serum

import (
	"encoding/binary"
	"fmt"
)

const (
	slabHeaderSize = 32
	slabNodeSize   = 72

	leafNodeTag = 2
)

// bookLevel is one resting order on the book, in lot units
type bookLevel struct {
	PriceLots    uint64
	QuantityLots uint64
}

// bestLevel walks a bids or asks slab account and returns the top of book:
// the highest-priced leaf for bids, the lowest-priced for asks. The second
// return is false when the book side is empty.
func bestLevel(data []byte, isBids bool) (bookLevel, bool, error) {
	// 5 bytes padding + 8 bytes account flags precede the slab.
	offset := headPadding + 8
	if len(data) < offset+slabHeaderSize {
		return bookLevel{}, false, fmt.Errorf("order book account too short: %d bytes", len(data))
	}

	bumpIndex := binary.LittleEndian.Uint32(data[offset : offset+4])
	leafCount := binary.LittleEndian.Uint32(data[offset+24 : offset+28])
	offset += slabHeaderSize

	if leafCount == 0 {
		return bookLevel{}, false, nil
	}
	if len(data) < offset+int(bumpIndex)*slabNodeSize {
		return bookLevel{}, false, fmt.Errorf("order book slab truncated")
	}

	var best bookLevel
	found := false
	for i := uint32(0); i < bumpIndex; i++ {
		node := data[offset+int(i)*slabNodeSize:]
		if binary.LittleEndian.Uint32(node[0:4]) != leafNodeTag {
			continue
		}
		// Leaf body: ownerSlot u8, feeTier u8, padding [2]u8, key u128,
		// owner pubkey, quantity u64, clientOrderId u64. The price is the
		// upper half of the key.
		price := binary.LittleEndian.Uint64(node[16:24])
		quantity := binary.LittleEndian.Uint64(node[56:64])

		if !found || (isBids && price > best.PriceLots) || (!isBids && price < best.PriceLots) {
			best = bookLevel{PriceLots: price, QuantityLots: quantity}
			found = true
		}
	}
	return best, found, nil
}
