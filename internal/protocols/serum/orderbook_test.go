package serum

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildSlab assembles a slab account with the given leaves, interleaved with
// inner nodes so the walk has to filter by tag.
func buildSlab(leaves []bookLevel) []byte {
	nodeCount := len(leaves)*2 + 1
	data := make([]byte, headPadding+8+slabHeaderSize+nodeCount*slabNodeSize)

	header := headPadding + 8
	binary.LittleEndian.PutUint32(data[header:header+4], uint32(nodeCount))
	binary.LittleEndian.PutUint32(data[header+24:header+28], uint32(len(leaves)))

	nodes := header + slabHeaderSize
	for i, leaf := range leaves {
		// Leave every other slot as a non-leaf node (tag 0).
		node := data[nodes+(i*2+1)*slabNodeSize:]
		binary.LittleEndian.PutUint32(node[0:4], leafNodeTag)
		binary.LittleEndian.PutUint64(node[16:24], leaf.PriceLots)
		binary.LittleEndian.PutUint64(node[56:64], leaf.QuantityLots)
	}
	return data
}

func TestBestLevelBids(t *testing.T) {
	slab := buildSlab([]bookLevel{
		{PriceLots: 99_800, QuantityLots: 5},
		{PriceLots: 100_000, QuantityLots: 3},
		{PriceLots: 99_900, QuantityLots: 10},
	})

	best, ok, err := bestLevel(slab, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100_000), best.PriceLots)
	assert.Equal(t, uint64(3), best.QuantityLots)
}

func TestBestLevelAsks(t *testing.T) {
	slab := buildSlab([]bookLevel{
		{PriceLots: 100_300, QuantityLots: 5},
		{PriceLots: 100_100, QuantityLots: 7},
		{PriceLots: 100_200, QuantityLots: 10},
	})

	best, ok, err := bestLevel(slab, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, uint64(100_100), best.PriceLots)
	assert.Equal(t, uint64(7), best.QuantityLots)
}

func TestBestLevelEmptyBook(t *testing.T) {
	slab := buildSlab(nil)

	_, ok, err := bestLevel(slab, true)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBestLevelTruncated(t *testing.T) {
	_, _, err := bestLevel(make([]byte, 10), true)
	assert.Error(t, err)

	// Header claims more nodes than the account holds.
	slab := buildSlab([]bookLevel{{PriceLots: 1, QuantityLots: 1}})
	_, _, err = bestLevel(slab[:len(slab)-slabNodeSize], true)
	assert.Error(t, err)
}
