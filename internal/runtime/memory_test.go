package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethwasm/hostvm/types"
)

func TestWordRoundTrip(t *testing.T) {
	mem := newFakeMemory(64)
	w := types.NewWord(0xdeadbeef)

	require.NoError(t, writeWord(mem, 8, w))
	got, err := readWord(mem, 8)
	require.NoError(t, err)
	assert.True(t, got.Eq(&w))
}

func TestAddressRoundTrip(t *testing.T) {
	mem := newFakeMemory(64)
	a := addr(0x11)

	require.NoError(t, writeAddress(mem, 0, a))
	got, err := readAddress(mem, 0)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestHashRoundTrip(t *testing.T) {
	mem := newFakeMemory(64)
	var h types.Hash
	h[0], h[31] = 0xaa, 0xbb

	require.NoError(t, writeHash(mem, 16, h))
	got, err := readHash(mem, 16)
	require.NoError(t, err)
	assert.Equal(t, h, got)
}

func TestReadersFailOutOfBounds(t *testing.T) {
	mem := newFakeMemory(16)

	_, err := readWord(mem, 0)
	assert.Error(t, err)
	_, err = readAddress(mem, 8)
	assert.Error(t, err)
	_, err = readHash(mem, 0)
	assert.Error(t, err)
}

func TestZeroLengthAccessAlwaysSucceeds(t *testing.T) {
	mem := newFakeMemory(4)

	// far outside the 4-byte memory, still fine at length zero
	data, err := mem.Read(1<<20, 0)
	require.NoError(t, err)
	assert.Empty(t, data)

	require.NoError(t, mem.Write(1<<20, nil))
}

func TestReadCopiesOutOfGuestMemory(t *testing.T) {
	mem := newFakeMemory(8)
	require.NoError(t, mem.Write(0, []byte{1, 2, 3, 4}))

	got, err := mem.Read(0, 4)
	require.NoError(t, err)
	got[0] = 0xff

	again, err := mem.Read(0, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, again)
}
