package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Combination
// ============================================================================

func TestCombineOrdered_SingleIsIdentity(t *testing.T) {
	d := FromBytes([]byte{0x01, 0xff, 0x80})
	assert.Equal(t, d, CombineOrdered(d))
}

func TestCombineOrdered_MultipliesThenXors(t *testing.T) {
	a := FromBytes([]byte{0x01})
	b := FromBytes([]byte{0x02})

	// (0*37 ^ 1)*37 ^ 2 = 0x25 ^ 0x02
	assert.Equal(t, FromBytes([]byte{0x27}), CombineOrdered(a, b))
	assert.NotEqual(t, CombineOrdered(a, b), CombineOrdered(b, a), "order must matter")
}

func TestCombineUnordered_WrapsAndCommutes(t *testing.T) {
	a := FromBytes([]byte{200, 1})
	b := FromBytes([]byte{100, 2})

	assert.Equal(t, FromBytes([]byte{44, 3}), CombineUnordered(a, b))
	assert.Equal(t, CombineUnordered(a, b), CombineUnordered(b, a))
}

func TestCombine_PanicsOnWidthMismatch(t *testing.T) {
	a := FromBytes([]byte{1})
	b := FromBytes([]byte{1, 2})

	assert.Panics(t, func() { CombineOrdered(a, b) })
	assert.Panics(t, func() { CombineUnordered(a, b) })
	assert.Panics(t, func() { CombineOrdered() })
}

func TestCompare_MatchesHexOrder(t *testing.T) {
	a := FromBytes([]byte{0x0f, 0xff})
	b := FromBytes([]byte{0x10, 0x00})

	assert.Negative(t, Compare(a, b))
	assert.Less(t, a.Hex(), b.Hex())
	assert.Equal(t, "0fff", a.String())
	assert.Equal(t, 16, a.Bits())
}

// ============================================================================
// Functions
// ============================================================================

func TestFunctions_EmptyInputVectors(t *testing.T) {
	tests := []struct {
		name string
		want string
		bits int
	}{
		{MD5, "d41d8cd98f00b204e9800998ecf8427e", 128},
		{SHA1, "da39a3ee5e6b4b0d3255bfef95601890afd80709", 160},
		{SHA256, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", 256},
		{Murmur3128, "00000000000000000000000000000000", 128},
		{XXH64, "99e9d85137db46ef", 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Lookup(tt.name)
			require.NoError(t, err)

			d := HashString(f, "")
			assert.Equal(t, tt.want, d.Hex())
			assert.Equal(t, tt.bits, f.Bits())
			assert.Equal(t, tt.bits, d.Bits())
		})
	}
}

func TestHashInt_LittleEndian(t *testing.T) {
	f := MustLookup(MD5)
	assert.Equal(t, f.Sum([]byte{0x01, 0x00, 0x00, 0x00}), HashInt(f, 1))
	assert.Equal(t, f.Sum([]byte{0xff, 0xff, 0xff, 0xff}), HashInt(f, -1))
}

func TestHashUnencodedChars_UTF16LE(t *testing.T) {
	f := MustLookup(SHA1)
	assert.Equal(t, f.Sum([]byte{'+', 0x00}), HashUnencodedChars(f, "+"))
	assert.NotEqual(t, HashString(f, "+"), HashUnencodedChars(f, "+"))
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Lookup("crc32")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crc32")
	assert.Contains(t, Names(), MD5)
	assert.Len(t, Names(), 6)
}
