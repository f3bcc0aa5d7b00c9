package digest

import (
	"encoding/hex"
	"strings"
)

// Prime is the multiplier used by CombineOrdered.
const Prime = 37

// Digest is a fixed-width hash value.
//
// The underlying string holds the raw digest bytes, so Digest is comparable
// and can key a map. Ordering is bytewise, which matches the ordering of the
// lowercase hex rendering.
type Digest string

// FromBytes wraps raw digest bytes.
func FromBytes(b []byte) Digest {
	return Digest(b)
}

// Bytes returns a copy of the raw digest bytes.
func (d Digest) Bytes() []byte {
	return []byte(d)
}

// Bits returns the digest width in bits.
func (d Digest) Bits() int {
	return len(d) * 8
}

// Hex returns the lowercase hex encoding of the digest.
func (d Digest) Hex() string {
	return hex.EncodeToString([]byte(d))
}

// String implements fmt.Stringer.
func (d Digest) String() string {
	return d.Hex()
}

// Compare orders digests bytewise.
func Compare(a, b Digest) int {
	return strings.Compare(string(a), string(b))
}

// CombineOrdered folds an ordered sequence of digests into one.
//
// Each output byte is result[i]*37 ^ next[i], starting from zero, so the
// result depends on the order of the inputs. All inputs must share a width;
// mixing widths is a programming error and panics.
func CombineOrdered(ds ...Digest) Digest {
	if len(ds) == 0 {
		panic("digest: CombineOrdered requires at least one digest")
	}
	out := make([]byte, len(ds[0]))
	for _, d := range ds {
		mustWidth(len(out), d)
		for i := 0; i < len(d); i++ {
			out[i] = out[i]*Prime ^ d[i]
		}
	}
	return Digest(out)
}

// CombineUnordered folds a multiset of digests into one by bytewise addition.
// The result does not depend on the order of the inputs.
func CombineUnordered(ds ...Digest) Digest {
	if len(ds) == 0 {
		panic("digest: CombineUnordered requires at least one digest")
	}
	out := make([]byte, len(ds[0]))
	for _, d := range ds {
		mustWidth(len(out), d)
		for i := 0; i < len(d); i++ {
			out[i] += d[i]
		}
	}
	return Digest(out)
}

func mustWidth(want int, d Digest) {
	if len(d) != want {
		panic("digest: cannot combine digests of different widths")
	}
}
