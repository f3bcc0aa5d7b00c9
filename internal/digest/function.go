package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"
	"hash"
	"sort"
	"unicode/utf16"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Supported function names.
const (
	MD5        = "md5"
	SHA1       = "sha1"
	SHA256     = "sha256"
	SHA512     = "sha512"
	Murmur3128 = "murmur3_128"
	XXH64      = "xxh64"
)

// Default is the function used when none is configured.
const Default = MD5

// Function produces digests of a fixed width.
type Function interface {
	// Name is the stable identifier of the function (for example "md5").
	Name() string

	// Bits is the digest width.
	Bits() int

	// Sum hashes raw bytes.
	Sum(data []byte) Digest
}

// HashString hashes the UTF-8 bytes of s.
func HashString(f Function, s string) Digest {
	return f.Sum([]byte(s))
}

// HashInt hashes the 4-byte little-endian encoding of v.
func HashInt(f Function, v int32) Digest {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	return f.Sum(buf[:])
}

// HashUnencodedChars hashes s as a sequence of UTF-16 code units, each
// written little-endian.
func HashUnencodedChars(f Function, s string) Digest {
	units := utf16.Encode([]rune(s))
	buf := make([]byte, 2*len(units))
	for i, u := range units {
		binary.LittleEndian.PutUint16(buf[2*i:], u)
	}
	return f.Sum(buf)
}

type stdFunction struct {
	name string
	bits int
	new  func() hash.Hash
}

func (f stdFunction) Name() string { return f.name }
func (f stdFunction) Bits() int    { return f.bits }

func (f stdFunction) Sum(data []byte) Digest {
	h := f.new()
	h.Write(data)
	return Digest(h.Sum(nil))
}

// murmur3Function emits h1 then h2, each little-endian.
type murmur3Function struct{}

func (murmur3Function) Name() string { return Murmur3128 }
func (murmur3Function) Bits() int    { return 128 }

func (murmur3Function) Sum(data []byte) Digest {
	h1, h2 := murmur3.Sum128(data)
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], h1)
	binary.LittleEndian.PutUint64(buf[8:], h2)
	return Digest(buf[:])
}

type xxh64Function struct{}

func (xxh64Function) Name() string { return XXH64 }
func (xxh64Function) Bits() int    { return 64 }

func (xxh64Function) Sum(data []byte) Digest {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], xxhash.Sum64(data))
	return Digest(buf[:])
}

var registry = map[string]Function{
	MD5:        stdFunction{name: MD5, bits: 128, new: md5.New},
	SHA1:       stdFunction{name: SHA1, bits: 160, new: sha1.New},
	SHA256:     stdFunction{name: SHA256, bits: 256, new: sha256.New},
	SHA512:     stdFunction{name: SHA512, bits: 512, new: sha512.New},
	Murmur3128: murmur3Function{},
	XXH64:      xxh64Function{},
}

// Lookup returns the function registered under name.
func Lookup(name string) (Function, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown hash function %q (valid: %v)", name, Names())
	}
	return f, nil
}

// MustLookup is Lookup for names known at compile time.
func MustLookup(name string) Function {
	f, err := Lookup(name)
	if err != nil {
		panic(err)
	}
	return f
}

// Names returns the registered function names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
