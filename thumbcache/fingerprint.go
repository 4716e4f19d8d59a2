package thumbcache

import (
	"encoding/binary"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Key identifies a cached thumbnail by a fingerprint of the source
// document content and the page's position and rotation within it. Two
// pages with the same fingerprint render identically, so a key survives
// reorders (position in the *source* is what matters) but not rotation.
type Key uint64

// Hash algorithm constants.
const (
	AlgXXHash3 = 1 // default, fastest
	AlgBlake2b = 2 // cryptographic, for content-addressed sharing across trust boundaries
)

// Fingerprinter derives cache keys for one document.
type Fingerprinter struct {
	docHash   uint64
	algorithm int
}

// NewFingerprinter hashes the source document bytes once and returns a
// derivation context for per-page keys. alg 0 selects AlgXXHash3.
func NewFingerprinter(docBytes []byte, alg int) Fingerprinter {
	if alg == 0 {
		alg = AlgXXHash3
	}
	return Fingerprinter{docHash: hashBytes(docBytes, alg), algorithm: alg}
}

// PageKey returns the cache key for a page, keyed by source position
// and rotation so a rotated page re-renders instead of serving a stale
// thumbnail.
func (f Fingerprinter) PageKey(sourceIndex, rotation int) Key {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], f.docHash)
	binary.LittleEndian.PutUint64(buf[8:], uint64(sourceIndex))
	binary.LittleEndian.PutUint64(buf[16:], uint64(rotation))
	return Key(hashBytes(buf[:], f.algorithm))
}

func hashBytes(b []byte, alg int) uint64 {
	switch alg {
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		h.Write(b)
		return binary.BigEndian.Uint64(h.Sum(nil))
	default:
		return xxh3.Hash(b)
	}
}
