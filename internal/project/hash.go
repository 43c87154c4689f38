package project

import (
	"crypto/sha256"
)

// Digest is a fixed 256-bit hash used for cache keys.
type Digest [32]byte

// HashBytes digests a single byte slice.
func HashBytes(data []byte) Digest {
	return sha256.Sum256(data)
}

// HashStrings digests an ordered list of strings. Length prefixes keep
// ("ab","c") distinct from ("a","bc").
func HashStrings(parts ...string) Digest {
	h := sha256.New()
	var lenBuf [8]byte
	for _, p := range parts {
		n := uint64(len(p))
		for i := range lenBuf {
			lenBuf[i] = byte(n >> (8 * i)) // #nosec G115 -- byte extraction
		}
		_, _ = h.Write(lenBuf[:])
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Combine folds dependency digests into a content digest. The order of deps
// must be deterministic.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
