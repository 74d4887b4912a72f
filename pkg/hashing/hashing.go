// The hashing package maps integer and string keys to well distributed,
// reproducible 64-bit values. It is used to pick pseudo-random edge targets
// that every worker (and every run) agrees on.
//
// The value of a key is the first 8 bytes of the SHA-1 digest of its
// encoding, read as a big-endian signed integer. Integers are encoded as
// 8 big-endian bytes, strings as their UTF-8 bytes (invalid sequences as '?').
package hashing

import (
	"crypto"
	_ "crypto/sha1"
	"encoding/binary"
	"hash"
	"log"
	"strings"
	"sync"
	"unicode/utf8"
)

// Algorithm is the digest used by every Hasher.
const Algorithm = crypto.SHA1

func init() {
	if !Algorithm.Available() {
		log.Fatalf("ERROR: hash algorithm %v is not linked into the binary", Algorithm)
	}
}

// Hasher holds the digest scratch space of one worker.
// It must not be used by more than one goroutine at a time.
type Hasher struct {
	digest hash.Hash
	key    [8]byte
	sum    []byte
}

// NewHasher() returns a Hasher. The digest is created on first use.
func NewHasher() *Hasher {
	return &Hasher{}
}

// Int64() returns the hash of the 8-byte big-endian encoding of key.
func (h *Hasher) Int64(key int64) int64 {
	binary.BigEndian.PutUint64(h.key[:], uint64(key))
	return h.Bytes(h.key[:])
}

// String() returns the hash of the UTF-8 encoding of key. Every run of
// invalid UTF-8 bytes is encoded as a single '?', like other clients of the
// graph encode malformed text.
func (h *Hasher) String(key string) int64 {
	if !utf8.ValidString(key) {
		key = strings.ToValidUTF8(key, "?")
	}
	return h.Bytes([]byte(key))
}

// Bytes() resets the digest, feeds it data and reduces the digest to an int64.
func (h *Hasher) Bytes(data []byte) int64 {
	if h.digest == nil {
		h.digest = Algorithm.New()
	}

	h.digest.Reset()
	h.digest.Write(data)
	h.sum = h.digest.Sum(h.sum[:0])
	return int64(binary.BigEndian.Uint64(h.sum[:8]))
}

// each caller of the package functions borrows its own Hasher.
var hashers = sync.Pool{
	New: func() any { return NewHasher() },
}

// Hash() returns the hash of the 8-byte big-endian encoding of key.
func Hash(key int64) int64 {
	h := hashers.Get().(*Hasher)
	defer hashers.Put(h)
	return h.Int64(key)
}

// HashString() returns the hash of the UTF-8 encoding of key.
func HashString(key string) int64 {
	h := hashers.Get().(*Hasher)
	defer hashers.Put(h)
	return h.String(key)
}

// HashBytes() returns the hash of data.
func HashBytes(data []byte) int64 {
	h := hashers.Get().(*Hasher)
	defer hashers.Put(h)
	return h.Bytes(data)
}
