// Package crypto provides the cryptographic primitives for Veil:
// BLAKE3 hashing, secp256k1 scalar and point arithmetic, and Schnorr
// signatures with an explicit public nonce.
package crypto

import (
	"github.com/veilnet/veil-chain/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// DoubleHash computes Hash(Hash(data)).
func DoubleHash(data []byte) types.Hash {
	first := Hash(data)
	return Hash(first[:])
}

// HashConcat hashes the concatenation of two hashes.
// Used for building merkle trees.
func HashConcat(a, b types.Hash) types.Hash {
	var buf [64]byte
	copy(buf[:32], a[:])
	copy(buf[32:], b[:])
	return Hash(buf[:])
}

// HashParts hashes the concatenation of the given byte slices with a
// leading domain-separation tag. The tag keeps challenge hashes for
// different protocols from colliding.
func HashParts(domain string, parts ...[]byte) types.Hash {
	h := blake3.New()
	h.Write([]byte(domain))
	for _, p := range parts {
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}
