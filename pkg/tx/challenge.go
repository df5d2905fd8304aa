package tx

import (
	"encoding/binary"

	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/types"
)

// TransactionMetadata is the cleartext kernel data bound into the excess
// signature challenge.
type TransactionMetadata struct {
	Fee        uint64
	LockHeight uint64
}

// challengeDomain tags kernel signature challenges.
const challengeDomain = "veil.kernel.challenge.v1"

// BuildChallenge derives the canonical Schnorr challenge for a kernel
// signature: BLAKE3 over the public nonce and the metadata fields in
// fixed-width little-endian. Signer and verifier must agree on this
// byte layout exactly.
func BuildChallenge(publicNonce [crypto.PointSize]byte, meta TransactionMetadata) types.Hash {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], meta.Fee)
	binary.LittleEndian.PutUint64(buf[8:], meta.LockHeight)
	return crypto.HashParts(challengeDomain, publicNonce[:], buf[:])
}
