package crypto

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/veilnet/veil-chain/pkg/types"
)

// Signature is a Schnorr signature with an explicit public nonce:
// s = r + e*k over secp256k1, where e is a challenge scalar the caller
// derives from the public nonce plus whatever metadata is being signed.
// Unlike BIP340, the nonce point is carried in full so verifiers can
// recompute the challenge from it.
type Signature struct {
	nonce [PointSize]byte
	s     secp256k1.ModNScalar
}

// Sign produces a signature over the given challenge with the secret
// scalar and a fresh secret nonce. The caller must never reuse a nonce
// with a different challenge for the same key.
func Sign(secret, nonce *BlindingFactor, challenge types.Hash) Signature {
	e := challengeScalar(challenge)

	// s = r + e*k
	var s secp256k1.ModNScalar
	k := secret.Scalar()
	r := nonce.Scalar()
	s.Mul2(&e, &k).Add(&r)

	return Signature{
		nonce: nonce.PublicKey(),
		s:     s,
	}
}

// NewSignature assembles a signature from its serialized parts.
func NewSignature(publicNonce [PointSize]byte, s [32]byte) Signature {
	sig := Signature{nonce: publicNonce}
	sig.s.SetByteSlice(s[:])
	return sig
}

// PublicNonce returns the 33-byte encoding of the public nonce R.
func (sig *Signature) PublicNonce() [PointSize]byte {
	return sig.nonce
}

// S returns the 32-byte big-endian encoding of the signature scalar.
func (sig *Signature) S() [32]byte {
	return sig.s.Bytes()
}

// VerifyChallenge checks s*G == R + e*P for the public key P given as a
// canonical 33-byte point encoding. Returns false on any malformed input.
func (sig *Signature) VerifyChallenge(pubKey [PointSize]byte, challenge types.Hash) bool {
	p, err := ParsePoint(pubKey[:])
	if err != nil {
		return false
	}
	r, err := ParsePoint(sig.nonce[:])
	if err != nil {
		return false
	}

	e := challengeScalar(challenge)

	lhs := ScalarBaseMult(&sig.s)
	ep := ScalarMult(&e, &p)
	rhs := AddPoints(&r, &ep)
	return PointsEqual(&lhs, &rhs)
}

// challengeScalar reduces a challenge hash to a scalar mod n.
func challengeScalar(challenge types.Hash) secp256k1.ModNScalar {
	var e secp256k1.ModNScalar
	e.SetByteSlice(challenge[:])
	return e
}
