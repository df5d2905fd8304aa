// Package commitment implements homomorphic Pedersen commitments over
// secp256k1: C = k*G + v*H, where k is a blinding factor, v a 64-bit
// value, G the curve base point, and H a second generator with unknown
// discrete log. Commitments to different values add to the commitment
// of the summed value and summed blinding factor, which is what the
// transaction balance proof relies on.
package commitment

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/veilnet/veil-chain/pkg/crypto"
)

// Size is the length of a serialized commitment in bytes.
const Size = crypto.PointSize

// Commitment is the canonical 33-byte encoding of a commitment point.
// The zero value is the group identity (the commitment to value 0 with
// blinding factor 0). Equality of commitments is byte equality.
type Commitment [Size]byte

// FromBytes parses a commitment from its canonical encoding.
func FromBytes(b []byte) (Commitment, error) {
	var c Commitment
	if len(b) != Size {
		return c, fmt.Errorf("commitment must be %d bytes, got %d", Size, len(b))
	}
	if _, err := crypto.ParsePoint(b); err != nil {
		return c, fmt.Errorf("parse commitment: %w", err)
	}
	copy(c[:], b)
	return c, nil
}

// Bytes returns a copy of the commitment encoding.
func (c Commitment) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, c[:])
	return b
}

// IsZero reports whether the commitment is the identity.
func (c Commitment) IsZero() bool {
	return c == Commitment{}
}

// String returns the hex-encoded commitment.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// AsPublicKey reinterprets the commitment point as a public key. A
// commitment to value zero is k*G, which is exactly the public key of
// the scalar k; the kernel excess is verified this way.
func (c Commitment) AsPublicKey() [crypto.PointSize]byte {
	return [crypto.PointSize]byte(c)
}

// Factory creates and combines Pedersen commitments over a fixed basis
// (G, H). It is stateless pure data and safe for concurrent use.
type Factory struct{}

// NewFactory returns a commitment factory over the default basis.
func NewFactory() *Factory {
	return &Factory{}
}

// Commit computes k*G + v*H. A nil blinding factor commits with the
// zero scalar, giving the value-only commitment v*H.
func (f *Factory) Commit(value uint64, blind *crypto.BlindingFactor) Commitment {
	var kG secp256k1.JacobianPoint
	if blind != nil {
		k := blind.Scalar()
		kG = crypto.ScalarBaseMult(&k)
	}
	v := valueScalar(value)
	vH := crypto.ScalarMult(&v, &generatorH)
	sum := crypto.AddPoints(&kG, &vH)
	return Commitment(crypto.SerializePoint(&sum))
}

// Zero returns the identity commitment, the neutral element of Add.
func (f *Factory) Zero() Commitment {
	return Commitment{}
}

// FromPublicKey wraps a public-key point as the commitment k*G, i.e.
// the commitment to value zero under the secret key's scalar.
func (f *Factory) FromPublicKey(pub []byte) (Commitment, error) {
	return FromBytes(pub)
}

// Open reports whether the commitment opens to (value, blind).
func (f *Factory) Open(c Commitment, value uint64, blind *crypto.BlindingFactor) bool {
	return f.Commit(value, blind) == c
}

// Add returns a + b in the commitment group.
//
// Operands must be canonical encodings (anything produced by this
// package is); a corrupt operand degrades to the identity.
func (f *Factory) Add(a, b Commitment) Commitment {
	pa, _ := crypto.ParsePoint(a[:])
	pb, _ := crypto.ParsePoint(b[:])
	sum := crypto.AddPoints(&pa, &pb)
	return Commitment(crypto.SerializePoint(&sum))
}

// Sub returns a - b in the commitment group.
func (f *Factory) Sub(a, b Commitment) Commitment {
	pa, _ := crypto.ParsePoint(a[:])
	pb, _ := crypto.ParsePoint(b[:])
	diff := crypto.SubPoints(&pa, &pb)
	return Commitment(crypto.SerializePoint(&diff))
}

// Sum folds the commitments with Add, seeded with the identity. The
// group is commutative, so the result does not depend on order.
func (f *Factory) Sum(cs []Commitment) Commitment {
	sum := f.Zero()
	for _, c := range cs {
		sum = f.Add(sum, c)
	}
	return sum
}

// valueScalar encodes a uint64 value as a scalar.
func valueScalar(value uint64) secp256k1.ModNScalar {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], value)
	var s secp256k1.ModNScalar
	s.SetByteSlice(buf[:])
	return s
}
