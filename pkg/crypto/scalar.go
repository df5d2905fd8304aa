package crypto

import (
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// BlindingFactorSize is the length of a serialized blinding factor in bytes.
const BlindingFactorSize = 32

// ErrInvalidScalar is returned when bytes do not decode to a scalar.
var ErrInvalidScalar = errors.New("invalid scalar encoding")

// BlindingFactor is a secret scalar on the secp256k1 order field. It
// blinds the value inside a Pedersen commitment and doubles as the
// spending key for the output it hides.
type BlindingFactor struct {
	k secp256k1.ModNScalar
}

// RandomBlindingFactor generates a new cryptographically random blinding factor.
func RandomBlindingFactor() (*BlindingFactor, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generate blinding factor: %w", err)
	}
	bf := &BlindingFactor{}
	bf.k.Set(&priv.Key)
	priv.Zero()
	return bf, nil
}

// BlindingFactorFromBytes creates a blinding factor from a 32-byte
// big-endian scalar. Values >= the group order are reduced.
func BlindingFactorFromBytes(b []byte) (*BlindingFactor, error) {
	if len(b) != BlindingFactorSize {
		return nil, fmt.Errorf("%w: need %d bytes, got %d", ErrInvalidScalar, BlindingFactorSize, len(b))
	}
	bf := &BlindingFactor{}
	bf.k.SetByteSlice(b)
	return bf, nil
}

// ZeroBlindingFactor returns the zero scalar.
func ZeroBlindingFactor() *BlindingFactor {
	return &BlindingFactor{}
}

// Bytes returns the 32-byte big-endian encoding of the scalar.
func (bf *BlindingFactor) Bytes() [BlindingFactorSize]byte {
	return bf.k.Bytes()
}

// IsZero reports whether the scalar is zero.
func (bf *BlindingFactor) IsZero() bool {
	return bf.k.IsZero()
}

// Equal reports whether two blinding factors hold the same scalar.
func (bf *BlindingFactor) Equal(other *BlindingFactor) bool {
	return bf.k.Equals(&other.k)
}

// Add returns bf + other (mod n) as a new blinding factor.
func (bf *BlindingFactor) Add(other *BlindingFactor) *BlindingFactor {
	result := &BlindingFactor{}
	result.k.Add2(&bf.k, &other.k)
	return result
}

// Sub returns bf - other (mod n) as a new blinding factor.
func (bf *BlindingFactor) Sub(other *BlindingFactor) *BlindingFactor {
	result := &BlindingFactor{}
	result.k.NegateVal(&other.k)
	result.k.Add(&bf.k)
	return result
}

// Scalar returns a copy of the underlying scalar.
func (bf *BlindingFactor) Scalar() secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	s.Set(&bf.k)
	return s
}

// PublicKey returns the canonical 33-byte encoding of k*G. The zero
// scalar maps to the identity encoding.
func (bf *BlindingFactor) PublicKey() [PointSize]byte {
	p := ScalarBaseMult(&bf.k)
	return SerializePoint(&p)
}

// Zero clears the scalar. Call when the secret is no longer needed.
func (bf *BlindingFactor) Zero() {
	bf.k.Zero()
}
