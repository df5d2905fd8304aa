package crypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PointSize is the length of a serialized curve point in bytes
// (compressed SEC encoding).
const PointSize = 33

// The all-zero encoding is reserved for the group identity. The identity
// has no compressed SEC form, but it shows up naturally here: the zero
// commitment and intermediate sums can land on it.
var infinityEncoding [PointSize]byte

// ErrInvalidPoint is returned when bytes do not decode to a curve point.
var ErrInvalidPoint = errors.New("invalid curve point encoding")

// IsInfinity reports whether the point is the group identity.
func IsInfinity(p *secp256k1.JacobianPoint) bool {
	return (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero()
}

// SerializePoint returns the canonical 33-byte encoding of a point.
// The identity serializes to all zeros.
func SerializePoint(p *secp256k1.JacobianPoint) [PointSize]byte {
	var out [PointSize]byte
	if IsInfinity(p) {
		return out
	}
	affine := *p
	affine.ToAffine()
	pub := secp256k1.NewPublicKey(&affine.X, &affine.Y)
	copy(out[:], pub.SerializeCompressed())
	return out
}

// ParsePoint decodes a canonical 33-byte encoding into a point.
// All zeros decodes to the identity.
func ParsePoint(b []byte) (secp256k1.JacobianPoint, error) {
	var p secp256k1.JacobianPoint
	if len(b) != PointSize {
		return p, ErrInvalidPoint
	}
	if [PointSize]byte(b) == infinityEncoding {
		return p, nil // Zero value is the identity.
	}
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return p, ErrInvalidPoint
	}
	pub.AsJacobian(&p)
	return p, nil
}

// ScalarMult computes k*P, treating the identity correctly (the
// underlying library assumes a finite point).
func ScalarMult(k *secp256k1.ModNScalar, p *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var result secp256k1.JacobianPoint
	if IsInfinity(p) || k.IsZero() {
		return result
	}
	secp256k1.ScalarMultNonConst(k, p, &result)
	return result
}

// ScalarBaseMult computes k*G.
func ScalarBaseMult(k *secp256k1.ModNScalar) secp256k1.JacobianPoint {
	var result secp256k1.JacobianPoint
	if k.IsZero() {
		return result
	}
	secp256k1.ScalarBaseMultNonConst(k, &result)
	return result
}

// AddPoints computes p1 + p2.
func AddPoints(p1, p2 *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(p1, p2, &result)
	return result
}

// NegatePoint returns -p.
func NegatePoint(p *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	result := *p
	if IsInfinity(&result) {
		return result
	}
	result.Y.Normalize()
	result.Y.Negate(1)
	result.Y.Normalize()
	return result
}

// SubPoints computes p1 - p2.
func SubPoints(p1, p2 *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	neg := NegatePoint(p2)
	return AddPoints(p1, &neg)
}

// PointsEqual reports whether two points are the same group element.
func PointsEqual(p1, p2 *secp256k1.JacobianPoint) bool {
	return SerializePoint(p1) == SerializePoint(p2)
}
