package commitment

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/veilnet/veil-chain/pkg/crypto"
)

// generatorH is the second Pedersen generator. It is derived by hashing
// the compressed encoding of G and decompressing the digest as an
// x-coordinate, retrying on misses, so nobody knows its discrete log
// with respect to G (nothing-up-my-sleeve).
var generatorH secp256k1.JacobianPoint

func init() {
	one := new(secp256k1.ModNScalar).SetInt(1)
	g := crypto.ScalarBaseMult(one)
	seed := crypto.SerializePoint(&g)

	digest := crypto.Hash(seed[:])
	candidate := make([]byte, crypto.PointSize)
	candidate[0] = 0x02
	for {
		copy(candidate[1:], digest[:])
		pub, err := secp256k1.ParsePubKey(candidate)
		if err == nil {
			pub.AsJacobian(&generatorH)
			return
		}
		// Not a valid x-coordinate; hash again and retry.
		digest = crypto.Hash(digest[:])
	}
}

// GeneratorH returns a copy of the second Pedersen generator. The range
// proof service needs it to form per-bit statements on the same basis.
func GeneratorH() secp256k1.JacobianPoint {
	return generatorH
}
