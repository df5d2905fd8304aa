// Package rangeproof implements zero-knowledge range proofs for Pedersen
// commitments: a proof that C = k*G + v*H commits to a value v in
// [0, 2^bits) without revealing v.
//
// The construction is a bit decomposition. The prover commits to each of
// the low `bits` bits of v with C_i = r_i*G + b_i*2^i*H, choosing the
// r_i so they sum to k, and attaches a two-branch Schnorr OR-proof per
// bit showing C_i commits to either 0 or 2^i. The verifier checks every
// OR-proof and that the C_i sum back to C. A prover holding a value
// outside the range can still produce a well-formed proof object (only
// the low bits are committed), but the sum check then fails, so the
// proof does not verify.
package rangeproof

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
)

// Range proof errors.
var (
	ErrInvalidBitLength = errors.New("range proof bit length must be between 1 and 64")
	ErrNilBlindingKey   = errors.New("range proof requires a blinding key")
)

// challengeDomain tags the Fiat-Shamir transcript of per-bit OR-proofs.
const challengeDomain = "veil.rangeproof.v1"

// bitProofSize is the serialized size of one per-bit proof:
// C_i (33) followed by the OR-proof scalars c0, c1, s0, s1 (32 each).
const bitProofSize = crypto.PointSize + 4*32

// Proof is an opaque serialized range proof.
type Proof []byte

// Bytes returns the raw proof bytes.
func (p Proof) Bytes() []byte {
	return p
}

// Service constructs and verifies range proofs for a fixed bit width
// over a fixed commitment basis. Setup parameters are pure data: a
// Service may be built once and shared by concurrent verifiers.
type Service struct {
	bits    int
	factory *commitment.Factory
}

// New creates a range proof service covering [0, 2^bits). A nil factory
// uses the default commitment basis.
func New(bits int, factory *commitment.Factory) (*Service, error) {
	if bits < 1 || bits > 64 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBitLength, bits)
	}
	if factory == nil {
		factory = commitment.NewFactory()
	}
	return &Service{bits: bits, factory: factory}, nil
}

// Bits returns the bit width the service proves against.
func (s *Service) Bits() int {
	return s.bits
}

// ProofSize returns the serialized proof size for this service's width.
func (s *Service) ProofSize() int {
	return s.bits * bitProofSize
}

// ConstructProof builds a range proof for the opening (blind, value).
//
// Only the low Bits() bits of value are committed. Construction does not
// reject out-of-range values; the mandatory verification step does. This
// mirrors the behavior of the commitment scheme: a proof object can be
// well formed and still not verify.
func (s *Service) ConstructProof(blind *crypto.BlindingFactor, value uint64) (Proof, error) {
	if blind == nil {
		return nil, ErrNilBlindingKey
	}

	// Split the blinding factor across the bit commitments so that the
	// per-bit blinds sum to it.
	blinds := make([]*crypto.BlindingFactor, s.bits)
	remainder := blind
	for i := 0; i < s.bits-1; i++ {
		r, err := crypto.RandomBlindingFactor()
		if err != nil {
			return nil, fmt.Errorf("split blinding factor: %w", err)
		}
		blinds[i] = r
		remainder = remainder.Sub(r)
	}
	blinds[s.bits-1] = remainder

	proof := make(Proof, 0, s.ProofSize())
	for i := 0; i < s.bits; i++ {
		bit := (value >> uint(i)) & 1
		bp, err := s.proveBit(i, bit, blinds[i])
		if err != nil {
			return nil, err
		}
		proof = append(proof, bp...)
	}
	return proof, nil
}

// Verify checks the proof against the commitment. It returns false, and
// never panics, on malformed proof bytes.
func (s *Service) Verify(proof Proof, c commitment.Commitment) bool {
	if len(proof) != s.ProofSize() {
		return false
	}

	sum := s.factory.Zero()
	for i := 0; i < s.bits; i++ {
		bp := proof[i*bitProofSize : (i+1)*bitProofSize]
		bitCommit, ok := s.verifyBit(i, bp)
		if !ok {
			return false
		}
		sum = s.factory.Add(sum, bitCommit)
	}

	// The bit commitments must reassemble the commitment being proven.
	return sum == c
}

// proveBit builds the commitment and OR-proof for bit index i.
//
// The two statements are P0 = C_i and P1 = C_i - 2^i*H; the prover knows
// the discrete log (the blind r) of exactly one of them with respect to
// G and simulates the other branch (standard CDS OR-proof).
func (s *Service) proveBit(i int, bit uint64, blind *crypto.BlindingFactor) ([]byte, error) {
	c := s.factory.Commit(bit<<uint(i), blind)
	p0, _ := crypto.ParsePoint(c[:])
	p1 := subWeightedH(&p0, i)

	nonce, err := randomScalar()
	if err != nil {
		return nil, err
	}
	cSim, err := randomScalar()
	if err != nil {
		return nil, err
	}
	sSim, err := randomScalar()
	if err != nil {
		return nil, err
	}

	witness := blind.Scalar()
	var c0, c1, s0, s1 secp256k1.ModNScalar
	realR := crypto.ScalarBaseMult(nonce)

	if bit == 0 {
		// Real branch P0, simulated branch P1.
		c1.Set(cSim)
		s1.Set(sSim)
		simR := schnorrRecompute(&s1, &c1, &p1)
		e := bitChallenge(i, c, &realR, &simR)
		c0.NegateVal(&c1)
		c0.Add(&e)
		s0.Mul2(&c0, &witness).Add(nonce)
	} else {
		// Real branch P1, simulated branch P0.
		c0.Set(cSim)
		s0.Set(sSim)
		simR := schnorrRecompute(&s0, &c0, &p0)
		e := bitChallenge(i, c, &simR, &realR)
		c1.NegateVal(&c0)
		c1.Add(&e)
		s1.Mul2(&c1, &witness).Add(nonce)
	}

	out := make([]byte, 0, bitProofSize)
	out = append(out, c[:]...)
	out = appendScalar(out, &c0)
	out = appendScalar(out, &c1)
	out = appendScalar(out, &s0)
	out = appendScalar(out, &s1)
	return out, nil
}

// verifyBit checks one per-bit OR-proof and returns the bit commitment.
func (s *Service) verifyBit(i int, bp []byte) (commitment.Commitment, bool) {
	bitCommit, err := commitment.FromBytes(bp[:crypto.PointSize])
	if err != nil {
		return commitment.Commitment{}, false
	}

	var c0, c1, s0, s1 secp256k1.ModNScalar
	rest := bp[crypto.PointSize:]
	if c0.SetByteSlice(rest[0:32]) || c1.SetByteSlice(rest[32:64]) ||
		s0.SetByteSlice(rest[64:96]) || s1.SetByteSlice(rest[96:128]) {
		return commitment.Commitment{}, false // Non-canonical scalar.
	}

	p0, _ := crypto.ParsePoint(bitCommit[:])
	p1 := subWeightedH(&p0, i)

	r0 := schnorrRecompute(&s0, &c0, &p0)
	r1 := schnorrRecompute(&s1, &c1, &p1)
	e := bitChallenge(i, bitCommit, &r0, &r1)

	var cSum secp256k1.ModNScalar
	cSum.Add2(&c0, &c1)
	if !cSum.Equals(&e) {
		return commitment.Commitment{}, false
	}
	return bitCommit, true
}

// schnorrRecompute returns R = s*G - c*P, the nonce commitment implied
// by a response scalar for the statement P = x*G.
func schnorrRecompute(sc, ch *secp256k1.ModNScalar, p *secp256k1.JacobianPoint) secp256k1.JacobianPoint {
	sg := crypto.ScalarBaseMult(sc)
	cp := crypto.ScalarMult(ch, p)
	return crypto.SubPoints(&sg, &cp)
}

// subWeightedH returns p - 2^i*H.
func subWeightedH(p *secp256k1.JacobianPoint, i int) secp256k1.JacobianPoint {
	var weight secp256k1.ModNScalar
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], 1<<uint(i))
	weight.SetByteSlice(buf[:])

	h := commitment.GeneratorH()
	wh := crypto.ScalarMult(&weight, &h)
	return crypto.SubPoints(p, &wh)
}

// bitChallenge derives the Fiat-Shamir challenge for bit index i.
func bitChallenge(i int, c commitment.Commitment, r0, r1 *secp256k1.JacobianPoint) secp256k1.ModNScalar {
	var idx [4]byte
	binary.LittleEndian.PutUint32(idx[:], uint32(i))
	r0b := crypto.SerializePoint(r0)
	r1b := crypto.SerializePoint(r1)
	digest := crypto.HashParts(challengeDomain, idx[:], c[:], r0b[:], r1b[:])

	var e secp256k1.ModNScalar
	e.SetByteSlice(digest[:])
	return e
}

// randomScalar returns a uniformly random nonzero scalar.
func randomScalar() (*secp256k1.ModNScalar, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("random scalar: %w", err)
	}
	var s secp256k1.ModNScalar
	s.Set(&priv.Key)
	priv.Zero()
	return &s, nil
}

func appendScalar(buf []byte, s *secp256k1.ModNScalar) []byte {
	b := s.Bytes()
	return append(buf, b[:]...)
}
