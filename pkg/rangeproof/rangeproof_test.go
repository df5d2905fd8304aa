package rangeproof

import (
	"errors"
	"testing"

	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
)

const testBits = 32

func newTestService(t *testing.T) (*Service, *commitment.Factory) {
	t.Helper()
	factory := commitment.NewFactory()
	svc, err := New(testBits, factory)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, factory
}

func mustBlind(t *testing.T) *crypto.BlindingFactor {
	t.Helper()
	bf, err := crypto.RandomBlindingFactor()
	if err != nil {
		t.Fatalf("RandomBlindingFactor: %v", err)
	}
	return bf
}

func TestNewRejectsBadWidth(t *testing.T) {
	for _, bits := range []int{0, -1, 65} {
		if _, err := New(bits, nil); !errors.Is(err, ErrInvalidBitLength) {
			t.Fatalf("bits=%d: expected ErrInvalidBitLength, got %v", bits, err)
		}
	}
	if _, err := New(64, nil); err != nil {
		t.Fatalf("bits=64: %v", err)
	}
}

func TestProofRoundTrip(t *testing.T) {
	svc, factory := newTestService(t)

	for _, value := range []uint64{0, 1, 12345, 1<<testBits - 1} {
		blind := mustBlind(t)
		proof, err := svc.ConstructProof(blind, value)
		if err != nil {
			t.Fatalf("ConstructProof(%d): %v", value, err)
		}
		if len(proof) != svc.ProofSize() {
			t.Fatalf("proof size %d, want %d", len(proof), svc.ProofSize())
		}
		c := factory.Commit(value, blind)
		if !svc.Verify(proof, c) {
			t.Fatalf("valid proof for %d did not verify", value)
		}
	}
}

func TestOutOfRangeConstructsButFailsVerify(t *testing.T) {
	svc, factory := newTestService(t)
	blind := mustBlind(t)

	// One past the range boundary. Construction must succeed; only
	// verification against the true commitment catches the overflow.
	value := uint64(1<<testBits) + 1
	proof, err := svc.ConstructProof(blind, value)
	if err != nil {
		t.Fatalf("ConstructProof out of range: %v", err)
	}
	c := factory.Commit(value, blind)
	if svc.Verify(proof, c) {
		t.Fatal("out-of-range proof verified")
	}
}

func TestVerifyRejectsWrongCommitment(t *testing.T) {
	svc, factory := newTestService(t)
	blind := mustBlind(t)

	proof, err := svc.ConstructProof(blind, 777)
	if err != nil {
		t.Fatalf("ConstructProof: %v", err)
	}
	if svc.Verify(proof, factory.Commit(778, blind)) {
		t.Fatal("proof verified against the wrong value")
	}
	if svc.Verify(proof, factory.Commit(777, mustBlind(t))) {
		t.Fatal("proof verified against the wrong blind")
	}
}

func TestVerifyRejectsCorruptProof(t *testing.T) {
	svc, factory := newTestService(t)
	blind := mustBlind(t)

	proof, err := svc.ConstructProof(blind, 4242)
	if err != nil {
		t.Fatalf("ConstructProof: %v", err)
	}
	c := factory.Commit(4242, blind)

	// Flip one byte in each region of the first bit proof: the bit
	// commitment, a challenge scalar, and a response scalar.
	for _, idx := range []int{0, crypto.PointSize + 1, crypto.PointSize + 70} {
		corrupt := make(Proof, len(proof))
		copy(corrupt, proof)
		corrupt[idx] ^= 0x01
		if svc.Verify(corrupt, c) {
			t.Fatalf("corrupt proof (byte %d) verified", idx)
		}
	}

	if svc.Verify(proof[:len(proof)-1], c) {
		t.Fatal("truncated proof verified")
	}
	if svc.Verify(nil, c) {
		t.Fatal("empty proof verified")
	}
}

func TestConstructProofNilBlind(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ConstructProof(nil, 1); !errors.Is(err, ErrNilBlindingKey) {
		t.Fatalf("expected ErrNilBlindingKey, got %v", err)
	}
}

func TestWidthMismatchRejected(t *testing.T) {
	factory := commitment.NewFactory()
	narrow, err := New(8, factory)
	if err != nil {
		t.Fatalf("New narrow: %v", err)
	}
	wide, err := New(16, factory)
	if err != nil {
		t.Fatalf("New wide: %v", err)
	}

	blind := mustBlind(t)
	proof, err := narrow.ConstructProof(blind, 200)
	if err != nil {
		t.Fatalf("ConstructProof: %v", err)
	}
	// A proof at one width never verifies under a service at another.
	if wide.Verify(proof, factory.Commit(200, blind)) {
		t.Fatal("narrow proof verified under wide service")
	}
}
