package crypto

import (
	"bytes"
	"testing"

	"github.com/veilnet/veil-chain/pkg/types"
)

func TestHashDeterministic(t *testing.T) {
	data := []byte("hello veil")
	h1 := Hash(data)
	h2 := Hash(data)
	if h1 != h2 {
		t.Fatal("hash is not deterministic")
	}
	h3 := Hash([]byte("hello veil!"))
	if h1 == h3 {
		t.Fatal("different inputs produced the same hash")
	}
}

func TestHashPartsDomainSeparation(t *testing.T) {
	part := []byte("payload")
	a := HashParts("domain.a", part)
	b := HashParts("domain.b", part)
	if a == b {
		t.Fatal("different domains produced the same hash")
	}
	// Same domain and parts must be stable.
	if a != HashParts("domain.a", part) {
		t.Fatal("HashParts is not deterministic")
	}
}

func TestHashPartsBoundaries(t *testing.T) {
	// Moving a byte across a part boundary changes the concatenation
	// identically, so only the domain tag separates these transcripts.
	a := HashParts("d", []byte("ab"), []byte("c"))
	b := HashParts("d", []byte("a"), []byte("bc"))
	if a != b {
		t.Fatal("expected identical digest for identical concatenation")
	}
}

func TestBlindingFactorRoundTrip(t *testing.T) {
	bf, err := RandomBlindingFactor()
	if err != nil {
		t.Fatalf("RandomBlindingFactor: %v", err)
	}
	if bf.IsZero() {
		t.Fatal("random blinding factor is zero")
	}

	b := bf.Bytes()
	parsed, err := BlindingFactorFromBytes(b[:])
	if err != nil {
		t.Fatalf("BlindingFactorFromBytes: %v", err)
	}
	if !bf.Equal(parsed) {
		t.Fatal("round trip changed the scalar")
	}

	if _, err := BlindingFactorFromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short input")
	}
}

func TestBlindingFactorArithmetic(t *testing.T) {
	a, err := RandomBlindingFactor()
	if err != nil {
		t.Fatalf("RandomBlindingFactor: %v", err)
	}
	b, err := RandomBlindingFactor()
	if err != nil {
		t.Fatalf("RandomBlindingFactor: %v", err)
	}

	// (a + b) - b == a
	if got := a.Add(b).Sub(b); !got.Equal(a) {
		t.Fatal("(a + b) - b != a")
	}
	// a - a == 0
	if !a.Sub(a).IsZero() {
		t.Fatal("a - a != 0")
	}
	// a + 0 == a
	if got := a.Add(ZeroBlindingFactor()); !got.Equal(a) {
		t.Fatal("a + 0 != a")
	}
}

func TestPublicKeyHomomorphism(t *testing.T) {
	a, _ := RandomBlindingFactor()
	b, _ := RandomBlindingFactor()

	// (a+b)*G == a*G + b*G
	sumKey := a.Add(b).PublicKey()

	paKey := a.PublicKey()
	pa, err := ParsePoint(paKey[:])
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	pbKey := b.PublicKey()
	pb, err := ParsePoint(pbKey[:])
	if err != nil {
		t.Fatalf("ParsePoint: %v", err)
	}
	added := AddPoints(&pa, &pb)
	if SerializePoint(&added) != sumKey {
		t.Fatal("point addition does not match scalar addition")
	}
}

func TestZeroScalarMapsToIdentity(t *testing.T) {
	pub := ZeroBlindingFactor().PublicKey()
	if pub != [PointSize]byte{} {
		t.Fatal("zero scalar did not map to the identity encoding")
	}

	p, err := ParsePoint(pub[:])
	if err != nil {
		t.Fatalf("ParsePoint identity: %v", err)
	}
	if !IsInfinity(&p) {
		t.Fatal("identity encoding did not parse to infinity")
	}
}

func TestParsePointRejectsGarbage(t *testing.T) {
	garbage := bytes.Repeat([]byte{0xff}, PointSize)
	if _, err := ParsePoint(garbage); err == nil {
		t.Fatal("expected error for invalid point encoding")
	}
	if _, err := ParsePoint([]byte{0x02}); err == nil {
		t.Fatal("expected error for short encoding")
	}
}

func TestSignAndVerify(t *testing.T) {
	secret, _ := RandomBlindingFactor()
	nonce, _ := RandomBlindingFactor()
	challenge := Hash([]byte("kernel metadata"))

	sig := Sign(secret, nonce, challenge)
	if !sig.VerifyChallenge(secret.PublicKey(), challenge) {
		t.Fatal("valid signature did not verify")
	}
}

func TestVerifyRejectsTamperedChallenge(t *testing.T) {
	secret, _ := RandomBlindingFactor()
	nonce, _ := RandomBlindingFactor()
	challenge := Hash([]byte("original"))

	sig := Sign(secret, nonce, challenge)
	tampered := Hash([]byte("tampered"))
	if sig.VerifyChallenge(secret.PublicKey(), tampered) {
		t.Fatal("signature verified against a different challenge")
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	secret, _ := RandomBlindingFactor()
	other, _ := RandomBlindingFactor()
	nonce, _ := RandomBlindingFactor()
	challenge := Hash([]byte("message"))

	sig := Sign(secret, nonce, challenge)
	if sig.VerifyChallenge(other.PublicKey(), challenge) {
		t.Fatal("signature verified against the wrong public key")
	}
}

func TestVerifyRejectsTamperedScalar(t *testing.T) {
	secret, _ := RandomBlindingFactor()
	nonce, _ := RandomBlindingFactor()
	challenge := Hash([]byte("message"))

	sig := Sign(secret, nonce, challenge)
	s := sig.S()
	s[31] ^= 0x01
	forged := NewSignature(sig.PublicNonce(), s)
	if forged.VerifyChallenge(secret.PublicKey(), challenge) {
		t.Fatal("tampered signature verified")
	}
}

func TestSignatureRoundTrip(t *testing.T) {
	secret, _ := RandomBlindingFactor()
	nonce, _ := RandomBlindingFactor()
	var challenge types.Hash
	challenge[0] = 0x42

	sig := Sign(secret, nonce, challenge)
	rebuilt := NewSignature(sig.PublicNonce(), sig.S())
	if !rebuilt.VerifyChallenge(secret.PublicKey(), challenge) {
		t.Fatal("rebuilt signature did not verify")
	}
}
