package tx

import (
	"bytes"
	"encoding/binary"

	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/types"
)

// TransactionKernel tracks the excess for a transaction: the remainder
// of the sum of all commitments. If the transaction is well formed the
// amount components sum to zero and the excess is a valid public key;
// the excess signature proves knowledge of the corresponding scalar and
// binds the cleartext fee and lock height.
type TransactionKernel struct {
	// Features of the kernel's structure or use.
	Features KernelFeatures
	// Fee originally included in the transaction, in cleartext.
	Fee uint64
	// The transaction is invalid before this block height.
	LockHeight uint64
	// Remainder of the sum of all transaction commitments.
	Excess commitment.Commitment
	// Signature proving the excess is a valid public key, signing the
	// fee and lock height.
	ExcessSig crypto.Signature
}

// VerifySignature recomputes the canonical challenge from the kernel's
// public nonce, fee, and lock height, and checks the excess signature
// against the excess interpreted as a public key. Pure function.
func (k *TransactionKernel) VerifySignature() error {
	challenge := BuildChallenge(k.ExcessSig.PublicNonce(), TransactionMetadata{
		Fee:        k.Fee,
		LockHeight: k.LockHeight,
	})
	if !k.ExcessSig.VerifyChallenge(k.Excess.AsPublicKey(), challenge) {
		return ErrInvalidSignature
	}
	return nil
}

// Hash produces the canonical kernel hash:
// H(feature_bits || fee || lock_height || excess || public_nonce || sig_scalar).
func (k *TransactionKernel) Hash() types.Hash {
	nonce := k.ExcessSig.PublicNonce()
	sig := k.ExcessSig.S()

	buf := make([]byte, 0, 1+8+8+commitment.Size+len(nonce)+len(sig))
	buf = append(buf, byte(k.Features))
	buf = binary.LittleEndian.AppendUint64(buf, k.Fee)
	buf = binary.LittleEndian.AppendUint64(buf, k.LockHeight)
	buf = append(buf, k.Excess[:]...)
	buf = append(buf, nonce[:]...)
	buf = append(buf, sig[:]...)
	return crypto.Hash(buf)
}

// kernelLess is the total order on kernels used for canonical
// serialization.
func kernelLess(a, b TransactionKernel) bool {
	if a.Features != b.Features {
		return a.Features < b.Features
	}
	if a.Fee != b.Fee {
		return a.Fee < b.Fee
	}
	if a.LockHeight != b.LockHeight {
		return a.LockHeight < b.LockHeight
	}
	return bytes.Compare(a.Excess[:], b.Excess[:]) < 0
}

// KernelBuilder stages kernel construction. The metadata fields default
// to their no-effect zero values, but the excess and its signature have
// no safe default: Build fails closed when either is missing rather
// than producing an unsigned, unverifiable kernel.
type KernelBuilder struct {
	features   KernelFeatures
	fee        uint64
	lockHeight uint64
	excess     *commitment.Commitment
	excessSig  *crypto.Signature
}

// NewKernelBuilder creates an empty kernel builder.
func NewKernelBuilder() *KernelBuilder {
	return &KernelBuilder{}
}

// WithFeatures sets the kernel features.
func (b *KernelBuilder) WithFeatures(features KernelFeatures) *KernelBuilder {
	b.features = features
	return b
}

// WithFee sets the kernel fee.
func (b *KernelBuilder) WithFee(fee uint64) *KernelBuilder {
	b.fee = fee
	return b
}

// WithLockHeight sets the kernel lock height.
func (b *KernelBuilder) WithLockHeight(lockHeight uint64) *KernelBuilder {
	b.lockHeight = lockHeight
	return b
}

// WithExcess sets the excess commitment (sum of public spend keys minus
// the offset).
func (b *KernelBuilder) WithExcess(excess commitment.Commitment) *KernelBuilder {
	b.excess = &excess
	return b
}

// WithSignature sets the excess signature.
func (b *KernelBuilder) WithSignature(sig crypto.Signature) *KernelBuilder {
	b.excessSig = &sig
	return b
}

// Build returns the immutable kernel, or ErrNoSignature if the excess
// or excess signature was never supplied.
func (b *KernelBuilder) Build() (TransactionKernel, error) {
	if b.excess == nil || b.excessSig == nil {
		return TransactionKernel{}, ErrNoSignature
	}
	return TransactionKernel{
		Features:   b.features,
		Fee:        b.fee,
		LockHeight: b.lockHeight,
		Excess:     *b.excess,
		ExcessSig:  *b.excessSig,
	}, nil
}
