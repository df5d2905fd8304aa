package wallet

import (
	"errors"
	"fmt"

	"github.com/veilnet/veil-chain/internal/log"
	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/crypto"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
	"github.com/veilnet/veil-chain/pkg/tx"
)

// Sender errors.
var (
	ErrUnbalanced = errors.New("input values do not equal output values plus fee")
	ErrNoSpends   = errors.New("transaction spends no outputs")
)

// Sender assembles fully signed confidential transactions from unblinded
// outputs the caller owns. It holds the commitment basis and a prover at
// the configured range width; both are pure data and safe to share.
type Sender struct {
	factory *commitment.Factory
	prover  *rangeproof.Service
}

// NewSender creates a sender proving ranges at the given bit width.
func NewSender(bits int) (*Sender, error) {
	factory := commitment.NewFactory()
	prover, err := rangeproof.New(bits, factory)
	if err != nil {
		return nil, fmt.Errorf("create prover: %w", err)
	}
	return &Sender{factory: factory, prover: prover}, nil
}

// BuildTransaction spends the given unblinded outputs into the given
// new unblinded outputs, paying fee and locking until lockHeight.
//
// It picks a random kernel offset, computes the true excess
// x = sum(output keys) - sum(input keys) - offset, signs the kernel
// challenge with x, and drives the kernel and transaction builders to a
// validated transaction. Value conservation is checked up front: the
// resulting transaction could never validate without it.
func (s *Sender) BuildTransaction(spends, creates []tx.UnblindedOutput, fee, lockHeight uint64) (*tx.Transaction, error) {
	if len(spends) == 0 {
		return nil, ErrNoSpends
	}
	var inTotal, outTotal uint64
	for _, u := range spends {
		inTotal += u.Value
	}
	for _, u := range creates {
		outTotal += u.Value
	}
	if outTotal+fee != inTotal {
		return nil, fmt.Errorf("%w: in %d, out %d, fee %d", ErrUnbalanced, inTotal, outTotal, fee)
	}

	inputs := make([]tx.TransactionInput, 0, len(spends))
	excess := crypto.ZeroBlindingFactor()
	for i := range spends {
		inputs = append(inputs, spends[i].Input(s.factory))
		excess = excess.Sub(spends[i].SpendingKey)
	}

	outputs := make([]tx.TransactionOutput, 0, len(creates))
	for i := range creates {
		out, err := creates[i].Output(s.factory, s.prover)
		if err != nil {
			return nil, fmt.Errorf("build output %d: %w", i, err)
		}
		outputs = append(outputs, out)
		excess = excess.Add(creates[i].SpendingKey)
	}

	offset, err := crypto.RandomBlindingFactor()
	if err != nil {
		return nil, fmt.Errorf("generate offset: %w", err)
	}
	excess = excess.Sub(offset)

	kernel, err := s.signKernel(excess, fee, lockHeight)
	if err != nil {
		return nil, err
	}

	transaction, err := tx.NewTransactionBuilder().
		WithOffset(offset).
		AddInputs(&inputs).
		AddOutputs(&outputs).
		WithKernel(kernel).
		WithCommitmentFactory(s.factory).
		WithRangeProofService(s.prover).
		Build()
	if err != nil {
		return nil, err
	}

	log.Wallet.Debug().
		Int("inputs", len(transaction.Body.Inputs)).
		Int("outputs", len(transaction.Body.Outputs)).
		Uint64("fee", fee).
		Str("kernel", kernel.Hash().String()).
		Msg("built transaction")
	return transaction, nil
}

// signKernel signs the kernel challenge with the excess scalar and
// assembles the kernel.
func (s *Sender) signKernel(excess *crypto.BlindingFactor, fee, lockHeight uint64) (tx.TransactionKernel, error) {
	nonce, err := crypto.RandomBlindingFactor()
	if err != nil {
		return tx.TransactionKernel{}, fmt.Errorf("generate nonce: %w", err)
	}

	meta := tx.TransactionMetadata{Fee: fee, LockHeight: lockHeight}
	challenge := tx.BuildChallenge(nonce.PublicKey(), meta)
	sig := crypto.Sign(excess, nonce, challenge)

	excessPub := excess.PublicKey()
	excessCommit, err := s.factory.FromPublicKey(excessPub[:])
	if err != nil {
		return tx.TransactionKernel{}, fmt.Errorf("excess commitment: %w", err)
	}

	return tx.NewKernelBuilder().
		WithFee(fee).
		WithLockHeight(lockHeight).
		WithExcess(excessCommit).
		WithSignature(sig).
		Build()
}
