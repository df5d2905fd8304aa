package tx

import "errors"

// Transaction errors. Callers test with errors.Is; every failure is a
// permanent rejection of the transaction, never a transient condition.
var (
	// ErrValidation covers balance mismatches, failed range-proof
	// self-checks, and missing builder fields. The wrap message carries
	// the specifics.
	ErrValidation = errors.New("transaction validation failed")

	// ErrInvalidSignature means a kernel excess signature does not
	// verify against the excess public key.
	ErrInvalidSignature = errors.New("kernel signature is invalid")

	// ErrNoSignature means KernelBuilder.Build was invoked without an
	// excess or excess signature. This is a caller error, not a
	// network-received-data error.
	ErrNoSignature = errors.New("kernel has no excess signature")

	// ErrRangeProof wraps failures from the range-proof primitive
	// (construction or verifier-setup failures).
	ErrRangeProof = errors.New("range proof error")
)
