// Package mempool manages pending confidential transactions waiting for
// block inclusion.
package mempool

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/veilnet/veil-chain/config"
	"github.com/veilnet/veil-chain/internal/log"
	"github.com/veilnet/veil-chain/pkg/commitment"
	"github.com/veilnet/veil-chain/pkg/rangeproof"
	"github.com/veilnet/veil-chain/pkg/tx"
	"github.com/veilnet/veil-chain/pkg/types"
)

// Mempool errors.
var (
	ErrAlreadyExists  = errors.New("transaction already in mempool")
	ErrConflict       = errors.New("transaction conflicts with existing mempool entry")
	ErrPoolFull       = errors.New("mempool is full")
	ErrValidation     = errors.New("transaction failed validation")
	ErrFeeTooLow      = errors.New("transaction fee below minimum")
	ErrTooManyInputs  = errors.New("too many inputs")
	ErrTooManyOutputs = errors.New("too many outputs")
	ErrNoKernel       = errors.New("transaction has no kernel")
)

// entry wraps a transaction with its precomputed metadata.
type entry struct {
	tx         *tx.Transaction
	kernelHash types.Hash
	fee        uint64
}

// Pool holds unconfirmed transactions. All cryptographic validation
// runs against one shared commitment factory and range-proof verifier:
// their setup parameters are pure data, so concurrent Add calls only
// need the pool mutex for the maps, not for the verifier.
type Pool struct {
	mu      sync.RWMutex
	txs     map[types.Hash]*entry                 // kernel hash -> entry
	spends  map[commitment.Commitment]types.Hash  // input commitment -> kernel hash (conflict index)
	maxSize int

	params   config.Params
	factory  *commitment.Factory
	verifier *rangeproof.Service
}

// New creates a mempool enforcing the given policy parameters. The
// shared range-proof verifier is built once here and reused for every
// transaction the pool ever validates.
func New(params config.Params, maxSize int) (*Pool, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("mempool params: %w", err)
	}
	if maxSize <= 0 {
		maxSize = 5000
	}
	factory := commitment.NewFactory()
	verifier, err := rangeproof.New(params.RangeProofBits, factory)
	if err != nil {
		return nil, fmt.Errorf("mempool verifier: %w", err)
	}
	return &Pool{
		txs:      make(map[types.Hash]*entry),
		spends:   make(map[commitment.Commitment]types.Hash),
		maxSize:  maxSize,
		params:   params,
		factory:  factory,
		verifier: verifier,
	}, nil
}

// Add validates and adds a transaction to the mempool. Returns the
// total kernel fee. Rejects duplicates, double-spend conflicts, policy
// violations, and anything failing internal consistency.
func (p *Pool) Add(transaction *tx.Transaction) (uint64, error) {
	if len(transaction.Body.Kernels) == 0 {
		return 0, ErrNoKernel
	}
	if len(transaction.Body.Inputs) > p.params.MaxTxInputs {
		return 0, fmt.Errorf("%w: %d inputs, max %d", ErrTooManyInputs, len(transaction.Body.Inputs), p.params.MaxTxInputs)
	}
	if len(transaction.Body.Outputs) > p.params.MaxTxOutputs {
		return 0, fmt.Errorf("%w: %d outputs, max %d", ErrTooManyOutputs, len(transaction.Body.Outputs), p.params.MaxTxOutputs)
	}

	fee := transaction.TotalFees()
	if fee < p.params.MinimumFee {
		return 0, fmt.Errorf("%w: got %d, need %d", ErrFeeTooLow, fee, p.params.MinimumFee)
	}

	// The expensive part runs outside the lock: validation is pure and
	// the shared verifier needs no synchronization.
	if err := transaction.ValidateInternalConsistency(p.factory, p.verifier); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	kernelHash := transaction.Body.Kernels[0].Hash()

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.txs[kernelHash]; exists {
		return 0, ErrAlreadyExists
	}

	// Check for double-spend conflicts on input commitments.
	for i := range transaction.Body.Inputs {
		c := transaction.Body.Inputs[i].Commitment
		if conflictHash, exists := p.spends[c]; exists {
			return 0, fmt.Errorf("%w: input %s already spent by %s", ErrConflict, c, conflictHash)
		}
	}

	// Check pool capacity; evict the lowest-fee entry if the new
	// transaction pays more.
	if len(p.txs) >= p.maxSize {
		lowestHash, lowestFee := p.findLowestFee()
		if fee <= lowestFee {
			return 0, ErrPoolFull
		}
		p.removeLocked(lowestHash)
		log.Mempool.Debug().
			Str("evicted", lowestHash.String()).
			Uint64("evicted_fee", lowestFee).
			Msg("evicted lowest-fee transaction")
	}

	e := &entry{
		tx:         transaction,
		kernelHash: kernelHash,
		fee:        fee,
	}
	p.txs[kernelHash] = e
	for i := range transaction.Body.Inputs {
		p.spends[transaction.Body.Inputs[i].Commitment] = kernelHash
	}

	log.Mempool.Debug().
		Str("kernel", kernelHash.String()).
		Uint64("fee", fee).
		Int("pool_size", len(p.txs)).
		Msg("accepted transaction")
	return fee, nil
}

// Remove removes a transaction from the mempool by kernel hash.
func (p *Pool) Remove(kernelHash types.Hash) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeLocked(kernelHash)
}

func (p *Pool) removeLocked(kernelHash types.Hash) {
	e, exists := p.txs[kernelHash]
	if !exists {
		return
	}
	for i := range e.tx.Body.Inputs {
		delete(p.spends, e.tx.Body.Inputs[i].Commitment)
	}
	delete(p.txs, kernelHash)
}

// RemoveConfirmed removes all transactions that were included in a block.
func (p *Pool) RemoveConfirmed(transactions []*tx.Transaction) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range transactions {
		for i := range t.Body.Kernels {
			p.removeLocked(t.Body.Kernels[i].Hash())
		}
	}
}

// Has checks if a transaction exists in the mempool.
func (p *Pool) Has(kernelHash types.Hash) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.txs[kernelHash]
	return exists
}

// Get retrieves a transaction from the mempool.
func (p *Pool) Get(kernelHash types.Hash) *tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()
	e, exists := p.txs[kernelHash]
	if !exists {
		return nil
	}
	return e.tx
}

// Count returns the number of transactions in the mempool.
func (p *Pool) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.txs)
}

// findLowestFee returns the kernel hash and fee of the lowest-fee entry.
// Must be called with p.mu held.
func (p *Pool) findLowestFee() (types.Hash, uint64) {
	var lowestHash types.Hash
	lowestFee := uint64(math.MaxUint64)
	for h, e := range p.txs {
		if e.fee < lowestFee {
			lowestFee = e.fee
			lowestHash = h
		}
	}
	return lowestHash, lowestFee
}

// SelectForBlock returns transactions ordered by fee (highest first),
// up to the given limit.
func (p *Pool) SelectForBlock(limit int) []*tx.Transaction {
	p.mu.RLock()
	defer p.mu.RUnlock()

	entries := make([]*entry, 0, len(p.txs))
	for _, e := range p.txs {
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].fee > entries[j].fee
	})

	if limit > len(entries) {
		limit = len(entries)
	}

	result := make([]*tx.Transaction, limit)
	for i := 0; i < limit; i++ {
		result[i] = entries[i].tx
	}
	return result
}
