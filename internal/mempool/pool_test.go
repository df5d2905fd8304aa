package mempool

import (
	"errors"
	"testing"

	"github.com/veilnet/veil-chain/config"
	"github.com/veilnet/veil-chain/internal/wallet"
	"github.com/veilnet/veil-chain/pkg/tx"
)

// testHarness owns the key manager and sender used to mint valid
// transactions for pool tests.
type testHarness struct {
	km     *wallet.KeyManager
	sender *wallet.Sender
	index  uint32
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()
	mnemonic, err := wallet.GenerateMnemonic()
	if err != nil {
		t.Fatalf("GenerateMnemonic: %v", err)
	}
	km, err := wallet.NewKeyManager(mnemonic, "", 0)
	if err != nil {
		t.Fatalf("NewKeyManager: %v", err)
	}
	sender, err := wallet.NewSender(config.TestRangeProofBits)
	if err != nil {
		t.Fatalf("NewSender: %v", err)
	}
	return &testHarness{km: km, sender: sender}
}

func (h *testHarness) nextKey(t *testing.T) *tx.UnblindedOutput {
	t.Helper()
	key, err := h.km.SpendingKey(h.index)
	if err != nil {
		t.Fatalf("SpendingKey: %v", err)
	}
	h.index++
	u := tx.NewUnblindedOutput(0, key, 0)
	return &u
}

// makeTx builds a valid transaction spending a fresh input of
// outValue+fee into a single output of outValue.
func (h *testHarness) makeTx(t *testing.T, outValue, fee uint64) *tx.Transaction {
	t.Helper()
	spend := h.nextKey(t)
	spend.Value = outValue + fee
	create := h.nextKey(t)
	create.Value = outValue

	transaction, err := h.sender.BuildTransaction(
		[]tx.UnblindedOutput{*spend}, []tx.UnblindedOutput{*create}, fee, 0)
	if err != nil {
		t.Fatalf("BuildTransaction: %v", err)
	}
	return transaction
}

func newTestPool(t *testing.T, maxSize int) *Pool {
	t.Helper()
	pool, err := New(config.TestParams(), maxSize)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return pool
}

func TestAddAndGet(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	transaction := h.makeTx(t, 5000, 100)

	fee, err := pool.Add(transaction)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if fee != 100 {
		t.Fatalf("Add returned fee %d, want 100", fee)
	}

	hash := transaction.Body.Kernels[0].Hash()
	if !pool.Has(hash) {
		t.Fatal("pool does not have added transaction")
	}
	if pool.Get(hash) != transaction {
		t.Fatal("Get returned a different transaction")
	}
	if pool.Count() != 1 {
		t.Fatalf("Count = %d, want 1", pool.Count())
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	transaction := h.makeTx(t, 5000, 100)

	if _, err := pool.Add(transaction); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, err := pool.Add(transaction); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestAddRejectsLowFee(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	transaction := h.makeTx(t, 5000, config.MinimumFee-1)

	if _, err := pool.Add(transaction); !errors.Is(err, ErrFeeTooLow) {
		t.Fatalf("expected ErrFeeTooLow, got %v", err)
	}
}

func TestAddRejectsTamperedTransaction(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	transaction := h.makeTx(t, 5000, 100)

	transaction.Body.Kernels[0].LockHeight++
	if _, err := pool.Add(transaction); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAddRejectsMissingKernel(t *testing.T) {
	pool := newTestPool(t, 10)
	transaction := &tx.Transaction{}

	if _, err := pool.Add(transaction); !errors.Is(err, ErrNoKernel) {
		t.Fatalf("expected ErrNoKernel, got %v", err)
	}
}

func TestRemove(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	transaction := h.makeTx(t, 5000, 100)

	if _, err := pool.Add(transaction); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hash := transaction.Body.Kernels[0].Hash()
	pool.Remove(hash)
	if pool.Has(hash) {
		t.Fatal("transaction still in pool after Remove")
	}
	// Removing again is a no-op.
	pool.Remove(hash)
}

func TestRemoveConfirmed(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)
	t1 := h.makeTx(t, 5000, 100)
	t2 := h.makeTx(t, 6000, 200)

	for _, tr := range []*tx.Transaction{t1, t2} {
		if _, err := pool.Add(tr); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	pool.RemoveConfirmed([]*tx.Transaction{t1})
	if pool.Has(t1.Body.Kernels[0].Hash()) {
		t.Fatal("confirmed transaction still in pool")
	}
	if !pool.Has(t2.Body.Kernels[0].Hash()) {
		t.Fatal("unconfirmed transaction removed")
	}
}

func TestSelectForBlockOrdersByFee(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)

	fees := []uint64{150, 400, 250}
	for _, fee := range fees {
		if _, err := pool.Add(h.makeTx(t, 5000, fee)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	selected := pool.SelectForBlock(10)
	if len(selected) != 3 {
		t.Fatalf("selected %d transactions, want 3", len(selected))
	}
	for i := 1; i < len(selected); i++ {
		if selected[i-1].TotalFees() < selected[i].TotalFees() {
			t.Fatal("SelectForBlock not ordered by fee descending")
		}
	}

	limited := pool.SelectForBlock(2)
	if len(limited) != 2 {
		t.Fatalf("limit ignored: got %d", len(limited))
	}
	if limited[0].TotalFees() != 400 {
		t.Fatalf("highest fee first: got %d", limited[0].TotalFees())
	}
}

func TestEvictsLowestFeeWhenFull(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 2)

	low := h.makeTx(t, 5000, 100)
	mid := h.makeTx(t, 5000, 200)
	if _, err := pool.Add(low); err != nil {
		t.Fatalf("Add low: %v", err)
	}
	if _, err := pool.Add(mid); err != nil {
		t.Fatalf("Add mid: %v", err)
	}

	// A fee below the floor bounces off the full pool.
	cheap := h.makeTx(t, 5000, 100)
	if _, err := pool.Add(cheap); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("expected ErrPoolFull, got %v", err)
	}

	// A higher fee evicts the lowest.
	high := h.makeTx(t, 5000, 300)
	if _, err := pool.Add(high); err != nil {
		t.Fatalf("Add high: %v", err)
	}
	if pool.Has(low.Body.Kernels[0].Hash()) {
		t.Fatal("lowest-fee transaction not evicted")
	}
	if !pool.Has(high.Body.Kernels[0].Hash()) {
		t.Fatal("high-fee transaction not admitted")
	}
	if pool.Count() != 2 {
		t.Fatalf("Count = %d, want 2", pool.Count())
	}
}

func TestConflictingSpendRejected(t *testing.T) {
	h := newHarness(t)
	pool := newTestPool(t, 10)

	// Two transactions spending the same input commitment: same key and
	// value produce the same commitment.
	spendKey, err := h.km.SpendingKey(1000)
	if err != nil {
		t.Fatalf("SpendingKey: %v", err)
	}
	spend := tx.NewUnblindedOutput(5100, spendKey, 0)

	c1 := h.nextKey(t)
	c1.Value = 5000
	c2 := h.nextKey(t)
	c2.Value = 5000

	t1, err := h.sender.BuildTransaction([]tx.UnblindedOutput{spend}, []tx.UnblindedOutput{*c1}, 100, 0)
	if err != nil {
		t.Fatalf("BuildTransaction: %v", err)
	}
	t2, err := h.sender.BuildTransaction([]tx.UnblindedOutput{spend}, []tx.UnblindedOutput{*c2}, 100, 0)
	if err != nil {
		t.Fatalf("BuildTransaction: %v", err)
	}

	if _, err := pool.Add(t1); err != nil {
		t.Fatalf("Add t1: %v", err)
	}
	if _, err := pool.Add(t2); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestNewRejectsBadParams(t *testing.T) {
	p := config.TestParams()
	p.RangeProofBits = 0
	if _, err := New(p, 10); err == nil {
		t.Fatal("expected error for invalid params")
	}
}
