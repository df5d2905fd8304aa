package tx

import "sort"

// AggregateBody is the plain multiset container shared by transactions
// and blocks: unordered collections of inputs, outputs, and kernels.
type AggregateBody struct {
	Inputs  []TransactionInput
	Outputs []TransactionOutput
	Kernels []TransactionKernel
}

// NewAggregateBody creates a body from the given collections.
func NewAggregateBody(inputs []TransactionInput, outputs []TransactionOutput, kernels []TransactionKernel) AggregateBody {
	return AggregateBody{Inputs: inputs, Outputs: outputs, Kernels: kernels}
}

// AddInput appends an input.
func (b *AggregateBody) AddInput(input TransactionInput) {
	b.Inputs = append(b.Inputs, input)
}

// AddOutput appends an output.
func (b *AggregateBody) AddOutput(output TransactionOutput) {
	b.Outputs = append(b.Outputs, output)
}

// AddInputs moves all inputs into the body, leaving the source slice
// empty to signal ownership transfer.
func (b *AggregateBody) AddInputs(inputs *[]TransactionInput) {
	b.Inputs = append(b.Inputs, *inputs...)
	*inputs = (*inputs)[:0]
}

// AddOutputs moves all outputs into the body, leaving the source slice
// empty to signal ownership transfer.
func (b *AggregateBody) AddOutputs(outputs *[]TransactionOutput) {
	b.Outputs = append(b.Outputs, *outputs...)
	*outputs = (*outputs)[:0]
}

// SetKernel replaces the body's kernels with the single given kernel.
// A transaction carries exactly one kernel; multi-kernel aggregation is
// a block-level concern.
func (b *AggregateBody) SetKernel(kernel TransactionKernel) {
	b.Kernels = []TransactionKernel{kernel}
}

// Sort orders the collections into their canonical total orders.
func (b *AggregateBody) Sort() {
	sort.Slice(b.Inputs, func(i, j int) bool { return inputLess(b.Inputs[i], b.Inputs[j]) })
	sort.Slice(b.Outputs, func(i, j int) bool { return outputLess(b.Outputs[i], b.Outputs[j]) })
	sort.Slice(b.Kernels, func(i, j int) bool { return kernelLess(b.Kernels[i], b.Kernels[j]) })
}

// VerifyKernelSignatures checks every kernel's excess signature.
func (b *AggregateBody) VerifyKernelSignatures() error {
	for i := range b.Kernels {
		if err := b.Kernels[i].VerifySignature(); err != nil {
			return err
		}
	}
	return nil
}
