package tx

// OutputFeatures are bit flags describing an output's structure or use.
// Bit positions are part of the wire format and must not change.
type OutputFeatures uint8

const (
	// OutputFeatureCoinbase marks a coinbase output, which must not be
	// spent until maturity.
	OutputFeatureCoinbase OutputFeatures = 1 << 0
)

// Has reports whether all the given flags are set.
func (f OutputFeatures) Has(flags OutputFeatures) bool {
	return f&flags == flags
}

// KernelFeatures are bit flags describing a kernel's structure or use.
// Bit positions are part of the wire format and must not change.
type KernelFeatures uint8

const (
	// KernelFeatureCoinbase marks a coinbase kernel.
	KernelFeatureCoinbase KernelFeatures = 1 << 0
)

// Has reports whether all the given flags are set.
func (f KernelFeatures) Has(flags KernelFeatures) bool {
	return f&flags == flags
}
