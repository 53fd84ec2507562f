// Package types provides the value layer shared between the host boundary
// and its embedders: fixed-width words, addresses, execution context, gas
// accounting and the failure taxonomy.
package types

// Gas represents the amount of computational resources consumed during execution.
type Gas = uint64

// GasMeter tracks gas consumption for a single invocation. It is owned by
// one frame tree at a time; there is no sharing across invocations.
type GasMeter interface {
	// GasConsumed returns the gas consumed so far.
	GasConsumed() Gas
	// GasRemaining returns the gas left before the limit is hit.
	GasRemaining() Gas
	// ConsumeGas charges the given amount, returning OutOfGasError when the
	// limit would be exceeded. The descriptor names the charged operation.
	ConsumeGas(amount Gas, descriptor string) error
}

// GasConfig holds the per-operation costs charged by the host externs.
type GasConfig struct {
	// ExternBase is charged by every extern before doing any work.
	ExternBase Gas
	// PerByte is charged per byte copied across the boundary.
	PerByte Gas
	// StorageRead is the flat cost of storage_read.
	StorageRead Gas
	// StorageWrite is the flat cost of storage_write.
	StorageWrite Gas
	// LogBase, LogPerTopic and LogPerByte price the elog extern.
	LogBase     Gas
	LogPerTopic Gas
	LogPerByte  Gas
	// CallBase is the flat cost of ccall/dcall/scall before the callee runs.
	CallBase Gas
	// CreateBase is the flat cost of create/create2.
	CreateBase Gas
	// BalanceRead is the flat cost of the balance extern.
	BalanceRead Gas
	// BlockHash is the flat cost of the blockhash extern.
	BlockHash Gas
}

// DefaultGasConfig returns costs loosely following the classic ledger
// schedule. Embedders tune these per chain.
func DefaultGasConfig() GasConfig {
	return GasConfig{
		ExternBase:   2,
		PerByte:      3,
		StorageRead:  200,
		StorageWrite: 5000,
		LogBase:      375,
		LogPerTopic:  375,
		LogPerByte:   8,
		CallBase:     700,
		CreateBase:   32000,
		BalanceRead:  400,
		BlockHash:    20,
	}
}
