package hostvm

import "github.com/ethwasm/hostvm/types"

// WasmCode is an alias for raw bytes of compiled wasm code.
type WasmCode []byte

// Re-exports of the core boundary types so embedders only need the root
// package for the common path.
type (
	Checksum        = types.Checksum
	Address         = types.Address
	Hash            = types.Hash
	Word            = types.Word
	Gas             = types.Gas
	GasConfig       = types.GasConfig
	WorldState      = types.WorldState
	CallContext     = types.CallContext
	BlockContext    = types.BlockContext
	ExecutionResult = types.ExecutionResult
	LogEntry        = types.LogEntry
	HostAbort       = types.HostAbort
)
