// Package hostvm runs Ethereum-style wasm contracts against an embedder
// provided world state. It owns a wasm runtime with the contract extern set
// registered under the "env" module and a cache of compiled code addressed
// by checksum.
package hostvm

import (
	"context"

	"go.uber.org/zap"

	"github.com/ethwasm/hostvm/internal/runtime"
	"github.com/ethwasm/hostvm/types"
)

// VM is the main entry point to this library. Create one per embedding and
// reuse it across executions; compiled modules are cached inside.
//
// A VM must not be used concurrently: one execution owns the VM, its world
// state and its gas meter until it returns.
type VM struct {
	runtime *runtime.Runtime
}

// Option configures a VM at construction time.
type Option func(*runtime.Config)

// WithLogger routes extern-level debug logs to the given logger. The default
// is no logging.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *runtime.Config) {
		cfg.Logger = logger
	}
}

// WithGasConfig overrides the default extern gas schedule.
func WithGasConfig(gasConfig types.GasConfig) Option {
	return func(cfg *runtime.Config) {
		cfg.GasConfig = gasConfig
	}
}

// WithMemoryLimitPages caps each instance's linear memory in 64KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return func(cfg *runtime.Config) {
		cfg.MemoryLimitPages = pages
	}
}

// NewVM creates a VM and registers the host module with a fresh wasm
// runtime.
func NewVM(ctx context.Context, opts ...Option) (*VM, error) {
	cfg := runtime.Config{GasConfig: types.DefaultGasConfig()}
	for _, opt := range opts {
		opt(&cfg)
	}
	rt, err := runtime.New(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &VM{runtime: rt}, nil
}

// Close releases the wasm runtime and all compiled modules. The VM must not
// be used afterwards.
func (vm *VM) Close(ctx context.Context) error {
	return vm.runtime.Close(ctx)
}

// StoreCode validates and compiles the wasm code, retaining both the
// original bytes and the compiled module. The returned checksum identifies
// the code in later calls; storing the same code twice returns the same
// checksum.
func (vm *VM) StoreCode(ctx context.Context, code WasmCode) (Checksum, error) {
	return vm.runtime.StoreCode(ctx, code)
}

// GetCode returns the original wasm bytes previously stored under checksum.
func (vm *VM) GetCode(checksum Checksum) (WasmCode, error) {
	return vm.runtime.GetCode(checksum)
}

// RemoveCode drops stored code and its compiled module from the cache.
func (vm *VM) RemoveCode(ctx context.Context, checksum Checksum) error {
	return vm.runtime.RemoveCode(ctx, checksum)
}

// Execute runs the "call" entrypoint of previously stored code.
//
// The call and block contexts are what the contract observes through the
// context externs; state receives every storage, balance and code mutation
// the contract performs. Execution failures (trap, out of gas, forbidden
// mutation) surface as a *HostAbort error; a successful result carries the
// contract's return buffer, its logs and the gas used.
func (vm *VM) Execute(
	ctx context.Context,
	checksum Checksum,
	call CallContext,
	block BlockContext,
	state WorldState,
	gasLimit Gas,
) (*ExecutionResult, error) {
	return vm.runtime.Execute(ctx, checksum, call, block, state, gasLimit)
}
