package runtime

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/ethwasm/hostvm/types"
)

// Exported guest entrypoints of the contract ABI.
const (
	entrypointCall   = "call"
	entrypointDeploy = "deploy"
)

// Config holds the construction parameters of a Runtime.
type Config struct {
	// MemoryLimitPages caps each instance's linear memory in 64KiB pages.
	// Zero keeps the wasm default.
	MemoryLimitPages uint32
	// GasConfig prices the host externs.
	GasConfig types.GasConfig
	// Logger receives extern-level debug logs. Nil means no logging.
	Logger *zap.Logger
}

// Runtime owns a wazero runtime with the "env" host module instantiated,
// plus compiled modules and original wasm bytes keyed by checksum.
//
// A Runtime may store code concurrently with nothing else, but executions
// are single-threaded by construction: one invocation owns its frame, gas
// meter and world state until it returns.
type Runtime struct {
	rt        wazero.Runtime
	logger    *zap.Logger
	gasConfig types.GasConfig
	codes     map[types.Checksum][]byte
	modules   map[types.Checksum]wazero.CompiledModule
}

// New creates a Runtime and registers the host module.
func New(ctx context.Context, cfg Config) (*Runtime, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	runtimeCfg := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	if _, err := registerHostFunctions(ctx, rt); err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("register host module: %w", err)
	}
	return &Runtime{
		rt:        rt,
		logger:    cfg.Logger,
		gasConfig: cfg.GasConfig,
		codes:     make(map[types.Checksum][]byte),
		modules:   make(map[types.Checksum]wazero.CompiledModule),
	}, nil
}

// Close releases the wazero runtime and all compiled modules.
func (r *Runtime) Close(ctx context.Context) error {
	return r.rt.Close(ctx)
}

// StoreCode validates and compiles the wasm code, retaining both the
// original bytes and the compiled module under the code's checksum.
// Storing the same code twice is a no-op returning the same checksum.
func (r *Runtime) StoreCode(ctx context.Context, code []byte) (types.Checksum, error) {
	checksum := types.ChecksumOf(code)
	if _, ok := r.codes[checksum]; ok {
		return checksum, nil
	}
	if _, err := r.compile(ctx, checksum, code); err != nil {
		return types.Checksum{}, err
	}
	r.codes[checksum] = append([]byte(nil), code...)
	r.logger.Debug("stored code",
		zap.String("checksum", checksum.String()),
		zap.Int("size", len(code)))
	return checksum, nil
}

// GetCode returns a copy of the original wasm bytes for the checksum.
func (r *Runtime) GetCode(checksum types.Checksum) ([]byte, error) {
	code, ok := r.codes[checksum]
	if !ok {
		return nil, fmt.Errorf("code %s not found", checksum)
	}
	return append([]byte(nil), code...), nil
}

// RemoveCode drops the stored bytes and the compiled module.
func (r *Runtime) RemoveCode(ctx context.Context, checksum types.Checksum) error {
	if _, ok := r.codes[checksum]; !ok {
		return fmt.Errorf("code %s not found", checksum)
	}
	delete(r.codes, checksum)
	if compiled, ok := r.modules[checksum]; ok {
		delete(r.modules, checksum)
		return compiled.Close(ctx)
	}
	return nil
}

// compile returns the cached compiled module or compiles and caches it.
func (r *Runtime) compile(ctx context.Context, checksum types.Checksum, code []byte) (wazero.CompiledModule, error) {
	if compiled, ok := r.modules[checksum]; ok {
		return compiled, nil
	}
	compiled, err := r.rt.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("compile module: %w", err)
	}
	r.modules[checksum] = compiled
	return compiled, nil
}

// Execute runs one top-level invocation of previously stored code. The
// returned result's buffers are owned by the caller; the runtime keeps no
// reference to them, to the state, or to the contexts after returning.
func (r *Runtime) Execute(
	ctx context.Context,
	checksum types.Checksum,
	call types.CallContext,
	block types.BlockContext,
	state types.WorldState,
	gasLimit types.Gas,
) (*types.ExecutionResult, error) {
	code, ok := r.codes[checksum]
	if !ok {
		return nil, fmt.Errorf("code %s not found", checksum)
	}

	meter := newGasMeter(gasLimit)
	frame := &Frame{
		State:  state,
		Block:  block,
		Call:   call,
		Gas:    meter,
		Config: r.gasConfig,
		Logger: r.logger,
		call:   r.runFrame,
	}
	data, err := r.runFrame(ctx, frame, code, entrypointCall)
	if err != nil {
		return nil, err
	}
	return &types.ExecutionResult{
		ReturnData:     data,
		Logs:           frame.logs,
		GasUsed:        meter.GasConsumed(),
		SelfDestructed: frame.status == terminatedSuicide,
	}, nil
}

// runFrame compiles (or reuses) the code and runs one frame to completion.
// It is also the callFunc wired into frames for nested calls.
func (r *Runtime) runFrame(ctx context.Context, frame *Frame, code []byte, entrypoint string) ([]byte, error) {
	compiled, err := r.compile(ctx, types.ChecksumOf(code), code)
	if err != nil {
		return nil, err
	}

	ctx = withFrame(ctx, frame)
	// anonymous instances keep concurrent-free nested instantiations of the
	// same module from colliding on a name
	mod, err := r.rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		// a start function may legitimately finish the frame
		return frameOutcome(frame, err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(entrypoint)
	if fn == nil {
		return nil, types.NoEntrypointError{Entrypoint: entrypoint}
	}
	_, err = fn.Call(ctx)
	return frameOutcome(frame, err)
}

// frameOutcome translates a finished frame plus the wazero-level error into
// the boundary's result contract: terminations are successes carrying the
// frame's return buffer, everything else is a HostAbort.
func frameOutcome(frame *Frame, err error) ([]byte, error) {
	if frame.status != running {
		return frame.returnData, nil
	}
	if frame.abort != nil {
		return nil, frame.abort
	}
	if err != nil {
		return nil, &types.HostAbort{Reason: types.AbortTrap, Err: err}
	}
	return frame.returnData, nil
}
