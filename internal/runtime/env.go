// Package runtime implements the host side of the extern boundary: it
// registers the "env" host module with a wazero runtime, marshals
// pointer/length pairs in and out of guest memory, and dispatches to the
// embedder's WorldState.
package runtime

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/ethwasm/hostvm/types"
)

// maxCallDepth bounds nested contract calls. Deeper calls fail with a
// nonzero status instead of aborting, mirroring the ledger's call rules.
const maxCallDepth = 1024

// termination is the way a frame finished, beyond simply returning from its
// entrypoint.
type termination uint8

const (
	running termination = iota
	// terminatedReturn: the guest called ret with a return buffer.
	terminatedReturn
	// terminatedSuicide: the guest called suicide and is scheduled for
	// deletion.
	terminatedSuicide
)

// errTerminated is the sentinel unwind used by ret and suicide. It carries
// no data; the outcome lives in the frame.
var errTerminated = errors.New("execution terminated")

// callFunc executes contract code in a fresh frame. Wired by the Runtime so
// externs can re-enter execution for ccall/dcall/scall/create.
type callFunc func(ctx context.Context, frame *Frame, code []byte, entrypoint string) ([]byte, error)

// Frame is the execution context of one contract invocation. Externs reach
// it through the call's context; it lives exactly as long as the invocation
// and is never shared across frames or goroutines.
type Frame struct {
	State  types.WorldState
	Block  types.BlockContext
	Call   types.CallContext
	Gas    types.GasMeter
	Config types.GasConfig
	Logger *zap.Logger
	Depth  int
	// Static marks a read-only subtree entered via scall. State-mutating
	// externs abort while it is set.
	Static bool

	logs       []types.LogEntry
	returnData []byte
	status     termination
	abort      *types.HostAbort
	call       callFunc
}

// abortWith records the abort and unwinds the guest. The panic crosses the
// wasm runtime as a trap; the execution wrapper recovers it from the frame.
func (f *Frame) abortWith(a *types.HostAbort) {
	f.abort = a
	panic(a)
}

// chargeGas consumes gas or aborts the invocation.
func (f *Frame) chargeGas(amount types.Gas, descriptor string) {
	if err := f.Gas.ConsumeGas(amount, descriptor); err != nil {
		f.abortWith(&types.HostAbort{Reason: types.AbortOutOfGas, Detail: descriptor, Err: err})
	}
}

// mustMem aborts on a failed guest memory access.
func (f *Frame) mustMem(err error) {
	if err != nil {
		f.abortWith(&types.HostAbort{Reason: types.AbortMemoryAccess, Err: err})
	}
}

// requireMutable aborts when a state-mutating extern runs in a static
// subtree.
func (f *Frame) requireMutable(extern string) {
	if f.Static {
		f.abortWith(types.Abort(types.AbortStaticViolation, "%s", extern))
	}
}

// terminate finishes the frame via sentinel unwind. data is retained as the
// frame's return buffer.
func (f *Frame) terminate(status termination, data []byte) {
	f.returnData = data
	f.status = status
	panic(errTerminated)
}

// emitLog appends an entry to the frame's log set.
func (f *Frame) emitLog(entry types.LogEntry) {
	f.logs = append(f.logs, entry)
}

// adoptLogs merges a finished child frame's logs, preserving emission order.
func (f *Frame) adoptLogs(child *Frame) {
	f.logs = append(f.logs, child.logs...)
}

//---------- context plumbing ---------

// frameKey is a private context key type to avoid collisions.
type frameKey struct{}

func withFrame(ctx context.Context, f *Frame) context.Context {
	return context.WithValue(ctx, frameKey{}, f)
}

// frameFromContext returns the frame of the running invocation. Host
// functions are only ever invoked with a context produced by withFrame, so
// a missing frame is a wiring bug and panics.
func frameFromContext(ctx context.Context) *Frame {
	f, ok := ctx.Value(frameKey{}).(*Frame)
	if !ok {
		panic("no execution frame in context")
	}
	return f
}
