package types

import "fmt"

// AbortReason classifies why an invocation was terminated by the host
// boundary. The guest has no partial-failure channel, so every failure at or
// below the boundary funnels into a HostAbort carrying one of these reasons.
type AbortReason string

const (
	// AbortOutOfGas signals the gas meter was exhausted by a host operation
	// or by guest execution itself.
	AbortOutOfGas AbortReason = "out of gas"
	// AbortMemoryAccess signals a guest pointer/length pair referenced
	// memory outside the instance's linear memory.
	AbortMemoryAccess AbortReason = "memory access out of bounds"
	// AbortTrap signals the guest trapped (unreachable, explicit abort,
	// stack exhaustion) or the wasm runtime rejected the execution.
	AbortTrap AbortReason = "guest trap"
	// AbortStaticViolation signals a state-mutating extern was invoked
	// inside a static (read-only) call subtree.
	AbortStaticViolation AbortReason = "state mutation in static call"
	// AbortTooManyTopics signals elog was invoked with more than MaxTopics.
	AbortTooManyTopics AbortReason = "too many log topics"
)

// HostAbort is the single failure class of the boundary: it terminates the
// entire invocation immediately and unconditionally. It is never returned to
// guest code; it surfaces as the error of the host-side Execute.
type HostAbort struct {
	Reason AbortReason
	Detail string
	Err    error
}

var _ error = (*HostAbort)(nil)

func (e *HostAbort) Error() string {
	switch {
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("host abort: %s: %s: %v", e.Reason, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("host abort: %s: %s", e.Reason, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("host abort: %s: %v", e.Reason, e.Err)
	default:
		return fmt.Sprintf("host abort: %s", e.Reason)
	}
}

func (e *HostAbort) Unwrap() error {
	return e.Err
}

// Abort builds a HostAbort with a formatted detail string.
func Abort(reason AbortReason, format string, args ...interface{}) *HostAbort {
	return &HostAbort{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// OutOfGasError is returned by a GasMeter when consumption would exceed the
// limit. The boundary converts it into a HostAbort with AbortOutOfGas.
type OutOfGasError struct {
	Descriptor string
}

var _ error = OutOfGasError{}

func (e OutOfGasError) Error() string {
	return "out of gas: " + e.Descriptor
}

// NoEntrypointError is returned when stored code does not export the
// required entrypoint function.
type NoEntrypointError struct {
	Entrypoint string
}

var _ error = NoEntrypointError{}

func (e NoEntrypointError) Error() string {
	return fmt.Sprintf("contract does not export %q", e.Entrypoint)
}
