package runtime

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// HostModuleName is the wasm module name the externs are imported under.
const HostModuleName = "env"

// registerHostFunctions builds and instantiates the "env" host module with
// the complete extern set. The per-invocation frame travels in the call
// context, so the module is instantiated once per Runtime and shared by
// every execution.
func registerHostFunctions(ctx context.Context, rt wazero.Runtime) (api.Module, error) {
	builder := rt.NewHostModuleBuilder(HostModuleName)

	// context readers
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externSender(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("sender")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externOrigin(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("origin")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externAddress(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("address")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externCoinbase(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("coinbase")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externValue(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("value")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externDifficulty(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("difficulty")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externGasLimit(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("gaslimit")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module) int64 {
			return externTimestamp(frameFromContext(ctx))
		}).
		WithResultNames("timestamp").
		Export("timestamp")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module) int64 {
			return externBlockNumber(frameFromContext(ctx))
		}).
		WithResultNames("number").
		Export("blocknumber")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module) int64 {
			return externGasLeft(frameFromContext(ctx))
		}).
		WithResultNames("gas").
		Export("gasleft")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, addrPtr, destPtr uint32) {
			externBalance(frameFromContext(ctx), newWasmMemory(m), addrPtr, destPtr)
		}).
		WithParameterNames("addr_ptr", "dest_ptr").
		Export("balance")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, number int64, destPtr uint32) {
			externBlockHash(frameFromContext(ctx), newWasmMemory(m), number, destPtr)
		}).
		WithParameterNames("number", "dest_ptr").
		Export("blockhash")

	// storage accessors
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, destPtr uint32) {
			externStorageRead(frameFromContext(ctx), newWasmMemory(m), keyPtr, destPtr)
		}).
		WithParameterNames("key_ptr", "dest_ptr").
		Export("storage_read")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, keyPtr, valuePtr uint32) {
			externStorageWrite(frameFromContext(ctx), newWasmMemory(m), keyPtr, valuePtr)
		}).
		WithParameterNames("key_ptr", "value_ptr").
		Export("storage_write")

	// input
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module) uint32 {
			return externInputLength(frameFromContext(ctx))
		}).
		WithResultNames("length").
		Export("input_length")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, destPtr uint32) {
			externFetchInput(frameFromContext(ctx), newWasmMemory(m), destPtr)
		}).
		WithParameterNames("dest_ptr").
		Export("fetch_input")

	// logging
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, topicPtr, topicCount, dataPtr, dataLen uint32) {
			externElog(frameFromContext(ctx), newWasmMemory(m), topicPtr, topicCount, dataPtr, dataLen)
		}).
		WithParameterNames("topic_ptr", "topic_count", "data_ptr", "data_len").
		Export("elog")

	// control
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, ptr, length uint32) {
			externRet(frameFromContext(ctx), newWasmMemory(m), ptr, length)
		}).
		WithParameterNames("ptr", "len").
		Export("ret")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, refundPtr uint32) {
			externSuicide(frameFromContext(ctx), newWasmMemory(m), refundPtr)
		}).
		WithParameterNames("refund_ptr").
		Export("suicide")

	// calls
	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, gas int64, addrPtr, valuePtr, inputPtr, inputLen, resultPtr, resultLen uint32) int32 {
			return externCall(ctx, frameFromContext(ctx), newWasmMemory(m), callRegular, gas, addrPtr, valuePtr, inputPtr, inputLen, resultPtr, resultLen)
		}).
		WithParameterNames("gas", "addr_ptr", "value_ptr", "input_ptr", "input_len", "result_ptr", "result_len").
		WithResultNames("status").
		Export("ccall")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, gas int64, addrPtr, inputPtr, inputLen, resultPtr, resultLen uint32) int32 {
			return externCall(ctx, frameFromContext(ctx), newWasmMemory(m), callDelegate, gas, addrPtr, 0, inputPtr, inputLen, resultPtr, resultLen)
		}).
		WithParameterNames("gas", "addr_ptr", "input_ptr", "input_len", "result_ptr", "result_len").
		WithResultNames("status").
		Export("dcall")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, gas int64, addrPtr, inputPtr, inputLen, resultPtr, resultLen uint32) int32 {
			return externCall(ctx, frameFromContext(ctx), newWasmMemory(m), callStatic, gas, addrPtr, 0, inputPtr, inputLen, resultPtr, resultLen)
		}).
		WithParameterNames("gas", "addr_ptr", "input_ptr", "input_len", "result_ptr", "result_len").
		WithResultNames("status").
		Export("scall")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, endowmentPtr, codePtr, codeLen, destPtr uint32) int32 {
			return externCreate(ctx, frameFromContext(ctx), newWasmMemory(m), false, endowmentPtr, 0, codePtr, codeLen, destPtr)
		}).
		WithParameterNames("endowment_ptr", "code_ptr", "code_len", "result_ptr").
		WithResultNames("status").
		Export("create")

	builder.NewFunctionBuilder().
		WithFunc(func(ctx context.Context, m api.Module, endowmentPtr, saltPtr, codePtr, codeLen, destPtr uint32) int32 {
			return externCreate(ctx, frameFromContext(ctx), newWasmMemory(m), true, endowmentPtr, saltPtr, codePtr, codeLen, destPtr)
		}).
		WithParameterNames("endowment_ptr", "salt_ptr", "code_ptr", "code_len", "result_ptr").
		WithResultNames("status").
		Export("create2")

	return builder.Instantiate(ctx)
}
