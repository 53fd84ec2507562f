package runtime

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ethwasm/hostvm/internal/state"
	"github.com/ethwasm/hostvm/types"
)

// fakeMemory is an in-process Memory so the extern set can be exercised
// without a wasm instance.
type fakeMemory struct {
	data []byte
}

func newFakeMemory(size uint32) *fakeMemory {
	return &fakeMemory{data: make([]byte, size)}
}

func (m *fakeMemory) Read(offset, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if uint64(offset)+uint64(length) > uint64(len(m.data)) {
		return nil, fmt.Errorf("read out of bounds")
	}
	return append([]byte(nil), m.data[offset:offset+length]...), nil
}

func (m *fakeMemory) Write(offset uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if uint64(offset)+uint64(len(data)) > uint64(len(m.data)) {
		return fmt.Errorf("write out of bounds")
	}
	copy(m.data[offset:], data)
	return nil
}

func addr(b byte) types.Address {
	var a types.Address
	for i := range a {
		a[i] = b
	}
	return a
}

func newTestFrame(st types.WorldState) *Frame {
	return &Frame{
		State: st,
		Block: types.BlockContext{
			Coinbase:   addr(0xc0),
			Number:     42,
			Timestamp:  1700000000,
			Difficulty: types.NewWord(1000),
			GasLimit:   types.NewWord(8_000_000),
		},
		Call: types.CallContext{
			Caller:  addr(0x01),
			Origin:  addr(0x02),
			Address: addr(0x03),
			Value:   types.NewWord(7),
		},
		Gas:    newGasMeter(1_000_000),
		Config: types.DefaultGasConfig(),
		Logger: zap.NewNop(),
	}
}

// catchAbort runs fn and returns the HostAbort it unwound with, or nil when
// fn returned normally.
func catchAbort(t *testing.T, fn func()) (abort *types.HostAbort) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var ok bool
		abort, ok = r.(*types.HostAbort)
		require.True(t, ok, "panic value must be a HostAbort, got %v", r)
	}()
	fn()
	return nil
}

// catchTermination runs fn expecting the errTerminated sentinel unwind.
func catchTermination(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.Equal(t, errTerminated, r)
	}()
	fn()
	t.Fatal("extern returned instead of terminating")
}

//---------- context readers ---------

func TestContextReadersWriteFixedWidthValues(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(1024)

	specs := map[string]struct {
		invoke   func()
		expected []byte
	}{
		"sender":     {func() { externSender(f, mem, 0) }, f.Call.Caller.Bytes()},
		"origin":     {func() { externOrigin(f, mem, 0) }, f.Call.Origin.Bytes()},
		"address":    {func() { externAddress(f, mem, 0) }, f.Call.Address.Bytes()},
		"coinbase":   {func() { externCoinbase(f, mem, 0) }, f.Block.Coinbase.Bytes()},
		"value":      {func() { externValue(f, mem, 0) }, wordSlice(f.Call.Value)},
		"difficulty": {func() { externDifficulty(f, mem, 0) }, wordSlice(f.Block.Difficulty)},
		"gaslimit":   {func() { externGasLimit(f, mem, 0) }, wordSlice(f.Block.GasLimit)},
	}
	for name, spec := range specs {
		t.Run(name, func(t *testing.T) {
			spec.invoke()
			got, err := mem.Read(0, uint32(len(spec.expected)))
			require.NoError(t, err)
			assert.Equal(t, spec.expected, got)
		})
	}
}

func wordSlice(w types.Word) []byte {
	b := types.WordBytes(w)
	return b[:]
}

func TestScalarReaders(t *testing.T) {
	f := newTestFrame(state.NewMemState())

	assert.Equal(t, int64(1700000000), externTimestamp(f))
	assert.Equal(t, int64(42), externBlockNumber(f))
}

func TestGasLeftDecreasesMonotonically(t *testing.T) {
	f := newTestFrame(state.NewMemState())

	first := externGasLeft(f)
	second := externGasLeft(f)
	assert.Less(t, second, first)
}

func TestBalanceReader(t *testing.T) {
	st := state.NewMemState()
	other := addr(0x99)
	st.SetBalance(other, types.NewWord(123))

	f := newTestFrame(st)
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, other.Bytes()))

	externBalance(f, mem, 0, 64)

	got, err := mem.Read(64, types.WordLen)
	require.NoError(t, err)
	want := types.NewWord(123)
	assert.Equal(t, wordSlice(want), got)
}

func TestBlockHash(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	var known types.Hash
	known[0] = 0xab
	f.Block.BlockHash = func(number uint64) types.Hash {
		if number == 41 {
			return known
		}
		return types.Hash{}
	}
	mem := newFakeMemory(1024)

	externBlockHash(f, mem, 41, 0)
	got, err := mem.Read(0, types.HashLen)
	require.NoError(t, err)
	assert.Equal(t, known.Bytes(), got)

	// unknown block yields the zero hash
	externBlockHash(f, mem, 1, 0)
	got, err = mem.Read(0, types.HashLen)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, types.HashLen), got)
}

func TestBlockHashNilResolver(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)

	externBlockHash(f, mem, 41, 0)
	got, err := mem.Read(0, types.HashLen)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, types.HashLen), got)
}

func TestReaderAbortsOnBadPointer(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(8) // too small for an address

	abort := catchAbort(t, func() { externSender(f, mem, 0) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortMemoryAccess, abort.Reason)
}

//---------- storage ---------

func TestStorageWriteThenRead(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(1024)

	var key types.Hash
	key[31] = 0x05
	value := types.NewWord(777)

	require.NoError(t, mem.Write(0, key.Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(value)))

	externStorageWrite(f, mem, 0, 32)
	externStorageRead(f, mem, 0, 64)

	got, err := mem.Read(64, types.WordLen)
	require.NoError(t, err)
	assert.Equal(t, wordSlice(value), got)
}

func TestStorageWriteAbortsInStaticContext(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Static = true
	mem := newFakeMemory(1024)

	abort := catchAbort(t, func() { externStorageWrite(f, mem, 0, 32) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortStaticViolation, abort.Reason)
}

//---------- input ---------

func TestInput(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Call.Input = []byte("payload")
	mem := newFakeMemory(64)

	assert.Equal(t, uint32(7), externInputLength(f))

	externFetchInput(f, mem, 8)
	got, err := mem.Read(8, 7)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), got)
}

func TestEmptyInput(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)

	assert.Equal(t, uint32(0), externInputLength(f))
	// zero-length copy succeeds even at an arbitrary offset
	externFetchInput(f, mem, 60)
}

//---------- logging ---------

func TestElogZeroTopicsZeroData(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	mem := newFakeMemory(64)

	externElog(f, mem, 0, 0, 0, 0)

	require.Len(t, f.logs, 1)
	entry := f.logs[0]
	assert.Equal(t, f.Call.Address, entry.Address)
	assert.Empty(t, entry.Topics)
	assert.Empty(t, entry.Data)
	// no state was touched
	assert.False(t, st.AccountExists(f.Call.Address))
}

func TestElogTopicsAndData(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(1024)

	var t0, t1 types.Hash
	t0[0] = 1
	t1[0] = 2
	require.NoError(t, mem.Write(0, t0.Bytes()))
	require.NoError(t, mem.Write(32, t1.Bytes()))
	require.NoError(t, mem.Write(128, []byte("event data")))

	externElog(f, mem, 0, 2, 128, 10)

	require.Len(t, f.logs, 1)
	assert.Equal(t, []types.Hash{t0, t1}, f.logs[0].Topics)
	assert.Equal(t, []byte("event data"), f.logs[0].Data)
}

func TestElogTooManyTopicsAborts(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(1024)

	abort := catchAbort(t, func() { externElog(f, mem, 0, types.MaxTopics+1, 0, 0) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortTooManyTopics, abort.Reason)
}

func TestElogAbortsInStaticContext(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Static = true
	mem := newFakeMemory(1024)

	abort := catchAbort(t, func() { externElog(f, mem, 0, 0, 0, 0) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortStaticViolation, abort.Reason)
}

//---------- control ---------

func TestRetTerminatesWithData(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)
	require.NoError(t, mem.Write(0, []byte("result")))

	catchTermination(t, func() { externRet(f, mem, 0, 6) })

	assert.Equal(t, terminatedReturn, f.status)
	assert.Equal(t, []byte("result"), f.returnData)
}

func TestRetZeroLength(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)

	catchTermination(t, func() { externRet(f, mem, 0, 0) })

	assert.Equal(t, terminatedReturn, f.status)
	assert.Empty(t, f.returnData)
}

func TestSuicideTerminatesAndMovesBalance(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(500))

	heir := addr(0x42)
	mem := newFakeMemory(64)
	require.NoError(t, mem.Write(0, heir.Bytes()))

	catchTermination(t, func() { externSuicide(f, mem, 0) })

	assert.Equal(t, terminatedSuicide, f.status)
	heirBalance := st.GetBalance(heir)
	want := types.NewWord(500)
	assert.True(t, heirBalance.Eq(&want))
	assert.False(t, st.AccountExists(f.Call.Address))
}

func TestRetChargesGas(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)
	require.NoError(t, mem.Write(0, []byte("data")))

	catchTermination(t, func() { externRet(f, mem, 0, 4) })

	want := f.Config.ExternBase + f.Config.PerByte*4
	assert.Equal(t, want, f.Gas.GasConsumed())
}

func TestSuicideChargesGas(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	mem := newFakeMemory(64)
	require.NoError(t, mem.Write(0, addr(0x42).Bytes()))

	catchTermination(t, func() { externSuicide(f, mem, 0) })

	assert.Equal(t, f.Config.ExternBase, f.Gas.GasConsumed())
}

func TestSuicideAbortsInStaticContext(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Static = true
	mem := newFakeMemory(64)

	abort := catchAbort(t, func() { externSuicide(f, mem, 0) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortStaticViolation, abort.Reason)
}

//---------- gas ---------

func TestOutOfGasAborts(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Gas = newGasMeter(1) // below ExternBase
	mem := newFakeMemory(64)

	abort := catchAbort(t, func() { externSender(f, mem, 0) })
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortOutOfGas, abort.Reason)

	var oog types.OutOfGasError
	require.ErrorAs(t, abort, &oog)
}

//---------- calls ---------

// stubCall records nested call frames and plays back canned results.
type stubCall struct {
	frames  []*Frame
	code    [][]byte
	entries []string
	ret     []byte
	err     error
}

func (s *stubCall) fn(ctx context.Context, frame *Frame, code []byte, entrypoint string) ([]byte, error) {
	s.frames = append(s.frames, frame)
	s.code = append(s.code, code)
	s.entries = append(s.entries, entrypoint)
	return s.ret, s.err
}

func TestCallZeroLengthBuffers(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{}
	f := newTestFrame(st)
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen))) // zero value

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)

	require.Len(t, stub.frames, 1)
	sub := stub.frames[0]
	assert.Empty(t, sub.Call.Input)
	assert.Equal(t, f.Call.Address, sub.Call.Caller)
	assert.Equal(t, target, sub.Call.Address)
	assert.Equal(t, entrypointCall, stub.entries[0])
}

func TestCallTargetWithoutCodeSucceeds(t *testing.T) {
	stub := &stubCall{}
	f := newTestFrame(state.NewMemState())
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, addr(0x66).Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)
	assert.Empty(t, stub.frames, "no code must mean no nested execution")
}

func TestCallTransfersValue(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(100))
	target := addr(0x77)

	stub := &stubCall{}
	f.call = stub.fn

	value := types.NewWord(40)
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(value)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)

	got := st.GetBalance(target)
	assert.True(t, got.Eq(&value))
	remaining := st.GetBalance(f.Call.Address)
	want := types.NewWord(60)
	assert.True(t, remaining.Eq(&want))
}

func TestCallInsufficientBalanceFails(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(1))

	stub := &stubCall{}
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, addr(0x77).Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(types.NewWord(40))))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callFailure, status)
	assert.Empty(t, stub.frames)
}

func TestCallToSelfWithValueConservesBalance(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(100))
	st.SetCode(f.Call.Address, []byte{0x00})

	stub := &stubCall{}
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, f.Call.Address.Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(types.NewWord(40))))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)
	require.Len(t, stub.frames, 1)

	balance := st.GetBalance(f.Call.Address)
	want := types.NewWord(100)
	assert.True(t, balance.Eq(&want), "self-call with value must conserve the balance, got %s", balance.String())
}

func TestCallToSelfWithValueStillRequiresBalance(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(100))

	stub := &stubCall{}
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, f.Call.Address.Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(types.NewWord(200))))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callFailure, status)
	assert.Empty(t, stub.frames)
}

func TestCallCopiesResult(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{ret: []byte("abcdef")}
	f := newTestFrame(st)
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 512, 6)
	assert.Equal(t, callSuccess, status)

	got, err := mem.Read(512, 6)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcdef"), got)
}

func TestCallFailureOfCalleeIsStatus(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{err: &types.HostAbort{Reason: types.AbortTrap}}
	f := newTestFrame(st)
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callFailure, status)
}

func TestStaticCallPropagatesStaticFlag(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{}
	f := newTestFrame(st)
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))

	status := externCall(context.Background(), f, mem, callStatic, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)

	require.Len(t, stub.frames, 1)
	assert.True(t, stub.frames[0].Static)
	assert.True(t, stub.frames[0].Call.Value.IsZero())
}

func TestDelegateCallKeepsCallerContext(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{}
	f := newTestFrame(st)
	f.call = stub.fn

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))

	status := externCall(context.Background(), f, mem, callDelegate, 0, 0, 0, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)

	require.Len(t, stub.frames, 1)
	sub := stub.frames[0]
	assert.Equal(t, f.Call.Caller, sub.Call.Caller)
	assert.Equal(t, f.Call.Address, sub.Call.Address)
	assert.True(t, sub.Call.Value.Eq(&f.Call.Value))
}

func TestCallValueInStaticContextAborts(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(100))
	f.Static = true

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, addr(0x77).Bytes()))
	require.NoError(t, mem.Write(32, wordSlice(types.NewWord(1))))

	abort := catchAbort(t, func() {
		externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	})
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortStaticViolation, abort.Reason)
}

func TestCallDepthLimit(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	stub := &stubCall{}
	f := newTestFrame(st)
	f.call = stub.fn
	f.Depth = maxCallDepth

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callFailure, status)
	assert.Empty(t, stub.frames)
}

func TestNestedLogsSurfaceOnSuccess(t *testing.T) {
	st := state.NewMemState()
	target := addr(0x55)
	st.SetCode(target, []byte{0x00})

	var emitted types.LogEntry
	emitted.Address = target
	stub := &stubCall{}
	f := newTestFrame(st)
	f.call = func(ctx context.Context, frame *Frame, code []byte, entrypoint string) ([]byte, error) {
		frame.emitLog(emitted)
		stub.frames = append(stub.frames, frame)
		return nil, nil
	}

	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, target.Bytes()))
	require.NoError(t, mem.Write(32, make([]byte, types.WordLen)))

	status := externCall(context.Background(), f, mem, callRegular, 0, 0, 32, 0, 0, 0, 0)
	assert.Equal(t, callSuccess, status)
	require.Len(t, f.logs, 1)
	assert.Equal(t, emitted, f.logs[0])
}

//---------- create ---------

func TestCreateInstallsCode(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	stub := &stubCall{err: types.NoEntrypointError{Entrypoint: entrypointDeploy}}
	f.call = stub.fn

	code := []byte{0x00, 0x61, 0x73, 0x6d}
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, make([]byte, types.WordLen))) // zero endowment
	require.NoError(t, mem.Write(64, code))

	status := externCreate(context.Background(), f, mem, false, 0, 0, 64, uint32(len(code)), 512)
	assert.Equal(t, callSuccess, status)

	rawAddr, err := mem.Read(512, types.AddressLen)
	require.NoError(t, err)
	newAddr, err := types.AddressFromBytes(rawAddr)
	require.NoError(t, err)

	assert.Equal(t, createAddress(f.Call.Address, code), newAddr)
	assert.Equal(t, code, st.GetCode(newAddr))
}

func TestCreateConstructorReturnBecomesCode(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	deployed := []byte("runtime code")
	stub := &stubCall{ret: deployed}
	f.call = stub.fn

	code := []byte("constructor")
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, make([]byte, types.WordLen)))
	require.NoError(t, mem.Write(64, code))

	status := externCreate(context.Background(), f, mem, false, 0, 0, 64, uint32(len(code)), 512)
	assert.Equal(t, callSuccess, status)

	require.Len(t, stub.entries, 1)
	assert.Equal(t, entrypointDeploy, stub.entries[0])

	rawAddr, err := mem.Read(512, types.AddressLen)
	require.NoError(t, err)
	newAddr, err := types.AddressFromBytes(rawAddr)
	require.NoError(t, err)
	assert.Equal(t, deployed, st.GetCode(newAddr))
}

func TestCreateConstructorFailureFails(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	stub := &stubCall{err: &types.HostAbort{Reason: types.AbortTrap}}
	f.call = stub.fn

	code := []byte("constructor")
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, make([]byte, types.WordLen)))
	require.NoError(t, mem.Write(64, code))

	status := externCreate(context.Background(), f, mem, false, 0, 0, 64, uint32(len(code)), 512)
	assert.Equal(t, callFailure, status)
}

func TestCreateAbortsInStaticContext(t *testing.T) {
	f := newTestFrame(state.NewMemState())
	f.Static = true
	mem := newFakeMemory(1024)

	abort := catchAbort(t, func() {
		externCreate(context.Background(), f, mem, false, 0, 0, 64, 0, 512)
	})
	require.NotNil(t, abort)
	assert.Equal(t, types.AbortStaticViolation, abort.Reason)
}

func TestCreate2AddressDependsOnSalt(t *testing.T) {
	creator := addr(0x01)
	code := []byte("code")
	var saltA, saltB types.Hash
	saltA[0] = 1
	saltB[0] = 2

	a := create2Address(creator, saltA, code)
	b := create2Address(creator, saltB, code)
	assert.NotEqual(t, a, b)

	// deterministic for the same inputs
	assert.Equal(t, a, create2Address(creator, saltA, code))
}

func TestCreateEndowmentTransferred(t *testing.T) {
	st := state.NewMemState()
	f := newTestFrame(st)
	st.SetBalance(f.Call.Address, types.NewWord(100))
	stub := &stubCall{err: types.NoEntrypointError{Entrypoint: entrypointDeploy}}
	f.call = stub.fn

	code := []byte("c")
	endowment := types.NewWord(30)
	mem := newFakeMemory(1024)
	require.NoError(t, mem.Write(0, wordSlice(endowment)))
	require.NoError(t, mem.Write(64, code))

	status := externCreate(context.Background(), f, mem, false, 0, 0, 64, 1, 512)
	assert.Equal(t, callSuccess, status)

	newAddr := createAddress(f.Call.Address, code)
	got := st.GetBalance(newAddr)
	assert.True(t, got.Eq(&endowment))
}
