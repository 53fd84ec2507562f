package runtime

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"

	"github.com/ethwasm/hostvm/types"
)

// Extern implementations. Each operates on the invocation's frame and a
// bounds-checked view of guest memory; register.go adapts them to wazero
// host function signatures. Failures never return to the guest: they unwind
// via Frame.abortWith and surface as the HostAbort of the invocation.

//---------- context readers ---------

func externSender(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "sender")
	f.mustMem(writeAddress(mem, destPtr, f.Call.Caller))
}

func externOrigin(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "origin")
	f.mustMem(writeAddress(mem, destPtr, f.Call.Origin))
}

func externAddress(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "address")
	f.mustMem(writeAddress(mem, destPtr, f.Call.Address))
}

func externCoinbase(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "coinbase")
	f.mustMem(writeAddress(mem, destPtr, f.Block.Coinbase))
}

func externValue(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "value")
	f.mustMem(writeWord(mem, destPtr, f.Call.Value))
}

func externDifficulty(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "difficulty")
	f.mustMem(writeWord(mem, destPtr, f.Block.Difficulty))
}

func externGasLimit(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase, "gaslimit")
	f.mustMem(writeWord(mem, destPtr, f.Block.GasLimit))
}

func externTimestamp(f *Frame) int64 {
	f.chargeGas(f.Config.ExternBase, "timestamp")
	return int64(f.Block.Timestamp)
}

func externBlockNumber(f *Frame) int64 {
	f.chargeGas(f.Config.ExternBase, "blocknumber")
	return int64(f.Block.Number)
}

func externGasLeft(f *Frame) int64 {
	f.chargeGas(f.Config.ExternBase, "gasleft")
	return int64(f.Gas.GasRemaining())
}

func externBalance(f *Frame, mem Memory, addrPtr, destPtr uint32) {
	f.chargeGas(f.Config.BalanceRead, "balance")
	addr, err := readAddress(mem, addrPtr)
	f.mustMem(err)
	f.mustMem(writeWord(mem, destPtr, f.State.GetBalance(addr)))
}

func externBlockHash(f *Frame, mem Memory, number int64, destPtr uint32) {
	f.chargeGas(f.Config.BlockHash, "blockhash")
	var h types.Hash
	if f.Block.BlockHash != nil && number >= 0 {
		h = f.Block.BlockHash(uint64(number))
	}
	f.mustMem(writeHash(mem, destPtr, h))
}

//---------- storage accessors ---------

func externStorageRead(f *Frame, mem Memory, keyPtr, destPtr uint32) {
	f.chargeGas(f.Config.StorageRead, "storage_read")
	key, err := readHash(mem, keyPtr)
	f.mustMem(err)
	value := f.State.GetStorage(f.Call.Address, key)
	f.mustMem(writeWord(mem, destPtr, value))
	f.Logger.Debug("storage_read",
		zap.String("address", f.Call.Address.String()),
		zap.String("key", key.String()))
}

func externStorageWrite(f *Frame, mem Memory, keyPtr, valuePtr uint32) {
	f.requireMutable("storage_write")
	f.chargeGas(f.Config.StorageWrite, "storage_write")
	key, err := readHash(mem, keyPtr)
	f.mustMem(err)
	value, err := readWord(mem, valuePtr)
	f.mustMem(err)
	f.State.SetStorage(f.Call.Address, key, value)
	f.Logger.Debug("storage_write",
		zap.String("address", f.Call.Address.String()),
		zap.String("key", key.String()))
}

//---------- input ---------

func externInputLength(f *Frame) uint32 {
	f.chargeGas(f.Config.ExternBase, "input_length")
	return uint32(len(f.Call.Input))
}

func externFetchInput(f *Frame, mem Memory, destPtr uint32) {
	f.chargeGas(f.Config.ExternBase+f.Config.PerByte*types.Gas(len(f.Call.Input)), "fetch_input")
	f.mustMem(mem.Write(destPtr, f.Call.Input))
}

//---------- logging ---------

func externElog(f *Frame, mem Memory, topicPtr, topicCount, dataPtr, dataLen uint32) {
	f.requireMutable("elog")
	if topicCount > types.MaxTopics {
		f.abortWith(types.Abort(types.AbortTooManyTopics, "%d topics, max %d", topicCount, types.MaxTopics))
	}
	cost := f.Config.LogBase +
		f.Config.LogPerTopic*types.Gas(topicCount) +
		f.Config.LogPerByte*types.Gas(dataLen)
	f.chargeGas(cost, "elog")

	topics := make([]types.Hash, 0, topicCount)
	for i := uint32(0); i < topicCount; i++ {
		topic, err := readHash(mem, topicPtr+i*types.HashLen)
		f.mustMem(err)
		topics = append(topics, topic)
	}
	data, err := mem.Read(dataPtr, dataLen)
	f.mustMem(err)

	f.emitLog(types.LogEntry{Address: f.Call.Address, Topics: topics, Data: data})
}

//---------- control ---------

func externRet(f *Frame, mem Memory, ptr, length uint32) {
	f.chargeGas(f.Config.ExternBase+f.Config.PerByte*types.Gas(length), "ret")
	data, err := mem.Read(ptr, length)
	f.mustMem(err)
	f.terminate(terminatedReturn, data)
}

func externSuicide(f *Frame, mem Memory, refundPtr uint32) {
	f.requireMutable("suicide")
	f.chargeGas(f.Config.ExternBase, "suicide")
	refund, err := readAddress(mem, refundPtr)
	f.mustMem(err)
	f.State.Suicide(f.Call.Address, refund)
	f.terminate(terminatedSuicide, nil)
}

//---------- calls ---------

type callKind uint8

const (
	callRegular callKind = iota
	callDelegate
	callStatic
)

func (k callKind) String() string {
	switch k {
	case callDelegate:
		return "dcall"
	case callStatic:
		return "scall"
	default:
		return "ccall"
	}
}

// Call status codes returned to the guest. Callee failure is the one
// boundary condition the guest can observe and recover from.
const (
	callSuccess int32 = 0
	callFailure int32 = 1
)

func externCall(ctx context.Context, f *Frame, mem Memory, kind callKind, gas int64, addrPtr, valuePtr, inputPtr, inputLen, resultPtr, resultLen uint32) int32 {
	f.chargeGas(f.Config.CallBase+f.Config.PerByte*types.Gas(inputLen), kind.String())

	target, err := readAddress(mem, addrPtr)
	f.mustMem(err)
	var value types.Word
	if kind == callRegular {
		value, err = readWord(mem, valuePtr)
		f.mustMem(err)
	}
	input, err := mem.Read(inputPtr, inputLen)
	f.mustMem(err)

	if f.Depth+1 > maxCallDepth {
		return callFailure
	}
	if kind == callRegular && !value.IsZero() {
		// value transfers are state mutations
		f.requireMutable("ccall with value")
		if !transfer(f.State, f.Call.Address, target, value) {
			return callFailure
		}
	}

	sub := &Frame{
		State:  f.State,
		Block:  f.Block,
		Config: f.Config,
		Logger: f.Logger,
		Depth:  f.Depth + 1,
		Static: f.Static || kind == callStatic,
		call:   f.call,
	}
	switch kind {
	case callDelegate:
		// callee code runs against the caller's account and message
		sub.Call = types.CallContext{
			Caller:  f.Call.Caller,
			Origin:  f.Call.Origin,
			Address: f.Call.Address,
			Value:   f.Call.Value,
			Input:   input,
		}
	default:
		sub.Call = types.CallContext{
			Caller:  f.Call.Address,
			Origin:  f.Call.Origin,
			Address: target,
			Value:   value,
			Input:   input,
		}
	}

	subLimit := f.Gas.GasRemaining()
	if gas > 0 && types.Gas(gas) < subLimit {
		subLimit = types.Gas(gas)
	}
	meter := newGasMeter(subLimit)
	sub.Gas = meter

	// calling an account without code succeeds with an empty result
	var ret []byte
	var callErr error
	if code := f.State.GetCode(target); len(code) > 0 {
		ret, callErr = f.call(ctx, sub, code, entrypointCall)
	}
	f.chargeGas(meter.GasConsumed(), "nested "+kind.String())

	if callErr != nil {
		f.Logger.Debug("nested call failed",
			zap.String("kind", kind.String()),
			zap.String("target", target.String()),
			zap.Error(callErr))
		return callFailure
	}
	f.adoptLogs(sub)

	if len(ret) > 0 {
		n := uint32(len(ret))
		if resultLen < n {
			n = resultLen
		}
		f.mustMem(mem.Write(resultPtr, ret[:n]))
	}
	return callSuccess
}

func externCreate(ctx context.Context, f *Frame, mem Memory, salted bool, endowmentPtr, saltPtr, codePtr, codeLen, destPtr uint32) int32 {
	name := "create"
	if salted {
		name = "create2"
	}
	f.requireMutable(name)
	f.chargeGas(f.Config.CreateBase+f.Config.PerByte*types.Gas(codeLen), name)

	endowment, err := readWord(mem, endowmentPtr)
	f.mustMem(err)
	var salt types.Hash
	if salted {
		salt, err = readHash(mem, saltPtr)
		f.mustMem(err)
	}
	code, err := mem.Read(codePtr, codeLen)
	f.mustMem(err)

	if f.Depth+1 > maxCallDepth {
		return callFailure
	}

	var newAddr types.Address
	if salted {
		newAddr = create2Address(f.Call.Address, salt, code)
	} else {
		newAddr = createAddress(f.Call.Address, code)
	}
	if !endowment.IsZero() && !transfer(f.State, f.Call.Address, newAddr, endowment) {
		return callFailure
	}

	// The constructor's return buffer becomes the deployed code; a module
	// without a deploy export (or an empty return) is installed as-is.
	deployed := code
	if len(code) > 0 {
		sub := &Frame{
			State:  f.State,
			Block:  f.Block,
			Config: f.Config,
			Logger: f.Logger,
			Depth:  f.Depth + 1,
			call:   f.call,
			Call: types.CallContext{
				Caller:  f.Call.Address,
				Origin:  f.Call.Origin,
				Address: newAddr,
				Value:   endowment,
			},
		}
		meter := newGasMeter(f.Gas.GasRemaining())
		sub.Gas = meter

		ret, callErr := f.call(ctx, sub, code, entrypointDeploy)
		f.chargeGas(meter.GasConsumed(), "constructor")

		var noEntry types.NoEntrypointError
		switch {
		case callErr == nil:
			f.adoptLogs(sub)
			if len(ret) > 0 {
				deployed = ret
			}
		case errors.As(callErr, &noEntry):
			// no constructor, install the module unchanged
		default:
			f.Logger.Debug("constructor failed",
				zap.String("address", newAddr.String()),
				zap.Error(callErr))
			return callFailure
		}
	}

	f.State.SetCode(newAddr, deployed)
	f.mustMem(writeAddress(mem, destPtr, newAddr))
	return callSuccess
}

//---------- helpers ---------

// transfer moves amount between accounts, reporting false on insufficient
// balance.
func transfer(st types.WorldState, from, to types.Address, amount types.Word) bool {
	if amount.IsZero() {
		return true
	}
	fromBalance := st.GetBalance(from)
	if fromBalance.Lt(&amount) {
		return false
	}
	// a self-transfer must not touch the balance at all: debiting and then
	// crediting from a stale read would mint the amount
	if from == to {
		return true
	}
	var newFrom, newTo types.Word
	newFrom.Sub(&fromBalance, &amount)
	toBalance := st.GetBalance(to)
	newTo.Add(&toBalance, &amount)
	st.SetBalance(from, newFrom)
	st.SetBalance(to, newTo)
	return true
}

func keccak256(chunks ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, c := range chunks {
		h.Write(c)
	}
	return h.Sum(nil)
}

// createAddress derives the account address for plain create from the
// creator and the constructor code.
func createAddress(creator types.Address, code []byte) types.Address {
	var a types.Address
	copy(a[:], keccak256(creator[:], code)[12:])
	return a
}

// create2Address derives the account address for salted create:
// keccak256(0xff ++ creator ++ salt ++ keccak256(code))[12:].
func create2Address(creator types.Address, salt types.Hash, code []byte) types.Address {
	var a types.Address
	copy(a[:], keccak256([]byte{0xff}, creator[:], salt[:], keccak256(code))[12:])
	return a
}
