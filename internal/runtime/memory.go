package runtime

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/ethwasm/hostvm/types"
)

// Memory is the boundary's view of guest linear memory. Every extern goes
// through it, so a fake implementation is enough to test the whole extern
// set without a wasm instance.
type Memory interface {
	// Read copies length bytes starting at offset out of guest memory.
	// The returned slice is owned by the caller; it never aliases guest
	// memory. Zero-length reads succeed regardless of offset.
	Read(offset, length uint32) ([]byte, error)
	// Write copies data into guest memory starting at offset. Zero-length
	// writes succeed regardless of offset.
	Write(offset uint32, data []byte) error
}

// wasmMemory adapts wazero's api.Memory to the Memory interface.
type wasmMemory struct {
	mem api.Memory
}

func newWasmMemory(mod api.Module) Memory {
	return wasmMemory{mem: mod.Memory()}
}

func (m wasmMemory) Read(offset, length uint32) ([]byte, error) {
	if length == 0 {
		return nil, nil
	}
	if m.mem == nil {
		return nil, fmt.Errorf("module has no memory")
	}
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("read of %d bytes at offset %d exceeds memory size %d", length, offset, m.mem.Size())
	}
	// api.Memory.Read returns a view into guest memory; copy so the buffer
	// stays valid after the guest resumes.
	return append([]byte(nil), data...), nil
}

func (m wasmMemory) Write(offset uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if m.mem == nil {
		return fmt.Errorf("module has no memory")
	}
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("write of %d bytes at offset %d exceeds memory size %d", len(data), offset, m.mem.Size())
	}
	return nil
}

//---------- fixed-width marshaling ---------

func readWord(m Memory, ptr uint32) (types.Word, error) {
	raw, err := m.Read(ptr, types.WordLen)
	if err != nil {
		return types.Word{}, err
	}
	return types.WordFromBytes(raw), nil
}

func writeWord(m Memory, ptr uint32, w types.Word) error {
	encoded := types.WordBytes(w)
	return m.Write(ptr, encoded[:])
}

func readAddress(m Memory, ptr uint32) (types.Address, error) {
	raw, err := m.Read(ptr, types.AddressLen)
	if err != nil {
		return types.Address{}, err
	}
	return types.AddressFromBytes(raw)
}

func writeAddress(m Memory, ptr uint32, a types.Address) error {
	return m.Write(ptr, a[:])
}

func readHash(m Memory, ptr uint32) (types.Hash, error) {
	raw, err := m.Read(ptr, types.HashLen)
	if err != nil {
		return types.Hash{}, err
	}
	return types.HashFromBytes(raw)
}

func writeHash(m Memory, ptr uint32, h types.Hash) error {
	return m.Write(ptr, h[:])
}
