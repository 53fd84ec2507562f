package types

import "github.com/holiman/uint256"

// Word is the native 256-bit unsigned value of the ledger model. Balances,
// endowments, difficulty and storage values all cross the host boundary as
// words, serialized big-endian into exactly 32 bytes.
type Word = uint256.Int

// WordLen is the serialized size of a Word in bytes.
const WordLen = 32

// NewWord returns a word holding the given uint64.
func NewWord(v uint64) Word {
	return *uint256.NewInt(v)
}

// WordFromBytes interprets b as a big-endian unsigned integer.
// Inputs longer than 32 bytes are truncated to their low 32 bytes,
// matching uint256 semantics.
func WordFromBytes(b []byte) Word {
	var w uint256.Int
	w.SetBytes(b)
	return w
}

// WordBytes returns the canonical 32-byte big-endian serialization of w.
func WordBytes(w Word) [WordLen]byte {
	return w.Bytes32()
}
