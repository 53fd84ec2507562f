package types

//---------- execution context ---------

// MaxTopics is the maximum number of topics a single log entry may carry.
// The elog extern traps when the guest passes more.
const MaxTopics = 4

// BlockContext describes the block an invocation executes in. It is fixed
// for the duration of the invocation and shared by all nested frames.
type BlockContext struct {
	// Coinbase is the current block's beneficiary address.
	Coinbase Address
	// Number is the height of the current block. Genesis has number zero.
	Number uint64
	// Timestamp is the block's inception time in seconds since unix epoch.
	Timestamp uint64
	// Difficulty of the current block.
	Difficulty Word
	// GasLimit of the current block.
	GasLimit Word
	// BlockHash resolves the hash of a recent block by number. The zero
	// hash is returned for unavailable blocks. A nil func means no history
	// is available and every lookup yields the zero hash.
	BlockHash func(number uint64) Hash
}

// CallContext describes a single call frame as seen by the guest: who
// called, with what value, and with which input buffer.
type CallContext struct {
	// Caller is the account directly responsible for this execution.
	Caller Address
	// Origin is the external account that initiated the transaction.
	Origin Address
	// Address is the account whose storage and balance the frame operates on.
	Address Address
	// Value transferred with the call, in the ledger's native unit.
	Value Word
	// Input is the call data. May be empty.
	Input []byte
}

// LogEntry is one event emitted via the elog extern.
type LogEntry struct {
	// Address of the contract that emitted the entry.
	Address Address `json:"address"`
	// Topics carries up to MaxTopics fixed-width values.
	Topics []Hash `json:"topics"`
	// Data is the opaque event payload.
	Data []byte `json:"data"`
}

// ExecutionResult is the outcome of one successful top-level invocation.
// Buffers inside are owned by the caller; the host retains no references.
type ExecutionResult struct {
	// ReturnData is the buffer the guest passed to ret, or empty when the
	// entrypoint returned without calling ret.
	ReturnData []byte
	// Logs are the entries emitted by the invocation and all nested calls,
	// in emission order.
	Logs []LogEntry
	// GasUsed is the total gas consumed by the invocation.
	GasUsed Gas
	// SelfDestructed reports whether the contract scheduled itself for
	// deletion via the suicide extern.
	SelfDestructed bool
}
