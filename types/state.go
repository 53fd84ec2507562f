package types

// WorldState is the host-managed persistent state the boundary dispatches
// to. Implementations are provided by the embedder; the boundary itself
// holds no state across invocations.
//
// None of the methods return errors: the guest environment has no
// partial-failure channel for state access, so implementations must either
// succeed or panic, which the boundary surfaces as a HostAbort.
type WorldState interface {
	// GetStorage returns the word stored under key for the given account,
	// or the zero word when unset.
	GetStorage(addr Address, key Hash) Word
	// SetStorage stores a word under key for the given account.
	SetStorage(addr Address, key Hash, value Word)

	// GetBalance returns the account's balance. Unknown accounts have
	// balance zero.
	GetBalance(addr Address) Word
	// SetBalance sets the account's balance.
	SetBalance(addr Address, balance Word)

	// GetCode returns the account's contract code, or nil for accounts
	// without code.
	GetCode(addr Address) []byte
	// SetCode installs contract code for the account.
	SetCode(addr Address, code []byte)

	// AccountExists reports whether the account has any state.
	AccountExists(addr Address) bool
	// Suicide transfers the account's remaining balance to refund and
	// removes the account.
	Suicide(addr Address, refund Address)
}
