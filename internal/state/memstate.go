// Package state provides WorldState implementations: a map-backed state for
// tests and tooling, and a persistent state on top of cometbft-db.
package state

import (
	"github.com/ethwasm/hostvm/types"
)

type account struct {
	balance types.Word
	code    []byte
	storage map[types.Hash]types.Word
}

// MemState is a map-backed WorldState. It is not safe for concurrent use;
// an invocation owns its state for the duration of the call.
type MemState struct {
	accounts map[types.Address]*account
}

var _ types.WorldState = (*MemState)(nil)

// NewMemState creates an empty in-memory world state.
func NewMemState() *MemState {
	return &MemState{accounts: make(map[types.Address]*account)}
}

func (s *MemState) get(addr types.Address) *account {
	return s.accounts[addr]
}

func (s *MemState) getOrCreate(addr types.Address) *account {
	acct := s.accounts[addr]
	if acct == nil {
		acct = &account{storage: make(map[types.Hash]types.Word)}
		s.accounts[addr] = acct
	}
	return acct
}

// GetStorage implements types.WorldState.
func (s *MemState) GetStorage(addr types.Address, key types.Hash) types.Word {
	if acct := s.get(addr); acct != nil {
		return acct.storage[key]
	}
	return types.Word{}
}

// SetStorage implements types.WorldState.
func (s *MemState) SetStorage(addr types.Address, key types.Hash, value types.Word) {
	s.getOrCreate(addr).storage[key] = value
}

// GetBalance implements types.WorldState.
func (s *MemState) GetBalance(addr types.Address) types.Word {
	if acct := s.get(addr); acct != nil {
		return acct.balance
	}
	return types.Word{}
}

// SetBalance implements types.WorldState.
func (s *MemState) SetBalance(addr types.Address, balance types.Word) {
	s.getOrCreate(addr).balance = balance
}

// GetCode implements types.WorldState.
func (s *MemState) GetCode(addr types.Address) []byte {
	if acct := s.get(addr); acct != nil && acct.code != nil {
		return append([]byte(nil), acct.code...)
	}
	return nil
}

// SetCode implements types.WorldState.
func (s *MemState) SetCode(addr types.Address, code []byte) {
	s.getOrCreate(addr).code = append([]byte(nil), code...)
}

// AccountExists implements types.WorldState.
func (s *MemState) AccountExists(addr types.Address) bool {
	return s.get(addr) != nil
}

// Suicide implements types.WorldState. The account's balance moves to the
// refund address and the account is removed, including code and storage.
func (s *MemState) Suicide(addr types.Address, refund types.Address) {
	acct := s.get(addr)
	if acct == nil {
		return
	}
	if !acct.balance.IsZero() && addr != refund {
		target := s.getOrCreate(refund)
		var sum types.Word
		sum.Add(&target.balance, &acct.balance)
		target.balance = sum
	}
	delete(s.accounts, addr)
}
