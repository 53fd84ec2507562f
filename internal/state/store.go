package state

import (
	"fmt"

	dbm "github.com/cometbft/cometbft-db"

	"github.com/ethwasm/hostvm/types"
)

// Key layout, one byte of prefix then the 20-byte address:
//
//	b/<addr>       -> 32-byte big-endian balance
//	c/<addr>       -> contract code
//	s/<addr><key>  -> 32-byte storage value
const (
	prefixBalance = 'b'
	prefixCode    = 'c'
	prefixStorage = 's'
)

// Store is a WorldState persisted in a cometbft-db backend. Like every
// WorldState, its methods do not return errors: a failing database is a
// host-level fatal condition, so failures panic and surface as a HostAbort
// of the running invocation.
type Store struct {
	db dbm.DB
}

var _ types.WorldState = (*Store)(nil)

// NewStore wraps the given database. The caller keeps ownership of db and
// is responsible for closing it.
func NewStore(db dbm.DB) *Store {
	return &Store{db: db}
}

func balanceKey(addr types.Address) []byte {
	return append([]byte{prefixBalance}, addr[:]...)
}

func codeKey(addr types.Address) []byte {
	return append([]byte{prefixCode}, addr[:]...)
}

func storageKey(addr types.Address, key types.Hash) []byte {
	k := make([]byte, 0, 1+types.AddressLen+types.HashLen)
	k = append(k, prefixStorage)
	k = append(k, addr[:]...)
	return append(k, key[:]...)
}

func (s *Store) mustGet(key []byte) []byte {
	value, err := s.db.Get(key)
	if err != nil {
		panic(fmt.Errorf("state db get: %w", err))
	}
	return value
}

func (s *Store) mustSet(key, value []byte) {
	if err := s.db.Set(key, value); err != nil {
		panic(fmt.Errorf("state db set: %w", err))
	}
}

func (s *Store) mustDelete(key []byte) {
	if err := s.db.Delete(key); err != nil {
		panic(fmt.Errorf("state db delete: %w", err))
	}
}

// GetStorage implements types.WorldState.
func (s *Store) GetStorage(addr types.Address, key types.Hash) types.Word {
	return types.WordFromBytes(s.mustGet(storageKey(addr, key)))
}

// SetStorage implements types.WorldState.
func (s *Store) SetStorage(addr types.Address, key types.Hash, value types.Word) {
	encoded := types.WordBytes(value)
	s.mustSet(storageKey(addr, key), encoded[:])
}

// GetBalance implements types.WorldState.
func (s *Store) GetBalance(addr types.Address) types.Word {
	return types.WordFromBytes(s.mustGet(balanceKey(addr)))
}

// SetBalance implements types.WorldState.
func (s *Store) SetBalance(addr types.Address, balance types.Word) {
	encoded := types.WordBytes(balance)
	s.mustSet(balanceKey(addr), encoded[:])
}

// GetCode implements types.WorldState.
func (s *Store) GetCode(addr types.Address) []byte {
	code := s.mustGet(codeKey(addr))
	if len(code) == 0 {
		return nil
	}
	return append([]byte(nil), code...)
}

// SetCode implements types.WorldState.
func (s *Store) SetCode(addr types.Address, code []byte) {
	s.mustSet(codeKey(addr), code)
}

// AccountExists implements types.WorldState.
func (s *Store) AccountExists(addr types.Address) bool {
	if s.mustGet(balanceKey(addr)) != nil || s.mustGet(codeKey(addr)) != nil {
		return true
	}
	// any storage slot counts as state
	keys := s.storageKeys(addr)
	return len(keys) > 0
}

// Suicide implements types.WorldState.
func (s *Store) Suicide(addr types.Address, refund types.Address) {
	balance := s.GetBalance(addr)
	if !balance.IsZero() && addr != refund {
		refundBalance := s.GetBalance(refund)
		var sum types.Word
		sum.Add(&refundBalance, &balance)
		s.SetBalance(refund, sum)
	}
	s.mustDelete(balanceKey(addr))
	s.mustDelete(codeKey(addr))
	for _, key := range s.storageKeys(addr) {
		s.mustDelete(key)
	}
}

// storageKeys collects all raw storage keys of an account. Keys are
// collected before deletion so the iterator never observes its own writes.
func (s *Store) storageKeys(addr types.Address) [][]byte {
	start := append([]byte{prefixStorage}, addr[:]...)
	end := prefixEnd(start)
	iter, err := s.db.Iterator(start, end)
	if err != nil {
		panic(fmt.Errorf("state db iterator: %w", err))
	}
	defer iter.Close()

	var keys [][]byte
	for ; iter.Valid(); iter.Next() {
		keys = append(keys, append([]byte(nil), iter.Key()...))
	}
	if err := iter.Error(); err != nil {
		panic(fmt.Errorf("state db iterator: %w", err))
	}
	return keys
}

// prefixEnd returns the smallest key greater than every key with the given
// prefix, or nil when the prefix is all 0xff.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xff {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}
