package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AddressLen is the length of an account address in bytes.
const AddressLen = 20

// HashLen is the length of a 256-bit hash in bytes.
const HashLen = 32

// Address identifies an account or contract. Addresses are immutable and
// compared for equality by value.
type Address [AddressLen]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// Bytes returns a copy of the address as a byte slice.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a[:]...)
}

// IsZero reports whether the address is the all-zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}

// MarshalJSON implements the json.Marshaler interface for Address.
// It converts the address to a hex-encoded string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(a[:]))
}

// UnmarshalJSON implements the json.Unmarshaler interface for Address.
// It parses a hex-encoded string into an address.
func (a *Address) UnmarshalJSON(input []byte) error {
	var hexString string
	if err := json.Unmarshal(input, &hexString); err != nil {
		return err
	}
	data, err := hex.DecodeString(hexString)
	if err != nil {
		return err
	}
	if len(data) != AddressLen {
		return fmt.Errorf("got wrong number of bytes for address")
	}
	copy(a[:], data)
	return nil
}

// AddressFromBytes converts a byte slice into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLen {
		return a, fmt.Errorf("address must be %d bytes, got %d", AddressLen, len(b))
	}
	copy(a[:], b)
	return a, nil
}

// Hash is a fixed-width 256-bit value used for storage keys, log topics and
// block hashes.
type Hash [HashLen]byte

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Bytes returns a copy of the hash as a byte slice.
func (h Hash) Bytes() []byte {
	return append([]byte(nil), h[:]...)
}

// IsZero reports whether the hash is the all-zero hash.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// MarshalJSON implements the json.Marshaler interface for Hash.
func (h Hash) MarshalJSON() ([]byte, error) {
	return json.Marshal(hex.EncodeToString(h[:]))
}

// UnmarshalJSON implements the json.Unmarshaler interface for Hash.
func (h *Hash) UnmarshalJSON(input []byte) error {
	var hexString string
	if err := json.Unmarshal(input, &hexString); err != nil {
		return err
	}
	data, err := hex.DecodeString(hexString)
	if err != nil {
		return err
	}
	if len(data) != HashLen {
		return fmt.Errorf("got wrong number of bytes for hash")
	}
	copy(h[:], data)
	return nil
}

// HashFromBytes converts a byte slice into a Hash.
func HashFromBytes(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashLen {
		return h, fmt.Errorf("hash must be %d bytes, got %d", HashLen, len(b))
	}
	copy(h[:], b)
	return h, nil
}
