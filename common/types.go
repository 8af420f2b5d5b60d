// Copyright 2025 The aztec-verifier Authors
// This file is part of the aztec-verifier library.
//
// The aztec-verifier library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The aztec-verifier library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the aztec-verifier library. If not, see <http://www.gnu.org/licenses/>.

// Package common contains the value types shared by the verifier packages.
package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// AddressLength is the size of an Aztec address, one BN254 scalar field
// element, in bytes.
const AddressLength = 32

// fieldModulus is the order of the BN254 scalar field. Aztec addresses are
// field elements and therefore strictly below it.
var fieldModulus = uint256.MustFromHex("0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001")

var ErrInvalidAddress = errors.New("invalid address")

// Address is an Aztec contract address.
// Address 表示一个 Aztec 合约地址，即 BN254 标量域中的一个元素。
type Address [AddressLength]byte

// ParseAddress decodes a hex address. The 0x prefix is optional, odd-length
// and short inputs are left-padded with zeros.
func ParseAddress(s string) (Address, error) {
	var a Address
	if err := a.UnmarshalText([]byte(s)); err != nil {
		return Address{}, err
	}
	return a, nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(input []byte) error {
	raw := strings.TrimPrefix(strings.TrimPrefix(string(input), "0x"), "0X")
	if raw == "" {
		return fmt.Errorf("%w: empty hex string", ErrInvalidAddress)
	}
	if len(raw)%2 == 1 {
		raw = "0" + raw
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddress, input, err)
	}
	if len(b) > AddressLength {
		return fmt.Errorf("%w %q: longer than %d bytes", ErrInvalidAddress, input, AddressLength)
	}
	if new(uint256.Int).SetBytes(b).Cmp(fieldModulus) >= 0 {
		return fmt.Errorf("%w %q: not a field element", ErrInvalidAddress, input)
	}
	*a = Address{}
	copy(a[AddressLength-len(b):], b)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// Hex returns the full-width 0x-prefixed hex encoding of a.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String implements fmt.Stringer.
func (a Address) String() string {
	return a.Hex()
}

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Address{}
}
