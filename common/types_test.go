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

package common

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0xABC", "0x" + strings.Repeat("0", 61) + "abc"},
		{"abc", "0x" + strings.Repeat("0", 61) + "abc"},
		{"0x0", "0x" + strings.Repeat("0", 64)},
		{"0x0000000000000000000000000000000000000000000000000000000000000001", "0x" + strings.Repeat("0", 63) + "1"},
		{"0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000000", "0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000000"},
	}
	for _, tt := range tests {
		a, err := ParseAddress(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, a.Hex(), tt.input)
	}
}

func TestParseAddressInvalid(t *testing.T) {
	for _, input := range []string{
		"",
		"0x",
		"0xzz",
		"0x30644e72e131a029b85045b68181585d2833e84879b9709143e1f593f0000001",
		"0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		"0x01" + strings.Repeat("00", 32),
	} {
		_, err := ParseAddress(input)
		require.ErrorIs(t, err, ErrInvalidAddress, "input %q", input)
	}
}

func TestAddressJSON(t *testing.T) {
	a, err := ParseAddress("0x2a")
	require.NoError(t, err)

	enc, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"0x`+strings.Repeat("0", 62)+`2a"`, string(enc))

	var dec Address
	require.NoError(t, json.Unmarshal(enc, &dec))
	assert.Equal(t, a, dec)
	assert.False(t, dec.IsZero())
	assert.True(t, Address{}.IsZero())
}
