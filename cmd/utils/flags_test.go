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

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitCommand(t *testing.T) {
	tests := map[string][]string{
		"node scripts/verify_class_id.mjs":        {"node", "scripts/verify_class_id.mjs"},
		"  node   a.mjs  ":                        {"node", "a.mjs"},
		`node "/path with space/verify.mjs" --x`:  {"node", "/path with space/verify.mjs", "--x"},
		`sh -c 'echo hi'`:                         {"sh", "-c", "echo hi"},
		`a ""`:                                    {"a", ""},
		"":                                        nil,
	}
	for in, want := range tests {
		assert.Equal(t, want, SplitCommand(in), "input %q", in)
	}
}
