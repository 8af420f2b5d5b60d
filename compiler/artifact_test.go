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

package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	tests := map[string]string{
		"counter":             "Counter",
		"my_token":            "MyToken",
		"easy_private_voting": "EasyPrivateVoting",
		"token2":              "Token2",
		"already_Upper":       "AlreadyUpper",
		"a__b":                "AB",
		"_leading_trailing_":  "LeadingTrailing",
		"ünicode_name":        "ÜnicodeName",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, TitleCase(in), "input %q", in)
	}
}

func TestArtifactPath(t *testing.T) {
	root := t.TempDir()
	path, err := ArtifactPath(filepath.Join(root, "contracts", "counter"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "contracts", "counter", "target", "counter_contract-Counter.json"), path)

	path, err = ArtifactPath(filepath.Join(root, "token_bridge") + string(filepath.Separator))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "token_bridge", "target", "token_bridge_contract-TokenBridge.json"), path)
}

func TestArtifactPathRelative(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	path, err := ArtifactPath("./contracts/counter")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "contracts", "counter", "target", "counter_contract-Counter.json"), path)
}

func TestLocate(t *testing.T) {
	src := filepath.Join(t.TempDir(), "counter")
	_, err := Locate(src)
	require.ErrorIs(t, err, ErrArtifactNotFound)
	var aerr *ArtifactNotFoundError
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, filepath.Join(src, "target", "counter_contract-Counter.json"), aerr.Path)

	require.NoError(t, os.MkdirAll(filepath.Join(src, "target"), 0755))
	require.NoError(t, os.WriteFile(aerr.Path, []byte("{}"), 0644))
	path, err := Locate(src)
	require.NoError(t, err)
	assert.Equal(t, aerr.Path, path)
}

func TestLocateIgnoresDirectory(t *testing.T) {
	src := filepath.Join(t.TempDir(), "counter")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "target", "counter_contract-Counter.json"), 0755))
	_, err := Locate(src)
	require.ErrorIs(t, err, ErrArtifactNotFound)
}

func TestReadArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter_contract-Counter.json")
	data := `{"name":"Counter","noir_version":"1.0.0-beta.3","functions":[{"name":"increment"},{"name":"get"}],"outputs":{}}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	info, err := ReadArtifact(path)
	require.NoError(t, err)
	assert.Equal(t, &ArtifactInfo{Path: path, Name: "Counter", NoirVersion: "1.0.0-beta.3", Functions: 2}, info)
}

func TestReadArtifactInvalid(t *testing.T) {
	dir := t.TempDir()
	for i, data := range []string{"", "null", "[1,2]", "{broken"} {
		path := filepath.Join(dir, "artifact"+string(rune('a'+i))+".json")
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
		_, err := ReadArtifact(path)
		require.Error(t, err, "input %q", data)
	}
	_, err := ReadArtifact(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
