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

package releases

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"tag_name": "v0.87.4", "assets": [{"name": "toolchain-v0.87.4-amd64-linux.tar.gz"}, {"name": "toolchain-v0.87.4-arm64-darwin.tar.gz"}]},
  {"tag_name": "v0.87.3", "assets": [{"name": "toolchain-v0.87.3-arm64-darwin.tar.gz"}]},
  {"tag_name": "v0.87.2", "assets": [{"name": "toolchain-v0.87.2-amd64-linux.tar.gz"}]},
  {"tag_name": "v0.86.0", "assets": []}
]`

type seenRequest struct {
	path, auth string
}

func newTestClient(t *testing.T, status int, body string) (*Client, *seenRequest) {
	t.Helper()
	seen := new(seenRequest)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path, seen.auth = r.URL.Path, r.Header.Get("Authorization")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	c := NewClient("tok")
	c.APIURL = srv.URL
	return c, seen
}

func TestVersions(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, releasesJSON)

	versions, err := c.Versions(toolchain.PlatformLinuxAMD64)
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.87.4", "v0.87.2"}, versions)
	assert.Equal(t, "/repos/"+DefaultRepo+"/releases", req.path)
	assert.Equal(t, "Bearer tok", req.auth)

	versions, err = c.Versions(toolchain.PlatformDarwinARM64)
	require.NoError(t, err)
	assert.Equal(t, []string{"v0.87.4", "v0.87.3"}, versions)
}

func TestVersionsNoneForPlatform(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, releasesJSON)
	_, err := c.Versions(toolchain.PlatformLinuxARM64)
	require.ErrorIs(t, err, ErrNoReleases)
}

func TestVersionsServerError(t *testing.T) {
	c, _ := newTestClient(t, http.StatusForbidden, `{"message":"rate limited"}`)
	_, err := c.Versions(toolchain.PlatformLinuxAMD64)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestVersionsMalformed(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, `{"not":"a list"}`)
	_, err := c.Versions(toolchain.PlatformLinuxAMD64)
	require.Error(t, err)
}

func TestPrompt(t *testing.T) {
	versions := []string{"v3", "v2", "v1"}
	tests := []struct {
		input string
		want  string
	}{
		{"2\n", "v2"},
		{" 3 \n", "v1"},
		{"\n", "v3"},
		{"", "v3"},
		{"v1\n", "v1"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		have, err := Prompt(versions, strings.NewReader(tt.input), &out)
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.want, have, "input %q", tt.input)
		assert.Contains(t, out.String(), "  2. v2\n")
	}
}

func TestPromptInvalid(t *testing.T) {
	for _, input := range []string{"0\n", "4\n", "x\n", "-1\n"} {
		_, err := Prompt([]string{"v3", "v2", "v1"}, strings.NewReader(input), new(bytes.Buffer))
		require.ErrorIs(t, err, ErrInvalidSelection, "input %q", input)
	}
}

func TestSelectNonInteractive(t *testing.T) {
	var out bytes.Buffer
	v, err := Select([]string{"v3", "v2"}, false, strings.NewReader("2\n"), &out)
	require.NoError(t, err)
	assert.Equal(t, "v3", v)
	assert.Empty(t, out.String())

	_, err = Select(nil, false, nil, nil)
	require.ErrorIs(t, err, ErrNoReleases)
}

func TestResolver(t *testing.T) {
	c, _ := newTestClient(t, http.StatusOK, releasesJSON)
	r := &Resolver{Client: c, Platform: toolchain.PlatformLinuxAMD64}
	v, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "v0.87.4", v)

	var out bytes.Buffer
	r.Interactive, r.In, r.Out = true, strings.NewReader("2\n"), &out
	v, err = r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "v0.87.2", v)
}
