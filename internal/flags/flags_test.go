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

package flags

import (
	"flag"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("CACHE", "/var/cache")

	assert.Equal(t, "/home/tester/.aztec-verifier", expandPath("~/.aztec-verifier"))
	assert.Equal(t, "/home/tester", expandPath("~"))
	assert.Equal(t, "/var/cache/aztec", expandPath("$CACHE/aztec"))
	assert.Equal(t, "/a/c", expandPath("/a/b/../c"))

	abs, err := filepath.Abs("relative/dir")
	require.NoError(t, err)
	assert.Equal(t, abs, expandPath("relative/dir"))
}

func TestDirectoryFlagEnv(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("TEST_DATADIR", "~/cache")

	f := &DirectoryFlag{Name: "datadir", Value: "/default", EnvVars: []string{"TEST_DATADIR"}}
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, f.Apply(set))
	require.NoError(t, set.Parse(nil))

	assert.True(t, f.IsSet())
	assert.Equal(t, "/home/tester/cache", set.Lookup("datadir").Value.String())
}

func TestCheckExclusive(t *testing.T) {
	a := &cli.StringFlag{Name: "source"}
	b := &cli.StringFlag{Name: "artifact"}

	run := func(args ...string) error {
		set := flag.NewFlagSet("test", flag.ContinueOnError)
		require.NoError(t, a.Apply(set))
		require.NoError(t, b.Apply(set))
		require.NoError(t, set.Parse(args))
		return CheckExclusive(cli.NewContext(cli.NewApp(), set, nil), a, b)
	}
	assert.NoError(t, run("--source", "x"))
	assert.NoError(t, run())
	assert.ErrorContains(t, run("--source", "x", "--artifact", "y"), "--source, --artifact")
}
