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

package debug

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range Flags {
		require.NoError(t, f.Apply(set))
	}
	require.NoError(t, set.Parse(args))
	return cli.NewContext(cli.NewApp(), set, nil)
}

func TestSetupLogFile(t *testing.T) {
	defer log.SetDefault(log.NewLogger(log.DiscardHandler()))

	path := filepath.Join(t.TempDir(), "logs", "verify.log")
	require.NoError(t, Setup(newContext(t, "--log.file", path, "--log.format", "json", "--verbosity", "4")))
	log.Info("Toolchain installed", "version", "v1")
	log.Trace("hidden")
	Exit()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Toolchain installed"`)
	assert.Contains(t, string(data), `"version":"v1"`)
	assert.NotContains(t, string(data), "hidden")
}

func TestSetupErrors(t *testing.T) {
	defer log.SetDefault(log.NewLogger(log.DiscardHandler()))

	assert.Error(t, Setup(newContext(t, "--log.format", "xml")))
	assert.Error(t, Setup(newContext(t, "--log.rotate")))
}
