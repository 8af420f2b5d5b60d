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

package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/aztec-verifier/aztec-verifier/common"
	"github.com/aztec-verifier/aztec-verifier/compiler"
	"github.com/aztec-verifier/aztec-verifier/internal/reexec"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/aztec-verifier/aztec-verifier/verifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	compilerExitEnv     = "FAKE_NARGO_EXIT"
	compilerArtifactEnv = "FAKE_NARGO_ARTIFACT"
	verifierExitEnv     = "FAKE_VERIFIER_EXIT"
	verifierRecordEnv   = "FAKE_VERIFIER_RECORD"

	testPlatform = toolchain.PlatformLinuxAMD64
)

func TestMain(m *testing.M) {
	reexec.Register(toolchain.AztecNargoFile, fakeCompiler)
	reexec.Register("fake-verifier", fakeVerifier)
	if reexec.Init() {
		return
	}
	os.Exit(m.Run())
}

// fakeCompiler writes the artifact the real wrapper would produce for the
// contract in the working directory.
func fakeCompiler() {
	fmt.Println("Compiling contract")
	if os.Getenv(compilerArtifactEnv) != "" {
		wd, _ := os.Getwd()
		base := filepath.Base(wd)
		name := fmt.Sprintf("%s_contract-%s.json", base, compiler.TitleCase(base))
		os.MkdirAll("target", 0755)
		artifact := fmt.Sprintf(`{"name":%q,"noir_version":"1.0.0","functions":[{},{},{}]}`, compiler.TitleCase(base))
		if err := os.WriteFile(filepath.Join("target", name), []byte(artifact), 0644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(70)
		}
		fmt.Println("Saved contract artifact to: target/" + name)
	}
	code, _ := strconv.Atoi(os.Getenv(compilerExitEnv))
	os.Exit(code)
}

// fakeVerifier records its arguments.
func fakeVerifier() {
	if record := os.Getenv(verifierRecordEnv); record != "" {
		os.WriteFile(record, []byte(strings.Join(os.Args[1:], "|")), 0644)
	}
	code, _ := strconv.Atoi(os.Getenv(verifierExitEnv))
	os.Exit(code)
}

type staticResolver struct {
	version string
	err     error
	calls   int
}

func (r *staticResolver) Resolve() (string, error) {
	r.calls++
	return r.version, r.err
}

type testEnv struct {
	root      string
	source    string
	record    string
	cache     *toolchain.Cache
	resolver  *staticResolver
	reporter  bytes.Buffer
	verifyOut bytes.Buffer
	pipeline  *Pipeline
}

// newTestEnv sets up a pipeline whose toolchain v1 is already cached and whose
// compiler and verifier are the test binary.
func newTestEnv(t *testing.T, releaseURL string) *testEnv {
	t.Helper()
	env := &testEnv{root: t.TempDir(), resolver: &staticResolver{version: "v1"}}
	env.source = filepath.Join(env.root, "contracts", "counter")
	require.NoError(t, os.MkdirAll(env.source, 0755))
	env.record = filepath.Join(env.root, "verifier-args")
	t.Setenv(verifierRecordEnv, env.record)

	cacheRoot := filepath.Join(env.root, "cache")
	prov, err := toolchain.NewPrebuilt(cacheRoot, releaseURL, "", testPlatform)
	require.NoError(t, err)
	env.cache = prov.Cache()

	verifierBin, err := reexec.Link(filepath.Join(env.root, "bin"), "fake-verifier")
	require.NoError(t, err)
	inv, err := verifier.NewInvoker(&verifier.Config{Command: []string{verifierBin}})
	require.NoError(t, err)
	inv.Stdout, inv.Stderr = &env.verifyOut, &env.verifyOut

	env.pipeline = &Pipeline{
		Provisioner: prov,
		Resolver:    env.resolver,
		Driver:      &compiler.Driver{Stdout: new(bytes.Buffer), Stderr: new(bytes.Buffer)},
		Verifier:    inv,
		Reporter:    NewReporter(&env.reporter, false),
	}
	return env
}

func (env *testEnv) populate(t *testing.T, version string) {
	t.Helper()
	_, err := env.cache.Ensure(version, func(staging string) error {
		if _, err := reexec.Link(staging, toolchain.AztecNargoFile); err != nil {
			return err
		}
		for _, name := range []string{toolchain.NargoFile, toolchain.TranspilerFile, toolchain.BBFile} {
			if err := os.WriteFile(filepath.Join(staging, name), nil, 0755); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func (env *testEnv) verifierArgs(t *testing.T) (string, bool) {
	t.Helper()
	data, err := os.ReadFile(env.record)
	if os.IsNotExist(err) {
		return "", false
	}
	require.NoError(t, err)
	return string(data), true
}

func (env *testEnv) request() *Request {
	return &Request{SourceDir: env.source, Version: "v1", Address: "0xABC", Network: "testnet"}
}

func requireStage(t *testing.T, err error, stage Stage) {
	t.Helper()
	var serr *StageError
	require.True(t, errors.As(err, &serr), "unexpected error %v", err)
	require.Equal(t, stage, serr.Stage)
}

func TestRunEndToEnd(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")
	t.Setenv(compilerArtifactEnv, "1")

	res, err := env.pipeline.Run(env.request())
	require.NoError(t, err, env.reporter.String())

	artifact := filepath.Join(env.source, "target", "counter_contract-Counter.json")
	require.NotNil(t, res.Artifact)
	assert.Equal(t, artifact, res.Artifact.Path)
	assert.Equal(t, "Counter", res.Artifact.Name)
	assert.Equal(t, 3, res.Artifact.Functions)
	assert.Equal(t, "v1", res.Version)
	assert.Equal(t, "amd64-linux", res.Platform)
	assert.True(t, res.Verified)
	assert.NotEmpty(t, res.RunID)
	assert.Zero(t, env.resolver.calls)

	args, ok := env.verifierArgs(t)
	require.True(t, ok, "verifier not invoked")
	assert.Equal(t, "--artifact|"+artifact+"|--address|0xABC|--network|testnet", args)

	out := env.reporter.String()
	assert.Contains(t, out, "==> Locating artifact in "+env.source)
	assert.Contains(t, out, "✔ Artifact written to "+artifact)
	assert.Contains(t, out, "==> Verifying counter_contract-Counter.json at 0xABC on testnet")
	assert.NotContains(t, out, "✘")
}

func TestRunResolvesVersion(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")
	t.Setenv(compilerArtifactEnv, "1")

	req := env.request()
	req.Version = ""
	res, err := env.pipeline.Run(req)
	require.NoError(t, err)
	assert.Equal(t, 1, env.resolver.calls)
	assert.Equal(t, "v1", res.Version)
}

func TestRunResolveFailure(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.resolver.err = errors.New("rate limited")

	req := env.request()
	req.Version = ""
	res, err := env.pipeline.Run(req)
	requireStage(t, err, StageResolve)
	assert.Equal(t, StageResolve, res.FailedStage)
	_, invoked := env.verifierArgs(t)
	assert.False(t, invoked)
}

func TestRunDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	env := newTestEnv(t, srv.URL)

	res, err := env.pipeline.Run(env.request())
	requireStage(t, err, StageToolchain)
	require.ErrorIs(t, err, toolchain.ErrDownloadFailed)
	assert.Equal(t, StageToolchain, res.FailedStage)
	assert.False(t, env.cache.Has("v1"))
	assert.NoDirExists(t, env.cache.Dir("v1"))
	assert.Contains(t, env.reporter.String(), "✘ toolchain failed:")
	assert.Nil(t, res.Compile)
}

func TestRunCompileFailure(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")
	t.Setenv(compilerArtifactEnv, "1")
	t.Setenv(compilerExitEnv, "2")

	res, err := env.pipeline.Run(env.request())
	requireStage(t, err, StageCompile)
	var cerr *compiler.CompilationError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 2, cerr.ExitCode)
	assert.Equal(t, 2, res.Compile.ExitCode)

	_, invoked := env.verifierArgs(t)
	assert.False(t, invoked, "verifier ran after failed compilation")
}

func TestRunArtifactMissing(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")

	_, err := env.pipeline.Run(env.request())
	requireStage(t, err, StageArtifact)
	require.ErrorIs(t, err, compiler.ErrArtifactNotFound)
	_, invoked := env.verifierArgs(t)
	assert.False(t, invoked)
}

func TestRunVerifyFailure(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")
	t.Setenv(compilerArtifactEnv, "1")
	t.Setenv(verifierExitEnv, "1")

	res, err := env.pipeline.Run(env.request())
	requireStage(t, err, StageVerify)
	require.ErrorIs(t, err, verifier.ErrVerificationFailed)
	assert.False(t, res.Verified)
	assert.Contains(t, res.RetryCommand, "--address 0xABC --network testnet")
	assert.Contains(t, env.reporter.String(), "Retry manually with: "+res.RetryCommand)
}

func TestRunPrecompiledArtifact(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	artifact := filepath.Join(env.root, "token_contract-Token.json")
	require.NoError(t, os.WriteFile(artifact, []byte(`{"name":"Token","functions":[]}`), 0644))
	env.pipeline.Provisioner = nil
	env.pipeline.Driver = nil

	res, err := env.pipeline.Run(&Request{Artifact: artifact, Address: "0x1", Network: "http://localhost:8080"})
	require.NoError(t, err)
	assert.Equal(t, "Token", res.Artifact.Name)
	assert.Empty(t, res.Version)

	args, ok := env.verifierArgs(t)
	require.True(t, ok)
	assert.Equal(t, "--artifact|"+artifact+"|--address|0x1|--network|http://localhost:8080", args)

	out := env.reporter.String()
	assert.Contains(t, out, "==> Locating artifact "+artifact)
	assert.Contains(t, out, "✔ Using artifact "+artifact)
}

func TestRunPrecompiledArtifactMissing(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	_, err := env.pipeline.Run(&Request{Artifact: filepath.Join(env.root, "nope.json"), Address: "0x1", Network: "testnet"})
	requireStage(t, err, StageArtifact)
	require.ErrorIs(t, err, compiler.ErrArtifactNotFound)
}

func TestRunSkipVerify(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	env.populate(t, "v1")
	t.Setenv(compilerArtifactEnv, "1")

	res, err := env.pipeline.Run(&Request{SourceDir: env.source, Version: "v1", SkipVerify: true})
	require.NoError(t, err)
	assert.False(t, res.Verified)
	assert.NotNil(t, res.Artifact)
	_, invoked := env.verifierArgs(t)
	assert.False(t, invoked)
}

func TestRunInvalidInput(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1")
	tests := []*Request{
		{Address: "0x1", Network: "testnet"},
		{SourceDir: env.source, Artifact: "a.json", Address: "0x1", Network: "testnet"},
		{SourceDir: env.source, Address: "0xnothex", Network: "testnet"},
		{SourceDir: env.source, Address: "0x1"},
	}
	for i, req := range tests {
		_, err := env.pipeline.Run(req)
		requireStage(t, err, StageInput)
		if i == 2 {
			require.ErrorIs(t, err, common.ErrInvalidAddress)
		}
	}
}

func TestResultJSON(t *testing.T) {
	res := &Result{RunID: "id", FailedStage: StageCompile, Error: "boom"}
	enc, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"runId":"id","verified":false,"elapsed":0,"failedStage":"compile","error":"boom"}`, string(enc))
}
