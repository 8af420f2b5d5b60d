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

// Package pipeline runs the provisioning, compilation and verification stages
// in order and stops at the first failure.
// pipeline 包按顺序执行工具链准备、编译和验证阶段，遇到第一个错误即停止。
package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aztec-verifier/aztec-verifier/common"
	"github.com/aztec-verifier/aztec-verifier/compiler"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/aztec-verifier/aztec-verifier/verifier"
	"github.com/google/uuid"
)

// Stage names a pipeline step.
type Stage string

const (
	StageInput     Stage = "input"
	StageResolve   Stage = "version"
	StageToolchain Stage = "toolchain"
	StageCompile   Stage = "compile"
	StageArtifact  Stage = "artifact"
	StageVerify    Stage = "verify"
)

// StageError wraps the error that aborted a run.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// VersionResolver picks a toolchain version when none is requested.
type VersionResolver interface {
	Resolve() (string, error)
}

// Request describes one run. Exactly one of SourceDir and Artifact is set.
type Request struct {
	SourceDir string // contract to compile
	Artifact  string // precompiled artifact, skips provisioning and compilation
	Version   string // toolchain version, resolved if empty

	Address string // deployed contract address
	Network string // node URL handed to the verifier

	SkipVerify bool
}

func (req *Request) validate() error {
	switch {
	case req.SourceDir == "" && req.Artifact == "":
		return errors.New("either a source directory or an artifact is required")
	case req.SourceDir != "" && req.Artifact != "":
		return errors.New("source directory and artifact are mutually exclusive")
	}
	if req.SkipVerify {
		return nil
	}
	if _, err := common.ParseAddress(req.Address); err != nil {
		return err
	}
	if req.Network == "" {
		return errors.New("network is required")
	}
	return nil
}

// Result is the record of a run, printed as JSON in machine-readable mode.
type Result struct {
	RunID     string                 `json:"runId"`
	Version   string                 `json:"version,omitempty"`
	Platform  string                 `json:"platform,omitempty"`
	Toolchain string                 `json:"toolchain,omitempty"`
	Compile   *compiler.Result       `json:"compile,omitempty"`
	Artifact  *compiler.ArtifactInfo `json:"artifact,omitempty"`
	Verified  bool                   `json:"verified"`
	Elapsed   time.Duration          `json:"elapsed"`

	FailedStage  Stage  `json:"failedStage,omitempty"`
	Error        string `json:"error,omitempty"`
	RetryCommand string `json:"retryCommand,omitempty"`
}

// Pipeline wires the stages together.
// Pipeline 将各个阶段串联起来。
type Pipeline struct {
	Provisioner toolchain.Provisioner
	Resolver    VersionResolver
	Driver      *compiler.Driver
	Verifier    *verifier.Invoker
	Reporter    *Reporter
}

// Run executes the stages of req strictly in sequence. The returned result is
// never nil; on failure it records the stage and the error is a *StageError.
// Run 依次执行各阶段，失败时返回 *StageError。
func (p *Pipeline) Run(req *Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	logger := log.New("run", res.RunID)
	fail := func(stage Stage, err error) (*Result, error) {
		res.FailedStage, res.Error = stage, err.Error()
		p.Reporter.Fail(stage, err)
		var verr *verifier.VerificationError
		if errors.As(err, &verr) {
			res.RetryCommand = verr.Command
			p.Reporter.Hint("Retry manually with: %s", verr.Command)
		}
		logger.Debug("Run failed", "stage", stage, "err", err)
		return res, &StageError{Stage: stage, Err: err}
	}
	if err := req.validate(); err != nil {
		return fail(StageInput, err)
	}

	artifact := req.Artifact
	if artifact == "" {
		path, err := p.build(req, res, logger)
		if err != nil {
			var serr *StageError
			errors.As(err, &serr)
			return fail(serr.Stage, serr.Err)
		}
		artifact = path
	} else {
		p.Reporter.Begin("Locating artifact %s", artifact)
		abs, err := filepath.Abs(artifact)
		if err != nil {
			return fail(StageArtifact, err)
		}
		if fi, err := os.Stat(abs); err != nil || fi.IsDir() {
			return fail(StageArtifact, &compiler.ArtifactNotFoundError{Path: abs})
		}
		artifact = abs
		p.Reporter.Done("Using artifact %s", artifact)
	}
	if info, err := compiler.ReadArtifact(artifact); err != nil {
		logger.Warn("Could not read artifact summary", "path", artifact, "err", err)
		res.Artifact = &compiler.ArtifactInfo{Path: artifact}
	} else {
		res.Artifact = info
	}
	if req.SkipVerify {
		return res, nil
	}

	p.Reporter.Begin("Verifying %s at %s on %s", filepath.Base(artifact), req.Address, req.Network)
	if err := p.Verifier.Verify(artifact, req.Address, req.Network); err != nil {
		return fail(StageVerify, err)
	}
	res.Verified = true
	p.Reporter.Done("Contract class verified")
	return res, nil
}

// build provisions the toolchain, compiles the contract and locates the
// artifact. Errors are *StageError values.
func (p *Pipeline) build(req *Request, res *Result, logger log.Logger) (string, error) {
	version := req.Version
	if version == "" {
		p.Reporter.Begin("Resolving toolchain version")
		v, err := p.Resolver.Resolve()
		if err != nil {
			return "", &StageError{Stage: StageResolve, Err: err}
		}
		version = v
		p.Reporter.Done("Using toolchain %s", version)
	}
	res.Version, res.Platform = version, p.Provisioner.Platform().String()

	p.Reporter.Begin("Preparing toolchain %s for %s", version, res.Platform)
	tc, err := p.Provisioner.Acquire(version)
	if err != nil {
		return "", &StageError{Stage: StageToolchain, Err: err}
	}
	res.Toolchain = tc.Root
	logger.Debug("Toolchain ready", "dir", tc.Root)
	p.Reporter.Done("Toolchain ready at %s", tc.Root)

	p.Reporter.Begin("Compiling %s", req.SourceDir)
	cres, err := p.Driver.Compile(tc, req.SourceDir)
	res.Compile = cres
	if err != nil {
		return "", &StageError{Stage: StageCompile, Err: err}
	}
	p.Reporter.Done("Compiled in %v", cres.Elapsed.Round(time.Millisecond))

	p.Reporter.Begin("Locating artifact in %s", req.SourceDir)
	path, err := compiler.Locate(req.SourceDir)
	if err != nil {
		return "", &StageError{Stage: StageArtifact, Err: err}
	}
	p.Reporter.Done("Artifact written to %s", path)
	return path, nil
}
