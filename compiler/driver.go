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

// Package compiler drives the aztec-nargo wrapper to compile a Noir contract
// and locates the resulting artifact.
// compiler 包调用 aztec-nargo 编译 Noir 合约并定位编译产物。
package compiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/aztec-verifier/aztec-verifier/internal/build"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"golang.org/x/sync/errgroup"
)

var ErrCompilationFailed = errors.New("compilation failed")

// CompilationError reports a compiler run that did not succeed. ExitCode is
// -1 when the process could not be started or was killed by a signal.
type CompilationError struct {
	ExitCode int
	Err      error
}

func (e *CompilationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("compilation failed: %v", e.Err)
	}
	return fmt.Sprintf("compilation failed with exit code %d", e.ExitCode)
}

func (e *CompilationError) Unwrap() error        { return e.Err }
func (e *CompilationError) Is(target error) bool { return target == ErrCompilationFailed }

// Environment variables through which the wrapper script finds the other
// toolchain binaries.
const (
	EnvNargo      = "NARGO"
	EnvTranspiler = "TRANSPILER"
	EnvBB         = "BB"
)

// Result describes a finished compiler run.
type Result struct {
	ExitCode    int           `json:"exitCode"`
	Elapsed     time.Duration `json:"elapsed"`
	StdoutLines int           `json:"stdoutLines"`
	StderrLines int           `json:"stderrLines"`
}

// Driver runs the compiler wrapper of a toolchain.
// Driver 负责运行工具链中的编译器包装脚本。
type Driver struct {
	Stdout io.Writer // receives the compiler's standard output
	Stderr io.Writer // receives the compiler's standard error

	// Progress, if set, is where a spinner is drawn while the compiler
	// runs. It should only be set for terminals.
	Progress io.Writer
}

// NewDriver creates a driver forwarding compiler output to the process's
// standard streams.
func NewDriver() *Driver {
	return &Driver{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Command returns the unstarted compiler process for the contract in sourceDir.
func Command(tc *toolchain.Paths, sourceDir string) *exec.Cmd {
	cmd := exec.Command(tc.AztecNargo, "compile")
	cmd.Dir = sourceDir
	cmd.Env = build.Environ(map[string]string{
		EnvNargo:      tc.Nargo,
		EnvTranspiler: tc.Transpiler,
		EnvBB:         tc.BB,
	})
	return cmd
}

// Compile runs `aztec-nargo compile` in sourceDir. Both output streams are
// forwarded line by line while the compiler runs; each stream keeps its own
// order. A non-zero exit yields a *CompilationError. Failures are not retried.
// Compile 在 sourceDir 中运行编译器，实时逐行转发标准输出和标准错误。
func (d *Driver) Compile(tc *toolchain.Paths, sourceDir string) (*Result, error) {
	dir, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, err
	}
	cmd := Command(tc, dir)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, err
	}
	log.Debug("Starting compiler", "cmd", build.FormatCommand(cmd.Args), "dir", dir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, &CompilationError{ExitCode: -1, Err: err}
	}
	progress := NewProgress(d.Progress, filepath.Base(dir))
	progress.Start()

	res := new(Result)
	var g errgroup.Group
	g.Go(func() (err error) {
		res.StdoutLines, err = forwardLines(stdout, d.Stdout, progress)
		return err
	})
	g.Go(func() (err error) {
		res.StderrLines, err = forwardLines(stderr, d.Stderr, progress)
		return err
	})
	ferr := g.Wait()
	werr := cmd.Wait()
	progress.Stop()
	res.Elapsed = time.Since(start)

	if werr != nil {
		res.ExitCode = -1
		if code, ok := build.ExitCode(werr); ok && code >= 0 {
			res.ExitCode = code
			return res, &CompilationError{ExitCode: code}
		}
		return res, &CompilationError{ExitCode: -1, Err: werr}
	}
	if ferr != nil {
		return res, fmt.Errorf("forwarding compiler output: %w", ferr)
	}
	log.Debug("Compiler finished", "elapsed", res.Elapsed, "stdout", res.StdoutLines, "stderr", res.StderrLines)
	return res, nil
}

// forwardLines copies r to w one line at a time until EOF. After a write
// error the remaining input is still drained so the child never blocks on a
// full pipe.
func forwardLines(r io.Reader, w io.Writer, progress *Progress) (int, error) {
	var (
		br    = bufio.NewReaderSize(r, 64*1024)
		lines int
		werr  error
	)
	for {
		line, err := br.ReadBytes('\n')
		if len(line) > 0 {
			if line[len(line)-1] != '\n' {
				line = append(line, '\n')
			}
			lines++
			if werr == nil && w != nil {
				werr = progress.WriteLine(w, line)
			}
		}
		if err == io.EOF {
			return lines, werr
		}
		if err != nil {
			return lines, err
		}
	}
}
