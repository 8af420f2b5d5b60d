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

// Package verifier launches the external class-ID verifier on a compiled
// contract artifact.
package verifier

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/aztec-verifier/aztec-verifier/internal/build"
	"github.com/aztec-verifier/aztec-verifier/log"
)

var ErrVerificationFailed = errors.New("verification failed")

// VerificationError reports a verifier that could not be started or exited
// unsuccessfully. Command is the shell-quoted command line, suitable for a
// manual retry.
type VerificationError struct {
	Command  string
	ExitCode int // -1 if the verifier did not exit normally
	Err      error
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification failed: %v (command: %s)", e.Err, e.Command)
}

func (e *VerificationError) Unwrap() error        { return e.Err }
func (e *VerificationError) Is(target error) bool { return target == ErrVerificationFailed }

// Config selects the verifier program.
type Config struct {
	// Command is the verifier program and its leading arguments. The
	// artifact and connection flags are appended to it.
	Command []string
}

// DefaultConfig runs the bundled node script.
var DefaultConfig = Config{
	Command: []string{"node", "scripts/verify_class_id.mjs"},
}

// Invoker runs the verifier.
// Invoker 负责运行外部验证程序。
type Invoker struct {
	command []string

	Stdout io.Writer
	Stderr io.Writer
}

// NewInvoker creates an invoker for the configured command, inheriting the
// process's standard streams.
func NewInvoker(cfg *Config) (*Invoker, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("no verifier command configured")
	}
	return &Invoker{command: cfg.Command, Stdout: os.Stdout, Stderr: os.Stderr}, nil
}

// Args returns the full verifier command line for the given inputs.
func (v *Invoker) Args(artifact, address, network string) []string {
	args := append([]string(nil), v.command...)
	return append(args, "--artifact", artifact, "--address", address, "--network", network)
}

// Verify runs the verifier against artifact. Its output is passed through
// unmodified. Any failure yields a *VerificationError naming the command.
// Verify 使用给定参数运行验证程序，失败时返回包含完整命令行的错误。
func (v *Invoker) Verify(artifact, address, network string) error {
	args := v.Args(artifact, address, network)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = v.Stdout
	cmd.Stderr = v.Stderr

	command := build.FormatCommand(args)
	log.Debug("Starting verifier", "cmd", command)
	if err := cmd.Run(); err != nil {
		code, ok := build.ExitCode(err)
		if !ok {
			code = -1
		}
		return &VerificationError{Command: command, ExitCode: code, Err: err}
	}
	return nil
}
