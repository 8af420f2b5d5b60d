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

// Package build contains the plumbing used to fetch, unpack and assemble
// compiler toolchains: HTTP downloads, tarball handling and subprocess helpers.
// build 包包含获取、解包和组装编译器工具链所需的底层工具。
package build

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FormatCommand renders command arguments as a single shell-pasteable line.
// FormatCommand 将命令参数格式化为可直接粘贴到 shell 的单行字符串。
func FormatCommand(args []string) string {
	var s strings.Builder
	for i, arg := range args {
		if i > 0 {
			s.WriteByte(' ')
		}
		if arg == "" || strings.ContainsAny(arg, " \t\n'\"\\$`") {
			arg = strconv.QuoteToASCII(arg)
		}
		s.WriteString(arg)
	}
	return s.String()
}

// RunCommand echoes the command line to echo (if non-nil), then runs the
// command with its output attached to the given writers.
// RunCommand 打印命令行，然后运行该命令。
func RunCommand(cmd *exec.Cmd, echo io.Writer, stdout, stderr io.Writer) error {
	if echo != nil {
		fmt.Fprintln(echo, ">>>", FormatCommand(cmd.Args))
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", FormatCommand(cmd.Args), err)
	}
	return nil
}

// RunGit runs a git subcommand in dir and returns its trimmed output.
// RunGit 在 dir 中运行一个 git 子命令并返回其输出。
func RunGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout, cmd.Stderr = &stdout, &stderr
	if err := cmd.Run(); err != nil {
		if e, ok := err.(*exec.Error); ok && e.Err == exec.ErrNotFound {
			return "", fmt.Errorf("can't find 'git' in PATH")
		}
		return "", fmt.Errorf("git %s: %v\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// ExitCode extracts the process exit status from an error returned by
// exec.Cmd.Wait or Run. It reports false when err is not an exit error.
func ExitCode(err error) (int, bool) {
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode(), true
	}
	return 0, false
}

// Environ returns the current process environment with the given variables
// appended, replacing any inherited entries of the same name.
func Environ(vars map[string]string) []string {
	env := make([]string, 0, len(os.Environ())+len(vars))
	for _, e := range os.Environ() {
		if i := strings.IndexByte(e, '='); i >= 0 {
			if _, ok := vars[e[:i]]; ok {
				continue
			}
		}
		env = append(env, e)
	}
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	return env
}
