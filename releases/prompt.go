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
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/peterh/liner"
)

var ErrInvalidSelection = errors.New("invalid selection")

// Prompt asks the user to pick one of versions by number or tag, reading the
// answer from in. An empty answer selects the first entry.
// Prompt 让用户按编号或标签选择版本，直接回车选择第一个。
func Prompt(versions []string, in io.Reader, out io.Writer) (string, error) {
	br := bufio.NewReader(in)
	return choose(versions, out, func(prompt string) (string, error) {
		fmt.Fprint(out, prompt)
		line, err := br.ReadString('\n')
		if err == io.EOF {
			err = nil
		}
		return line, err
	})
}

// TerminalPrompt is Prompt on the controlling terminal, with line editing
// and tab completion of the version tags.
func TerminalPrompt(versions []string, out io.Writer) (string, error) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(prefix string) (c []string) {
		for _, v := range versions {
			if strings.HasPrefix(v, prefix) {
				c = append(c, v)
			}
		}
		return c
	})
	answer, err := choose(versions, out, line.Prompt)
	if errors.Is(err, liner.ErrPromptAborted) {
		return "", errors.New("version selection aborted")
	}
	return answer, err
}

func choose(versions []string, out io.Writer, readLine func(prompt string) (string, error)) (string, error) {
	if len(versions) == 0 {
		return "", ErrNoReleases
	}
	fmt.Fprintln(out, "Available toolchain versions:")
	for i, v := range versions {
		fmt.Fprintf(out, "%3d. %s\n", i+1, v)
	}
	line, err := readLine(fmt.Sprintf("Select version [1-%d] (default 1): ", len(versions)))
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return versions[0], nil
	}
	if slices.Contains(versions, line) {
		return line, nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(versions) {
		return "", fmt.Errorf("%w %q", ErrInvalidSelection, line)
	}
	return versions[n-1], nil
}

// Select returns the newest version when interactive is false and prompts
// otherwise. Without an input reader the prompt runs on the terminal.
func Select(versions []string, interactive bool, in io.Reader, out io.Writer) (string, error) {
	if len(versions) == 0 {
		return "", ErrNoReleases
	}
	switch {
	case !interactive:
		return versions[0], nil
	case in == nil:
		return TerminalPrompt(versions, out)
	default:
		return Prompt(versions, in, out)
	}
}

// Resolver picks the toolchain version when none was requested explicitly.
type Resolver struct {
	Client      *Client
	Platform    toolchain.Platform
	Interactive bool      // prompt instead of taking the newest release
	In          io.Reader // answers, the terminal if nil
	Out         io.Writer // version list
}

// Resolve lists the releases for the platform and selects one.
func (r *Resolver) Resolve() (string, error) {
	versions, err := r.Client.Versions(r.Platform)
	if err != nil {
		return "", err
	}
	return Select(versions, r.Interactive, r.In, r.Out)
}
