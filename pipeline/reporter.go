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
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Reporter prints the human-readable stage markers of a run.
// Reporter 输出每个阶段的进度、成功和失败标记。
type Reporter struct {
	out  io.Writer
	step *color.Color
	ok   *color.Color
	fail *color.Color
	hint *color.Color
}

// NewReporter creates a reporter writing to out, with ANSI colours if
// colored is set.
func NewReporter(out io.Writer, colored bool) *Reporter {
	r := &Reporter{
		out:  out,
		step: color.New(color.FgCyan, color.Bold),
		ok:   color.New(color.FgHiGreen),
		fail: color.New(color.FgHiRed, color.Bold),
		hint: color.New(color.FgYellow),
	}
	for _, c := range []*color.Color{r.step, r.ok, r.fail, r.hint} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Begin announces a stage.
func (r *Reporter) Begin(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.step.Sprint("==>"), fmt.Sprintf(format, args...))
}

// Done confirms a successful stage.
func (r *Reporter) Done(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.ok.Sprint("✔"), fmt.Sprintf(format, args...))
}

// Fail marks the failed stage.
func (r *Reporter) Fail(stage Stage, err error) {
	fmt.Fprintf(r.out, "%s %s\n", r.fail.Sprintf("✘ %s failed:", stage), err)
}

// Hint prints an indented follow-up to a failure.
func (r *Reporter) Hint(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s\n", r.hint.Sprintf(format, args...))
}
