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

package compiler

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

var spinnerFrames = []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'}

const spinnerInterval = 100 * time.Millisecond

// Progress draws a single-line spinner while a compilation runs and
// serializes it with the forwarded compiler output: the spinner is erased
// before each forwarded line and redrawn below it on the next tick.
//
// A Progress created with a nil output is disabled and only serializes
// writes.
// Progress 在编译期间显示进度指示器，并保证它不会与转发的输出交错。
type Progress struct {
	mu    sync.Mutex
	live  *uilive.Writer
	label string
	start time.Time

	quit chan struct{}
	done chan struct{}
	stop sync.Once
}

// NewProgress creates a spinner labelled label drawing to out.
func NewProgress(out io.Writer, label string) *Progress {
	p := &Progress{label: label, quit: make(chan struct{}), done: make(chan struct{})}
	if out != nil {
		p.live = uilive.New()
		p.live.Out = out
	}
	return p
}

// Start begins redrawing the spinner.
func (p *Progress) Start() {
	p.start = time.Now()
	if p.live == nil {
		close(p.done)
		return
	}
	go p.loop()
}

func (p *Progress) loop() {
	defer close(p.done)

	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()
	for frame := 0; ; frame++ {
		p.mu.Lock()
		elapsed := time.Since(p.start).Truncate(time.Second)
		fmt.Fprintf(p.live, "%c Compiling %s (%v)\n", spinnerFrames[frame%len(spinnerFrames)], p.label, elapsed)
		p.live.Flush()
		p.mu.Unlock()

		select {
		case <-ticker.C:
		case <-p.quit:
			return
		}
	}
}

// clear erases the spinner. The caller must hold p.mu.
func (p *Progress) clear() {
	if p.live != nil {
		p.live.Bypass().Write(nil)
	}
}

// WriteLine writes one line of forwarded output to w with the spinner erased.
func (p *Progress) WriteLine(w io.Writer, line []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	_, err := w.Write(line)
	return err
}

// Stop retires the spinner, leaving no trace of it on the terminal. It is safe
// to call more than once.
func (p *Progress) Stop() {
	p.stop.Do(func() {
		close(p.quit)
		<-p.done

		p.mu.Lock()
		p.clear()
		p.mu.Unlock()
	})
}
