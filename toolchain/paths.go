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

package toolchain

import (
	"os"
	"path/filepath"

	mapset "github.com/deckarep/golang-set/v2"
)

// File names of the four executables making up a toolchain.
const (
	AztecNargoFile = "aztec-nargo"
	NargoFile      = "nargo"
	TranspilerFile = "avm-transpiler"
	BBFile         = "bb"
)

// RequiredFiles lists the toolchain executables in validation order.
var RequiredFiles = []string{AztecNargoFile, NargoFile, TranspilerFile, BBFile}

// Paths locates a validated toolchain. Values are only handed out by Validate
// and must not be modified afterwards.
// Paths 描述一个已验证的工具链，仅由 Validate 构造。
type Paths struct {
	Root       string // toolchain directory
	AztecNargo string // wrapper script driving the other three
	Nargo      string // core Noir compiler
	Transpiler string // AVM bytecode transpiler
	BB         string // barretenberg proof backend
}

// Validate checks that dir holds every required executable and returns their
// absolute paths. Unrelated files in dir are ignored.
// Validate 检查目录中是否包含所有必需的可执行文件。
func Validate(dir string) (*Paths, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	present := mapset.NewThreadUnsafeSet[string]()
	for _, entry := range entries {
		if !entry.IsDir() {
			present.Add(entry.Name())
		}
	}
	var missing []string
	for _, name := range RequiredFiles {
		if !present.Contains(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &IncompleteToolchainError{Dir: root, Missing: missing}
	}
	return &Paths{
		Root:       root,
		AztecNargo: filepath.Join(root, AztecNargoFile),
		Nargo:      filepath.Join(root, NargoFile),
		Transpiler: filepath.Join(root, TranspilerFile),
		BB:         filepath.Join(root, BBFile),
	}, nil
}

// Files returns the required executables in validation order.
func (p *Paths) Files() []string {
	return []string{p.AztecNargo, p.Nargo, p.Transpiler, p.BB}
}

// ensureExecutable adds the executable bits to every toolchain file that lacks
// them. Archives produced on other hosts occasionally drop the mode.
func ensureExecutable(p *Paths) error {
	for _, file := range p.Files() {
		fi, err := os.Stat(file)
		if err != nil {
			return err
		}
		if mode := fi.Mode().Perm(); mode&0111 != 0111 {
			if err := os.Chmod(file, mode|0111); err != nil {
				return err
			}
		}
	}
	return nil
}
