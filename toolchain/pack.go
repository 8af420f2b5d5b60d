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

	"github.com/aztec-verifier/aztec-verifier/internal/build"
)

// PackResult describes a packed toolchain archive.
type PackResult struct {
	Archive string
	SHA256  string
}

// Pack writes the toolchain in tc into outDir as a flat release archive named
// after version and platform, and returns its location and checksum.
// Pack 将工具链打包为发布归档并返回其路径和校验和。
func Pack(tc *Paths, version string, platform Platform, outDir string) (*PackResult, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, err
	}
	name := filepath.Join(outDir, ArchiveName(version, platform))
	if err := build.WriteArchive(name, tc.Files()); err != nil {
		return nil, err
	}
	sum, err := build.HashFile(name)
	if err != nil {
		return nil, err
	}
	return &PackResult{Archive: name, SHA256: sum}, nil
}
