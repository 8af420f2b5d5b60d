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
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrDownloadFailed      = errors.New("toolchain download failed")
	ErrExtractFailed       = errors.New("toolchain extraction failed")
	ErrIncompleteToolchain = errors.New("incomplete toolchain")
	ErrBuildFailed         = errors.New("toolchain build failed")
)

// UnsupportedPlatformError is returned when the host has no prebuilt toolchain.
type UnsupportedPlatformError struct {
	OS, Arch string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %s/%s", e.OS, e.Arch)
}

func (e *UnsupportedPlatformError) Is(target error) bool { return target == ErrUnsupportedPlatform }

// DownloadError reports a failed or rejected toolchain download. StatusCode is
// zero when the request never got a response.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s failed: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error        { return e.Err }
func (e *DownloadError) Is(target error) bool { return target == ErrDownloadFailed }

// ExtractError reports an archive that could not be unpacked.
type ExtractError struct {
	Archive string
	Err     error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extract %s failed: %v", e.Archive, e.Err)
}

func (e *ExtractError) Unwrap() error        { return e.Err }
func (e *ExtractError) Is(target error) bool { return target == ErrExtractFailed }

// IncompleteToolchainError names the required executables missing from Dir.
// IncompleteToolchainError 列出目录中缺失的必需可执行文件。
type IncompleteToolchainError struct {
	Dir     string
	Missing []string
}

func (e *IncompleteToolchainError) Error() string {
	return fmt.Sprintf("missing file in toolchain %s: %s", e.Dir, strings.Join(e.Missing, ", "))
}

func (e *IncompleteToolchainError) Is(target error) bool { return target == ErrIncompleteToolchain }

// BuildError reports a failed step of a from-source toolchain build.
type BuildError struct {
	Step string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("toolchain build step %q failed: %v", e.Step, e.Err)
}

func (e *BuildError) Unwrap() error        { return e.Err }
func (e *BuildError) Is(target error) bool { return target == ErrBuildFailed }
