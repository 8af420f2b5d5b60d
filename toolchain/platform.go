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
	"fmt"
	"runtime"
)

// Platform identifies a host CPU architecture and operating system pair. It
// keys both the local cache and the release archive names.
// Platform 标识主机的 CPU 架构和操作系统组合，用作缓存和发布归档的键。
type Platform string

const (
	PlatformDarwinARM64 Platform = "arm64-darwin"
	PlatformDarwinAMD64 Platform = "amd64-darwin"
	PlatformLinuxARM64  Platform = "arm64-linux"
	PlatformLinuxAMD64  Platform = "amd64-linux"
)

// Platforms lists every platform a prebuilt toolchain exists for.
var Platforms = []Platform{
	PlatformDarwinARM64,
	PlatformDarwinAMD64,
	PlatformLinuxARM64,
	PlatformLinuxAMD64,
}

func (p Platform) String() string { return string(p) }

// DetectPlatform returns the platform of the running host.
// DetectPlatform 返回当前主机的平台标识。
func DetectPlatform() (Platform, error) {
	return PlatformFor(runtime.GOOS, runtime.GOARCH)
}

// PlatformFor maps a GOOS/GOARCH pair onto a platform. Pairs without a
// prebuilt toolchain yield an *UnsupportedPlatformError.
func PlatformFor(goos, goarch string) (Platform, error) {
	switch goos {
	case "darwin", "linux":
	default:
		return "", &UnsupportedPlatformError{OS: goos, Arch: goarch}
	}
	switch goarch {
	case "amd64", "arm64":
	default:
		return "", &UnsupportedPlatformError{OS: goos, Arch: goarch}
	}
	return Platform(fmt.Sprintf("%s-%s", goarch, goos)), nil
}
