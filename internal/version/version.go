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

// Package version implements reading of build version information.
package version

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/aztec-verifier/aztec-verifier/version"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const ourPath = "github.com/aztec-verifier/aztec-verifier" // Path to our module

// Semantic holds the textual version string for major.minor.patch.
var Semantic = fmt.Sprintf("%d.%d.%d", version.Major, version.Minor, version.Patch)

// WithMeta holds the textual version string including the metadata.
var WithMeta = func() string {
	v := Semantic
	if version.Meta != "" {
		v += "-" + version.Meta
	}
	return v
}()

// WithCommit appends the short commit hash and, for non-stable builds, the
// commit date to the version string.
func WithCommit(gitCommit, gitDate string) string {
	vsn := WithMeta
	if len(gitCommit) >= 8 {
		vsn += "-" + gitCommit[:8]
	}
	if (version.Meta != "stable") && (gitDate != "") {
		vsn += "-" + gitDate
	}
	return vsn
}

// Info renders the multi-line report printed by the version command.
// Info 返回 version 命令输出的版本信息。
func Info(name string) string {
	var b strings.Builder
	fmt.Fprintln(&b, cases.Title(language.English).String(name))
	fmt.Fprintln(&b, "Version:", WithMeta)
	if git, ok := VCS(); ok {
		fmt.Fprintln(&b, "Git Commit:", git.Commit)
		fmt.Fprintln(&b, "Git Commit Date:", git.Date)
		if git.Dirty {
			fmt.Fprintln(&b, "Git Tree: modified")
		}
	}
	fmt.Fprintln(&b, "Architecture:", runtime.GOARCH)
	fmt.Fprintln(&b, "Go Version:", runtime.Version())
	fmt.Fprintln(&b, "Operating System:", runtime.GOOS)
	return b.String()
}
