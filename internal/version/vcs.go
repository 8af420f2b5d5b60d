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

package version

import (
	"runtime/debug"
	"time"
)

// Set by the linker to override the VCS stamp of the go tool:
//
//	-ldflags "-X github.com/aztec-verifier/aztec-verifier/internal/version.gitCommit=..."
var gitCommit, gitDate string

// VCSInfo represents the git repository state.
// VCSInfo 表示 git 仓库的状态。
type VCSInfo struct {
	Commit string // head commit hash
	Date   string // commit date, YYYYMMDD
	Dirty  bool   // uncommitted changes at build time
}

// VCS returns version control information of the current executable. It
// reports false when neither the linker nor the go tool recorded any, which is
// the case for test binaries and builds of other main modules.
func VCS() (VCSInfo, bool) {
	if gitCommit != "" {
		return VCSInfo{Commit: gitCommit, Date: gitDate}, true
	}
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path != ourPath {
		return VCSInfo{}, false
	}
	return buildInfoVCS(info)
}

// buildInfoVCS extracts the vcs.* settings stamped by the go tool.
func buildInfoVCS(info *debug.BuildInfo) (VCSInfo, bool) {
	var s VCSInfo
	settings := make(map[string]string, len(info.Settings))
	for _, kv := range info.Settings {
		settings[kv.Key] = kv.Value
	}
	s.Commit = settings["vcs.revision"]
	s.Dirty = settings["vcs.modified"] == "true"
	if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
		s.Date = t.UTC().Format("20060102")
	}
	return s, s.Commit != "" && s.Date != ""
}
