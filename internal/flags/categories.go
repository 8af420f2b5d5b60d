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

package flags

import "github.com/urfave/cli/v2"

const (
	// ToolchainCategory groups the toolchain provisioning flags.
	ToolchainCategory = "TOOLCHAIN"
	// CompilerCategory groups the contract compilation flags.
	CompilerCategory = "COMPILER"
	// VerifierCategory groups the class-ID verification flags.
	VerifierCategory = "VERIFIER"
	// LoggingCategory groups the logging flags.
	LoggingCategory = "LOGGING AND DEBUGGING"
	// MiscCategory 是其他标志的类别。
	MiscCategory = "MISC"
)

func init() {
	cli.HelpFlag.(*cli.BoolFlag).Category = MiscCategory
	cli.VersionFlag.(*cli.BoolFlag).Category = MiscCategory
}
