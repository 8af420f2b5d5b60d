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

package main

import (
	"github.com/aztec-verifier/aztec-verifier/cmd/utils"
	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/pipeline"
	"github.com/urfave/cli/v2"
)

var compileCommand = &cli.Command{
	Action:    compileContract,
	Name:      "compile",
	Usage:     "Compile a contract without verifying it",
	ArgsUsage: "[<source dir>]",
	Flags: flags.Merge(
		utils.ToolchainFlags,
		utils.CompilerFlags,
		[]cli.Flag{utils.OutputFlag, utils.ConfigFileFlag},
	),
	Description: `
The compile command provisions the toolchain, compiles the contract in the
source directory and prints the location of the generated artifact. The source
directory is taken from the argument or from --source.`,
}

func compileContract(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return errTooManyArgs
	}
	src := ctx.String(utils.SourceFlag.Name)
	if ctx.NArg() == 1 {
		src = ctx.Args().First()
	}
	req := &pipeline.Request{
		SourceDir:  src,
		Version:    ctx.String(utils.CompilerVersionFlag.Name),
		SkipVerify: true,
	}
	return runPipeline(ctx, req)
}
