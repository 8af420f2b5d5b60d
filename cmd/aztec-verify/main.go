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

// aztec-verify compiles Aztec contracts with a pinned toolchain and verifies
// their class ID against a deployed instance.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/aztec-verifier/aztec-verifier/cmd/utils"
	"github.com/aztec-verifier/aztec-verifier/compiler"
	"github.com/aztec-verifier/aztec-verifier/internal/debug"
	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/internal/version"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/aztec-verifier/aztec-verifier/pipeline"
	"github.com/aztec-verifier/aztec-verifier/releases"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/aztec-verifier/aztec-verifier/verifier"
	"github.com/urfave/cli/v2"
)

const clientIdentifier = "aztec-verify" // Client identifier to advertise in the version output

var app = flags.NewApp("the Aztec contract class verifier")

var versionCommand = &cli.Command{
	Action:    printVersion,
	Name:      "version",
	Usage:     "Print version numbers",
	ArgsUsage: " ",
	Description: `
The output of this command is supposed to be machine-readable.
`,
}

func init() {
	// Initialize the CLI app and start the verifier
	app.Action = verify
	app.Commands = []*cli.Command{
		compileCommand,
		toolchainCommand,
		dumpConfigCommand,
		versionCommand,
	}
	app.Flags = flags.Merge(
		utils.ToolchainFlags,
		utils.CompilerFlags,
		utils.VerifierFlags,
		[]cli.Flag{utils.OutputFlag, utils.ConfigFileFlag},
		debug.Flags,
	)
	app.Before = func(ctx *cli.Context) error {
		return debug.Setup(ctx)
	}
	app.After = func(ctx *cli.Context) error {
		debug.Exit()
		return nil
	}
}

func main() {
	if err := app.Run(os.Args); err != nil {
		// Stage failures were already reported by the pipeline.
		var serr *pipeline.StageError
		if !errors.As(err, &serr) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// verify is the main entry point into the system if no special subcommand is
// run. It provisions the toolchain, compiles the contract and runs the class
// ID verifier against the deployed address.
func verify(ctx *cli.Context) error {
	if args := ctx.Args().Slice(); len(args) > 0 {
		return fmt.Errorf("invalid command: %q", args[0])
	}
	if err := flags.CheckExclusive(ctx, utils.SourceFlag, utils.ArtifactFlag); err != nil {
		return err
	}
	req := &pipeline.Request{
		SourceDir: ctx.String(utils.SourceFlag.Name),
		Artifact:  ctx.String(utils.ArtifactFlag.Name),
		Version:   ctx.String(utils.CompilerVersionFlag.Name),
		Address:   ctx.String(utils.AddressFlag.Name),
		Network:   ctx.String(utils.PXEFlag.Name),
	}
	return runPipeline(ctx, req)
}

// runPipeline assembles the stages from the configuration and executes req.
// In JSON mode every human-readable line goes to stderr and stdout carries
// only the result document.
func runPipeline(ctx *cli.Context, req *pipeline.Request) error {
	cfg := makeConfig(ctx)
	jsonOutput := ctx.Bool(utils.OutputFlag.Name)

	human, humanIsTerminal := io.Writer(os.Stdout), debug.StdoutIsTerminal()
	if jsonOutput {
		human, humanIsTerminal = os.Stderr, debug.StderrIsTerminal()
	}
	p, err := makePipeline(ctx, &cfg, human, humanIsTerminal)
	if err != nil {
		return err
	}
	res, runErr := p.Run(req)
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Error("Failed to write result", "err", err)
		}
	}
	return runErr
}

func makePipeline(ctx *cli.Context, cfg *verifyConfig, human io.Writer, humanIsTerminal bool) (*pipeline.Pipeline, error) {
	token := toolchain.TokenFromEnv()
	prov, err := toolchain.NewProvisioner(&cfg.Toolchain, token)
	if err != nil {
		return nil, err
	}
	driver := compiler.NewDriver()
	driver.Stdout = human
	if debug.StderrIsTerminal() && !ctx.Bool(utils.NoProgressFlag.Name) {
		driver.Progress = os.Stderr
	}
	invoker, err := verifier.NewInvoker(&cfg.Verifier)
	if err != nil {
		return nil, err
	}
	invoker.Stdout = human

	return &pipeline.Pipeline{
		Provisioner: prov,
		Resolver:    makeResolver(token, prov.Platform(), !ctx.Bool(utils.OutputFlag.Name)),
		Driver:      driver,
		Verifier:    invoker,
		Reporter:    pipeline.NewReporter(human, humanIsTerminal && os.Getenv("NO_COLOR") == ""),
	}, nil
}

// makeResolver prompts for a release on the terminal only when a user can
// answer and the prompt does not end up in machine-readable output.
func makeResolver(token string, platform toolchain.Platform, allowPrompt bool) *releases.Resolver {
	return &releases.Resolver{
		Client:      releases.NewClient(token),
		Platform:    platform,
		Interactive: allowPrompt && debug.StdinIsTerminal() && debug.StdoutIsTerminal(),
		Out:         os.Stdout,
	}
}

func printVersion(ctx *cli.Context) error {
	fmt.Print(version.Info(clientIdentifier))
	return nil
}
