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

// Package utils contains internal helper functions for aztec-verify commands.
package utils

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/aztec-verifier/aztec-verifier/verifier"
	"github.com/urfave/cli/v2"
)

// Fatalf formats a message to standard error and exits the program.
// The message is also printed to standard output if standard error
// is redirected to a different file.
func Fatalf(format string, args ...interface{}) {
	w := io.MultiWriter(os.Stdout, os.Stderr)
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		}
	}
	fmt.Fprintf(w, "Fatal: "+format+"\n", args...)
	os.Exit(1)
}

// These are all the command line flags we support.
// If you add to this list, please remember to include the
// flag in the appropriate command definition.
//
// The flags are defined here so their names and help texts
// are the same for all commands.

var (
	// Toolchain settings
	DataDirFlag = &flags.DirectoryFlag{
		Name:     "datadir",
		Usage:    "Directory holding the toolchain cache",
		Value:    flags.DirectoryString(toolchain.DefaultDataDir()),
		EnvVars:  []string{"AZTEC_VERIFIER_DATADIR"},
		Category: flags.ToolchainCategory,
	}
	CompilerVersionFlag = &cli.StringFlag{
		Name:     "compiler-version",
		Usage:    "Toolchain release tag to use (e.g. v0.87.2), chosen from the published releases if unset",
		Category: flags.ToolchainCategory,
	}
	ReleaseURLFlag = &cli.StringFlag{
		Name:     "release-url",
		Usage:    "Base URL of the prebuilt toolchain releases",
		Value:    toolchain.DefaultReleaseURL,
		Category: flags.ToolchainCategory,
	}
	FromSourceFlag = &cli.BoolFlag{
		Name:     "from-source",
		Usage:    "Build the toolchain from the Aztec sources instead of downloading a prebuilt one",
		Category: flags.ToolchainCategory,
	}

	// Compiler settings
	SourceFlag = &cli.StringFlag{
		Name:     "source",
		Usage:    "Directory of the Noir contract to compile",
		Category: flags.CompilerCategory,
	}
	NoProgressFlag = &cli.BoolFlag{
		Name:     "no-progress",
		Usage:    "Disable the progress indicator while compiling",
		Category: flags.CompilerCategory,
	}

	// Verifier settings
	ArtifactFlag = &cli.StringFlag{
		Name:     "artifact",
		Usage:    "Precompiled contract artifact to verify, skips compilation",
		Category: flags.VerifierCategory,
	}
	AddressFlag = &cli.StringFlag{
		Name:     "address",
		Usage:    "Address of the deployed contract instance",
		Category: flags.VerifierCategory,
	}
	PXEFlag = &cli.StringFlag{
		Name:     "pxe",
		Aliases:  []string{"network"},
		Usage:    "URL of the PXE or node the verifier queries",
		Value:    "http://localhost:8080",
		Category: flags.VerifierCategory,
	}
	VerifierFlag = &cli.StringFlag{
		Name:     "verifier",
		Usage:    "Verifier command line, the artifact and connection flags are appended",
		Value:    strings.Join(verifier.DefaultConfig.Command, " "),
		Category: flags.VerifierCategory,
	}

	// Misc settings
	OutputFlag = &cli.BoolFlag{
		Name:     "output",
		Usage:    "Print the result as JSON on stdout",
		Category: flags.MiscCategory,
	}
	ConfigFileFlag = &cli.StringFlag{
		Name:     "config",
		Usage:    "TOML configuration file",
		Category: flags.MiscCategory,
	}
)

var (
	// ToolchainFlags configure toolchain provisioning.
	ToolchainFlags = []cli.Flag{DataDirFlag, CompilerVersionFlag, ReleaseURLFlag, FromSourceFlag}
	// CompilerFlags configure compilation.
	CompilerFlags = []cli.Flag{SourceFlag, NoProgressFlag}
	// VerifierFlags configure verification.
	VerifierFlags = []cli.Flag{ArtifactFlag, AddressFlag, PXEFlag, VerifierFlag}
)

// SetToolchainConfig applies toolchain-related command line flags to the config.
func SetToolchainConfig(ctx *cli.Context, cfg *toolchain.Config) {
	if ctx.IsSet(DataDirFlag.Name) {
		cfg.DataDir = ctx.String(DataDirFlag.Name)
	}
	if ctx.IsSet(ReleaseURLFlag.Name) {
		cfg.ReleaseURL = ctx.String(ReleaseURLFlag.Name)
	}
	if ctx.IsSet(FromSourceFlag.Name) {
		cfg.FromSource = ctx.Bool(FromSourceFlag.Name)
	}
	if cfg.DataDir == "" {
		Fatalf("No data directory configured, set --%s", DataDirFlag.Name)
	}
}

// SetVerifierConfig applies verifier-related command line flags to the config.
func SetVerifierConfig(ctx *cli.Context, cfg *verifier.Config) {
	if ctx.IsSet(VerifierFlag.Name) {
		cfg.Command = SplitCommand(ctx.String(VerifierFlag.Name))
	}
}

// SplitCommand splits a command line on whitespace. Single and double quotes
// group words containing spaces.
func SplitCommand(s string) []string {
	var (
		args  []string
		cur   strings.Builder
		quote rune
		inArg bool
	)
	for _, r := range s {
		switch {
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			cur.WriteRune(r)
		case r == '\'' || r == '"':
			quote, inArg = r, true
		case r == ' ' || r == '\t' || r == '\n':
			if inArg {
				args = append(args, cur.String())
				cur.Reset()
				inArg = false
			}
		default:
			cur.WriteRune(r)
			inArg = true
		}
	}
	if inArg {
		args = append(args, cur.String())
	}
	return args
}
