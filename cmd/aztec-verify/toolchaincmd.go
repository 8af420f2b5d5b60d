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
	"errors"
	"fmt"
	"os"

	"github.com/aztec-verifier/aztec-verifier/cmd/utils"
	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/aztec-verifier/aztec-verifier/releases"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

var errTooManyArgs = errors.New("too many arguments")

var (
	packOutFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Directory the archive is written to",
		Value: ".",
	}

	toolchainCommand = &cli.Command{
		Name:      "toolchain",
		Usage:     "Manage the cached compiler toolchains",
		ArgsUsage: "",
		Subcommands: []*cli.Command{
			toolchainFetchCmd,
			toolchainListCmd,
			toolchainVersionsCmd,
			toolchainPackCmd,
			toolchainRemoveCmd,
		},
	}
	toolchainFetchCmd = &cli.Command{
		Action:    fetchToolchain,
		Name:      "fetch",
		Usage:     "Download or build a toolchain into the cache",
		ArgsUsage: "[<version>]",
		Flags:     flags.Merge(configFlags, []cli.Flag{utils.CompilerVersionFlag}),
		Description: `
Provisions the toolchain for the given release tag, or for the selected
release if no tag is given, and prints the paths of its executables.`,
	}
	toolchainListCmd = &cli.Command{
		Action:    listToolchains,
		Name:      "list",
		Usage:     "List the cached toolchains for this platform",
		ArgsUsage: " ",
		Flags:     configFlags,
	}
	toolchainVersionsCmd = &cli.Command{
		Action:    listReleases,
		Name:      "versions",
		Usage:     "List the published toolchain releases for this platform",
		ArgsUsage: " ",
	}
	toolchainPackCmd = &cli.Command{
		Action:    packToolchain,
		Name:      "pack",
		Usage:     "Pack a cached toolchain into a release archive",
		ArgsUsage: "<version>",
		Flags:     flags.Merge(configFlags, []cli.Flag{packOutFlag}),
		Description: `
Writes toolchain-<version>-<platform>.tar.gz from the cached toolchain and
prints its SHA-256 checksum. The archive can be published as a prebuilt
release.`,
	}
	toolchainRemoveCmd = &cli.Command{
		Action:    removeToolchain,
		Name:      "remove",
		Usage:     "Remove a toolchain from the cache",
		ArgsUsage: "<version>",
		Flags:     configFlags,
	}
)

// toolchainCache opens the cache the configured provisioning strategy uses.
func toolchainCache(cfg *toolchain.Config) (*toolchain.Cache, error) {
	platform, err := toolchain.DetectPlatform()
	if err != nil {
		return nil, err
	}
	kind := toolchain.KindPrebuilt
	if cfg.FromSource {
		kind = toolchain.KindSource
	}
	return toolchain.NewCache(cfg.DataDir, kind, platform)
}

// versionArg returns the single version argument of a toolchain subcommand.
func versionArg(ctx *cli.Context) (string, error) {
	switch ctx.NArg() {
	case 0:
		return "", errors.New("version argument required")
	case 1:
		return ctx.Args().First(), nil
	default:
		return "", errTooManyArgs
	}
}

func fetchToolchain(ctx *cli.Context) error {
	if ctx.NArg() > 1 {
		return errTooManyArgs
	}
	cfg := makeConfig(ctx)
	token := toolchain.TokenFromEnv()
	prov, err := toolchain.NewProvisioner(&cfg.Toolchain, token)
	if err != nil {
		return err
	}
	version := ctx.String(utils.CompilerVersionFlag.Name)
	if ctx.NArg() == 1 {
		version = ctx.Args().First()
	}
	if version == "" {
		if version, err = makeResolver(token, prov.Platform(), true).Resolve(); err != nil {
			return err
		}
	}
	tc, err := prov.Acquire(version)
	if err != nil {
		return err
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Toolchain " + version, string(prov.Platform())})
	table.AppendBulk([][]string{
		{toolchain.AztecNargoFile, tc.AztecNargo},
		{toolchain.NargoFile, tc.Nargo},
		{toolchain.TranspilerFile, tc.Transpiler},
		{toolchain.BBFile, tc.BB},
	})
	table.Render()
	return nil
}

func listToolchains(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	cache, err := toolchainCache(&cfg.Toolchain)
	if err != nil {
		return err
	}
	versions, err := cache.List()
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		log.Info("No toolchains cached", "platform", cache.Platform(), "root", cfg.Toolchain.DataDir)
		return nil
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Version", "Directory"})
	for _, v := range versions {
		table.Append([]string{v, cache.Dir(v)})
	}
	table.Render()
	return nil
}

func listReleases(ctx *cli.Context) error {
	if ctx.NArg() > 0 {
		return errTooManyArgs
	}
	platform, err := toolchain.DetectPlatform()
	if err != nil {
		return err
	}
	versions, err := releases.NewClient(toolchain.TokenFromEnv()).Versions(platform)
	if err != nil {
		return err
	}
	for _, v := range versions {
		fmt.Println(v)
	}
	return nil
}

func packToolchain(ctx *cli.Context) error {
	version, err := versionArg(ctx)
	if err != nil {
		return err
	}
	cfg := makeConfig(ctx)
	cache, err := toolchainCache(&cfg.Toolchain)
	if err != nil {
		return err
	}
	tc, hit, err := cache.Lookup(version)
	if err != nil {
		return err
	}
	if !hit {
		return fmt.Errorf("toolchain %s is not cached for %s, run 'toolchain fetch %s' first", version, cache.Platform(), version)
	}
	res, err := toolchain.Pack(tc, version, cache.Platform(), ctx.String(packOutFlag.Name))
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", res.SHA256, res.Archive)
	return nil
}

func removeToolchain(ctx *cli.Context) error {
	version, err := versionArg(ctx)
	if err != nil {
		return err
	}
	cfg := makeConfig(ctx)
	cache, err := toolchainCache(&cfg.Toolchain)
	if err != nil {
		return err
	}
	if !cache.Has(version) {
		log.Warn("Toolchain not cached", "version", version, "platform", cache.Platform())
	}
	if err := cache.Remove(version); err != nil {
		return err
	}
	log.Info("Removed toolchain", "version", version, "dir", cache.Dir(version))
	return nil
}
