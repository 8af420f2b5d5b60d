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
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"
	"unicode"

	"github.com/aztec-verifier/aztec-verifier/cmd/utils"
	"github.com/aztec-verifier/aztec-verifier/internal/flags"
	"github.com/aztec-verifier/aztec-verifier/toolchain"
	"github.com/aztec-verifier/aztec-verifier/verifier"
	"github.com/naoina/toml"
	"github.com/urfave/cli/v2"
)

var dumpConfigCommand = &cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Export configuration values in a TOML format",
	ArgsUsage:   "<dumpfile (optional)>",
	Flags:       flags.Merge(configFlags, []cli.Flag{utils.VerifierFlag}),
	Description: `Export configuration values in TOML format (to stdout by default).`,
}

var configFlags = []cli.Flag{
	utils.ConfigFileFlag,
	utils.DataDirFlag,
	utils.ReleaseURLFlag,
	utils.FromSourceFlag,
}

// These settings ensure that TOML keys use the same names as Go struct fields.
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string {
		return key
	},
	FieldToKey: func(rt reflect.Type, field string) string {
		return field
	},
	MissingField: func(rt reflect.Type, field string) error {
		var link string
		if unicode.IsUpper(rune(rt.Name()[0])) && rt.PkgPath() != "main" {
			link = fmt.Sprintf(", see https://godoc.org/%s#%s for available fields", rt.PkgPath(), rt.Name())
		}
		return fmt.Errorf("field '%s' is not defined in %s%s", field, rt.String(), link)
	},
}

type verifyConfig struct {
	Toolchain toolchain.Config
	Verifier  verifier.Config
}

func loadConfig(file string, cfg *verifyConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	// Add file name to errors that have a line number.
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func defaultConfig() verifyConfig {
	cfg := verifyConfig{
		Toolchain: toolchain.DefaultConfig,
		Verifier:  verifier.DefaultConfig,
	}
	cfg.Verifier.Command = append([]string(nil), verifier.DefaultConfig.Command...)
	return cfg
}

// makeConfig loads the configuration based on the given command line
// parameters and config file.
func makeConfig(ctx *cli.Context) verifyConfig {
	// Load defaults.
	cfg := defaultConfig()

	// Load config file.
	if file := ctx.String(utils.ConfigFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			utils.Fatalf("%v", err)
		}
	}

	// Apply flags.
	utils.SetToolchainConfig(ctx, &cfg.Toolchain)
	utils.SetVerifierConfig(ctx, &cfg.Verifier)
	return cfg
}

// dumpConfig is the dumpconfig command.
func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	dump.WriteString("# Note: this config doesn't contain the GitHub token, set GITHUB_TOKEN instead.\n\n")
	dump.Write(out)

	return nil
}
