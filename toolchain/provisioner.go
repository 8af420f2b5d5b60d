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
	"os"
	"os/user"
	"path/filepath"
)

// Provisioner acquires a validated toolchain for a version tag.
type Provisioner interface {
	Acquire(version string) (*Paths, error)
	Platform() Platform
}

var (
	_ Provisioner = (*Prebuilt)(nil)
	_ Provisioner = (*SourceBuilder)(nil)
)

const (
	DefaultReleaseURL   = "https://github.com/hsy822/aztec-contract-verifier/releases/download"
	DefaultSourceRepo   = "https://github.com/AztecProtocol/aztec-packages.git"
	DefaultBBReleaseURL = "https://github.com/AztecProtocol/aztec-packages/releases/download"
)

// Config collects the toolchain provisioning settings.
// Config 包含工具链准备相关的配置项。
type Config struct {
	// DataDir is the cache root. Toolchains live below
	// <DataDir>/<prebuilt|source>/<version>/<platform>.
	DataDir string

	ReleaseURL string // base URL of the prebuilt toolchain releases
	FromSource bool   `toml:",omitempty"`

	SourceRepo   string `toml:",omitempty"` // git repository built with FromSource
	BBReleaseURL string `toml:",omitempty"` // base URL of the barretenberg releases
}

// DefaultConfig contains the default provisioning settings.
var DefaultConfig = Config{
	DataDir:      DefaultDataDir(),
	ReleaseURL:   DefaultReleaseURL,
	SourceRepo:   DefaultSourceRepo,
	BBReleaseURL: DefaultBBReleaseURL,
}

// DefaultDataDir is the default cache root, ~/.aztec-verifier. It is empty
// when no home directory can be determined.
func DefaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".aztec-verifier")
	}
	return ""
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// NewProvisioner detects the host platform and creates the provisioner
// selected by cfg.
func NewProvisioner(cfg *Config, token string) (Provisioner, error) {
	platform, err := DetectPlatform()
	if err != nil {
		return nil, err
	}
	return newProvisioner(cfg, token, platform)
}

func newProvisioner(cfg *Config, token string, platform Platform) (Provisioner, error) {
	if cfg.FromSource {
		return NewSourceBuilder(cfg.DataDir, cfg.SourceRepo, cfg.BBReleaseURL, platform)
	}
	return NewPrebuilt(cfg.DataDir, cfg.ReleaseURL, token, platform)
}

// TokenFromEnv returns the GitHub token used to authenticate downloads.
func TokenFromEnv() string {
	return os.Getenv("GITHUB_TOKEN")
}
