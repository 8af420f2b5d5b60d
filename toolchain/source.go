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
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/aztec-verifier/aztec-verifier/internal/build"
	"github.com/aztec-verifier/aztec-verifier/log"
)

// The aztec-nargo wrapper extracts the artifact path with a Perl regexp that
// BSD grep does not understand. It is rewritten into a grep/sed pipeline.
const (
	wrapperGrepPerl     = `grep -oP 'Saved contract artifact to: \K.*'`
	wrapperGrepPortable = `grep 'Saved contract artifact to:' | sed 's/.*Saved contract artifact to: //'`
)

// SourceBuilder provisions toolchains by building them from a checkout of the
// Aztec monorepo. Only bb is downloaded, from the barretenberg releases.
// SourceBuilder 通过从源码构建来准备工具链，只有 bb 从发布页面下载。
type SourceBuilder struct {
	cache *Cache
	repo  string
	bbURL string
	dl    *build.Downloader

	Stdout io.Writer // output of the build commands, defaults to os.Stderr
	Stderr io.Writer
}

// NewSourceBuilder creates a source provisioner caching below root.
func NewSourceBuilder(root, repo, bbReleaseURL string, platform Platform) (*SourceBuilder, error) {
	cache, err := NewCache(root, KindSource, platform)
	if err != nil {
		return nil, err
	}
	return &SourceBuilder{
		cache:  cache,
		repo:   repo,
		bbURL:  strings.TrimRight(bbReleaseURL, "/"),
		dl:     &build.Downloader{Client: &http.Client{Timeout: 30 * time.Minute}, Report: 8 * time.Second},
		Stdout: os.Stderr,
		Stderr: os.Stderr,
	}, nil
}

// Platform returns the host platform.
func (b *SourceBuilder) Platform() Platform { return b.cache.Platform() }

// Cache returns the underlying toolchain cache.
func (b *SourceBuilder) Cache() *Cache { return b.cache }

// WorkDir returns the scratch directory used while building version.
func (b *SourceBuilder) WorkDir(version string) string {
	return filepath.Join(b.cache.root, "work", versionElem(version))
}

// Acquire returns a validated toolchain for version, building it on a cache
// miss. The scratch checkout is removed after a successful build and kept
// otherwise so that a retry can resume from it.
func (b *SourceBuilder) Acquire(version string) (*Paths, error) {
	return b.cache.Ensure(version, func(staging string) error {
		start := time.Now()
		if err := b.build(version, staging); err != nil {
			return err
		}
		log.Info("Built toolchain from source", "version", version, "elapsed", time.Since(start))
		return os.RemoveAll(b.WorkDir(version))
	})
}

func (b *SourceBuilder) build(version, staging string) error {
	work := b.WorkDir(version)
	repoDir := filepath.Join(work, "aztec-packages")

	if !build.FileExist(repoDir) {
		log.Info("Cloning Aztec sources", "repo", b.repo, "tag", version)
		if err := os.MkdirAll(work, 0755); err != nil {
			return &BuildError{Step: "clone", Err: err}
		}
		if _, err := build.RunGit(work, "clone", "--depth", "1", "--branch", version, b.repo, "aztec-packages"); err != nil {
			return &BuildError{Step: "clone", Err: err}
		}
	}

	bootstrap := filepath.Join(repoDir, "noir", "bootstrap.sh")
	if !build.FileExist(bootstrap) {
		return &BuildError{Step: "bootstrap", Err: fmt.Errorf("%s not found", bootstrap)}
	}
	log.Info("Bootstrapping noir")
	if err := b.run(repoDir, "bash", bootstrap); err != nil {
		return &BuildError{Step: "bootstrap", Err: err}
	}

	log.Info("Building avm-transpiler")
	transpilerDir := filepath.Join(repoDir, "avm-transpiler")
	if err := b.run(transpilerDir, "cargo", "build", "--release"); err != nil {
		return &BuildError{Step: "transpiler", Err: err}
	}
	if err := build.CopyFile(filepath.Join(staging, TranspilerFile), filepath.Join(transpilerDir, "target", "release", TranspilerFile), 0755); err != nil {
		return &BuildError{Step: "transpiler", Err: err}
	}

	script := filepath.Join(repoDir, "aztec-nargo", "compile_then_postprocess.sh")
	if err := installWrapper(script, filepath.Join(staging, AztecNargoFile)); err != nil {
		return &BuildError{Step: "wrapper", Err: err}
	}

	bbDir := filepath.Join(work, "bb")
	if err := b.fetchBB(version, bbDir); err != nil {
		return &BuildError{Step: "bb", Err: err}
	}
	bb, err := findBB(bbDir)
	if err != nil {
		return &BuildError{Step: "bb", Err: err}
	}
	if err := build.CopyFile(filepath.Join(staging, BBFile), bb, 0755); err != nil {
		return &BuildError{Step: "bb", Err: err}
	}

	nargo, err := findNargo(repoDir)
	if err != nil {
		return &BuildError{Step: "nargo", Err: err}
	}
	if err := build.CopyFile(filepath.Join(staging, NargoFile), nargo, 0755); err != nil {
		return &BuildError{Step: "nargo", Err: err}
	}
	return nil
}

func (b *SourceBuilder) run(dir string, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir
	return build.RunCommand(cmd, b.Stderr, b.Stdout, b.Stderr)
}

// BBArchiveName returns the barretenberg release asset for platform.
func BBArchiveName(platform Platform) string {
	return fmt.Sprintf("barretenberg-%s.tar.gz", platform)
}

func (b *SourceBuilder) fetchBB(version, dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return err
	}
	url := b.bbURL + "/" + version + "/" + BBArchiveName(b.Platform())
	archive := filepath.Join(dir, BBArchiveName(b.Platform()))
	log.Info("Downloading barretenberg", "url", url)
	if err := b.dl.DownloadFile(url, archive); err != nil {
		return &DownloadError{URL: url, Err: err}
	}
	if err := build.ExtractArchive(archive, dir); err != nil {
		return &ExtractError{Archive: archive, Err: err}
	}
	return os.Remove(archive)
}

// installWrapper copies the aztec-nargo wrapper script to dst with the
// portable artifact-path extraction.
func installWrapper(src, dst string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte(patchWrapperScript(string(content))), 0755)
}

func patchWrapperScript(script string) string {
	return strings.ReplaceAll(script, wrapperGrepPerl, wrapperGrepPortable)
}

// findBB locates the bb binary in an extracted barretenberg release, which
// ships it either at the top level or below bin/.
func findBB(dir string) (string, error) {
	for _, candidate := range []string{filepath.Join(dir, BBFile), filepath.Join(dir, "bin", BBFile)} {
		if fi, err := os.Stat(candidate); err == nil && !fi.IsDir() {
			return candidate, nil
		}
	}
	return "", errors.New("could not locate bb binary in barretenberg release")
}

// findNargo prefers the nargo built by the noir bootstrap and falls back to
// the one installed by noirup.
func findNargo(repoDir string) (string, error) {
	candidates := []string{filepath.Join(repoDir, "noir", "noir-repo", "target", "release", NargoFile)}
	if home := homeDir(); home != "" {
		candidates = append(candidates, filepath.Join(home, ".nargo", "bin", NargoFile))
	}
	for _, candidate := range candidates {
		if build.FileExist(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("nargo not found, tried %s", strings.Join(candidates, ", "))
}
