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
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aztec-verifier/aztec-verifier/internal/build"
	"github.com/aztec-verifier/aztec-verifier/log"
	"github.com/gofrs/flock"
)

// completeMarker is written into a toolchain directory once it has been
// validated. Directories without it are never treated as cache hits.
const completeMarker = ".complete"

// Cache kinds, used as the first path segment below the data directory.
const (
	KindPrebuilt = "prebuilt"
	KindSource   = "source"
)

// Key identifies one cached toolchain. Distinct keys map to distinct
// directories.
type Key struct {
	Version  string
	Platform Platform
}

// ErrNoDataDir is returned when a cache is opened without a root directory.
var ErrNoDataDir = errors.New("no toolchain data directory configured")

// InvalidVersionError is returned for a version that cannot name a cache entry.
type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("invalid toolchain version %q", e.Version)
}

// Dir returns the directory of the toolchain below root for the given cache
// kind.
func (k Key) Dir(root, kind string) string {
	return filepath.Join(root, kind, versionElem(k.Version), string(k.Platform))
}

// versionElem encodes a version as a single path element. The encoding is
// reversible, so distinct versions never share a directory.
func versionElem(version string) string {
	switch version {
	case ".", "..":
		return strings.ReplaceAll(version, ".", "%2E")
	}
	return url.PathEscape(version)
}

func checkVersion(version string) error {
	if version == "" {
		return &InvalidVersionError{Version: version}
	}
	return nil
}

// PopulateFunc fills an empty staging directory with a toolchain.
type PopulateFunc func(staging string) error

// Cache maps a toolchain version to a directory below
// <root>/<kind>/<version>/<platform>. Population happens in a staging
// directory under an exclusive file lock; the result is validated, marked
// complete and renamed into place.
// Cache 将工具链版本映射到本地目录，并在文件锁保护下填充。
type Cache struct {
	root     string
	kind     string
	platform Platform
}

// NewCache creates a cache of the given kind rooted at root.
func NewCache(root, kind string, platform Platform) (*Cache, error) {
	if root == "" {
		return nil, ErrNoDataDir
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &Cache{root: abs, kind: kind, platform: platform}, nil
}

// Platform returns the platform this cache serves.
func (c *Cache) Platform() Platform { return c.platform }

// Dir returns the directory holding the given toolchain version.
func (c *Cache) Dir(version string) string {
	return Key{Version: version, Platform: c.platform}.Dir(c.root, c.kind)
}

func (c *Cache) versionDir(version string) string {
	return filepath.Join(c.root, c.kind, versionElem(version))
}

func (c *Cache) stagingDir(version string) string {
	return filepath.Join(c.versionDir(version), "."+string(c.platform)+".partial")
}

func (c *Cache) lockPath(version string) string {
	return filepath.Join(c.versionDir(version), "."+string(c.platform)+".lock")
}

// Has reports whether a completed toolchain for version is cached.
func (c *Cache) Has(version string) bool {
	if checkVersion(version) != nil {
		return false
	}
	return build.FileExist(filepath.Join(c.Dir(version), completeMarker))
}

// Lookup returns a cached toolchain without populating it. The second return
// value is false on a miss.
func (c *Cache) Lookup(version string) (*Paths, bool, error) {
	if err := checkVersion(version); err != nil {
		return nil, false, err
	}
	if !c.Has(version) {
		return nil, false, nil
	}
	paths, err := Validate(c.Dir(version))
	if err != nil {
		return nil, true, err
	}
	return paths, true, nil
}

// Ensure returns the cached toolchain for version, running populate on a miss.
//
// A failed populate removes the staging directory. A populated directory that
// fails validation is left in place for inspection, but without the completion
// marker it is discarded by the next attempt.
// Ensure 返回缓存中的工具链，未命中时调用 populate 填充。
func (c *Cache) Ensure(version string, populate PopulateFunc) (*Paths, error) {
	if err := checkVersion(version); err != nil {
		return nil, err
	}
	logger := log.New("version", version, "platform", c.platform)
	if paths, hit, err := c.Lookup(version); hit {
		if err == nil {
			logger.Debug("Toolchain cache hit", "dir", paths.Root)
		}
		return paths, err
	}
	if err := os.MkdirAll(c.versionDir(version), 0755); err != nil {
		return nil, err
	}
	lock := flock.New(c.lockPath(version))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock toolchain cache: %w", err)
	}
	if !locked {
		logger.Info("Waiting for another process populating the toolchain", "lock", lock.Path())
		if err := lock.Lock(); err != nil {
			return nil, fmt.Errorf("lock toolchain cache: %w", err)
		}
	}
	defer lock.Unlock()

	// Someone else may have finished while we waited for the lock.
	if paths, hit, err := c.Lookup(version); hit {
		return paths, err
	}
	staging := c.stagingDir(version)
	if err := os.RemoveAll(staging); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return nil, err
	}
	start := time.Now()
	if err := populate(staging); err != nil {
		os.RemoveAll(staging)
		return nil, err
	}
	paths, err := Validate(staging)
	if err != nil {
		logger.Warn("Toolchain incomplete, keeping staging directory", "dir", staging)
		return nil, err
	}
	if err := ensureExecutable(paths); err != nil {
		return nil, err
	}
	marker := fmt.Sprintf("version=%s\nplatform=%s\ntime=%s\n", version, c.platform, time.Now().UTC().Format(time.RFC3339))
	if err := os.WriteFile(filepath.Join(staging, completeMarker), []byte(marker), 0644); err != nil {
		return nil, err
	}
	dir := c.Dir(version)
	if err := os.RemoveAll(dir); err != nil {
		return nil, err
	}
	if err := os.Rename(staging, dir); err != nil {
		return nil, err
	}
	logger.Info("Toolchain installed", "dir", dir, "elapsed", time.Since(start))
	return Validate(dir)
}

// List returns the versions with a completed toolchain for this platform,
// sorted lexically.
func (c *Cache) List() ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(c.root, c.kind))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var versions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		version, err := url.PathUnescape(entry.Name())
		if err != nil {
			continue
		}
		if c.Has(version) {
			versions = append(versions, version)
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// Remove deletes the cached toolchain for version along with any leftover
// staging directory.
func (c *Cache) Remove(version string) error {
	if err := checkVersion(version); err != nil {
		return err
	}
	if err := os.RemoveAll(c.Dir(version)); err != nil {
		return err
	}
	return os.RemoveAll(c.stagingDir(version))
}
