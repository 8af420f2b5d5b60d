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
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aztec-verifier/aztec-verifier/internal/build"
	"github.com/aztec-verifier/aztec-verifier/log"
)

// ArchiveName returns the release asset name of the toolchain archive for the
// given version and platform.
func ArchiveName(version string, platform Platform) string {
	return fmt.Sprintf("toolchain-%s-%s.tar.gz", version, platform)
}

// Prebuilt provisions toolchains by downloading release archives.
// Prebuilt 通过下载发布归档来准备工具链。
type Prebuilt struct {
	cache      *Cache
	releaseURL string
	dl         *build.Downloader
}

// NewPrebuilt creates a prebuilt provisioner caching below root and fetching
// archives from releaseURL/<version>/. The token, if not empty, is sent as a
// bearer credential.
func NewPrebuilt(root, releaseURL, token string, platform Platform) (*Prebuilt, error) {
	cache, err := NewCache(root, KindPrebuilt, platform)
	if err != nil {
		return nil, err
	}
	return &Prebuilt{
		cache:      cache,
		releaseURL: strings.TrimRight(releaseURL, "/"),
		dl: &build.Downloader{
			Client: &http.Client{Timeout: 30 * time.Minute},
			Token:  token,
			Report: 8 * time.Second,
		},
	}, nil
}

// Platform returns the host platform.
func (p *Prebuilt) Platform() Platform { return p.cache.Platform() }

// Cache returns the underlying toolchain cache.
func (p *Prebuilt) Cache() *Cache { return p.cache }

// URL returns the download location of the toolchain archive for version.
func (p *Prebuilt) URL(version string) string {
	return p.releaseURL + "/" + version + "/" + ArchiveName(version, p.Platform())
}

// Acquire returns a validated toolchain for version, downloading and
// extracting the release archive on a cache miss.
// Acquire 返回指定版本的已验证工具链，缓存未命中时下载并解压。
func (p *Prebuilt) Acquire(version string) (*Paths, error) {
	return p.cache.Ensure(version, func(staging string) error {
		url := p.URL(version)
		archive := filepath.Join(staging, ArchiveName(version, p.Platform()))
		log.Info("Downloading toolchain", "version", version, "url", url)
		if err := p.dl.DownloadFile(url, archive); err != nil {
			derr := &DownloadError{URL: url, Err: err}
			var herr *build.HTTPError
			if errors.As(err, &herr) {
				derr.StatusCode = herr.StatusCode
			}
			return derr
		}
		if err := build.ExtractArchive(archive, staging); err != nil {
			return &ExtractError{Archive: archive, Err: err}
		}
		return os.Remove(archive)
	})
}
