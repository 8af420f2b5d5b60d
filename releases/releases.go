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

// Package releases lists the published prebuilt toolchains and picks the
// version to use.
// releases 包列出已发布的预构建工具链并选择要使用的版本。
package releases

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aztec-verifier/aztec-verifier/toolchain"
)

const (
	DefaultAPIURL = "https://api.github.com"
	DefaultRepo   = "hsy822/aztec-contract-verifier"
)

var ErrNoReleases = errors.New("no prebuilt toolchains found")

// Release is the subset of a GitHub release used here.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is a file attached to a release.
type Asset struct {
	Name string `json:"name"`
}

// HasAsset reports whether the release carries an asset called name.
func (r *Release) HasAsset(name string) bool {
	for _, a := range r.Assets {
		if a.Name == name {
			return true
		}
	}
	return false
}

// Client queries the GitHub releases API.
type Client struct {
	APIURL string
	Repo   string
	Token  string
	HTTP   *http.Client
}

// NewClient creates a client for the default release repository.
func NewClient(token string) *Client {
	return &Client{
		APIURL: DefaultAPIURL,
		Repo:   DefaultRepo,
		Token:  token,
		HTTP:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Releases fetches the releases of the repository, newest first.
func (c *Client) Releases() ([]Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases", strings.TrimRight(c.APIURL, "/"), c.Repo)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "aztec-verifier")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list releases of %s: server returned %s", c.Repo, resp.Status)
	}
	var releases []Release
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("list releases of %s: %w", c.Repo, err)
	}
	return releases, nil
}

// Versions returns the release tags that ship a prebuilt toolchain for
// platform, in the order the API lists them.
// Versions 返回包含指定平台预构建工具链的发布标签。
func (c *Client) Versions(platform toolchain.Platform) ([]string, error) {
	releases, err := c.Releases()
	if err != nil {
		return nil, err
	}
	var tags []string
	for i := range releases {
		if releases[i].HasAsset(toolchain.ArchiveName(releases[i].TagName, platform)) {
			tags = append(tags, releases[i].TagName)
		}
	}
	if len(tags) == 0 {
		return nil, fmt.Errorf("%w for %s in %s", ErrNoReleases, platform, c.Repo)
	}
	return tags, nil
}
