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

package compiler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactNotFoundError is returned when compilation succeeded but the
// expected artifact is absent.
type ArtifactNotFoundError struct {
	Path string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("artifact not found at %s", e.Path)
}

func (e *ArtifactNotFoundError) Is(target error) bool { return target == ErrArtifactNotFound }

var upper = cases.Upper(language.Und)

// TitleCase upper-cases the first character of every underscore separated
// segment and joins the segments without separator, e.g. "my_token" becomes
// "MyToken". Empty segments are dropped.
// TitleCase 将下划线分隔的每一段首字母大写并拼接。
func TitleCase(name string) string {
	var b strings.Builder
	for _, seg := range strings.Split(name, "_") {
		if seg == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(seg)
		b.WriteString(upper.String(string(r)))
		b.WriteString(seg[size:])
	}
	return b.String()
}

// ArtifactPath returns where the compiler places the artifact of the contract
// in sourceDir: <sourceDir>/target/<base>_contract-<TitleCase(base)>.json.
// The file system is not consulted.
// ArtifactPath 根据合约目录名计算产物路径，不访问文件系统。
func ArtifactPath(sourceDir string) (string, error) {
	dir, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	base := filepath.Base(dir)
	name := fmt.Sprintf("%s_contract-%s.json", base, TitleCase(base))
	return filepath.Join(dir, "target", name), nil
}

// Locate returns the artifact path of the contract in sourceDir after checking
// that the file exists.
func Locate(sourceDir string) (string, error) {
	path, err := ArtifactPath(sourceDir)
	if err != nil {
		return "", err
	}
	fi, err := os.Stat(path)
	if err != nil || fi.IsDir() {
		return "", &ArtifactNotFoundError{Path: path}
	}
	return path, nil
}

// ArtifactInfo holds the summary of a compiled contract artifact.
type ArtifactInfo struct {
	Path        string `json:"path"`
	Name        string `json:"name"`
	NoirVersion string `json:"noirVersion,omitempty"`
	Functions   int    `json:"functions"`
}

// ReadArtifact decodes the header fields of the contract artifact at path.
// ReadArtifact 读取合约产物的基本信息。
func ReadArtifact(path string) (*ArtifactInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if trimmed := bytes.TrimSpace(data); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("invalid artifact %s: not a JSON object", path)
	}
	var raw struct {
		Name        string            `json:"name"`
		NoirVersion string            `json:"noir_version"`
		Functions   []json.RawMessage `json:"functions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact %s: %w", path, err)
	}
	return &ArtifactInfo{
		Path:        path,
		Name:        raw.Name,
		NoirVersion: raw.NoirVersion,
		Functions:   len(raw.Functions),
	}, nil
}
