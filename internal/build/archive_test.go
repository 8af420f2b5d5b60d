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

package build

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, data string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(data), mode))
	require.NoError(t, os.Chmod(path, mode))
}

func TestWriteAndExtractArchive(t *testing.T) {
	src := t.TempDir()
	files := []string{filepath.Join(src, "aztec-nargo"), filepath.Join(src, "bb")}
	writeFile(t, files[0], "#!/bin/sh\necho hi\n", 0755)
	writeFile(t, files[1], "binary", 0755)

	archive := filepath.Join(t.TempDir(), "toolchain-v1-amd64-linux.tar.gz")
	require.NoError(t, WriteArchive(archive, files))

	dest := t.TempDir()
	require.NoError(t, ExtractArchive(archive, dest))

	for _, name := range []string{"aztec-nargo", "bb"} {
		fi, err := os.Stat(filepath.Join(dest, name))
		require.NoError(t, err, name)
		if runtime.GOOS != "windows" {
			require.NotZero(t, fi.Mode().Perm()&0100, "%s lost its executable bit", name)
		}
	}
	data, err := os.ReadFile(filepath.Join(dest, "aztec-nargo"))
	require.NoError(t, err)
	require.Equal(t, "#!/bin/sh\necho hi\n", string(data))
}

func TestWriteArchiveUnknownExtension(t *testing.T) {
	name := filepath.Join(t.TempDir(), "toolchain.zip")
	err := WriteArchive(name, nil)
	require.Error(t, err)
	require.False(t, FileExist(name), "half-written archive left behind")
}

// makeTarball builds an in-memory tar.gz with the given headers and contents.
func makeTarball(t *testing.T, entries []*tar.Header, contents []string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	gzw := gzip.NewWriter(buf)
	tw := tar.NewWriter(gzw)
	for i, hdr := range entries {
		require.NoError(t, tw.WriteHeader(hdr))
		if hdr.Typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(contents[i]))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

func TestExtractNestedAndDotEntries(t *testing.T) {
	data := makeTarball(t, []*tar.Header{
		{Name: "./", Typeflag: tar.TypeDir, Mode: 0755},
		{Name: "./nargo", Typeflag: tar.TypeReg, Mode: 0755, Size: 5},
		{Name: "./bin/", Typeflag: tar.TypeDir, Mode: 0755},
		{Name: "./bin/bb", Typeflag: tar.TypeReg, Mode: 0755, Size: 2},
		{Name: "./link", Typeflag: tar.TypeSymlink, Linkname: "/etc/passwd"},
	}, []string{"", "nargo", "", "bb", ""})

	archive := filepath.Join(t.TempDir(), "a.tar.gz")
	require.NoError(t, os.WriteFile(archive, data, 0644))

	dest := t.TempDir()
	require.NoError(t, ExtractArchive(archive, dest))
	require.True(t, FileExist(filepath.Join(dest, "nargo")))
	require.True(t, FileExist(filepath.Join(dest, "bin", "bb")))
	require.False(t, FileExist(filepath.Join(dest, "link")), "symlinks must be skipped")
}

func TestExtractRejectsEscapingPaths(t *testing.T) {
	data := makeTarball(t, []*tar.Header{
		{Name: "../evil", Typeflag: tar.TypeReg, Mode: 0644, Size: 4},
	}, []string{"evil"})

	dir := t.TempDir()
	archive := filepath.Join(dir, "a.tar.gz")
	require.NoError(t, os.WriteFile(archive, data, 0644))

	dest := filepath.Join(dir, "out")
	require.NoError(t, os.MkdirAll(dest, 0755))
	require.ErrorContains(t, ExtractArchive(archive, dest), "escapes archive destination")
	require.False(t, FileExist(filepath.Join(dir, "evil")))
}

func TestExtractCorruptArchive(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "a.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("<html>Not Found</html>"), 0644))
	require.Error(t, ExtractArchive(archive, t.TempDir()))
}
