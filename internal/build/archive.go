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
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// isTarball reports whether name carries a gzipped tar extension.
func isTarball(name string) bool {
	return strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz")
}

// WriteArchive creates a flat .tar.gz archive holding files under their base
// names. File modes are preserved. A failed write removes the archive.
// WriteArchive 创建一个扁平的 .tar.gz 归档，文件以其基本名存储。
func WriteArchive(name string, files []string) (err error) {
	if !isTarball(name) {
		return fmt.Errorf("unknown archive extension: %s", filepath.Base(name))
	}
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(name)
		}
	}()
	gzw := gzip.NewWriter(out)
	tw := tar.NewWriter(gzw)
	for _, file := range files {
		if err := addFile(tw, file); err != nil {
			return fmt.Errorf("archive %s: %w", file, err)
		}
	}
	if err := tw.Close(); err != nil {
		return err
	}
	return gzw.Close()
}

// addFile appends the regular file at path to the archive root. Symlinks are
// followed.
func addFile(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return errors.New("not a regular file")
	}
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = filepath.Base(path)
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}
	_, err = io.Copy(tw, f)
	return err
}

// ExtractArchive unpacks a .tar.gz archive into dest. Only directories and
// regular files are materialized; links and special files are skipped.
// Entries resolving outside dest are rejected.
// ExtractArchive 将 .tar.gz 归档解压到目标目录。
func ExtractArchive(archive string, dest string) error {
	if !isTarball(archive) {
		return fmt.Errorf("unhandled archive type %s", archive)
	}
	f, err := os.Open(archive)
	if err != nil {
		return err
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gzr.Close()

	root := filepath.Clean(dest)
	tr := tar.NewReader(gzr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if hdr.Typeflag != tar.TypeDir && hdr.Typeflag != tar.TypeReg {
			continue
		}
		target := filepath.Join(root, filepath.FromSlash(hdr.Name))
		if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
			return fmt.Errorf("path %q escapes archive destination", hdr.Name)
		}
		switch {
		case hdr.Typeflag == tar.TypeDir:
			err = os.MkdirAll(target, 0755)
		case target == root:
			err = errors.New("file entry resolves to archive destination")
		default:
			err = writeEntry(target, hdr.FileInfo().Mode().Perm(), tr)
		}
		if err != nil {
			return fmt.Errorf("extract %s: %w", hdr.Name, err)
		}
	}
}

// writeEntry replaces target with the contents of r.
func writeEntry(target string, perm os.FileMode, r io.Reader) error {
	if err := os.RemoveAll(target); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(target)
		return err
	}
	return f.Close()
}
