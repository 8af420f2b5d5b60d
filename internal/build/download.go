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
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aztec-verifier/aztec-verifier/log"
	"golang.org/x/time/rate"
)

// HTTPError is returned by DownloadFile when the server answers with a
// non-success status.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("download %s: server returned %s", e.URL, e.Status)
}

// Downloader fetches release assets over HTTP.
// Downloader 通过 HTTP 下载发布资源。
type Downloader struct {
	Client *http.Client
	Token  string        // optional bearer token sent with every request
	Report time.Duration // progress log interval, zero disables progress logs
}

// DownloadFile downloads url into dst. The body is written to a temporary
// file next to dst which is renamed once the transfer completes, so dst never
// holds a truncated download.
// DownloadFile 将 url 下载到 dst。下载完成前内容写入临时文件，完成后重命名。
func (d *Downloader) DownloadFile(url, dst string) error {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "aztec-verifier")
	if d.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.Token)
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	tmp := dst + ".tmp"
	fd, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	out := io.Writer(fd)
	if d.Report > 0 {
		out = newDownloadWriter(fd, url, resp.ContentLength, d.Report)
	}
	_, err = io.Copy(out, resp.Body)
	if cerr := fd.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

// downloadWriter counts written bytes and logs progress at most once per
// interval.
type downloadWriter struct {
	w        io.Writer
	url      string
	size     int64
	written  int64
	sometime *rate.Sometimes
	start    time.Time
}

func newDownloadWriter(w io.Writer, url string, size int64, interval time.Duration) *downloadWriter {
	return &downloadWriter{
		w:        w,
		url:      url,
		size:     size,
		sometime: &rate.Sometimes{Interval: interval},
		start:    time.Now(),
	}
}

func (dw *downloadWriter) Write(b []byte) (int, error) {
	n, err := dw.w.Write(b)
	dw.written += int64(n)
	dw.sometime.Do(func() {
		if dw.size > 0 {
			log.Info("Downloading", "url", dw.url, "progress", fmt.Sprintf("%d%%", dw.written*100/dw.size), "elapsed", time.Since(dw.start))
		} else {
			log.Info("Downloading", "url", dw.url, "bytes", dw.written, "elapsed", time.Since(dw.start))
		}
	})
	return n, err
}
