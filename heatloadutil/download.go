/*
Copyright © 2024 the heatload authors.
This file is part of heatload.

heatload is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

heatload is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with heatload.  If not, see <http://www.gnu.org/licenses/>.
*/

package heatloadutil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gocloud.dev/gcerrors"
)

// maybeDownload checks if path is an existing local file.
// If not, and path is an http(s) or blob storage URL, it downloads
// the file and its sidecar files to a temporary directory and returns
// the path to the downloaded file.
func maybeDownload(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	var get func(ctx context.Context, path string) (io.ReadCloser, error)
	switch {
	case strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://"):
		get = getHTTP
	case IsBlob(path):
		get = getBlob
	default:
		return path, nil
	}

	dir, err := ioutil.TempDir("", "heatload")
	if err != nil {
		return "", fmt.Errorf("heatloadutil: creating temporary download directory: %v", err)
	}
	files, optional := sidecars(path)
	for i, fname := range files {
		r, err := get(ctx, fname)
		if err != nil {
			if i >= len(files)-optional && isNotFound(err) {
				continue
			}
			return "", fmt.Errorf("heatloadutil: downloading %s: %v", fname, err)
		}
		err = copyToFile(filepath.Join(dir, filepath.Base(fname)), r)
		r.Close()
		if err != nil {
			return "", fmt.Errorf("heatloadutil: downloading %s: %v", fname, err)
		}
	}
	return filepath.Join(dir, filepath.Base(files[0])), nil
}

// sidecars returns filename along with the other files that make up the
// same dataset. The last optional files need not exist.
func sidecars(filename string) (files []string, optional int) {
	files = []string{filename}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	switch strings.ToLower(ext) {
	case ".shp":
		return append(files, base+".dbf", base+".shx", base+".prj"), 1
	case ".asc":
		return append(files, base+".prj"), 1
	}
	return files, 0
}

type notFoundError string

func (e notFoundError) Error() string { return string(e) }

func isNotFound(err error) bool {
	if _, ok := err.(notFoundError); ok {
		return true
	}
	return gcerrors.Code(err) == gcerrors.NotFound
}

func getHTTP(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequest(http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, notFoundError(path + " not found")
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%s: %s", path, resp.Status)
	}
	return resp.Body, nil
}

func getBlob(ctx context.Context, path string) (io.ReadCloser, error) {
	bucketURL, key, err := splitBlob(path)
	if err != nil {
		return nil, err
	}
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return bucket.NewReader(ctx, key, nil)
}

func copyToFile(path string, r io.Reader) error {
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
