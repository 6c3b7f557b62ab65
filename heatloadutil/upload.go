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
	"os"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

// maxRetries is the number of times a failed blob write is retried.
const maxRetries = 5

// uploader writes output files to a temporary directory and then copies
// them to blob storage.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	dir   string
	log   logrus.FieldLogger
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(path string) (string, error) {
	if !IsBlob(path) {
		return path, nil
	}
	if u.dir == "" {
		var err error
		if u.dir, err = ioutil.TempDir("", "heatload"); err != nil {
			return "", fmt.Errorf("heatloadutil: creating temporary output directory: %v", err)
		}
	}
	files, _ := sidecars(path)
	for _, f := range files {
		u.files = append(u.files, [2]string{filepath.Join(u.dir, filepath.Base(f)), f})
	}
	return filepath.Join(u.dir, filepath.Base(files[0])), nil
}

// upload copies the temporary files to blob storage, retrying
// failed copies, and then removes the temporary directory.
func (u *uploader) upload(ctx context.Context) error {
	for _, files := range u.files {
		if _, err := os.Stat(files[0]); os.IsNotExist(err) {
			continue // An optional sidecar file that wasn't written.
		}
		files := files
		err := backoff.RetryNotify(
			func() error { return uploadFile(ctx, files[0], files[1]) },
			backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx),
			func(err error, d time.Duration) {
				u.log.WithError(err).Warnf("retrying upload of %s in %v", files[1], d)
			},
		)
		if err != nil {
			return err
		}
	}
	if u.dir != "" {
		return os.RemoveAll(u.dir)
	}
	return nil
}

func uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("heatloadutil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	bucketURL, key, err := splitBlob(remote)
	if err != nil {
		return fmt.Errorf("heatloadutil: parsing url '%s' for upload: %v", remote, err)
	}
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return fmt.Errorf("heatloadutil: opening bucket to upload file '%s': %v", remote, err)
	}
	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("heatloadutil: opening writer to upload file '%s': %v", remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("heatloadutil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	return w.Close()
}
