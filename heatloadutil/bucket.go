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
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob returns whether the given path represents a blob
// (i.e., if it starts with `gs://`, `s3://`, `file://`, or `mem://`).
func IsBlob(path string) bool {
	for _, p := range []string{"gs://", "s3://", "file://", "mem://"} {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// OpenBucket returns the blob storage bucket specified by bucketURL.
// bucketURL may be a local directory, which is created if it doesn't
// exist, or a URL in the format 'provider://name'. The accepted
// providers are "file" for the local filesystem, "mem" for an in-memory
// bucket that lasts for the life of the process (e.g., for testing),
// "gs" for Google Cloud Storage, and "s3" for AWS S3.
// Only the bucket name of gs and s3 URLs is used; see splitDir.
func OpenBucket(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	if !IsBlob(bucketURL) {
		if strings.Contains(bucketURL, "://") {
			return nil, fmt.Errorf("heatloadutil.OpenBucket: invalid provider in %s", bucketURL)
		}
		return dirBucket(os.ExpandEnv(bucketURL))
	}
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("heatloadutil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return dirBucket(filepath.Join(u.Host, u.Path))
	case "mem":
		return memBucket(u.Host), nil
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("heatloadutil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

var memBuckets = struct {
	sync.Mutex
	m map[string]*blob.Bucket
}{m: make(map[string]*blob.Bucket)}

func memBucket(name string) *blob.Bucket {
	memBuckets.Lock()
	defer memBuckets.Unlock()
	b, ok := memBuckets.m[name]
	if !ok {
		b = memblob.OpenBucket(nil)
		memBuckets.m[name] = b
	}
	return b
}

func dirBucket(dir string) (*blob.Bucket, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, fmt.Errorf("heatloadutil: creating output directory: %v", err)
	}
	return fileblob.OpenBucket(dir, nil)
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-west-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

// splitBlob splits a blob path into the URL of its bucket and the key
// of the blob within the bucket.
func splitBlob(path string) (bucketURL, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		dir, file := filepath.Split(filepath.Join(u.Host, u.Path))
		return "file://" + dir, file, nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// splitDir splits a directory path or URL into the URL of its bucket
// and the prefix of the keys within the bucket that are in the directory.
func splitDir(path string) (bucketURL, prefix string, err error) {
	if !IsBlob(path) {
		return path, "", nil
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		return path, "", nil
	}
	if prefix = strings.Trim(u.Path, "/"); prefix != "" {
		prefix += "/"
	}
	return u.Scheme + "://" + u.Host, prefix, nil
}
