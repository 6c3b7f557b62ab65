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
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/heatload"
	"github.com/spatialmodel/heatload/internal/hash"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

// Keys of the cached artifacts within the cache directory.
const (
	terrainKey  = "terrain.nc"
	groupsKey   = "groups.gob"
	manifestKey = "manifest.toml"
)

// Manifest records the inputs that the cached artifacts were calculated
// from. An artifact is only reused if its hash matches the current inputs.
type Manifest struct {
	// Version is the heatload version that wrote the artifacts.
	Version string

	// Terrain is the hash of the inputs to terrain.nc.
	Terrain string

	// Groups is the hash of the inputs to groups.gob.
	Groups string

	Updated time.Time
}

// BlobCache is a heatload.Cache that stores artifacts in blob storage.
type BlobCache struct {
	bucket *blob.Bucket
	prefix string

	terrainHash, groupsHash string

	log logrus.FieldLogger
}

// terrainInputs and groupsInputs are the values that the cached
// artifacts depend on.
type terrainInputs struct {
	DEM           *heatload.Grid
	GeographicCRS string
}

type groupsInputs struct {
	Terrain string
	Groups  *heatload.Collection
	Mode    heatload.GeometryMode
}

// OpenCache opens a cache in the directory or blob storage location
// dirURL for results calculated from dem and groups with the given
// configuration.
func OpenCache(ctx context.Context, dirURL string, dem *heatload.Grid, groups *heatload.Collection, cfg heatload.Config, log logrus.FieldLogger) (*BlobCache, error) {
	bucketURL, prefix, err := splitDir(dirURL)
	if err != nil {
		return nil, fmt.Errorf("heatloadutil: parsing cache location: %v", err)
	}
	bucket, err := OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return NewBlobCache(bucket, prefix, dem, groups, cfg, log), nil
}

// NewBlobCache returns a cache that stores artifacts in bucket, with
// keys beginning with prefix.
func NewBlobCache(bucket *blob.Bucket, prefix string, dem *heatload.Grid, groups *heatload.Collection, cfg heatload.Config, log logrus.FieldLogger) *BlobCache {
	c := &BlobCache{
		bucket: bucket,
		prefix: prefix,
		log:    log,
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	c.terrainHash = hash.Hash(terrainInputs{DEM: dem, GeographicCRS: cfg.GeographicCRS})
	c.groupsHash = hash.Hash(groupsInputs{Terrain: c.terrainHash, Groups: groups, Mode: cfg.Mode})
	return c
}

func (c *BlobCache) manifest(ctx context.Context) (*Manifest, error) {
	b, err := c.bucket.ReadAll(ctx, c.prefix+manifestKey)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return new(Manifest), nil
	} else if err != nil {
		return nil, fmt.Errorf("heatloadutil: reading cache manifest: %v", err)
	}
	m := new(Manifest)
	if _, err := toml.Decode(string(b), m); err != nil {
		return nil, fmt.Errorf("heatloadutil: decoding cache manifest: %v", err)
	}
	return m, nil
}

func (c *BlobCache) updateManifest(ctx context.Context, update func(*Manifest)) error {
	m, err := c.manifest(ctx)
	if err != nil {
		return err
	}
	if m.Version != heatload.Version {
		*m = Manifest{Version: heatload.Version}
	}
	update(m)
	m.Updated = time.Now().UTC()
	b := new(bytes.Buffer)
	if err := toml.NewEncoder(b).Encode(m); err != nil {
		return fmt.Errorf("heatloadutil: encoding cache manifest: %v", err)
	}
	return c.write(ctx, manifestKey, b.Bytes())
}

// valid returns whether the artifact with the given key exists and was
// calculated from the current inputs.
func (c *BlobCache) valid(ctx context.Context, key string, h func(*Manifest) string, want string) (bool, error) {
	m, err := c.manifest(ctx)
	if err != nil {
		return false, err
	}
	if m.Version != heatload.Version || h(m) != want {
		return false, nil
	}
	ok, err := c.bucket.Exists(ctx, c.prefix+key)
	if err != nil {
		return false, fmt.Errorf("heatloadutil: checking for cached %s: %v", key, err)
	}
	return ok, nil
}

// write writes data to key, retrying on failure.
func (c *BlobCache) write(ctx context.Context, key string, data []byte) error {
	return backoff.RetryNotify(
		func() error { return c.bucket.WriteAll(ctx, c.prefix+key, data, nil) },
		backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx),
		func(err error, d time.Duration) {
			c.log.WithError(err).Warnf("retrying cache write of %s in %v", key, d)
		},
	)
}

// Terrain implements heatload.Cache.
func (c *BlobCache) Terrain(ctx context.Context) (*heatload.Terrain, bool, error) {
	ok, err := c.valid(ctx, terrainKey, func(m *Manifest) string { return m.Terrain }, c.terrainHash)
	if err != nil || !ok {
		return nil, false, err
	}
	// netCDF reading requires random access, so copy the file locally.
	f, err := ioutil.TempFile("", "heatload_terrain")
	if err != nil {
		return nil, false, err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	r, err := c.bucket.NewReader(ctx, c.prefix+terrainKey, nil)
	if err != nil {
		return nil, false, fmt.Errorf("heatloadutil: opening cached terrain: %v", err)
	}
	_, err = io.Copy(f, r)
	r.Close()
	if err != nil {
		return nil, false, fmt.Errorf("heatloadutil: reading cached terrain: %v", err)
	}
	t, err := heatload.ReadTerrain(f)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

// PutTerrain implements heatload.Cache.
func (c *BlobCache) PutTerrain(ctx context.Context, t *heatload.Terrain) error {
	f, err := ioutil.TempFile("", "heatload_terrain")
	if err != nil {
		return err
	}
	defer os.Remove(f.Name())
	defer f.Close()
	if err := heatload.WriteTerrain(f, t); err != nil {
		return err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	b, err := ioutil.ReadAll(f)
	if err != nil {
		return err
	}
	if err := c.write(ctx, terrainKey, b); err != nil {
		return fmt.Errorf("heatloadutil: writing cached terrain: %v", err)
	}
	return c.updateManifest(ctx, func(m *Manifest) { m.Terrain = c.terrainHash })
}

// Groups implements heatload.Cache.
func (c *BlobCache) Groups(ctx context.Context) (*heatload.Collection, bool, error) {
	ok, err := c.valid(ctx, groupsKey, func(m *Manifest) string { return m.Groups }, c.groupsHash)
	if err != nil || !ok {
		return nil, false, err
	}
	r, err := c.bucket.NewReader(ctx, c.prefix+groupsKey, nil)
	if err != nil {
		return nil, false, fmt.Errorf("heatloadutil: opening cached groups: %v", err)
	}
	defer r.Close()
	groups, err := heatload.Load(r)
	if err != nil {
		return nil, false, err
	}
	return groups, true, nil
}

// PutGroups implements heatload.Cache.
func (c *BlobCache) PutGroups(ctx context.Context, groups *heatload.Collection) error {
	b := new(bytes.Buffer)
	if err := heatload.Save(b, groups); err != nil {
		return err
	}
	if err := c.write(ctx, groupsKey, b.Bytes()); err != nil {
		return fmt.Errorf("heatloadutil: writing cached groups: %v", err)
	}
	return c.updateManifest(ctx, func(m *Manifest) { m.Groups = c.groupsHash })
}
