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

package heatload

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Config holds the pipeline settings.
type Config struct {
	// Overwrite specifies whether cached terrain and group results
	// should be recalculated even if they exist.
	Overwrite bool

	// Workers is the maximum number of groups processed concurrently.
	// If it is not positive, the number of processors is used.
	Workers int

	// Mode specifies how group areas are calculated.
	Mode GeometryMode

	// Latitude, if set, overrides the projected latitude calculation.
	Latitude LatitudeFunc

	// GeographicCRS is the geographic coordinate system used for
	// latitudes and spherical areas. DefaultGeographicCRS is used if
	// it is empty.
	GeographicCRS string
}

// Cache stores intermediate and final pipeline results. The ok return
// values report whether a valid cached result exists.
type Cache interface {
	Terrain(ctx context.Context) (t *Terrain, ok bool, err error)
	PutTerrain(ctx context.Context, t *Terrain) error
	Groups(ctx context.Context) (c *Collection, ok bool, err error)
	PutGroups(ctx context.Context, c *Collection) error
}

// Pipeline calculates heat load attributes for groups of polygons.
type Pipeline struct {
	Config

	// Cache, if not nil, is used to reuse results from previous runs.
	Cache Cache

	// Log receives progress messages. logrus.StandardLogger() is used
	// if it is nil.
	Log logrus.FieldLogger
}

func (p *Pipeline) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}

// Run calculates terrain attributes from dem and returns a copy of groups
// enriched with zonal terrain medians, orientation, and heat load
// quartiles. groups is reprojected into the dem coordinate system if
// necessary. Problems with individual groups are recorded in their
// Issues field rather than returned.
func (p *Pipeline) Run(ctx context.Context, dem *Grid, groups *Collection) (*Collection, error) {
	start := time.Now()
	log := p.log()
	if groups == nil || len(groups.Groups) == 0 {
		return nil, ErrEmptyCollection
	}
	if dem == nil {
		return nil, fmt.Errorf("%w: missing elevation grid", ErrGridGeometry)
	}
	out, err := Reproject(groups, dem)
	if err != nil {
		return nil, err
	}

	if !p.Overwrite && p.Cache != nil {
		c, ok, err := p.Cache.Groups(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			log.WithField("groups", len(c.Groups)).Info("using cached group results")
			return c, nil
		}
	}

	lat, err := p.latitude(dem)
	if err != nil {
		return nil, err
	}
	var toGeographic proj.Transformer
	if p.Mode == Spherical {
		toGeographic, err = geographicTransform(dem.SR(), p.GeographicCRS)
		if err != nil {
			return nil, err
		}
	}

	terrain, err := p.terrain(ctx, dem, lat)
	if err != nil {
		return nil, err
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	log.WithFields(logrus.Fields{
		"groups":  len(out.Groups),
		"workers": workers,
		"mode":    p.Mode,
	}).Info("aggregating terrain to groups")
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, g := range out.Groups {
		g := g
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return p.enrich(terrain, g, lat, toGeographic)
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := ClassifyQuartiles(out.Groups); err != nil {
		return nil, err
	}

	if p.Cache != nil {
		if err := p.Cache.PutGroups(ctx, out); err != nil {
			return nil, err
		}
	}
	log.WithFields(logrus.Fields{
		"groups":  len(out.Groups),
		"elapsed": time.Since(start),
	}).Info("finished calculating heat load")
	return out, nil
}

func (p *Pipeline) latitude(dem *Grid) (LatitudeFunc, error) {
	if p.Latitude != nil {
		return p.Latitude, nil
	}
	return ProjectedLatitude(dem.SR(), p.GeographicCRS)
}

// Terrain returns the terrain for dem from the cache, if it is
// available, or calculates it.
func (p *Pipeline) Terrain(ctx context.Context, dem *Grid) (*Terrain, error) {
	if dem == nil {
		return nil, fmt.Errorf("%w: missing elevation grid", ErrGridGeometry)
	}
	lat, err := p.latitude(dem)
	if err != nil {
		return nil, err
	}
	return p.terrain(ctx, dem, lat)
}

// terrain returns cached terrain for dem if it is available and
// calculates it otherwise.
func (p *Pipeline) terrain(ctx context.Context, dem *Grid, lat LatitudeFunc) (*Terrain, error) {
	log := p.log()
	if !p.Overwrite && p.Cache != nil {
		t, ok, err := p.Cache.Terrain(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			if !t.Elevation.SameGeometry(dem) {
				return nil, fmt.Errorf("%w: cached terrain does not match the elevation grid", ErrGridGeometry)
			}
			log.Info("using cached terrain")
			return t, nil
		}
	}
	log.WithFields(logrus.Fields{
		"nx": dem.Nx,
		"ny": dem.Ny,
		"dx": dem.Dx,
		"dy": dem.Dy,
	}).Info("calculating terrain")
	t, err := NewTerrain(dem, lat)
	if err != nil {
		return nil, err
	}
	if p.Cache != nil {
		if err := p.Cache.PutTerrain(ctx, t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// enrich calculates the area, zonal terrain attributes, and orientation
// of g.
func (p *Pipeline) enrich(t *Terrain, g *Group, lat LatitudeFunc, toGeographic proj.Transformer) error {
	log := p.log().WithField("id", g.ID)
	g.Issues = 0
	g.Topo = TopoAttributes{}
	g.Orientation = OrientationAttributes{}
	g.GroupQuartile, g.OverallQuartile = QuartileUndefined, QuartileUndefined

	if !validGeometry(g.Geom) {
		g.Issues |= IssueInvalidGeometry
	}
	if g.Geom != nil {
		a, err := Area(g.Geom, p.Mode, toGeographic)
		if err != nil {
			g.Issues |= IssueInvalidGeometry
			log.WithError(err).Warn("calculating area")
		}
		g.Area = a
	}

	var issues Issue
	if g.Geom != nil {
		g.Topo, issues = t.Aggregate(g.Geom, lat)
		g.Issues |= issues
	} else {
		g.Issues |= IssueNoCoverage
	}

	o, err := Orient(g.Geom)
	switch {
	case errors.Is(err, ErrDegenerateBounds):
		g.Issues |= IssueDegenerateBounds
	case err != nil:
		return fmt.Errorf("heatload: group %d: %w", g.ID, err)
	}
	g.Orientation = o

	if g.Issues != 0 {
		log.WithField("issues", g.Issues.String()).Warn("problem processing group")
	}
	return nil
}

// Reproject returns a copy of groups in the coordinate system of dem.
// Both must have a coordinate reference system.
func Reproject(groups *Collection, dem *Grid) (*Collection, error) {
	demSR := dem.SR()
	if demSR == nil {
		return nil, fmt.Errorf("%w: elevation grid has no spatial reference", ErrCRSMismatch)
	}
	if groups.CRS == "" {
		return nil, fmt.Errorf("%w: groups have no spatial reference", ErrCRSMismatch)
	}
	out := groups.clone()
	if groups.CRS == dem.CRS {
		return out, nil
	}
	groupSR, err := groups.SR()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCRSMismatch, err)
	}
	out.CRS = dem.CRS
	if groupSR.Equal(demSR, 3) {
		return out, nil
	}
	trans, err := groupSR.NewTransform(demSR)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCRSMismatch, err)
	}
	for _, g := range out.Groups {
		if g.Geom == nil {
			continue
		}
		gg, err := g.Geom.Transform(trans)
		if err != nil {
			return nil, fmt.Errorf("%w: reprojecting group %d: %v", ErrCRSMismatch, g.ID, err)
		}
		g.Geom = gg.(geom.Polygonal)
	}
	return out, nil
}

func geographicTransform(src *proj.SR, geographic string) (proj.Transformer, error) {
	if geographic == "" {
		geographic = DefaultGeographicCRS
	}
	dst, err := proj.Parse(geographic)
	if err != nil {
		return nil, fmt.Errorf("heatload: parsing geographic spatial reference: %v", err)
	}
	t, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("heatload: creating geographic transform: %v", err)
	}
	return t, nil
}
