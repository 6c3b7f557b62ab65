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
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/heatload"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

// RunOptions holds the settings for the heatload commands.
type RunOptions struct {
	heatload.Config

	// LogFile is the path to the log file. If it is empty, log
	// messages are only written to the command output.
	LogFile  string
	LogLevel string

	DEM, DEMVariable, DEMCRS string

	Groups, GroupIDField, TreatmentField string

	// OutputURL is the cache location. No cache is used if it is empty.
	OutputURL string

	OutputFile string

	Map MapOptions
}

// MapOptions specifies a map to draw.
type MapOptions struct {
	Variable      string
	File          string
	Width, Height float64 // inches
}

// pipelineConfig returns the pipeline configuration specified in cfg.
func pipelineConfig(cfg *viper.Viper) (heatload.Config, error) {
	mode, err := heatload.ParseGeometryMode(cfg.GetString("GeometryMode"))
	if err != nil {
		return heatload.Config{}, err
	}
	workers, err := cast.ToIntE(cfg.Get("Workers"))
	if err != nil {
		return heatload.Config{}, fmt.Errorf("heatloadutil: invalid Workers: %v", err)
	}
	return heatload.Config{
		Overwrite:     cfg.GetBool("Overwrite"),
		Workers:       workers,
		Mode:          mode,
		GeographicCRS: os.ExpandEnv(cfg.GetString("GeographicCRS")),
	}, nil
}

func mapOptions(cfg *viper.Viper) MapOptions {
	return MapOptions{
		Variable: cfg.GetString("Map.Variable"),
		File:     os.ExpandEnv(cfg.GetString("Map.File")),
		Width:    cfg.GetFloat64("Map.Width"),
		Height:   cfg.GetFloat64("Map.Height"),
	}
}

// newLogger returns a logger writing to the command output and, if
// logFile is not empty, to logFile. The returned function closes the
// log file.
func newLogger(cmd *cobra.Command, logFile, level string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	if err := setLogLevel(log, level); err != nil {
		return nil, nil, err
	}
	log.Out = cmd.OutOrStdout()
	if logFile == "" || IsBlob(logFile) {
		return log, func() error { return nil }, nil
	}
	f, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("heatloadutil: problem creating log file: %v", err)
	}
	log.Out = io.MultiWriter(cmd.OutOrStdout(), f)
	return log, f.Close, nil
}

// Run calculates the heat load attributes of the groups in o.Groups,
// writes them to o.OutputFile, prints a summary table to the command
// output, and draws a map if o.Map.File is set.
func Run(cmd *cobra.Command, o RunOptions) error {
	ctx := context.TODO()
	log, closeLog, err := newLogger(cmd, o.LogFile, o.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	log.WithField("version", heatload.Version).Info("starting heatload")

	dem, err := readDEM(ctx, o.DEM, o.DEMVariable, o.DEMCRS)
	if err != nil {
		return err
	}
	groups, err := readGroups(ctx, o.Groups, o.GroupIDField, o.TreatmentField)
	if err != nil {
		return err
	}

	p := &heatload.Pipeline{Config: o.Config, Log: log}
	if o.OutputURL != "" {
		if p.Cache, err = OpenCache(ctx, o.OutputURL, dem, groups, o.Config, log); err != nil {
			return err
		}
	}
	out, err := p.Run(ctx, dem, groups)
	if err != nil {
		return err
	}

	u := &uploader{log: log}
	outputFile, err := u.maybeUpload(o.OutputFile)
	if err != nil {
		return err
	}
	if err := writeGroups(outputFile, out); err != nil {
		return err
	}
	if o.Map.File != "" {
		t, err := p.Terrain(ctx, dem)
		if err != nil {
			return err
		}
		mapFile, err := u.maybeUpload(o.Map.File)
		if err != nil {
			return err
		}
		if err := writeMap(mapFile, t, out, o.Map); err != nil {
			return err
		}
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	log.WithField("file", o.OutputFile).Info("wrote output")
	WriteSummary(cmd.OutOrStdout(), out)
	return nil
}

// TerrainOnly calculates the terrain rasters for o.DEM and writes them to
// o.OutputFile in netCDF format.
func TerrainOnly(cmd *cobra.Command, o RunOptions) error {
	ctx := context.TODO()
	log, closeLog, err := newLogger(cmd, o.LogFile, o.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	dem, err := readDEM(ctx, o.DEM, o.DEMVariable, o.DEMCRS)
	if err != nil {
		return err
	}
	p := &heatload.Pipeline{Config: o.Config, Log: log}
	if o.OutputURL != "" {
		if p.Cache, err = OpenCache(ctx, o.OutputURL, dem, nil, o.Config, log); err != nil {
			return err
		}
	}
	t, err := p.Terrain(ctx, dem)
	if err != nil {
		return err
	}
	u := &uploader{log: log}
	path, err := u.maybeUpload(o.OutputFile)
	if err != nil {
		return err
	}
	if err := writeFile(path, func(f *os.File) error { return heatload.WriteTerrain(f, t) }); err != nil {
		return err
	}
	if err := u.upload(ctx); err != nil {
		return err
	}
	log.WithField("file", o.OutputFile).Info("wrote terrain")
	return nil
}

// Map draws a map of the terrain variable o.Map.Variable, with the
// outlines of the groups in o.Groups if it is set.
func Map(cmd *cobra.Command, o RunOptions) error {
	ctx := context.TODO()
	log, closeLog, err := newLogger(cmd, "", o.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	dem, err := readDEM(ctx, o.DEM, o.DEMVariable, o.DEMCRS)
	if err != nil {
		return err
	}
	var groups *heatload.Collection
	if o.Groups != "" {
		if groups, err = readGroups(ctx, o.Groups, o.GroupIDField, o.TreatmentField); err != nil {
			return err
		}
	}
	p := &heatload.Pipeline{Config: o.Config, Log: log}
	if o.OutputURL != "" {
		if p.Cache, err = OpenCache(ctx, o.OutputURL, dem, groups, o.Config, log); err != nil {
			return err
		}
	}
	t, err := p.Terrain(ctx, dem)
	if err != nil {
		return err
	}
	if groups != nil {
		if groups, err = heatload.Reproject(groups, dem); err != nil {
			return err
		}
	}
	u := &uploader{log: log}
	path, err := u.maybeUpload(o.Map.File)
	if err != nil {
		return err
	}
	if err := writeMap(path, t, groups, o.Map); err != nil {
		return err
	}
	return u.upload(ctx)
}

func writeMap(path string, t *heatload.Terrain, groups *heatload.Collection, o MapOptions) error {
	g, ok := t.Grids()[o.Variable]
	if !ok {
		return fmt.Errorf("heatloadutil: invalid map variable %q", o.Variable)
	}
	return writeFile(path, func(f *os.File) error {
		return DrawMap(f, g, groups, o.Variable, vg.Length(o.Width)*vg.Inch, vg.Length(o.Height)*vg.Inch)
	})
}
