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
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/heatload"
)

// checkOutputFile makes sure that the output file is specified, has a
// supported format, and that its directory exists, and expands any
// environment variables.
func checkOutputFile(f string, formats ...string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`heatloadutil: you need to specify an output file configuration variable (for example: OutputFile="output.shp")`)
	}
	f = os.ExpandEnv(f)
	if len(formats) > 0 {
		ext := strings.ToLower(filepath.Ext(f))
		ok := false
		for _, format := range formats {
			if ext == format {
				ok = true
			}
		}
		if !ok {
			return f, fmt.Errorf("heatloadutil: output file '%s' must have one of the extensions %v", f, formats)
		}
	}
	if IsBlob(f) {
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("heatloadutil: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return os.ExpandEnv(logFile)
}

// setLogLevel sets the level of log from a level name.
func setLogLevel(log *logrus.Logger, level string) error {
	l, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("heatloadutil: invalid LogLevel: %v", err)
	}
	log.Level = l
	return nil
}

// readDEM reads the elevation grid from path, which may be an Esri ASCII
// grid (.asc) or a netCDF file (.nc). For ASCII grids the coordinate
// reference system is crs if it is not empty, and otherwise is read from
// the .prj file alongside the grid. For netCDF files, variable is the
// name of the elevation variable.
func readDEM(ctx context.Context, path, variable, crs string) (*heatload.Grid, error) {
	path, err := maybeDownload(ctx, os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	crs = os.ExpandEnv(crs)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asc":
		if crs == "" {
			b, err := ioutil.ReadFile(strings.TrimSuffix(path, filepath.Ext(path)) + ".prj")
			if err != nil {
				return nil, fmt.Errorf("heatloadutil: the DEM has no projection; set DEMCRS or provide a .prj file: %v", err)
			}
			crs = strings.TrimSpace(string(b))
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("heatloadutil: opening DEM: %v", err)
		}
		defer f.Close()
		return heatload.ReadASCIIGrid(f, crs)
	case ".nc":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("heatloadutil: opening DEM: %v", err)
		}
		defer f.Close()
		g, err := heatload.ReadNetCDFGrid(f, variable)
		if err != nil {
			return nil, err
		}
		if crs != "" {
			return regrid(g, crs)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("heatloadutil: DEM file '%s' must be an ASCII grid (.asc) or netCDF (.nc) file", path)
	}
}

// regrid returns a copy of g with its coordinate reference system
// replaced by crs.
func regrid(g *heatload.Grid, crs string) (*heatload.Grid, error) {
	o, err := heatload.NewGrid(g.Nx, g.Ny, g.X0, g.Y0, g.Dx, g.Dy, crs)
	if err != nil {
		return nil, err
	}
	copy(o.Data.Elements, g.Data.Elements)
	return o, nil
}

// readGroups reads the forest management groups from a shapefile.
func readGroups(ctx context.Context, path, idField, treatmentField string) (*heatload.Collection, error) {
	path, err := maybeDownload(ctx, os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	return heatload.ReadGroupShapefile(path, idField, treatmentField)
}

// writeGroups writes groups to path in the format indicated by its
// extension: .shp, .geojson or .json, or .gob.
func writeGroups(path string, groups *heatload.Collection) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return heatload.WriteGroupShapefile(path, groups)
	case ".geojson", ".json":
		return writeFile(path, func(f *os.File) error { return heatload.WriteGeoJSON(f, groups) })
	case ".gob":
		return writeFile(path, func(f *os.File) error { return heatload.Save(f, groups) })
	default:
		return fmt.Errorf("heatloadutil: unsupported output format '%s'", filepath.Ext(path))
	}
}

// readResults reads groups previously written by writeGroups in gob format.
func readResults(ctx context.Context, path string) (*heatload.Collection, error) {
	path, err := maybeDownload(ctx, os.ExpandEnv(path))
	if err != nil {
		return nil, err
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".gob" {
		return nil, fmt.Errorf("heatloadutil: results file '%s' must be a .gob file", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("heatloadutil: opening results: %v", err)
	}
	defer f.Close()
	return heatload.Load(f)
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heatloadutil: creating output file: %v", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
