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

// Package heatloadutil contains the heatload command-line interface.
package heatloadutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/heatload"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to heatload.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DEM",
			usage: `
              DEM is the path to the digital elevation model, in meters. It can
              be an Esri ASCII grid (.asc) or a netCDF file (.nc), and can be a
              local path, an http(s) URL, or a blob storage URL (gs://, s3://).`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "DEMVariable",
			usage: `
              DEMVariable is the name of the elevation variable in a netCDF DEM.`,
			defaultVal: "elevation",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "DEMCRS",
			usage: `
              DEMCRS is the coordinate reference system of the DEM, as a proj4
              string or WKT. If it is empty, the CRS is read from the .prj file
              alongside an ASCII grid or from the crs attribute of a netCDF file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "Groups",
			usage: `
              Groups is the path to the shapefile of forest management group
              polygons. Its .prj file must be present.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "GroupIDField",
			usage: `
              GroupIDField is the name of the integer group ID attribute in the
              Groups shapefile.`,
			defaultVal: "ID",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "TreatmentField",
			usage: `
              TreatmentField is the name of the attribute in the Groups
              shapefile holding the treatment class (Openings or Reserves).`,
			defaultVal: "Treatment",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "OutputURL",
			usage: `
              OutputURL is the directory or blob storage location (file://,
              gs://, s3://, or mem://) where intermediate results are cached.
              If it is empty, results are not cached.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path where the enriched groups should be
              written. The format is chosen by the extension: .shp, .geojson,
              or .gob. It can include environment variables and can be a blob
              storage URL.`,
			shorthand:  "o",
			defaultVal: "heatload_output.shp",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "TerrainFile",
			usage: `
              TerrainFile is the netCDF (.nc) path where the terrain rasters
              should be written.`,
			defaultVal: "heatload_terrain.nc",
			flagsets:   []*pflag.FlagSet{terrainCmd.Flags()},
		},
		{
			name: "Overwrite",
			usage: `
              Overwrite specifies whether cached results in OutputURL should be
              recalculated even if they are valid.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers is the maximum number of groups to process at once.
              If it is zero, the number of processors is used.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GeometryMode",
			usage: `
              GeometryMode specifies how group areas are calculated: "planar"
              in the DEM projection or "spherical" on the authalic sphere.`,
			defaultVal: "planar",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GeographicCRS",
			usage: `
              GeographicCRS is the geographic coordinate system used to
              calculate latitudes and spherical areas.`,
			defaultVal: heatload.DefaultGeographicCRS,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the log file. If it is empty, the
              log is written next to the output file with a .log extension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), terrainCmd.Flags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel is the minimum level of log messages to write
              (debug, info, warn, or error).`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Map.Variable",
			usage: `
              Map.Variable is the terrain variable to map: elevation, slope,
              aspect, folded_aspect, latitude, or hli.`,
			defaultVal: "hli",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "Map.File",
			usage: `
              Map.File is the path where a PNG map of Map.Variable should be
              written. The run command only draws a map if it is set.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "Map.Width",
			usage: `
              Map.Width is the width of the map in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
		{
			name: "Map.Height",
			usage: `
              Map.Height is the height of the map in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), mapCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("HEATLOAD")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(terrainCmd)
	Root.AddCommand(mapCmd)
	Root.AddCommand(summaryCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("heatload: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "heatload",
	Short: "Heat load index for forest management groups.",
	Long: `heatload calculates the McCune and Keon heat load index from a digital
elevation model and summarizes it, along with slope, aspect, latitude, and
orientation, for each polygon in a set of forest management groups.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'HEATLOAD_var' where 'var' is the
name of the variable to be set, with any '.' replaced by '_'. Many configuration
variables are additionally allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of heatload.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("heatload v%s\n", heatload.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd calculates heat load attributes for the groups.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Calculate heat load attributes for forest management groups.",
	Long: `run calculates terrain from the DEM, aggregates it to each group polygon,
classifies the groups into heat load quartiles, writes the enriched groups to
OutputFile, and prints a summary table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig(Cfg)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"), ".shp", ".geojson", ".json", ".gob")
		if err != nil {
			return err
		}
		return Run(cmd, RunOptions{
			Config:         cfg,
			LogFile:        checkLogFile(Cfg.GetString("LogFile"), outputFile),
			LogLevel:       Cfg.GetString("LogLevel"),
			DEM:            Cfg.GetString("DEM"),
			DEMVariable:    Cfg.GetString("DEMVariable"),
			DEMCRS:         Cfg.GetString("DEMCRS"),
			Groups:         Cfg.GetString("Groups"),
			GroupIDField:   Cfg.GetString("GroupIDField"),
			TreatmentField: Cfg.GetString("TreatmentField"),
			OutputURL:      os.ExpandEnv(Cfg.GetString("OutputURL")),
			OutputFile:     outputFile,
			Map:            mapOptions(Cfg),
		})
	},
	DisableAutoGenTag: true,
}

// terrainCmd calculates and saves the terrain rasters.
var terrainCmd = &cobra.Command{
	Use:   "terrain",
	Short: "Calculate terrain rasters.",
	Long: `terrain calculates slope, aspect, folded aspect, latitude, and heat load
index rasters from the DEM and writes them, along with the elevation, to a
netCDF file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig(Cfg)
		if err != nil {
			return err
		}
		terrainFile, err := checkOutputFile(Cfg.GetString("TerrainFile"), ".nc")
		if err != nil {
			return err
		}
		return TerrainOnly(cmd, RunOptions{
			Config:      cfg,
			LogFile:     checkLogFile(Cfg.GetString("LogFile"), terrainFile),
			LogLevel:    Cfg.GetString("LogLevel"),
			DEM:         Cfg.GetString("DEM"),
			DEMVariable: Cfg.GetString("DEMVariable"),
			DEMCRS:      Cfg.GetString("DEMCRS"),
			OutputURL:   os.ExpandEnv(Cfg.GetString("OutputURL")),
			OutputFile:  terrainFile,
		})
	},
	DisableAutoGenTag: true,
}

// mapCmd draws a map of a terrain variable.
var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Draw a map of a terrain variable.",
	Long: `map draws a PNG map of the terrain variable Map.Variable with the outlines
of the groups, if Groups is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pipelineConfig(Cfg)
		if err != nil {
			return err
		}
		m := mapOptions(Cfg)
		if m.File, err = checkOutputFile(m.File, ".png"); err != nil {
			return err
		}
		return Map(cmd, RunOptions{
			Config:         cfg,
			LogLevel:       Cfg.GetString("LogLevel"),
			DEM:            Cfg.GetString("DEM"),
			DEMVariable:    Cfg.GetString("DEMVariable"),
			DEMCRS:         Cfg.GetString("DEMCRS"),
			Groups:         Cfg.GetString("Groups"),
			GroupIDField:   Cfg.GetString("GroupIDField"),
			TreatmentField: Cfg.GetString("TreatmentField"),
			OutputURL:      os.ExpandEnv(Cfg.GetString("OutputURL")),
			Map:            m,
		})
	},
	DisableAutoGenTag: true,
}

// summaryCmd prints a summary of previously calculated results.
var summaryCmd = &cobra.Command{
	Use:   "summary results.gob",
	Short: "Summarize heat load results.",
	Long: `summary prints summary statistics for each treatment class in a results
file written by the run command in gob (.gob) format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		groups, err := readResults(context.TODO(), args[0])
		if err != nil {
			return err
		}
		WriteSummary(cmd.OutOrStdout(), groups)
		return nil
	},
	DisableAutoGenTag: true,
}
