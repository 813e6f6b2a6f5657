/*
Copyright © 2019 the InMAP authors.
This file is part of regrid.

regrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regrid.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package regridutil wires the regridding pipeline to its command-line
// and configuration-file interface.
package regridutil

import (
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/regrid"
	"github.com/spf13/cast"
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
	// Options are the configuration options available to regrid.
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
			name: "input-dir",
			usage: `
              input-dir is the directory containing the required input files;
              e.g., 'Downloads/'. The directory should contain both the model
              and the satellite input files.`,
			shorthand:  "i",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "output-file",
			usage: `
              output-file is the path to store the output file;
              e.g., 'Downloads/regridded_cmip.nc'.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "model-file",
			usage: `
              model-file is the name of the NetCDF file within input-dir
              holding the modeled concentrations to be regridded.`,
			defaultVal: "cmip_annual_mean_output.nc",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "satellite-file",
			usage: `
              satellite-file is the name of the NetCDF file within input-dir
              holding the satellite-derived dataset that supplies the
              target grid.`,
			defaultVal: "vand_annual_mean_output.nc",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "model-var",
			usage: `
              model-var is the name of the variable to be regridded in the
              model file.`,
			defaultVal: "PM25_CMIP",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "satellite-var",
			usage: `
              satellite-var is the name of the variable in the satellite file
              whose grid and data mask are used for the output.`,
			defaultVal: "PM25_VAND",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "kernel",
			usage: `
              kernel chooses the interpolation method: 'bilinear' (linear
              interpolation on the source grid; targets outside the source
              extent become NaN), 'nearest' (nearest source grid point;
              never NaN), or 'idw' (inverse-distance-squared weighting over
              the nearest source points).`,
			defaultVal: "bilinear",
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "idw-neighbors",
			usage: `
              idw-neighbors is the number of source grid points used by the
              'idw' kernel.`,
			defaultVal: 4,
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
		{
			name: "no-mask",
			usage: `
              no-mask disables transferring the satellite dataset's
              missing-data mask onto the regridded output.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("REGRID")

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
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	Root.AddCommand(versionCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("regrid: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "regrid",
	Short: "Resample modeled PM2.5 concentrations onto a satellite grid.",
	Long: `regrid interpolates a modeled PM2.5 concentration field onto the
latitude-longitude grid of a satellite-derived dataset and writes the
result to a single NetCDF file.

Configuration can be changed by using a configuration file (and providing
the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'REGRID_var'
where 'var' is the name of the variable to be set.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
	RunE: func(cmd *cobra.Command, args []string) error {
		kernel, err := cast.ToStringE(Cfg.Get("kernel"))
		if err != nil {
			return fmt.Errorf("regrid: reading 'kernel': %v", err)
		}
		return Run(
			os.ExpandEnv(Cfg.GetString("input-dir")),
			os.ExpandEnv(Cfg.GetString("output-file")),
			Cfg.GetString("model-file"),
			Cfg.GetString("satellite-file"),
			Cfg.GetString("model-var"),
			Cfg.GetString("satellite-var"),
			kernel,
			Cfg.GetInt("idw-neighbors"),
			!Cfg.GetBool("no-mask"),
		)
	},
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of regrid.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("regrid v%s\n", regrid.Version)
	},
	DisableAutoGenTag: true,
}
