/*
Copyright © 2024 the lidarprof authors.
This file is part of lidarprof.

lidarprof is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

lidarprof is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with lidarprof.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package lidarprofutil contains the command-line interface of lidarprof.
package lidarprofutil

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/lidarprof"
	"github.com/spatialmodel/lidarprof/lidar"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives progress and error messages.
var Log = logrus.StandardLogger()

type option struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

var options []option

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(plotCmd)
	Root.AddCommand(batchCmd)
	Root.AddCommand(infoCmd)
	Root.AddCommand(molecularCmd)

	loaders := []*pflag.FlagSet{plotCmd.Flags(), batchCmd.Flags(), infoCmd.Flags()}
	renderers := []*pflag.FlagSet{plotCmd.Flags(), batchCmd.Flags()}
	windowed := []*pflag.FlagSet{plotCmd.Flags(), infoCmd.Flags()}

	// options are the configuration options available to lidarprof.
	options = []option{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel sets the verbosity of log messages: one of
              panic, fatal, error, warn, info, debug or trace.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Names",
			usage: `
              Names is the path to a TOML file overriding the variable
              names searched for in input files, with [ceilometer] and
              [tolnet] tables holding time, vertical, values and cloud_base
              lists. Names not given keep their defaults.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "format",
			usage: `
              format is the input file type: auto, ceilometer or tolnet.
              auto tries the ceilometer layout and then the TOLNet layout.`,
			shorthand:  "f",
			defaultVal: "auto",
			flagsets:   loaders,
		},
		{
			name: "output",
			usage: `
              output is the image file to write. The format is taken from
              the extension (png, jpg, tif, svg, pdf or eps). If empty, a
              PNG is written next to the input file.`,
			shorthand:  "o",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), molecularCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory batch images are written to. If
              empty, each image is written next to its input file.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "OutputFormat",
			usage: `
              OutputFormat is the image file extension used for batch output.`,
			defaultVal: "png",
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "workers",
			usage: `
              workers is the maximum number of files processed at once.
              0 means one per CPU.`,
			shorthand:  "w",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{batchCmd.Flags()},
		},
		{
			name: "start",
			usage: `
              start is the beginning of the time window to plot, e.g.
              2020-06-01T12:00:00Z. Empty means the first profile.`,
			defaultVal: "",
			flagsets:   windowed,
		},
		{
			name: "end",
			usage: `
              end is the end of the time window to plot (inclusive).
              Empty means the last profile.`,
			defaultVal: "",
			flagsets:   windowed,
		},
		{
			name: "show",
			usage: `
              show opens the written image with the default viewer.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{plotCmd.Flags(), molecularCmd.Flags()},
		},
		{
			name: "Plot.Title",
			usage: `
              Plot.Title is the plot title. If empty, it is built from the
              file metadata.`,
			defaultVal: "",
			flagsets:   renderers,
		},
		{
			name: "Plot.ColorMap",
			usage: `
              Plot.ColorMap is the color palette: ` + strings.Join(lidarprof.ColorMaps(), ", ") + `.`,
			defaultVal: lidarprof.DefaultRenderOptions().ColorMap,
			flagsets:   renderers,
		},
		{
			name: "Plot.Min",
			usage: `
              Plot.Min is the lower color scale limit. NaN uses the data
              minimum.`,
			defaultVal: math.NaN(),
			flagsets:   renderers,
		},
		{
			name: "Plot.Max",
			usage: `
              Plot.Max is the upper color scale limit. NaN uses the data
              maximum.`,
			defaultVal: math.NaN(),
			flagsets:   renderers,
		},
		{
			name: "Plot.Log",
			usage: `
              Plot.Log plots the base-10 logarithm of the values.`,
			defaultVal: false,
			flagsets:   renderers,
		},
		{
			name: "Plot.CloudBase",
			usage: `
              Plot.CloudBase overlays cloud base heights when the file
              has them.`,
			defaultVal: true,
			flagsets:   renderers,
		},
		{
			name: "Plot.Width",
			usage: `
              Plot.Width is the image width in inches.`,
			defaultVal: 8.0,
			flagsets:   append(renderers, molecularCmd.Flags()),
		},
		{
			name: "Plot.Height",
			usage: `
              Plot.Height is the image height in inches.`,
			defaultVal: 4.0,
			flagsets:   append(renderers, molecularCmd.Flags()),
		},
		{
			name: "Plot.TimeFormat",
			usage: `
              Plot.TimeFormat is the Go time layout of the time axis labels.`,
			defaultVal: lidarprof.DefaultRenderOptions().TimeFormat,
			flagsets:   renderers,
		},
		{
			name: "Molecular.Wavelength",
			usage: `
              Molecular.Wavelength is the lidar wavelength in nm, between
              200 and 1064.`,
			defaultVal: 1064.0,
			flagsets:   []*pflag.FlagSet{molecularCmd.Flags()},
		},
		{
			name: "Molecular.BinWidth",
			usage: `
              Molecular.BinWidth averages the profile into altitude bins of
              this width in meters. 0 plots every sounding level.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{molecularCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("LIDARPROF")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				Cfg.BindPFlag(option.name, set.Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the log level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("lidarprof: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("lidarprof: %v", err)
	}
	Log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "lidarprof",
	Short: "Time-height plots of lidar and ceilometer profiles.",
	Long: `lidarprof reads ceilometer backscatter and TOLNet ozone lidar files
(netCDF classic or netCDF-4/HDF5) and draws time-height curtain plots.
Use the subcommands specified below to access the functionality.

Configuration can be changed by using a TOML configuration file (and providing
the path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'LIDARPROF_var' where 'var' is
the name of the variable to be set, with '.' replaced by '_'.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of lidarprof.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "lidarprof v%s\n", lidarprof.Version)
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot file",
	Short: "Plot one profile file",
	Long: `plot loads a ceilometer or TOLNet file and writes a time-height
image of it, with a color bar and, for ceilometers, the cloud base.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := nameSet(Cfg)
		if err != nil {
			return err
		}
		format, err := lidarprof.ParseFormat(Cfg.GetString("format"))
		if err != nil {
			return err
		}
		b, err := names.Load(args[0], format)
		if err != nil {
			return err
		}
		if b, err = window(b, Cfg); err != nil {
			return err
		}
		o, err := renderOptions(Cfg)
		if err != nil {
			return err
		}
		fig, err := lidarprof.Render(b, o)
		if err != nil {
			return err
		}
		out := outputPath(args[0], Cfg.GetString("output"), "", "png")
		if err := fig.Save(out); err != nil {
			return err
		}
		nt, nz := b.Shape()
		Log.WithFields(logrus.Fields{
			"file":   args[0],
			"shape":  fmt.Sprintf("%dx%d", nt, nz),
			"output": out,
		}).Info("plot written")
		return show(out)
	},
	DisableAutoGenTag: true,
}

var batchCmd = &cobra.Command{
	Use:   "batch files...",
	Short: "Plot many profile files concurrently",
	Long: `batch plots every file given. Arguments may be glob patterns.
A file that fails does not stop the others; the command fails if any file
failed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := nameSet(Cfg)
		if err != nil {
			return err
		}
		format, err := lidarprof.ParseFormat(Cfg.GetString("format"))
		if err != nil {
			return err
		}
		o, err := renderOptions(Cfg)
		if err != nil {
			return err
		}
		files, err := expandGlobs(args)
		if err != nil {
			return err
		}
		workers, err := workerCount(Cfg)
		if err != nil {
			return err
		}
		dir := os.ExpandEnv(Cfg.GetString("OutputDir"))
		if dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("lidarprof: %v", err)
			}
		}
		ext := Cfg.GetString("OutputFormat")
		jobs := make([]lidarprof.Job, len(files))
		for i, f := range files {
			jobs[i] = lidarprof.Job{
				Path:    f,
				Format:  format,
				Output:  outputPath(f, "", dir, ext),
				Options: o,
			}
		}
		b := &lidarprof.Batch{Names: names, Workers: workers, Log: Log}
		results := b.Run(cmd.Context(), jobs)
		var failed int
		for _, r := range results {
			if r.Err != nil {
				failed++
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", r.Job.Path, r.Err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok   %s -> %s (%dx%d)\n", r.Job.Path, r.Job.Output, r.Profiles, r.Levels)
		}
		if failed > 0 {
			return fmt.Errorf("lidarprof: %d of %d files failed", failed, len(results))
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var infoCmd = &cobra.Command{
	Use:   "info file",
	Short: "Describe one profile file",
	Long: `info loads a ceilometer or TOLNet file and prints its shape, time
span, value range and metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := nameSet(Cfg)
		if err != nil {
			return err
		}
		format, err := lidarprof.ParseFormat(Cfg.GetString("format"))
		if err != nil {
			return err
		}
		b, err := names.Load(args[0], format)
		if err != nil {
			return err
		}
		if b, err = window(b, Cfg); err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		nt, nz := b.Shape()
		min, max := b.Range()
		fmt.Fprintf(w, "file:     %s\n", b.Source)
		fmt.Fprintf(w, "profiles: %d\n", nt)
		fmt.Fprintf(w, "levels:   %d (%g to %g)\n", nz, b.Vertical[0], b.Vertical[nz-1])
		fmt.Fprintf(w, "time:     %s to %s\n", b.Time[0].Format(timeLayout), b.Time[nt-1].Format(timeLayout))
		fmt.Fprintf(w, "values:   %g to %g\n", min, max)
		if b.CloudBase != nil {
			fmt.Fprintf(w, "cloud base layers: %d\n", len(b.CloudBase.Elements)/nt)
		}
		keys := make([]string, 0, len(b.Metadata))
		for k := range b.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "%s: %s\n", k, b.Metadata[k])
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var molecularCmd = &cobra.Command{
	Use:   "molecular sounding",
	Short: "Plot the molecular backscatter profile from a sounding",
	Long: `molecular reads a University of Wyoming text sounding and plots
the Rayleigh backscatter coefficient and the attenuated molecular
backscatter (backscatter times two-way transmission) against altitude.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("lidarprof: %v", err)
		}
		defer f.Close()
		s, err := lidar.ReadSounding(f)
		if err != nil {
			return err
		}
		wavelength := Cfg.GetFloat64("Molecular.Wavelength")
		prof, err := s.Profile(wavelength)
		if err != nil {
			return err
		}
		p, err := molecularPlot(s.Station, wavelength, prof, Cfg.GetFloat64("Molecular.BinWidth"))
		if err != nil {
			return err
		}
		out := outputPath(args[0], Cfg.GetString("output"), "", "png")
		if err := savePlot(p, Cfg, out); err != nil {
			return err
		}
		Log.WithFields(logrus.Fields{
			"file":       args[0],
			"levels":     s.Len(),
			"wavelength": wavelength,
			"output":     out,
		}).Info("molecular profile written")
		return show(out)
	},
	DisableAutoGenTag: true,
}

// show opens path in the default viewer if requested.
func show(path string) error {
	if !Cfg.GetBool("show") {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return open.Run(abs)
}
