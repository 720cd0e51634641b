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

package lidarprofutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/lidarprof"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

const timeLayout = "2006-01-02 15:04:05 MST"

// nameSet returns the default variable names, overridden by the TOML file
// given by the Names option if there is one.
func nameSet(cfg *viper.Viper) (lidarprof.NameSet, error) {
	n := lidarprof.DefaultNames()
	path := cfg.GetString("Names")
	if path == "" {
		return n, nil
	}
	if _, err := toml.DecodeFile(os.ExpandEnv(path), &n); err != nil {
		return n, fmt.Errorf("lidarprof: reading variable names: %v", err)
	}
	return n, nil
}

// window restricts b to the start and end options.
func window(b *lidarprof.Bundle, cfg *viper.Viper) (*lidarprof.Bundle, error) {
	start, err := configTime(cfg, "start")
	if err != nil {
		return nil, err
	}
	end, err := configTime(cfg, "end")
	if err != nil {
		return nil, err
	}
	if start.IsZero() && end.IsZero() {
		return b, nil
	}
	return b.Window(start, end)
}

func configTime(cfg *viper.Viper, name string) (time.Time, error) {
	v := cfg.Get(name)
	if s, ok := v.(string); ok && s == "" {
		return time.Time{}, nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("lidarprof: invalid %s time: %v", name, err)
	}
	return t.UTC(), nil
}

// renderOptions builds the plot settings from the Plot.* options.
func renderOptions(cfg *viper.Viper) (lidarprof.RenderOptions, error) {
	o := lidarprof.DefaultRenderOptions()
	o.Title = cfg.GetString("Plot.Title")
	o.ColorMap = cfg.GetString("Plot.ColorMap")
	o.Log = cfg.GetBool("Plot.Log")
	o.CloudBase = cfg.GetBool("Plot.CloudBase")
	if f := cfg.GetString("Plot.TimeFormat"); f != "" {
		o.TimeFormat = f
	}
	var err error
	if o.Min, err = cast.ToFloat64E(cfg.Get("Plot.Min")); err != nil {
		return o, fmt.Errorf("lidarprof: Plot.Min: %v", err)
	}
	if o.Max, err = cast.ToFloat64E(cfg.Get("Plot.Max")); err != nil {
		return o, fmt.Errorf("lidarprof: Plot.Max: %v", err)
	}
	o.Width, o.Height, err = imageSize(cfg)
	return o, err
}

func imageSize(cfg *viper.Viper) (w, h vg.Length, err error) {
	wi, err := cast.ToFloat64E(cfg.Get("Plot.Width"))
	if err != nil {
		return 0, 0, fmt.Errorf("lidarprof: Plot.Width: %v", err)
	}
	hi, err := cast.ToFloat64E(cfg.Get("Plot.Height"))
	if err != nil {
		return 0, 0, fmt.Errorf("lidarprof: Plot.Height: %v", err)
	}
	if wi <= 0 || hi <= 0 {
		return 0, 0, fmt.Errorf("lidarprof: invalid image size %gx%g in", wi, hi)
	}
	return vg.Length(wi) * vg.Inch, vg.Length(hi) * vg.Inch, nil
}

func workerCount(cfg *viper.Viper) (int, error) {
	n, err := cast.ToIntE(cfg.Get("workers"))
	if err != nil {
		return 0, fmt.Errorf("lidarprof: workers: %v", err)
	}
	if n < 1 {
		n = runtime.NumCPU()
	}
	return n, nil
}

// expandGlobs expands environment variables and glob patterns in files.
// Patterns that match nothing are kept so that loading reports them.
func expandGlobs(files []string) ([]string, error) {
	var o []string
	for _, f := range files {
		f = os.ExpandEnv(f)
		m, err := filepath.Glob(f)
		if err != nil {
			return nil, fmt.Errorf("lidarprof: bad file pattern %q: %v", f, err)
		}
		if len(m) == 0 {
			o = append(o, f)
			continue
		}
		o = append(o, m...)
	}
	return o, nil
}

// outputPath returns out if it is set. Otherwise it replaces the extension
// of input with ext, placing the file in dir if dir is not empty.
func outputPath(input, out, dir, ext string) string {
	if out != "" {
		return os.ExpandEnv(out)
	}
	base := strings.TrimSuffix(input, filepath.Ext(input)) + "." + strings.TrimPrefix(ext, ".")
	if dir != "" {
		return filepath.Join(dir, filepath.Base(base))
	}
	return base
}
