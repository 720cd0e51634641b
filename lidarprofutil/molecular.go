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
	"image/color"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/lidarprof/lidar"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// molecularPlot plots the molecular backscatter and attenuated
// backscatter of prof against altitude in km. If binWidth is positive
// both are first averaged into altitude bins.
func molecularPlot(station string, wavelength float64, prof *lidar.Profile, binWidth float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Molecular backscatter at %g nm", wavelength)
	if station != "" {
		p.Title.Text += "\n" + station
	}
	p.X.Label.Text = "Backscatter (m⁻¹ sr⁻¹)"
	p.Y.Label.Text = "Altitude (km)"
	p.Legend.Top = true

	for _, series := range []struct {
		name   string
		values []float64
		dashed bool
	}{
		{name: "β", values: prof.Beta, dashed: true},
		{name: "β·T²", values: prof.BetaTransmission},
	} {
		alt, vals := prof.Altitude, series.values
		if binWidth > 0 {
			var err error
			alt, vals, err = lidar.BinMeans(vals, alt, binWidth)
			if err != nil {
				return nil, err
			}
		}
		xy := make(plotter.XYs, len(vals))
		for i := range vals {
			xy[i].X = vals[i]
			xy[i].Y = alt[i] / 1000
		}
		l, err := plotter.NewLine(xy)
		if err != nil {
			return nil, fmt.Errorf("lidarprof: %s: %v", series.name, err)
		}
		l.Color = color.Black
		if series.dashed {
			l.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		}
		p.Add(l)
		p.Legend.Add(series.name, l)
	}
	return p, nil
}

// savePlot writes p to path at the Plot.Width and Plot.Height sizes.
func savePlot(p *plot.Plot, cfg *viper.Viper, path string) error {
	w, h, err := imageSize(cfg)
	if err != nil {
		return err
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("lidarprof: %v", err)
	}
	return nil
}
