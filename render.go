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

package lidarprof

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// RenderOptions control the appearance of a rendered plot.
type RenderOptions struct {
	// Title is the plot title. If empty, a title is built from the
	// bundle metadata.
	Title string

	// ColorMap is one of the names returned by ColorMaps.
	ColorMap string

	// Min and Max are the color scale limits in plotted units
	// (log10 units when Log is true). NaN selects the data range, and
	// equal limits (as in the zero value) select it for both.
	Min, Max float64

	// Log plots the base-10 logarithm of the values. Non-positive
	// values are left blank.
	Log bool

	// CloudBase overlays cloud base heights when the bundle has them.
	CloudBase bool

	Width, Height vg.Length

	// TimeFormat is the time axis tick label layout.
	TimeFormat string
}

// DefaultRenderOptions returns the options used by the command line
// tool when none are given.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		ColorMap:   "extendedblackbody",
		Min:        math.NaN(),
		Max:        math.NaN(),
		CloudBase:  true,
		Width:      8 * vg.Inch,
		Height:     4 * vg.Inch,
		TimeFormat: "15:04",
	}
}

var colorMaps = map[string]func() palette.ColorMap{
	"blackbody":         moreland.BlackBody,
	"extendedblackbody": moreland.ExtendedBlackBody,
	"kindlmann":         moreland.Kindlmann,
	"extendedkindlmann": moreland.ExtendedKindlmann,
	"bluered":           func() palette.ColorMap { return moreland.SmoothBlueRed() },
}

// ColorMaps returns the names of the available color maps.
func ColorMaps() []string {
	names := make([]string, 0, len(colorMaps))
	for n := range colorMaps {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

const (
	paletteSize      = 255
	colorBarFraction = 0.15
)

// Figure is a rendered time-height plot with its color bar.
type Figure struct {
	Plot     *plot.Plot
	ColorBar *plot.Plot

	Width, Height vg.Length

	heat *plotter.HeatMap
}

// Render plots b as a time-height curtain: time on the x axis, the
// vertical coordinate on the y axis and values as color.
func Render(b *Bundle, o RenderOptions) (*Figure, error) {
	if b == nil {
		return nil, &RenderError{Err: errors.New("nil bundle")}
	}
	if err := b.checkShape(); err != nil {
		return nil, &RenderError{Err: err}
	}
	nt, nz := b.Shape()
	if nt == 0 || nz == 0 {
		return nil, &RenderError{Err: fmt.Errorf("bundle is empty (%d times, %d levels)", nt, nz)}
	}
	if o.Min == o.Max {
		o.Min, o.Max = math.NaN(), math.NaN()
	}
	if o.Min > o.Max {
		return nil, &RenderError{Err: fmt.Errorf("color scale minimum %g is above maximum %g", o.Min, o.Max)}
	}
	name := strings.ToLower(o.ColorMap)
	if name == "" {
		name = DefaultRenderOptions().ColorMap
	}
	newColorMap, ok := colorMaps[name]
	if !ok {
		return nil, &RenderError{Err: fmt.Errorf("unknown color map %q (want one of %s)", o.ColorMap, strings.Join(ColorMaps(), ", "))}
	}
	if o.Width <= 0 {
		o.Width = DefaultRenderOptions().Width
	}
	if o.Height <= 0 {
		o.Height = DefaultRenderOptions().Height
	}
	if o.TimeFormat == "" {
		o.TimeFormat = DefaultRenderOptions().TimeFormat
	}

	g := newProfileGrid(b, o.Log)
	g.min, g.max = colorRange(g.z, o.Min, o.Max)

	cm := newColorMap()
	cm.SetMax(g.max)
	cm.SetMin(g.min)
	pal := cm.Palette(paletteSize)
	colors := pal.Colors()

	h := plotter.NewHeatMap(g, pal)
	h.Underflow = colors[0]
	h.Overflow = colors[len(colors)-1]
	h.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = o.Title
	if p.Title.Text == "" {
		p.Title.Text = defaultTitle(b)
	}
	p.X.Label.Text = "Time (UTC)"
	p.X.Tick.Marker = plot.TimeTicks{Format: o.TimeFormat}
	p.Y.Label.Text = verticalLabel(b)
	p.Add(h)

	if o.CloudBase && b.CloudBase != nil {
		if pts := cloudBasePoints(b, g.x); len(pts) > 0 {
			s, err := plotter.NewScatter(pts)
			if err != nil {
				return nil, &RenderError{Err: err}
			}
			s.GlyphStyle.Color = color.White
			s.GlyphStyle.Shape = draw.CircleGlyph{}
			s.GlyphStyle.Radius = vg.Points(1.5)
			p.Add(s)
			p.Legend.Add("cloud base", s)
			p.Legend.Top = true
		}
	}

	cb := plot.New()
	cb.HideX()
	cb.Y.Label.Text = valueLabel(b, o.Log)
	cb.Add(&plotter.ColorBar{ColorMap: cm, Vertical: true})

	return &Figure{
		Plot:     p,
		ColorBar: cb,
		Width:    o.Width,
		Height:   o.Height,
		heat:     h,
	}, nil
}

// Draw draws the plot on the left of c and the color bar on the right.
func (f *Figure) Draw(c draw.Canvas) {
	w := c.Max.X - c.Min.X
	barWidth := w * colorBarFraction
	f.Plot.Draw(draw.Crop(c, 0, -barWidth, 0, 0))

	var top vg.Length
	if t := f.Plot.Title; t.Text != "" {
		top = t.TextStyle.Rectangle(t.Text).Size().Y + t.Padding
	}
	f.ColorBar.Draw(draw.Crop(c, w-barWidth, 0, 0, -top))
}

func (f *Figure) canvas(format string) (vg.CanvasWriterTo, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if format == "" {
		format = "png"
	}
	c, err := draw.NewFormattedCanvas(f.Width, f.Height, format)
	if err != nil {
		return nil, &RenderError{Err: err}
	}
	f.Draw(draw.New(c))
	return c, nil
}

// WriteTo writes the figure to w as an image in the given format
// ("png", "jpg", "svg", "pdf", "eps", "tif"). An empty format means PNG.
func (f *Figure) WriteTo(w io.Writer, format string) (int64, error) {
	c, err := f.canvas(format)
	if err != nil {
		return 0, err
	}
	n, err := c.WriteTo(w)
	if err != nil {
		return n, &RenderError{Err: err}
	}
	return n, nil
}

// Save writes the figure to path in the format given by its extension,
// or as PNG if it has none.
func (f *Figure) Save(path string) (err error) {
	c, err := f.canvas(filepath.Ext(path))
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return &RenderError{Err: err}
	}
	defer func() {
		if e := w.Close(); e != nil && err == nil {
			err = &RenderError{Err: e}
		}
	}()
	if _, err := c.WriteTo(w); err != nil {
		return &RenderError{Err: err}
	}
	return nil
}

// profileGrid adapts a bundle to plotter.GridXYZ. Rows are ordered by
// increasing vertical coordinate.
type profileGrid struct {
	x, y     []float64
	z        []float64
	nz       int
	flip     bool
	min, max float64
}

func newProfileGrid(b *Bundle, log bool) *profileGrid {
	nt, nz := b.Shape()
	g := &profileGrid{
		x:    make([]float64, nt),
		y:    b.Vertical,
		z:    make([]float64, len(b.Values.Elements)),
		nz:   nz,
		flip: nz > 1 && b.Vertical[nz-1] < b.Vertical[0],
	}
	for i, t := range b.Time {
		g.x[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
	}
	copy(g.z, b.Values.Elements)
	if log {
		for i, v := range g.z {
			if v > 0 {
				g.z[i] = math.Log10(v)
			} else {
				g.z[i] = math.NaN()
			}
		}
	}
	return g
}

func (g *profileGrid) row(r int) int {
	if g.flip {
		return g.nz - 1 - r
	}
	return r
}

func (g *profileGrid) Dims() (c, r int)   { return len(g.x), g.nz }
func (g *profileGrid) X(c int) float64    { return g.x[c] }
func (g *profileGrid) Y(r int) float64    { return g.y[g.row(r)] }
func (g *profileGrid) Z(c, r int) float64 { return g.z[c*g.nz+g.row(r)] }
func (g *profileGrid) Min() float64       { return g.min }
func (g *profileGrid) Max() float64       { return g.max }

// colorRange returns the color scale limits. NaN limits are taken from
// the data. If there is no finite data or the field is constant, the
// range is widened to one unit.
func colorRange(z []float64, min, max float64) (float64, float64) {
	dmin, dmax := finiteRange(z)
	if math.IsNaN(min) {
		min = dmin
	}
	if math.IsNaN(max) {
		max = dmax
	}
	switch {
	case math.IsNaN(min) && math.IsNaN(max):
		return 0, 1
	case math.IsNaN(min):
		return max - 1, max
	case math.IsNaN(max):
		return min, min + 1
	case max <= min:
		return min, min + 1
	}
	return min, max
}

func cloudBasePoints(b *Bundle, x []float64) plotter.XYs {
	layers := len(b.CloudBase.Elements) / len(b.Time)
	var pts plotter.XYs
	for i := range b.Time {
		for j := 0; j < layers; j++ {
			v := b.CloudBase.Elements[i*layers+j]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			pts = append(pts, plotter.XY{X: x[i], Y: v})
		}
	}
	return pts
}

func defaultTitle(b *Bundle) string {
	var parts []string
	for _, k := range []string{MetaInstrument, MetaSite} {
		if v := b.Metadata[k]; v != "" {
			parts = append(parts, v)
		}
	}
	if len(b.Time) > 0 {
		parts = append(parts, b.Time[0].Format("2006-01-02"))
	}
	return strings.Join(parts, " ")
}

func verticalLabel(b *Bundle) string {
	label := "Altitude"
	if b.Metadata[MetaFormat] == FormatCeilometer.String() {
		label = "Range"
	}
	if u := b.Metadata[MetaVerticalUnits]; u != "" {
		label += " (" + u + ")"
	}
	return label
}

func valueLabel(b *Bundle, log bool) string {
	label := b.Metadata[MetaQuantity]
	if label == "" {
		label = "value"
	}
	if u := b.Metadata[MetaUnits]; u != "" {
		label += " (" + u + ")"
	}
	if log {
		label = "log10 " + label
	}
	return label
}
