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

// Package lidarprof loads ceilometer and TOLNet ozone lidar files into a
// common time-height representation and renders them as diagnostic
// curtain plots.
package lidarprof

import (
	"fmt"
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.1.0"

// Bundle is a normalized set of vertical profiles: one profile of Values
// per entry in Time, each sampled at the heights in Vertical.
type Bundle struct {
	// Time holds the UTC timestamp of each profile, strictly increasing.
	Time []time.Time

	// Vertical holds the height or altitude of each level, strictly
	// monotonic, in the units given by Metadata["vertical_units"].
	Vertical []float64

	// Values is indexed [time, vertical]. Missing data are NaN.
	Values *sparse.DenseArray

	// CloudBase optionally holds cloud base heights indexed
	// [time, layer]. It is nil when the file has none.
	CloudBase *sparse.DenseArray

	// Metadata holds file and instrument attributes used for labeling.
	Metadata map[string]string

	// Source is the path the bundle was loaded from.
	Source string
}

// Metadata keys set by the loaders.
const (
	MetaInstrument    = "instrument"
	MetaQuantity      = "quantity"
	MetaUnits         = "units"
	MetaVerticalUnits = "vertical_units"
	MetaSite          = "site"
	MetaFormat        = "format"
)

// NewBundle checks that the arguments form a valid bundle and returns it.
// Invalid input results in a *FileFormatError for source.
func NewBundle(source string, t []time.Time, vertical []float64, values, cloudBase *sparse.DenseArray, metadata map[string]string) (*Bundle, error) {
	b := &Bundle{
		Time:      t,
		Vertical:  vertical,
		Values:    values,
		CloudBase: cloudBase,
		Metadata:  metadata,
		Source:    source,
	}
	if b.Metadata == nil {
		b.Metadata = make(map[string]string)
	}
	if err := b.validate(); err != nil {
		return nil, &FileFormatError{Path: source, Err: err}
	}
	return b, nil
}

// checkShape reports whether Values matches the lengths of Time and
// Vertical.
func (b *Bundle) checkShape() error {
	if b.Values == nil {
		return fmt.Errorf("no values")
	}
	nt, nz := len(b.Time), len(b.Vertical)
	if len(b.Values.Shape) != 2 || b.Values.Shape[0] != nt || b.Values.Shape[1] != nz {
		return fmt.Errorf("values have shape %v but there are %d times and %d levels", b.Values.Shape, nt, nz)
	}
	if len(b.Values.Elements) != nt*nz {
		return fmt.Errorf("values have %d elements, want %d", len(b.Values.Elements), nt*nz)
	}
	if b.CloudBase != nil && (len(b.CloudBase.Shape) == 0 || b.CloudBase.Shape[0] != nt) {
		return fmt.Errorf("cloud base has shape %v but there are %d times", b.CloudBase.Shape, nt)
	}
	return nil
}

func (b *Bundle) validate() error {
	if err := b.checkShape(); err != nil {
		return err
	}
	for i := 1; i < len(b.Time); i++ {
		if !b.Time[i].After(b.Time[i-1]) {
			return fmt.Errorf("time is not strictly increasing at index %d (%v after %v)", i, b.Time[i], b.Time[i-1])
		}
	}
	for _, v := range b.Vertical {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("vertical coordinate contains %v", v)
		}
	}
	if len(b.Vertical) > 1 {
		increasing := b.Vertical[1] > b.Vertical[0]
		for i := 1; i < len(b.Vertical); i++ {
			d := b.Vertical[i] - b.Vertical[i-1]
			if d == 0 || (d > 0) != increasing {
				return fmt.Errorf("vertical coordinate is not strictly monotonic at index %d", i)
			}
		}
	}
	return nil
}

// Shape returns the number of profiles and the number of levels.
func (b *Bundle) Shape() (nt, nz int) { return len(b.Time), len(b.Vertical) }

// Window returns a new bundle holding the profiles with
// start <= t <= end. A zero start or end leaves that side unbounded.
// ErrEmptyWindow is returned if no profiles fall inside the window.
func (b *Bundle) Window(start, end time.Time) (*Bundle, error) {
	var idx []int
	for i, t := range b.Time {
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		idx = append(idx, i)
	}
	if len(idx) == 0 {
		return nil, ErrEmptyWindow
	}

	nz := len(b.Vertical)
	o := &Bundle{
		Time:     make([]time.Time, len(idx)),
		Vertical: append([]float64(nil), b.Vertical...),
		Values:   sparse.ZerosDense(len(idx), nz),
		Metadata: make(map[string]string, len(b.Metadata)),
		Source:   b.Source,
	}
	for k, v := range b.Metadata {
		o.Metadata[k] = v
	}
	var ncb int
	if b.CloudBase != nil {
		ncb = len(b.CloudBase.Elements) / len(b.Time)
		shape := append([]int{len(idx)}, b.CloudBase.Shape[1:]...)
		o.CloudBase = sparse.ZerosDense(shape...)
	}
	for j, i := range idx {
		o.Time[j] = b.Time[i]
		copy(o.Values.Elements[j*nz:(j+1)*nz], b.Values.Elements[i*nz:(i+1)*nz])
		if o.CloudBase != nil {
			copy(o.CloudBase.Elements[j*ncb:(j+1)*ncb], b.CloudBase.Elements[i*ncb:(i+1)*ncb])
		}
	}
	return o, nil
}

// Range returns the minimum and maximum finite values in the bundle.
// Both are NaN if there are none.
func (b *Bundle) Range() (min, max float64) {
	return finiteRange(b.Values.Elements)
}

func finiteRange(vals []float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	if min > max {
		return math.NaN(), math.NaN()
	}
	return min, max
}
