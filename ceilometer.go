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
	"math"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/lidarprof/arrayfile"
)

// loadCeilometer reads time, range, backscatter and, if present, cloud
// base height from a ceilometer file.
func loadCeilometer(path string, names VariableNames) (*Bundle, error) {
	s, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	tv, err := s.required(names.Time)
	if err != nil {
		return nil, err
	}
	zv, err := s.required(names.Vertical)
	if err != nil {
		return nil, err
	}
	bv, err := s.required(names.Values)
	if err != nil {
		return nil, err
	}

	tvals, err := s.vector(tv)
	if err != nil {
		return nil, err
	}
	maskFill(tvals, tv.Attributes, "_FillValue", "missing_value")
	units := firstString(tv.Attributes, "units")
	if units == "" {
		units = lufftTimeUnits
	}
	times, err := decodeTimes(tvals, units)
	if err != nil {
		return nil, s.formatErr(tv, "%v", err)
	}
	vertical, err := s.vector(zv)
	if err != nil {
		return nil, err
	}

	values, err := s.matrix(bv, len(times), len(vertical), false)
	if err != nil {
		return nil, err
	}
	maskFill(values.Elements, bv.Attributes, "_FillValue", "missing_value")

	var cloudBase *sparse.DenseArray
	cv, err := s.optional(names.CloudBase)
	if err != nil {
		return nil, err
	}
	if cv != nil {
		cloudBase, err = cloudBaseArray(s, cv, len(times))
		if err != nil {
			return nil, err
		}
	}

	global := s.f.Attributes()
	md := globalMetadata(global)
	md[MetaInstrument] = "ceilometer"
	setIf(md, MetaInstrument, firstString(global, "device_name", "instrument", "source"))
	md[MetaQuantity] = bv.Name
	setIf(md, MetaQuantity, firstString(bv.Attributes, "long_name", "standard_name"))
	setIf(md, MetaUnits, firstString(bv.Attributes, "units"))
	setIf(md, MetaVerticalUnits, firstString(zv.Attributes, "units"))
	setIf(md, MetaSite, firstString(global, "location", "site", "station", "site_name"))
	md[MetaFormat] = FormatCeilometer.String()

	return NewBundle(path, times, vertical, values, cloudBase, md)
}

// cloudBaseArray returns cloud base heights as a [nt, layers] array.
func cloudBaseArray(s *source, v *arrayfile.Variable, nt int) (*sparse.DenseArray, error) {
	shape := v.Data.Shape
	if len(shape) == 0 || len(shape) > 2 || shape[0] != nt {
		return nil, s.formatErr(v, "shape %v does not match %d times", shape, nt)
	}
	layers := 1
	if len(shape) == 2 {
		layers = shape[1]
	}
	out := sparse.ZerosDense(nt, layers)
	copy(out.Elements, v.Data.Elements)
	maskFill(out.Elements, v.Attributes, "_FillValue", "missing_value")
	for i, x := range out.Elements {
		// Lufft files store "no cloud" as a negative height.
		if x < 0 {
			out.Elements[i] = math.NaN()
		}
	}
	return out, nil
}
