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
	"math"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/lidarprof/arrayfile"
)

// Format identifies which loader to use for a file.
type Format int

const (
	// FormatAuto tries every loader in turn.
	FormatAuto Format = iota
	FormatCeilometer
	FormatTOLNet
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatCeilometer:
		return "ceilometer"
	case FormatTOLNet:
		return "tolnet"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name as accepted on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "ceilometer", "ceil", "chm15k", "cl51":
		return FormatCeilometer, nil
	case "tolnet", "geoms", "ozone":
		return FormatTOLNet, nil
	}
	return FormatAuto, fmt.Errorf("lidarprof: unknown format %q (want auto, ceilometer or tolnet)", s)
}

// Load loads the file at path using the default variable names.
func Load(path string, f Format) (*Bundle, error) {
	return DefaultNames().Load(path, f)
}

// LoadCeilometer loads a ceilometer file using CeilometerNames.
func LoadCeilometer(path string) (*Bundle, error) {
	return loadCeilometer(path, CeilometerNames)
}

// LoadTOLNet loads a TOLNet file using TOLNetNames.
func LoadTOLNet(path string) (*Bundle, error) {
	return loadTOLNet(path, TOLNetNames)
}

// Load loads the file at path with the loader selected by f. With
// FormatAuto each loader is tried in turn and the first success is
// returned. A *FileAccessError stops the search immediately; if every
// loader fails with a format error, the returned *FileFormatError lists
// each attempt.
func (n NameSet) Load(path string, f Format) (*Bundle, error) {
	loaders := []struct {
		format Format
		load   func() (*Bundle, error)
	}{
		{FormatCeilometer, func() (*Bundle, error) { return loadCeilometer(path, n.Ceilometer) }},
		{FormatTOLNet, func() (*Bundle, error) { return loadTOLNet(path, n.TOLNet) }},
	}
	if f != FormatAuto {
		for _, l := range loaders {
			if l.format == f {
				return l.load()
			}
		}
		return nil, fmt.Errorf("lidarprof: unsupported format %v", f)
	}

	var attempts []string
	for _, l := range loaders {
		b, err := l.load()
		if err == nil {
			return b, nil
		}
		var accessErr *FileAccessError
		if errors.As(err, &accessErr) {
			return nil, err
		}
		attempts = append(attempts, fmt.Sprintf("%v: %v", l.format, err))
	}
	return nil, &FileFormatError{
		Path: path,
		Err:  fmt.Errorf("not a recognized profile file (%s)", strings.Join(attempts, "; ")),
	}
}

// source is an open file being loaded.
type source struct {
	f    arrayfile.File
	path string
}

func openSource(path string) (*source, error) {
	f, err := arrayfile.Open(path)
	if err != nil {
		if errors.Is(err, arrayfile.ErrUnknownFormat) {
			return nil, &FileFormatError{Path: path, Err: err}
		}
		return nil, &FileAccessError{Path: path, Err: err}
	}
	return &source{f: f, path: path}, nil
}

func (s *source) Close() error { return s.f.Close() }

// required reads the first variable in names that exists in the file.
func (s *source) required(names []string) (*arrayfile.Variable, error) {
	v, err := s.optional(names)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, &FileFormatError{
			Path:     s.path,
			Variable: strings.Join(names, "|"),
			Err:      arrayfile.ErrNotFound,
		}
	}
	return v, nil
}

// optional is like required but returns nil if none of the names exist.
func (s *source) optional(names []string) (*arrayfile.Variable, error) {
	for _, name := range names {
		if !s.f.Has(name) {
			continue
		}
		v, err := s.f.Read(name)
		if err != nil {
			return nil, &FileFormatError{Path: s.path, Variable: name, Err: err}
		}
		return v, nil
	}
	return nil, nil
}

func (s *source) formatErr(v *arrayfile.Variable, format string, args ...interface{}) error {
	return &FileFormatError{Path: s.path, Variable: v.Name, Err: fmt.Errorf(format, args...)}
}

// vector returns the values of a variable that has at most one
// dimension longer than 1.
func (s *source) vector(v *arrayfile.Variable) ([]float64, error) {
	long := 0
	for _, d := range v.Data.Shape {
		if d > 1 {
			long++
		}
	}
	if long > 1 {
		return nil, s.formatErr(v, "expected a 1-D array, have shape %v", v.Data.Shape)
	}
	return v.Data.Elements, nil
}

// matrix returns the values of v as a [nt, nz] array. Arrays stored as
// [nz, nt] are transposed when transpose is true and nt != nz.
func (s *source) matrix(v *arrayfile.Variable, nt, nz int, transpose bool) (*sparse.DenseArray, error) {
	shape := v.Data.Shape
	switch {
	case len(shape) == 2 && shape[0] == nt && shape[1] == nz:
		out := sparse.ZerosDense(nt, nz)
		copy(out.Elements, v.Data.Elements)
		return out, nil
	case len(shape) == 2 && transpose && nt != nz && shape[0] == nz && shape[1] == nt:
		out := sparse.ZerosDense(nt, nz)
		for k := 0; k < nz; k++ {
			for i := 0; i < nt; i++ {
				out.Elements[i*nz+k] = v.Data.Elements[k*nt+i]
			}
		}
		return out, nil
	case len(shape) == 1 && (nt == 1 || nz == 1) && shape[0] == nt*nz:
		out := sparse.ZerosDense(nt, nz)
		copy(out.Elements, v.Data.Elements)
		return out, nil
	}
	return nil, s.formatErr(v, "shape %v does not match %d times and %d levels", shape, nt, nz)
}

// netCDF default fill for float variables.
const defaultFill = 9.9692099683868690e+36

// maskFill replaces values equal to any of the fill value attributes
// named in keys, or to the netCDF default fill, with NaN.
func maskFill(vals []float64, attrs arrayfile.Attributes, keys ...string) {
	var fills []float64
	for _, k := range keys {
		if f, ok := attrs.Float(k); ok {
			fills = append(fills, f)
		}
	}
	for i, v := range vals {
		if math.Abs(v) >= defaultFill*0.999 {
			vals[i] = math.NaN()
			continue
		}
		for _, f := range fills {
			if v == f || math.Abs(v-f) <= 1e-6*math.Abs(f) {
				vals[i] = math.NaN()
				break
			}
		}
	}
}

// firstString returns the first of the named attributes that is present
// and not empty.
func firstString(attrs arrayfile.Attributes, keys ...string) string {
	for _, k := range keys {
		if s, ok := attrs.String(k); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// globalMetadata renders every global attribute as text.
func globalMetadata(attrs arrayfile.Attributes) map[string]string {
	md := make(map[string]string, len(attrs)+6)
	for _, k := range attrs.Keys() {
		if s, ok := attrs.String(k); ok {
			md[k] = s
		}
	}
	return md
}

// setIf sets md[key] when value is not empty.
func setIf(md map[string]string, key, value string) {
	if value != "" {
		md[key] = value
	}
}
