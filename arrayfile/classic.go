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

package arrayfile

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// classicFile reads netCDF classic files.
type classicFile struct {
	f    *os.File
	ff   *cdf.File
	size int64
}

func openClassic(f *os.File) (*classicFile, error) {
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownFormat, f.Name(), err)
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("arrayfile: %w", err)
	}
	return &classicFile{f: f, ff: ff, size: fi.Size()}, nil
}

func (c *classicFile) Format() Format { return Classic }

func (c *classicFile) Variables() []string { return c.ff.Header.Variables() }

func (c *classicFile) Has(name string) bool {
	return c.ff.Header.Lengths(name) != nil
}

func (c *classicFile) Attributes() Attributes { return c.attributes("") }

func (c *classicFile) Close() error { return c.f.Close() }

// Read reads variable name. Record variables are read through the number
// of records implied by the file size.
func (c *classicFile) Read(name string) (*Variable, error) {
	h := c.ff.Header
	l := h.Lengths(name)
	if l == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	dims := make([]int, len(l))
	copy(dims, l)
	if h.IsRecordVariable(name) {
		dims[0] = int(h.NumRecs(c.size))
	}
	n := 1
	for _, d := range dims {
		n *= d
	}

	data := sparse.ZerosDense(dims...)
	if n > 0 {
		start, end := make([]int, len(dims)), make([]int, len(dims))
		for i, d := range dims {
			end[i] = d - 1
		}
		r := c.ff.Reader(name, start, end)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("arrayfile: reading variable %s: %v", name, err)
		}
		vals, err := toFloat64(buf)
		if err != nil {
			return nil, fmt.Errorf("arrayfile: variable %s: %v", name, err)
		}
		copy(data.Elements, vals)
	}
	return &Variable{
		Name:       name,
		Dimensions: h.Dimensions(name),
		Data:       data,
		Attributes: c.attributes(name),
	}, nil
}

// attributes collects the attributes of variable v, or the global
// attributes if v is empty.
func (c *classicFile) attributes(v string) Attributes {
	h := c.ff.Header
	a := make(Attributes)
	for _, name := range h.Attributes(v) {
		switch val := h.GetAttribute(v, name).(type) {
		case string:
			a[name] = val
		default:
			if f, err := toFloat64(val); err == nil {
				a[name] = f
			}
		}
	}
	return a
}
