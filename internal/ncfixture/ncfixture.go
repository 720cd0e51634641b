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

// Package ncfixture writes small netCDF classic files for tests.
package ncfixture

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
)

// Var is a variable to be written. Data must be one of []float64,
// []float32, []int32, []int16 or []uint8 and hold every element of the
// variable in row-major order.
type Var struct {
	Name  string
	Dims  []string
	Data  interface{}
	Attrs map[string]interface{}
}

// Dataset describes a whole file. A dimension of length 0 is the record
// (unlimited) dimension.
type Dataset struct {
	Dims    []string
	Lengths []int
	Attrs   map[string]interface{}
	Vars    []Var
}

// Write writes d to a new file at path.
func Write(path string, d Dataset) error {
	h := cdf.NewHeader(d.Dims, d.Lengths)
	for _, k := range sortedKeys(d.Attrs) {
		h.AddAttribute("", k, d.Attrs[k])
	}
	for _, v := range d.Vars {
		h.AddVariable(v.Name, v.Dims, v.Data)
		for _, k := range sortedKeys(v.Attrs) {
			h.AddAttribute(v.Name, k, v.Attrs[k])
		}
	}
	h.Define()

	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	for _, v := range d.Vars {
		// The writer reports io.EOF once the variable is full.
		if _, err := f.Writer(v.Name, nil, nil).Write(v.Data); err != nil && err != io.EOF {
			return fmt.Errorf("ncfixture: writing variable %s: %v", v.Name, err)
		}
	}
	if err := cdf.UpdateNumRecs(w); err != nil {
		return err
	}
	return w.Close()
}

// Must calls Write and panics on error.
func Must(path string, d Dataset) string {
	if err := Write(path, d); err != nil {
		panic(err)
	}
	return path
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
