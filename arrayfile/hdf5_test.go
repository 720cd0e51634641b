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
	"errors"
	"sort"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/kr/pretty"
)

type attrMap struct {
	api.AttributeMap
	m map[string]interface{}
}

func (a attrMap) Keys() []string {
	keys := make([]string, 0, len(a.m))
	for k := range a.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a attrMap) Get(key string) (interface{}, bool) {
	v, ok := a.m[key]
	return v, ok
}

// memGroup is an in-memory api.Group.
type memGroup struct {
	api.Group
	attrs  map[string]interface{}
	vars   map[string]*api.Variable
	groups map[string]*memGroup
	closed int
}

func (g *memGroup) Close() { g.closed++ }

func (g *memGroup) Attributes() api.AttributeMap { return attrMap{m: g.attrs} }

func (g *memGroup) ListVariables() []string {
	var names []string
	for k := range g.vars {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (g *memGroup) GetVariable(name string) (*api.Variable, error) {
	v, ok := g.vars[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}

func (g *memGroup) GetGroup(name string) (api.Group, error) {
	sub, ok := g.groups[name]
	if !ok {
		return nil, errors.New("no such group")
	}
	return sub, nil
}

func newTestGroup() *memGroup {
	data := &memGroup{
		vars: map[string]*api.Variable{
			"O3": {
				Values:     [][]float32{{1, 2}, {3, 4}, {5, 6}},
				Dimensions: []string{"ALTITUDE", "DATETIME"},
				Attributes: attrMap{m: map[string]interface{}{
					"VAR_UNITS":      "ppmv",
					"VAR_FILL_VALUE": float32(-999),
				}},
			},
		},
	}
	return &memGroup{
		attrs: map[string]interface{}{
			"DATA_LOCATION": "HAMPTON.VA",
			"PI_NAME":       []string{"Doe", "Jane"},
			"DATA_VERSION":  []int32{2},
		},
		vars: map[string]*api.Variable{
			"DATETIME": {Values: []float64{7000.5, 7000.75}, Dimensions: []string{"DATETIME"}},
			"ALTITUDE": {Values: []int16{100, 200, 300}, Dimensions: []string{"ALTITUDE"}},
			"NAME":     {Values: "a string", Dimensions: nil},
		},
		groups: map[string]*memGroup{"data": data},
	}
}

func TestGroupFile(t *testing.T) {
	g := newTestGroup()
	f := &groupFile{g: g}

	if f.Format() != HDF5 {
		t.Errorf("format: have %v", f.Format())
	}
	if diff := pretty.Diff(f.Variables(), []string{"ALTITUDE", "DATETIME", "NAME"}); len(diff) != 0 {
		t.Error(diff)
	}

	alt, err := f.Read("ALTITUDE")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(alt.Data.Elements, []float64{100, 200, 300}); len(diff) != 0 {
		t.Error(diff)
	}

	if !f.Has("data/O3") || !f.Has("/data/O3") {
		t.Error("data/O3 should be found")
	}
	if f.Has("other/O3") {
		t.Error("other/O3 should not be found")
	}
	o3, err := f.Read("data/O3")
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(o3.Data.Shape, []int{3, 2}); len(diff) != 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(o3.Data.Elements, []float64{1, 2, 3, 4, 5, 6}); len(diff) != 0 {
		t.Error(diff)
	}
	if fill, ok := o3.Attributes.Float("VAR_FILL_VALUE"); !ok || fill != -999 {
		t.Errorf("fill: have %v, %v", fill, ok)
	}
	if g.groups["data"].closed == 0 {
		t.Error("sub-group was not released")
	}

	if _, err := f.Read("NAME"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("string variable: have %v, want a conversion error", err)
	}
	if _, err := f.Read("data/NO2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("have %v, want ErrNotFound", err)
	}

	want := Attributes{
		"DATA_LOCATION": "HAMPTON.VA",
		"PI_NAME":       "Doe Jane",
		"DATA_VERSION":  []float64{2},
	}
	if diff := pretty.Diff(f.Attributes(), want); len(diff) != 0 {
		t.Error(diff)
	}

	f.Close()
	if g.closed != 1 {
		t.Errorf("root group closed %d times", g.closed)
	}
}

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		in    interface{}
		vals  []float64
		shape []int
		err   bool
	}{
		{name: "scalar", in: float32(2.5), vals: []float64{2.5}, shape: []int{1}},
		{name: "int64 vector", in: []int64{1, 2}, vals: []float64{1, 2}, shape: []int{2}},
		{name: "uint16 matrix", in: [][]uint16{{1, 2, 3}, {4, 5, 6}}, vals: []float64{1, 2, 3, 4, 5, 6}, shape: []int{2, 3}},
		{name: "3d", in: [][][]int8{{{1}, {2}}, {{3}, {4}}}, vals: []float64{1, 2, 3, 4}, shape: []int{2, 2, 1}},
		{name: "ragged", in: [][]float64{{1, 2}, {3}}, err: true},
		{name: "string", in: "abc", err: true},
		{name: "nil", in: nil, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			vals, shape, err := flatten(test.in)
			if test.err {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(vals, test.vals); len(diff) != 0 {
				t.Error(diff)
			}
			if diff := pretty.Diff(shape, test.shape); len(diff) != 0 {
				t.Error(diff)
			}
		})
	}
}

// testdata/testtypesbe.nc is a big-endian netCDF-4 file holding one
// scalar, one 1-element and one 2x2 variable per numeric type.
func TestOpenHDF5File(t *testing.T) {
	f, err := Open("testdata/testtypesbe.nc")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if f.Format() != HDF5 {
		t.Errorf("format: have %v, want %v", f.Format(), HDF5)
	}
	if !f.Has("f64x2") || f.Has("missing") {
		t.Errorf("Has: unexpected result for %v", f.Variables())
	}

	for _, test := range []struct {
		name  string
		shape []int
		want  []float64
	}{
		{name: "f64x2", shape: []int{2, 2}, want: []float64{-10.1, 10.1, -20.2, 20.2}},
		{name: "i16x1", shape: []int{1}, want: []float64{-10000}},
		{name: "i8x2", shape: []int{2, 2}, want: []float64{-10, 10, -20, 20}},
		{name: "ui32x2", shape: []int{2, 2}, want: []float64{10000000, 20000000, 20000000, 30000000}},
		{name: "i64", shape: []int{1}, want: []float64{-10000000000}},
		{name: "ui64x2", shape: []int{2, 2}, want: []float64{10000000000, 20000000000, 20000000000, 30000000000}},
	} {
		t.Run(test.name, func(t *testing.T) {
			v, err := f.Read(test.name)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(v.Data.Shape, test.shape); len(diff) != 0 {
				t.Errorf("shape: %v", diff)
			}
			if diff := pretty.Diff(v.Data.Elements, test.want); len(diff) != 0 {
				t.Errorf("values: %v", diff)
			}
		})
	}

	v, err := f.Read("f32x2")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-10.1, 10.1, -20.2, 20.2}
	for i, x := range v.Data.Elements {
		if d := x - want[i]; d > 1e-5 || d < -1e-5 {
			t.Errorf("f32x2[%d]: have %g, want %g", i, x, want[i])
		}
	}

	if _, err := f.Read("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("have %v, want ErrNotFound", err)
	}
}
