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
	"strings"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/ctessum/sparse"
)

// groupFile reads netCDF-4/HDF5 files through a go-native-netcdf group.
type groupFile struct {
	g api.Group
}

func openHDF5(f *os.File) (*groupFile, error) {
	g, err := hdf5.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnknownFormat, f.Name(), err)
	}
	return &groupFile{g: g}, nil
}

func (h *groupFile) Format() Format { return HDF5 }

func (h *groupFile) Variables() []string { return h.g.ListVariables() }

func (h *groupFile) Attributes() Attributes { return convertAttributes(h.g.Attributes()) }

func (h *groupFile) Close() error {
	h.g.Close()
	return nil
}

// group returns the group holding path. The returned function releases
// it.
func (h *groupFile) group(path string) (api.Group, func(), error) {
	if path == "" {
		return h.g, func() {}, nil
	}
	g, err := h.g.GetGroup(path)
	if err != nil {
		return nil, nil, err
	}
	return g, g.Close, nil
}

func (h *groupFile) Has(name string) bool {
	path, base := splitPath(name)
	g, release, err := h.group(path)
	if err != nil {
		return false
	}
	defer release()
	return contains(g.ListVariables(), base)
}

func (h *groupFile) Read(name string) (*Variable, error) {
	path, base := splitPath(name)
	g, release, err := h.group(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	defer release()
	if !contains(g.ListVariables(), base) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	v, err := g.GetVariable(base)
	if err != nil {
		return nil, fmt.Errorf("arrayfile: reading variable %s: %v", name, err)
	}
	vals, shape, err := flatten(v.Values)
	if err != nil {
		return nil, fmt.Errorf("arrayfile: variable %s: %v", name, err)
	}
	data := sparse.ZerosDense(shape...)
	copy(data.Elements, vals)
	return &Variable{
		Name:       name,
		Dimensions: v.Dimensions,
		Data:       data,
		Attributes: convertAttributes(v.Attributes),
	}, nil
}

// convertAttributes normalizes attribute values to string or []float64.
// Values of other types are dropped.
func convertAttributes(m api.AttributeMap) Attributes {
	a := make(Attributes)
	if m == nil {
		return a
	}
	for _, k := range m.Keys() {
		v, ok := m.Get(k)
		if !ok {
			continue
		}
		switch t := v.(type) {
		case string:
			a[k] = t
		case []string:
			a[k] = strings.Join(t, " ")
		default:
			if vals, _, err := flatten(v); err == nil {
				a[k] = vals
			}
		}
	}
	return a
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
