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

// Package arrayfile reads named multi-dimensional arrays and their
// attributes out of netCDF classic and netCDF-4/HDF5 files.
//
// Both encodings are exposed through the File interface, so callers can
// look up arrays by name without caring which container they came from.
package arrayfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/ctessum/sparse"
)

// Format is the container encoding of a file.
type Format int

const (
	// Classic is the netCDF classic (CDF-1) or 64-bit offset (CDF-2) format.
	Classic Format = iota + 1
	// HDF5 is the HDF5 format used by netCDF-4 and GEOMS files.
	HDF5
)

func (f Format) String() string {
	switch f {
	case Classic:
		return "netCDF classic"
	case HDF5:
		return "HDF5"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownFormat is returned by Open when a file is readable but is
	// not a netCDF classic or HDF5 file.
	ErrUnknownFormat = errors.New("arrayfile: not a netCDF or HDF5 file")

	// ErrNotFound is returned when a requested variable is not in the file.
	ErrNotFound = errors.New("arrayfile: variable not found")
)

var (
	magicCDF  = []byte("CDF")
	magicHDF5 = []byte("\x89HDF\r\n\x1a\n")
)

// File is an open hierarchical-array file.
type File interface {
	// Format returns the container encoding of the file.
	Format() Format

	// Variables returns the names of the variables in the root group.
	Variables() []string

	// Has reports whether the named variable exists. Names containing
	// "/" are resolved as group paths.
	Has(name string) bool

	// Read reads the whole named variable. It returns an error wrapping
	// ErrNotFound if the variable does not exist.
	Read(name string) (*Variable, error)

	// Attributes returns the global attributes of the file.
	Attributes() Attributes

	Close() error
}

// Variable is a numeric array read from a file.
type Variable struct {
	Name       string
	Dimensions []string
	Data       *sparse.DenseArray
	Attributes Attributes
}

// Len returns the number of elements in v.
func (v *Variable) Len() int { return len(v.Data.Elements) }

// Attributes holds file or variable attributes. Values are either
// string or []float64.
type Attributes map[string]interface{}

// Float returns the first numeric value of attribute key. String
// attributes holding a number are parsed.
func (a Attributes) Float(key string) (float64, bool) {
	switch v := a[key].(type) {
	case []float64:
		if len(v) == 0 {
			return 0, false
		}
		return v[0], true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String returns attribute key rendered as text.
func (a Attributes) String(key string) (string, bool) {
	switch v := a[key].(type) {
	case string:
		return v, true
	case []float64:
		s := make([]string, len(v))
		for i, f := range v {
			s[i] = strconv.FormatFloat(f, 'g', -1, 64)
		}
		return strings.Join(s, " "), true
	}
	return "", false
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Open opens the file at path, choosing the backend from the file's
// leading magic bytes. Errors from the operating system are returned
// wrapped but unchanged; a file that cannot be recognized or whose header
// cannot be parsed yields an error wrapping ErrUnknownFormat.
func Open(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("arrayfile: %w", err)
	}
	format, err := sniff(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	var af File
	switch format {
	case Classic:
		af, err = openClassic(f)
	case HDF5:
		af, err = openHDF5(f)
	}
	if err != nil {
		f.Close()
		return nil, err
	}
	return af, nil
}

// sniff reads the magic bytes at the start of f and rewinds it.
func sniff(f *os.File) (Format, error) {
	buf := make([]byte, len(magicHDF5))
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, fmt.Errorf("arrayfile: reading %s: %w", f.Name(), err)
	}
	buf = buf[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("arrayfile: %w", err)
	}
	switch {
	case bytes.Equal(buf, magicHDF5):
		return HDF5, nil
	case len(buf) >= 4 && bytes.HasPrefix(buf, magicCDF) && (buf[3] == 1 || buf[3] == 2):
		return Classic, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnknownFormat, f.Name())
}

// splitPath splits a variable name into its group path and base name.
func splitPath(name string) (group, base string) {
	name = strings.TrimPrefix(name, "/")
	i := strings.LastIndex(name, "/")
	if i < 0 {
		return "", name
	}
	return name[:i], name[i+1:]
}
