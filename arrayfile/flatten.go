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
	"reflect"
)

// toFloat64 converts a flat numeric slice or a numeric scalar to
// []float64.
func toFloat64(v interface{}) ([]float64, error) {
	switch t := v.(type) {
	case []float64:
		out := make([]float64, len(t))
		copy(out, t)
		return out, nil
	case []float32:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	case []uint8:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, nil
	}
	vals, _, err := flatten(v)
	return vals, err
}

// flatten converts a scalar or a (possibly nested) rectangular slice of
// numbers into row-major float64 values and the array shape. Scalars have
// shape [1].
func flatten(v interface{}) ([]float64, []int, error) {
	if v == nil {
		return nil, nil, fmt.Errorf("no values")
	}
	rv := reflect.ValueOf(v)
	var shape []int
	for t := rv; t.Kind() == reflect.Slice || t.Kind() == reflect.Array; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}
	if len(shape) == 0 {
		f, ok := scalar(rv)
		if !ok {
			return nil, nil, fmt.Errorf("unsupported value type %T", v)
		}
		return []float64{f}, []int{1}, nil
	}
	n := 1
	for _, s := range shape {
		n *= s
	}
	out := make([]float64, 0, n)
	var walk func(reflect.Value, int) error
	walk = func(x reflect.Value, depth int) error {
		if depth == len(shape) {
			f, ok := scalar(x)
			if !ok {
				return fmt.Errorf("unsupported element type %s", x.Type())
			}
			out = append(out, f)
			return nil
		}
		if k := x.Kind(); k != reflect.Slice && k != reflect.Array {
			return fmt.Errorf("ragged array: expected %d dimensions", len(shape))
		}
		if x.Len() != shape[depth] {
			return fmt.Errorf("ragged array: dimension %d has lengths %d and %d", depth, shape[depth], x.Len())
		}
		for i := 0; i < x.Len(); i++ {
			if err := walk(x.Index(i), depth+1); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(rv, 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

func scalar(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	}
	return 0, false
}
