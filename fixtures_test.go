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
	"path/filepath"
	"testing"
	"time"

	"github.com/spatialmodel/lidarprof/internal/ncfixture"
)

var (
	ceilStart  = time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
	tolnetDay  = 7457.5 // 2020-06-01 12:00 UTC in MJD2K
	tolnetTime = time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)
)

// writeCeilometer writes a Lufft-style file with 3 profiles of 4 range
// gates and a two-layer cloud base height.
func writeCeilometer(t *testing.T) string {
	t.Helper()
	epoch := time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
	t0 := ceilStart.Sub(epoch).Seconds()
	path := filepath.Join(t.TempDir(), "ceilometer.nc")
	err := ncfixture.Write(path, ncfixture.Dataset{
		Dims:    []string{"time", "range", "layer"},
		Lengths: []int{3, 4, 2},
		Attrs: map[string]interface{}{
			"location":    "Hampton",
			"device_name": "CHM15k",
			"title":       "ceilometer test",
		},
		Vars: []ncfixture.Var{
			{
				Name:  "time",
				Dims:  []string{"time"},
				Data:  []float64{t0, t0 + 15, t0 + 30},
				Attrs: map[string]interface{}{"units": "seconds since 1904-01-01 00:00:00.000"},
			},
			{
				Name:  "range",
				Dims:  []string{"range"},
				Data:  []float32{15, 30, 45, 60},
				Attrs: map[string]interface{}{"units": "m"},
			},
			{
				Name: "beta_raw",
				Dims: []string{"time", "range"},
				Data: []float32{
					1, 2, 3, 4,
					5, -999, 7, 8,
					9, 10, 11, 12,
				},
				Attrs: map[string]interface{}{
					"_FillValue": []float32{-999},
					"long_name":  "normalized range corrected signal",
					"units":      "a.u.",
				},
			},
			{
				Name:  "cbh",
				Dims:  []string{"time", "layer"},
				Data:  []int32{500, -1, 600, 900, -1, -1},
				Attrs: map[string]interface{}{"units": "m"},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return path
}

// writeTOLNet writes a GEOMS-style file with 2 profiles of 3 altitudes.
// Ozone is stored [altitude, time].
func writeTOLNet(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tolnet.nc")
	err := ncfixture.Write(path, ncfixture.Dataset{
		Dims:    []string{"DATETIME", "ALTITUDE"},
		Lengths: []int{2, 3},
		Attrs: map[string]interface{}{
			"DATA_LOCATION": "HAMPTON.VA",
			"DATA_SOURCE":   "LIDAR.O3_LANGLEY",
		},
		Vars: []ncfixture.Var{
			{
				Name:  "DATETIME",
				Dims:  []string{"DATETIME"},
				Data:  []float64{tolnetDay, tolnetDay + 0.25},
				Attrs: map[string]interface{}{"VAR_UNITS": "MJD2K"},
			},
			{
				Name:  "ALTITUDE",
				Dims:  []string{"ALTITUDE"},
				Data:  []float32{100, 200, 300},
				Attrs: map[string]interface{}{"VAR_UNITS": "m"},
			},
			{
				Name: "O3.MIXING.RATIO.VOLUME_DERIVED",
				Dims: []string{"ALTITUDE", "DATETIME"},
				Data: []float32{
					40, 41,
					50, -999,
					60, 61,
				},
				Attrs: map[string]interface{}{
					"VAR_FILL_VALUE":  []float32{-999},
					"VAR_UNITS":       "ppbv",
					"VAR_DESCRIPTION": "ozone mixing ratio",
				},
			},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return path
}

// sameFloats reports whether a and b are equal, treating NaNs as equal.
func sameFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
