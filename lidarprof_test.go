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
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/kr/pretty"
)

func testBundle(t *testing.T) *Bundle {
	t.Helper()
	t0 := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	values := sparse.ZerosDense(4, 2)
	copy(values.Elements, []float64{1, 2, 3, 4, 5, math.NaN(), 7, 8})
	cb := sparse.ZerosDense(4, 1)
	copy(cb.Elements, []float64{100, 200, 300, 400})
	b, err := NewBundle("test", []time.Time{
		t0, t0.Add(time.Hour), t0.Add(2 * time.Hour), t0.Add(3 * time.Hour),
	}, []float64{10, 20}, values, cb, map[string]string{MetaSite: "here"})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestNewBundle(t *testing.T) {
	t0 := time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC)
	times := []time.Time{t0, t0.Add(time.Minute)}
	tests := []struct {
		name      string
		times     []time.Time
		vertical  []float64
		shape     []int
		cloudBase []int
		ok        bool
	}{
		{name: "valid", times: times, vertical: []float64{1, 2, 3}, shape: []int{2, 3}, ok: true},
		{name: "decreasing vertical", times: times, vertical: []float64{3, 2, 1}, shape: []int{2, 3}, ok: true},
		{name: "with cloud base", times: times, vertical: []float64{1}, shape: []int{2, 1}, cloudBase: []int{2, 3}, ok: true},
		{name: "transposed", times: times, vertical: []float64{1, 2, 3}, shape: []int{3, 2}},
		{name: "too few levels", times: times, vertical: []float64{1, 2}, shape: []int{2, 3}},
		{name: "1-D", times: times, vertical: []float64{1, 2, 3}, shape: []int{6}},
		{name: "repeated time", times: []time.Time{t0, t0}, vertical: []float64{1}, shape: []int{2, 1}},
		{name: "time backwards", times: []time.Time{t0, t0.Add(-time.Second)}, vertical: []float64{1}, shape: []int{2, 1}},
		{name: "vertical not monotonic", times: times, vertical: []float64{1, 3, 2}, shape: []int{2, 3}},
		{name: "vertical repeated", times: times, vertical: []float64{1, 1, 2}, shape: []int{2, 3}},
		{name: "vertical NaN", times: times, vertical: []float64{1, math.NaN(), 2}, shape: []int{2, 3}},
		{name: "cloud base wrong length", times: times, vertical: []float64{1}, shape: []int{2, 1}, cloudBase: []int{3, 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var cb *sparse.DenseArray
			if test.cloudBase != nil {
				cb = sparse.ZerosDense(test.cloudBase...)
			}
			b, err := NewBundle("file.nc", test.times, test.vertical, sparse.ZerosDense(test.shape...), cb, nil)
			if test.ok {
				if err != nil {
					t.Fatal(err)
				}
				if b.Metadata == nil {
					t.Error("metadata should not be nil")
				}
				return
			}
			var fe *FileFormatError
			if !errors.As(err, &fe) {
				t.Fatalf("have %v, want FileFormatError", err)
			}
			if fe.Path != "file.nc" {
				t.Errorf("path: have %q", fe.Path)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	b := testBundle(t)
	t0 := b.Time[0]

	w, err := b.Window(t0.Add(30*time.Minute), t0.Add(2*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(w.Time, b.Time[1:3]); len(diff) != 0 {
		t.Error(diff)
	}
	if !sameFloats(w.Values.Elements, []float64{3, 4, 5, math.NaN()}) {
		t.Errorf("values: have %v", w.Values.Elements)
	}
	if diff := pretty.Diff(w.CloudBase.Elements, []float64{200, 300}); len(diff) != 0 {
		t.Error(diff)
	}
	if diff := pretty.Diff(w.Values.Shape, []int{2, 2}); len(diff) != 0 {
		t.Error(diff)
	}

	// The window must not share storage with its source.
	w.Values.Elements[0] = -1
	w.Vertical[0] = -1
	w.Metadata[MetaSite] = "there"
	if b.Values.Elements[2] != 3 || b.Vertical[0] != 10 || b.Metadata[MetaSite] != "here" {
		t.Error("window aliases its source")
	}

	open, err := b.Window(time.Time{}, t0.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := open.Shape(); n != 2 {
		t.Errorf("unbounded start: have %d profiles, want 2", n)
	}
	all, err := b.Window(time.Time{}, time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := all.Shape(); n != 4 {
		t.Errorf("unbounded window: have %d profiles, want 4", n)
	}

	if _, err := b.Window(t0.Add(10*time.Hour), time.Time{}); !errors.Is(err, ErrEmptyWindow) {
		t.Errorf("have %v, want ErrEmptyWindow", err)
	}
}

func TestRange(t *testing.T) {
	b := testBundle(t)
	min, max := b.Range()
	if min != 1 || max != 8 {
		t.Errorf("have (%g, %g), want (1, 8)", min, max)
	}
	for i := range b.Values.Elements {
		b.Values.Elements[i] = math.NaN()
	}
	min, max = b.Range()
	if !math.IsNaN(min) || !math.IsNaN(max) {
		t.Errorf("all-NaN range: have (%g, %g)", min, max)
	}
}
