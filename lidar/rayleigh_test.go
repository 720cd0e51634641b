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

package lidar

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"
)

func TestDepolarizationRatio(t *testing.T) {
	for _, test := range []struct {
		wavelength, want float64
	}{
		{200, 0.0454545},
		{212.5, 0.04167025},
		{532, 0.028425},
		{1064, 0.0273018},
	} {
		have, err := DepolarizationRatio(test.wavelength)
		if err != nil {
			t.Fatal(err)
		}
		if !scalar.EqualWithinAbsOrRel(have, test.want, 1e-12, 1e-9) {
			t.Errorf("%g nm: have %g, want %g", test.wavelength, have, test.want)
		}
	}
	for _, w := range []float64{199, 1100, math.NaN()} {
		_, err := DepolarizationRatio(w)
		var rangeErr *OutOfRangeError
		if !errors.As(err, &rangeErr) {
			t.Errorf("%g nm: want OutOfRangeError, have %v", w, err)
		}
	}
}

func TestIndexOfRefraction(t *testing.T) {
	have := IndexOfRefraction(550)
	const want = 1.000277823885169
	if !scalar.EqualWithinAbsOrRel(have, want, 1e-12, 1e-12) {
		t.Errorf("have %.12f, want %.12f", have, want)
	}
}

func TestScatteringCrossSection(t *testing.T) {
	have, err := ScatteringCrossSection(532)
	if err != nil {
		t.Fatal(err)
	}
	const want = 5.166982996092326e-31
	if !scalar.EqualWithinRel(have, want, 1e-9) {
		t.Errorf("have %g, want %g", have, want)
	}
	if _, err := ScatteringCrossSection(150); err == nil {
		t.Error("want error for 150 nm")
	}
}

func TestBetaRayleigh(t *testing.T) {
	have := BetaRayleigh(1064, 1013.25, 288.15)
	const want = 9.468213690459286e-08
	if !scalar.EqualWithinRel(have, want, 1e-9) {
		t.Errorf("have %g, want %g", have, want)
	}
	// Shorter wavelengths scatter more.
	if BetaRayleigh(532, 1013.25, 288.15) <= have {
		t.Error("532 nm backscatter should exceed 1064 nm")
	}
}

func TestNumberDensity(t *testing.T) {
	const loschmidt = 2.6867810458916874e+25
	k := NumberDensity(101325, 273.15, false)
	c := NumberDensity(101325, 0, true)
	if !scalar.EqualWithinRel(k, loschmidt, 1e-12) {
		t.Errorf("kelvin: have %g, want %g", k, loschmidt)
	}
	if !scalar.EqualWithinRel(c, k, 1e-12) {
		t.Errorf("celsius: have %g, want %g", c, k)
	}
}

func TestExtinction(t *testing.T) {
	sigma, err := ScatteringCrossSection(1064)
	if err != nil {
		t.Fatal(err)
	}
	a, err := Extinction(1064, 2.5e25)
	if err != nil {
		t.Fatal(err)
	}
	if want := 2.5e25 * sigma * 1000; a != want {
		t.Errorf("have %g, want %g", a, want)
	}
}

func TestTransmission(t *testing.T) {
	have, err := Transmission([]float64{0.1, 0.1, 0.1}, []float64{0, 1000, 2000})
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, math.Exp(-0.2), math.Exp(-0.4)}
	if !floats.EqualApprox(have, want, 1e-12) {
		t.Errorf("have %v, want %v", have, want)
	}

	have, err = Transmission([]float64{0, 0.2}, []float64{0, 500})
	if err != nil {
		t.Fatal(err)
	}
	want = []float64{1, math.Exp(-0.1)}
	if !floats.EqualApprox(have, want, 1e-12) {
		t.Errorf("trapezoid: have %v, want %v", have, want)
	}

	if _, err := Transmission([]float64{1}, []float64{0, 1}); err == nil {
		t.Error("want length mismatch error")
	}
}

func TestBetaTransmission(t *testing.T) {
	p := []float64{1000, 900, 800}
	tc := []float64{15, 8, 1}
	z := []float64{100, 1000, 2000}
	prof, err := BetaTransmission(1064, p, tc, z, true)
	if err != nil {
		t.Fatal(err)
	}
	if prof.Transmission[0] != 1 || prof.BetaTransmission[0] != prof.Beta[0] {
		t.Errorf("surface level should be unattenuated: %+v", prof)
	}
	for i := 1; i < len(z); i++ {
		if prof.Transmission[i] >= prof.Transmission[i-1] {
			t.Errorf("transmission not decreasing at level %d: %v", i, prof.Transmission)
		}
		if prof.BetaTransmission[i] >= prof.Beta[i] {
			t.Errorf("level %d not attenuated", i)
		}
	}
	if want := NumberDensity(100000, 288.15, false); !scalar.EqualWithinRel(prof.NumberDensity[0], want, 1e-12) {
		t.Errorf("number density: have %g, want %g", prof.NumberDensity[0], want)
	}

	tk := make([]float64, len(tc))
	for i, v := range tc {
		tk[i] = v + 273.15
	}
	kelvin, err := BetaTransmission(1064, p, tk, z, false)
	if err != nil {
		t.Fatal(err)
	}
	if !floats.EqualApprox(kelvin.Beta, prof.Beta, 1e-20) {
		t.Errorf("celsius and kelvin disagree: %v != %v", kelvin.Beta, prof.Beta)
	}

	if _, err := BetaTransmission(1064, p, tc[:2], z, true); err == nil {
		t.Error("want length mismatch error")
	}
	if _, err := BetaTransmission(2000, p, tc, z, true); err == nil {
		t.Error("want wavelength range error")
	}
}

func TestBinMeans(t *testing.T) {
	values := []float64{1, 3, 5, 7, math.NaN(), 9}
	alt := []float64{10, 90, 150, 350, 360, -5}
	centers, means, err := BinMeans(values, alt, 100)
	if err != nil {
		t.Fatal(err)
	}
	wantCenters := []float64{50, 150, 350}
	wantMeans := []float64{2, 5, 7}
	if !floats.Equal(centers, wantCenters) || !floats.Equal(means, wantMeans) {
		t.Errorf("have %v %v, want %v %v", centers, means, wantCenters, wantMeans)
	}
	if _, _, err := BinMeans(values, alt, 0); err == nil {
		t.Error("want error for zero width")
	}
	if _, _, err := BinMeans(values, alt[:2], 100); err == nil {
		t.Error("want length mismatch error")
	}
}
