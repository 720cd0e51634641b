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

// Package lidar provides molecular (Rayleigh) scattering calculations for
// elastic backscatter lidars and a reader for radiosonde soundings.
package lidar

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Physical constants.
const (
	// Boltzmann is the Boltzmann constant [J/K].
	Boltzmann = 1.38064852e-23

	// LoschmidtSTP is the molecular number density of air at 288.15 K and
	// 1013.25 hPa [molecules/m³] used for the scattering cross section.
	LoschmidtSTP = 2.54691e25

	celsiusOffset = 273.15
)

// BetaRayleigh returns the molecular backscatter coefficient
// [m⁻¹ sr⁻¹] at wavelength [nm] for pressure p [hPa] and
// temperature t [K].
func BetaRayleigh(wavelength, p, t float64) float64 {
	lambda := wavelength * 1e-9
	return 2.938e-32 * (p / t) * math.Pow(lambda, -4.0117)
}

// NumberDensity returns the molecular number density [molecules/m³] for
// pressure p [Pa] and temperature t, in °C if celsius is true and in K
// otherwise.
func NumberDensity(p, t float64, celsius bool) float64 {
	if celsius {
		t += celsiusOffset
	}
	return p / (Boltzmann * t)
}

// IndexOfRefraction returns the refractive index of dry air at standard
// conditions for wavelength [nm].
func IndexOfRefraction(wavelength float64) float64 {
	s := 1e6 / (wavelength * wavelength)
	return 1 + (5791817/(238.0185-s)+167909/(57.362-s))*1e-8
}

var depolWavelengths = []float64{
	200, 205, 210, 215, 220, 225, 230, 240, 250, 260,
	270, 280, 290, 300, 310, 320, 330, 340, 350, 360,
	370, 380, 390, 400, 450, 500, 550, 600, 650, 700,
	800, 850, 900, 950, 1000, 1064,
}

var depolRatios = []float64{
	0.0454545, 0.0438372, 0.0422133, 0.0411272, 0.0400381,
	0.0389462, 0.0378513, 0.0367534, 0.0356527, 0.0345489,
	0.033996, 0.0328878, 0.0323326, 0.0317766, 0.0317766,
	0.0312199, 0.0306624, 0.0306624, 0.0301042, 0.0301042,
	0.0301042, 0.0295452, 0.0295452, 0.0295452, 0.0289855,
	0.028425, 0.028425, 0.0278638, 0.0278638, 0.0278638,
	0.0273018, 0.0273018, 0.0273018, 0.0273018, 0.0273018,
	0.0273018,
}

var depol = func() *interp.PiecewiseLinear {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(depolWavelengths, depolRatios); err != nil {
		panic(err)
	}
	return &pl
}()

// OutOfRangeError is returned for wavelengths outside the tabulated
// depolarization ratios.
type OutOfRangeError struct {
	Wavelength, Min, Max float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("lidar: wavelength %g nm is outside the tabulated range %g-%g nm", e.Wavelength, e.Min, e.Max)
}

// DepolarizationRatio returns the depolarization ratio of air at
// wavelength [nm], linearly interpolated from tabulated values between
// 200 and 1064 nm.
func DepolarizationRatio(wavelength float64) (float64, error) {
	lo, hi := depolWavelengths[0], depolWavelengths[len(depolWavelengths)-1]
	if !(wavelength >= lo && wavelength <= hi) {
		return 0, &OutOfRangeError{Wavelength: wavelength, Min: lo, Max: hi}
	}
	return depol.Predict(wavelength), nil
}

// ScatteringCrossSection returns the Rayleigh scattering cross section
// per molecule [m²] at wavelength [nm].
func ScatteringCrossSection(wavelength float64) (float64, error) {
	rho, err := DepolarizationRatio(wavelength)
	if err != nil {
		return 0, err
	}
	n2 := math.Pow(IndexOfRefraction(wavelength), 2)
	rs := 1e36 * 24 * math.Pow(math.Pi, 3) * math.Pow(n2-1, 2)
	rs /= math.Pow(wavelength, 4) * LoschmidtSTP * LoschmidtSTP * math.Pow(n2+2, 2)
	rs *= (6 + 3*rho) / (6 - 7*rho)
	return rs, nil
}

// Extinction returns the Rayleigh extinction coefficient [km⁻¹] at
// wavelength [nm] for number density nd [molecules/m³].
func Extinction(wavelength, nd float64) (float64, error) {
	sigma, err := ScatteringCrossSection(wavelength)
	if err != nil {
		return 0, err
	}
	return nd * sigma * 1000, nil
}

// Transmission returns the two-way transmission exp(-2∫α dz) from the
// first level up to each level, for extinction alpha [km⁻¹] at
// altitudes [m]. The integral uses the trapezoidal rule.
func Transmission(alpha, altitude []float64) ([]float64, error) {
	if len(alpha) != len(altitude) {
		return nil, fmt.Errorf("lidar: %d extinction values for %d altitudes", len(alpha), len(altitude))
	}
	seg := make([]float64, len(alpha))
	for i := 1; i < len(alpha); i++ {
		dz := (altitude[i] - altitude[i-1]) / 1000
		seg[i] = (alpha[i] + alpha[i-1]) / 2 * dz
	}
	tau := floats.CumSum(make([]float64, len(seg)), seg)
	for i, v := range tau {
		tau[i] = math.Exp(-2 * v)
	}
	return tau, nil
}

// Profile holds a molecular backscatter profile and its intermediate
// quantities, one value per level.
type Profile struct {
	Altitude []float64 // m

	// BetaTransmission is the attenuated molecular backscatter
	// Beta × Transmission [m⁻¹ sr⁻¹].
	BetaTransmission []float64

	Beta          []float64 // m⁻¹ sr⁻¹
	NumberDensity []float64 // molecules/m³
	Alpha         []float64 // km⁻¹
	Transmission  []float64
}

// BetaTransmission computes the attenuated molecular backscatter profile
// at wavelength [nm] from pressure [hPa], temperature (°C if celsius is
// true, K otherwise) and altitude [m], as reported by radiosondes.
func BetaTransmission(wavelength float64, pressure, temperature, altitude []float64, celsius bool) (*Profile, error) {
	n := len(pressure)
	if len(temperature) != n || len(altitude) != n {
		return nil, fmt.Errorf("lidar: profile lengths differ: %d pressures, %d temperatures, %d altitudes",
			n, len(temperature), len(altitude))
	}
	p := &Profile{
		Altitude:         altitude,
		BetaTransmission: make([]float64, n),
		Beta:             make([]float64, n),
		NumberDensity:    make([]float64, n),
		Alpha:            make([]float64, n),
	}
	for i := range pressure {
		tk := temperature[i]
		if celsius {
			tk += celsiusOffset
		}
		p.Beta[i] = BetaRayleigh(wavelength, pressure[i], tk)
		p.NumberDensity[i] = NumberDensity(pressure[i]*100, tk, false)
		a, err := Extinction(wavelength, p.NumberDensity[i])
		if err != nil {
			return nil, err
		}
		p.Alpha[i] = a
	}
	var err error
	p.Transmission, err = Transmission(p.Alpha, altitude)
	if err != nil {
		return nil, err
	}
	floats.MulTo(p.BetaTransmission, p.Beta, p.Transmission)
	return p, nil
}

// BinMeans averages values into altitude bins of the given width [m]
// starting at zero. It returns the center and mean of every bin that
// holds at least one finite value.
func BinMeans(values, altitude []float64, width float64) (centers, means []float64, err error) {
	if len(values) != len(altitude) {
		return nil, nil, fmt.Errorf("lidar: %d values for %d altitudes", len(values), len(altitude))
	}
	if !(width > 0) {
		return nil, nil, fmt.Errorf("lidar: invalid bin width %g", width)
	}
	sums := make(map[int]float64)
	counts := make(map[int]int)
	maxBin := -1
	for i, v := range values {
		if math.IsNaN(v) || math.IsNaN(altitude[i]) || altitude[i] < 0 {
			continue
		}
		b := int(altitude[i] / width)
		sums[b] += v
		counts[b]++
		if b > maxBin {
			maxBin = b
		}
	}
	for b := 0; b <= maxBin; b++ {
		if counts[b] == 0 {
			continue
		}
		centers = append(centers, (float64(b)+0.5)*width)
		means = append(means, sums[b]/float64(counts[b]))
	}
	return centers, means, nil
}
