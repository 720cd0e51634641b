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
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SoundingColumns are the columns of a University of Wyoming text
// sounding, in file order.
var SoundingColumns = []string{
	"PRES", "HGHT", "TEMP", "DWPT", "RELH", "MIXR",
	"DRCT", "SKNT", "THTA", "THTE", "THTV",
}

// ErrNoSoundingData is returned when a sounding holds no complete rows.
var ErrNoSoundingData = errors.New("lidar: sounding has no complete data rows")

// Sounding is a radiosonde profile stored by column. Units follow the
// source file: PRES in hPa, HGHT in m and TEMP in °C.
type Sounding struct {
	// Station is the title line preceding the column header, usually
	// the station identifier and launch time.
	Station string
	Columns []string
	Data    map[string][]float64
}

// Len returns the number of levels in the sounding.
func (s *Sounding) Len() int {
	if len(s.Columns) == 0 {
		return 0
	}
	return len(s.Data[s.Columns[0]])
}

// Column returns the values of the named column.
func (s *Sounding) Column(name string) ([]float64, error) {
	v, ok := s.Data[name]
	if !ok {
		return nil, fmt.Errorf("lidar: sounding has no column %q", name)
	}
	return v, nil
}

// Profile computes the molecular backscatter profile at wavelength [nm]
// from the pressure, height and temperature columns.
func (s *Sounding) Profile(wavelength float64) (*Profile, error) {
	var cols [3][]float64
	for i, name := range []string{"PRES", "TEMP", "HGHT"} {
		v, err := s.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = v
	}
	return BetaTransmission(wavelength, cols[0], cols[1], cols[2], true)
}

// ReadSounding reads a University of Wyoming style text sounding.
// The column header line, when present, sets the column order;
// otherwise SoundingColumns is assumed. Rows with missing fields are
// skipped and reading stops at the station information block.
func ReadSounding(r io.Reader) (*Sounding, error) {
	s := &Sounding{
		Columns: append([]string(nil), SoundingColumns...),
		Data:    make(map[string][]float64),
	}
	var header bool
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Station information") {
			break
		}
		fields := strings.Fields(line)
		if fields[0] == "PRES" {
			s.Columns = fields
			header = true
			continue
		}
		row, ok := parseRow(fields, len(s.Columns))
		if !ok {
			if !header && s.Station == "" && !strings.HasPrefix(line, "---") {
				s.Station = line
			}
			continue
		}
		for i, c := range s.Columns {
			s.Data[c] = append(s.Data[c], row[i])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("lidar: reading sounding: %w", err)
	}
	if s.Len() == 0 {
		return nil, ErrNoSoundingData
	}
	return s, nil
}

func parseRow(fields []string, n int) ([]float64, bool) {
	if len(fields) != n {
		return nil, false
	}
	row := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		row[i] = v
	}
	return row, true
}
