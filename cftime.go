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
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	// lufftTimeUnits applies to ceilometer time variables without a units
	// attribute.
	lufftTimeUnits = "seconds since 1904-01-01 00:00:00"

	// mjd2kTimeUnits is the GEOMS DATETIME convention.
	mjd2kTimeUnits = "days since 2000-01-01 00:00:00"
)

var refLayouts = []string{
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15",
	"2006-01-02",
	"2006-1-2 15:4:5",
	"2006-1-2",
}

// parseTimeUnits parses a units string of the form
// "<unit> since <reference time>". "MJD2K" is accepted as days since
// 2000-01-01.
func parseTimeUnits(units string) (step time.Duration, ref time.Time, err error) {
	s := strings.TrimSpace(units)
	if strings.EqualFold(s, "MJD2K") || strings.EqualFold(s, "MJD2000") {
		s = mjd2kTimeUnits
	}
	parts := strings.SplitN(s, " since ", 2)
	if len(parts) != 2 {
		return 0, time.Time{}, fmt.Errorf("invalid time units %q", units)
	}
	switch strings.ToLower(strings.TrimSpace(parts[0])) {
	case "seconds", "second", "secs", "sec", "s":
		step = time.Second
	case "minutes", "minute", "mins", "min":
		step = time.Minute
	case "hours", "hour", "hrs", "hr", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return 0, time.Time{}, fmt.Errorf("invalid time unit %q in %q", parts[0], units)
	}
	ref, err = parseReference(parts[1])
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid reference time in %q: %v", units, err)
	}
	return step, ref, nil
}

// parseReference parses a reference time, which is taken to be UTC
// unless an offset is given.
func parseReference(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, " UTC")
	s = strings.TrimSuffix(s, "UTC")
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	s = strings.TrimSuffix(s, "Z")
	for _, suffix := range []string{" +00:00", "+00:00", " +0000"} {
		if strings.HasSuffix(s, suffix) && len(s) > len("2006-01-02")+len(suffix) {
			s = strings.TrimSuffix(s, suffix)
			break
		}
	}
	for _, layout := range refLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Offsets must fit in a time.Duration, about ±292 years.
const maxOffsetMicroseconds = float64(math.MaxInt64 / int64(time.Microsecond))

// decodeTimes converts offsets in the given units to UTC times,
// rounded to the nearest microsecond.
func decodeTimes(vals []float64, units string) ([]time.Time, error) {
	step, ref, err := parseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(vals))
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("time %d is a fill value or not finite (%v)", i, v)
		}
		us := math.Round(v * float64(step) / 1e3)
		if math.Abs(us) >= maxOffsetMicroseconds {
			return nil, fmt.Errorf("time %d (%g %s) is too far from the reference time", i, v, units)
		}
		out[i] = ref.Add(time.Duration(us) * time.Microsecond).UTC()
	}
	return out, nil
}
