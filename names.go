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

// VariableNames lists, in order of preference, the names under which a
// loader looks for each array. The first name present in the file wins.
// Names containing "/" are looked up inside groups.
type VariableNames struct {
	Time      []string `toml:"time"`
	Vertical  []string `toml:"vertical"`
	Values    []string `toml:"values"`
	CloudBase []string `toml:"cloud_base"`
}

func (n VariableNames) clone() VariableNames {
	return VariableNames{
		Time:      append([]string(nil), n.Time...),
		Vertical:  append([]string(nil), n.Vertical...),
		Values:    append([]string(nil), n.Values...),
		CloudBase: append([]string(nil), n.CloudBase...),
	}
}

// CeilometerNames are the default variable names for ceilometer files.
var CeilometerNames = VariableNames{
	Time:      []string{"time"},
	Vertical:  []string{"range", "altitude", "height"},
	Values:    []string{"beta_raw", "beta_att", "backscatter", "beta"},
	CloudBase: []string{"cbh", "cloud_base_height", "cbh_1"},
}

// TOLNetNames are the default variable names for TOLNet files.
var TOLNetNames = VariableNames{
	Time:     []string{"DATETIME", "time", "Time"},
	Vertical: []string{"ALTITUDE", "altitude", "Altitude"},
	Values: []string{
		"O3.MIXING.RATIO.VOLUME_DERIVED",
		"O3.NUMBER.DENSITY",
		"O3MR",
		"ozone",
		"O3",
	},
}

// NameSet holds the variable names used by each loader. It can be
// decoded from a TOML file with [ceilometer] and [tolnet] tables.
type NameSet struct {
	Ceilometer VariableNames `toml:"ceilometer"`
	TOLNet     VariableNames `toml:"tolnet"`
}

// DefaultNames returns a NameSet holding copies of CeilometerNames and
// TOLNetNames, safe to modify or decode into.
func DefaultNames() NameSet {
	return NameSet{
		Ceilometer: CeilometerNames.clone(),
		TOLNet:     TOLNetNames.clone(),
	}
}
