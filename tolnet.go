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

// loadTOLNet reads time, altitude and ozone from a TOLNet file. GEOMS
// arrays stored as [altitude, time] are transposed.
func loadTOLNet(path string, names VariableNames) (*Bundle, error) {
	s, err := openSource(path)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	tv, err := s.required(names.Time)
	if err != nil {
		return nil, err
	}
	zv, err := s.required(names.Vertical)
	if err != nil {
		return nil, err
	}
	ov, err := s.required(names.Values)
	if err != nil {
		return nil, err
	}

	tvals, err := s.vector(tv)
	if err != nil {
		return nil, err
	}
	maskFill(tvals, tv.Attributes, "VAR_FILL_VALUE", "_FillValue", "missing_value")
	units := firstString(tv.Attributes, "VAR_UNITS", "units")
	if units == "" {
		units = mjd2kTimeUnits
	}
	times, err := decodeTimes(tvals, units)
	if err != nil {
		return nil, s.formatErr(tv, "%v", err)
	}
	vertical, err := s.vector(zv)
	if err != nil {
		return nil, err
	}

	values, err := s.matrix(ov, len(times), len(vertical), true)
	if err != nil {
		return nil, err
	}
	maskFill(values.Elements, ov.Attributes, "VAR_FILL_VALUE", "_FillValue", "missing_value")

	global := s.f.Attributes()
	md := globalMetadata(global)
	md[MetaInstrument] = "TOLNet ozone lidar"
	setIf(md, MetaInstrument, firstString(global, "DATA_SOURCE", "instrument"))
	md[MetaQuantity] = ov.Name
	setIf(md, MetaQuantity, firstString(ov.Attributes, "VAR_DESCRIPTION", "long_name"))
	setIf(md, MetaUnits, firstString(ov.Attributes, "VAR_UNITS", "units"))
	setIf(md, MetaVerticalUnits, firstString(zv.Attributes, "VAR_UNITS", "units"))
	setIf(md, MetaSite, firstString(global, "DATA_LOCATION", "site"))
	md[MetaFormat] = FormatTOLNet.String()

	return NewBundle(path, times, vertical, values, nil, md)
}
