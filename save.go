/*
Copyright © 2019 the InMAP authors.
This file is part of regrid.

regrid is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

regrid is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with regrid.  If not, see <http://www.gnu.org/licenses/>.
*/

package regrid

import (
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

// WriteField serializes field into a NetCDF file at path, attaching
// the field's grid coordinate vectors as the spatial index and its
// time coordinate when present. The data variable is stored as
// float32 with a NaN fill value; coordinates are stored as float64.
// Either the full output file is written, or no output file is left
// behind.
func WriteField(path string, field *Field) error {
	g := field.Grid
	nlat, nlon := len(g.Lat), len(g.Lon)
	threeD := len(field.Data.Shape) == 3

	dims := []string{"latitude", "longitude"}
	lengths := []int{nlat, nlon}
	if threeD {
		dims = []string{"time", "latitude", "longitude"}
		lengths = []int{field.Data.Shape[0], nlat, nlon}
	}

	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", fmt.Sprintf("Created by regrid v%s", Version))

	h.AddVariable("latitude", []string{"latitude"}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("longitude", []string{"longitude"}, []float64{0})
	h.AddAttribute("longitude", "units", "degrees_east")
	if threeD {
		h.AddVariable("time", []string{"time"}, []float64{0})
		if field.TimeUnits != "" {
			h.AddAttribute("time", "units", field.TimeUnits)
		}
	}

	h.AddVariable(field.Name, dims, []float32{0})
	if field.Units != "" {
		h.AddAttribute(field.Name, "units", field.Units)
	}
	if field.Description != "" {
		h.AddAttribute(field.Name, "long_name", field.Description)
	}
	h.AddAttribute(field.Name, "_FillValue", []float32{float32(math.NaN())})

	h.Define()
	for _, err := range h.Check() {
		return &WriteError{Path: path, Err: err}
	}

	ff, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	abort := func(err error) error {
		ff.Close()
		os.Remove(path)
		return &WriteError{Path: path, Err: err}
	}

	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		return abort(err)
	}

	if err := writeFloat64s(f, "latitude", g.Lat); err != nil {
		return abort(err)
	}
	if err := writeFloat64s(f, "longitude", g.Lon); err != nil {
		return abort(err)
	}
	if threeD {
		t := field.Time
		if t == nil {
			t = make([]float64, field.Data.Shape[0])
			for i := range t {
				t[i] = float64(i)
			}
		}
		if err := writeFloat64s(f, "time", t); err != nil {
			return abort(err)
		}
	}

	data32 := make([]float32, len(field.Data.Elements))
	for i, e := range field.Data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(field.Name)
	w := f.Writer(field.Name, make([]int, len(end)), end)
	if _, err := w.Write(data32); err != nil {
		return abort(err)
	}

	if err := cdf.UpdateNumRecs(ff); err != nil {
		return abort(err)
	}
	if err := ff.Close(); err != nil {
		os.Remove(path)
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

func writeFloat64s(f *cdf.File, v string, vals []float64) error {
	w := f.Writer(v, []int{0}, []int{len(vals)})
	if _, err := w.Write(vals); err != nil {
		return fmt.Errorf("writing variable %s: %v", v, err)
	}
	return nil
}
