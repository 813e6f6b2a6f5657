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
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// InputPaths returns the locations of the model and satellite input
// files within dir, checking that both exist.
func InputPaths(dir, modelFile, satelliteFile string) (model, satellite string, err error) {
	model = filepath.Join(dir, modelFile)
	satellite = filepath.Join(dir, satelliteFile)
	for _, p := range []string{model, satellite} {
		if _, err := os.Stat(p); err != nil {
			return "", "", &FileNotFoundError{Path: p, Err: err}
		}
	}
	return model, satellite, nil
}

// ReadDataset reads variable varName from the NetCDF file at path,
// along with its latitude and longitude coordinate vectors, its time
// coordinate if it has one, and its units and description attributes.
// The variable must be indexed [time, latitude, longitude] or
// [latitude, longitude]; a variable stored [latitude, longitude, time]
// is transposed to put time first.
func ReadDataset(path, varName string) (*Field, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileNotFoundError{Path: path, Err: err}
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}

	data, err := readVar(ff, varName)
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	if n := len(data.Shape); n < 2 || n > 3 {
		return nil, &FormatError{Path: path,
			Err: fmt.Errorf("variable %s has %d dimensions; want 2 or 3", varName, n)}
	}

	dimNames := ff.Header.Dimensions(varName)
	if len(dimNames) == 3 && isTimeName(dimNames[2]) {
		// Stored [latitude, longitude, time]; make time the
		// leading dimension.
		data = timeLast2First(data)
		dimNames = []string{dimNames[2], dimNames[0], dimNames[1]}
	}

	field := &Field{
		Name:        varName,
		Units:       attrString(ff, varName, "units"),
		Description: attrString(ff, varName, "long_name"),
		Data:        data,
	}
	if field.Description == "" {
		field.Description = attrString(ff, varName, "description")
	}

	latName, lonName := "latitude", "longitude"
	if n := len(dimNames); n >= 2 {
		latName, lonName = dimNames[n-2], dimNames[n-1]
	}
	lat, err := readCoordinate(ff, latName, "latitude", "lat")
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	lon, err := readCoordinate(ff, lonName, "longitude", "lon")
	if err != nil {
		return nil, &FormatError{Path: path, Err: err}
	}
	nlat, nlon := data.Shape[len(data.Shape)-2], data.Shape[len(data.Shape)-1]
	if len(lat) != nlat || len(lon) != nlon {
		return nil, &FormatError{Path: path,
			Err: fmt.Errorf("variable %s shape [%d,%d] does not match coordinate lengths [%d,%d]",
				varName, nlat, nlon, len(lat), len(lon))}
	}
	field.Grid = Grid{Lat: lat, Lon: lon}

	if len(data.Shape) == 3 {
		field.Time, field.TimeUnits = readTime(ff, dimNames[0], data.Shape[0])
	}
	return field, nil
}

// readVar reads the entire variable v out of netcdf file ff.
func readVar(ff *cdf.File, v string) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(v)
	if len(dims) == 0 {
		return nil, fmt.Errorf("variable %s is not in file", v)
	}
	r := ff.Reader(v, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("reading variable %s: %v", v, err)
	}
	elements, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("variable %s: %v", v, err)
	}
	if dims[0] == 0 { // unlimited record dimension
		n := 1
		for _, d := range dims[1:] {
			n *= d
		}
		dims[0] = len(elements) / n
	}
	data := sparse.ZerosDense(dims...)
	if len(elements) != len(data.Elements) {
		return nil, fmt.Errorf("variable %s has %d values; want %d", v, len(elements), len(data.Elements))
	}
	copy(data.Elements, elements)
	return data, nil
}

// readCoordinate reads a 1-dimensional coordinate vector, trying each
// of the given variable names in turn, in exact, lower, and upper case.
func readCoordinate(ff *cdf.File, names ...string) ([]float64, error) {
	tried := make([]string, 0, len(names)*3)
	for _, name := range names {
		for _, n := range []string{name, strings.ToLower(name), strings.ToUpper(name)} {
			if len(ff.Header.Lengths(n)) != 1 {
				tried = append(tried, n)
				continue
			}
			data, err := readVar(ff, n)
			if err != nil {
				return nil, err
			}
			return data.Elements, nil
		}
	}
	return nil, fmt.Errorf("no coordinate variable found; tried %s", strings.Join(tried, ", "))
}

// readTime reads the time coordinate vector named by dim if it is in
// the file; otherwise it returns layer indices.
func readTime(ff *cdf.File, dim string, nt int) ([]float64, string) {
	if t, err := readCoordinate(ff, dim, "time"); err == nil && len(t) == nt {
		units := attrString(ff, dim, "units")
		if units == "" {
			units = attrString(ff, "time", "units")
		}
		return t, units
	}
	t := make([]float64, nt)
	for i := range t {
		t[i] = float64(i)
	}
	return t, ""
}

func isTimeName(s string) bool {
	return strings.HasPrefix(strings.ToLower(s), "time")
}

// timeLast2First transposes a [lat, lon, time] array to [time, lat, lon].
func timeLast2First(in *sparse.DenseArray) *sparse.DenseArray {
	nlat, nlon, nt := in.Shape[0], in.Shape[1], in.Shape[2]
	out := sparse.ZerosDense(nt, nlat, nlon)
	for j := 0; j < nlat; j++ {
		for i := 0; i < nlon; i++ {
			for l := 0; l < nt; l++ {
				out.Set(in.Get(j, i, l), l, j, i)
			}
		}
	}
	return out
}

func attrString(ff *cdf.File, v, a string) string {
	switch attr := ff.Header.GetAttribute(v, a).(type) {
	case string:
		return attr
	case []byte:
		return string(attr)
	default:
		return ""
	}
}

func toFloat64(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}
