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

// Package regrid resamples gridded concentration fields from one
// latitude-longitude grid onto another. It reads fields from NetCDF files,
// interpolates each time layer onto the coordinate vectors of a target
// grid, and writes the result to a new NetCDF file.
package regrid

import (
	"fmt"
	"math"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// Version gives the version of this version of the regridder.
const Version = "1.1.0"

// Grid holds the latitude and longitude coordinate vectors that define
// where the values of a Field are located. The coordinate vectors are
// expected to be monotonic but this is not enforced.
type Grid struct {
	Lat, Lon []float64
}

// Size returns the number of points in the grid.
func (g Grid) Size() int { return len(g.Lat) * len(g.Lon) }

// Bounds returns the spatial extent of the grid.
func (g Grid) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: floats.Min(g.Lon), Y: floats.Min(g.Lat)},
		Max: geom.Point{X: floats.Max(g.Lon), Y: floats.Max(g.Lat)},
	}
}

// Points returns the grid point locations in row-major order
// (latitude outer, longitude inner), with X holding longitude and
// Y holding latitude.
func (g Grid) Points() []geom.Point {
	p := make([]geom.Point, 0, g.Size())
	for _, lat := range g.Lat {
		for _, lon := range g.Lon {
			p = append(p, geom.Point{X: lon, Y: lat})
		}
	}
	return p
}

// Equal reports whether g and o have the same coordinate vectors
// to within the given tolerance.
func (g Grid) Equal(o Grid, tolerance float64) bool {
	if len(g.Lat) != len(o.Lat) || len(g.Lon) != len(o.Lon) {
		return false
	}
	for i, v := range g.Lat {
		if math.Abs(v-o.Lat[i]) > tolerance {
			return false
		}
	}
	for i, v := range g.Lon {
		if math.Abs(v-o.Lon[i]) > tolerance {
			return false
		}
	}
	return true
}

// monotonic reports whether vals are monotonically increasing or
// monotonically decreasing.
func monotonic(vals []float64) bool {
	if len(vals) < 2 {
		return true
	}
	increasing := vals[len(vals)-1] > vals[0]
	for i := 1; i < len(vals); i++ {
		if increasing && vals[i] <= vals[i-1] {
			return false
		}
		if !increasing && vals[i] >= vals[i-1] {
			return false
		}
	}
	return true
}

// Field is a numeric array associated with a Grid. Data is indexed
// [time, latitude, longitude], or [latitude, longitude] for fields
// without a time dimension. Fields are created by ReadDataset and are
// not modified after creation except by MaskBy.
type Field struct {
	// Name is the name of the variable this field was read from.
	Name string

	// Units and Description are carried over from the source
	// variable's attributes, where present.
	Units, Description string

	// Time holds the time coordinate values for 3-dimensional fields.
	Time      []float64
	TimeUnits string

	// Grid gives the locations of the field values.
	Grid Grid

	Data *sparse.DenseArray
}

// Layers returns the number of time layers in the field.
// A field without a time dimension has one layer.
func (f *Field) Layers() int {
	if len(f.Data.Shape) == 3 {
		return f.Data.Shape[0]
	}
	return 1
}

// Layer returns the latitude × longitude matrix of values for
// time layer l.
func (f *Field) Layer(l int) *sparse.DenseArray {
	if len(f.Data.Shape) == 2 {
		return f.Data
	}
	nlat, nlon := f.Data.Shape[1], f.Data.Shape[2]
	o := sparse.ZerosDense(nlat, nlon)
	copy(o.Elements, f.Data.Elements[l*nlat*nlon:(l+1)*nlat*nlon])
	return o
}

// setLayer overwrites time layer l with the given matrix.
func (f *Field) setLayer(l int, layer *sparse.DenseArray) {
	if len(f.Data.Shape) == 2 {
		copy(f.Data.Elements, layer.Elements)
		return
	}
	n := f.Data.Shape[1] * f.Data.Shape[2]
	copy(f.Data.Elements[l*n:(l+1)*n], layer.Elements)
}

// MaskBy sets the values of f to NaN wherever the first layer of mask
// is NaN, in every layer of f. The spatial shapes of the two fields
// must match. This transfers the valid-data mask of a satellite
// dataset onto a regridded model field.
func (f *Field) MaskBy(mask *Field) error {
	m := mask.Layer(0)
	nlat, nlon := f.spatialShape()
	if m.Shape[0] != nlat || m.Shape[1] != nlon {
		return fmt.Errorf("regrid: mask shape [%d,%d] does not match field shape [%d,%d]",
			m.Shape[0], m.Shape[1], nlat, nlon)
	}
	for l := 0; l < f.Layers(); l++ {
		for j := 0; j < nlat; j++ {
			for i := 0; i < nlon; i++ {
				if math.IsNaN(m.Get(j, i)) {
					f.set(math.NaN(), l, j, i)
				}
			}
		}
	}
	return nil
}

func (f *Field) spatialShape() (nlat, nlon int) {
	s := f.Data.Shape
	return s[len(s)-2], s[len(s)-1]
}

func (f *Field) set(v float64, l, j, i int) {
	if len(f.Data.Shape) == 2 {
		f.Data.Set(v, j, i)
		return
	}
	f.Data.Set(v, l, j, i)
}
