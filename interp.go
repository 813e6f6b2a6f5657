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
	"sort"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/index/rtree"
	"github.com/ctessum/sparse"
)

// Kernel is an interpolation method for estimating field values at
// target grid points. The choice of kernel materially changes the
// numeric output.
type Kernel string

const (
	// Bilinear is separable linear interpolation on the rectilinear
	// source grid. Target points outside the source coordinate range
	// get NaN. This is the default.
	Bilinear Kernel = "bilinear"

	// Nearest assigns the value of the nearest source grid point.
	// It never produces NaN for targets outside the source extent.
	Nearest Kernel = "nearest"

	// IDW is inverse-distance-squared weighting over the nearest
	// source grid points.
	IDW Kernel = "idw"
)

// ParseKernel converts a kernel name to a Kernel.
func ParseKernel(s string) (Kernel, error) {
	switch Kernel(s) {
	case Bilinear, Nearest, IDW:
		return Kernel(s), nil
	case "":
		return Bilinear, nil
	}
	return "", fmt.Errorf("regrid: invalid interpolation kernel %q (valid kernels are %s, %s, and %s)",
		s, Bilinear, Nearest, IDW)
}

// Interpolator estimates the values of a Field at the points of a
// different Grid. Interpolation is deterministic: identical inputs
// always produce identical outputs.
type Interpolator struct {
	Kernel Kernel

	// Neighbors is the number of source samples used by the IDW
	// kernel. Values below 1 mean the default of 4.
	Neighbors int

	// If MsgChan is not nil, status messages will be sent to it.
	MsgChan chan string
}

// Regrid interpolates each time layer of src onto the points of
// target, independently and in order. The spatial shape of the result
// is [len(target.Lat), len(target.Lon)] regardless of the source
// shape. Interpolating a field onto its own grid reproduces the
// original values modulo floating-point rounding.
func (ip *Interpolator) Regrid(src *Field, target Grid) (*Field, error) {
	kernel, err := ParseKernel(string(ip.Kernel))
	if err != nil {
		return nil, err
	}
	if len(target.Lat) == 0 || len(target.Lon) == 0 {
		return nil, fmt.Errorf("regrid: target grid is empty")
	}
	if err := checkSource(kernel, src.Grid); err != nil {
		return nil, err
	}

	nl := src.Layers()
	nlat, nlon := len(target.Lat), len(target.Lon)
	out := &Field{
		Name:        src.Name,
		Units:       src.Units,
		Description: src.Description,
		Time:        src.Time,
		TimeUnits:   src.TimeUnits,
		Grid:        target,
	}
	if len(src.Data.Shape) == 3 {
		out.Data = sparse.ZerosDense(nl, nlat, nlon)
	} else {
		out.Data = sparse.ZerosDense(nlat, nlon)
	}

	var index *rtree.Rtree
	if kernel == Nearest || kernel == IDW {
		index = buildIndex(src.Grid)
	}

	for l := 0; l < nl; l++ {
		layer := src.Layer(l)
		var o *sparse.DenseArray
		switch kernel {
		case Bilinear:
			o = bilinearLayer(layer, src.Grid, target)
		case Nearest:
			o = nearestLayer(layer, index, target)
		case IDW:
			k := ip.Neighbors
			if k < 1 {
				k = 4
			}
			o = idwLayer(layer, index, target, k)
		}
		out.setLayer(l, o)
		if ip.MsgChan != nil {
			ip.MsgChan <- fmt.Sprintf("Regridded layer %d of %d", l+1, nl)
		}
	}
	return out, nil
}

// checkSource verifies that the source grid is usable with the given
// kernel.
func checkSource(kernel Kernel, g Grid) error {
	if g.Size() == 0 {
		return &InsufficientDataError{Reason: "source grid is empty"}
	}
	if kernel != Bilinear {
		return nil
	}
	if len(g.Lat) < 2 || len(g.Lon) < 2 {
		return &InsufficientDataError{
			Reason: fmt.Sprintf("bilinear interpolation needs at least a 2×2 source grid; have %d×%d",
				len(g.Lat), len(g.Lon))}
	}
	if !monotonic(g.Lat) || !monotonic(g.Lon) {
		return &InsufficientDataError{Reason: "bilinear interpolation needs monotonic source coordinates"}
	}
	return nil
}

// bilinearLayer performs separable linear interpolation of layer
// (indexed [lat, lon] on src) at the points of target. Points outside
// the source coordinate range get NaN; NaN source values propagate to
// every target cell they support.
func bilinearLayer(layer *sparse.DenseArray, src, target Grid) *sparse.DenseArray {
	latIdx, latFrac, latOK := bracketAll(src.Lat, target.Lat)
	lonIdx, lonFrac, lonOK := bracketAll(src.Lon, target.Lon)

	o := sparse.ZerosDense(len(target.Lat), len(target.Lon))
	for j := range target.Lat {
		for i := range target.Lon {
			if !latOK[j] || !lonOK[i] {
				o.Set(math.NaN(), j, i)
				continue
			}
			wy := [2]float64{1 - latFrac[j], latFrac[j]}
			wx := [2]float64{1 - lonFrac[i], lonFrac[i]}
			var v float64
			for dj := 0; dj < 2; dj++ {
				for di := 0; di < 2; di++ {
					w := wy[dj] * wx[di]
					if w == 0 {
						// A zero-weight corner must not
						// poison exact hits with NaN.
						continue
					}
					v += w * layer.Get(latIdx[j]+dj, lonIdx[i]+di)
				}
			}
			o.Set(v, j, i)
		}
	}
	return o
}

// bracketAll locates every target coordinate within the source
// coordinate vector. For target k, idx[k] is the lower source index of
// the bracketing interval, frac[k] the position within it, and ok[k]
// whether the target is inside the source range. Source coordinates
// may be ascending or descending.
func bracketAll(coords, targets []float64) (idx []int, frac []float64, ok []bool) {
	idx = make([]int, len(targets))
	frac = make([]float64, len(targets))
	ok = make([]bool, len(targets))
	for k, x := range targets {
		idx[k], frac[k], ok[k] = bracket(coords, x)
	}
	return
}

func bracket(coords []float64, x float64) (int, float64, bool) {
	n := len(coords)
	ascending := coords[n-1] > coords[0]
	if ascending {
		if x < coords[0] || x > coords[n-1] {
			return 0, 0, false
		}
		i := sort.SearchFloat64s(coords, x)
		if i == 0 {
			return 0, 0, true
		}
		if i == n {
			i = n - 1
		}
		return i - 1, (x - coords[i-1]) / (coords[i] - coords[i-1]), true
	}
	if x > coords[0] || x < coords[n-1] {
		return 0, 0, false
	}
	// Find the first coordinate <= x in the descending vector.
	i := sort.Search(n, func(i int) bool { return coords[i] <= x })
	if i == 0 {
		return 0, 0, true
	}
	if i == n {
		i = n - 1
	}
	return i - 1, (coords[i-1] - x) / (coords[i-1] - coords[i]), true
}

// gridSample is a source grid point held in the spatial index.
type gridSample struct {
	geom.Point
	row, col int
}

// buildIndex loads the source grid points into an r-tree for
// nearest-neighbor queries.
func buildIndex(g Grid) *rtree.Rtree {
	t := rtree.NewTree(25, 50)
	nlon := len(g.Lon)
	for k, p := range g.Points() {
		t.Insert(&gridSample{Point: p, row: k / nlon, col: k % nlon})
	}
	return t
}

// nearestLayer assigns each target point the value of the nearest
// source grid point.
func nearestLayer(layer *sparse.DenseArray, index *rtree.Rtree, target Grid) *sparse.DenseArray {
	o := sparse.ZerosDense(len(target.Lat), len(target.Lon))
	for j, lat := range target.Lat {
		for i, lon := range target.Lon {
			s := index.NearestNeighbor(geom.Point{X: lon, Y: lat}).(*gridSample)
			o.Set(layer.Get(s.row, s.col), j, i)
		}
	}
	return o
}

// idwLayer estimates each target point as the inverse-distance-squared
// weighted mean of the k nearest finite source samples. A target
// coinciding with a source point takes the source value exactly.
func idwLayer(layer *sparse.DenseArray, index *rtree.Rtree, target Grid, k int) *sparse.DenseArray {
	const coincident = 1.e-12

	o := sparse.ZerosDense(len(target.Lat), len(target.Lon))
	for j, lat := range target.Lat {
		for i, lon := range target.Lon {
			p := geom.Point{X: lon, Y: lat}
			var sum, weight float64
			exact := false
			for _, sI := range index.NearestNeighbors(k, p) {
				if sI == nil {
					// NearestNeighbors pads with nil when
					// fewer than k points are indexed.
					continue
				}
				s := sI.(*gridSample)
				v := layer.Get(s.row, s.col)
				if math.IsNaN(v) {
					continue
				}
				d := math.Hypot(s.X-p.X, s.Y-p.Y)
				if d < coincident {
					o.Set(v, j, i)
					exact = true
					break
				}
				w := 1 / (d * d)
				sum += w * v
				weight += w
			}
			if exact {
				continue
			}
			if weight == 0 {
				o.Set(math.NaN(), j, i)
				continue
			}
			o.Set(sum/weight, j, i)
		}
	}
	return o
}
