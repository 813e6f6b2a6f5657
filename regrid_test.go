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
	"testing"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

func TestGridBounds(t *testing.T) {
	g := Grid{Lat: []float64{3, 2, 1}, Lon: []float64{-10, 0, 10}}
	b := g.Bounds()
	want := &geom.Bounds{
		Min: geom.Point{X: -10, Y: 1},
		Max: geom.Point{X: 10, Y: 3},
	}
	if *b != *want {
		t.Errorf("want %+v but have %+v", want, b)
	}
}

func TestGridPoints(t *testing.T) {
	g := Grid{Lat: []float64{0, 1}, Lon: []float64{5, 6}}
	want := []geom.Point{
		{X: 5, Y: 0}, {X: 6, Y: 0},
		{X: 5, Y: 1}, {X: 6, Y: 1},
	}
	p := g.Points()
	if len(p) != g.Size() {
		t.Fatalf("want %d points but have %d", g.Size(), len(p))
	}
	for i, w := range want {
		if p[i] != w {
			t.Errorf("point %d: want %+v but have %+v", i, w, p[i])
		}
	}
}

func TestGridEqual(t *testing.T) {
	g := Grid{Lat: []float64{0, 1}, Lon: []float64{5, 6}}
	cases := []struct {
		o    Grid
		want bool
	}{
		{Grid{Lat: []float64{0, 1}, Lon: []float64{5, 6}}, true},
		{Grid{Lat: []float64{0, 1.5}, Lon: []float64{5, 6}}, false},
		{Grid{Lat: []float64{0, 1, 2}, Lon: []float64{5, 6}}, false},
		{Grid{Lat: []float64{0, 1 + 1.e-12}, Lon: []float64{5, 6}}, true},
	}
	for i, c := range cases {
		if have := g.Equal(c.o, 1.e-10); have != c.want {
			t.Errorf("case %d: want %v but have %v", i, c.want, have)
		}
	}
}

func TestMonotonic(t *testing.T) {
	cases := []struct {
		vals []float64
		want bool
	}{
		{[]float64{0, 1, 2}, true},
		{[]float64{2, 1, 0}, true},
		{[]float64{0, 2, 1}, false},
		{[]float64{0, 0, 1}, false},
		{[]float64{5}, true},
		{nil, true},
	}
	for i, c := range cases {
		if have := monotonic(c.vals); have != c.want {
			t.Errorf("case %d (%v): want %v but have %v", i, c.vals, c.want, have)
		}
	}
}

func TestFieldLayer(t *testing.T) {
	data := sparse.ZerosDense(2, 2, 3)
	for i := range data.Elements {
		data.Elements[i] = float64(i)
	}
	f := &Field{Grid: Grid{Lat: []float64{0, 1}, Lon: []float64{0, 1, 2}}, Data: data}

	if f.Layers() != 2 {
		t.Fatalf("want 2 layers but have %d", f.Layers())
	}
	l1 := f.Layer(1)
	for j := 0; j < 2; j++ {
		for i := 0; i < 3; i++ {
			want := data.Get(1, j, i)
			if have := l1.Get(j, i); have != want {
				t.Errorf("(%d,%d): want %g but have %g", j, i, want, have)
			}
		}
	}

	f2 := &Field{Grid: f.Grid, Data: sparse.ZerosDense(2, 3)}
	if f2.Layers() != 1 {
		t.Errorf("want 1 layer but have %d", f2.Layers())
	}
}
