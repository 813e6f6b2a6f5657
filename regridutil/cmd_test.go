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

package regridutil

import (
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/regrid"
)

func TestConfigDefaults(t *testing.T) {
	cases := map[string]interface{}{
		"model-file":     "cmip_annual_mean_output.nc",
		"satellite-file": "vand_annual_mean_output.nc",
		"model-var":      "PM25_CMIP",
		"satellite-var":  "PM25_VAND",
		"kernel":         "bilinear",
		"idw-neighbors":  4,
		"no-mask":        false,
	}
	for name, want := range cases {
		if have := Cfg.Get(name); !reflect.DeepEqual(have, want) {
			t.Errorf("%s: want %v but have %v", name, want, have)
		}
	}
}

func TestRunMissingArguments(t *testing.T) {
	if err := Run("", "out.nc", "m.nc", "s.nc", "PM25_CMIP", "PM25_VAND", "bilinear", 4, true); err == nil {
		t.Error("want error for missing input directory but have nil")
	}
	if err := Run("testdata", "", "m.nc", "s.nc", "PM25_CMIP", "PM25_VAND", "bilinear", 4, true); err == nil {
		t.Error("want error for missing output file but have nil")
	}
	if err := Run("testdata", "out.nc", "m.nc", "s.nc", "PM25_CMIP", "PM25_VAND", "cubic", 4, true); err == nil {
		t.Error("want error for invalid kernel but have nil")
	}
}

// writeTestField saves a field on the given grid to path so the
// pipeline can read it back.
func writeTestField(t *testing.T, path, name string, lat, lon []float64, fill func(l, j, i int) float64, nt int) {
	t.Helper()
	data := sparse.ZerosDense(nt, len(lat), len(lon))
	for l := 0; l < nt; l++ {
		for j := range lat {
			for i := range lon {
				data.Set(fill(l, j, i), l, j, i)
			}
		}
	}
	field := &regrid.Field{
		Name:  name,
		Units: "ug m-3",
		Time:  []float64{2000, 2001}[:nt],
		Grid:  regrid.Grid{Lat: lat, Lon: lon},
		Data:  data,
	}
	if err := regrid.WriteField(path, field); err != nil {
		t.Fatal(err)
	}
}

func TestRunPipeline(t *testing.T) {
	const tolerance = 1.0e-6

	dir, err := ioutil.TempDir("", "regrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	// Coarse model field: two layers of constant concentration.
	writeTestField(t, filepath.Join(dir, "cmip_annual_mean_output.nc"), "PM25_CMIP",
		[]float64{0, 1, 2}, []float64{0, 1, 2},
		func(l, j, i int) float64 { return float64(l + 1) }, 2)

	// Finer satellite field with one masked cell.
	satLat := []float64{0.25, 0.75, 1.25, 1.75}
	satLon := []float64{0.25, 0.75, 1.25}
	writeTestField(t, filepath.Join(dir, "vand_annual_mean_output.nc"), "PM25_VAND",
		satLat, satLon,
		func(l, j, i int) float64 {
			if j == 0 && i == 0 {
				return math.NaN()
			}
			return 9
		}, 1)

	outputFile := filepath.Join(dir, "regridded_cmip.nc")
	err = Run(dir, outputFile, "cmip_annual_mean_output.nc", "vand_annual_mean_output.nc",
		"PM25_CMIP", "PM25_VAND", "bilinear", 4, true)
	if err != nil {
		t.Fatal(err)
	}

	out, err := regrid.ReadDataset(outputFile, "PM25_CMIP_REGRIDDED")
	if err != nil {
		t.Fatal(err)
	}
	wantShape := []int{2, len(satLat), len(satLon)}
	if !reflect.DeepEqual(out.Data.Shape, wantShape) {
		t.Fatalf("want shape %v but have shape %v", wantShape, out.Data.Shape)
	}
	if !reflect.DeepEqual(out.Grid.Lat, satLat) || !reflect.DeepEqual(out.Grid.Lon, satLon) {
		t.Error("output coordinates do not match the satellite grid")
	}
	for l := 0; l < 2; l++ {
		for j := range satLat {
			for i := range satLon {
				have := out.Data.Get(l, j, i)
				if j == 0 && i == 0 {
					// Masked by the satellite dataset.
					if !math.IsNaN(have) {
						t.Errorf("layer %d (0,0): want NaN but have %g", l, have)
					}
					continue
				}
				want := float64(l + 1)
				if math.Abs(have-want) > tolerance {
					t.Errorf("layer %d (%d,%d): want %g but have %g", l, j, i, want, have)
				}
			}
		}
	}

	// Identical inputs must give identical outputs.
	outputFile2 := filepath.Join(dir, "regridded_cmip2.nc")
	err = Run(dir, outputFile2, "cmip_annual_mean_output.nc", "vand_annual_mean_output.nc",
		"PM25_CMIP", "PM25_VAND", "bilinear", 4, true)
	if err != nil {
		t.Fatal(err)
	}
	out2, err := regrid.ReadDataset(outputFile2, "PM25_CMIP_REGRIDDED")
	if err != nil {
		t.Fatal(err)
	}
	for i := range out.Data.Elements {
		a, b := out.Data.Elements[i], out2.Data.Elements[i]
		if math.Float64bits(a) != math.Float64bits(b) {
			t.Errorf("element %d: %g != %g", i, a, b)
		}
	}
}

func TestRunMissingInput(t *testing.T) {
	dir, err := ioutil.TempDir("", "regrid")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	err = Run(dir, filepath.Join(dir, "out.nc"), "cmip_annual_mean_output.nc",
		"vand_annual_mean_output.nc", "PM25_CMIP", "PM25_VAND", "bilinear", 4, true)
	if _, ok := err.(*regrid.FileNotFoundError); !ok {
		t.Errorf("want FileNotFoundError but have %v", err)
	}
}
