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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/regrid"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
		DisableSorting:  true,
	})
}

// outChan returns a channel that logs the messages sent to it.
func outChan() chan string {
	c := make(chan string)
	go func() {
		for msg := range c {
			logger.Info(msg)
		}
	}()
	return c
}

// Run executes the regridding pipeline: it reads the model and
// satellite datasets from inputDir, interpolates each time layer of
// the model variable onto the satellite grid using the named kernel,
// optionally transfers the satellite data mask, and writes the result
// to outputFile. Any failure is fatal; no partial output is produced.
func Run(inputDir, outputFile, modelFile, satelliteFile, modelVar, satelliteVar, kernel string, idwNeighbors int, mask bool) error {
	if inputDir == "" {
		return fmt.Errorf("regrid: an input directory must be specified (--input-dir)")
	}
	if outputFile == "" {
		return fmt.Errorf("regrid: an output file must be specified (--output-file)")
	}
	k, err := regrid.ParseKernel(kernel)
	if err != nil {
		return err
	}

	logger.Info("Reading input data.")
	modelPath, satellitePath, err := regrid.InputPaths(inputDir, modelFile, satelliteFile)
	if err != nil {
		return err
	}
	model, err := regrid.ReadDataset(modelPath, modelVar)
	if err != nil {
		return err
	}
	satellite, err := regrid.ReadDataset(satellitePath, satelliteVar)
	if err != nil {
		return err
	}
	b := satellite.Grid.Bounds()
	logger.Infof("Regridding %d layers of %s onto a %d×%d grid spanning (%g, %g) to (%g, %g).",
		model.Layers(), model.Name, len(satellite.Grid.Lat), len(satellite.Grid.Lon),
		b.Min.Y, b.Min.X, b.Max.Y, b.Max.X)

	ip := &regrid.Interpolator{
		Kernel:    k,
		Neighbors: idwNeighbors,
		MsgChan:   outChan(),
	}
	out, err := ip.Regrid(model, satellite.Grid)
	if err != nil {
		return err
	}
	out.Name = model.Name + "_REGRIDDED"

	if mask {
		if err := out.MaskBy(satellite); err != nil {
			return err
		}
	}

	logger.Infof("Saving regridded data to %s.", outputFile)
	return regrid.WriteField(outputFile, out)
}
