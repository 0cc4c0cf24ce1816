// Copyright 2024, BloomWatch Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package raster persists the extracted band stack as analysis-ready
// artifacts: a georeferenced multi-band GeoTIFF and an 8-bit RGB preview.
package raster

import (
	"fmt"
	"os"
	"sync"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/hls"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/airbusgeo/godal"
)

var registerDriversOnce sync.Once

func registerDrivers() {
	registerDriversOnce.Do(godal.RegisterAll)
}

func writeFailure(path string, cause error, detail string) error {
	// never leave a partial raster behind
	os.Remove(path)
	return model.NewPipelineFailure(model.WriteFailure,
		fmt.Sprintf("Could not write composite raster: %v.", detail), cause)
}

// WriteComposite writes the band stack as a single multi-band GeoTIFF, one
// input grid per band in insertion order, tagged with the recorded affine
// transform and WGS84, deflate-compressed (lossless). The dataset is owned
// by this call and released once persisted.
func WriteComposite(stack *hls.BandStack, path string) error {
	if stack == nil || len(stack.Grids) == 0 {
		return writeFailure(path, nil, "empty band stack")
	}
	width := stack.Grids[0].Width
	height := stack.Grids[0].Height
	for i, grid := range stack.Grids {
		if grid.Width != width || grid.Height != height {
			return writeFailure(path, nil,
				fmt.Sprintf("band %d shape %dx%d does not match %dx%d", i+1, grid.Width, grid.Height, width, height))
		}
	}

	registerDrivers()

	dataset, err := godal.Create(godal.GTiff, path, len(stack.Grids), godal.Float64, width, height,
		godal.CreationOption("COMPRESS=DEFLATE", "PREDICTOR=3"))
	if err != nil {
		return writeFailure(path, err, "could not create output dataset")
	}

	if err = dataset.SetGeoTransform(stack.Transform); err != nil {
		dataset.Close()
		return writeFailure(path, err, "could not set geotransform")
	}
	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		dataset.Close()
		return writeFailure(path, err, "could not build WGS84 reference")
	}
	err = dataset.SetSpatialRef(wgs84)
	wgs84.Close()
	if err != nil {
		dataset.Close()
		return writeFailure(path, err, "could not set spatial reference")
	}

	bands := dataset.Bands()
	for i, grid := range stack.Grids {
		if err = bands[i].Write(0, 0, grid.Data, grid.Width, grid.Height); err != nil {
			dataset.Close()
			return writeFailure(path, err, fmt.Sprintf("band %d write failed", i+1))
		}
	}

	if err = dataset.Close(); err != nil {
		return writeFailure(path, err, "could not flush output dataset")
	}
	return nil
}
