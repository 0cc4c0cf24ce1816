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

package raster

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/hls"
	"github.com/stretchr/testify/assert"
)

func rampGrid(width, height int, start, step float64) *hls.BandGrid {
	data := make([]float64, width*height)
	for i := range data {
		data[i] = start + float64(i)*step
	}
	return &hls.BandGrid{Data: data, Width: width, Height: height}
}

func constantGrid(width, height int, value float64) *hls.BandGrid {
	data := make([]float64, width*height)
	for i := range data {
		data[i] = value
	}
	return &hls.BandGrid{Data: data, Width: width, Height: height}
}

// previewStack builds a single-scene stack; previews only look at the last
// six grids so one scene is representative
func previewStack(grids ...*hls.BandGrid) *hls.BandStack {
	return &hls.BandStack{Grids: grids}
}

func TestWritePreview_ProducesDecodablePNG(t *testing.T) {
	stack := previewStack(
		rampGrid(8, 8, 100, 2), // blue
		rampGrid(8, 8, 200, 3), // green
		rampGrid(8, 8, 300, 4), // red
		constantGrid(8, 8, 0),
		constantGrid(8, 8, 0),
		constantGrid(8, 8, 0),
	)
	path := filepath.Join(t.TempDir(), "preview.png")

	err := WritePreview(stack, path)
	assert.NoError(t, err)

	file, err := os.Open(path)
	assert.NoError(t, err)
	defer file.Close()
	img, err := png.Decode(file)
	assert.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
}

func TestWritePreview_UsesLastSceneVisibleBands(t *testing.T) {
	// two scenes; the first scene's channels are constant zero and must not
	// appear in the preview
	grids := []*hls.BandGrid{}
	for i := 0; i < hls.BandsPerAcquisition; i++ {
		grids = append(grids, constantGrid(4, 4, 0))
	}
	grids = append(grids,
		constantGrid(4, 4, 50),    // blue
		rampGrid(4, 4, 0, 10),     // green
		constantGrid(4, 4, 10000), // red
		constantGrid(4, 4, 0),
		constantGrid(4, 4, 0),
		constantGrid(4, 4, 0),
	)
	path := filepath.Join(t.TempDir(), "preview.png")

	err := WritePreview(previewStack(grids...), path)
	assert.NoError(t, err)

	file, _ := os.Open(path)
	defer file.Close()
	img, err := png.Decode(file)
	assert.NoError(t, err)

	// the green ramp must show a gradient between first and last pixel
	_, firstGreen, _, _ := img.At(0, 0).RGBA()
	_, lastGreen, _, _ := img.At(3, 3).RGBA()
	assert.Less(t, firstGreen, lastGreen)
}

func TestWritePreview_TooFewGrids(t *testing.T) {
	stack := previewStack(constantGrid(4, 4, 1), constantGrid(4, 4, 1))
	err := WritePreview(stack, filepath.Join(t.TempDir(), "preview.png"))
	assert.Error(t, err)
}

func TestWritePreview_MismatchedShapes(t *testing.T) {
	stack := previewStack(
		constantGrid(4, 4, 1),
		constantGrid(8, 8, 1),
		constantGrid(4, 4, 1),
		constantGrid(4, 4, 1),
		constantGrid(4, 4, 1),
		constantGrid(4, 4, 1),
	)
	err := WritePreview(stack, filepath.Join(t.TempDir(), "preview.png"))
	assert.Error(t, err)
}

func TestStretchChannel_MonotonicAndClipped(t *testing.T) {
	values := []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	stretched := stretchChannel(values)

	for i := 1; i < len(stretched); i++ {
		assert.GreaterOrEqual(t, stretched[i], stretched[i-1])
	}
	assert.Equal(t, uint8(0), stretched[0])
	assert.Equal(t, uint8(255), stretched[len(stretched)-1])
}

func TestStretchChannel_ConstantInputStaysFlat(t *testing.T) {
	values := []float64{42, 42, 42, 42}
	stretched := stretchChannel(values)
	for _, v := range stretched {
		assert.Equal(t, stretched[0], v)
	}
}

func TestPercentileRange(t *testing.T) {
	values := []float64{5, 1, 3, 2, 4}
	low, high := percentileRange(values, 0, 100)
	assert.Equal(t, 1.0, low)
	assert.Equal(t, 5.0, high)

	mid, _ := percentileRange(values, 50, 100)
	assert.Equal(t, 3.0, mid)
}

func TestPercentileRange_Empty(t *testing.T) {
	low, high := percentileRange(nil, 2, 98)
	assert.Equal(t, 0.0, low)
	assert.Equal(t, 0.0, high)
}
