package hls

import (
	"fmt"
	"math"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
)

// pixelWindow is a raster sub-region in pixel coordinates
type pixelWindow struct {
	Col    int
	Row    int
	Width  int
	Height int
}

// windowFromBounds computes the pixel window covering the bounding box under
// the given affine geotransform, clamped to the raster extent, along with
// the window's own geotransform. GDAL affine order: x = gt[0] + col*gt[1] +
// row*gt[2]; y = gt[3] + col*gt[4] + row*gt[5].
func windowFromBounds(gt [6]float64, box model.BoundingBox, sizeX, sizeY int) (pixelWindow, [6]float64, error) {
	det := gt[1]*gt[5] - gt[2]*gt[4]
	if det == 0 {
		return pixelWindow{}, [6]float64{}, fmt.Errorf("degenerate geotransform: %v", gt)
	}

	toPixel := func(x, y float64) (float64, float64) {
		col := ((x-gt[0])*gt[5] - (y-gt[3])*gt[2]) / det
		row := ((y-gt[3])*gt[1] - (x-gt[0])*gt[4]) / det
		return col, row
	}

	// Opposite corners are enough for axis-aligned transforms; rotation terms
	// are folded in by the inverse above.
	c0, r0 := toPixel(box.West, box.North)
	c1, r1 := toPixel(box.East, box.South)

	colMin := math.Min(c0, c1)
	colMax := math.Max(c0, c1)
	rowMin := math.Min(r0, r1)
	rowMax := math.Max(r0, r1)

	col := int(math.Max(0, math.Floor(colMin+0.5)))
	row := int(math.Max(0, math.Floor(rowMin+0.5)))
	colEnd := int(math.Min(float64(sizeX), math.Floor(colMax+0.5)))
	rowEnd := int(math.Min(float64(sizeY), math.Floor(rowMax+0.5)))

	window := pixelWindow{Col: col, Row: row, Width: colEnd - col, Height: rowEnd - row}
	if window.Width <= 0 || window.Height <= 0 {
		return pixelWindow{}, [6]float64{}, fmt.Errorf("requested bounds %v do not intersect the raster", box)
	}

	windowTransform := gt
	windowTransform[0] = gt[0] + float64(window.Col)*gt[1] + float64(window.Row)*gt[2]
	windowTransform[3] = gt[3] + float64(window.Col)*gt[4] + float64(window.Row)*gt[5]
	return window, windowTransform, nil
}
