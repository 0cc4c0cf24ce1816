package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"sort"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/hls"
)

const stretchLowPercentile = 2.0
const stretchHighPercentile = 98.0

// floor on the stretch denominator so constant-valued channels stay flat
// instead of dividing by zero
const minStretchRange = 1e-6

// WritePreview encodes an 8-bit RGB preview built from the most recent
// acquisition's visible bands in red, green, blue display order, each
// channel independently contrast-stretched to its own 2nd to 98th percentile.
func WritePreview(stack *hls.BandStack, path string) error {
	if stack == nil || len(stack.Grids) < hls.BandsPerAcquisition {
		return fmt.Errorf("band stack too small for a preview: %d grids", gridCount(stack))
	}

	// last acquisition occupies the final six grids, in canonical band order
	base := len(stack.Grids) - hls.BandsPerAcquisition
	red := stack.Grids[base+hls.RedIndex]
	green := stack.Grids[base+hls.GreenIndex]
	blue := stack.Grids[base+hls.BlueIndex]

	width, height := red.Width, red.Height
	if green.Width != width || green.Height != height || blue.Width != width || blue.Height != height {
		return fmt.Errorf("visible band shapes do not match: %dx%d / %dx%d / %dx%d",
			red.Width, red.Height, green.Width, green.Height, blue.Width, blue.Height)
	}

	redBytes := stretchChannel(red.Data)
	greenBytes := stretchChannel(green.Data)
	blueBytes := stretchChannel(blue.Data)

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < width*height; i++ {
		offset := i * 4
		img.Pix[offset+0] = redBytes[i]
		img.Pix[offset+1] = greenBytes[i]
		img.Pix[offset+2] = blueBytes[i]
		img.Pix[offset+3] = 0xff
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	return file.Close()
}

func gridCount(stack *hls.BandStack) int {
	if stack == nil {
		return 0
	}
	return len(stack.Grids)
}

// stretchChannel normalizes one channel to [0,1] against its own 2nd to 98th
// percentile range, clips, and scales to 8-bit. The stretch is monotonic.
func stretchChannel(values []float64) []uint8 {
	low, high := percentileRange(values, stretchLowPercentile, stretchHighPercentile)
	span := high - low
	if span < minStretchRange {
		span = minStretchRange
	}

	out := make([]uint8, len(values))
	for i, v := range values {
		normalized := (v - low) / span
		if normalized < 0 {
			normalized = 0
		}
		if normalized > 1 {
			normalized = 1
		}
		out[i] = uint8(normalized * 255)
	}
	return out
}

// percentileRange computes two percentiles of the values with linear
// interpolation between order statistics
func percentileRange(values []float64, lowPct, highPct float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return percentileOf(sorted, lowPct), percentileOf(sorted, highPct)
}

func percentileOf(sorted []float64, pct float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	position := pct / 100.0 * float64(len(sorted)-1)
	lower := int(position)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	fraction := position - float64(lower)
	return sorted[lower]*(1-fraction) + sorted[lower+1]*fraction
}
