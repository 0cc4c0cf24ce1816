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

package model

import (
	"fmt"
	"math"

	"github.com/venicegeo/geojson-go/geojson"
)

// Coordinate is a WGS84 latitude/longitude pair in degrees
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate lies inside the WGS84 domain
func (c Coordinate) Valid() bool {
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

func (c Coordinate) String() string {
	return fmt.Sprintf("%.6f,%.6f", c.Lat, c.Lon)
}

// BoundingBox is a rectangular extent in degrees: west, south, east, north
type BoundingBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

const degreesPerMeter = 1.0 / 111320.0

// cos(lat) is floored to keep the longitude buffer finite near the poles
const minCosLat = 0.1

// DegreeBuffer converts a metric radius at the given latitude to degree
// offsets (dLat, dLon), using an equirectangular approximation
func DegreeBuffer(lat float64, meters float64) (float64, float64) {
	dLat := meters * degreesPerMeter
	cosLat := math.Abs(math.Cos(lat * math.Pi / 180.0))
	dLon := meters * degreesPerMeter / math.Max(minCosLat, cosLat)
	return dLat, dLon
}

// BufferAround builds the bounding box of the given metric radius centered
// on the coordinate
func BufferAround(c Coordinate, meters float64) BoundingBox {
	dLat, dLon := DegreeBuffer(c.Lat, meters)
	return BoundingBox{
		West:  c.Lon - dLon,
		South: c.Lat - dLat,
		East:  c.Lon + dLon,
		North: c.Lat + dLat,
	}
}

// Slice returns the box in GeoJSON bbox order: west, south, east, north
func (b BoundingBox) Slice() []float64 {
	return []float64{b.West, b.South, b.East, b.North}
}

// GeoJSON returns the box as a geojson-go bounding box
func (b BoundingBox) GeoJSON() geojson.BoundingBox {
	return geojson.BoundingBox(b.Slice())
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%v,%v,%v,%v", b.West, b.South, b.East, b.North)
}
