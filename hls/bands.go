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

package hls

import "strings"

// BandsPerAcquisition is the fixed number of spectral bands pulled per scene
const BandsPerAcquisition = 6

// The two HLS sensor families expose the same six physical bands (blue,
// green, red, narrow NIR, SWIR1, SWIR2) under different band-code alphabets.
// Order here is the extraction order.
var sentinelBandCodes = [BandsPerAcquisition]string{"B02", "B03", "B04", "B8A", "B11", "B12"}
var landsatBandCodes = [BandsPerAcquisition]string{"B02", "B03", "B04", "B05", "B06", "B07"}

// Indexes of the visible bands within either band-code alphabet
const (
	BlueIndex  = 0
	GreenIndex = 1
	RedIndex   = 2
)

// BandsForCollection maps a collection identifier to its six band codes.
// The mapping is pure and total: it is keyed on the collection family prefix
// and anything that is not Sentinel-2 falls back to the Landsat alphabet.
func BandsForCollection(collectionID string) [BandsPerAcquisition]string {
	if strings.HasPrefix(collectionID, "HLSS30") {
		return sentinelBandCodes
	}
	return landsatBandCodes
}
