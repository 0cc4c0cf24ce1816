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

package util

import "os"

// Environment variables
const (
	EARTHDATA_TOKEN = "EARTHDATA_TOKEN"
	CMR_STAC_URL    = "CMR_STAC_URL"
	CMR_GRANULE_URL = "CMR_GRANULE_URL"
	NOMINATIM_URL   = "NOMINATIM_URL"
	OUTPUT_DIR      = "OUTPUT_DIR"
)

const defaultStacRootURL = "https://cmr.earthdata.nasa.gov/stac/LPCLOUD"
const defaultGranuleSearchURL = "https://cmr.earthdata.nasa.gov/search/granules.json"
const defaultGeocoderURL = "https://nominatim.openstreetmap.org/search"
const defaultOutputDir = "assets"

// GetStacRootURL returns the CMR STAC catalog root, from CMR_STAC_URL if set
func GetStacRootURL() string {
	if stacURL, ok := os.LookupEnv(CMR_STAC_URL); ok {
		return stacURL
	}
	return defaultStacRootURL
}

// GetGranuleSearchURL returns the legacy CMR granule search endpoint,
// from CMR_GRANULE_URL if set
func GetGranuleSearchURL() string {
	if granuleURL, ok := os.LookupEnv(CMR_GRANULE_URL); ok {
		return granuleURL
	}
	return defaultGranuleSearchURL
}

// GetGeocoderURL returns the Nominatim search endpoint, from NOMINATIM_URL if set
func GetGeocoderURL() string {
	if geocoderURL, ok := os.LookupEnv(NOMINATIM_URL); ok {
		return geocoderURL
	}
	return defaultGeocoderURL
}

// GetEarthdataToken returns the bearer token for cloud-hosted HLS assets.
// A missing token is a configuration warning, not a failure; protected
// assets will reject the first read and the pipeline reports that instead.
func GetEarthdataToken() string {
	token, ok := os.LookupEnv(EARTHDATA_TOKEN)
	if !ok || token == "" {
		LogAlert(&BasicLogContext{}, "No EARTHDATA_TOKEN in environment. Protected HLS assets will return 401/403.")
	}
	return token
}

// GetOutputDir returns the directory artifacts are written to,
// from OUTPUT_DIR if set
func GetOutputDir() string {
	if dir, ok := os.LookupEnv(OUTPUT_DIR); ok {
		return dir
	}
	return defaultOutputDir
}
