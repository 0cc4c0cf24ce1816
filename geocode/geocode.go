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

// Package geocode resolves free-text addresses to WGS84 coordinates via a
// Nominatim-style search endpoint. Geocoding is a soft dependency: every
// failure mode collapses to "unresolved" and is never raised to the caller.
package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
)

const lookupTimeout = 15 * time.Second

// Context is the context for a geocoding operation
type Context struct {
	GeocoderURL string
	sessionID   string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return "bloomwatch-broker"
}

// SessionID returns a session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = util.PsuUUID()
	}
	return c.sessionID
}

// NewContext builds a geocoding context from the environment
func NewContext() *Context {
	return &Context{GeocoderURL: util.GetGeocoderURL()}
}

type geocodeResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

var lookupClientFunc = func() *http.Client {
	return util.HTTPClientWithTimeout(lookupTimeout)
}

// Lookup issues a single best-effort free-text geocoding query and returns
// the first result's coordinate. The boolean is false whenever no usable
// coordinate was obtained; transport and parse errors are swallowed.
func Lookup(context *Context, query string) (model.Coordinate, bool) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	params.Set("addressdetails", "0")
	requestURL := context.GeocoderURL + "?" + params.Encode()

	request, err := http.NewRequest("GET", requestURL, nil)
	if err != nil {
		util.LogAlert(context, fmt.Sprintf("Failed to build geocode request for %v: %v", query, err))
		return model.Coordinate{}, false
	}
	request.Header.Set("User-Agent", util.UserAgent)

	util.LogAudit(context, util.LogAuditInput{
		Actor: "geocode/Lookup", Action: "GET", Actee: context.GeocoderURL,
		Message: "Geocoding address", Severity: util.INFO,
	})
	response, err := lookupClientFunc().Do(request)
	if err != nil {
		util.LogAlert(context, fmt.Sprintf("Geocode request failed: %v", err))
		return model.Coordinate{}, false
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		util.LogAlert(context, fmt.Sprintf("Geocoder returned %v for query %q", response.Status, query))
		return model.Coordinate{}, false
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		util.LogAlert(context, fmt.Sprintf("Failed reading geocode response: %v", err))
		return model.Coordinate{}, false
	}

	var results []geocodeResult
	if err = json.Unmarshal(body, &results); err != nil {
		util.LogAlert(context, fmt.Sprintf("Failed parsing geocode response: %v", err))
		return model.Coordinate{}, false
	}
	if len(results) == 0 {
		util.LogInfo(context, fmt.Sprintf("Geocoder found no results for %q", query))
		return model.Coordinate{}, false
	}

	lat, latErr := strconv.ParseFloat(results[0].Lat, 64)
	lon, lonErr := strconv.ParseFloat(results[0].Lon, 64)
	if latErr != nil || lonErr != nil {
		util.LogAlert(context, fmt.Sprintf("Geocoder returned non-numeric coordinates: lat=%q lon=%q", results[0].Lat, results[0].Lon))
		return model.Coordinate{}, false
	}

	coordinate := model.Coordinate{Lat: lat, Lon: lon}
	if !coordinate.Valid() {
		util.LogAlert(context, fmt.Sprintf("Geocoder returned out-of-range coordinate: %v", coordinate))
		return model.Coordinate{}, false
	}
	return coordinate, true
}
