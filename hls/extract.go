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

// Package hls extracts co-registered band windows from cloud-hosted HLS
// surface-reflectance rasters. Reads are windowed: only the pixels
// intersecting the requested buffer are fetched, via HTTP range requests.
package hls

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
	"github.com/airbusgeo/godal"
)

// RequiredAcquisitions is the number of timesteps composited per tile
const RequiredAcquisitions = 3

// RequiredGrids is the fixed band count of the output composite
const RequiredGrids = RequiredAcquisitions * BandsPerAcquisition

const preflightTimeout = 30 * time.Second
const preflightRange = "bytes=0-16383"

// Context is the context for a band extraction operation
type Context struct {
	Token     string
	sessionID string
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

// NewContext builds an extraction context from the environment
func NewContext() *Context {
	return &Context{Token: util.GetEarthdataToken()}
}

// BandGrid is one band's windowed read: a single 2-D raster array
type BandGrid struct {
	Data   []float64
	Width  int
	Height int
}

// BandStack is the ordered sequence of band grids for the composite:
// acquisitions outer, the six canonical bands inner. Transform is the
// georeferencing of the windowed read, taken from the last band read.
type BandStack struct {
	Grids     []*BandGrid
	Transform [6]float64
}

// Seams for tests; raster reads need a GDAL runtime
var preflightAssetFunc = preflightAsset
var readWindowFunc = readBandWindow

// Extract reads the six required bands of every acquisition, windowed to the
// buffer, and assembles them into a single fixed-size stack. An acquisition
// missing any band, or failing any read, contributes nothing: the stack only
// ever holds whole scenes, so its length is always a multiple of six.
// An authorization failure aborts immediately; no fallback can fix a missing
// credential within the same session.
func Extract(context *Context, acquisitions []model.Acquisition, buffer model.BoundingBox) (*BandStack, error) {
	stack := &BandStack{}

	for _, acquisition := range acquisitions {
		codes := BandsForCollection(acquisition.Collection)

		hrefs := make([]string, 0, BandsPerAcquisition)
		for _, code := range codes {
			ref, ok := acquisition.Assets[code]
			if !ok || ref.BestHref() == "" {
				util.LogAlert(context, fmt.Sprintf("Band %v missing in %v acquisition; skipping scene", code, acquisition.Collection))
				hrefs = nil
				break
			}
			hrefs = append(hrefs, ref.BestHref())
		}
		if hrefs == nil {
			continue
		}

		grids := make([]*BandGrid, 0, BandsPerAcquisition)
		var lastTransform [6]float64
		for _, href := range hrefs {
			if err := preflightAssetFunc(context, href); err != nil {
				if model.IsFailureKind(err, model.UnauthorizedAsset) {
					return nil, err
				}
				// transport hiccups on the probe are not conclusive; the
				// ranged raster read below gets its own chance
				util.LogAlert(context, fmt.Sprintf("Asset preflight failed for %v: %v", href, err))
			}

			grid, transform, err := readWindowFunc(context, href, buffer)
			if err != nil {
				util.LogAlert(context, fmt.Sprintf("Windowed read failed for %v; dropping scene: %v", href, err))
				grids = nil
				break
			}
			grids = append(grids, grid)
			lastTransform = transform
		}
		if grids == nil {
			continue
		}

		stack.Grids = append(stack.Grids, grids...)
		stack.Transform = lastTransform
	}

	if len(stack.Grids) != RequiredGrids {
		status := fmt.Sprintf("Expected %d band slices, got %d. If you set EARTHDATA_TOKEN, ensure it is valid and restart.", RequiredGrids, len(stack.Grids))
		return nil, model.NewPipelineFailure(model.IncompleteBandStack, status, nil)
	}
	return stack, nil
}

// preflightAsset probes the asset with a small partial-content read before
// committing to a full raster open. 401/403 is fatal for the whole session.
func preflightAsset(context *Context, href string) error {
	request, err := http.NewRequest("GET", href, nil)
	if err != nil {
		return err
	}
	request.Header.Set("Range", preflightRange)
	request.Header.Set("User-Agent", util.UserAgent)
	if context.Token != "" {
		request.Header.Set("Authorization", "Bearer "+context.Token)
	}

	util.LogAudit(context, util.LogAuditInput{
		Actor: "hls/preflightAsset", Action: "GET", Actee: href,
		Message: "Probing HLS asset readability", Severity: util.INFO,
	})
	response, err := util.HTTPClientWithTimeout(preflightTimeout).Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden {
		return model.NewPipelineFailure(model.UnauthorizedAsset,
			"Unauthorized (401/403) reading HLS asset. Ensure EARTHDATA_TOKEN is set and valid.",
			util.HTTPErr{Status: response.StatusCode, Message: response.Status})
	}
	return nil
}

var registerDriversOnce sync.Once

func registerDrivers() {
	registerDriversOnce.Do(godal.RegisterAll)
}

func gdalOpenOptions(context *Context) []string {
	headers := "User-Agent: " + util.UserAgent
	if context.Token != "" {
		headers = "Authorization: Bearer " + context.Token + "\r\n" + headers
	}
	// range/HEAD quirks of the Earthdata cloud endpoints
	return []string{
		"GDAL_HTTP_HEADERS=" + headers,
		"CPL_VSIL_CURL_USE_HEAD=NO",
		"GDAL_DISABLE_READDIR_ON_OPEN=EMPTY_DIR",
		"GDAL_HTTP_MULTIRANGE=YES",
		"GDAL_HTTP_TIMEOUT=120",
	}
}

func vsiPath(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return "/vsicurl/" + href
	}
	return href
}

// readBandWindow opens the remote raster, reprojects it to WGS84 through a
// warped VRT when needed, and reads exactly the pixel window covering the
// buffer from its first band. The dataset handle is released before return
// on every path.
func readBandWindow(context *Context, href string, buffer model.BoundingBox) (*BandGrid, [6]float64, error) {
	registerDrivers()

	dataset, err := godal.Open(vsiPath(href), godal.ConfigOption(gdalOpenOptions(context)...))
	if err != nil {
		return nil, [6]float64{}, fmt.Errorf("failed to open raster %v: %w", href, err)
	}
	defer dataset.Close()

	wgs84, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return nil, [6]float64{}, err
	}
	defer wgs84.Close()

	source := dataset
	if sourceRef := dataset.SpatialRef(); sourceRef != nil && !sourceRef.IsSame(wgs84) {
		warped, err := dataset.Warp("", []string{"-of", "VRT", "-t_srs", "EPSG:4326", "-r", "bilinear"})
		if err != nil {
			return nil, [6]float64{}, fmt.Errorf("failed to build reprojecting view for %v: %w", href, err)
		}
		defer warped.Close()
		source = warped
	}

	transform, err := source.GeoTransform()
	if err != nil {
		return nil, [6]float64{}, err
	}
	structure := source.Structure()
	window, windowTransform, err := windowFromBounds(transform, buffer, structure.SizeX, structure.SizeY)
	if err != nil {
		return nil, [6]float64{}, err
	}

	bands := source.Bands()
	if len(bands) == 0 {
		return nil, [6]float64{}, fmt.Errorf("raster %v has no bands", href)
	}

	data := make([]float64, window.Width*window.Height)
	if err := bands[0].Read(window.Col, window.Row, data, window.Width, window.Height); err != nil {
		return nil, [6]float64{}, fmt.Errorf("windowed read failed for %v: %w", href, err)
	}

	return &BandGrid{Data: data, Width: window.Width, Height: window.Height}, windowTransform, nil
}
