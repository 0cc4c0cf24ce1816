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

// Package tile runs the fetch pipeline: locate the point, search the
// catalog, extract the band stack, assemble the artifacts. Each stage
// carries its own fallbacks internally; the pipeline as a whole is never
// retried, and a terminal stage failure aborts with a short status string.
package tile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/catalog"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/geocode"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/hls"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/raster"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
)

// ask the catalog for more candidates than we composite so ranking has
// something to choose from
const candidateLimit = 20

// metric radius of the extraction buffer (~1 km box)
const extractBufferMeters = 500.0

// Context is the context for one pipeline invocation. Pipelines share no
// state: independent invocations may run in parallel freely.
type Context struct {
	Geocode   *geocode.Context
	Catalog   *catalog.Context
	Extract   *hls.Context
	OutputDir string
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

// NewContext builds a pipeline context from the environment
func NewContext() *Context {
	return &Context{
		Geocode:   geocode.NewContext(),
		Catalog:   catalog.NewContext(),
		Extract:   hls.NewContext(),
		OutputDir: util.GetOutputDir(),
	}
}

// FetchInput is the caller-facing request: an explicit coordinate as text,
// or an address to geocode, plus the target date (YYYY-MM-DD)
type FetchInput struct {
	LatText  string
	LonText  string
	Address  string
	DateText string
}

// FetchResult is the caller-facing outcome: a short status string and the
// artifact paths. PreviewPath is empty when preview generation failed.
type FetchResult struct {
	Status      string
	TilePath    string
	PreviewPath string
}

// Seams for tests
var geocodeLookupFunc = geocode.Lookup
var searchFunc = catalog.Search
var extractFunc = hls.Extract
var writeCompositeFunc = raster.WriteComposite
var writePreviewFunc = raster.WritePreview
var nowFunc = time.Now

// FetchTile runs the full pipeline for one request. On failure the returned
// error is always a *model.PipelineFailure whose Status matches the result's.
func FetchTile(context *Context, input FetchInput) (FetchResult, error) {
	start := nowFunc()

	coordinate, ok := resolveLocation(context, input)
	if !ok {
		return fail(model.NewPipelineFailure(model.LocationUnresolved,
			"Provide lat/lon or a valid address.", nil))
	}

	targetDate := resolveDate(context, input.DateText)

	acquisitions, strategyName := searchFunc(context.Catalog, catalog.SearchOptions{
		Point:      coordinate,
		TargetDate: targetDate,
		Limit:      candidateLimit,
	})
	if len(acquisitions) == 0 {
		return fail(model.NewPipelineFailure(model.NoCandidateAcquisitions,
			"No HLS items found near that point/date. Try adjusting date.", nil))
	}
	util.LogInfo(context, fmt.Sprintf("Catalog search resolved by %v with %d candidates", strategyName, len(acquisitions)))
	if len(acquisitions) > hls.RequiredAcquisitions {
		acquisitions = acquisitions[:hls.RequiredAcquisitions]
	}

	buffer := model.BufferAround(coordinate, extractBufferMeters)
	stack, err := extractFunc(context.Extract, acquisitions, buffer)
	if err != nil {
		return fail(asPipelineFailure(err))
	}

	if err = os.MkdirAll(context.OutputDir, 0o755); err != nil {
		return fail(model.NewPipelineFailure(model.WriteFailure,
			"Could not create the output directory.", err))
	}
	tifName, pngName := ArtifactNames(coordinate, targetDate)
	tifPath := filepath.Join(context.OutputDir, tifName)
	pngPath := filepath.Join(context.OutputDir, pngName)

	if err = writeCompositeFunc(stack, tifPath); err != nil {
		return fail(asPipelineFailure(err))
	}

	result := FetchResult{Status: "Tile ready.", TilePath: tifPath, PreviewPath: pngPath}
	if err = writePreviewFunc(stack, pngPath); err != nil {
		// non-fatal: the composite raster already succeeded
		util.LogAlert(context, fmt.Sprintf("Preview generation failed: %v", err))
		result.PreviewPath = ""
		result.Status = "Tile ready. Preview could not be generated."
	}

	pipelineOutcomes.WithLabelValues("success").Inc()
	pipelineDuration.Observe(nowFunc().Sub(start).Seconds())
	return result, nil
}

// resolveLocation implements the locator contract: a well-formed explicit
// coordinate wins without any network call; otherwise a single best-effort
// geocode of the address text
func resolveLocation(context *Context, input FetchInput) (model.Coordinate, bool) {
	lat, latErr := strconv.ParseFloat(strings.TrimSpace(input.LatText), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(input.LonText), 64)
	if latErr == nil && lonErr == nil {
		coordinate := model.Coordinate{Lat: lat, Lon: lon}
		if coordinate.Valid() {
			return coordinate, true
		}
		util.LogAlert(context, fmt.Sprintf("Supplied coordinate %v is out of range", coordinate))
	}

	address := strings.TrimSpace(input.Address)
	if address != "" {
		return geocodeLookupFunc(context.Geocode, address)
	}
	return model.Coordinate{}, false
}

// resolveDate parses the requested date, falling back to today (UTC) when
// the text is absent or unparseable
func resolveDate(context *Context, dateText string) time.Time {
	trimmed := strings.TrimSpace(dateText)
	if trimmed != "" {
		if parsed, err := time.Parse("2006-01-02", trimmed); err == nil {
			return parsed.UTC()
		}
		util.LogAlert(context, fmt.Sprintf("Could not parse date %q; using today", trimmed))
	}
	now := nowFunc().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func asPipelineFailure(err error) *model.PipelineFailure {
	if failure, ok := err.(*model.PipelineFailure); ok {
		return failure
	}
	return model.NewPipelineFailure(model.WriteFailure, err.Error(), err)
}

func fail(failure *model.PipelineFailure) (FetchResult, error) {
	pipelineOutcomes.WithLabelValues(string(failure.Kind)).Inc()
	return FetchResult{Status: failure.Status}, failure
}
