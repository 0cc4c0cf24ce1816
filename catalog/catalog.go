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

// Package catalog locates candidate HLS acquisitions for a point and date by
// querying the CMR STAC catalog through a cascade of query strategies. Some
// catalog backends reject point geometries, some reject POST search bodies
// entirely, so the cascade degrades from the precise query shape down to a
// metadata-only granule listing.
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
	"github.com/venicegeo/geojson-go/geojson"
)

// bbox strategies use a tight box around the point
const searchBufferMeters = 200.0

const granulePageSize = 10
const granuleProvider = "LPDAAC_ECS"

type strategyFunc func(*Context, SearchOptions, searchWindow) ([]model.Acquisition, error)

type strategy struct {
	name string
	run  strategyFunc
}

// The cascade, in order. Each strategy is independent and never retried on
// top of itself; the first one returning a non-empty result set wins.
var strategies = []strategy{
	{"search-point", searchPointIntersects},
	{"search-bbox", searchSmallBbox},
	{"collection-items", searchPerCollectionItems},
	{"granule-metadata", searchGranuleFallback},
}

var nowFunc = time.Now

// Search finds candidate acquisitions near the point within ± 15 days of the
// target date, ordered by absolute time distance to the target (stable).
// An empty result is a valid outcome, not an error: strategy failures are
// logged and swallowed. The second return names the winning strategy, for
// diagnostics only.
func Search(context *Context, options SearchOptions) ([]model.Acquisition, string) {
	window, ok := windowAround(options.TargetDate, nowFunc().UTC())
	if !ok {
		util.LogInfo(context, fmt.Sprintf("Search window for %v inverts after clamping to today; no imagery can exist yet", options.TargetDate.Format("2006-01-02")))
		return nil, ""
	}

	for _, s := range strategies {
		strategyAttempts.WithLabelValues(s.name).Inc()
		acquisitions, err := s.run(context, options, window)
		if err != nil {
			strategyFailures.WithLabelValues(s.name).Inc()
			util.LogAlert(context, fmt.Sprintf("Catalog strategy %v failed, falling through: %v", s.name, err))
			continue
		}
		if len(acquisitions) == 0 {
			continue
		}
		strategyWins.WithLabelValues(s.name).Inc()
		for i := range acquisitions {
			acquisitions[i].FoundBy = s.name
		}
		model.RankByProximity(acquisitions, options.TargetDate)
		util.LogInfo(context, fmt.Sprintf("Catalog strategy %v found %d acquisitions", s.name, len(acquisitions)))
		return acquisitions, s.name
	}

	return nil, ""
}

// searchPointIntersects submits a spatial point + time range filter against
// the STAC search endpoint for both collections
func searchPointIntersects(context *Context, options SearchOptions, window searchWindow) ([]model.Acquisition, error) {
	body := searchRequest{
		Collections: Collections,
		Limit:       options.Limit,
		Intersects:  geojson.NewPoint([]float64{options.Point.Lon, options.Point.Lat}),
		Datetime:    window.Interval(),
	}
	return postSearch(context, body)
}

// searchSmallBbox repeats the search with a tight bounding box in place of
// the point geometry
func searchSmallBbox(context *Context, options SearchOptions, window searchWindow) ([]model.Acquisition, error) {
	box := model.BufferAround(options.Point, searchBufferMeters)
	body := searchRequest{
		Collections: Collections,
		Limit:       options.Limit,
		Bbox:        box.Slice(),
		Datetime:    window.Interval(),
	}
	return postSearch(context, body)
}

// searchPerCollectionItems lists each collection's items endpoint with the
// same box and interval, concatenating results
func searchPerCollectionItems(context *Context, options SearchOptions, window searchWindow) ([]model.Acquisition, error) {
	box := model.BufferAround(options.Point, searchBufferMeters)
	var all []model.Acquisition
	for _, collection := range Collections {
		params := url.Values{}
		params.Set("limit", strconv.Itoa(options.Limit))
		params.Set("bbox", box.String())
		params.Set("datetime", window.Interval())

		inputURL := "collections/" + collection + "/items?" + params.Encode()
		responseBody, err := doStacRequest(stacRequestInput{method: "GET", inputURL: inputURL}, context)
		if err != nil {
			return nil, err
		}
		acquisitions, err := parseFeatureCollection(context, responseBody)
		if err != nil {
			return nil, err
		}
		all = append(all, acquisitions...)
	}
	return all, nil
}

// searchGranuleFallback queries the legacy granule metadata endpoint and, on
// any hits, synthesizes minimal asset-less acquisitions as a last resort
func searchGranuleFallback(context *Context, options SearchOptions, window searchWindow) ([]model.Acquisition, error) {
	box := model.BufferAround(options.Point, searchBufferMeters)
	params := url.Values{}
	params.Add("short_name", "HLSS30")
	params.Add("short_name", "HLSL30")
	params.Set("temporal", window.Interval())
	params.Set("page_size", strconv.Itoa(granulePageSize))
	params.Set("provider", granuleProvider)
	params.Set("bounding_box", box.String())

	var response granuleResponse
	util.LogAudit(context, util.LogAuditInput{
		Actor: "catalog/searchGranuleFallback", Action: "GET", Actee: context.GranuleURL,
		Message: "Requesting granule metadata from CMR", Severity: util.INFO,
	})
	if _, err := util.ReqByObjJSON("GET", context.GranuleURL+"?"+params.Encode(), "", nil, &response); err != nil {
		return nil, err
	}

	hits := response.Feed.Entry
	if len(hits) > options.Limit {
		hits = hits[:options.Limit]
	}
	acquisitions := make([]model.Acquisition, len(hits))
	for i, entry := range hits {
		acquisitions[i] = entry.toAcquisition()
	}
	return acquisitions, nil
}

func postSearch(context *Context, body searchRequest) ([]model.Acquisition, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal search request %#v.", body), err)
	}
	responseBody, err := doStacRequest(stacRequestInput{
		method:      "POST",
		inputURL:    "search",
		body:        requestBody,
		contentType: "application/json",
	}, context)
	if err != nil {
		return nil, err
	}
	return parseFeatureCollection(context, responseBody)
}

// doStacRequest performs the request against the STAC root, returning the
// response body
func doStacRequest(input stacRequestInput, context *Context) ([]byte, error) {
	inputURL := input.inputURL
	if !strings.Contains(inputURL, context.StacURL) {
		baseURL, err := url.Parse(context.StacURL + "/")
		if err != nil {
			return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to parse STAC root %v into a URL.", context.StacURL), err)
		}
		relativeURL, err := url.Parse(input.inputURL)
		if err != nil {
			return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to parse %v into a URL.", input.inputURL), err)
		}
		inputURL = baseURL.ResolveReference(relativeURL).String()
	}

	request, err := http.NewRequest(input.method, inputURL, bytes.NewBuffer(input.body))
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", inputURL), err)
	}
	request.Header.Set("Accept", "application/geo+json")
	request.Header.Set("User-Agent", util.UserAgent)
	if input.contentType != "" {
		request.Header.Set("Content-Type", input.contentType)
	}

	util.LogAudit(context, util.LogAuditInput{Actor: "catalog/doStacRequest", Action: input.method, Actee: inputURL, Message: "Requesting data from CMR STAC", Severity: util.INFO})
	response, err := util.HTTPClient().Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	switch {
	case response.StatusCode >= 400 && response.StatusCode < 500:
		message := fmt.Sprintf("Catalog rejected the query: %v. ", response.Status)
		util.LogAlert(context, message)
		return nil, util.HTTPErr{Status: response.StatusCode, Message: message}
	case response.StatusCode >= 500:
		return nil, util.LogSimpleErr(context, "Catalog backend error.", errors.New(response.Status))
	}

	return io.ReadAll(response.Body)
}

// parseFeatureCollection transforms a STAC GeoJSON response into acquisitions
func parseFeatureCollection(context *Context, body []byte) ([]model.Acquisition, error) {
	var collection featureCollection
	if err := json.Unmarshal(body, &collection); err != nil {
		stacErr := util.Error{
			LogMsg:    "Failed to unmarshal STAC response: " + err.Error(),
			SimpleMsg: "The catalog returned an unexpected response. See log for further details.",
			Response:  string(body),
		}
		return nil, stacErr.Log(context, "")
	}

	acquisitions := make([]model.Acquisition, 0, len(collection.Features))
	for _, feature := range collection.Features {
		acquisitions = append(acquisitions, feature.toAcquisition())
	}
	return acquisitions, nil
}
