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

package catalog

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/stretchr/testify/assert"
)

const sampleFeature = `{
	"id": "HLS.S30.T14QMG.2024166T170901.v2.0",
	"collection": "HLSS30.v2.0",
	"properties": {"datetime": "2024-06-14T17:09:01Z"},
	"assets": {
		"B04": {
			"href": "s3://lp-prod/B04.tif",
			"alternates": [{"href": "https://data.lpdaac.earthdatacloud.nasa.gov/B04.tif"}]
		}
	}
}`

const sampleGranuleFeed = `{
	"feed": {
		"entry": [
			{"time_start": "2024-06-14T17:09:01.000Z", "dataset_id": "HLSS30 v2.0 something"},
			{"time_start": "2024-06-10T16:55:00.000Z", "dataset_id": "HLSL30 v2.0 something"}
		]
	}
}`

func featureCollectionBody(features ...string) string {
	return `{"type":"FeatureCollection","features":[` + strings.Join(features, ",") + `]}`
}

func testOptions() SearchOptions {
	return SearchOptions{
		Point:      model.Coordinate{Lat: 19.43, Lon: -99.13},
		TargetDate: time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Limit:      20,
	}
}

func withFixedNow(t *testing.T, now time.Time) {
	original := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = original })
}

func TestSearch_PointStrategyWins(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	var capturedBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/stac/search", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		capturedBody = string(body)
		w.Write([]byte(featureCollectionBody(sampleFeature)))
	}))
	defer server.Close()

	context := &Context{StacURL: server.URL + "/stac", GranuleURL: server.URL + "/granules"}
	acquisitions, strategyName := Search(context, testOptions())

	assert.Equal(t, "search-point", strategyName)
	assert.Len(t, acquisitions, 1)
	assert.Equal(t, "search-point", acquisitions[0].FoundBy)
	assert.Equal(t, "HLSS30.v2.0", acquisitions[0].Collection)
	assert.Contains(t, capturedBody, `"intersects"`)
	assert.Contains(t, capturedBody, `"HLSS30.v2.0"`)
	assert.Contains(t, capturedBody, `"HLSL30.v2.0"`)
	assert.Contains(t, capturedBody, "2024-05-31T00:00:00Z/2024-06-30T23:59:59Z")
}

func TestSearch_FallsBackToBboxWhenPointRejected(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if strings.Contains(string(body), `"intersects"`) {
			http.Error(w, "point geometry not supported", http.StatusBadRequest)
			return
		}
		assert.Contains(t, string(body), `"bbox"`)
		w.Write([]byte(featureCollectionBody(sampleFeature)))
	}))
	defer server.Close()

	context := &Context{StacURL: server.URL, GranuleURL: server.URL + "/granules"}
	acquisitions, strategyName := Search(context, testOptions())

	assert.Equal(t, "search-bbox", strategyName)
	assert.Len(t, acquisitions, 1)
	assert.Equal(t, "search-bbox", acquisitions[0].FoundBy)
}

func TestSearch_FallsBackToCollectionItems(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	var itemPaths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			http.Error(w, "search not supported", http.StatusNotFound)
			return
		}
		itemPaths = append(itemPaths, r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("bbox"))
		assert.NotEmpty(t, r.URL.Query().Get("datetime"))
		w.Write([]byte(featureCollectionBody(sampleFeature)))
	}))
	defer server.Close()

	context := &Context{StacURL: server.URL, GranuleURL: server.URL + "/granules"}
	acquisitions, strategyName := Search(context, testOptions())

	assert.Equal(t, "collection-items", strategyName)
	assert.Len(t, acquisitions, 2)
	assert.Equal(t, []string{
		"/collections/HLSS30.v2.0/items",
		"/collections/HLSL30.v2.0/items",
	}, itemPaths)
}

func TestSearch_GranuleFallbackSynthesizesAcquisitions(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	stac := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusBadRequest)
	}))
	defer stac.Close()

	granules := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		assert.ElementsMatch(t, []string{"HLSS30", "HLSL30"}, query["short_name"])
		assert.Equal(t, "LPDAAC_ECS", query.Get("provider"))
		assert.Equal(t, "10", query.Get("page_size"))
		assert.NotEmpty(t, query.Get("temporal"))
		assert.NotEmpty(t, query.Get("bounding_box"))
		w.Write([]byte(sampleGranuleFeed))
	}))
	defer granules.Close()

	context := &Context{StacURL: stac.URL, GranuleURL: granules.URL}
	acquisitions, strategyName := Search(context, testOptions())

	assert.Equal(t, "granule-metadata", strategyName)
	assert.Len(t, acquisitions, 2)
	assert.Equal(t, "HLSS30.v2.0", acquisitions[0].Collection)
	assert.Equal(t, "HLSL30.v2.0", acquisitions[1].Collection)
	assert.Empty(t, acquisitions[0].Assets)
}

func TestSearch_EmptyEverywhereReturnsNoResults(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "granules") {
			w.Write([]byte(`{"feed":{"entry":[]}}`))
			return
		}
		w.Write([]byte(featureCollectionBody()))
	}))
	defer server.Close()

	context := &Context{StacURL: server.URL, GranuleURL: server.URL + "/granules"}
	acquisitions, strategyName := Search(context, testOptions())

	assert.Empty(t, acquisitions)
	assert.Equal(t, "", strategyName)
}

func TestSearch_InvertedWindowMakesNoRequests(t *testing.T) {
	withFixedNow(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Fail(t, "no request should be made for a window entirely in the future")
	}))
	defer server.Close()

	options := testOptions()
	options.TargetDate = time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)

	context := &Context{StacURL: server.URL, GranuleURL: server.URL + "/granules"}
	acquisitions, strategyName := Search(context, options)

	assert.Empty(t, acquisitions)
	assert.Equal(t, "", strategyName)
}

func TestSearch_ResultsRankedByProximity(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	far := strings.Replace(sampleFeature, "2024-06-14T17:09:01Z", "2024-06-01T17:09:01Z", 1)
	near := strings.Replace(sampleFeature, "2024-06-14T17:09:01Z", "2024-06-16T17:09:01Z", 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(featureCollectionBody(far, near)))
	}))
	defer server.Close()

	context := &Context{StacURL: server.URL, GranuleURL: server.URL + "/granules"}
	acquisitions, _ := Search(context, testOptions())

	assert.Len(t, acquisitions, 2)
	assert.Equal(t, "2024-06-16T17:09:01Z", acquisitions[0].AcquiredRaw)
	assert.Equal(t, "2024-06-01T17:09:01Z", acquisitions[1].AcquiredRaw)
}

func TestSearch_GranuleFallbackHonorsLimit(t *testing.T) {
	withFixedNow(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC))

	stac := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no", http.StatusBadRequest)
	}))
	defer stac.Close()

	var entries []string
	for i := 0; i < 5; i++ {
		entries = append(entries, fmt.Sprintf(`{"time_start":"2024-06-1%dT00:00:00.000Z","dataset_id":"HLSS30"}`, i))
	}
	granules := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"feed":{"entry":[` + strings.Join(entries, ",") + `]}}`))
	}))
	defer granules.Close()

	options := testOptions()
	options.Limit = 3

	context := &Context{StacURL: stac.URL, GranuleURL: granules.URL}
	acquisitions, _ := Search(context, options)

	assert.Len(t, acquisitions, 3)
}

func TestStacFeatureToAcquisition_AlternateHrefs(t *testing.T) {
	feature := stacFeature{
		Collection: "HLSS30.v2.0",
		Properties: stacProperties{Datetime: "2024-06-14T17:09:01Z"},
		Assets: map[string]stacAsset{
			"B04": {Href: "s3://bucket/B04.tif", Alternates: []stacLink{{Href: "https://data.example.com/B04.tif"}}},
		},
	}
	acquisition := feature.toAcquisition()
	assert.Equal(t, "https://data.example.com/B04.tif", acquisition.Assets["B04"].BestHref())
	assert.False(t, acquisition.Acquired.IsZero())
}
