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
	"sort"
	"strings"
	"time"
)

// AssetRef is a remote reference to one band of one acquisition
type AssetRef struct {
	Href       string
	Alternates []string
}

// BestHref returns the preferred transport URL for the asset: a secure
// href if present, else a secure alternate, else the primary href
func (a AssetRef) BestHref() string {
	if strings.HasPrefix(a.Href, "https://") {
		return a.Href
	}
	for _, alt := range a.Alternates {
		if strings.HasPrefix(alt, "https://") {
			return alt
		}
	}
	return a.Href
}

// Acquisition is one candidate satellite scene discovered by catalog search.
// Acquisitions are ephemeral: fetched per request, ranked, and discarded.
type Acquisition struct {
	Collection  string
	Acquired    time.Time
	AcquiredRaw string
	Assets      map[string]AssetRef
	// FoundBy names the search strategy that discovered this acquisition
	FoundBy string
}

// CMR datetimes mostly follow RFC 3339, but granule metadata is not always
// strict about fractional seconds or zone suffixes, so parse leniently.
var acquiredTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseAcquiredTime parses a catalog timestamp against multiple layouts,
// always interpreting zone-less values as UTC
func ParseAcquiredTime(value string) (time.Time, error) {
	for _, layout := range acquiredTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			if parsed.Location() == time.Local {
				parsed = parsed.UTC()
			}
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp could not be parsed by any expected layout: `%s`", value)
}

// maximal sentinel so malformed timestamps rank last instead of crashing ranking
const maxTimeDelta = time.Duration(math.MaxInt64)

// TimeDelta returns the absolute distance between the acquisition timestamp
// and the target time; acquisitions with no parseable timestamp get the
// maximal sentinel distance
func (a Acquisition) TimeDelta(target time.Time) time.Duration {
	if a.Acquired.IsZero() {
		return maxTimeDelta
	}
	delta := a.Acquired.Sub(target)
	if delta < 0 {
		delta = -delta
	}
	return delta
}

// RankByProximity orders acquisitions by absolute time distance to the
// target, in place. The sort is stable: ties keep discovery order.
func RankByProximity(acquisitions []Acquisition, target time.Time) {
	sort.SliceStable(acquisitions, func(i, j int) bool {
		return acquisitions[i].TimeDelta(target) < acquisitions[j].TimeDelta(target)
	})
}
