package catalog

import (
	"strings"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
)

// Collections are the HLS sensor collections searched for every request:
// Sentinel-2 (S30) and Landsat 8/9 (L30), both v2.0
var Collections = []string{"HLSS30.v2.0", "HLSL30.v2.0"}

// Context is the context for a catalog search operation
type Context struct {
	StacURL    string
	GranuleURL string
	sessionID  string
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

// NewContext builds a catalog context from the environment
func NewContext() *Context {
	return &Context{
		StacURL:    util.GetStacRootURL(),
		GranuleURL: util.GetGranuleSearchURL(),
	}
}

// SearchOptions are the options for a catalog search
type SearchOptions struct {
	Point      model.Coordinate
	TargetDate time.Time
	Limit      int
}

type searchRequest struct {
	Collections []string    `json:"collections"`
	Limit       int         `json:"limit"`
	Intersects  interface{} `json:"intersects,omitempty"`
	Bbox        []float64   `json:"bbox,omitempty"`
	Datetime    string      `json:"datetime"`
}

type featureCollection struct {
	Features []stacFeature `json:"features"`
}

type stacFeature struct {
	ID         string               `json:"id"`
	Collection string               `json:"collection"`
	Properties stacProperties       `json:"properties"`
	Assets     map[string]stacAsset `json:"assets"`
}

type stacProperties struct {
	Datetime string `json:"datetime"`
}

type stacAsset struct {
	Href       string     `json:"href"`
	Alternates []stacLink `json:"alternates"`
}

type stacLink struct {
	Href string `json:"href"`
}

type granuleResponse struct {
	Feed granuleFeed `json:"feed"`
}

type granuleFeed struct {
	Entry []granuleEntry `json:"entry"`
}

type granuleEntry struct {
	TimeStart string `json:"time_start"`
	DatasetID string `json:"dataset_id"`
}

type stacRequestInput struct {
	method      string
	inputURL    string // URL may be relative or absolute based on StacURL
	body        []byte
	contentType string
}

func (f stacFeature) toAcquisition() model.Acquisition {
	acquisition := model.Acquisition{
		Collection:  f.Collection,
		AcquiredRaw: f.Properties.Datetime,
		Assets:      map[string]model.AssetRef{},
	}
	if parsed, err := model.ParseAcquiredTime(f.Properties.Datetime); err == nil {
		acquisition.Acquired = parsed
	}
	for code, asset := range f.Assets {
		ref := model.AssetRef{Href: asset.Href}
		for _, alternate := range asset.Alternates {
			ref.Alternates = append(ref.Alternates, alternate.Href)
		}
		acquisition.Assets[code] = ref
	}
	return acquisition
}

// toAcquisition synthesizes a minimal asset-less acquisition from a legacy
// granule entry; it carries only collection identity and timestamp, as a
// last-resort signal that imagery exists
func (g granuleEntry) toAcquisition() model.Acquisition {
	collection := "HLSL30.v2.0"
	if strings.Contains(g.DatasetID, "HLSS30") {
		collection = "HLSS30.v2.0"
	}
	acquisition := model.Acquisition{
		Collection:  collection,
		AcquiredRaw: g.TimeStart,
	}
	if parsed, err := model.ParseAcquiredTime(g.TimeStart); err == nil {
		acquisition.Acquired = parsed
	}
	return acquisition
}
