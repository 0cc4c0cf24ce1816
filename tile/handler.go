package tile

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/util"
)

// Handler is a handler for /tile
// @Title tileHandler
// @Description fetches an HLS surface reflectance tile around a point
// @Accept  plain
// @Param   lat     query   string  false        "Latitude in decimal degrees"
// @Param   lon     query   string  false        "Longitude in decimal degrees"
// @Param   address query   string  false        "Address to geocode when lat/lon are absent"
// @Param   date    query   string  false        "Target date, YYYY-MM-DD (defaults to today)"
// @Success 200 {object}  tileResponse
// @Failure 400 {object}  string
// @Router /tile [get]
type Handler struct {
	Context *Context
}

// NewHandler creates a new handler using configuration from
// environment variables
func NewHandler() *Handler {
	return &Handler{Context: NewContext()}
}

type tileResponse struct {
	Status     string `json:"status"`
	TilePath   string `json:"tile_path,omitempty"`
	PreviewPNG string `json:"preview_png,omitempty"`
}

// ServeHTTP implements the http.Handler interface for the Handler type
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	input := FetchInput{
		LatText:  r.FormValue("lat"),
		LonText:  r.FormValue("lon"),
		Address:  r.FormValue("address"),
		DateText: r.FormValue("date"),
	}

	result, err := FetchTile(h.Context, input)
	if err != nil {
		message := result.Status
		if message == "" {
			message = err.Error()
		}
		util.LogSimpleErr(h.Context, fmt.Sprintf("Tile fetch failed: %v", message), err)
		util.HTTPError(r, w, h.Context, message, statusCodeFor(err))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tileResponse{
		Status:     result.Status,
		TilePath:   result.TilePath,
		PreviewPNG: result.PreviewPath,
	})
}

// statusCodeFor maps a pipeline failure to its HTTP status. Bad inputs are
// the caller's fault; missing catalog coverage is a 404; upstream asset
// trouble surfaces as a bad gateway.
func statusCodeFor(err error) int {
	kind, ok := model.FailureKindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case model.LocationUnresolved:
		return http.StatusBadRequest
	case model.NoCandidateAcquisitions:
		return http.StatusNotFound
	case model.UnauthorizedAsset, model.IncompleteBandStack:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
