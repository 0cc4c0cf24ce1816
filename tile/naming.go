package tile

import (
	"fmt"
	"time"

	"github.com/AxelCastrezana/innovators-crew-bloomwatch-reflex/model"
)

// ArtifactNames returns the composite and preview filenames for a request.
// Names are deterministic in coordinate and date, so repeat requests for
// identical inputs overwrite rather than duplicate.
func ArtifactNames(c model.Coordinate, date time.Time) (string, string) {
	base := fmt.Sprintf("hls_tile_%.5f_%.5f_%s", c.Lat, c.Lon, date.Format("2006-01-02"))
	return base + ".tif", base + ".png"
}
