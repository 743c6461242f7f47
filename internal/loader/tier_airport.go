package loader

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/sells-group/solar-scout/internal/model"
)

// airportTier serves lookups from the per-airport geometry-only GeoJSON
// cache. Geometry is precut to the airport's vicinity but carries no
// precomputed area or distance, so the full filter pipeline runs here.
type airportTier struct {
	dir string
}

func (t *airportTier) name() string { return "airport-cache" }

func (t *airportTier) load(_ context.Context, q query) ([]model.BuildingRecord, error) {
	path := filepath.Join(t.dir, q.key.Code+".geojson")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errTierUnavailable
		}
		return nil, eris.Wrapf(err, "loader: read airport cache %s", path)
	}

	geoms, err := decodeFeatureGeometries(data)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: parse airport cache %s", path)
	}

	return evaluateAll(q, geoms), nil
}
